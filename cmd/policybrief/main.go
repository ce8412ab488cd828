package main

import (
	"policybrief/cmd/handlers"
	"policybrief/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
