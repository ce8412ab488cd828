// Package narrative produces the "impact analysis" text attached to curated
// articles: prompt construction around the LLM client plus a bounded retry
// loop that degrades to a static fallback.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"policybrief/internal/core"
	"policybrief/internal/llm"
)

// systemInstruction is the style directive sent with every generation call.
const systemInstruction = `You are a policy analyst writing for busy readers. Use plain language and concrete numbers. No jargon, no hedging, no markdown formatting.`

// impactPromptTemplate is the template for the impact analysis prompt. The
// four-paragraph structure and the word target mirror what the sanitizer
// accepts.
const impactPromptTemplate = `Write an impact analysis of the following policy news story in exactly four paragraphs of flowing prose:

Paragraph 1 - Immediate impact: who is affected right now, and how.
Paragraph 2 - Mechanics: what the policy actually changes and how it works.
Paragraph 3 - Winners and losers: who benefits, who pays.
Paragraph 4 - Insider context: what people close to the process know that headlines miss.

Target 140-170 words total. Prose paragraphs only, no bullet points, no numbered lists, no headers. Stick strictly to the facts given below; do not invent dates, figures or names.

Title: %s
Description: %s
Source: %s
Published: %s`

// TextGenerator is the LLM surface the generator needs. Satisfied by
// *llm.Client; tests substitute a fake.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, options llm.GenerateOptions) (string, error)
}

// Generator builds impact analysis prompts and calls the LLM. It never retries
// internally; transport, rate-limit and auth failures surface to the caller as
// classified errors.
type Generator struct {
	client      TextGenerator
	maxTokens   int32
	temperature float32
}

// NewGenerator creates a narrative generator over an LLM client.
func NewGenerator(client TextGenerator, maxTokens int32, temperature float32) *Generator {
	return &Generator{client: client, maxTokens: maxTokens, temperature: temperature}
}

// Generate produces raw impact analysis text for a candidate.
func (g *Generator) Generate(ctx context.Context, c core.Candidate) (string, error) {
	published := "unknown"
	if !c.PublishedAt.IsZero() {
		published = c.PublishedAt.Format(time.RFC1123)
	}

	prompt := fmt.Sprintf(impactPromptTemplate, c.Title, c.Description, c.SourceName, published)

	text, err := g.client.GenerateText(ctx, prompt, llm.GenerateOptions{
		SystemInstruction: systemInstruction,
		MaxTokens:         g.maxTokens,
		Temperature:       g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("impact analysis generation failed for %q: %w", c.Title, err)
	}
	return strings.TrimSpace(text), nil
}
