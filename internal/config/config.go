package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	News     News     `mapstructure:"news"`
	Curation Curation `mapstructure:"curation"`
	Database Database `mapstructure:"database"`
	Cache    Cache    `mapstructure:"cache"`
	Server   Server   `mapstructure:"server"`
}

// App holds general application configuration.
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds LLM configuration.
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// News holds news provider configuration.
type News struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Query     string        `mapstructure:"query"`
	PageSize  int           `mapstructure:"page_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit time.Duration `mapstructure:"rate_limit"`
	FeedURLs  []string      `mapstructure:"feed_urls"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Curation holds the knobs of the edition curation pipeline.
type Curation struct {
	MaxCandidates  int           `mapstructure:"max_candidates"`
	AnalyzeCount   int           `mapstructure:"analyze_count"`
	DedupThreshold float64       `mapstructure:"dedup_threshold"`
	RetryAttempts  int           `mapstructure:"retry_attempts"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	MinWords       int           `mapstructure:"min_words"`
	MaxWords       int           `mapstructure:"max_words"`
	LookbackHours  int           `mapstructure:"lookback_hours"`
}

// Database holds the postgres connection configuration.
type Database struct {
	ConnectionString string `mapstructure:"connection_string"`
}

// Cache holds the local candidate cache configuration.
type Cache struct {
	Directory string        `mapstructure:"directory"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// Server holds the HTTP server configuration.
type Server struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

var (
	globalConfig *Config
	loadedFile   string
)

// Load loads the configuration from the config file, environment variables and
// defaults, in that order of precedence (env over file over defaults). The
// result is cached; asking for a different explicit config file than the one
// cached reloads from scratch instead of serving the stale settings.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		if configFile == "" || configFile == loadedFile {
			return globalConfig, nil
		}
		globalConfig = nil
		viper.Reset()
	}

	// Load .env file if it exists (local development convenience)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".policybrief")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	loadedFile = configFile
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Used by tests.
func Reset() {
	globalConfig = nil
	loadedFile = ""
	viper.Reset()
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".policybrief-cache")

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.gemini.max_tokens", 1024)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	viper.SetDefault("news.base_url", "https://newsapi.org/v2")
	viper.SetDefault("news.query", "policy OR regulation OR congress OR legislation")
	viper.SetDefault("news.page_size", 50)
	viper.SetDefault("news.timeout", "30s")
	viper.SetDefault("news.rate_limit", "500ms")
	viper.SetDefault("news.user_agent", "policybrief/1.0")

	viper.SetDefault("curation.max_candidates", 20)
	viper.SetDefault("curation.analyze_count", 6)
	viper.SetDefault("curation.dedup_threshold", 0.78)
	viper.SetDefault("curation.retry_attempts", 3)
	viper.SetDefault("curation.retry_backoff", "1500ms")
	viper.SetDefault("curation.min_words", 100)
	viper.SetDefault("curation.max_words", 250)
	viper.SetDefault("curation.lookback_hours", 24)

	viper.SetDefault("cache.directory", ".policybrief-cache")
	viper.SetDefault("cache.ttl", "1h")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.allowed_origins", []string{"*"})
}

func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("news.api_key", []string{
		"NEWS_API_KEY",
		"NEWSAPI_KEY",
	})

	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})
}

// bindEnvKeys binds multiple environment variable names to a config key.
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(configKey, value)
			return
		}
	}
}

func validateConfig(config *Config) error {
	if config.Curation.AnalyzeCount > config.Curation.MaxCandidates {
		return fmt.Errorf("curation.analyze_count (%d) cannot exceed curation.max_candidates (%d)",
			config.Curation.AnalyzeCount, config.Curation.MaxCandidates)
	}
	if config.Curation.MinWords >= config.Curation.MaxWords {
		return fmt.Errorf("curation.min_words (%d) must be below curation.max_words (%d)",
			config.Curation.MinWords, config.Curation.MaxWords)
	}
	if config.Curation.DedupThreshold <= 0 || config.Curation.DedupThreshold > 1 {
		return fmt.Errorf("curation.dedup_threshold must be in (0, 1], got %f", config.Curation.DedupThreshold)
	}
	return nil
}
