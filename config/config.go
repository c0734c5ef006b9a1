package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the transcript QA service
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	History    HistoryConfig    `mapstructure:"history"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// ProvidersConfig groups the external model providers
type ProvidersConfig struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// OpenAIConfig configures an OpenAI-compatible API endpoint. Hosted
// gateways such as NVIDIA NIM speak the same wire format, so pointing
// base_url at them is all that is needed.
type OpenAIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	TopP            float64       `mapstructure:"top_p"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

func (c OpenAIConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("providers.openai.api_key required (set YTCHAT_PROVIDERS_OPENAI_API_KEY)")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("providers.openai.base_url required")
	}
	return nil
}

// TranscriptConfig configures the caption provider endpoint
type TranscriptConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (c TranscriptConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("transcript.base_url required")
	}
	if strings.TrimSpace(c.Language) == "" {
		return errors.New("transcript.language required")
	}
	return nil
}

// RetrievalConfig controls chunking and top-k retrieval behaviour
type RetrievalConfig struct {
	ChunkSize    int  `mapstructure:"chunk_size"`
	ChunkOverlap int  `mapstructure:"chunk_overlap"`
	TopK         int  `mapstructure:"top_k"`
	Hybrid       bool `mapstructure:"hybrid"`
}

func (c RetrievalConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("retrieval.chunk_size must be > 0")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return errors.New("retrieval.chunk_overlap must be >= 0 and < chunk_size")
	}
	if c.TopK <= 0 {
		return errors.New("retrieval.top_k must be > 0")
	}
	return nil
}

// HistoryConfig selects the question/answer history backend
type HistoryConfig struct {
	Store string      `mapstructure:"store"` // inmemory or redis
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c HistoryConfig) Validate() error {
	switch c.Store {
	case "inmemory":
	case "redis":
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("history.redis.addr required when history.store is redis")
		}
	default:
		return fmt.Errorf("history.store must be inmemory or redis, got %q", c.Store)
	}
	return nil
}

// LoadConfig loads config from file and environment (YTCHAT_* overrides)
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("server.address", ":8085")
	viper.SetDefault("providers.openai.api_key", "")
	viper.SetDefault("providers.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("providers.openai.completion_model", "gpt-4o-mini")
	viper.SetDefault("providers.openai.embedding_model", "text-embedding-3-small")
	viper.SetDefault("providers.openai.temperature", 0.6)
	viper.SetDefault("providers.openai.top_p", 0.7)
	viper.SetDefault("providers.openai.max_tokens", 4096)
	viper.SetDefault("providers.openai.timeout", time.Minute)
	viper.SetDefault("transcript.base_url", "https://video.google.com")
	viper.SetDefault("transcript.language", "en")
	viper.SetDefault("transcript.timeout", 30*time.Second)
	viper.SetDefault("retrieval.chunk_size", 1000)
	viper.SetDefault("retrieval.chunk_overlap", 200)
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.hybrid", false)
	viper.SetDefault("history.store", "inmemory")
	viper.SetDefault("history.redis.addr", "")
	viper.SetDefault("history.redis.password", "")
	viper.SetDefault("history.redis.db", 0)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("YTCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config may come entirely from env; only a broken file is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Providers.OpenAI.Validate(); err != nil {
		panic(err)
	}
	if err := config.Transcript.Validate(); err != nil {
		panic(err)
	}
	if err := config.Retrieval.Validate(); err != nil {
		panic(err)
	}
	if err := config.History.Validate(); err != nil {
		panic(err)
	}
	return &config
}
