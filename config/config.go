package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	MainLLMHost           string        `mapstructure:"MAIN_LLM_HOST"`
	EmbeddingLLMHost      string        `mapstructure:"EMBEDDING_LLM_HOST"`
	LLMAPIKey             string        `mapstructure:"LLM_API_KEY"`
	ServerAPIKey          string        `mapstructure:"SERVER_API_KEY"`
	CorpusPath            string        `mapstructure:"CORPUS_PATH"`
	RAGResults            int           `mapstructure:"RAG_RESULTS"`
	EmbedCacheSize        int           `mapstructure:"EMBED_CACHE_SIZE"`
	MaxRetries            int           `mapstructure:"MAX_RETRIES"`
	RetryDelaySeconds     time.Duration `mapstructure:"RETRY_DELAY_SECONDS"`
	LLMBackoffMaxSeconds  time.Duration `mapstructure:"LLM_BACKOFF_MAX_SECONDS"`
	LLMBackoffJitterRatio float64       `mapstructure:"LLM_BACKOFF_JITTER_RATIO"`
	LLMRequestTimeout     time.Duration `mapstructure:"LLM_REQUEST_TIMEOUT"`
	WebPort               int           `mapstructure:"WEB_PORT"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("MAIN_LLM_HOST", "http://localhost:8080")
	viper.SetDefault("EMBEDDING_LLM_HOST", "http://localhost:8081")
	viper.SetDefault("CORPUS_PATH", "data/text_chunks_and_embeddings.csv")
	viper.SetDefault("RAG_RESULTS", 3)
	viper.SetDefault("EMBED_CACHE_SIZE", 256)
	viper.SetDefault("MAX_RETRIES", 5)
	viper.SetDefault("RETRY_DELAY_SECONDS", 2)
	viper.SetDefault("LLM_BACKOFF_MAX_SECONDS", 30)
	viper.SetDefault("LLM_BACKOFF_JITTER_RATIO", 0.1)
	viper.SetDefault("LLM_REQUEST_TIMEOUT", 300)
	viper.SetDefault("WEB_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			// Fallback if logger not available (should not happen in practice)
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	// The generative backend credential is required before serving any traffic
	if config.LLMAPIKey == "" {
		if logger != nil {
			logger.Fatal("LLM_API_KEY is not set; cannot reach the generative backend")
		} else {
			fmt.Fprintln(os.Stderr, "FATAL: LLM_API_KEY is not set")
			os.Exit(1)
		}
	}

	// Convert seconds to proper time.Duration
	config.RetryDelaySeconds = config.RetryDelaySeconds * time.Second
	config.LLMBackoffMaxSeconds = config.LLMBackoffMaxSeconds * time.Second
	config.LLMRequestTimeout = config.LLMRequestTimeout * time.Second

	return &config
}
