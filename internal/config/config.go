// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration
type Config struct {
	// Server
	Port int

	// Groq (completion and vision models)
	GroqAPIKey     string
	LLMModel       string
	VisionModel    string
	LLMTemperature float64

	// Embeddings
	EmbeddingProvider string
	EmbeddingAPIKey   string
	EmbeddingModel    string

	// Chroma vector index
	ChromaURL        string
	ChromaAPIKey     string
	ChromaTenant     string
	ChromaDatabase   string
	ChromaCollection string

	// Chunking and retrieval
	ChunkSize    int
	ChunkOverlap int
	RetrievalK   int

	// Optional infrastructure
	DatabaseURL string // PostgreSQL provenance log, empty disables
	RedisURL    string // embedding cache, empty disables
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is the normal case in production
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnvInt("PORT", 3001),

		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.1-8b-instant"),
		VisionModel:    getEnv("VISION_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0),

		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
		EmbeddingAPIKey:   os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		ChromaURL:        getEnv("CHROMA_URL", "http://localhost:8000"),
		ChromaAPIKey:     os.Getenv("CHROMA_API_KEY"),
		ChromaTenant:     os.Getenv("CHROMA_TENANT"),
		ChromaDatabase:   os.Getenv("CHROMA_DATABASE"),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "rag-collection"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		RetrievalK:   getEnvInt("RETRIEVAL_K", 4),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UseChromaCloud reports whether cloud credentials are configured. Cloud
// takes precedence over a self-hosted URL.
func (c *Config) UseChromaCloud() bool {
	return c.ChromaAPIKey != "" && c.ChromaTenant != "" && c.ChromaDatabase != ""
}

func (c *Config) validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.EmbeddingAPIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY is required")
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%g", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
