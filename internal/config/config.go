package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Host string
	Port string
	Env  string

	// Frontend hints, only used to pick the local bind address
	FrontendHints []string
	CORSOrigin    string

	// Chat LLM
	LLMProvider      string // "openai" | "gemini"
	OpenAIEndpoint   string
	OpenAIAPIKey     string
	OpenAIAPIType    string // "" | "azure"
	OpenAIAPIVersion string
	DeploymentName   string

	// Embeddings
	EmbeddingEndpoint  string
	EmbeddingAPIKey    string
	EmbeddingModel     string
	EmbeddingDimension int
	EmbeddingCacheTTL  time.Duration

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Vector databases
	ChromaURL        string
	ChromaCollection string
	PineconeAPIKey   string
	PineconeIndex    string
	PineconeCloud    string
	PineconeRegion   string

	// Web search
	TavilyAPIKey string

	// Text-to-speech
	TTSModel      string
	TTSVoice      string
	AudioDir      string
	AudioPrefetch bool
	AudioWorkers  int

	// Optional infrastructure
	DatabaseURL string
	RedisURL    string

	// Protection
	RateLimitPerMinute int
	BreakerMaxFailures int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	openAIEndpoint := getEnvOrDefault("OPENAI_ENDPOINT", "")
	openAIKey := getEnvOrDefault("OPENAI_API_KEY", "")

	cfg := &Config{
		Host: getEnvOrDefault("HOST", "127.0.0.1"),
		Port: getEnvOrDefault("PORT", "5000"),
		Env:  getEnvOrDefault("ENV", "development"),
		FrontendHints: []string{
			os.Getenv("FRONTEND_HOST"),
			os.Getenv("FRONTEND_URL"),
			os.Getenv("REACT_APP_FRONTEND_URL"),
			os.Getenv("VITE_APP_BASE_URL"),
		},
		CORSOrigin: getEnvOrDefault("CORS_ORIGIN", "*"),

		LLMProvider:      strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "openai")),
		OpenAIEndpoint:   openAIEndpoint,
		OpenAIAPIKey:     openAIKey,
		OpenAIAPIType:    strings.ToLower(getEnvOrDefault("OPENAI_API_TYPE", "")),
		OpenAIAPIVersion: getEnvOrDefault("OPENAI_API_VERSION", "2024-07-01-preview"),
		DeploymentName:   getEnvOrDefault("DEPLOYMENT_NAME", "GPT-4o-mini"),

		EmbeddingEndpoint:  getEnvOrDefault("OPENAI_EMBEDDING_ENDPOINT", openAIEndpoint),
		EmbeddingAPIKey:    getEnvOrDefault("OPENAI_EMBEDDING_API_KEY", openAIKey),
		EmbeddingModel:     getEnvOrDefault("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimension: getEnvAsIntOrDefault("EMBEDDING_DIMENSION", 1536),
		EmbeddingCacheTTL:  time.Duration(getEnvAsIntOrDefault("EMBEDDING_CACHE_TTL_MINUTES", 24*60)) * time.Minute,

		GeminiAPIKey: getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),

		ChromaURL:        getEnvOrDefault("CHROMA_URL", ""),
		ChromaCollection: getEnvOrDefault("CHROMA_COLLECTION", "database_cars"),
		PineconeAPIKey:   getEnvOrDefault("PINECONE_API_KEY", ""),
		PineconeIndex:    getEnvOrDefault("PINECONE_INDEX", "product-similarity-index"),
		PineconeCloud:    getEnvOrDefault("PINECONE_CLOUD", "aws"),
		PineconeRegion:   getEnvOrDefault("PINECONE_REGION", "us-east-1"),

		TavilyAPIKey: getEnvOrDefault("TAVILY_API_KEY", ""),

		TTSModel:      getEnvOrDefault("TTS_MODEL", "tts-1"),
		TTSVoice:      getEnvOrDefault("TTS_VOICE", "alloy"),
		AudioDir:      getEnvOrDefault("AUDIO_DIR", "audio"),
		AudioPrefetch: getEnvAsBoolOrDefault("AUDIO_PREFETCH", false),
		AudioWorkers:  getEnvAsIntOrDefault("AUDIO_WORKERS", 2),

		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:    getEnvOrDefault("REDIS_URL", ""),

		RateLimitPerMinute: getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 60),
		BreakerMaxFailures: getEnvAsIntOrDefault("BREAKER_MAX_FAILURES", 5),
	}

	return cfg
}

// BindAddr returns localhost:3000 when any frontend hint points at a local
// dev server, and HOST:PORT otherwise.
func (c *Config) BindAddr() string {
	joined := strings.ToLower(strings.Join(c.FrontendHints, " "))
	if strings.Contains(joined, "localhost") || strings.Contains(joined, "127.0.0.1") {
		return "localhost:3000"
	}
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
