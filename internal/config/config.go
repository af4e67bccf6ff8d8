package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// Query/answer pairs above this cosine score are treated as a
	// semantic cache hit.
	CacheSimilarityCutoff = 0.97

	// Scores within this distance of each other count as a similarity
	// tie and go through the secondary re-rank order.
	RerankEpsilon float32 = 0.02

	// Answers produced without any retrieved context stay below this.
	LowConfidenceThreshold = 0.4

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":8000"

	//vectorDB
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1 //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout = 30 * time.Second

	EmbeddingBatchSize = 100

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	RedisSessionStore = 0
	RedisSessionTTL   = 24 * time.Hour

	SessionHistoryDepth = 5

	// /api/chat input bound. Longer queries get a 400 before any
	// external call is made.
	MaxQueryLength = 1000
)

// Config is the full environment surface, built once in main and passed
// down. No package reads the environment after Load returns.
type Config struct {
	ListenAddr string

	CorpusPath string
	LogsDir    string

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	EmbeddingModel     string
	EmbeddingDimension int32

	// "gemini" or "openrouter"
	CompletionProvider string
	CompletionModel    string
	MaxOutputTokens    int32
	Temperature        float32
	CompletionTimeout  time.Duration

	GeminiAPIKey      string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string

	QdrantHost     string
	QdrantPort     int
	QdrantIndex    string
	CacheIndexName string

	RedisAddr     string
	RedisPassword string

	AdminToken     string
	AllowedOrigins []string
}

// Load reads .env if present, applies defaults, and validates the result.
// A missing completion key for the selected provider is a startup failure,
// not a degraded mode.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ServerListenAddr),
		CorpusPath:         getEnv("PDF_DIRECTORY", "./pdfs"),
		LogsDir:            getEnv("LOGS_DIR", "./logs"),
		ChunkSize:          getEnvInt("CHUNK_SIZE", 600),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 100),
		TopK:               getEnvInt("TOP_K_RESULTS", 3),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		EmbeddingDimension: int32(getEnvInt("EMBEDDING_DIMENSION", 384)),
		CompletionProvider: getEnv("COMPLETION_PROVIDER", "gemini"),
		CompletionModel:    getEnv("COMPLETION_MODEL", "gemini-2.5-flash-lite-preview-09-2025"),
		MaxOutputTokens:    int32(getEnvInt("MAX_OUTPUT_TOKENS", 1000)),
		Temperature:        0.3,
		CompletionTimeout:  time.Duration(getEnvInt("COMPLETION_TIMEOUT_SECONDS", 30)) * time.Second,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		OpenRouterAPIKey:   os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:  getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		QdrantHost:         getEnv("QDRANT_HOST", "127.0.0.1"),
		QdrantPort:         getEnvInt("QDRANT_PORT", QdrantGrpcPort),
		QdrantIndex:        getEnv("QDRANT_COLLECTION", "ramate-docs"),
		CacheIndexName:     getEnv("QDRANT_CACHE_COLLECTION", "ramate-answer-cache"),
		RedisAddr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		AdminToken:         os.Getenv("ADMIN_TOKEN"),
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if t := os.Getenv("MODEL_TEMPERATURE"); t != "" {
		parsed, err := strconv.ParseFloat(t, 32)
		if err != nil {
			return cfg, fmt.Errorf("%w: MODEL_TEMPERATURE %q is not a number", ragerr.ErrConfiguration, t)
		}
		cfg.Temperature = float32(parsed)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.CompletionProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for the gemini provider", ragerr.ErrConfiguration)
		}
	case "openrouter":
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("%w: OPENROUTER_API_KEY is required for the openrouter provider", ragerr.ErrConfiguration)
		}
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY is required for embeddings", ragerr.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown COMPLETION_PROVIDER %q", ragerr.ErrConfiguration, c.CompletionProvider)
	}
	if c.AdminToken == "" {
		return fmt.Errorf("%w: ADMIN_TOKEN is required", ragerr.ErrConfiguration)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be smaller than CHUNK_SIZE", ragerr.ErrConfiguration)
	}
	if c.TopK < 1 {
		return fmt.Errorf("%w: TOP_K_RESULTS must be at least 1", ragerr.ErrConfiguration)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
