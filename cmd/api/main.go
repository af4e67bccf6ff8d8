// @title           RAMate API
// @version         1.0
// @description     Retrieval-augmented chat over a training document corpus, with cited answers and confidence scores.
// @termsOfService  http://swagger.io/terms/

// @contact.name    RAMate maintainers
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ramate-ai/ramate/internal/config"
	"github.com/ramate-ai/ramate/internal/data/logstore"
	"github.com/ramate-ai/ramate/internal/data/store"
	"github.com/ramate-ai/ramate/internal/handlers"
	"github.com/ramate-ai/ramate/internal/middleware"
	"github.com/ramate-ai/ramate/internal/rag"
	"github.com/ramate-ai/ramate/internal/rag/embedding/googleEmbedding"
	"github.com/ramate-ai/ramate/internal/rag/generation"
	"github.com/ramate-ai/ramate/internal/rag/ingest"
	"github.com/ramate-ai/ramate/internal/rag/llm"
	"github.com/ramate-ai/ramate/internal/rag/llm/gemini"
	"github.com/ramate-ai/ramate/internal/rag/llm/openrouter"
	"github.com/ramate-ai/ramate/internal/rag/retrieval"
	"github.com/ramate-ai/ramate/internal/rag/vectorDB/qdrantDB"
	"github.com/ramate-ai/ramate/internal/server"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

var (
	listenAddr      string
	workerWaitGroup sync.WaitGroup
)

func main() {

	logLevel := slog.LevelDebug
	if config.IS_PROD {
		logLevel = config.LOG_LEVEL_PROD
	}
	logger_i.Init(config.IS_PROD, logLevel)
	var logger = logger_i.NewLogger("main")

	//config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Invalid configuration. Refusing to start.", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&listenAddr, "listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	vectorDB := qdrantDB.GetQdrantClient(serviceContext, cfg)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, cfg.EmbeddingModel, cfg.GeminiAPIKey, cfg.EmbeddingDimension, config.EmbeddingBatchSize)

	var llmProvider llm.Provider
	switch cfg.CompletionProvider {
	case "openrouter":
		llmProvider = openrouter.GetOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.CompletionModel, cfg.Temperature, cfg.MaxOutputTokens)
	default:
		llmProvider = gemini.GetGeminiClient(serviceContext, cfg.GeminiAPIKey, cfg.CompletionModel, cfg.Temperature, cfg.MaxOutputTokens)
	}

	if vectorDB == nil || embeddingService == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil)
		return
	}
	// A dead completion provider is not fatal: chat degrades to the
	// fallback answer while retrieval keeps working.
	if llmProvider == nil {
		logger.Warn("Completion provider unavailable, chat will serve fallback answers")
	}

	var sessionStore store.SessionStore
	if redisSessions := store.GetRedisSessionStore(serviceContext, cfg.RedisAddr, cfg.RedisPassword); redisSessions != nil {
		sessionStore = redisSessions
	} else {
		logger.Error("Redis session store is offline")
		sessionStore = store.InitInMemorySessionStore()
	}

	logs, err := logstore.New(cfg.LogsDir)
	if err != nil {
		logger.Error("Could not open interaction log directory. Refusing to start.", "error", err)
		os.Exit(1)
	}

	retriever := retrieval.NewEngine(embeddingService, vectorDB, cfg.TopK, config.RerankEpsilon)
	generator := generation.NewGenerator(llmProvider, cfg.CompletionTimeout)

	ragService := rag.NewService(rag.ServiceConfig{
		VectorDB:  vectorDB,
		Retriever: retriever,
		Generator: generator,
		Processor: ingest.Processor{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
		},
		Sessions:        sessionStore,
		CorpusPath:      cfg.CorpusPath,
		EmbeddingMethod: cfg.EmbeddingModel,
		AIConfigured:    llmProvider != nil,
	})

	handlers.InitRAGHandler(ragService, logs)
	middleware.Init(cfg.AdminToken, cfg.AllowedOrigins)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
