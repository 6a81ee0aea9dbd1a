package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/llm"
	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/splitters"
	"docchat/internal/rag/synthesis"
	"docchat/internal/rag/vectorstore"
	"docchat/internal/service"
	"docchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const configFilePath = "config/config.yaml"

func main() {
	// 1. Initialize logger and environment.
	logger.Init(logrus.InfoLevel)
	appLogger := logger.New("docchat")
	appLogger.Info("Starting document chat service...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		appLogger.WithError(err).Warn("Failed to load .env file")
	}

	// 2. Load configuration.
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	appLogger.Info("Configuration loaded successfully")

	// 3. Build the collaborators.
	splitter, err := splitters.NewFromConfig(cfg.Chunking)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create splitter")
	}

	embedder, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create embedding client")
	}

	ctx := context.Background()
	store, err := buildVectorStore(ctx, cfg, embedder)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to create vector store")
	}

	// A missing or invalid LLM credential must not crash the service: the
	// synthesizer falls back to returning raw excerpts.
	var chatModel interfaces.LLM
	if model, err := llm.NewClient(cfg.LLM); err != nil {
		appLogger.WithError(err).Warn("LLM unavailable, answers will be raw excerpts")
	} else {
		chatModel = model
	}
	synthesizer := synthesis.NewSynthesizer(
		chatModel,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		cfg.LLM.MaxRetries,
		logger.New("synthesizer"),
	)

	svc := service.New(
		splitter,
		embedder,
		store,
		synthesizer,
		cfg.Storage.UploadDir,
		cfg.Retrieval.TopK,
		logger.New("orchestrator"),
	)

	// 4. Build and start the HTTP server.
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()
	router.Use(corsMiddleware())
	NewHttpHandler(svc).Register(router)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to serve HTTP")
		}
	}()

	// 5. Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
	appLogger.Info("Server stopped")
}

// buildVectorStore creates the configured backend. Milvus needs the
// embedding dimensionality up front, so it is probed from the provider.
func buildVectorStore(ctx context.Context, cfg *config.Config, embedder interfaces.EmbeddingModel) (interfaces.VectorStore, error) {
	dim := 0
	if cfg.VectorStore.Backend == "milvus" {
		probe, err := embedder.Embed(ctx, "dimension probe")
		if err != nil {
			return nil, fmt.Errorf("failed to probe embedding dimension: %w", err)
		}
		dim = len(probe)
	}
	return vectorstore.NewFromConfig(ctx, cfg.VectorStore, dim, logger.New("vectorstore"))
}
