package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/cv-reviewer/internal/config"
	"alfredoptarigan/cv-reviewer/internal/handlers"
	"alfredoptarigan/cv-reviewer/internal/logger"
	"alfredoptarigan/cv-reviewer/internal/repositories"
	"alfredoptarigan/cv-reviewer/internal/services"
)

// multipartOverhead leaves room for form boundaries and the job description
// on top of the file size limit.
const multipartOverhead = 1 << 20

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	// Initialize database
	db, err := config.InitDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	runRepo := repositories.NewReviewRunRepository(db)

	// Initialize Gemini AI
	ctx := context.Background()
	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:         cfg.Gemini.APIKey,
		Model:          cfg.Gemini.Model,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
		Temperature:    cfg.Gemini.Temperature,
		MaxTokens:      cfg.Gemini.MaxTokens,
	}, zl)
	if err != nil {
		zl.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
	}
	zl.Info("✅ Gemini AI initialized successfully",
		zap.String("model", geminiService.Model()),
		zap.String("embedding_model", cfg.Gemini.EmbeddingModel),
	)

	// Initialize vector index backend
	indexes, closeIndexes, err := newIndexFactory(cfg, zl)
	if err != nil {
		zl.Fatal("❌ Failed to initialize vector index", zap.Error(err))
	}
	defer closeIndexes()

	chunker, err := services.NewTextChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		zl.Fatal("❌ Invalid chunking parameters", zap.Error(err))
	}

	schema, err := services.NewReviewSchema()
	if err != nil {
		zl.Fatal("❌ Failed to build output schema", zap.Error(err))
	}

	reviewService := services.NewReviewService(
		runRepo,
		services.NewPDFParserService(),
		chunker,
		services.NewRetriever(geminiService, indexes, zl),
		geminiService,
		schema,
		cfg.RAG.TopK,
		zl,
	)
	zl.Info("✅ Review service initialized",
		zap.Int("chunk_size", chunker.Size()),
		zap.Int("chunk_overlap", chunker.Overlap()),
		zap.Int("top_k", cfg.RAG.TopK),
	)

	// Initialize Handlers
	reviewHandler := handlers.NewReviewHandler(
		reviewService,
		services.NewUploadReader(cfg.Storage.MaxFileSize),
		zl,
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      handlers.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + multipartOverhead,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	// fiber refuses credentials with a wildcard origin
	origins := strings.Join(cfg.Server.AllowedOrigins, ",")
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    handlers.HeaderReviewID,
		AllowCredentials: !slices.Contains(cfg.Server.AllowedOrigins, "*") && origins != "*",
	}))

	handlers.RegisterRoutes(app, reviewHandler, cfg.Auth.Token, zl)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			zl.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

func newIndexFactory(cfg *config.Config, zl *zap.Logger) (services.IndexFactory, func(), error) {
	switch cfg.Vector.Backend {
	case "qdrant":
		factory, err := services.NewQdrantIndexFactory(cfg.Vector.QdrantURL, cfg.Vector.QdrantAPIKey, zl)
		if err != nil {
			return nil, nil, err
		}
		zl.Info("✅ Qdrant index backend initialized", zap.String("url", cfg.Vector.QdrantURL))
		return factory, func() {
			if err := factory.Close(); err != nil {
				zl.Warn("failed to close qdrant client", zap.Error(err))
			}
		}, nil
	default:
		zl.Info("✅ In-memory index backend initialized")
		return services.NewMemoryIndexFactory(services.DistanceCosine), func() {}, nil
	}
}
