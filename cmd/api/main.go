package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/docmind/backend/internal/api/handlers"
	cacheRedis "github.com/docmind/backend/internal/cache/redis"
	"github.com/docmind/backend/internal/coordinator"
	"github.com/docmind/backend/internal/embedding"
	"github.com/docmind/backend/internal/ingestion"
	"github.com/docmind/backend/internal/metrics"
	"github.com/docmind/backend/internal/middleware/ratelimit"
	"github.com/docmind/backend/internal/middleware/security"
	"github.com/docmind/backend/internal/parser"
	"github.com/docmind/backend/internal/protocol"
	"github.com/docmind/backend/internal/retrieval"
	"github.com/docmind/backend/internal/storage/sqlite"
	"github.com/docmind/backend/internal/synthesis"
	"github.com/docmind/backend/internal/vector"
	"github.com/docmind/backend/pkg/config"
	appLogger "github.com/docmind/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting DocMind API Server")

	metrics.Init()

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		appLogger.Fatal("Failed to create data directory", zap.Error(err))
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cache *cacheRedis.Client
	if cfg.Cache.Enabled {
		cache, err = cacheRedis.NewClient(
			cfg.Cache.Host,
			cfg.Cache.Port,
			cfg.Cache.Password,
			cfg.Cache.DB,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without query cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	index := vector.NewIndex(cfg.Embedding.Dimension)
	if _, statErr := os.Stat(cfg.Index.VectorPath); statErr == nil {
		if err := index.Load(cfg.Index.VectorPath, cfg.Index.MetadataPath); err != nil {
			appLogger.Warn("Failed to load persisted index, starting empty", zap.Error(err))
		} else {
			appLogger.Info("Vector index restored", zap.Int("vectors", index.Count()))
			metrics.IndexSize.Set(float64(index.Count()))
		}
	}

	embedder := embedding.NewGenerator(cfg.Embedding.Dimension, cfg.Embedding.MaxChars)

	ingestionAgent := ingestion.NewAgent(parser.NewRegistry())
	ingestionAgent.SetChunking(cfg.Chunking.Size, cfg.Chunking.Overlap)
	retrievalAgent := retrieval.NewAgent(embedder, index)
	synthesizer := synthesis.NewSynthesizer()

	router := protocol.NewRouter()
	coord := coordinator.New(router, ingestionAgent, retrievalAgent, synthesizer)

	invalidate := func() {
		if cache == nil {
			return
		}
		if err := cache.Invalidate(context.Background()); err != nil {
			appLogger.Warn("Failed to invalidate query cache", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(limiter.Middleware())

	documentHandler := handlers.NewDocumentHandler(coord, sqliteClient, index, invalidate)
	queryHandler := handlers.NewQueryHandler(coord, sqliteClient, cache)
	systemHandler := handlers.NewSystemHandler(coord, sqliteClient, index, invalidate)
	wsHandler := handlers.NewWebSocketHandler(coord)

	api := app.Group("/api/v1")

	api.Post("/documents", documentHandler.Upload)
	api.Get("/documents/:id", documentHandler.Get)

	api.Post("/query", queryHandler.Query)
	api.Get("/query/history", queryHandler.History)

	api.Get("/health", systemHandler.Health)
	api.Get("/system/status", systemHandler.Status)
	api.Get("/traces/:id", systemHandler.Trace)
	api.Get("/messages/recent", systemHandler.RecentMessages)
	api.Post("/system/clear", systemHandler.Clear)

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/query", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()

	if err := index.Save(cfg.Index.VectorPath, cfg.Index.MetadataPath); err != nil {
		appLogger.Error("Failed to persist vector index", zap.Error(err))
	} else {
		appLogger.Info("Vector index persisted", zap.Int("vectors", index.Count()))
	}

	appLogger.Info("Server stopped")
}
