package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/exotic-travel-booking/backend/internal/cache"
	"github.com/exotic-travel-booking/backend/internal/config"
	"github.com/exotic-travel-booking/backend/internal/conversation"
	"github.com/exotic-travel-booking/backend/internal/database"
	"github.com/exotic-travel-booking/backend/internal/executor"
	"github.com/exotic-travel-booking/backend/internal/httpapi"
	"github.com/exotic-travel-booking/backend/internal/session"
	"github.com/exotic-travel-booking/backend/internal/store"
	"github.com/exotic-travel-booking/backend/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	cleanup, err := observability.InitTracing("trip-designer", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer cleanup()

	itineraryStore, closeStore, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to initialize itinerary store: %v", err)
	}
	defer closeStore()

	exec := executor.New(itineraryStore, cfg.ToolSearchRPS, cfg.ToolSearchBurst)

	sessions := session.NewManager(cfg.SessionTTL, cfg.SessionCostCeilingUSD)
	defer sessions.Stop()

	engine := conversation.New(sessions, itineraryStore, exec, conversation.Config{
		Model:               cfg.OpenAIModel,
		CompactionModel:     cfg.CompactionModel,
		CompactionThreshold: cfg.CompactionThreshold,
		MaxToolIterations:   cfg.MaxToolIterations,
		LLMCallTimeout:      60 * time.Second,
	})

	app := fiber.New(fiber.Config{
		AppName:      "Trip Designer API",
		ServerHeader: "Trip Designer",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	chatHandler := httpapi.NewChatHandler(engine, itineraryStore)
	itineraryHandler := httpapi.NewItineraryHandler(itineraryStore)
	httpapi.RegisterRoutes(app, chatHandler, itineraryHandler, cfg.JWTSecret)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Printf("trip designer server listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutting down trip designer server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
}

// buildStore wires the itinerary store per cfg.StoreBackend: an
// in-memory store for local development, or Postgres with an optional
// Redis cache-aside layer in front of it.
func buildStore(cfg *config.Config) (store.ItineraryStore, func(), error) {
	if cfg.StoreBackend != "postgres" {
		return store.NewMemoryStore(), func() {}, nil
	}

	pool, err := database.NewPool(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	pgStore := store.NewPostgresStore(pool)

	if !cfg.RedisEnabled {
		return pgStore, func() { pool.Close() }, nil
	}

	redisCache, err := cache.NewCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cachedStore := store.NewCachedStore(pgStore, redisCache)
	return cachedStore, func() {
		redisCache.Close()
		pool.Close()
	}, nil
}
