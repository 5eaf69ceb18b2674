package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashquiz-backend/internal/config"
	"flashquiz-backend/internal/database"
	"flashquiz-backend/internal/handlers"
	"flashquiz-backend/internal/logger"
	"flashquiz-backend/internal/repository"
	"flashquiz-backend/internal/router"
	"flashquiz-backend/internal/services"
	"flashquiz-backend/internal/store"
	"flashquiz-backend/internal/websocket"
	"flashquiz-backend/internal/worker"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	mode := "development"
	if cfg.IsProduction() {
		mode = "production"
	}
	log, err := logger.New(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Logger initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("🚀 Starting Flashcard Quiz Backend...")
	log.Info("✓ Environment variables loaded", "env", cfg.Env, "store", cfg.StoreDriver)

	checks := map[string]handlers.Pinger{}

	// ──── Step 2: Open the Store ────
	var st store.Store
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("✗ PostgreSQL connection failed", "error", err)
		}
		defer pool.Close()
		log.Info("✓ PostgreSQL connected")

		if err := database.RunMigrations(pool, log); err != nil {
			log.Fatal("✗ Database migration failed", "error", err)
		}
		log.Info("✓ Database migrations applied")

		st = store.NewPostgres(pool)
		checks["store"] = handlers.PingFunc(pool.Ping)
	case "sqlite":
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatal("✗ SQLite open failed", "path", cfg.SQLitePath, "error", err)
		}
		log.Info("✓ SQLite opened", "path", cfg.SQLitePath)

		st = store.NewSQLite(db)
		checks["store"] = handlers.PingFunc(db.PingContext)
	case "memory":
		st = store.NewMemory(repository.MemoryTables()...)
		log.Warn("✓ In-memory store selected; data is lost on exit")
	default:
		log.Fatal("✗ Unknown STORE_DRIVER", "driver", cfg.StoreDriver)
	}
	defer st.Close()

	// ──── Step 3: Initialize Redis Clients (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		redisClients, err = database.NewRedisClients(cfg.RedisURL, cfg.WorkerCount)
		if err != nil {
			log.Fatal("✗ Redis connection failed", "error", err)
		}
		defer redisClients.Close()
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisClients.Jobs.Ping(ctx).Err()
		})
		log.Info("✓ Redis connected")
	} else {
		log.Warn("REDIS_URL not set; PDF processing and live events are disabled")
	}

	// ──── Step 4: Card Generator ────
	var generator services.CardGenerator = services.HeuristicGenerator{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiConcurrentReqs, log)
		if err != nil {
			log.Fatal("✗ Gemini client initialization failed", "error", err)
		}
		defer gemini.Close()
		generator = gemini
		log.Info("✓ Gemini Flash client initialized")
	}

	// ──── Initialize Repositories & Managers ────
	var (
		publisher = services.NopPublisher()
		jobQueue  services.JobQueue
	)
	if redisClients != nil {
		publisher = services.NewRedisPublisher(redisClients.Events, log)
		jobQueue = worker.NewQueue(redisClients.Jobs)
	}

	fileExtract := services.NewFileExtractService()
	flashcardManager := services.NewFlashcardManager(repository.NewFlashcardRepo(st), log)
	progressManager := services.NewProgressManager(repository.NewProgressRepo(st), publisher, log)
	pdfManager := services.NewPDFManager(repository.NewPDFRepo(st), fileExtract, jobQueue, cfg.StoragePath, log)

	// ──── Step 5: Start Job Worker Pool ────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		workerPool *worker.Pool
		wsHub      *websocket.Hub
	)
	if redisClients != nil {
		workerPool = worker.NewPool(
			redisClients.Jobs,
			fileExtract,
			generator,
			flashcardManager,
			publisher,
			cfg.StoragePath,
			cfg.WorkerCount,
			log,
		)
		workerPool.Start()
		log.Info("✓ Worker pool started", "workers", cfg.WorkerCount)

		// ──── Step 6: Start WebSocket Hub ────
		wsHub = websocket.NewHub(redisClients.Events, services.EventsChannel, log)
		go wsHub.Run(ctx)
		log.Info("✓ WebSocket hub started")
	}

	// ──── Step 7: Start HTTP Server ────
	r, stopRouter := router.New(
		log,
		handlers.NewHealthHandler(checks),
		handlers.NewFlashcardHandler(flashcardManager),
		handlers.NewProgressHandler(progressManager),
		handlers.NewPDFHandler(pdfManager),
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("✗ HTTP shutdown failed", "error", err)
		}
		stopRouter()
		if workerPool != nil {
			workerPool.Stop()
		}
	}()

	log.Info(fmt.Sprintf("✓ Flashcard Quiz Backend ready on http://localhost:%s", cfg.Port))
	if wsHub != nil {
		log.Info(fmt.Sprintf("  WS:  ws://localhost:%s/ws", cfg.Port))
	}

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Server error", "error", err)
	}
	<-done
	log.Info("✓ Shutdown complete")
}
