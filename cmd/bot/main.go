package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/laststanding/backend/internal/api"
	"github.com/laststanding/backend/internal/bot"
	"github.com/laststanding/backend/internal/config"
	"github.com/laststanding/backend/internal/database"
	"github.com/laststanding/backend/internal/engine"
	"github.com/laststanding/backend/internal/fpl"
	"github.com/laststanding/backend/internal/lifelines"
	"github.com/laststanding/backend/internal/migrations"
	"github.com/laststanding/backend/internal/redis"
	"github.com/laststanding/backend/internal/scheduler"
	"github.com/laststanding/backend/internal/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Redis is a cache here; missing Redis degrades to direct API calls.
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("[REDIS] Unavailable, continuing without FPL cache: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	st := store.New(db)
	oracle := fpl.NewClient(
		cfg.FPLBaseURL,
		time.Duration(cfg.FPLTimeoutSeconds)*time.Second,
		time.Duration(cfg.FPLCacheMinutes)*time.Minute,
		rdb,
	)
	eng := engine.New(st, oracle)
	ll := lifelines.New(db, st)

	app, err := bot.New(cfg, st, oracle, ll)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(oracle, eng, st, app, scheduler.Config{
		ResultsInterval:  time.Duration(cfg.ResultsIntervalMinutes) * time.Minute,
		ReminderInterval: time.Duration(cfg.ReminderIntervalMinutes) * time.Minute,
		RolloverInterval: time.Duration(cfg.RolloverIntervalHours) * time.Hour,
		KeepAlive:        time.Duration(cfg.KeepAliveMinutes) * time.Minute,
		Port:             cfg.Port,
	})
	go sched.Run(ctx)

	// Health server for the hosting platform.
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	go func() {
		log.Printf("Starting health server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start health server: %v", err)
		}
	}()

	log.Println("Starting Last Man Standing bot")
	if err := app.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot stopped: %v", err)
	}
}
