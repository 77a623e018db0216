package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lovechat/backend/internal/api/handler"
	"lovechat/backend/internal/chathub"
	"lovechat/backend/internal/config"
	"lovechat/backend/internal/localization"
	"lovechat/backend/internal/presence"
	"lovechat/backend/internal/storage"
	"lovechat/backend/internal/thread"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDependencies(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := storage.OpenDatabase(cfg.DBDriver, cfg.DatabaseDSN, logger.Warn)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
	} else {
		log.Println("WARNING: REDIS_ADDR is empty, last-active tracking disabled")
	}

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting LoveChat Backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependencies
	db, rdb := setupDependencies(ctx, cfg)
	s := storage.NewStorageService(db, rdb)

	// presence starts empty, so connections left by a previous run are stale
	if n, err := s.ResetConnections(ctx); err != nil {
		log.Fatalf("Failed to reset connections: %v", err)
	} else if n > 0 {
		log.Printf("Removed %d stale connections", n)
	}

	loc, err := localization.Default()
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	// 2. Hub
	threads := thread.NewService(s, cfg.MaxMessageLength)
	hub := chathub.NewHub(s, threads, presence.NewTracker(cfg.PresenceShards), s, loc)
	hub.Clients = chathub.NewRegistry(cfg.PresenceShards)

	// 3. Gin and routes
	r := gin.Default()
	h := handler.NewHandler(hub, s, handler.NewAuth(cfg.JWTSecret, cfg.TokenTTL), cfg.ClientBuffer)
	h.Register(r)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	if rdb != nil {
		rdb.Close()
	}
	log.Println("Server stopped")
}
