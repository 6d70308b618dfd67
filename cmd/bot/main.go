package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/axz356574-a11y/Confession/internal/activity"
	"github.com/axz356574-a11y/Confession/internal/bot"
	"github.com/axz356574-a11y/Confession/internal/storage"
	"github.com/axz356574-a11y/Confession/internal/web"
	"github.com/axz356574-a11y/Confession/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Activity store, restored from the last snapshot
	store := activity.NewStore(cfg.Activity.MaxSamples, logger)
	persister := activity.NewPersister(store, cfg.Activity.DataFile,
		time.Duration(cfg.Activity.SaveInterval)*time.Second, logger)
	persister.Load()

	counter := activity.NewCounter(cfg.Activity.CounterFile, logger)
	counter.Load()

	// Confession archive
	var archive storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory confession archive")
		archive = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL confession archive")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		archive, err = storage.NewPostgresStorage(dbConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer archive.Close()

	// Periodic snapshot flush, with one final flush on shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		persister.Run(ctx)
	}()

	// Keep-alive endpoint + presence ingest
	if cfg.Keepalive.Enabled {
		server := web.NewServer(store, cfg.Keepalive.Port, logger)
		go func() {
			if err := server.Run(ctx); err != nil {
				logger.Error("Keep-alive server error", zap.Error(err))
			}
		}()
	}

	// Initialize bot
	b, err := bot.New(bot.Config{
		Token:            cfg.Telegram.Token,
		ConfessionChatID: cfg.Telegram.ConfessionChatID,
		AdminIDs:         cfg.Telegram.AdminIDs,
	}, store, counter, archive, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot; returns when the shutdown signal arrives
	if err := b.Start(ctx); err != nil {
		logger.Error("Bot error", zap.Error(err))
	}

	stop()
	wg.Wait()
	logger.Info("Shutdown complete")
}
