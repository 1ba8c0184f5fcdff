package main

import (
	"civicdesk/backend/internal/api"
	"civicdesk/backend/internal/api/handler"
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/feed"
	"civicdesk/backend/internal/localization"
	"civicdesk/backend/internal/logger"
	"civicdesk/backend/internal/storage"
	"civicdesk/backend/internal/telegram"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	dotenvLoaded := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "civicdesk-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	if !dotenvLoaded {
		log.Warn("no .env file loaded, using process environment")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func setupRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("starting civicdesk backend", zap.String("env", cfg.Env), zap.String("port", cfg.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	rdb, err := setupRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}
	store := storage.NewStorageService(db, rdb, log.Named("storage"))
	log.Info("database connected, migrations complete", zap.Bool("redis", rdb != nil))

	var bus feed.EventBus
	if rdb != nil {
		bus = store
	}
	hub := feed.NewManagerService(bus, log.Named("feed"))
	go hub.Run(ctx)

	complaints := complaint.NewService(store, hub, log.Named("complaint"), cfg.StrictTransitions)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authn := middleware.NewAuthenticator(tokens, store, log.Named("auth"))

	h := handler.NewHandler(handler.Deps{
		Store:       store,
		Complaints:  complaints,
		Tokens:      tokens,
		Hub:         hub,
		Logger:      log.Named("http"),
		FrontendURL: cfg.FrontendURL,
		Development: cfg.IsDevelopment(),
	})
	router := api.NewRouter(h, authn, cfg.FrontendURL, log.Named("http"))

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBotService(cfg.TelegramBotToken, cfg.TelegramAdminChatID, cfg.DefaultLanguage,
			hub, complaints, localization.Default(), log.Named("telegram"))
		if err != nil {
			// Notifications are optional; the API keeps serving without them.
			log.Error("telegram bot disabled", zap.Error(err))
		} else {
			go bot.Run(ctx)
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
