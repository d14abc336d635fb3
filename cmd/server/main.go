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

	"go.uber.org/zap"

	"buildingportal/internal/api"
	"buildingportal/internal/auth"
	"buildingportal/internal/config"
	"buildingportal/internal/db"
	"buildingportal/internal/logging"
	"buildingportal/internal/notify"
	"buildingportal/internal/service"
	"buildingportal/internal/store"
	"buildingportal/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	sqdb, err := db.OpenSQLite(cfg.DBPath, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer sqdb.Close()
	if err := db.ApplyMigrations(sqdb, cfg.MigrationsDir); err != nil {
		logger.Fatal("migration", zap.Error(err))
	}

	st := store.New(sqdb)
	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
		hash, err := auth.HashPassword(cfg.BootstrapAdminPassword)
		if err != nil {
			logger.Fatal("bootstrap admin hash", zap.Error(err))
		}
		if err := st.EnsureAdmin(context.Background(), cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail, "관리자", hash); err != nil {
			logger.Fatal("bootstrap admin create", zap.Error(err))
		}
		logger.Info("bootstrap admin ensured", zap.String("username", cfg.BootstrapAdminUsername))
	}

	tokens, err := auth.NewTokenIssuer(cfg.TokenSigningSecret, cfg.TokenIssuer, cfg.TokenTTL, time.Now)
	if err != nil {
		logger.Fatal("token issuer", zap.Error(err))
	}
	sender := notify.NewSender(cfg, logger)
	svc := service.New(cfg, st, tokens, sender, logger)
	r := api.NewRouter(cfg, svc, logger)

	hsrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadHeaderTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		info := version.Current()
		logger.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("version", info.Version),
			zap.String("commit", info.Commit),
		)
		errCh <- hsrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hsrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", zap.Error(err))
		}
	}
}
