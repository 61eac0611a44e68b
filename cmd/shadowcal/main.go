package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"shadowcal/internal/backup"
	"shadowcal/internal/database"
	"shadowcal/internal/logging"
	"shadowcal/internal/server"
)

type config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	DBPath    string `env:"DB_PATH" envDefault:"shadowcal.db"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	APITokenHash string   `env:"API_TOKEN_HASH"`
	WSOrigins    []string `env:"WS_ORIGINS"`

	VAPIDPublic  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivate string `env:"VAPID_PRIVATE_KEY"`
	PushContact  string `env:"PUSH_CONTACT" envDefault:"mailto:ops@shadowcal.app"`

	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	BackupSchedule  string `env:"BACKUP_SCHEDULE" envDefault:"0 3 * * *"`
	BackupRetention int    `env:"BACKUP_RETENTION_DAYS" envDefault:"30"`
}

func main() {
	cfg, err := env.ParseAsWithOptions[config](env.Options{Prefix: "SHADOWCAL_"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		APITokenHash: cfg.APITokenHash,
		WSOrigins:    cfg.WSOrigins,
		VAPIDPublic:  cfg.VAPIDPublic,
		VAPIDPrivate: cfg.VAPIDPrivate,
		PushContact:  cfg.PushContact,
		Backup: backup.Config{
			S3: backup.S3Config{
				Endpoint:  cfg.S3Endpoint,
				Bucket:    cfg.S3Bucket,
				Region:    cfg.S3Region,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			},
			DBPath:        cfg.DBPath,
			Schedule:      cfg.BackupSchedule,
			RetentionDays: cfg.BackupRetention,
		},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.BackupManager().Start(ctx); err != nil {
		logger.Error("start backup schedule", "error", err)
		os.Exit(1)
	}
	defer srv.BackupManager().Stop()

	// Expired rate-limit windows accumulate without periodic cleanup.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
