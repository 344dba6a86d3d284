package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"gymportal/internal/adapters/email"
	web "gymportal/internal/adapters/http"
	"gymportal/internal/adapters/http/perf"
	"gymportal/internal/adapters/storage"
	accountStore "gymportal/internal/adapters/storage/account"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/config"
	"gymportal/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, cfg.IsProduction(), cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timed := storage.NewTimedDB(db, collector, cfg.SlowQuery)
	accounts := accountStore.NewSQLiteStore(timed)
	members := memberStore.NewSQLiteStore(timed)

	var sender email.Sender
	if cfg.ResendKey != "" {
		sender = email.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		logger.Info("email_sender", "provider", "resend")
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() {
			logger.Warn("email_sender", "provider", "noop", "detail", "GYM_RESEND_KEY is not set, email delivery is disabled")
		} else {
			logger.Info("email_sender", "provider", "noop")
		}
	}

	srv, err := web.New(web.Deps{
		Accounts: accounts,
		Members:  members,
		Sender:   sender,
		Logger:   logger,
		Perf:     collector,
	}, web.Options{
		CSRFKey:            cfg.CSRFKey,
		SecureCookies:      cfg.IsProduction(),
		SessionTTL:         cfg.SessionTTL,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequest:        cfg.SlowRequest,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		serveErr <- httpServer.ListenAndServe()
	}()

	// Listening before seeding lets the gate answer with the loading page
	// instead of the connection being refused.
	if err := seed(ctx, cfg, accounts, members); err != nil {
		return err
	}
	go srv.Sessions().RunSweeper(ctx, time.Minute)
	srv.MarkReady()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server_stop")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func seed(ctx context.Context, cfg config.Config, accounts *accountStore.SQLiteStore, members *memberStore.SQLiteStore) error {
	newID := func() string { return uuid.New().String() }
	if cfg.AdminPassword != "" {
		err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{
			AccountStore: accounts,
			GenerateID:   newID,
			Now:          time.Now,
		}, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	if cfg.IsProduction() {
		return nil
	}
	err := orchestrators.ExecuteSeedTestAccounts(ctx, orchestrators.TestAccountSeedDeps{
		AccountStore: accounts,
		MemberStore:  members,
		GenerateID:   newID,
		Now:          time.Now,
	})
	if err != nil {
		return fmt.Errorf("seed test accounts: %w", err)
	}
	return nil
}
