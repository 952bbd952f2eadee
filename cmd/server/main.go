package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daap14/formadmin/internal/api"
	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/auth"
	"github.com/daap14/formadmin/internal/config"
	"github.com/daap14/formadmin/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	st, err := store.Open(ctx, store.Options{
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		JSONPath:    cfg.MockDBPath,
	})
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("store opened", "backend", st.Backend())

	if cfg.FormsSeedPath != "" {
		if err := seedForms(ctx, st, cfg.FormsSeedPath); err != nil {
			slog.Error("failed to import forms seed", "error", err, "path", cfg.FormsSeedPath)
			os.Exit(1)
		}
	}

	authService := auth.NewService(st,
		auth.NewHasher(cfg.PasswordScheme, cfg.BcryptCost),
		auth.NewSessions(auth.SessionOptions{
			TTL:    cfg.SessionTTL,
			Secret: cfg.SessionSecret,
			Path:   cfg.CookiePath(),
			Secure: cfg.CookieSecure,
		}),
		auth.AdminAccount{
			ID:       cfg.AdminID,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
			Name:     cfg.AdminName,
		},
	)

	if cfg.AdminPassword == config.DefaultAdminPassword {
		slog.Warn("principal admin uses the default password; set ADMIN_PASSWORD")
	}
	if cfg.SessionSecret == "" {
		slog.Warn("SESSION_SECRET is not set; session claims are not signed")
	}

	boot, err := authService.Bootstrap(ctx)
	if err != nil {
		slog.Error("failed to bootstrap principal admin", "error", err)
		os.Exit(1)
	}
	if boot.Conflict {
		slog.Warn("ADMIN_EMAIL belongs to an account that is not an active admin; no principal admin available",
			"email", cfg.AdminEmail, "userId", boot.ID)
	} else {
		slog.Info("principal admin ready", "id", boot.ID, "created", boot.Created)
	}

	router := api.NewRouter(api.RouterDeps{
		Store:              st,
		AuthService:        authService,
		Gate:               auth.NewGate(),
		Metrics:            middleware.NewMetrics("formadmin"),
		Version:            cfg.Version,
		BasePath:           cfg.BasePath,
		EmailDomain:        cfg.EmailDomain,
		UIDir:              cfg.UIDir,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.Port, "version", cfg.Version, "loginPage", cfg.AppPath(auth.PathLogin))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func seedForms(ctx context.Context, st store.Store, path string) error {
	forms, err := store.LoadFormsSeed(path)
	if err != nil {
		return err
	}
	_, err = store.ImportForms(ctx, st, forms)
	return err
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
