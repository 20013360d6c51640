package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	geminiadapter "github.com/prpatrol/prpatrol/internal/adapter/driven/gemini"
	githubadapter "github.com/prpatrol/prpatrol/internal/adapter/driven/github"
	"github.com/prpatrol/prpatrol/internal/adapter/driven/memory"
	sqliteadapter "github.com/prpatrol/prpatrol/internal/adapter/driven/sqlite"
	httphandler "github.com/prpatrol/prpatrol/internal/adapter/driving/http"
	"github.com/prpatrol/prpatrol/internal/application"
	"github.com/prpatrol/prpatrol/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"github_app_id", cfg.GitHubAppID,
		"gemini_model", cfg.GeminiModel,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	cycleStore := sqliteadapter.NewCycleRepo(db)

	ghClient, err := githubadapter.NewClient(cfg.GitHubAppID, cfg.GitHubPrivateKey, memory.NewTokenCache())
	if err != nil {
		return err
	}
	slog.Info("github app client created", "app_id", cfg.GitHubAppID)

	tokenSource, err := geminiadapter.TokenSourceFromServiceAccountKey(ctx, cfg.GCPServiceAccountKey)
	if err != nil {
		return err
	}
	reviewer := geminiadapter.NewClient(geminiadapter.Config{
		ProjectID:       cfg.GCPProjectID,
		Model:           cfg.GeminiModel,
		Temperature:     cfg.GeminiTemperature,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
	}, tokenSource)

	// 6. Wire application services.
	poster := application.NewPoster(ghClient)
	reviewSvc := application.NewReviewService(ghClient, reviewer, poster, cycleStore, cfg.GuidelinesDir, cfg.MaxDiffChars)
	mentionSvc := application.NewMentionService(ghClient, ghClient, reviewer, cfg.GuidelinesDir)

	// 7. Create HTTP handler with webhook and API routes.
	apiHandler := httphandler.NewHandler(
		[]byte(cfg.WebhookSecret), cfg.BotHandle, reviewSvc, mentionSvc, cycleStore, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 8. Log startup complete.
	slog.Info("prpatrol started",
		"listen_addr", cfg.ListenAddr,
		"bot_handle", cfg.BotHandle,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	// Detached review cycles already running will finish on their own clock.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
