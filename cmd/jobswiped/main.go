// jobswiped is the HTTP daemon: it serves resume uploads and job
// submissions, reconciles them into the entity store, and exports rosters.
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

	"github.com/joho/godotenv"

	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/document"
	"github.com/binarybreez/jobswipe/internal/export"
	"github.com/binarybreez/jobswipe/internal/extract"
	"github.com/binarybreez/jobswipe/internal/identity"
	"github.com/binarybreez/jobswipe/internal/llm/openai"
	"github.com/binarybreez/jobswipe/internal/normalize"
	"github.com/binarybreez/jobswipe/internal/pipeline"
	"github.com/binarybreez/jobswipe/internal/reconcile"
	"github.com/binarybreez/jobswipe/internal/server"
	"github.com/binarybreez/jobswipe/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("opening store", "error", err)
		os.Exit(1)
	}
	defer gw.Close()

	policy := normalize.DefaultPolicy()
	if cfg.Pipeline.PolicyPath != "" {
		policy, err = normalize.LoadPolicy(cfg.Pipeline.PolicyPath)
		if err != nil {
			logger.Error("loading policy", "path", cfg.Pipeline.PolicyPath, "error", err)
			os.Exit(2)
		}
	}

	var fx extract.FieldExtractor = extract.NewRuleExtractor(logger)
	if cfg.LLM.Enabled {
		fx = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			Lenient:     true,
		}, logger)
		logger.Info("llm extractor enabled", "model", cfg.LLM.Model)
	}

	var idg identity.Gateway
	if cfg.Identity.SecretKey != "" {
		idg = identity.NewClerk(identity.ClerkConfig{
			BaseURL:   cfg.Identity.BaseURL,
			SecretKey: cfg.Identity.SecretKey,
			Timeout:   cfg.Identity.Timeout,
		}, logger)
	}

	proc := pipeline.NewProcessor(
		pipeline.Config{GatewayTimeout: cfg.Pipeline.GatewayTimeout},
		document.NewPDFLoader(logger),
		document.PlainTextLoader{},
		fx,
		normalize.NewNormalizer(policy, logger),
		reconcile.NewReconciler(gw, logger),
		idg,
		logger,
	)

	srv := server.NewServer(server.Config{
		Addr:           cfg.Server.Addr,
		MaxUploadBytes: cfg.Pipeline.MaxUploadBytes,
	}, proc, export.NewService(gw, logger), gw, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("bye")
}

func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (store.Gateway, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return store.OpenPostgres(ctx, store.PostgresConfig{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
	case "sqlite":
		return store.OpenSQLite(cfg.Database.SQLitePath, logger)
	default:
		logger.Warn("using in-memory store; entities will not survive restarts")
		return store.NewMemory(), nil
	}
}
