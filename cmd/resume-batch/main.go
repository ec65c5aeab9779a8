// resume-batch ingests a directory of PDF resumes in one run, bounded
// concurrency, one line of output per file.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/document"
	"github.com/binarybreez/jobswipe/internal/extract"
	"github.com/binarybreez/jobswipe/internal/normalize"
	"github.com/binarybreez/jobswipe/internal/pipeline"
	"github.com/binarybreez/jobswipe/internal/reconcile"
	"github.com/binarybreez/jobswipe/internal/store"
)

func main() {
	var (
		dir     = flag.String("dir", ".", "directory of PDF resumes")
		workers = flag.Int("workers", 4, "concurrent ingestions")
	)
	flag.Parse()

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
			os.Exit(1)
		}
	}

	proc := pipeline.NewProcessor(
		pipeline.Config{GatewayTimeout: cfg.Pipeline.GatewayTimeout},
		document.NewPDFLoader(logger),
		document.PlainTextLoader{},
		extract.NewRuleExtractor(logger),
		normalize.NewNormalizer(policy, logger),
		reconcile.NewReconciler(gw, logger),
		nil,
		logger,
	)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("reading directory", "dir", *dir, "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)

	var ok, failed int
	results := make(chan bool)
	done := make(chan struct{})
	go func() {
		for success := range results {
			if success {
				ok++
			} else {
				failed++
			}
		}
		close(done)
	}()

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(*dir, entry.Name())
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Error("batch.read_failed", "file", path, "error", err)
				results <- false
				return nil
			}
			res, err := proc.ProcessPDF(gctx, data, constants.KindResume)
			if err != nil {
				// terminal document failures should not stop the batch;
				// store outages should
				if f, isFailure := common.AsFailure(err); isFailure && !f.Retryable() {
					logger.Warn("batch.skipped", "file", path, "kind", f.Kind, "error", err)
					results <- false
					return nil
				}
				results <- false
				return err
			}
			logger.Info("batch.ingested",
				"file", path,
				"outcome", res.Reconcile.Outcome,
				"natural_key", res.Reconcile.NaturalKey,
			)
			results <- true
			return nil
		})
	}

	batchErr := g.Wait()
	close(results)
	<-done

	logger.Info("batch.done", "ok", ok, "failed", failed)
	if batchErr != nil {
		logger.Error("batch aborted", "error", batchErr)
		os.Exit(1)
	}
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
		return store.NewMemory(), nil
	}
}
