// Package pipeline runs a document through load, extract, normalize and
// reconcile. One call per submitted document; the pipeline never retries on
// its own, it classifies failures and hands them back.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/document"
	"github.com/binarybreez/jobswipe/internal/extract"
	"github.com/binarybreez/jobswipe/internal/identity"
	"github.com/binarybreez/jobswipe/internal/normalize"
	"github.com/binarybreez/jobswipe/internal/reconcile"
)

// Config bounds the pipeline's gateway calls.
type Config struct {
	// GatewayTimeout bounds each store and identity call. Zero means no
	// deadline beyond the request context.
	GatewayTimeout time.Duration
}

// Processor wires the stages. Identity is optional; when nil, candidates are
// reconciled without an identity id.
type Processor struct {
	cfg        Config
	loader     document.Loader
	textLoader document.Loader
	extractor  extract.FieldExtractor
	normalizer *normalize.Normalizer
	reconciler *reconcile.Reconciler
	identity   identity.Gateway
	logger     *slog.Logger
}

func NewProcessor(
	cfg Config,
	pdf document.Loader,
	text document.Loader,
	fx extract.FieldExtractor,
	nm *normalize.Normalizer,
	rc *reconcile.Reconciler,
	idg identity.Gateway,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:        cfg,
		loader:     pdf,
		textLoader: text,
		extractor:  fx,
		normalizer: nm,
		reconciler: rc,
		identity:   idg,
		logger:     logger,
	}
}

// Result is the pipeline's receipt for one document.
type Result struct {
	Reconcile *reconcile.Result             `json:"reconcile"`
	Kind      constants.DocumentKind        `json:"kind"`
	Coverage  map[string]constants.Coverage `json:"coverage,omitempty"`
}

// ProcessPDF ingests a PDF byte stream as the given document kind.
func (p *Processor) ProcessPDF(ctx context.Context, data []byte, kind constants.DocumentKind) (*Result, error) {
	pages, err := p.loader.Load(ctx, data)
	if err != nil {
		p.logger.Warn("pipeline.load.failed", "kind", kind, "error", err)
		return nil, err
	}
	return p.process(ctx, pages, kind)
}

// ProcessText ingests pasted plain text, used for job descriptions submitted
// without a file.
func (p *Processor) ProcessText(ctx context.Context, text string, kind constants.DocumentKind) (*Result, error) {
	pages, err := p.textLoader.Load(ctx, []byte(text))
	if err != nil {
		p.logger.Warn("pipeline.load.failed", "kind", kind, "error", err)
		return nil, err
	}
	return p.process(ctx, pages, kind)
}

func (p *Processor) process(ctx context.Context, pages document.Pages, kind constants.DocumentKind) (*Result, error) {
	start := time.Now()

	fields, err := p.extractor.ExtractFields(ctx, pages, kind)
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "kind", kind, "error", err)
		return nil, err
	}

	rec, err := p.normalizer.Normalize(fields)
	if err != nil {
		p.logger.Warn("pipeline.normalize.failed", "kind", kind, "error", err)
		return nil, err
	}

	identityID := ""
	if p.identity != nil && rec.Kind == constants.EntityCandidate && rec.Email != "" {
		idCtx, cancel := common.WithTimeout(ctx, p.cfg.GatewayTimeout)
		identityID, err = p.identity.GetOrCreateIdentity(idCtx, rec.Email)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	// A caller that goes away mid-write must not leave a half-applied
	// decision behind; the reconcile runs to completion under its own
	// deadline even if the request context is cancelled.
	rcCtx, cancel := common.WithTimeout(context.WithoutCancel(ctx), p.cfg.GatewayTimeout)
	defer cancel()
	res, err := p.reconciler.Reconcile(rcCtx, rec, identityID)
	if err != nil {
		return nil, err
	}

	p.logger.Info("pipeline.process.ok",
		"request_id", common.RequestIDFromContext(ctx),
		"kind", kind,
		"outcome", res.Outcome,
		"entity_id", res.EntityID,
		"chars", pages.CharCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Reconcile: res, Kind: kind, Coverage: rec.Coverage}, nil
}
