// Package reconcile lands normalized records in the store. Each call either
// creates the entity for a natural key, merges into the existing one, or
// proves a no-op, and says which.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/entity"
	"github.com/binarybreez/jobswipe/internal/store"
)

// Outcome tells the caller what the reconciliation did.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeMerged  Outcome = "merged"
	OutcomeNoOp    Outcome = "noop"
)

// Result is the receipt for one reconciled record.
type Result struct {
	Outcome       Outcome   `json:"outcome"`
	EntityID      uuid.UUID `json:"entity_id"`
	NaturalKey    string    `json:"natural_key"`
	ChangedFields []string  `json:"changed_fields,omitempty"`
}

type Reconciler struct {
	store  store.Gateway
	logger *slog.Logger
}

func NewReconciler(gw store.Gateway, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: gw, logger: logger}
}

// Reconcile lands rec under its natural key. identityID may be empty; when
// set it is attached on create and backfilled on merge. Two concurrent calls
// for the same new key both succeed: one creates, the loser of the insert
// race re-reads and merges.
func (r *Reconciler) Reconcile(ctx context.Context, rec *entity.Record, identityID string) (*Result, error) {
	start := time.Now()

	existing, err := r.store.FindByKey(ctx, rec.Kind, rec.NaturalKey)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		e := &entity.Entity{
			Kind:       rec.Kind,
			NaturalKey: rec.NaturalKey,
			IdentityID: identityID,
			Record:     *rec,
		}
		created, id, err := r.store.UpsertByKey(ctx, e)
		if err != nil {
			return nil, err
		}
		if created {
			r.logger.Info("reconcile.ok",
				"outcome", OutcomeCreated,
				"kind", rec.Kind,
				"entity_id", id,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return &Result{Outcome: OutcomeCreated, EntityID: id, NaturalKey: rec.NaturalKey}, nil
		}
		// Lost the insert race; the winner's row is the merge target.
		existing, err = r.store.FindByKey(ctx, rec.Kind, rec.NaturalKey)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			// The row vanished between the race and the re-read. Treat the
			// store as unhealthy rather than looping.
			return nil, storeRaceErr(rec.NaturalKey)
		}
	}

	changed := mergeRecords(&existing.Record, rec)
	if identityID != "" && existing.IdentityID == "" {
		existing.IdentityID = identityID
		if len(changed) == 0 {
			// Identity backfill alone still needs a write.
			if err := r.store.ApplyMerge(ctx, existing); err != nil {
				return nil, err
			}
		}
	}
	if len(changed) == 0 {
		r.logger.Info("reconcile.ok",
			"outcome", OutcomeNoOp,
			"kind", rec.Kind,
			"entity_id", existing.ID,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return &Result{Outcome: OutcomeNoOp, EntityID: existing.ID, NaturalKey: rec.NaturalKey}, nil
	}

	if err := r.store.ApplyMerge(ctx, existing); err != nil {
		return nil, err
	}
	r.logger.Info("reconcile.ok",
		"outcome", OutcomeMerged,
		"kind", rec.Kind,
		"entity_id", existing.ID,
		"changed_fields", changed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &Result{
		Outcome:       OutcomeMerged,
		EntityID:      existing.ID,
		NaturalKey:    rec.NaturalKey,
		ChangedFields: changed,
	}, nil
}

func storeRaceErr(key string) error {
	return common.NewFailure(common.StoreUnavailable,
		fmt.Sprintf("entity for %q disappeared after losing the insert race", key), nil)
}
