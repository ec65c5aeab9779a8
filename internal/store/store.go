// Package store persists reconciled entities keyed by (kind, natural key).
// Three gateways share one contract: postgres for production, sqlite for
// single-binary deployments, and an in-memory map for tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/common"
	"github.com/binarybreez/jobswipe/internal/entity"
)

// Gateway is the persistence boundary the reconciler depends on.
type Gateway interface {
	// FindByKey returns the entity for a natural key, or (nil, nil) when no
	// entity exists. A stored document that fails schema validation returns a
	// CorruptEntity failure.
	FindByKey(ctx context.Context, kind constants.EntityKind, key string) (*entity.Entity, error)

	// UpsertByKey inserts e if no entity holds its (kind, natural key) yet.
	// The insert is atomic with respect to concurrent callers: exactly one
	// wins. created reports whether this call performed the insert; when
	// false, id is the existing entity's id and the caller should re-read and
	// merge instead.
	UpsertByKey(ctx context.Context, e *entity.Entity) (created bool, id uuid.UUID, err error)

	// ApplyMerge overwrites the stored record and identity id for e's natural
	// key, bumping updated_at.
	ApplyMerge(ctx context.Context, e *entity.Entity) error

	// List returns all entities of a kind, ordered by natural key.
	List(ctx context.Context, kind constants.EntityKind) ([]*entity.Entity, error)

	Close()
}

// Pinger is implemented by gateways that can report backend connectivity.
// The health endpoint probes it when the configured gateway offers one.
type Pinger interface {
	Ping(ctx context.Context, timeout time.Duration) error
}

// unavailable wraps a backend error as a StoreUnavailable failure. Context
// expiry counts: a gateway that cannot answer in time is unavailable.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var f *common.Failure
	if errors.As(err, &f) {
		return err
	}
	return common.NewFailure(common.StoreUnavailable, "store: "+op, err)
}

func isCtxErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
