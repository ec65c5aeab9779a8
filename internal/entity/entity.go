package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/binarybreez/jobswipe/constants"
)

// Entity is the durable aggregate owned by the persistence gateway. It is
// created on the first successful reconciliation for its natural key, mutated
// by merges, and never deleted by the pipeline.
type Entity struct {
	ID         uuid.UUID            `json:"id"`
	Kind       constants.EntityKind `json:"kind"`
	NaturalKey string               `json:"natural_key"`
	IdentityID string               `json:"identity_id,omitempty"`
	Record     Record               `json:"record"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}
