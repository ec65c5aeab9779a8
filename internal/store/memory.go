package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/entity"
)

// Memory is a map-backed Gateway. It honors the same atomicity contract as
// the SQL gateways and validates stored documents on read, so pipeline tests
// exercise the real reconciliation paths.
type Memory struct {
	mu       sync.Mutex
	rows     map[memKey][]byte
	ids      map[memKey]uuid.UUID
	created  map[memKey]time.Time
	updated  map[memKey]time.Time
	identity map[memKey]string

	// FailWith, when set, makes every call return it. Tests use this to
	// simulate an unavailable backend.
	FailWith error
}

type memKey struct {
	kind constants.EntityKind
	key  string
}

func NewMemory() *Memory {
	return &Memory{
		rows:     make(map[memKey][]byte),
		ids:      make(map[memKey]uuid.UUID),
		created:  make(map[memKey]time.Time),
		updated:  make(map[memKey]time.Time),
		identity: make(map[memKey]string),
	}
}

func (m *Memory) FindByKey(ctx context.Context, kind constants.EntityKind, key string) (*entity.Entity, error) {
	if err := m.gate(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memKey{kind, key}
	raw, ok := m.rows[k]
	if !ok {
		return nil, nil
	}
	if err := ValidateRecordJSON(key, raw); err != nil {
		return nil, err
	}
	var rec entity.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, unavailable("decode record", err)
	}
	return &entity.Entity{
		ID:         m.ids[k],
		Kind:       kind,
		NaturalKey: key,
		IdentityID: m.identity[k],
		Record:     rec,
		CreatedAt:  m.created[k],
		UpdatedAt:  m.updated[k],
	}, nil
}

func (m *Memory) UpsertByKey(ctx context.Context, e *entity.Entity) (bool, uuid.UUID, error) {
	if err := m.gate(ctx); err != nil {
		return false, uuid.Nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memKey{e.Kind, e.NaturalKey}
	if id, exists := m.ids[k]; exists {
		return false, id, nil
	}
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return false, uuid.Nil, unavailable("encode record", err)
	}
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()
	m.rows[k] = raw
	m.ids[k] = id
	m.identity[k] = e.IdentityID
	m.created[k] = now
	m.updated[k] = now
	return true, id, nil
}

func (m *Memory) ApplyMerge(ctx context.Context, e *entity.Entity) error {
	if err := m.gate(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memKey{e.Kind, e.NaturalKey}
	if _, exists := m.ids[k]; !exists {
		return unavailable("apply merge", errMissingRow(e.NaturalKey))
	}
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return unavailable("encode record", err)
	}
	m.rows[k] = raw
	if e.IdentityID != "" {
		m.identity[k] = e.IdentityID
	}
	m.updated[k] = time.Now().UTC()
	return nil
}

func (m *Memory) List(ctx context.Context, kind constants.EntityKind) ([]*entity.Entity, error) {
	if err := m.gate(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	keys := make([]memKey, 0, len(m.rows))
	for k := range m.rows {
		if k.kind == kind {
			keys = append(keys, k)
		}
	}
	m.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].key < keys[j].key })
	out := make([]*entity.Entity, 0, len(keys))
	for _, k := range keys {
		e, err := m.FindByKey(ctx, k.kind, k.key)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// Ping reports the simulated backend state, so health tests can exercise the
// degraded path.
func (m *Memory) Ping(ctx context.Context, timeout time.Duration) error {
	return m.gate(ctx)
}

func (m *Memory) Close() {}

// Corrupt replaces a stored document with arbitrary bytes. Test hook for the
// CorruptEntity path.
func (m *Memory) Corrupt(kind constants.EntityKind, key string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{kind, key}
	if _, exists := m.ids[k]; !exists {
		m.ids[k] = uuid.New()
	}
	m.rows[k] = raw
}

func (m *Memory) gate(ctx context.Context) error {
	if m.FailWith != nil {
		return unavailable("backend", m.FailWith)
	}
	if err := ctx.Err(); err != nil {
		return unavailable("context", err)
	}
	return nil
}

type errMissingRow string

func (e errMissingRow) Error() string { return "no entity for key " + string(e) }
