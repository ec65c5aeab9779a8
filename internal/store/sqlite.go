package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entities (
    id          TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    natural_key TEXT NOT NULL,
    identity_id TEXT NOT NULL DEFAULT '',
    record      TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    UNIQUE (kind, natural_key)
);`

// SQLite is the single-binary gateway. One writer connection; busy_timeout
// covers short write contention.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open", err)
	}
	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("ping", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, unavailable("apply schema", err)
	}

	logger.Info("store.sqlite.opened", "path", path)
	return &SQLite{db: db, logger: logger}, nil
}

func (s *SQLite) FindByKey(ctx context.Context, kind constants.EntityKind, key string) (*entity.Entity, error) {
	const q = `SELECT id, identity_id, record, created_at, updated_at
FROM entities WHERE kind = ? AND natural_key = ?;`

	var (
		idStr, identityID, raw, createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, q, string(kind), key).
		Scan(&idStr, &identityID, &raw, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("store.sqlite.find_failed", "key", key, "error", err)
		return nil, unavailable("find", err)
	}
	return s.decodeRow(kind, key, idStr, identityID, raw, createdAt, updatedAt)
}

func (s *SQLite) UpsertByKey(ctx context.Context, e *entity.Entity) (bool, uuid.UUID, error) {
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return false, uuid.Nil, unavailable("encode record", err)
	}
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	// INSERT OR IGNORE plus SELECT changes() reports whether this call won
	// the insert. Driver rows-affected is not reliable with IGNORE.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, uuid.Nil, unavailable("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT OR IGNORE INTO entities (id, kind, natural_key, identity_id, record, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
		id.String(), string(e.Kind), e.NaturalKey, e.IdentityID, string(raw), now, now,
	)
	if err != nil {
		s.logger.Error("store.sqlite.upsert_failed", "key", e.NaturalKey, "error", err)
		return false, uuid.Nil, unavailable("upsert", err)
	}

	var changes int
	if err := tx.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return false, uuid.Nil, unavailable("upsert changes", err)
	}
	if changes > 0 {
		if err := tx.Commit(); err != nil {
			return false, uuid.Nil, unavailable("commit", err)
		}
		return true, id, nil
	}

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM entities WHERE kind = ? AND natural_key = ?;`,
		string(e.Kind), e.NaturalKey,
	).Scan(&existing)
	if err != nil {
		return false, uuid.Nil, unavailable("upsert readback", err)
	}
	if err := tx.Commit(); err != nil {
		return false, uuid.Nil, unavailable("commit", err)
	}
	got, err := uuid.Parse(existing)
	if err != nil {
		return false, uuid.Nil, unavailable("parse id", err)
	}
	return false, got, nil
}

func (s *SQLite) ApplyMerge(ctx context.Context, e *entity.Entity) error {
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return unavailable("encode record", err)
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE entities
SET record = ?,
    identity_id = CASE WHEN ? <> '' THEN ? ELSE identity_id END,
    updated_at = ?
WHERE kind = ? AND natural_key = ?;`,
		string(raw), e.IdentityID, e.IdentityID,
		time.Now().UTC().Format(time.RFC3339Nano),
		string(e.Kind), e.NaturalKey,
	)
	if err != nil {
		s.logger.Error("store.sqlite.merge_failed", "key", e.NaturalKey, "error", err)
		return unavailable("merge", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return unavailable("merge", errMissingRow(e.NaturalKey))
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, kind constants.EntityKind) ([]*entity.Entity, error) {
	const q = `SELECT id, natural_key, identity_id, record, created_at, updated_at
FROM entities WHERE kind = ? ORDER BY natural_key;`

	rows, err := s.db.QueryContext(ctx, q, string(kind))
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		var idStr, key, identityID, raw, createdAt, updatedAt string
		if err := rows.Scan(&idStr, &key, &identityID, &raw, &createdAt, &updatedAt); err != nil {
			return nil, unavailable("list scan", err)
		}
		e, err := s.decodeRow(kind, key, idStr, identityID, raw, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list rows", err)
	}
	return out, nil
}

// Ping checks connectivity, used by the health endpoint.
func (s *SQLite) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *SQLite) Close() {
	s.logger.Info("store.sqlite.closing")
	if err := s.db.Close(); err != nil {
		s.logger.Error("store.sqlite.close_failed", "error", err)
	}
}

func (s *SQLite) decodeRow(kind constants.EntityKind, key, idStr, identityID, raw, createdAt, updatedAt string) (*entity.Entity, error) {
	if err := ValidateRecordJSON(key, []byte(raw)); err != nil {
		return nil, err
	}
	e := entity.Entity{Kind: kind, NaturalKey: key, IdentityID: identityID}
	var err error
	if e.ID, err = uuid.Parse(idStr); err != nil {
		return nil, unavailable("parse id", err)
	}
	if err := json.Unmarshal([]byte(raw), &e.Record); err != nil {
		return nil, unavailable("decode record", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, unavailable("parse created_at", err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, unavailable("parse updated_at", err)
	}
	return &e, nil
}
