package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/binarybreez/jobswipe/constants"
	"github.com/binarybreez/jobswipe/internal/entity"
)

// PostgresConfig carries pool settings for the postgres gateway.
type PostgresConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS entities (
    id          uuid PRIMARY KEY,
    kind        text NOT NULL,
    natural_key text NOT NULL,
    identity_id text NOT NULL DEFAULT '',
    record      jsonb NOT NULL,
    created_at  timestamptz NOT NULL,
    updated_at  timestamptz NOT NULL,
    UNIQUE (kind, natural_key)
);`

// Postgres persists entities as jsonb rows keyed by (kind, natural_key).
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates the pool, applies the schema, and returns the gateway.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*Postgres, error) {
	logger.Info("store.postgres.connecting", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("store.postgres.bad_dsn", "error", err)
		return nil, unavailable("parse dsn", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "jobswipe"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("store.postgres.connect_failed", "error", err)
		return nil, unavailable("connect", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		logger.Error("store.postgres.schema_failed", "error", err)
		return nil, unavailable("apply schema", err)
	}

	logger.Info("store.postgres.connected")
	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) FindByKey(ctx context.Context, kind constants.EntityKind, key string) (*entity.Entity, error) {
	const q = `SELECT id, identity_id, record, created_at, updated_at
FROM entities WHERE kind = $1 AND natural_key = $2`

	var (
		e   = entity.Entity{Kind: kind, NaturalKey: key}
		raw []byte
	)
	err := p.pool.QueryRow(ctx, q, string(kind), key).
		Scan(&e.ID, &e.IdentityID, &raw, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		p.logger.Error("store.postgres.find_failed", "key", key, "error", err)
		return nil, unavailable("find", err)
	}
	if err := ValidateRecordJSON(key, raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &e.Record); err != nil {
		return nil, unavailable("decode record", err)
	}
	return &e, nil
}

func (p *Postgres) UpsertByKey(ctx context.Context, e *entity.Entity) (bool, uuid.UUID, error) {
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return false, uuid.Nil, unavailable("encode record", err)
	}
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	// ON CONFLICT DO NOTHING plus a follow-up select makes the insert a
	// single winner under concurrency without an advisory lock.
	const ins = `INSERT INTO entities (id, kind, natural_key, identity_id, record, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (kind, natural_key) DO NOTHING`

	tag, err := p.pool.Exec(ctx, ins, id, string(e.Kind), e.NaturalKey, e.IdentityID, raw)
	if err != nil {
		p.logger.Error("store.postgres.upsert_failed", "key", e.NaturalKey, "error", err)
		return false, uuid.Nil, unavailable("upsert", err)
	}
	if tag.RowsAffected() == 1 {
		return true, id, nil
	}

	const sel = `SELECT id FROM entities WHERE kind = $1 AND natural_key = $2`
	var existing uuid.UUID
	if err := p.pool.QueryRow(ctx, sel, string(e.Kind), e.NaturalKey).Scan(&existing); err != nil {
		return false, uuid.Nil, unavailable("upsert readback", err)
	}
	return false, existing, nil
}

func (p *Postgres) ApplyMerge(ctx context.Context, e *entity.Entity) error {
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return unavailable("encode record", err)
	}

	const q = `UPDATE entities
SET record = $1,
    identity_id = CASE WHEN $2 <> '' THEN $2 ELSE identity_id END,
    updated_at = now()
WHERE kind = $3 AND natural_key = $4`

	tag, err := p.pool.Exec(ctx, q, raw, e.IdentityID, string(e.Kind), e.NaturalKey)
	if err != nil {
		p.logger.Error("store.postgres.merge_failed", "key", e.NaturalKey, "error", err)
		return unavailable("merge", err)
	}
	if tag.RowsAffected() == 0 {
		return unavailable("merge", errMissingRow(e.NaturalKey))
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, kind constants.EntityKind) ([]*entity.Entity, error) {
	const q = `SELECT id, natural_key, identity_id, record, created_at, updated_at
FROM entities WHERE kind = $1 ORDER BY natural_key`

	rows, err := p.pool.Query(ctx, q, string(kind))
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		e := entity.Entity{Kind: kind}
		var raw []byte
		if err := rows.Scan(&e.ID, &e.NaturalKey, &e.IdentityID, &raw, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, unavailable("list scan", err)
		}
		if err := ValidateRecordJSON(e.NaturalKey, raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &e.Record); err != nil {
			return nil, unavailable("decode record", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list rows", err)
	}
	return out, nil
}

func (p *Postgres) Close() {
	p.logger.Info("store.postgres.closing")
	p.pool.Close()
}

// Ping checks connectivity, used by the health endpoint.
func (p *Postgres) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.pool.Ping(ctx); err != nil {
		if isCtxErr(err) {
			return unavailable("ping timeout", err)
		}
		return unavailable("ping", err)
	}
	return nil
}
