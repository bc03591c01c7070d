package contentstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"credanchor/pkg/platform/sentinel"
)

// Postgres persists content blocks in a `content_blocks` table keyed by
// reference. Useful where an IPFS node is not part of the deployment but
// durable content addressing still is.
type Postgres struct {
	pool *pgxpool.Pool
}

// Schema creates the backing table. Run once at startup or in migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS content_blocks (
	reference  TEXT PRIMARY KEY,
	data       BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema applies Schema idempotently.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("content store: ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) Put(ctx context.Context, data []byte) (string, error) {
	reference, err := Reference(data)
	if err != nil {
		return "", err
	}
	// ON CONFLICT DO NOTHING keeps puts idempotent; identical bytes always
	// map to the same reference.
	_, err = p.pool.Exec(ctx,
		`INSERT INTO content_blocks (reference, data) VALUES ($1, $2)
		 ON CONFLICT (reference) DO NOTHING`,
		reference, data)
	if err != nil {
		return "", fmt.Errorf("content store: put %s: %w", reference, err)
	}
	return reference, nil
}

func (p *Postgres) Get(ctx context.Context, reference string) ([]byte, error) {
	if _, err := ParseReference(reference); err != nil {
		return nil, fmt.Errorf("content store: %w", err)
	}
	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM content_blocks WHERE reference = $1`, reference).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("content store: %s: %w", reference, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("content store: get %s: %w", reference, err)
	}
	// Verify the round trip; a corrupted row must not masquerade as content.
	got, err := Reference(data)
	if err != nil {
		return nil, err
	}
	if got != reference {
		return nil, fmt.Errorf("content store: %s: %w", reference, sentinel.ErrMismatch)
	}
	return data, nil
}

func (p *Postgres) Has(ctx context.Context, reference string) bool {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM content_blocks WHERE reference = $1)`, reference).Scan(&exists)
	return err == nil && exists
}
