package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/duktw/duk/internal/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of mapping.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed mapping store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Save(ctx context.Context, m *mapping.Mapping) error {
	query := `
		INSERT INTO mappings (hash, object_key, external_url, password, expires_at, view_count, extension, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var objectKey, externalURL *string

	switch m.Target.Kind {
	case mapping.TargetObjectKey:
		objectKey = &m.Target.Key
	case mapping.TargetExternalURL:
		externalURL = &m.Target.URL
	default:
		return fmt.Errorf("unknown target kind %q", m.Target.Kind)
	}

	_, err := p.pool.Exec(ctx, query,
		string(m.Hash),
		objectKey,
		externalURL,
		nullableString(m.Password),
		m.ExpiresAt,
		m.ViewCount,
		m.Extension,
		m.CreatedAt,
	)

	return err
}

func (p *PostgresStore) GetByHash(ctx context.Context, hash mapping.Hash) (*mapping.Mapping, error) {
	query := `
		SELECT hash, object_key, external_url, password, expires_at, view_count, extension, created_at
		FROM mappings
		WHERE hash = $1
	`

	var (
		m           mapping.Mapping
		objectKey   *string
		externalURL *string
		password    *string
		expiresAt   *time.Time
	)

	err := p.pool.QueryRow(ctx, query, string(hash)).Scan(
		&m.Hash,
		&objectKey,
		&externalURL,
		&password,
		&expiresAt,
		&m.ViewCount,
		&m.Extension,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mapping.ErrNotFound
		}

		return nil, err
	}

	switch {
	case objectKey != nil:
		m.Target = mapping.ObjectTarget(*objectKey)
	case externalURL != nil:
		m.Target = mapping.ExternalTarget(*externalURL)
	}

	if password != nil {
		m.Password = *password
	}

	m.ExpiresAt = expiresAt

	return &m, nil
}

// IncrementViewCount adds one view. The update is a relative increment so
// concurrent serves never clobber the counter to a lower value.
func (p *PostgresStore) IncrementViewCount(ctx context.Context, hash mapping.Hash) error {
	query := `UPDATE mappings SET view_count = view_count + 1 WHERE hash = $1`

	_, err := p.pool.Exec(ctx, query, string(hash))

	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ mapping.Repository = (*PostgresStore)(nil)
