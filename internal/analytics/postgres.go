package analytics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists analytics events to PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed analytics store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) SaveMappingCreated(ctx context.Context, event *MappingCreatedEvent) error {
	query := `
		INSERT INTO mapping_creations (id, hash, target_kind, extension, protected, created_at, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.Hash,
		event.TargetKind,
		event.Extension,
		event.Protected,
		event.CreatedAt,
		event.ClientIP,
		event.UserAgent,
	)

	return err
}

func (p *PostgresStore) SaveMappingViewed(ctx context.Context, event *MappingViewedEvent) error {
	query := `
		INSERT INTO mapping_views (id, hash, viewed_at, client_ip, user_agent, referrer, client_kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.Hash,
		event.ViewedAt,
		event.ClientIP,
		event.UserAgent,
		event.Referrer,
		event.ClientKind,
	)

	return err
}

// Compile-time check.
var _ Store = (*PostgresStore)(nil)
