package store

import (
	"context"
	"strconv"
	"time"

	"github.com/duktw/duk/internal/mapping"
	"github.com/redis/go-redis/v9"
)

// RedisCacheRepository wraps a mapping.Repository with Redis caching for
// reads. The hash lookup sits on the critical path of every serve, so a
// cache hit saves the Postgres round-trip entirely.
type RedisCacheRepository struct {
	store  mapping.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store mapping.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "mapping:",
		ttl:    ttl,
	}
}

// Save stores a mapping in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, m *mapping.Mapping) error {
	if err := r.store.Save(ctx, m); err != nil {
		return err
	}

	// Write-through: update cache after successful save
	r.cacheMapping(ctx, m)

	return nil
}

// GetByHash retrieves a mapping by its hash, checking cache first.
func (r *RedisCacheRepository) GetByHash(ctx context.Context, hash mapping.Hash) (*mapping.Mapping, error) {
	if m, err := r.getFromCache(ctx, hash); err == nil {
		return m, nil
	}

	// Cache miss - fetch from store
	m, err := r.store.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m)

	return m, nil
}

// IncrementViewCount increments the persistent counter and nudges the
// cached copy so cached reads don't report a stale count for a full TTL.
func (r *RedisCacheRepository) IncrementViewCount(ctx context.Context, hash mapping.Hash) error {
	if err := r.store.IncrementViewCount(ctx, hash); err != nil {
		return err
	}

	key := r.prefix + string(hash)
	if exists, err := r.client.Exists(ctx, key).Result(); err == nil && exists > 0 {
		_ = r.client.HIncrBy(ctx, key, "view_count", 1).Err()
	}

	return nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, hash mapping.Hash) (*mapping.Mapping, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(hash)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, mapping.ErrNotFound
	}

	m := &mapping.Mapping{
		Hash:      mapping.Hash(result["hash"]),
		Password:  result["password"],
		Extension: result["extension"],
	}

	switch mapping.TargetKind(result["target_kind"]) {
	case mapping.TargetObjectKey:
		m.Target = mapping.ObjectTarget(result["target"])
	case mapping.TargetExternalURL:
		m.Target = mapping.ExternalTarget(result["target"])
	}

	if nanos, err := strconv.ParseInt(result["expires_at"], 10, 64); err == nil && nanos > 0 {
		t := time.Unix(0, nanos)
		m.ExpiresAt = &t
	}

	if count, err := strconv.ParseInt(result["view_count"], 10, 64); err == nil {
		m.ViewCount = count
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		m.CreatedAt = time.Unix(0, nanos)
	}

	return m, nil
}

func (r *RedisCacheRepository) cacheMapping(ctx context.Context, m *mapping.Mapping) {
	key := r.prefix + string(m.Hash)

	var target string

	switch m.Target.Kind {
	case mapping.TargetObjectKey:
		target = m.Target.Key
	case mapping.TargetExternalURL:
		target = m.Target.URL
	}

	var expiresAt int64
	if m.ExpiresAt != nil {
		expiresAt = m.ExpiresAt.UnixNano()
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"hash":        string(m.Hash),
		"target_kind": string(m.Target.Kind),
		"target":      target,
		"password":    m.Password,
		"expires_at":  expiresAt,
		"view_count":  m.ViewCount,
		"extension":   m.Extension,
		"created_at":  m.CreatedAt.UnixNano(),
	})

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ mapping.Repository = (*RedisCacheRepository)(nil)
