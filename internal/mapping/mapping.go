package mapping

import (
	"context"
	"errors"
	"time"
)

// Hash is the short, URL-safe identifier of a hosted image.
type Hash string

// ErrNotFound is returned when no mapping exists for a hash.
var ErrNotFound = errors.New("mapping not found")

// TargetKind discriminates where a mapping's bytes live.
type TargetKind string

const (
	// TargetObjectKey points at an object in our own storage bucket.
	TargetObjectKey TargetKind = "object"
	// TargetExternalURL points at an image hosted elsewhere.
	TargetExternalURL TargetKind = "external"
)

// Target is a tagged variant: Key is set for TargetObjectKey,
// URL for TargetExternalURL, never both.
type Target struct {
	Kind TargetKind
	Key  string
	URL  string
}

// ObjectTarget builds a target backed by our object store.
func ObjectTarget(key string) Target {
	return Target{Kind: TargetObjectKey, Key: key}
}

// ExternalTarget builds a target backed by an externally hosted URL.
func ExternalTarget(url string) Target {
	return Target{Kind: TargetExternalURL, URL: url}
}

// Mapping binds a hash to its target resource and access policy.
// The hash is unique and immutable once created.
type Mapping struct {
	Hash      Hash
	Target    Target
	Password  string // short numeric access code; empty means public
	ExpiresAt *time.Time
	ViewCount int64
	Extension string // content-type hint, without the leading dot
	CreatedAt time.Time
}

// Expired reports whether the mapping is past its expiry. An expired
// mapping is permanently unservable.
func (m *Mapping) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && m.ExpiresAt.Before(now)
}

// Protected reports whether a password gate applies.
func (m *Mapping) Protected() bool {
	return m.Password != ""
}

// Repository defines storage operations for mappings.
type Repository interface {
	Save(ctx context.Context, m *Mapping) error
	GetByHash(ctx context.Context, hash Hash) (*Mapping, error)

	// IncrementViewCount adds one view to the hash's counter. Increments
	// are best-effort; callers must not block a response on the result.
	IncrementViewCount(ctx context.Context, hash Hash) error
}
