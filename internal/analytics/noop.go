package analytics

import (
	"context"

	"go.uber.org/zap"
)

// NoopStore is a no-op implementation of Store that logs events. Used for
// local runs without an analytics database.
type NoopStore struct {
	logger *zap.Logger
}

// NewNoopStore creates a new no-op analytics store.
func NewNoopStore(logger *zap.Logger) *NoopStore {
	return &NoopStore{logger: logger}
}

func (n *NoopStore) SaveMappingCreated(_ context.Context, event *MappingCreatedEvent) error {
	n.logger.Info("mapping created event received",
		zap.String("hash", event.Hash),
		zap.String("targetKind", event.TargetKind),
		zap.Bool("protected", event.Protected),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (n *NoopStore) SaveMappingViewed(_ context.Context, event *MappingViewedEvent) error {
	n.logger.Info("mapping viewed event received",
		zap.String("hash", event.Hash),
		zap.String("clientKind", event.ClientKind),
		zap.Time("viewedAt", event.ViewedAt),
	)

	return nil
}

// Compile-time check.
var _ Store = (*NoopStore)(nil)
