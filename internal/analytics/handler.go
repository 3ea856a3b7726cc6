package analytics

import (
	"context"

	"github.com/duktw/duk/internal/mapping"
	"github.com/duktw/duk/internal/messaging"
)

// NewViewedHandler returns the consumer handler for view events: it applies
// the view-count increment and records the access row. The increment runs
// here, decoupled from the response path, so an undercount under redelivery
// races is acceptable but the counter never moves backwards.
func NewViewedHandler(repo mapping.Repository, store Store) messaging.Handler[MappingViewedEvent] {
	return func(ctx context.Context, event *MappingViewedEvent) error {
		if err := repo.IncrementViewCount(ctx, mapping.Hash(event.Hash)); err != nil {
			return err
		}

		return store.SaveMappingViewed(ctx, event)
	}
}

// NewCreatedHandler returns the consumer handler for creation events.
func NewCreatedHandler(store Store) messaging.Handler[MappingCreatedEvent] {
	return func(ctx context.Context, event *MappingCreatedEvent) error {
		return store.SaveMappingCreated(ctx, event)
	}
}
