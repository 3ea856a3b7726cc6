package analytics

import "context"

// Store defines the interface for persisting analytics events.
type Store interface {
	SaveMappingCreated(ctx context.Context, event *MappingCreatedEvent) error
	SaveMappingViewed(ctx context.Context, event *MappingViewedEvent) error
}
