package container

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/duktw/duk/internal/analytics"
	"github.com/duktw/duk/internal/mapping"
	"github.com/duktw/duk/internal/messaging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// consumerGroupName identifies the analytics consumers in Redis Streams so
// restarts resume from the last acknowledged message.
const consumerGroupName = "duk-analytics"

// PublisherGroupPackage provides the event publisher and the typed publish
// functions the handlers depend on.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.MappingViewedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.MappingViewedEvent](group.Publisher(), analytics.TopicMappingViewed), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[analytics.MappingCreatedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[analytics.MappingCreatedEvent](group.Publisher(), analytics.TopicMappingCreated), nil
	})
}

// ConsumerGroupPackage provides the analytics consumer group: one consumer
// per topic, all sharing a Redis Streams subscriber.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*redis.Client](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)
		repo := do.MustInvoke[mapping.Repository](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: consumerGroupName,
		}, watermill.NopLogger{})
		if err != nil {
			return nil, err
		}

		analyticsStore := analytics.NewPostgresStore(pool)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicMappingViewed,
			analytics.NewViewedHandler(repo, analyticsStore),
			logger,
		))
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicMappingCreated,
			analytics.NewCreatedHandler(analyticsStore),
			logger,
		))

		return group, nil
	})
}
