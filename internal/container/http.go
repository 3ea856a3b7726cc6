package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/duktw/duk/internal/analytics"
	"github.com/duktw/duk/internal/gate"
	"github.com/duktw/duk/internal/handlers"
	"github.com/duktw/duk/internal/health"
	"github.com/duktw/duk/internal/imageproxy"
	"github.com/duktw/duk/internal/mapping"
	"github.com/duktw/duk/internal/messaging"
	"github.com/duktw/duk/internal/middleware"
	"github.com/duktw/duk/internal/ratelimit"
	"github.com/duktw/duk/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the API with every route registered.
// The server wraps the router in the hotlink path rewriter so extension
// URLs reach the routing operation before chi matching runs.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		repo := do.MustInvoke[mapping.Repository](i)
		objects := do.MustInvoke[storage.ObjectStore](i)
		limiter := do.MustInvoke[*ratelimit.Limiter](i)
		publishViewed := do.MustInvoke[messaging.Publish[analytics.MappingViewedEvent]](i)
		publishCreated := do.MustInvoke[messaging.Publish[analytics.MappingCreatedEvent]](i)
		redisClient := do.MustInvoke[*redis.Client](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)

		api := humachi.New(router, huma.DefaultConfig("duk.tw", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.RateLimiter(api, limiter, logger))

		accessGate := gate.New(options.AuthSecret, options.SecureCookies)
		fetcher := imageproxy.NewFetcher(imageproxy.DefaultTimeout, logger)
		baseURL := options.PublicBaseURL()

		routeHandler := handlers.NewRouteHandler(
			repo,
			accessGate,
			objects,
			fetcher,
			baseURL,
			publishViewed,
			logger,
		)

		hashGenerator, err := nanoid.Standard(options.HashLength)
		if err != nil {
			return nil, err
		}

		createHandler := handlers.NewCreateHandler(
			repo,
			objects,
			hashGenerator,
			baseURL,
			publishCreated,
			logger,
		)

		handlers.RegisterRoutes(api, routeHandler, createHandler)
		health.RegisterRoutes(api, health.NewHandler(
			health.NewRedisChecker(redisClient),
			health.NewPostgresChecker(pool),
		))

		return api, nil
	})
}
