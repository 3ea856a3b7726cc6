// Package container wires the application's dependencies with samber/do.
// Each *Package function registers one concern; binaries compose the
// packages they need.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/duktw/duk/internal/mapping"
	"github.com/duktw/duk/internal/ratelimit"
	"github.com/duktw/duk/internal/storage"
	"github.com/duktw/duk/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

type Options struct {
	Port          int    `default:"8888"                                  help:"Port to listen on"                                  short:"p"`
	BaseURL       string `default:""                                      help:"Public base URL (defaults to http://localhost:<port>)"`
	HashLength    int    `default:"6"                                     help:"Length of generated short hashes"                   short:"c"`
	DatabaseURL   string `default:"postgres://localhost:5432/duk"         help:"Postgres connection string"`
	RedisAddr     string `default:"localhost:6379"                        help:"Redis server address"                               short:"r"`
	CacheTTL      int    `default:"300"                                   help:"Mapping cache TTL in seconds"`
	AuthSecret    string `default:"insecure-dev-secret"                   help:"Secret for signing verification cookies"`
	SecureCookies bool   `default:"false"                                 help:"Mark verification cookies Secure (behind TLS)"`
	S3Bucket      string `default:"duk-images"                            help:"Bucket for uploaded images"`
	S3Region      string `default:"us-east-1"                             help:"Bucket region"`
	S3Endpoint    string `default:""                                      help:"Custom S3 endpoint (MinIO etc.), empty for AWS"`
	S3AccessKey   string `default:""                                      help:"S3 access key, empty for the default chain"`
	S3SecretKey   string `default:""                                      help:"S3 secret key"`
	LogFormat     string `default:"console"                               enum:"console,json" help:"Log output format"`
}

// PublicBaseURL returns the configured base URL, or a localhost one derived
// from the port.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// PostgresPackage provides the pgx connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		pool, err := pgxpool.New(context.Background(), options.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		return pool, nil
	})
}

// StoragePackage provides the object store for uploaded images.
func StoragePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (storage.ObjectStore, error) {
		options := do.MustInvoke[*Options](i)

		return storage.NewS3Store(context.Background(), storage.Config{
			Bucket:       options.S3Bucket,
			Region:       options.S3Region,
			BaseEndpoint: options.S3Endpoint,
			AccessKey:    options.S3AccessKey,
			SecretKey:    options.S3SecretKey,
		})
	})
}

// RepositoryPackage provides the mapping repository: Postgres as the source
// of truth with a Redis read cache in front.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (mapping.Repository, error) {
		options := do.MustInvoke[*Options](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)
		client := do.MustInvoke[*redis.Client](i)

		ttl := time.Duration(options.CacheTTL) * time.Second

		return store.NewRedisCacheRepository(store.NewPostgresStore(pool), client, ttl), nil
	})
}

// RateLimitPackage provides the Redis-backed rate limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.Limiter, error) {
		client := do.MustInvoke[*redis.Client](i)

		return ratelimit.NewLimiter(store.NewRateLimitRedisStore(client)), nil
	})
}
