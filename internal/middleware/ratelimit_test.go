package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/duktw/duk/internal/middleware"
	"github.com/duktw/duk/internal/ratelimit"
	"github.com/duktw/duk/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupLimitedAPI(t *testing.T) *chi.Mux {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))

	limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore())
	api.UseMiddleware(middleware.RateLimiter(api, limiter, zap.NewNop()))

	handler := func(_ context.Context, _ *struct{}) (*testOutput, error) {
		out := &testOutput{}
		out.Body.OK = true

		return out, nil
	}

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		OperationID: "limited",
		Path:        "/limited",
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 2},
				},
			},
		},
	}, handler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		OperationID: "disabled",
		Path:        "/disabled",
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, handler)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		OperationID: "unconfigured",
		Path:        "/unconfigured",
	}, handler)

	return router
}

func doRequest(router *chi.Mux, path, userAgent string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", userAgent)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec.Code
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		router := setupLimitedAPI(t)

		for range 2 {
			assert.Equal(t, http.StatusOK, doRequest(router, "/limited", "TestAgent/1.0"))
		}
	})

	t.Run("returns 429 over the limit", func(t *testing.T) {
		router := setupLimitedAPI(t)

		for range 2 {
			doRequest(router, "/limited", "TestAgent/1.0")
		}

		assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "/limited", "TestAgent/1.0"))
	})

	t.Run("tracks clients independently", func(t *testing.T) {
		router := setupLimitedAPI(t)

		for range 3 {
			doRequest(router, "/limited", "TestAgent/1.0")
		}

		assert.Equal(t, http.StatusOK, doRequest(router, "/limited", "OtherAgent/2.0"))
	})

	t.Run("skips endpoints with rate limiting disabled", func(t *testing.T) {
		router := setupLimitedAPI(t)

		for range 10 {
			assert.Equal(t, http.StatusOK, doRequest(router, "/disabled", "TestAgent/1.0"))
		}
	})

	t.Run("skips endpoints without limit configuration", func(t *testing.T) {
		router := setupLimitedAPI(t)

		for range 10 {
			assert.Equal(t, http.StatusOK, doRequest(router, "/unconfigured", "TestAgent/1.0"))
		}
	})
}
