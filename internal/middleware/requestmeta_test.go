package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/duktw/duk/internal/handlers"
	"github.com/duktw/duk/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func setupMetaAPI(t *testing.T) (*chi.Mux, *handlers.RequestMeta) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))

	captured := &handlers.RequestMeta{}

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		*captured = handlers.RequestMetaFromContext(ctx)

		out := &testOutput{}
		out.Body.OK = true

		return out, nil
	})

	return router, captured
}

func TestRequestMeta(t *testing.T) {
	serve := func(t *testing.T, header map[string]string) *handlers.RequestMeta {
		t.Helper()

		router, captured := setupMetaAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		for name, value := range header {
			req.Header.Set(name, value)
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		return captured
	}

	t.Run("extracts user-agent and referrer", func(t *testing.T) {
		meta := serve(t, map[string]string{
			"User-Agent": "TestAgent/1.0",
			"Referer":    "https://referrer.example.com",
		})

		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
		assert.Equal(t, "https://referrer.example.com", meta.Referrer)
	})

	t.Run("extracts IP from X-Forwarded-For with single IP", func(t *testing.T) {
		meta := serve(t, map[string]string{"X-Forwarded-For": "192.168.1.1"})

		assert.Equal(t, "192.168.1.1", meta.ClientIP)
	})

	t.Run("extracts first IP from X-Forwarded-For with multiple IPs", func(t *testing.T) {
		meta := serve(t, map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1, 172.16.0.1"})

		assert.Equal(t, "192.168.1.1", meta.ClientIP)
	})

	t.Run("extracts IP from X-Real-IP when X-Forwarded-For is absent", func(t *testing.T) {
		meta := serve(t, map[string]string{"X-Real-IP": "10.0.0.1"})

		assert.Equal(t, "10.0.0.1", meta.ClientIP)
	})

	t.Run("falls back to host when no IP headers present", func(t *testing.T) {
		meta := serve(t, nil)

		assert.NotEmpty(t, meta.ClientIP)
	})
}
