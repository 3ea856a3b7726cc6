package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duktw/duk/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func capturePath(t *testing.T, target string, header http.Header) (*http.Request, string) {
	t.Helper()

	var gotPath string

	var gotReq *http.Request

	handler := middleware.PathRewriter(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotReq = r
	}))

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for name, values := range header {
		req.Header[name] = values
	}

	handler.ServeHTTP(httptest.NewRecorder(), req)

	return gotReq, gotPath
}

func TestPathRewriter(t *testing.T) {
	t.Run("rewrites hotlink paths to the smart-route entry", func(t *testing.T) {
		_, path := capturePath(t, "/abc123.png", nil)

		assert.Equal(t, "/api/smart-route/abc123.png", path)
	})

	t.Run("lowercases the extension", func(t *testing.T) {
		_, path := capturePath(t, "/abc123.PNG", nil)

		assert.Equal(t, "/api/smart-route/abc123.png", path)
	})

	t.Run("rewrites every allow-listed extension", func(t *testing.T) {
		for _, ext := range []string{"jpg", "jpeg", "png", "gif", "webp", "svg", "bmp", "ico"} {
			_, path := capturePath(t, "/pbQyTD."+ext, nil)

			assert.Equal(t, "/api/smart-route/pbQyTD."+ext, path, ext)
		}
	})

	t.Run("leaves bare hash paths untouched", func(t *testing.T) {
		_, path := capturePath(t, "/abc123", nil)

		assert.Equal(t, "/abc123", path)
	})

	t.Run("leaves non-image extensions untouched", func(t *testing.T) {
		_, path := capturePath(t, "/notes.txt", nil)

		assert.Equal(t, "/notes.txt", path)
	})

	t.Run("exempts reserved prefixes", func(t *testing.T) {
		for _, target := range []string{
			"/admin/banner.png",
			"/api/smart-route/abc123.png",
			"/health",
			"/p/abc123",
		} {
			_, path := capturePath(t, target, nil)

			assert.Equal(t, target, path, target)
		}
	})

	t.Run("leaves nested paths untouched", func(t *testing.T) {
		_, path := capturePath(t, "/gallery/abc123.png", nil)

		assert.Equal(t, "/gallery/abc123.png", path)
	})

	t.Run("preserves query string and headers", func(t *testing.T) {
		header := http.Header{}
		header.Set("Cookie", "auth_abc123=token")
		header.Set("User-Agent", "curl/8.0")

		req, path := capturePath(t, "/abc123.png?width=200", header)

		assert.Equal(t, "/api/smart-route/abc123.png", path)
		assert.Equal(t, "width=200", req.URL.RawQuery)
		assert.Equal(t, "auth_abc123=token", req.Header.Get("Cookie"))
		assert.Equal(t, "curl/8.0", req.Header.Get("User-Agent"))
	})
}
