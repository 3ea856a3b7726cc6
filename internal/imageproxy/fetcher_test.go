package imageproxy_test

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/duktw/duk/internal/imageproxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetch(t *testing.T) {
	t.Run("streams upstream body and content type", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/webp")
			_, _ = w.Write([]byte("webp-bytes"))
		}))
		defer upstream.Close()

		fetcher := imageproxy.NewFetcher(time.Second, zap.NewNop())

		body, contentType, err := fetcher.Fetch(context.Background(), upstream.URL)
		require.NoError(t, err)

		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "webp-bytes", string(data))
		assert.Equal(t, "image/webp", contentType)
	})

	t.Run("retries once after a failed attempt", func(t *testing.T) {
		var calls atomic.Int32

		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)

				return
			}

			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		}))
		defer upstream.Close()

		fetcher := imageproxy.NewFetcher(time.Second, zap.NewNop())

		body, _, err := fetcher.Fetch(context.Background(), upstream.URL)
		require.NoError(t, err)

		defer body.Close()

		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("fails after the retry is exhausted", func(t *testing.T) {
		var calls atomic.Int32

		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		fetcher := imageproxy.NewFetcher(time.Second, zap.NewNop())

		body, _, err := fetcher.Fetch(context.Background(), upstream.URL)

		assert.Nil(t, body)
		assert.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("does not retry when the caller is gone", func(t *testing.T) {
		var calls atomic.Int32

		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		ctx, cancel := context.WithCancel(context.Background())
		fetcher := imageproxy.NewFetcher(time.Second, zap.NewNop())

		// First attempt observes a failure, then the caller disconnects.
		_, _, err := fetcher.Fetch(ctx, upstream.URL)
		require.Error(t, err)

		cancel()

		_, _, err = fetcher.Fetch(ctx, upstream.URL)
		assert.Error(t, err)
	})
}

func TestPlaceholder(t *testing.T) {
	// The placeholder must decode as a real PNG so embeds render it.
	img, err := png.Decode(bytes.NewReader(imageproxy.Placeholder))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 1, bounds.Dx())
	assert.Equal(t, 1, bounds.Dy())
	assert.Equal(t, "image/png", imageproxy.PlaceholderContentType)
}
