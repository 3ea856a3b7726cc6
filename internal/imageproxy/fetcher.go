// Package imageproxy streams externally hosted images through the service.
package imageproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single upstream attempt. Kept low so a dead
// upstream degrades to the placeholder quickly instead of hanging embeds.
const DefaultTimeout = 3 * time.Second

// Fetcher retrieves upstream images with a bounded deadline, retrying a
// failed attempt once before the caller falls back to the placeholder.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewFetcher creates a fetcher with the given per-attempt timeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch retrieves rawURL and returns the body stream and the upstream
// Content-Type, passed through untouched. The caller must close the body.
// If the caller's context is cancelled the fetch is aborted and not
// retried: the client is gone.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	body, contentType, err := f.fetchOnce(ctx, rawURL)
	if err == nil {
		return body, contentType, nil
	}

	if ctx.Err() != nil {
		return nil, "", err
	}

	f.logger.Warn("upstream fetch failed, retrying",
		zap.String("url", rawURL),
		zap.Error(err),
	)

	return f.fetchOnce(ctx, rawURL)
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()

		return nil, "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		cancel()

		return nil, "", err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()

		return nil, "", fmt.Errorf("upstream returned %d", resp.StatusCode)
	}

	// The cancel travels with the body so the attempt deadline keeps
	// covering the streaming phase.
	body := &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	return body, resp.Header.Get("Content-Type"), nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()

	return err
}
