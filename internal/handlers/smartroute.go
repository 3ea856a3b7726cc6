package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/duktw/duk/internal/analytics"
	"github.com/duktw/duk/internal/classify"
	"github.com/duktw/duk/internal/gate"
	"github.com/duktw/duk/internal/imageproxy"
	"github.com/duktw/duk/internal/mapping"
	"github.com/duktw/duk/internal/messaging"
	"github.com/duktw/duk/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RouteHandler serves hashes: it resolves the mapping, enforces the access
// gate, classifies the caller and picks the response strategy.
type RouteHandler struct {
	store       mapping.Repository
	gate        *gate.Gate
	objects     storage.ObjectStore
	fetcher     Fetcher
	baseURL     string
	publishView messaging.Publish[analytics.MappingViewedEvent]
	logger      *zap.Logger
}

// NewRouteHandler creates a new serve-path handler.
func NewRouteHandler(
	store mapping.Repository,
	g *gate.Gate,
	objects storage.ObjectStore,
	fetcher Fetcher,
	baseURL string,
	publishView messaging.Publish[analytics.MappingViewedEvent],
	logger *zap.Logger,
) *RouteHandler {
	return &RouteHandler{
		store:       store,
		gate:        g,
		objects:     objects,
		fetcher:     fetcher,
		baseURL:     baseURL,
		publishView: publishView,
		logger:      logger,
	}
}

// SmartRoute is the per-request routing decision. Order matters: resolve,
// gate, classify, then pick the cheapest serving strategy. Gate failures
// are terminal; no routing happens after them.
func (h *RouteHandler) SmartRoute(ctx context.Context, req *SmartRouteRequest) (*huma.StreamResponse, error) {
	hash, ext := splitHashExtension(req.Hash)

	m, err := h.store.GetByHash(ctx, mapping.Hash(hash))
	if err != nil {
		if errors.Is(err, mapping.ErrNotFound) {
			return nil, huma.Error404NotFound("image not found")
		}

		h.logger.Error("hash resolution failed",
			zap.String("hash", hash),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to resolve hash")
	}

	if err := h.gate.Check(m, req.Cookie); err != nil {
		switch {
		case errors.Is(err, gate.ErrExpired):
			return nil, huma.Error410Gone("link expired")
		case errors.Is(err, gate.ErrPasswordRequired):
			return h.gatePage(m), nil
		default:
			return nil, huma.Error500InternalServerError("access check failed")
		}
	}

	category := classify.Classify(req.UserAgent, req.Accept)

	h.recordView(ctx, m, category)

	if category == classify.Browser {
		return redirect(h.baseURL + "/p/" + string(m.Hash)), nil
	}

	return h.streamImage(m, ext), nil
}

// recordView publishes the view event that carries the deferred view-count
// increment. Publish failures are logged and swallowed: accounting never
// blocks or fails a serve.
func (h *RouteHandler) recordView(ctx context.Context, m *mapping.Mapping, category classify.Category) {
	meta := RequestMetaFromContext(ctx)
	event := &analytics.MappingViewedEvent{
		EventID:    uuid.NewString(),
		Hash:       string(m.Hash),
		ViewedAt:   time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
		ClientKind: string(category),
	}

	if err := h.publishView(event); err != nil {
		h.logger.Error("failed to publish view event",
			zap.String("hash", event.Hash),
			zap.Error(err),
		)
	}
}

func redirect(location string) *huma.StreamResponse {
	return &huma.StreamResponse{Body: func(ctx huma.Context) {
		ctx.SetHeader("Location", location)
		ctx.SetStatus(http.StatusFound)
	}}
}

// streamImage picks the cheapest byte source: an in-process object store
// read when the target is ours, an outbound proxy fetch otherwise.
func (h *RouteHandler) streamImage(m *mapping.Mapping, ext string) *huma.StreamResponse {
	return &huma.StreamResponse{Body: func(ctx huma.Context) {
		switch m.Target.Kind {
		case mapping.TargetObjectKey:
			h.streamObject(ctx, m, ext)
		case mapping.TargetExternalURL:
			h.streamExternal(ctx, m)
		default:
			h.logger.Error("mapping has no target", zap.String("hash", string(m.Hash)))
			h.servePlaceholder(ctx)
		}
	}}
}

func (h *RouteHandler) streamObject(ctx huma.Context, m *mapping.Mapping, ext string) {
	obj, err := h.objects.Get(ctx.Context(), m.Target.Key)
	if err != nil {
		h.logger.Error("object store read failed",
			zap.String("hash", string(m.Hash)),
			zap.String("key", m.Target.Key),
			zap.Error(err),
		)
		h.servePlaceholder(ctx)

		return
	}

	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		if ext == "" {
			ext = m.Extension
		}

		contentType = mapping.ContentTypeFor(ext)
	}

	ctx.SetHeader("Content-Type", contentType)
	ctx.SetStatus(http.StatusOK)

	if _, err := io.Copy(ctx.BodyWriter(), obj.Body); err != nil {
		h.logger.Warn("object stream interrupted",
			zap.String("hash", string(m.Hash)),
			zap.Error(err),
		)
	}
}

func (h *RouteHandler) streamExternal(ctx huma.Context, m *mapping.Mapping) {
	body, contentType, err := h.fetcher.Fetch(ctx.Context(), m.Target.URL)
	if err != nil {
		h.logger.Warn("upstream fetch failed, serving placeholder",
			zap.String("hash", string(m.Hash)),
			zap.String("url", m.Target.URL),
			zap.Error(err),
		)
		h.servePlaceholder(ctx)

		return
	}

	defer body.Close()

	if contentType == "" {
		contentType = mapping.ContentTypeFor(m.Extension)
	}

	// Pass the upstream bytes through untouched, no re-encoding.
	ctx.SetHeader("Content-Type", contentType)
	ctx.SetStatus(http.StatusOK)

	if _, err := io.Copy(ctx.BodyWriter(), body); err != nil {
		h.logger.Warn("proxy stream interrupted",
			zap.String("hash", string(m.Hash)),
			zap.Error(err),
		)
	}
}

// servePlaceholder degrades to a real image rather than an error page, so
// embeds never show a broken-image icon.
func (h *RouteHandler) servePlaceholder(ctx huma.Context) {
	ctx.SetHeader("Content-Type", imageproxy.PlaceholderContentType)
	ctx.SetStatus(http.StatusOK)
	_, _ = ctx.BodyWriter().Write(imageproxy.Placeholder)
}

// splitHashExtension splits a trailing image extension off a hash path
// segment. Unknown extensions stay part of the hash: they are treated as
// opaque lookup input rather than rejected.
func splitHashExtension(raw string) (hash, ext string) {
	i := strings.LastIndexByte(raw, '.')
	if i <= 0 {
		return raw, ""
	}

	if e := strings.ToLower(raw[i+1:]); mapping.ValidExtension(e) {
		return raw[:i], e
	}

	return raw, ""
}
