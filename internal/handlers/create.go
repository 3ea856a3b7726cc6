package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/duktw/duk/internal/analytics"
	"github.com/duktw/duk/internal/mapping"
	"github.com/duktw/duk/internal/messaging"
	"github.com/duktw/duk/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HashGenerator generates unique short hashes.
type HashGenerator func() string

// passwordPattern is the accepted access-code shape: numeric, 4 to 8 digits.
var passwordPattern = regexp.MustCompile(`^\d{4,8}$`)

// CreateHandler handles image uploads and external-link shortening.
type CreateHandler struct {
	store          mapping.Repository
	objects        storage.ObjectStore
	generateHash   HashGenerator
	baseURL        string
	publishCreated messaging.Publish[analytics.MappingCreatedEvent]
	logger         *zap.Logger
}

// NewCreateHandler creates a new creation handler.
func NewCreateHandler(
	store mapping.Repository,
	objects storage.ObjectStore,
	generateHash HashGenerator,
	baseURL string,
	publishCreated messaging.Publish[analytics.MappingCreatedEvent],
	logger *zap.Logger,
) *CreateHandler {
	return &CreateHandler{
		store:          store,
		objects:        objects,
		generateHash:   generateHash,
		baseURL:        baseURL,
		publishCreated: publishCreated,
		logger:         logger,
	}
}

// UploadImage stores the raw image bytes and mints a short hash for them.
// The extension is sniffed from the content, never trusted from the client.
func (h *CreateHandler) UploadImage(ctx context.Context, req *UploadImageRequest) (*CreateMappingResponse, error) {
	if len(req.RawBody) == 0 {
		return nil, huma.Error400BadRequest("empty request body")
	}

	mtype := mimetype.Detect(req.RawBody)

	ext := strings.TrimPrefix(mtype.Extension(), ".")
	if !mapping.ValidExtension(ext) {
		return nil, huma.Error415UnsupportedMediaType(
			fmt.Sprintf("unsupported content type %q", mtype.String()),
		)
	}

	expiresAt, err := parseExpiry(req.ExpiresIn)
	if err != nil {
		return nil, err
	}

	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash := mapping.Hash(h.generateHash())
	key := fmt.Sprintf("images/%s.%s", hash, ext)

	if err := h.objects.Put(ctx, key, mtype.String(), bytes.NewReader(req.RawBody)); err != nil {
		h.logger.Error("object store write failed",
			zap.String("key", key),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to store image")
	}

	m := &mapping.Mapping{
		Hash:      hash,
		Target:    mapping.ObjectTarget(key),
		Password:  req.Password,
		ExpiresAt: expiresAt,
		Extension: ext,
		CreatedAt: time.Now(),
	}

	return h.saveAndRespond(ctx, m)
}

// CreateLink mints a short hash for an externally hosted image without
// copying its bytes.
func (h *CreateHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateMappingResponse, error) {
	target, err := url.Parse(req.Body.URL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		return nil, huma.Error400BadRequest("url must be absolute http or https")
	}

	expiresAt, err := parseExpiry(req.Body.ExpiresIn)
	if err != nil {
		return nil, err
	}

	if err := validatePassword(req.Body.Password); err != nil {
		return nil, err
	}

	// Extension hint only; the proxy trusts the upstream Content-Type when
	// serving.
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(target.Path), "."))
	if !mapping.ValidExtension(ext) {
		ext = ""
	}

	m := &mapping.Mapping{
		Hash:      mapping.Hash(h.generateHash()),
		Target:    mapping.ExternalTarget(req.Body.URL),
		Password:  req.Body.Password,
		ExpiresAt: expiresAt,
		Extension: ext,
		CreatedAt: time.Now(),
	}

	return h.saveAndRespond(ctx, m)
}

func (h *CreateHandler) saveAndRespond(ctx context.Context, m *mapping.Mapping) (*CreateMappingResponse, error) {
	if err := h.store.Save(ctx, m); err != nil {
		h.logger.Error("failed to save mapping",
			zap.String("hash", string(m.Hash)),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to save mapping")
	}

	h.recordCreation(ctx, m)

	shortURL := fmt.Sprintf("%s/%s", h.baseURL, m.Hash)

	resp := &CreateMappingResponse{}
	resp.Headers.Location = shortURL
	resp.Body.Hash = string(m.Hash)
	resp.Body.URL = shortURL
	resp.Body.Extension = m.Extension
	resp.Body.ExpiresAt = m.ExpiresAt

	return resp, nil
}

func (h *CreateHandler) recordCreation(ctx context.Context, m *mapping.Mapping) {
	meta := RequestMetaFromContext(ctx)
	event := &analytics.MappingCreatedEvent{
		EventID:    uuid.NewString(),
		Hash:       string(m.Hash),
		TargetKind: string(m.Target.Kind),
		Extension:  m.Extension,
		Protected:  m.Protected(),
		CreatedAt:  m.CreatedAt,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
	}

	if err := h.publishCreated(event); err != nil {
		h.logger.Error("failed to publish creation event",
			zap.String("hash", event.Hash),
			zap.Error(err),
		)
	}
}

func parseExpiry(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return nil, huma.Error400BadRequest("expires_in must be a positive duration such as 24h or 30m")
	}

	at := time.Now().Add(d)

	return &at, nil
}

func validatePassword(password string) error {
	if password != "" && !passwordPattern.MatchString(password) {
		return huma.Error400BadRequest("password must be 4 to 8 digits")
	}

	return nil
}
