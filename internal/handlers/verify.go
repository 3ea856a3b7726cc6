package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/duktw/duk/internal/gate"
	"github.com/duktw/duk/internal/mapping"
	"go.uber.org/zap"
)

// VerifyPassword checks a supplied password against a protected mapping and
// issues the verification cookie on a match. Repeating the call for an
// already unlocked client just mints a fresh cookie.
func (h *RouteHandler) VerifyPassword(ctx context.Context, req *VerifyPasswordRequest) (*VerifyPasswordResponse, error) {
	m, err := h.store.GetByHash(ctx, mapping.Hash(req.Body.Hash))
	if err != nil {
		if errors.Is(err, mapping.ErrNotFound) {
			return nil, huma.Error404NotFound("image not found")
		}

		h.logger.Error("hash resolution failed",
			zap.String("hash", req.Body.Hash),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to resolve hash")
	}

	if err := h.gate.VerifyPassword(m, req.Body.Password); err != nil {
		if errors.Is(err, gate.ErrExpired) {
			return nil, huma.Error410Gone("link expired")
		}

		return nil, huma.Error401Unauthorized("invalid password")
	}

	cookie, err := h.gate.IssueCookie(m.Hash)
	if err != nil {
		h.logger.Error("failed to issue verification cookie",
			zap.String("hash", req.Body.Hash),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to issue verification cookie")
	}

	resp := &VerifyPasswordResponse{}
	resp.Headers.SetCookie = cookie.String()
	resp.Body.Success = true

	return resp, nil
}
