package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/duktw/duk/internal/gate"
	"github.com/duktw/duk/internal/mapping"
	"go.uber.org/zap"
)

// previewTemplate is the page browsers land on. The embedded <img> fetches
// the image bytes through the regular serve path, so access rules apply to
// the image request too.
var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Hash}}</title>
<meta property="og:image" content="{{.ImageURL}}">
<style>
body { font-family: sans-serif; display: flex; flex-direction: column; justify-content: center; align-items: center; min-height: 100vh; margin: 0; background: #18181b; color: #e4e4e7; }
img { max-width: 90vw; max-height: 80vh; border-radius: 4px; }
p { font-size: .9rem; }
a { color: #a1a1aa; }
</style>
</head>
<body>
<img src="{{.ImageURL}}" alt="{{.Hash}}">
<p><a href="{{.ImageURL}}">{{.ImageURL}}</a></p>
</body>
</html>
`))

// Preview renders the landing page for a hash. Interactive visitors are
// redirected here instead of receiving raw image bytes.
func (h *RouteHandler) Preview(ctx context.Context, req *PreviewRequest) (*huma.StreamResponse, error) {
	m, err := h.store.GetByHash(ctx, mapping.Hash(req.Hash))
	if err != nil {
		if errors.Is(err, mapping.ErrNotFound) {
			return nil, huma.Error404NotFound("image not found")
		}

		h.logger.Error("hash resolution failed",
			zap.String("hash", req.Hash),
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

	imageURL := h.baseURL + "/" + string(m.Hash)
	if m.Extension != "" {
		imageURL += "." + m.Extension
	}

	return &huma.StreamResponse{Body: func(ctx huma.Context) {
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		ctx.SetStatus(http.StatusOK)

		if err := previewTemplate.Execute(ctx.BodyWriter(), map[string]string{
			"Hash":     string(m.Hash),
			"ImageURL": imageURL,
		}); err != nil {
			h.logger.Error("failed to render preview page",
				zap.String("hash", string(m.Hash)),
				zap.Error(err),
			)
		}
	}}, nil
}
