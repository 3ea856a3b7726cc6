package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/duktw/duk/internal/ratelimit"
)

// RegisterRoutes registers all image routes with per-endpoint rate limit
// configuration.
func RegisterRoutes(api huma.API, routeHandler *RouteHandler, createHandler *CreateHandler) {
	// Relaxed limits on the serve path: a single page can embed many images.
	serveLimits := ratelimit.EndpointConfig{
		Limits: []ratelimit.LimitConfig{
			{Window: time.Minute, Max: 1000},
		},
	}

	// Stricter limits for write operations.
	writeLimits := ratelimit.EndpointConfig{
		Limits: []ratelimit.LimitConfig{
			{Window: time.Minute, Max: 10},
			{Window: time.Hour, Max: 100},
			{Window: 24 * time.Hour, Max: 500},
		},
	}

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/api/smart-route/{hash}",
		Summary:     "Serve an image by hash",
		Description: "Resolves the hash, enforces expiry and password rules, then redirects browsers to the preview page and streams image bytes to everything else.",
		Tags:        []string{"Images"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: serveLimits,
		},
	}, routeHandler.SmartRoute)

	// Bare short URLs hit the same routing decision as explicit API calls.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{hash}",
		OperationID: "serve-short-url",
		Summary:     "Serve an image by short URL",
		Description: "Root-level alias of the smart-route entry point.",
		Tags:        []string{"Images"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: serveLimits,
		},
	}, routeHandler.SmartRoute)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/p/{hash}",
		Summary:     "Image preview page",
		Description: "Human-facing landing page that embeds the image.",
		Tags:        []string{"Images"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: serveLimits,
		},
	}, routeHandler.Preview)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/verify-password",
		Summary:     "Unlock a protected image",
		Description: "Verifies the access code for a protected hash and issues a verification cookie valid for one hour.",
		Tags:        []string{"Images"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 50},
				},
			},
		},
	}, routeHandler.VerifyPassword)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/images",
		Summary:     "Upload an image",
		Description: "Stores the raw image bytes and returns a short URL for them.",
		Tags:        []string{"Images"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: writeLimits,
		},
	}, createHandler.UploadImage)

	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/links",
		Summary:     "Shorten an external image URL",
		Description: "Creates a short URL that proxies an externally hosted image.",
		Tags:        []string{"Images"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: writeLimits,
		},
	}, createHandler.CreateLink)
}
