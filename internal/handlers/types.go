package handlers

import (
	"context"
	"io"
	"time"
)

// Fetcher streams an externally hosted image. Implemented by
// imageproxy.Fetcher; faked in tests.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, string, error)
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// SmartRouteRequest is the request for the smart-route entry point. The
// hash may carry an image extension, either from a direct API call or from
// the hotlink path rewrite.
type SmartRouteRequest struct {
	Hash      string `doc:"Short hash, optionally suffixed with an image extension" example:"pbQyTD" path:"hash"`
	UserAgent string `header:"User-Agent"`
	Accept    string `header:"Accept"`
	Cookie    string `header:"Cookie"`
}

// VerifyPasswordRequest is the request body for unlocking a protected hash.
type VerifyPasswordRequest struct {
	Body struct {
		Hash     string `doc:"Short hash to unlock"    example:"xyz999" json:"hash"`
		Password string `doc:"Numeric access code"     example:"1234"   json:"password"`
	}
}

// VerifyPasswordResponse carries the verification cookie on success.
type VerifyPasswordResponse struct {
	Headers struct {
		SetCookie string `doc:"Verification session cookie" header:"Set-Cookie"`
	}
	Body struct {
		Success bool `doc:"Whether the password matched" json:"success"`
	}
}

// UploadImageRequest is the request for uploading image bytes.
type UploadImageRequest struct {
	RawBody   []byte
	Password  string `doc:"Optional numeric access code (4-8 digits)"                  example:"1234" query:"password"`
	ExpiresIn string `doc:"Optional lifetime in Go duration format (e.g. 24h, 30m)"    example:"24h"  query:"expires_in"`
}

// CreateLinkRequest is the request body for shortening an external image
// URL.
type CreateLinkRequest struct {
	Body struct {
		URL       string `doc:"Externally hosted image URL"                             example:"https://img.example.com/a.png" format:"uri" json:"url"`
		Password  string `doc:"Optional numeric access code (4-8 digits)"               example:"1234" json:"password,omitempty"`
		ExpiresIn string `doc:"Optional lifetime in Go duration format (e.g. 24h, 30m)" example:"24h"  json:"expiresIn,omitempty"`
	}
}

// CreateMappingResponse is returned for both uploads and shortened links.
type CreateMappingResponse struct {
	Headers struct {
		Location string `doc:"The public short URL" header:"Location"`
	}
	Body struct {
		Hash      string     `doc:"The short hash"                       example:"pbQyTD" json:"hash"`
		URL       string     `doc:"The public short URL"                 json:"url"`
		Extension string     `doc:"Detected image extension"             example:"png"    json:"extension,omitempty"`
		ExpiresAt *time.Time `doc:"Absolute expiry, if a lifetime was set" json:"expiresAt,omitempty"`
	}
}

// PreviewRequest is the request for the human-facing preview page.
type PreviewRequest struct {
	Hash   string `doc:"Short hash" example:"pbQyTD" path:"hash"`
	Cookie string `header:"Cookie"`
}
