package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/duktw/duk/internal/mapping"
)

// SmartRoutePrefix is the canonical entry point hotlink paths are rewritten
// to.
const SmartRoutePrefix = "/api/smart-route/"

// hotlinkPattern matches a root-level /<hash>.<ext> path. The extension is
// validated against the image allow-list separately so /readme.txt style
// paths pass through untouched.
var hotlinkPattern = regexp.MustCompile(`^/([A-Za-z0-9_-]+)\.([A-Za-z]+)$`)

// exemptPrefixes are never treated as hotlinks, so an administrative or API
// route segment can never be misread as a hash.
var exemptPrefixes = []string{
	"/admin",
	"/api",
	"/health",
	"/p/",
	"/docs",
	"/openapi",
	"/schemas",
}

// PathRewriter rewrites extension-bearing hotlink paths to the smart-route
// entry point before any other routing runs, so /abc123.png behaves exactly
// like /abc123. Headers, cookies and the query string ride along unchanged.
func PathRewriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path, ok := rewriteHotlink(r.URL.Path); ok {
			r.URL.Path = path
		}

		next.ServeHTTP(w, r)
	})
}

func rewriteHotlink(path string) (string, bool) {
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return "", false
		}
	}

	m := hotlinkPattern.FindStringSubmatch(path)
	if m == nil || !mapping.ValidExtension(m[2]) {
		return "", false
	}

	return SmartRoutePrefix + m[1] + "." + strings.ToLower(m[2]), true
}
