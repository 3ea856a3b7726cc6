package mapping

import "strings"

// imageExtensions is the fixed allow-list of extensions the service serves,
// with the content type each one implies.
var imageExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"ico":  "image/x-icon",
}

// ValidExtension reports whether ext (without the dot, any case) is a
// servable image extension.
func ValidExtension(ext string) bool {
	_, ok := imageExtensions[strings.ToLower(ext)]

	return ok
}

// ContentTypeFor returns the content type implied by an extension hint,
// falling back to application/octet-stream for unknown hints.
func ContentTypeFor(ext string) string {
	if ct, ok := imageExtensions[strings.ToLower(ext)]; ok {
		return ct
	}

	return "application/octet-stream"
}
