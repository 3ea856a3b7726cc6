package imageproxy

import _ "embed"

// Placeholder is served in place of an image whose upstream could not be
// reached. Embeds and hotlinks get a real (if blank) image instead of a
// broken-image icon or an HTML error page.
//
//go:embed placeholder.png
var Placeholder []byte

// PlaceholderContentType is the content type of Placeholder.
const PlaceholderContentType = "image/png"
