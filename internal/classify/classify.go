// Package classify derives a caller category from request headers.
// The result drives the smart-route decision: browsers get a redirect to
// the preview page, everything else gets the image bytes.
package classify

import "strings"

// Category is the closed set of caller kinds the router dispatches on.
type Category string

const (
	// Browser is an interactive browser that should see the preview page.
	Browser Category = "browser"
	// PreviewBot is a social-card crawler; it gets the raw image so link
	// previews render.
	PreviewBot Category = "preview-bot"
	// NonInteractive covers curl, wget, forum <img> fetches and anything
	// unrecognized. Unknown callers get the asset, not a redirect:
	// breaking an embed is worse than losing one page view.
	NonInteractive Category = "non-interactive"
)

// previewBotSignatures is the fixed allow-list of social preview crawlers,
// matched as lowercase user-agent substrings.
var previewBotSignatures = []string{
	"facebookexternalhit",
	"twitterbot",
	"slackbot",
	"discordbot",
	"telegrambot",
	"whatsapp",
	"linkedinbot",
	"pinterestbot",
	"skypeuripreview",
}

// browserSignatures match the user-agent of every mainstream browser.
// A browser must also ask for HTML via Accept to count as interactive;
// an <img> fetch from a browser sends Accept: image/* and falls through.
var browserSignatures = []string{
	"mozilla/",
	"chrome/",
	"firefox/",
	"safari/",
	"edg/",
	"opera/",
}

// rule maps a header predicate to a category. Rules are evaluated top to
// bottom; the first match wins.
type rule struct {
	category Category
	matches  func(userAgent, accept string) bool
}

var rules = []rule{
	{PreviewBot, func(userAgent, _ string) bool {
		return containsAny(userAgent, previewBotSignatures)
	}},
	{Browser, func(userAgent, accept string) bool {
		return containsAny(userAgent, browserSignatures) && strings.Contains(accept, "text/html")
	}},
}

// Classify maps the User-Agent and Accept headers to a Category. It is a
// pure function: identical inputs always yield identical output.
func Classify(userAgent, accept string) Category {
	ua := strings.ToLower(userAgent)
	acc := strings.ToLower(accept)

	for _, r := range rules {
		if r.matches(ua, acc) {
			return r.category
		}
	}

	return NonInteractive
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
