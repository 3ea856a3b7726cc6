package handlers

import (
	"html/template"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/duktw/duk/internal/mapping"
	"go.uber.org/zap"
)

// gateTemplate is the password prompt served in place of a protected image.
// It posts to the verify endpoint from the page itself so the original URL
// keeps working once the cookie is set.
var gateTemplate = template.Must(template.New("gate").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Protected image</title>
<style>
body { font-family: sans-serif; display: flex; justify-content: center; align-items: center; min-height: 100vh; margin: 0; background: #f4f4f5; }
form { background: #fff; padding: 2rem; border-radius: 8px; box-shadow: 0 1px 4px rgba(0,0,0,.1); text-align: center; }
input { font-size: 1.1rem; padding: .5rem; margin: .5rem 0; width: 10rem; text-align: center; }
button { font-size: 1rem; padding: .5rem 1.5rem; cursor: pointer; }
p.error { color: #b91c1c; min-height: 1.2rem; margin: .5rem 0; }
</style>
</head>
<body>
<form id="gate">
<h1>This image is protected</h1>
<input type="password" name="password" inputmode="numeric" autocomplete="off" autofocus placeholder="Password">
<p class="error" id="error"></p>
<button type="submit">Unlock</button>
</form>
<script>
document.getElementById("gate").addEventListener("submit", async function (e) {
	e.preventDefault();
	const resp = await fetch("/api/verify-password", {
		method: "POST",
		headers: {"Content-Type": "application/json"},
		body: JSON.stringify({hash: {{.Hash}}, password: this.password.value}),
	});
	if (resp.ok) {
		location.reload();
	} else {
		document.getElementById("error").textContent = "Wrong password, try again.";
	}
});
</script>
</body>
</html>
`))

// gatePage renders the password prompt. Needing a password is not an error
// state, so the page is a plain 200: the client distinguishes it from a
// served image by content type.
func (h *RouteHandler) gatePage(m *mapping.Mapping) *huma.StreamResponse {
	return &huma.StreamResponse{Body: func(ctx huma.Context) {
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		ctx.SetStatus(http.StatusOK)

		if err := gateTemplate.Execute(ctx.BodyWriter(), map[string]string{
			"Hash": string(m.Hash),
		}); err != nil {
			h.logger.Error("failed to render gate page",
				zap.String("hash", string(m.Hash)),
				zap.Error(err),
			)
		}
	}}
}
