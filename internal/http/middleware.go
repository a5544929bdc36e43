package http

import (
	"net/http"
	"strings"
)

const (
	apiCSP = "default-src 'none'; frame-ancestors 'none'"
	// Swagger UI needs inline scripts, styles and data: images to render.
	swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"

	hstsValue = "max-age=63072000; includeSubDomains"
)

// credentialPaths answer with bearer tokens or account data and must not be cached.
var credentialPaths = map[string]bool{
	"/register":     true,
	"/token":        true,
	"/google-login": true,
	"/me":           true,
}

// SecurityOptions selects the environment-dependent response headers.
type SecurityOptions struct {
	// HSTS sends Strict-Transport-Security. Only enable behind TLS.
	HSTS bool
}

// SecurityHeaders returns middleware that sets the security headers on every
// response, picks the CSP for the API or the Swagger UI, and marks credential
// responses as non-cacheable.
func SecurityHeaders(opts SecurityOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Cross-Origin-Resource-Policy", "same-site")
			if opts.HSTS {
				h.Set("Strict-Transport-Security", hstsValue)
			}

			switch {
			case strings.HasPrefix(r.URL.Path, "/swagger/"):
				h.Set("Content-Security-Policy", swaggerCSP)
			default:
				h.Set("Content-Security-Policy", apiCSP)
			}

			if credentialPaths[r.URL.Path] {
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
			}

			next.ServeHTTP(w, r)
		})
	}
}
