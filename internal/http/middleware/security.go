// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, a conservative header set for a JSON
// API behind a reverse proxy. No CSP is sent; the API serves no HTML apart
// from the optional Swagger UI.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
//
// EnableHSTS emits Strict-Transport-Security, but only for requests that
// arrived over HTTPS (directly or per X-Forwarded-Proto). Plain HTTP never
// gets the header, so a local relay target on http://localhost is unaffected.
//
// HSTSMaxAge is the HSTS lifetime. Zero or negative falls back to 180 days.
//
// NoStore adds Cache-Control: no-store with the legacy Pragma and Expires
// pair. Relayed product requests carry contact details, so list and detail
// responses should not sit in shared caches.
//
// EnablePolicy sends Permissions-Policy and X-Permitted-Cross-Domain-Policies.
// Only browsers act on them; the form host's relay client ignores both.
type SecurityOptions struct {
	EnableHSTS   bool          // HTTPS requests only
	HSTSMaxAge   time.Duration // e.g. 180 * 24h
	NoStore      bool          // add Cache-Control: no-store
	EnablePolicy bool          // include Permissions-Policy, etc.
}

// SecurityHeaders returns a Gin middleware that hardens every response.
//
// Behavior:
//   - Always sets:
//     X-Content-Type-Options: nosniff
//     X-Frame-Options: DENY
//     Referrer-Policy: no-referrer
//   - When EnablePolicy:
//     Permissions-Policy: geolocation=(), microphone=(), camera=(), payment=()
//     X-Permitted-Cross-Domain-Policies: none
//   - When NoStore:
//     Cache-Control: no-store
//     Pragma: no-cache
//     Expires: 0
//   - When EnableHSTS and the request is HTTPS:
//     Strict-Transport-Security: max-age=<seconds>; includeSubDomains; preload
//   - When X-Request-ID is already on the response (RequestID runs earlier),
//     it is appended to Access-Control-Expose-Headers so browser clients can
//     read it. An existing expose list is extended, not replaced.
//
// Headers are set before c.Next, so they are present on error envelopes and
// on the NoRoute/NoMethod fallbacks too.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			const expose = "Access-Control-Expose-Headers"
			switch cur := h.Get(expose); {
			case cur == "":
				h.Set(expose, requestIDHeader)
			case !strings.Contains(cur, requestIDHeader):
				h.Set(expose, cur+", "+requestIDHeader)
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether r used TLS directly or via a proxy that set
// X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
