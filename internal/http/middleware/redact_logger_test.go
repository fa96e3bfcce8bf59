package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"email=ana@x.com", "email=[REDACTED:email]"},
		{"phone=212-555-1212", "phone=[REDACTED:phone]"},
		{"id=3f1c2a4e-9b7d-4c1e-8a2b-1234567890ab", "id=[REDACTED:id]"},
		{"page=2&page_size=20", "page=2&page_size=20"},
	}
	for _, tc := range tests {
		if got := Redact(tc.in); got != tc.want {
			t.Errorf("Redact(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactingLogger_ScrubsAndLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{" X-Api-Key "}}))
	r.GET("/api/clients", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/err", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	req := httptest.NewRequest(http.MethodGet, "/api/clients?email=ana@x.com", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "k-123")
	req.Header.Set("X-Lead", "call 212-555-1212")
	req.Header.Set(requestIDHeader, "rid-7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, leaked := range []string{"ana@x.com", "secret", "k-123", "212-555-1212"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("%q leaked into logs: %s", leaked, out)
		}
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected scoped line + access line, got %d: %s", len(lines), out)
	}
	var inside, access map[string]any
	_ = json.Unmarshal([]byte(lines[0]), &inside)
	_ = json.Unmarshal([]byte(lines[1]), &access)
	if inside["request_id"] != "rid-7" || inside["path"] != "/api/clients" {
		t.Fatalf("scoped logger fields missing: %v", inside)
	}
	if access["message"] != "http_request" || access["level"] != "info" || access["replay"] != false {
		t.Fatalf("access line = %v", access)
	}

	for path, level := range map[string]string{"/bad": "warn", "/err": "error"} {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		var m map[string]any
		_ = json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &m)
		if m["level"] != level {
			t.Fatalf("%s logged at %v; want %s", path, m["level"], level)
		}
	}
}
