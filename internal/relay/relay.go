// Package relay delivers submission records to the remote collection
// endpoint as JSON. Delivery is best effort: callers decide what a failure
// means, this package only reports it.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// DefaultURL is the endpoint records are posted to when none is configured.
const DefaultURL = "http://localhost:8080/api/clients"

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("relay: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("relay: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client posts records to URL.
type Client struct {
	URL  string
	HTTP *http.Client
}

// New returns a Client for url (DefaultURL when empty). A zero timeout means
// requests are bounded only by the caller's context.
func New(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

// Send posts rec as JSON with an Idempotency-Key equal to the record id, so a
// retried delivery is stored only once by the endpoint.
func (c *Client) Send(ctx context.Context, rec domain.SubmissionRecord) error {
	tr := otel.Tracer("relay/Client")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("record.id", rec.ID),
			attribute.String("http.url", c.URL),
		),
	)
	defer span.End()

	body, err := json.Marshal(rec)
	if err != nil {
		return c.fail(span, fmt.Errorf("relay: encode record: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return c.fail(span, fmt.Errorf("relay: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", strconv.FormatInt(rec.ID, 10))
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return c.fail(span, fmt.Errorf("relay: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c.fail(span, &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))})
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
