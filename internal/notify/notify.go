// Package notify turns a submission record into a plain-text summary and a
// mailto: compose link, and hands that link to whatever opens links on the
// host. Nothing here sends mail; the user's mail client does, if the user
// chooses to send the pre-filled message.
package notify

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// DefaultRecipient receives the compose link when none is configured.
const DefaultRecipient = "your-email@gmail.com"

// SubmittedAtLayout renders the submission time the way a US-English locale
// prints a date and time, e.g. "5/1/2024, 9:30:00 AM".
const SubmittedAtLayout = "1/2/2006, 3:04:05 PM"

// Summary renders the human-readable body for rec, with the submission time in
// loc (UTC when nil).
func Summary(rec domain.SubmissionRecord, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	whatsapp := "Not provided"
	if rec.WhatsApp != nil && *rec.WhatsApp != "" {
		whatsapp = *rec.WhatsApp
	}
	image := "No image provided"
	if rec.AttachedImageName != nil && *rec.AttachedImageName != "" {
		image = "Uploaded as: " + *rec.AttachedImageName
	}

	var b strings.Builder
	b.WriteString("New Product Request from PakChina Website\n\n")
	b.WriteString("Client Details:\n")
	b.WriteString("- Name: " + rec.Name + "\n")
	b.WriteString("- Email: " + rec.Email + "\n")
	b.WriteString("- Phone: " + rec.Phone + "\n")
	b.WriteString("- WhatsApp: " + whatsapp + "\n\n")
	b.WriteString("Product Details:\n")
	b.WriteString(rec.ProductDetails + "\n\n")
	b.WriteString("Image: " + image + "\n\n")
	b.WriteString("Request submitted on: " + rec.CreatedAt.In(loc).Format(SubmittedAtLayout) + "\n")
	return b.String()
}

// Subject is the compose subject line for rec.
func Subject(rec domain.SubmissionRecord) string {
	return "New Product Request - " + rec.Name
}

// ComposeURI builds mailto:<recipient>?subject=...&body=... with both values
// percent-encoded (spaces as %20).
func ComposeURI(recipient string, rec domain.SubmissionRecord, loc *time.Location) string {
	if recipient == "" {
		recipient = DefaultRecipient
	}
	return "mailto:" + recipient +
		"?subject=" + encodeComponent(Subject(rec)) +
		"&body=" + encodeComponent(Summary(rec, loc))
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Opener opens a compose link with the host's default handler.
type Opener interface {
	OpenComposeLink(ctx context.Context, uri string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, uri string) error

// OpenComposeLink calls f.
func (f OpenerFunc) OpenComposeLink(ctx context.Context, uri string) error { return f(ctx, uri) }

// ErrNoOpener is returned by a Dispatcher without an Opener.
var ErrNoOpener = errors.New("notify: no compose link opener")

// Dispatcher renders the compose link for a record and opens it.
type Dispatcher struct {
	Recipient string
	// Location is used for the submission time; nil means time.Local.
	Location *time.Location
	Opener   Opener
	Logger   *zerolog.Logger
}

// Dispatch builds the compose link for rec and hands it to the Opener. The
// link is returned even when opening fails.
func (d *Dispatcher) Dispatch(ctx context.Context, rec domain.SubmissionRecord) (string, error) {
	tr := otel.Tracer("notify/Dispatcher")
	ctx, span := tr.Start(ctx, "Dispatch",
		trace.WithAttributes(attribute.Int64("record.id", rec.ID)),
	)
	defer span.End()

	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	uri := ComposeURI(d.Recipient, rec, loc)
	d.logger().Debug().Str("summary", Summary(rec, loc)).Msg("email content")

	if d.Opener == nil {
		return uri, ErrNoOpener
	}
	if err := d.Opener.OpenComposeLink(ctx, uri); err != nil {
		span.RecordError(err)
		return uri, err
	}
	return uri, nil
}

func (d *Dispatcher) logger() *zerolog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return &log.Logger
}
