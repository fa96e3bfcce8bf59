// Package services – SubmissionController
//
// This file implements the SubmissionController, which drives one product
// request through its pipeline: assemble the record from the form, save the
// attached image, append the record to the local store, relay it to the
// remote endpoint, and hand the summary to the mail client.
//
// Lifecycle: Idle → Submitting → {Success, Failed} → Idle. The submit control
// is restored when leaving Submitting whatever the outcome, including a panic
// inside a stage. Relay failures are recorded in Outcome.Delivery and never
// turn a submission into Failed.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// State is a lifecycle state of the controller.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome describes how one submission ended.
//
// Fields:
//   - State: StateSuccess or StateFailed.
//   - Record: the assembled record (zero if assembly never ran).
//   - Delivery: how far the record travelled; relay failures show up here.
//   - StorageName: the derived name of the attached image, if any.
//   - ComposeURI: the mail compose link that was opened.
//   - Err: the cause of a failure.
type Outcome struct {
	State       State
	Record      domain.SubmissionRecord
	Delivery    domain.DeliveryStatus
	StorageName string
	ComposeURI  string
	Err         error
}

// SubmissionController owns one form instance. It is safe for concurrent use,
// but only one submission runs at a time.
type SubmissionController struct {
	// Shell is the visible surface of the form. Required.
	Shell Shell
	// Store receives every assembled record. Required.
	Store RecordStore
	// Notifier hands the summary to the mail client. Required.
	Notifier Notifier
	// IDs assigns record ids. Required.
	IDs IDGenerator

	// Relay is optional; nil keeps records local.
	Relay Relay
	// Uploader is optional; nil only logs the derived storage name.
	Uploader Uploader

	// MaxImageBytes caps attachments; <= 0 means DefaultMaxImageBytes.
	MaxImageBytes int64
	// BannerTTL is the banner auto-dismiss delay; <= 0 means DefaultBannerTTL.
	BannerTTL time.Duration
	// BusyLabel is shown on the submit control while submitting.
	BusyLabel string
	// Now returns the current time; nil means time.Now.
	Now func() time.Time
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
	// OnState, when set, observes every state transition.
	OnState func(State)

	mu       sync.Mutex
	state    State
	selected *domain.ImageFile
}

// Defaults applied when the corresponding field is unset.
const (
	DefaultMaxImageBytes int64 = 5 << 20
	DefaultBannerTTL           = 5 * time.Second
)

// State returns the current lifecycle state. Success and Failed are only
// reported to OnState; State keeps returning StateSubmitting until the
// controller has restored the submit control and is back in StateIdle.
func (c *SubmissionController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs the pipeline for form and the current image selection.
//
// On success the success banner is shown, the form reset and the preview
// hidden. On failure the error banner is shown and the form is left as is.
// The returned error equals Outcome.Err. A call made while another submission
// is running returns ErrSubmitInFlight and changes nothing.
func (c *SubmissionController) Submit(ctx context.Context, form domain.FormValues) (out Outcome, err error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return Outcome{State: StateSubmitting, Err: ErrSubmitInFlight}, ErrSubmitInFlight
	}
	c.state = StateSubmitting
	img := c.selected
	c.mu.Unlock()
	c.enter(StateSubmitting)

	tr := otel.Tracer("services/SubmissionController")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(attribute.Bool("image.attached", img != nil)),
	)
	defer span.End()

	label := c.Shell.SubmitLabel()
	c.Shell.SetSubmitControl(c.busyLabel(), false)

	defer func() {
		if r := recover(); r != nil {
			out.State = StateFailed
			out.Err = fmt.Errorf("%w: %v", ErrStagePanic, r)
			err = out.Err
			c.logger().Error().Interface("panic", r).Msg("submission stage panicked")
			c.Shell.ShowBanner(BannerError, ErrorBannerText, c.bannerTTL())
			c.enter(StateFailed)
		}
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, out.Err.Error())
		}
		span.SetAttributes(attribute.String("delivery", string(out.Delivery)))
		c.Shell.SetSubmitControl(label, true)
		c.enter(StateIdle)
	}()

	out, err = c.run(ctx, form, img)
	if err != nil {
		out.State = StateFailed
		out.Err = err
		c.logger().Error().Err(err).Msg("error submitting form")
		c.Shell.ShowBanner(BannerError, ErrorBannerText, c.bannerTTL())
		c.enter(StateFailed)
		return out, err
	}

	out.State = StateSuccess
	c.Shell.ShowBanner(BannerSuccess, SuccessBannerText, c.bannerTTL())
	c.Shell.ResetForm()
	c.Shell.HidePreview()
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
	c.enter(StateSuccess)
	return out, nil
}

// run executes the stages in order and stops at the first failing one.
func (c *SubmissionController) run(ctx context.Context, form domain.FormValues, img *domain.ImageFile) (Outcome, error) {
	rec := c.assemble(ctx, form, img)
	out := Outcome{Record: rec, Delivery: domain.DeliveryLocal}

	if img != nil {
		name, err := c.saveImage(ctx, rec.Name, *img)
		if err != nil {
			return out, fmt.Errorf("save image: %w", err)
		}
		out.StorageName = name
	}

	if err := c.persist(ctx, rec); err != nil {
		return out, fmt.Errorf("save record: %w", err)
	}
	out.Delivery = c.relay(ctx, rec)
	c.logger().Info().Int64("id", rec.ID).Str("delivery", string(out.Delivery)).Msg("client data saved")

	uri, err := c.Notifier.Dispatch(ctx, rec)
	out.ComposeURI = uri
	if err != nil {
		return out, fmt.Errorf("notify: %w", err)
	}
	return out, nil
}

func (c *SubmissionController) assemble(ctx context.Context, form domain.FormValues, img *domain.ImageFile) domain.SubmissionRecord {
	_, span := otel.Tracer("services/SubmissionController").Start(ctx, "assemble")
	defer span.End()

	f := form.Normalize()
	rec := domain.SubmissionRecord{
		ID:             c.IDs.NextID(),
		CreatedAt:      c.now().UTC(),
		Name:           f.Name,
		Email:          f.Email,
		Phone:          f.Phone,
		WhatsApp:       f.WhatsApp,
		ProductDetails: f.ProductDetails,
	}
	if img != nil {
		rec.AttachedImageName = domain.OptionalString(img.Name)
	}
	span.SetAttributes(attribute.Int64("record.id", rec.ID))
	return rec
}

func (c *SubmissionController) saveImage(ctx context.Context, clientName string, img domain.ImageFile) (string, error) {
	ctx, span := otel.Tracer("services/SubmissionController").Start(ctx, "saveImage")
	defer span.End()

	name := StorageName(clientName, img.Name, c.now())
	span.SetAttributes(attribute.String("image.storage_name", name))
	if c.Uploader != nil {
		if err := c.Uploader.Upload(ctx, name, img); err != nil {
			return "", err
		}
	}
	c.logger().Info().Str("file", name).Msg("image saved as")
	return name, nil
}

func (c *SubmissionController) persist(ctx context.Context, rec domain.SubmissionRecord) error {
	ctx, span := otel.Tracer("services/SubmissionController").Start(ctx, "persist")
	defer span.End()
	return c.Store.Append(ctx, rec)
}

// relay never fails the submission; the result is reported as a status.
func (c *SubmissionController) relay(ctx context.Context, rec domain.SubmissionRecord) domain.DeliveryStatus {
	if c.Relay == nil {
		return domain.DeliveryLocal
	}
	ctx, span := otel.Tracer("services/SubmissionController").Start(ctx, "relay")
	defer span.End()

	if err := c.Relay.Send(ctx, rec); err != nil {
		span.RecordError(err)
		c.logger().Warn().Err(err).Int64("id", rec.ID).Msg("relay failed; record kept locally only")
		return domain.DeliveryRelayFailed
	}
	return domain.DeliveryRelayed
}

func (c *SubmissionController) enter(s State) {
	if s == StateIdle {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
	}
	if c.OnState != nil {
		c.OnState(s)
	}
}

func (c *SubmissionController) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *SubmissionController) busyLabel() string {
	if c.BusyLabel != "" {
		return c.BusyLabel
	}
	return DefaultBusyLabel
}

func (c *SubmissionController) bannerTTL() time.Duration {
	if c.BannerTTL > 0 {
		return c.BannerTTL
	}
	return DefaultBannerTTL
}

func (c *SubmissionController) maxImageBytes() int64 {
	if c.MaxImageBytes > 0 {
		return c.MaxImageBytes
	}
	return DefaultMaxImageBytes
}

func (c *SubmissionController) logger() *zerolog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return &log.Logger
}

// IsValidationError reports whether err is an image intake rejection.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrImageTooLarge) || errors.Is(err, ErrNotAnImage)
}
