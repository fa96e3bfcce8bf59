package services

import (
	"context"
	"time"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// BannerKind selects the styling of a status banner.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// User-facing texts shown by the controller.
const (
	SuccessBannerText = "Thank you! Your product request has been submitted successfully. We will contact you soon."
	ErrorBannerText   = "Sorry, there was an error submitting your request. Please try again."
	NotAnImageText    = "Please select an image file"
	DefaultBusyLabel  = "Submitting..."
)

// Shell is the surface the host puts in front of the user: the form, its
// file input, the preview region and the banner container. The controller
// never touches the platform directly; everything visible goes through here.
type Shell interface {
	// Alert shows a blocking message.
	Alert(msg string)
	// ClearFileInput empties the file selection control.
	ClearFileInput()
	// ShowPreview reveals the preview region with the given data URL.
	ShowPreview(dataURL string)
	// HidePreview hides the preview region.
	HidePreview()
	// SubmitLabel returns the current label of the submit control.
	SubmitLabel() string
	// SetSubmitControl sets the submit control's label and enabled state.
	SetSubmitControl(label string, enabled bool)
	// ShowBanner replaces any visible banner with msg; the banner dismisses
	// itself after ttl.
	ShowBanner(kind BannerKind, msg string, ttl time.Duration)
	// ResetForm clears every form field.
	ResetForm()
}

// RecordStore is the ordered, append-only record repository.
type RecordStore interface {
	Append(ctx context.Context, rec domain.SubmissionRecord) error
	LoadAll() []domain.SubmissionRecord
}

// Relay hands a record to the remote endpoint.
type Relay interface {
	Send(ctx context.Context, rec domain.SubmissionRecord) error
}

// Notifier renders the summary for a record and triggers the mail hand-off.
// It returns the compose link it opened.
type Notifier interface {
	Dispatch(ctx context.Context, rec domain.SubmissionRecord) (string, error)
}

// Uploader stores an attached image under storageName.
type Uploader interface {
	Upload(ctx context.Context, storageName string, img domain.ImageFile) error
}

// IDGenerator yields record ids.
type IDGenerator interface {
	NextID() int64
}
