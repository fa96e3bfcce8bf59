// Package domain defines the product-request submission record and the
// persistence models that carry it. The GORM-mapped types back both the local
// durable cache used by the form host and the relay store kept by the server.
package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form used on the wire for record creation
// times: UTC with millisecond precision (e.g. 2024-05-01T09:30:00.123Z).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// SubmissionRecord is one product request assembled from the form.
//
// A record is immutable once assembled: nothing in this module updates or
// deletes one. Optional fields are nil when absent, which is distinct from an
// empty string.
//
// Fields:
//   - ID: timestamp-derived, monotonically increasing within one generator.
//   - CreatedAt: assembly time, serialized as "timestamp".
//   - Name / Email / Phone / ProductDetails: required, stored as typed.
//   - WhatsApp: optional contact number.
//   - AttachedImageName: original file name of the attached image, serialized
//     as "imageFile".
type SubmissionRecord struct {
	ID                int64     `json:"id"`
	CreatedAt         time.Time `json:"timestamp"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	WhatsApp          *string   `json:"whatsapp"`
	ProductDetails    string    `json:"productDetails"`
	AttachedImageName *string   `json:"imageFile"`
}

// wireRecord mirrors SubmissionRecord with the timestamp rendered as text.
type wireRecord struct {
	ID                int64   `json:"id"`
	Timestamp         string  `json:"timestamp"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	WhatsApp          *string `json:"whatsapp"`
	ProductDetails    string  `json:"productDetails"`
	AttachedImageName *string `json:"imageFile"`
}

// MarshalJSON renders the record with the wire field names and an ISO-8601
// millisecond timestamp.
func (r SubmissionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecord{
		ID:                r.ID,
		Timestamp:         r.CreatedAt.UTC().Format(TimestampLayout),
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		WhatsApp:          r.WhatsApp,
		ProductDetails:    r.ProductDetails,
		AttachedImageName: r.AttachedImageName,
	})
}

// UnmarshalJSON accepts any RFC 3339 timestamp, with or without fractional
// seconds.
func (r *SubmissionRecord) UnmarshalJSON(b []byte) error {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var ts time.Time
	if w.Timestamp != "" {
		t, err := time.Parse(time.RFC3339Nano, w.Timestamp)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		ts = t
	}
	*r = SubmissionRecord{
		ID:                w.ID,
		CreatedAt:         ts,
		Name:              w.Name,
		Email:             w.Email,
		Phone:             w.Phone,
		WhatsApp:          w.WhatsApp,
		ProductDetails:    w.ProductDetails,
		AttachedImageName: w.AttachedImageName,
	}
	return nil
}

// Clone returns a deep copy so optional fields are never shared between the
// caller and a store.
func (r SubmissionRecord) Clone() SubmissionRecord {
	out := r
	out.WhatsApp = cloneStr(r.WhatsApp)
	out.AttachedImageName = cloneStr(r.AttachedImageName)
	return out
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// FormValues is the typed capture of the request form.
//
// Name, Email, Phone and ProductDetails are required by the form itself;
// WhatsApp is optional and nil means the field was left out.
type FormValues struct {
	Name           string
	Email          string
	Phone          string
	WhatsApp       *string
	ProductDetails string
}

// Normalize maps a blank optional field to absent. Required fields are kept
// exactly as typed.
func (f FormValues) Normalize() FormValues {
	out := f
	if f.WhatsApp != nil && strings.TrimSpace(*f.WhatsApp) == "" {
		out.WhatsApp = nil
	} else {
		out.WhatsApp = cloneStr(f.WhatsApp)
	}
	return out
}

// OptionalString returns nil for "" and a pointer to s otherwise. Hosts use it
// to turn raw field text into an optional value.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DeliveryStatus reports how far a record travelled after assembly.
type DeliveryStatus string

const (
	// DeliveryLocal means the record is in the local cache and no relay was
	// attempted.
	DeliveryLocal DeliveryStatus = "local"
	// DeliveryRelayed means the remote endpoint acknowledged the record.
	DeliveryRelayed DeliveryStatus = "relayed"
	// DeliveryRelayFailed means the relay was attempted and failed; the record
	// is still in the local cache.
	DeliveryRelayFailed DeliveryStatus = "relay-failed"
)

// ImageFile is a user-selected attachment as the host presents it: the
// original file name, the declared content type, the size in bytes and a way
// to read the contents.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}
