package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// TooLargeText is the alert shown for an attachment above max bytes.
func TooLargeText(max int64) string {
	return "File size must be less than " + humanize.IBytes(uint64(max))
}

// SelectImage validates a newly selected attachment and makes it the current
// selection. A nil img means the user removed the file.
//
// A file larger than MaxImageBytes fails with ErrImageTooLarge; a file whose
// declared content type is not image/* fails with ErrNotAnImage. Size is
// checked first. On rejection the user is alerted, the file input is cleared
// and no preview is shown.
//
// On acceptance the file is decoded into a data URL preview. A decode failure
// only means no preview; it is not an error.
func (c *SubmissionController) SelectImage(ctx context.Context, img *domain.ImageFile) error {
	tr := otel.Tracer("services/SubmissionController")
	_, span := tr.Start(ctx, "SelectImage")
	defer span.End()

	if img == nil {
		c.setSelected(nil)
		c.Shell.HidePreview()
		return nil
	}
	span.SetAttributes(
		attribute.String("image.name", img.Name),
		attribute.String("image.type", img.ContentType),
		attribute.Int64("image.size", img.Size),
	)

	if max := c.maxImageBytes(); img.Size > max {
		c.rejectImage(TooLargeText(max))
		return ErrImageTooLarge
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		c.rejectImage(NotAnImageText)
		return ErrNotAnImage
	}

	sel := *img
	c.setSelected(&sel)

	url, err := previewDataURL(sel, c.maxImageBytes())
	if err != nil {
		c.logger().Debug().Err(err).Str("file", sel.Name).Msg("image preview unavailable")
		span.AddEvent("preview.unavailable")
		return nil
	}
	c.Shell.ShowPreview(url)
	return nil
}

// Selected returns the current attachment, or nil.
func (c *SubmissionController) Selected() *domain.ImageFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	sel := *c.selected
	return &sel
}

func (c *SubmissionController) setSelected(img *domain.ImageFile) {
	c.mu.Lock()
	c.selected = img
	c.mu.Unlock()
}

func (c *SubmissionController) rejectImage(msg string) {
	c.setSelected(nil)
	c.Shell.Alert(msg)
	c.Shell.ClearFileInput()
	c.Shell.HidePreview()
}

// previewDataURL reads at most max bytes of img into a data: URL.
func previewDataURL(img domain.ImageFile, max int64) (string, error) {
	if img.Open == nil {
		return "", fmt.Errorf("%s: no content", img.Name)
	}
	rc, err := img.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, max))
	if err != nil {
		return "", err
	}
	return "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}
