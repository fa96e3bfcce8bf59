// Package terminal is the command-line host surface of the request form. It
// implements services.Shell on top of a text stream and provides the local
// file capabilities the CLI needs: turning a path into an attachment and
// copying accepted attachments into an upload directory.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/tbourn/pakchina-leads/internal/services"
)

// DefaultSubmitLabel is the idle label of the submit control.
const DefaultSubmitLabel = "Submit Request"

// Banner is the status banner currently shown.
type Banner struct {
	Kind    services.BannerKind
	Message string
	Expires time.Time
}

// Shell renders form feedback as lines on Out. It keeps the visible state
// (submit control, preview, banner, file input) so callers and tests can
// inspect it. Safe for concurrent use.
type Shell struct {
	Out io.Writer
	// Color enables ANSI colour output.
	Color bool
	// Now returns the current time for banner expiry; nil means time.Now.
	Now func() time.Time

	mu          sync.Mutex
	label       string
	enabled     bool
	preview     string
	banner      *Banner
	fileCleared bool
	resets      int
}

// NewShell returns a Shell writing to out with the submit control idle.
func NewShell(out io.Writer, useColor bool) *Shell {
	return &Shell{Out: out, Color: useColor, label: DefaultSubmitLabel, enabled: true}
}

var _ services.Shell = (*Shell)(nil)

func (s *Shell) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if s.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (s *Shell) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Alert prints msg as a blocking notice.
func (s *Shell) Alert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paint(color.FgYellow, color.Bold).Fprintf(s.Out, "! %s\n", msg)
}

// ClearFileInput forgets the selected file path.
func (s *Shell) ClearFileInput() {
	s.mu.Lock()
	s.fileCleared = true
	s.mu.Unlock()
}

// ShowPreview records dataURL as the visible preview and prints its media
// type and encoded size.
func (s *Shell) ShowPreview(dataURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = dataURL

	mediaType := "image"
	if rest, ok := strings.CutPrefix(dataURL, "data:"); ok {
		if mt, _, ok := strings.Cut(rest, ";"); ok && mt != "" {
			mediaType = mt
		}
	}
	s.paint(color.FgCyan).Fprintf(s.Out, "Preview: %s (%s encoded)\n", mediaType, humanize.Bytes(uint64(len(dataURL))))
}

// HidePreview clears the preview region.
func (s *Shell) HidePreview() {
	s.mu.Lock()
	s.preview = ""
	s.mu.Unlock()
}

// Preview returns the visible preview data URL, or "".
func (s *Shell) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// SubmitLabel returns the label currently shown on the submit control.
func (s *Shell) SubmitLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// SetSubmitControl updates the submit control and prints busy transitions.
func (s *Shell) SetSubmitControl(label string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label, s.enabled = label, enabled
	if !enabled {
		s.paint(color.Faint).Fprintf(s.Out, "%s\n", label)
	}
}

// SubmitEnabled reports whether the submit control accepts input.
func (s *Shell) SubmitEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// ShowBanner replaces the current banner and prints it.
func (s *Shell) ShowBanner(kind services.BannerKind, msg string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = &Banner{Kind: kind, Message: msg, Expires: s.now().Add(ttl)}

	c := s.paint(color.FgGreen, color.Bold)
	if kind == services.BannerError {
		c = s.paint(color.FgRed, color.Bold)
	}
	c.Fprintf(s.Out, "[%s] %s\n", kind, msg)
}

// Banner returns the visible banner, or nil once it has expired.
func (s *Shell) Banner() *Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.banner == nil || !s.now().Before(s.banner.Expires) {
		s.banner = nil
		return nil
	}
	b := *s.banner
	return &b
}

// ResetForm clears the form and its file input.
func (s *Shell) ResetForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	s.fileCleared = true
	fmt.Fprintln(s.Out, "Form cleared.")
}

// FileCleared reports whether the file input was cleared.
func (s *Shell) FileCleared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileCleared
}

// Resets returns how many times the form was reset.
func (s *Shell) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}
