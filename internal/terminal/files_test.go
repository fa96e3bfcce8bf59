package terminal

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/pakchina-leads/internal/domain"
	"github.com/tbourn/pakchina-leads/internal/services"
)

// 1x1 transparent PNG
const pngB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func writeFile(t *testing.T, dir, name string, b []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestImageFromPath_SniffsType(t *testing.T) {
	dir := t.TempDir()
	png, _ := base64.StdEncoding.DecodeString(pngB64)

	// The extension lies; the bytes decide.
	p := writeFile(t, dir, "photo.txt", png)
	img, err := ImageFromPath(p)
	if err != nil {
		t.Fatalf("ImageFromPath: %v", err)
	}
	if img.Name != "photo.txt" || img.ContentType != "image/png" || img.Size != int64(len(png)) {
		t.Fatalf("unexpected attachment: %+v", img)
	}
	rc, err := img.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != string(png) {
		t.Fatalf("content mismatch")
	}

	txt := writeFile(t, dir, "notes.png", []byte("hello there"))
	img, err = ImageFromPath(txt)
	if err != nil {
		t.Fatalf("ImageFromPath: %v", err)
	}
	if img.ContentType != "text/plain" {
		t.Fatalf("text file sniffed as %q", img.ContentType)
	}
}

func TestImageFromPath_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ImageFromPath(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	if _, err := ImageFromPath(dir); err == nil || !strings.Contains(err.Error(), "directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestDirUploader(t *testing.T) {
	base := t.TempDir()
	u := DirUploader{Dir: filepath.Join(base, "uploads")}
	img := domain.ImageFile{
		Name: "a.png",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("bytes")), nil },
	}
	ctx := context.Background()

	if err := u.Upload(ctx, "Ana_Gomez_1714555800000.png", img); err != nil {
		t.Fatalf("upload: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(u.Dir, "Ana_Gomez_1714555800000.png"))
	if err != nil || string(got) != "bytes" {
		t.Fatalf("stored file: %q %v", got, err)
	}

	if err := u.Upload(ctx, "Ana_Gomez_1714555800000.png", img); err == nil {
		t.Fatalf("expected error for an existing name")
	}
	if err := u.Upload(ctx, "../escape.png", img); err == nil {
		t.Fatalf("expected error for a name with a path")
	}
	derived := services.StorageName("Ali/Sons Traders", "cat.png", time.UnixMilli(1))
	if err := u.Upload(ctx, derived, img); err != nil {
		t.Fatalf("upload of derived name %q: %v", derived, err)
	}
	if err := u.Upload(ctx, "x.png", domain.ImageFile{}); err == nil {
		t.Fatalf("expected error without content")
	}

	boom := domain.ImageFile{Open: func() (io.ReadCloser, error) { return io.NopCloser(failingReader{}), nil }}
	if err := u.Upload(ctx, "partial.png", boom); err == nil {
		t.Fatalf("expected copy error")
	}
	if _, err := os.Stat(filepath.Join(u.Dir, "partial.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial file should be removed, stat err=%v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := u.Upload(canceled, "late.png", img); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }
