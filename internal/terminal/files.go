package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tbourn/pakchina-leads/internal/domain"
)

// ImageFromPath describes the file at path as an attachment. The content type
// is sniffed from the file's bytes, since a terminal has no declared type.
func ImageFromPath(path string) (*domain.ImageFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s: is a directory", path)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect type of %s: %w", path, err)
	}
	ctype, _, _ := strings.Cut(mt.String(), ";")

	return &domain.ImageFile{
		Name:        filepath.Base(path),
		ContentType: strings.TrimSpace(ctype),
		Size:        fi.Size(),
		Open:        func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// DirUploader stores attachments as files in Dir.
type DirUploader struct {
	Dir string
}

// Upload copies img to Dir/storageName, creating Dir when missing. A partial
// file is removed on error.
func (u DirUploader) Upload(ctx context.Context, storageName string, img domain.ImageFile) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if storageName == "" || storageName != filepath.Base(storageName) {
		return fmt.Errorf("invalid storage name %q", storageName)
	}
	if img.Open == nil {
		return errors.New("attachment has no content")
	}
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return err
	}

	src, err := img.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst := filepath.Join(u.Dir, storageName)
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	_, err = io.Copy(f, src)
	return err
}
