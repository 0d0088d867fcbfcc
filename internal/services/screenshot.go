package services

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

const DefaultUploadMaxBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ScreenshotStore holds uploaded screenshots on local disk until the fill
// that references them has finished.
type ScreenshotStore interface {
	// Save writes r to a new file and returns its path. Anything that is not
	// a decodable PNG, JPEG, GIF or WebP image is rejected.
	Save(r io.Reader) (string, error)
	// Remove deletes every path, logging failures instead of returning them.
	Remove(paths ...string)
}

type screenshotStore struct {
	log      *logger.Logger
	dir      string
	maxBytes int64
}

func NewScreenshotStore(log *logger.Logger, dir string, maxBytes int64) (ScreenshotStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "chargeback-uploads")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &screenshotStore{log: log.With("service", "ScreenshotStore"), dir: dir, maxBytes: maxBytes}, nil
}

func (s *screenshotStore) Save(r io.Reader) (string, error) {
	f, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	tmp := f.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmp)
		}
	}()

	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if n > s.maxBytes {
		return "", apierr.Validation("screenshot exceeds %d bytes", s.maxBytes)
	}

	ext, err := validateImage(tmp)
	if err != nil {
		return "", err
	}
	final := filepath.Join(s.dir, uuid.New().String()+ext)
	if err := os.Rename(tmp, final); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	keep = true
	return final, nil
}

// validateImage returns the canonical extension for the image at path.
func validateImage(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	ext, ok := imageExtensions[mt.String()]
	if !ok {
		return "", apierr.Validation("screenshot must be a PNG, JPEG, GIF or WebP image (got %s)", mt.String())
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		return "", apierr.Validation("screenshot is not a readable image")
	}
	return ext, nil
}

func (s *screenshotStore) Remove(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("failed to delete temp screenshot", "path", p, "error", err)
		}
	}
}

// contentTypeOf maps a stored screenshot's extension back to its MIME type.
func contentTypeOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for ct, e := range imageExtensions {
		if e == ext {
			return ct
		}
	}
	if ext == ".jpeg" {
		return "image/jpeg"
	}
	return "application/octet-stream"
}
