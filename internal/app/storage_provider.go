package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/chargeback-backend/internal/platform/gcp"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

// ScreenshotHost is where uploaded screenshots are published before the
// document embeds them by URL.
type ScreenshotHost string

const (
	ScreenshotHostDrive ScreenshotHost = "drive"
	ScreenshotHostGCS   ScreenshotHost = "gcs"
)

var newImageBucket = gcp.NewImageBucket

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode   StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingBucket StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorConnectFailed StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code   StorageProviderBootstrapErrorCode
	Mode   string
	Bucket string
	Cause  error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "screenshot storage bootstrap failed"
	}
	return fmt.Sprintf(
		"screenshot storage bootstrap failed (code=%s mode=%q bucket=%q): %v",
		e.Code,
		e.Mode,
		e.Bucket,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveImageBucket returns nil for Drive hosting, which needs no client of
// its own.
func resolveImageBucket(ctx context.Context, log *logger.Logger, cfg Config) (gcp.ImageBucket, error) {
	mode := ScreenshotHost(strings.TrimSpace(cfg.ScreenshotStorage))
	if mode == "" {
		mode = ScreenshotHostDrive
	}

	switch mode {
	case ScreenshotHostDrive:
		log.Info("Selecting screenshot host", "mode", mode)
		return nil, nil
	case ScreenshotHostGCS:
	default:
		err := &StorageProviderBootstrapError{
			Code:  StorageProviderBootstrapErrorInvalidMode,
			Mode:  string(mode),
			Cause: fmt.Errorf("unsupported SCREENSHOT_STORAGE %q", mode),
		}
		log.Error("Screenshot host selection failed", "mode", mode, "error_code", err.Code, "error", err)
		return nil, err
	}

	if strings.TrimSpace(cfg.Bucket.Name) == "" {
		err := &StorageProviderBootstrapError{
			Code:  StorageProviderBootstrapErrorMissingBucket,
			Mode:  string(mode),
			Cause: errors.New("SCREENSHOT_GCS_BUCKET is required when SCREENSHOT_STORAGE=gcs"),
		}
		log.Error("Screenshot host selection failed", "mode", mode, "error_code", err.Code, "error", err)
		return nil, err
	}

	log.Info(
		"Selecting screenshot host",
		"mode", mode,
		"bucket", cfg.Bucket.Name,
		"emulator_host", cfg.Bucket.EmulatorHost,
	)
	bucket, err := newImageBucket(ctx, log, cfg.Bucket)
	if err != nil {
		classified := &StorageProviderBootstrapError{
			Code:   StorageProviderBootstrapErrorConnectFailed,
			Mode:   string(mode),
			Bucket: cfg.Bucket.Name,
			Cause:  err,
		}
		log.Error("Screenshot host bootstrap failed", "mode", mode, "error_code", classified.Code, "error", classified)
		return nil, classified
	}
	return bucket, nil
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
