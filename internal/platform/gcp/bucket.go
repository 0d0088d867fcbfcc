package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type BucketConfig struct {
	Name string
	// Prefix is prepended to every object key ("screenshots/" by default).
	Prefix string
	// CDNDomain replaces storage.googleapis.com in public URLs when set.
	CDNDomain string
	// EmulatorHost points the client at fake-gcs-server (STORAGE_EMULATOR_HOST).
	EmulatorHost string
}

func BucketConfigFromEnv() BucketConfig {
	prefix := strings.TrimSpace(os.Getenv("SCREENSHOT_GCS_PREFIX"))
	if prefix == "" {
		prefix = "screenshots/"
	}
	return BucketConfig{
		Name:         strings.TrimSpace(os.Getenv("SCREENSHOT_GCS_BUCKET")),
		Prefix:       prefix,
		CDNDomain:    strings.TrimSpace(os.Getenv("SCREENSHOT_CDN_DOMAIN")),
		EmulatorHost: strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/"),
	}
}

// ImageBucket stores screenshot images in GCS and hands out public URLs the
// Docs API can fetch when inserting inline images.
type ImageBucket interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (key string, err error)
	PublicURL(key string) string
	Close() error
}

type imageBucket struct {
	log    *logger.Logger
	client *storage.Client
	cfg    BucketConfig
}

func NewImageBucket(ctx context.Context, log *logger.Logger, cfg BucketConfig) (ImageBucket, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("missing env var SCREENSHOT_GCS_BUCKET")
	}
	var opts []option.ClientOption
	if cfg.EmulatorHost != "" {
		u, err := url.Parse(cfg.EmulatorHost)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid STORAGE_EMULATOR_HOST=%q", cfg.EmulatorHost)
		}
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog := log.With("service", "ImageBucket")
	serviceLog.Info("Screenshot bucket initialized", "bucket", cfg.Name, "emulator_host", cfg.EmulatorHost)
	return &imageBucket{log: serviceLog, client: client, cfg: cfg}, nil
}

func (b *imageBucket) Upload(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key := ObjectKey(b.cfg.Prefix, name)
	w := b.client.Bucket(b.cfg.Name).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	// Inline images are fetched anonymously by the Docs backend.
	w.PredefinedACL = "publicRead"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", apierr.Remote("gcs", 0, "", fmt.Errorf("write object %q: %w", key, err))
	}
	if err := w.Close(); err != nil {
		return "", apierr.Remote("gcs", 0, "", fmt.Errorf("close writer for %q: %w", key, err))
	}
	return key, nil
}

func (b *imageBucket) PublicURL(key string) string {
	return PublicObjectURL(b.cfg, key)
}

func (b *imageBucket) Close() error {
	return b.client.Close()
}

// ObjectKey builds a collision free key under prefix, keeping the file extension.
func ObjectKey(prefix, name string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	return strings.TrimLeft(prefix, "/") + uuid.New().String() + ext
}

func PublicObjectURL(cfg BucketConfig, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	}
	if cfg.EmulatorHost != "" {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", cfg.EmulatorHost, url.PathEscape(cfg.Name), url.PathEscape(key))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Name, key)
}
