package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/yungbote/chargeback-backend/internal/platform/gcp"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

type stubBucket struct{}

func (stubBucket) Upload(context.Context, string, string, io.Reader) (string, error) { return "k", nil }
func (stubBucket) PublicURL(key string) string                                       { return "https://cdn/" + key }
func (stubBucket) Close() error                                                      { return nil }

func withBucketFactory(t *testing.T, fn func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.ImageBucket, error)) {
	t.Helper()
	prev := newImageBucket
	newImageBucket = fn
	t.Cleanup(func() { newImageBucket = prev })
}

func TestResolveImageBucketDriveNeedsNoClient(t *testing.T) {
	withBucketFactory(t, func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.ImageBucket, error) {
		t.Fatal("bucket factory must not run for drive hosting")
		return nil, nil
	})
	for _, mode := range []string{"", "drive"} {
		bucket, err := resolveImageBucket(context.Background(), logger.Nop(), Config{ScreenshotStorage: mode})
		if err != nil || bucket != nil {
			t.Fatalf("mode %q: bucket=%v err=%v", mode, bucket, err)
		}
	}
}

func TestResolveImageBucketErrors(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		factory error
		want    StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", Config{ScreenshotStorage: "s3"}, nil, StorageProviderBootstrapErrorInvalidMode},
		{"missing bucket", Config{ScreenshotStorage: "gcs"}, nil, StorageProviderBootstrapErrorMissingBucket},
		{"connect failed", Config{ScreenshotStorage: "gcs", Bucket: gcp.BucketConfig{Name: "shots"}}, errors.New("dial"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		withBucketFactory(t, func(context.Context, *logger.Logger, gcp.BucketConfig) (gcp.ImageBucket, error) {
			return nil, tc.factory
		})
		_, err := resolveImageBucket(context.Background(), logger.Nop(), tc.cfg)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StorageProviderBootstrapError, got=%T", tc.name, err)
		}
		if code := storageProviderBootstrapErrorCode(err); code != tc.want {
			t.Fatalf("%s: code want=%q got=%q", tc.name, tc.want, code)
		}
	}
}

func TestResolveImageBucketGCS(t *testing.T) {
	var seen gcp.BucketConfig
	withBucketFactory(t, func(_ context.Context, _ *logger.Logger, cfg gcp.BucketConfig) (gcp.ImageBucket, error) {
		seen = cfg
		return stubBucket{}, nil
	})
	bucket, err := resolveImageBucket(context.Background(), logger.Nop(), Config{
		ScreenshotStorage: "gcs",
		Bucket:            gcp.BucketConfig{Name: "shots", Prefix: "screenshots/"},
	})
	if err != nil || bucket == nil {
		t.Fatalf("bucket=%v err=%v", bucket, err)
	}
	if seen.Name != "shots" {
		t.Fatalf("factory saw %#v", seen)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("FRONTEND_URL", "https://cb.example.test")
	t.Setenv("CORS_ORIGINS", "https://admin.example.test")
	cfg := LoadConfig(logger.Nop())
	if cfg.Addr() != ":3001" {
		t.Fatalf("addr=%q", cfg.Addr())
	}
	if cfg.SessionTTL != defaultSessionTTL {
		t.Fatalf("session ttl=%s", cfg.SessionTTL)
	}
	origins := cfg.AllowedOrigins()
	if len(origins) != 2 || origins[1] != "https://cb.example.test" {
		t.Fatalf("origins=%#v", origins)
	}
}
