package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yungbote/chargeback-backend/internal/modules/docfill"
	"github.com/yungbote/chargeback-backend/internal/platform/gcp"
	"github.com/yungbote/chargeback-backend/internal/platform/gworkspace"
)

// drivePublisher uploads into the connected Drive and shares the file with
// anyone holding the link.
type drivePublisher struct {
	ws Workspace
}

func NewDrivePublisher(ws Workspace) docfill.ImagePublisher {
	return &drivePublisher{ws: ws}
}

func (p *drivePublisher) Publish(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	id, err := p.ws.UploadFile(ctx, filepath.Base(path), contentTypeOf(path), f)
	if err != nil {
		return "", fmt.Errorf("upload screenshot: %w", err)
	}
	if err := p.ws.ShareWithAnyone(ctx, id); err != nil {
		return "", fmt.Errorf("share screenshot: %w", err)
	}
	return gworkspace.PublicFileURL(id), nil
}

// bucketPublisher stores screenshots in a public GCS bucket instead.
type bucketPublisher struct {
	bucket gcp.ImageBucket
}

func NewBucketPublisher(bucket gcp.ImageBucket) docfill.ImagePublisher {
	return &bucketPublisher{bucket: bucket}
}

func (p *bucketPublisher) Publish(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key, err := p.bucket.Upload(ctx, filepath.Base(path), contentTypeOf(path), f)
	if err != nil {
		return "", fmt.Errorf("upload screenshot: %w", err)
	}
	return p.bucket.PublicURL(key), nil
}
