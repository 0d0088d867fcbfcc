package services

import (
	"context"
	"fmt"
	"io"

	"github.com/yungbote/chargeback-backend/internal/modules/docfill"
	"github.com/yungbote/chargeback-backend/internal/platform/gworkspace"
)

// Workspace is the Docs/Drive surface the services use, bound to the
// connected Google account.
type Workspace interface {
	docfill.Documents
	ListTemplates(ctx context.Context) ([]gworkspace.Template, error)
	UploadFile(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	ShareWithAnyone(ctx context.Context, fileID string) error
}

// WorkspaceFactory opens a Workspace for the current credential. Clients are
// built per call so a reconnect takes effect without a restart.
type WorkspaceFactory interface {
	Open(ctx context.Context) (Workspace, error)
}

type workspaceFactory struct {
	conn GoogleConnectionService
	cfg  gworkspace.Config
}

func NewWorkspaceFactory(conn GoogleConnectionService, cfg gworkspace.Config) WorkspaceFactory {
	return &workspaceFactory{conn: conn, cfg: cfg}
}

func (f *workspaceFactory) Open(ctx context.Context) (Workspace, error) {
	ts, err := f.conn.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	ws, err := gworkspace.NewWithTokenSource(ctx, f.cfg, ts)
	if err != nil {
		return nil, fmt.Errorf("open google workspace: %w", err)
	}
	return ws, nil
}
