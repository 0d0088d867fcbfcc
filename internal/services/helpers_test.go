package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/api/docs/v1"
	"gorm.io/gorm"

	"github.com/yungbote/chargeback-backend/internal/data/repos/testutil"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/gworkspace"
)

func testDBC(tb testing.TB) (dbctx.Context, *gorm.DB) {
	tb.Helper()
	tx := testutil.Tx(tb, testutil.DB(tb))
	return dbctx.Context{Ctx: context.Background(), Tx: tx}, tx
}

func asUser(dbc dbctx.Context, id uuid.UUID, role string) dbctx.Context {
	dbc.Ctx = ctxutil.WithRequestData(dbc.Ctx, &ctxutil.RequestData{UserID: id, Email: "staff@example.com", Role: role})
	return dbc
}

// fakeWorkspace is an in-memory Docs/Drive double. Documents are plain text
// bodies of a single paragraph run.
type fakeWorkspace struct {
	mu        sync.Mutex
	templates []gworkspace.Template
	bodies    map[string]string
	batches   map[string][][]*docs.Request
	uploads   []string
	shared    []string
	listCalls int

	// listCtxErr is ctx.Err() as seen by the last ListTemplates call.
	listCtxErr error

	copyErr  error
	batchErr error
	listErr  error
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{bodies: map[string]string{}, batches: map[string][][]*docs.Request{}}
}

func (w *fakeWorkspace) Copy(_ context.Context, templateID, title string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.copyErr != nil {
		return "", w.copyErr
	}
	body, ok := w.bodies[templateID]
	if !ok {
		return "", fmt.Errorf("template %s missing", templateID)
	}
	id := fmt.Sprintf("copy-%d", len(w.bodies))
	w.bodies[id] = body
	return id, nil
}

func (w *fakeWorkspace) Get(_ context.Context, id string) (*docs.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	body, ok := w.bodies[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	return &docs.Document{DocumentId: id, Body: &docs.Body{Content: []*docs.StructuralElement{{
		Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: body}}}},
	}}}}, nil
}

func (w *fakeWorkspace) BatchUpdate(_ context.Context, id string, requests []*docs.Request) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.batchErr != nil {
		return w.batchErr
	}
	w.batches[id] = append(w.batches[id], requests)
	return nil
}

func (w *fakeWorkspace) ListTemplates(ctx context.Context) ([]gworkspace.Template, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listCalls++
	w.listCtxErr = ctx.Err()
	if w.listErr != nil {
		return nil, w.listErr
	}
	return append([]gworkspace.Template(nil), w.templates...), nil
}

func (w *fakeWorkspace) UploadFile(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.uploads = append(w.uploads, name)
	return fmt.Sprintf("file-%d", len(w.uploads)), nil
}

func (w *fakeWorkspace) ShareWithAnyone(_ context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shared = append(w.shared, id)
	return nil
}

type fakeFactory struct {
	ws  *fakeWorkspace
	err error
}

func (f *fakeFactory) Open(context.Context) (Workspace, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ws, nil
}
