package gworkspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/envutil"
)

const docMimeType = "application/vnd.google-apps.document"

type Config struct {
	// TemplatesFolderID is the Drive folder listed for templates.
	TemplatesFolderID string
	// GeneratedFolderID receives filled copies; empty keeps Drive's default.
	GeneratedFolderID string
}

func ConfigFromEnv() Config {
	return Config{
		TemplatesFolderID: envutil.String("GOOGLE_TEMPLATES_FOLDER_ID", ""),
		GeneratedFolderID: envutil.String("GOOGLE_GENERATED_FOLDER_ID", ""),
	}
}

type Template struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

// Workspace wraps the Docs and Drive services for one credential.
type Workspace struct {
	cfg   Config
	docs  *docs.Service
	drive *drive.Service
}

func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Workspace, error) {
	docsSvc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("docs client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return &Workspace{cfg: cfg, docs: docsSvc, drive: driveSvc}, nil
}

// NewWithTokenSource is New for production: every request is authorized by ts.
func NewWithTokenSource(ctx context.Context, cfg Config, ts oauth2.TokenSource) (*Workspace, error) {
	return New(ctx, cfg, option.WithTokenSource(ts))
}

func (w *Workspace) Copy(ctx context.Context, templateID, title string) (string, error) {
	f := &drive.File{Name: title}
	if w.cfg.GeneratedFolderID != "" {
		f.Parents = []string{w.cfg.GeneratedFolderID}
	}
	out, err := w.drive.Files.Copy(templateID, f).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", wrap("drive", err)
	}
	return out.Id, nil
}

func (w *Workspace) Get(ctx context.Context, documentID string) (*docs.Document, error) {
	doc, err := w.docs.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return nil, wrap("docs", err)
	}
	return doc, nil
}

func (w *Workspace) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error {
	if len(requests) == 0 {
		return nil
	}
	_, err := w.docs.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return wrap("docs", err)
	}
	return nil
}

// ListTemplates returns the non-trashed Docs in the templates folder by name.
func (w *Workspace) ListTemplates(ctx context.Context) ([]Template, error) {
	if w.cfg.TemplatesFolderID == "" {
		return nil, apierr.Validation("GOOGLE_TEMPLATES_FOLDER_ID is not configured")
	}
	q := fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false",
		strings.ReplaceAll(w.cfg.TemplatesFolderID, "'", `\'`), docMimeType)

	out := []Template{}
	err := w.drive.Files.List().
		Q(q).
		Fields("nextPageToken, files(id, name, modifiedTime)").
		OrderBy("name").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				out = append(out, Template{ID: f.Id, Name: f.Name, ModifiedTime: f.ModifiedTime})
			}
			return nil
		})
	if err != nil {
		return nil, wrap("drive", err)
	}
	return out, nil
}

// UploadFile stores r as a new Drive file and returns its id.
func (w *Workspace) UploadFile(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	out, err := w.drive.Files.Create(&drive.File{Name: name, MimeType: contentType}).
		Media(r, googleapi.ContentType(contentType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrap("drive", err)
	}
	return out.Id, nil
}

// ShareWithAnyone grants anyone-with-the-link read access, which the Docs
// image fetcher needs.
func (w *Workspace) ShareWithAnyone(ctx context.Context, fileID string) error {
	_, err := w.drive.Permissions.Create(fileID, &drive.Permission{Type: "anyone", Role: "reader"}).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return wrap("drive", err)
	}
	return nil
}

func PublicFileURL(fileID string) string {
	return "https://drive.google.com/uc?id=" + fileID
}

// wrap classifies a Google client error. A rejected refresh means the stored
// credential is unusable and the OAuth flow must be re-run.
func wrap(service string, err error) error {
	if err == nil {
		return nil
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return apierr.NotConnected(fmt.Errorf("google credential rejected: %w", err))
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return apierr.Remote(service, gerr.Code, gerr.Message, err)
	}
	return apierr.Remote(service, 0, "", err)
}
