package gworkspace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"slices"
	"strings"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
)

func newTestWorkspace(t *testing.T, cfg Config, h http.HandlerFunc) *Workspace {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	ctx := context.Background()

	docsSvc, err := docs.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/docs/"))
	if err != nil {
		t.Fatalf("docs.NewService: %v", err)
	}
	ws, err := New(ctx, cfg, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/drive/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ws.docs = docsSvc
	return ws
}

func TestCopyUsesGeneratedFolder(t *testing.T) {
	ws := newTestWorkspace(t, Config{GeneratedFolderID: "generated"}, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/drive/files/tmpl-1/copy" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("supportsAllDrives") != "true" {
			t.Errorf("supportsAllDrives not set: %q", r.URL.RawQuery)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "Chargeback #1001" || !reflect.DeepEqual(body["parents"], []any{"generated"}) {
			t.Errorf("unexpected copy body %#v", body)
		}
		_, _ = io.WriteString(w, `{"id":"doc-9"}`)
	})

	id, err := ws.Copy(context.Background(), "tmpl-1", "Chargeback #1001")
	if err != nil || id != "doc-9" {
		t.Fatalf("Copy: id=%q err=%v", id, err)
	}
}

func TestListTemplatesFiltersFolder(t *testing.T) {
	ws := newTestWorkspace(t, Config{TemplatesFolderID: "folder-1"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drive/files" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if !strings.Contains(q.Get("q"), "'folder-1' in parents") || !strings.Contains(q.Get("q"), "trashed=false") {
			t.Errorf("unexpected query %q", q.Get("q"))
		}
		if q.Get("orderBy") != "name" {
			t.Errorf("unexpected orderBy %q", q.Get("orderBy"))
		}
		_, _ = io.WriteString(w, `{"files":[{"id":"a","name":"Alpha","modifiedTime":"2026-01-01T00:00:00Z"},{"id":"b","name":"Beta"}]}`)
	})

	got, err := ws.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	want := []Template{
		{ID: "a", Name: "Alpha", ModifiedTime: "2026-01-01T00:00:00Z"},
		{ID: "b", Name: "Beta"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got=%+v want=%+v", got, want)
	}
}

func TestListTemplatesRequiresFolder(t *testing.T) {
	ws := newTestWorkspace(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be called")
	})
	_, err := ws.ListTemplates(context.Background())
	if status, _ := apierr.Status(err); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", status, err)
	}
}

func TestBatchUpdateAndGet(t *testing.T) {
	var batched int
	ws := newTestWorkspace(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/docs/v1/documents/doc-1:batchUpdate"):
			batched++
			var body docs.BatchUpdateDocumentRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			if len(body.Requests) != 1 {
				t.Errorf("expected 1 request, got %d", len(body.Requests))
			}
			_, _ = io.WriteString(w, `{"documentId":"doc-1"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/docs/v1/documents/doc-1":
			_, _ = io.WriteString(w, `{"documentId":"doc-1","body":{"content":[{"paragraph":{"elements":[{"textRun":{"content":"[Order Total]\n"}}]}}]}}`)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	if err := ws.BatchUpdate(ctx, "doc-1", nil); err != nil {
		t.Fatalf("empty BatchUpdate: %v", err)
	}
	if batched != 0 {
		t.Fatal("empty batches must not be sent")
	}

	err := ws.BatchUpdate(ctx, "doc-1", []*docs.Request{{
		ReplaceAllText: &docs.ReplaceAllTextRequest{ContainsText: &docs.SubstringMatchCriteria{Text: "[x]"}, ReplaceText: "y"},
	}})
	if err != nil || batched != 1 {
		t.Fatalf("BatchUpdate: batched=%d err=%v", batched, err)
	}

	doc, err := ws.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(doc.Body.Content) != 1 || doc.Body.Content[0].Paragraph.Elements[0].TextRun.Content != "[Order Total]\n" {
		t.Fatalf("unexpected body %+v", doc.Body.Content)
	}
}

func TestGoogleErrorsBecomeRemoteErrors(t *testing.T) {
	ws := newTestWorkspace(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission"}}`)
	})

	_, err := ws.Get(context.Background(), "doc-1")
	var re *apierr.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %T (%v)", err, err)
	}
	if re.Service != "docs" || re.Status != http.StatusForbidden {
		t.Fatalf("unexpected remote error %+v", re)
	}
	if status, code := apierr.Status(err); status != http.StatusBadGateway || code != apierr.CodeRemote {
		t.Fatalf("got=(%d,%s)", status, code)
	}
}

func TestWrapRejectedRefreshIsNotConnected(t *testing.T) {
	err := wrap("drive", &oauth2.RetrieveError{ErrorCode: "invalid_grant"})
	if status, code := apierr.Status(err); status != http.StatusConflict || code != apierr.CodeNotConnected {
		t.Fatalf("got=(%d,%s)", status, code)
	}
}

func TestOAuthConfig(t *testing.T) {
	cfg := OAuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "https://app.example/cb"}
	if !cfg.Configured() || (OAuthConfig{ClientID: "id"}).Configured() {
		t.Fatal("Configured mismatch")
	}
	oc := cfg.OAuth2()
	if !slices.Equal(oc.Scopes, Scopes) {
		t.Fatalf("scopes: %v", oc.Scopes)
	}
	url := oc.AuthCodeURL("state", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	if !strings.Contains(url, "access_type=offline") || !strings.Contains(url, "prompt=consent") {
		t.Fatalf("auth url missing offline consent: %s", url)
	}
}
