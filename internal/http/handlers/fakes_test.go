package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/gworkspace"
	"github.com/yungbote/chargeback-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

func do(r http.Handler, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// withUser stands in for the auth middleware.
func withUser(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{UserID: uuid.New(), Role: role}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

func requireContains(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("body %q does not contain %q", rec.Body.String(), want)
	}
}

type fakeAuth struct {
	user  *types.User
	token string
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (string, *types.User, error) {
	if f.user == nil || email != f.user.Email || password != "secret" {
		return "", nil, apierr.Unauthorized("Invalid credentials")
	}
	return f.token, f.user, nil
}

func (f *fakeAuth) ParseToken(string) (*ctxutil.RequestData, error) {
	return nil, apierr.Unauthorized("Invalid token")
}

func (f *fakeAuth) SessionTTL() time.Duration { return 7 * 24 * time.Hour }

type fakeUsers struct {
	me      *types.User
	created []services.CreateUserInput
}

func (f *fakeUsers) GetMe(dbctx.Context) (*types.User, error) {
	if f.me == nil {
		return nil, apierr.NotFound("User")
	}
	return f.me, nil
}

func (f *fakeUsers) List(dbctx.Context) ([]*types.User, error) { return []*types.User{f.me}, nil }

func (f *fakeUsers) Create(_ dbctx.Context, in services.CreateUserInput) (*types.User, error) {
	f.created = append(f.created, in)
	return &types.User{ID: uuid.New(), Email: in.Email, DisplayName: in.DisplayName, Role: types.RoleUser}, nil
}

func (f *fakeUsers) Delete(dbctx.Context, uuid.UUID) error { return nil }

func (f *fakeUsers) ChangePassword(_ dbctx.Context, password string) error {
	if len(password) < 6 {
		return apierr.Validation("Password must be at least 6 characters")
	}
	return nil
}

func (f *fakeUsers) EnsureAdmin(context.Context, string, string, string) (bool, error) {
	return false, nil
}

type fakeGoogle struct {
	connected bool
	codes     []string
	err       error
}

func (f *fakeGoogle) AuthURL(context.Context) (string, error) {
	return "https://accounts.example.test/auth?state=x", nil
}

func (f *fakeGoogle) HandleCallback(_ context.Context, code, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeGoogle) Connected(context.Context) (bool, error) { return f.connected, nil }

func (f *fakeGoogle) TokenSource(context.Context) (oauth2.TokenSource, error) {
	return nil, apierr.NotConnected(nil)
}

type fakeTemplates struct {
	list         []gworkspace.Template
	placeholders []string
	err          error
	invalidated  int
}

func (f *fakeTemplates) List(context.Context) ([]gworkspace.Template, error) { return f.list, f.err }

func (f *fakeTemplates) Placeholders(context.Context, string) ([]string, error) {
	return f.placeholders, f.err
}

func (f *fakeTemplates) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

type fakeMappings struct {
	synced [][]string
	field  *string
}

func (f *fakeMappings) List(dbctx.Context) ([]*types.PlaceholderMapping, error) {
	return []*types.PlaceholderMapping{}, nil
}

func (f *fakeMappings) Update(_ dbctx.Context, id uuid.UUID, field *string) (*types.PlaceholderMapping, error) {
	f.field = field
	return &types.PlaceholderMapping{ID: id, Placeholder: "[Order Total]", WooField: field}, nil
}

func (f *fakeMappings) Delete(dbctx.Context, uuid.UUID) error { return nil }

func (f *fakeMappings) Sync(_ dbctx.Context, tokens []string) (int, error) {
	f.synced = append(f.synced, tokens)
	return len(tokens), nil
}

func (f *fakeMappings) AutoDetect(string) *string { return nil }

type fakeOrders struct {
	raw          map[string]any
	err          error
	placeholders []string
}

func (f *fakeOrders) GetOrder(context.Context, string) (map[string]any, error) { return f.raw, f.err }

func (f *fakeOrders) ResolveOrder(_ context.Context, _ string, placeholders []string) (*services.ResolvedOrder, error) {
	f.placeholders = placeholders
	if f.err != nil {
		return nil, f.err
	}
	return &services.ResolvedOrder{Raw: map[string]any{}, Mapped: map[string]string{}}, nil
}

type fakeChargebacks struct {
	inputs []services.CreateChargebackInput
	err    error
}

func (f *fakeChargebacks) List(dbctx.Context) ([]*types.Chargeback, error) {
	return []*types.Chargeback{}, nil
}

func (f *fakeChargebacks) Get(dbctx.Context, uuid.UUID) (*types.Chargeback, error) {
	return nil, apierr.NotFound("Chargeback")
}

func (f *fakeChargebacks) Create(_ dbctx.Context, in services.CreateChargebackInput) (*types.Chargeback, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &types.Chargeback{ID: uuid.New(), OrderID: in.OrderID, TemplateID: in.TemplateID}, nil
}

func (f *fakeChargebacks) Delete(dbctx.Context, uuid.UUID) error { return nil }

type memScreenshots struct {
	mu      sync.Mutex
	files   map[string][]byte
	removed []string
}

func newMemScreenshots() *memScreenshots {
	return &memScreenshots{files: map[string][]byte{}}
}

func (m *memScreenshots) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := "/uploads/" + uuid.NewString() + ".png"
	m.files[path] = data
	return path, nil
}

func (m *memScreenshots) Remove(paths ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.files, p)
		m.removed = append(m.removed, p)
	}
}
