package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
	types "github.com/yungbote/chargeback-backend/internal/domain"
)

type stubAuth struct {
	tokens map[string]*ctxutil.RequestData
}

func (s stubAuth) Login(context.Context, string, string) (string, *types.User, error) {
	return "", nil, apierr.Unauthorized("Invalid credentials")
}

func (s stubAuth) ParseToken(tok string) (*ctxutil.RequestData, error) {
	if tok == "" {
		return nil, apierr.Unauthorized("Not authenticated")
	}
	if rd, ok := s.tokens[tok]; ok {
		return rd, nil
	}
	return nil, apierr.Unauthorized("Invalid token")
}

func (stubAuth) SessionTTL() time.Duration { return time.Hour }

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), stubAuth{tokens: map[string]*ctxutil.RequestData{
		"staff": {UserID: uuid.New(), Role: "user"},
		"boss":  {UserID: uuid.New(), Role: "admin"},
	}})
	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.Role)
	})
	r.DELETE("/admin", am.RequireAuth(), am.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthReadsCookieAndBearer(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "staff"})
	if rec := serve(r, req); rec.Code != http.StatusOK || rec.Body.String() != "user" {
		t.Fatalf("cookie: code=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer boss")
	if rec := serve(r, req); rec.Code != http.StatusOK || rec.Body.String() != "admin" {
		t.Fatalf("bearer: code=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	if rec := serve(r, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: code=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer forged")
	if rec := serve(r, req); rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged: code=%d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodDelete, "/admin", nil)
	req.Header.Set("Authorization", "Bearer staff")
	if rec := serve(r, req); rec.Code != http.StatusForbidden {
		t.Fatalf("staff: code=%d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/admin", nil)
	req.Header.Set("Authorization", "Bearer boss")
	if rec := serve(r, req); rec.Code != http.StatusNoContent {
		t.Fatalf("admin: code=%d", rec.Code)
	}
}

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(logger.Nop()))
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		if td == nil || td.RequestID != "req-1" || td.TraceID == "" {
			t.Errorf("trace data not attached: %#v", td)
		}
		_ = c.Error(errors.New("logged"))
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec := serve(r, req)
	if rec.Header().Get(headerRequestID) != "req-1" || rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("headers not echoed: %v", rec.Header())
	}
}
