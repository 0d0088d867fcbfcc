package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httpH "github.com/yungbote/chargeback-backend/internal/http/handlers"
	httpMW "github.com/yungbote/chargeback-backend/internal/http/middleware"
	"github.com/yungbote/chargeback-backend/internal/observability"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
	"github.com/yungbote/chargeback-backend/internal/services"
)

type tokenAuth struct {
	services.AuthService
}

func (tokenAuth) ParseToken(tok string) (*ctxutil.RequestData, error) {
	switch tok {
	case "user":
		return &ctxutil.RequestData{UserID: uuid.New(), Role: "user"}, nil
	case "admin":
		return &ctxutil.RequestData{UserID: uuid.New(), Role: "admin"}, nil
	case "":
		return nil, apierr.Unauthorized("Not authenticated")
	default:
		return nil, apierr.Unauthorized("Invalid token")
	}
}

func (tokenAuth) SessionTTL() time.Duration { return time.Hour }

func TestRouterGuards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("METRICS_ENABLED", "true")
	log := logger.Nop()
	r := NewRouter(RouterConfig{
		Log:            log,
		Metrics:        observability.Init(log),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, tokenAuth{}),
		HealthHandler:  httpH.NewHealthHandler("test"),
		UserHandler:    httpH.NewUserHandler(nil),
	})

	cases := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/version", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/users", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/users", "bogus", http.StatusUnauthorized},
		{http.MethodGet, "/api/users", "user", http.StatusForbidden},
		{http.MethodDelete, "/api/users/" + uuid.NewString(), "user", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s (%q): got=%d want=%d body=%s", tc.method, tc.path, tc.token, rec.Code, tc.want, rec.Body.String())
		}
	}
}
