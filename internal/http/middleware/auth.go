package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/chargeback-backend/internal/http/response"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
	"github.com/yungbote/chargeback-backend/internal/services"
)

// SessionCookie carries the session JWT for browser clients.
const SessionCookie = "token"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd, err := am.authService.ParseToken(extractToken(c))
		if err != nil {
			response.RespondErr(c, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil {
			response.RespondErr(c, apierr.Unauthorized("Not authenticated"))
			c.Abort()
			return
		}
		if !rd.IsAdmin() {
			response.RespondErr(c, apierr.Forbidden("Admin only"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken prefers the session cookie, then a Bearer header.
func extractToken(c *gin.Context) string {
	if tok, err := c.Cookie(SessionCookie); err == nil && tok != "" {
		return tok
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
