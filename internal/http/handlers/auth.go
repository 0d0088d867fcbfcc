package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/http/middleware"
	"github.com/yungbote/chargeback-backend/internal/http/response"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/services"
)

type AuthHandler struct {
	authService  services.AuthService
	userService  services.UserService
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, userService services.UserService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, secureCookie: secureCookie}
}

// sessionUser is the public shape of the signed-in account.
type sessionUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

func toSessionUser(u *types.User) sessionUser {
	return sessionUser{ID: u.ID.String(), Email: u.Email, DisplayName: u.DisplayName, Role: u.Role}
}

// POST /api/auth/login
// body: { "email": "...", "password": "..." }
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Validation("Email and password required"))
		return
	}
	token, user, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	ah.setSessionCookie(c, token, int(ah.authService.SessionTTL().Seconds()))
	response.RespondOK(c, gin.H{"user": toSessionUser(user)})
}

// POST /api/auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	ah.setSessionCookie(c, "", -1)
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/auth/me
func (ah *AuthHandler) Me(c *gin.Context) {
	u, err := ah.userService.GetMe(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		if apierr.IsNotFound(err) {
			err = apierr.Unauthorized("User not found")
		}
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": toSessionUser(u)})
}

func (ah *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ah.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
