package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/chargeback-backend/internal/http/response"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/services"
)

type OAuthHandler struct {
	google services.GoogleConnectionService
	// connectedURL is where the browser lands after a successful callback.
	connectedURL string
}

func NewOAuthHandler(google services.GoogleConnectionService, frontendURL string) *OAuthHandler {
	return &OAuthHandler{
		google:       google,
		connectedURL: strings.TrimRight(frontendURL, "/") + "/chargebacks?google=connected",
	}
}

// GET /api/oauth/google/start
func (oh *OAuthHandler) Start(c *gin.Context) {
	url, err := oh.google.AuthURL(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// GET /api/oauth/google/callback?code=...&state=...
func (oh *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.RespondErr(c, apierr.Validation("Missing code"))
		return
	}
	if err := oh.google.HandleCallback(c.Request.Context(), code, c.Query("state")); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Redirect(http.StatusFound, oh.connectedURL)
}

// GET /api/oauth/google/status
func (oh *OAuthHandler) Status(c *gin.Context) {
	connected, err := oh.google.Connected(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"connected": connected})
}
