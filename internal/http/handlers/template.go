package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/chargeback-backend/internal/http/response"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/services"
)

type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// GET /api/templates
func (th *TemplateHandler) List(c *gin.Context) {
	list, err := th.templates.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": list})
}

// POST /api/templates/refresh
func (th *TemplateHandler) Refresh(c *gin.Context) {
	if err := th.templates.Invalidate(c.Request.Context()); err != nil {
		response.RespondErr(c, err)
		return
	}
	th.List(c)
}

// GET /api/templates/:id/placeholders
func (th *TemplateHandler) Placeholders(c *gin.Context) {
	tokens, err := th.templates.Placeholders(c.Request.Context(), c.Param("id"))
	if err != nil {
		if status, _ := apierr.Status(err); status == http.StatusConflict {
			response.RespondErr(c, err)
			return
		}
		_ = c.Error(err)
		response.RespondError(c, http.StatusInternalServerError, apierr.CodeRemote, errors.New("Failed to read template placeholders"))
		return
	}
	response.RespondOK(c, gin.H{"placeholders": tokens})
}
