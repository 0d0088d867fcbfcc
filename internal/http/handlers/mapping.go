package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/chargeback-backend/internal/http/response"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/services"
)

type MappingHandler struct {
	mappings services.MappingService
}

func NewMappingHandler(mappings services.MappingService) *MappingHandler {
	return &MappingHandler{mappings: mappings}
}

// GET /api/settings/mappings
func (mh *MappingHandler) List(c *gin.Context) {
	rows, err := mh.mappings.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mappings": rows})
}

// PATCH /api/settings/mappings/:id
// body: { "woo_field": "woo_order_get_total" | null }
func (mh *MappingHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondErr(c, apierr.NotFound("Mapping"))
		return
	}
	var req struct {
		WooField *string `json:"woo_field"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Validation("invalid request body"))
		return
	}
	row, err := mh.mappings.Update(dbctx.Context{Ctx: c.Request.Context()}, id, req.WooField)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"mapping": row})
}

// DELETE /api/settings/mappings/:id
func (mh *MappingHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondOK(c, gin.H{"ok": true})
		return
	}
	if err := mh.mappings.Delete(dbctx.Context{Ctx: c.Request.Context()}, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/settings/mappings/sync
// body: { "placeholders": ["[Order Total]", ...] }
func (mh *MappingHandler) Sync(c *gin.Context) {
	var req struct {
		Placeholders []string `json:"placeholders"`
	}
	_ = c.ShouldBindJSON(&req)
	added, err := mh.mappings.Sync(dbctx.Context{Ctx: c.Request.Context()}, req.Placeholders)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"added": added})
}
