package handlers

import (
	"encoding/json"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/chargeback-backend/internal/http/response"
	"github.com/yungbote/chargeback-backend/internal/services"
)

type OrderHandler struct {
	orders services.OrderService
}

func NewOrderHandler(orders services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GET /api/woocommerce/order/:id
func (oh *OrderHandler) Raw(c *gin.Context) {
	order, err := oh.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondUpstream(c, err)
		return
	}
	response.RespondOK(c, order)
}

// GET /api/woocommerce/order/:id/mapped?placeholders=<url-encoded JSON array>
func (oh *OrderHandler) MappedQuery(c *gin.Context) {
	oh.mapped(c, parsePlaceholderQuery(c.Query("placeholders")))
}

// POST /api/woocommerce/order/:id/mapped
// body: { "placeholders": [...] }
func (oh *OrderHandler) MappedBody(c *gin.Context) {
	var req struct {
		Placeholders []string `json:"placeholders"`
	}
	_ = c.ShouldBindJSON(&req)
	oh.mapped(c, req.Placeholders)
}

func (oh *OrderHandler) mapped(c *gin.Context, placeholders []string) {
	resolved, err := oh.orders.ResolveOrder(c.Request.Context(), c.Param("id"), placeholders)
	if err != nil {
		response.RespondUpstream(c, err)
		return
	}
	response.RespondOK(c, resolved)
}

// parsePlaceholderQuery tolerates a doubly encoded value; anything that is
// not a JSON string array means "all mapped placeholders".
func parsePlaceholderQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
