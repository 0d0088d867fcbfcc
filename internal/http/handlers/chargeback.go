package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/chargeback-backend/internal/http/response"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/services"
)

// screenshotFieldPrefix marks multipart file parts; the rest of the field
// name is the screenshot token the image replaces.
const screenshotFieldPrefix = "screenshot:"

type ChargebackHandler struct {
	chargebacks services.ChargebackService
	screenshots services.ScreenshotStore
}

func NewChargebackHandler(chargebacks services.ChargebackService, screenshots services.ScreenshotStore) *ChargebackHandler {
	return &ChargebackHandler{chargebacks: chargebacks, screenshots: screenshots}
}

// GET /api/chargebacks
func (ch *ChargebackHandler) List(c *gin.Context) {
	rows, err := ch.chargebacks.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"chargebacks": rows})
}

// GET /api/chargebacks/:id
func (ch *ChargebackHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondErr(c, apierr.NotFound("Chargeback"))
		return
	}
	row, err := ch.chargebacks.Get(dbctx.Context{Ctx: c.Request.Context()}, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"chargeback": row})
}

// POST /api/chargebacks
// JSON body: { templateId, templateName, orderId, title, placeholders }
// or multipart with the same fields (placeholders as a JSON string) plus
// "screenshot:<token>" image parts.
func (ch *ChargebackHandler) Create(c *gin.Context) {
	var (
		in  services.CreateChargebackInput
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in, err = ch.readMultipart(c)
	} else if bindErr := c.ShouldBindJSON(&in); bindErr != nil {
		err = apierr.Validation("invalid request body")
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}

	row, err := ch.chargebacks.Create(dbctx.Context{Ctx: c.Request.Context()}, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"chargeback": row})
}

// readMultipart streams each screenshot part into the store. Saved files
// are removed here when the request is rejected; otherwise Create owns them.
func (ch *ChargebackHandler) readMultipart(c *gin.Context) (services.CreateChargebackInput, error) {
	in := services.CreateChargebackInput{Screenshots: map[string]string{}}
	mr, err := c.Request.MultipartReader()
	if err != nil {
		return in, apierr.Validation("invalid multipart body")
	}

	fail := func(err error) (services.CreateChargebackInput, error) {
		for _, p := range in.Screenshots {
			ch.screenshots.Remove(p)
		}
		return services.CreateChargebackInput{}, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(apierr.Validation("invalid multipart body"))
		}
		if err := ch.readPart(part, &in); err != nil {
			_ = part.Close()
			return fail(err)
		}
		_ = part.Close()
	}
	return in, nil
}

func (ch *ChargebackHandler) readPart(part *multipart.Part, in *services.CreateChargebackInput) error {
	name := part.FormName()
	if part.FileName() != "" {
		token, ok := strings.CutPrefix(name, screenshotFieldPrefix)
		if !ok || token == "" {
			return nil
		}
		path, err := ch.screenshots.Save(part)
		if err != nil {
			return err
		}
		if prev, ok := in.Screenshots[token]; ok {
			ch.screenshots.Remove(prev)
		}
		in.Screenshots[token] = path
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(part, 1<<20))
	if err != nil {
		return apierr.Validation("invalid multipart body")
	}
	value := string(raw)
	switch name {
	case "templateId":
		in.TemplateID = value
	case "templateName":
		in.TemplateName = value
	case "orderId":
		in.OrderID = value
	case "title":
		in.Title = value
	case "placeholders":
		if strings.TrimSpace(value) == "" {
			return nil
		}
		if err := json.Unmarshal(raw, &in.Placeholders); err != nil {
			return apierr.Validation("placeholders must be a JSON object")
		}
	}
	return nil
}

// DELETE /api/chargebacks/:id
func (ch *ChargebackHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondErr(c, apierr.NotFound("Chargeback"))
		return
	}
	if err := ch.chargebacks.Delete(dbctx.Context{Ctx: c.Request.Context()}, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
