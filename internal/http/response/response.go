package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/ctxutil"
)

// ErrorEnvelope keeps "error" a plain message string; the frontend renders
// it as-is. Code and request id ride alongside.
type ErrorEnvelope struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error:     msg,
		Code:      code,
		RequestID: ctxutil.RequestID(c.Request.Context()),
	})
}

// RespondErr derives status and code from err. Unclassified errors are
// reported as a generic 500 so internals never reach the client; the full
// error is attached to the gin context for the request logger.
func RespondErr(c *gin.Context, err error) {
	status, code := apierr.Status(err)
	if code == apierr.CodeInternal {
		_ = c.Error(err)
		RespondError(c, status, code, errors.New("internal server error"))
		return
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, status, code, err)
}

// RespondUpstream is RespondErr for proxy-style routes: a remote answer
// keeps the upstream status and body.
func RespondUpstream(c *gin.Context, err error) {
	var re *apierr.RemoteError
	if errors.As(err, &re) && re.Status >= 400 && re.Status < 600 {
		_ = c.Error(err)
		msg := re.Body
		if msg == "" {
			msg = "Order not found"
		}
		RespondError(c, re.Status, apierr.CodeRemote, errors.New(msg))
		return
	}
	RespondErr(c, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
