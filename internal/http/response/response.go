package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError answers with the status and code carried by err. Errors
// without one become a 500 whose message does not leak internals.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.As(err)
	if ae.Status >= http.StatusInternalServerError && ae.Message == "" {
		_ = c.Error(err)
		c.JSON(ae.Status, ErrorEnvelope{Error: APIError{Message: "internal server error", Code: ae.Code}})
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
