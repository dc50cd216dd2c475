package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spendwise/api/internal/apperr"
)

// Envelope is the uniform response body: the HTTP status carries the primary
// signal, success mirrors it for clients that only read the body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorData carries the machine-readable error code so clients can branch
// (e.g. route to the verification flow on NOT_VERIFIED) without matching
// message strings.
type ErrorData struct {
	Code apperr.Code `json:"code"`
}

func Respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}

// RespondAppError maps a service error to status, safe message and code.
// Internal causes are logged, never sent to the client.
func RespondAppError(c *gin.Context, err error) {
	status := apperr.StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, Envelope{
		Success: false,
		Message: apperr.MessageOf(err),
		Data:    ErrorData{Code: apperr.CodeOf(err)},
	})
}
