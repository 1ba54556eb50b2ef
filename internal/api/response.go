package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/service"
)

const msgSuccess = "Success"

// envelope is the body of every /messages and /users response.
type envelope struct {
	Success  bool   `json:"success"`
	Response any    `json:"response"`
	Message  string `json:"message"`
}

func respond(c *gin.Context, status int, payload any, message string) {
	c.JSON(status, envelope{Success: true, Response: payload, Message: message})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Response: nil, Message: message})
}

// writeError replies with the envelope for err. Server-side failures are
// logged; client errors are not.
func writeError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
	}
	fail(c, status, message)
}

// statusFor maps a service error to its HTTP status and client message.
// Unknown errors are treated as store failures and surface their text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest, "Invalid ID format"
	case errors.Is(err, service.ErrClientIDMissing):
		return http.StatusBadRequest, "Client ID missing"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid authentication token"
	case errors.Is(err, service.ErrAuthRequired):
		return http.StatusUnauthorized, "Authentication missing or invalid"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "Not allowed to delete this message"
	case errors.Is(err, service.ErrMessageNotFound):
		return http.StatusNotFound, "Message not found"
	case errors.Is(err, service.ErrAlreadyLiked):
		return http.StatusConflict, "Already liked this message"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "Email already registered"
	}
	return http.StatusInternalServerError, err.Error()
}
