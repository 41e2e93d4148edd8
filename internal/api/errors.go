package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"toksmith/internal/logging"
	"toksmith/internal/services"
)

// statusFor maps an error classification onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrUnresolvedSource):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrFetch), errors.Is(err, services.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	kind := services.Kind(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(c.Request.Context(), s.logger), "request error", "api_error",
			logging.String(logging.FieldErrorKind, kind),
			logging.String("path", c.Request.URL.Path),
			logging.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}

func badRequest(stage, message string, err error) error {
	return services.Wrap(services.ErrValidation, stage, "decode request", message, err)
}
