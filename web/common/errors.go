package common

import (
	"errors"
	"net/http"

	"axiapac.com/personnel/core"
	"github.com/gin-gonic/gin"
)

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(kind core.Kind) int {
	switch kind {
	case core.KindAuthentication:
		return http.StatusUnauthorized
	case core.KindAuthorization:
		return http.StatusForbidden
	case core.KindNotFound, core.KindUnknownPersonnel:
		return http.StatusNotFound
	case core.KindExpiredToken:
		return http.StatusGone
	case core.KindConflict:
		return http.StatusConflict
	case core.KindValidation, core.KindInvalidToken:
		return http.StatusBadRequest
	case core.KindDownstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// WriteError aborts the request with the status and message of err. Untyped
// errors are reported as internal failures and never leak their text.
func WriteError(c *gin.Context, err error) {
	var typed *core.Error
	if !errors.As(err, &typed) {
		typed = core.Internal(err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(typed.Kind), &ErrorResponse{
		Message: typed.Message,
		Field:   typed.Field,
	})
}

// WriteBindingError reports a request body or query that failed to bind.
func WriteBindingError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse(FormatBindingError(err)))
}
