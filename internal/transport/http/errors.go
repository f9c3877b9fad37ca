package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"skillnest/internal/domain"
)

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with a stable message. Internal failures are
// attached to the gin context for the request logger and never leak.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, errorResponse{Message: "Internal server error"})
		return
	}
	resp := errorResponse{Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Message = "Invalid request"
		resp.Errors = verr.Fields
	}
	c.AbortWithStatusJSON(status, resp)
}

// bindJSON decodes the body into dst and runs tag validation.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, domain.NewValidationError("body", "must be valid JSON: "+err.Error()))
		return false
	}
	if err := domain.ValidateStruct(dst); err != nil {
		writeError(c, err)
		return false
	}
	return true
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, domain.NewValidationError(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter, returning def when absent.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(c, domain.NewValidationError(name, "must be an integer"))
		return 0, false
	}
	return v, true
}
