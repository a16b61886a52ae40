package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/domain"
	"github.com/RonaldAllanRivera/ride-info/internal/logger"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/repository"
	"github.com/RonaldAllanRivera/ride-info/internal/service"
)

// Error codes carried in ErrorResponse.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal_error"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the payload of an ErrorResponse.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// RespondError sends an error response with the appropriate HTTP status code.
// Unexpected errors are logged and answered with a generic message.
func RespondError(c *gin.Context, err error) {
	status, body := mapError(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: body})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapError maps service/repository errors to an HTTP status and body.
func mapError(err error) (int, ErrorBody) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: "Invalid input.", Details: verr.Fields}

	case errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, ErrorBody{Code: CodeUnauthorized, Message: "Token has expired."}
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorBody{Code: CodeUnauthorized, Message: "Given token is not valid."}
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorBody{Code: CodeUnauthorized, Message: "Authentication credentials were not provided."}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorBody{Code: CodeUnauthorized, Message: "Invalid email or password."}
	case errors.Is(err, service.ErrAdminRequired):
		return http.StatusUnauthorized, ErrorBody{Code: CodeUnauthorized, Message: "Admin access required."}

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, ErrorBody{Code: CodeForbidden, Message: "You do not have permission to perform this action."}

	case errors.Is(err, pagination.ErrInvalidPage):
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "Invalid page."}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: "Not found."}

	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrorBody{Code: CodeConflict, Message: "Cannot delete this record because other records reference it."}

	default:
		return http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: "Internal server error."}
	}
}

// parseID reads the :id path parameter. Anything other than a positive
// integer cannot name a record, so it is reported as not found.
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, repository.ErrNotFound
	}
	return id, nil
}

// requestURL returns the absolute URL of the current request.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := *c.Request.URL
	u.Scheme = scheme
	u.Host = c.Request.Host
	return &u
}
