package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syncbridge/backend/internal/domain/rules"
	"github.com/syncbridge/backend/internal/domain/shared"
	syncdomain "github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDKey); id != "" {
		return id
	}
	return ""
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Accepted sends a 202 accepted response for queued jobs
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	statusCode := dto.GetHTTPStatus(code)
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, code, message string) {
	h.Error(c, http.StatusConflict, code, message)
}

// UnprocessableEntity sends a 422 unprocessable entity response
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// TooManyRequests sends a 429 too many requests response
func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	requestID := getRequestID(c)
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	))
}

// sentinelErrorCodes maps domain sentinel errors to API error codes.
var sentinelErrorCodes = []struct {
	err  error
	code string
}{
	{syncdomain.ErrJobNotFound, dto.ErrCodeNotFound},
	{syncdomain.ErrCursorNotFound, dto.ErrCodeNotFound},
	{syncdomain.ErrMappingNotFound, dto.ErrCodeNotFound},
	{syncdomain.ErrLocationNotFound, dto.ErrCodeNotFound},
	{rules.ErrRuleNotFound, dto.ErrCodeNotFound},
	{syncdomain.ErrPullAlreadyRunning, dto.ErrCodePullAlreadyRunning},
	{syncdomain.ErrCursorCollision, dto.ErrCodeCursorConflict},
	{syncdomain.ErrMappingAlreadyLinked, dto.ErrCodeAlreadyLinked},
	{syncdomain.ErrMappingNotLinked, dto.ErrCodeNotLinked},
	{syncdomain.ErrJobTerminal, dto.ErrCodeInvalidState},
	{syncdomain.ErrJobNotRunning, dto.ErrCodeInvalidState},
	{syncdomain.ErrJobInvalidKind, dto.ErrCodeInvalidInput},
	{syncdomain.ErrJobInvalidTotal, dto.ErrCodeInvalidInput},
	{syncdomain.ErrMappingInvalidKind, dto.ErrCodeInvalidInput},
	{syncdomain.ErrMappingInvalidSource, dto.ErrCodeInvalidInput},
	{syncdomain.ErrLocationInvalid, dto.ErrCodeInvalidInput},
	{syncdomain.ErrCursorInvalid, dto.ErrCodeInvalidInput},
	{rules.ErrRuleInvalidName, dto.ErrCodeInvalidInput},
	{rules.ErrRuleInvalidKind, dto.ErrCodeInvalidInput},
	{rules.ErrRuleInvalidOperator, dto.ErrCodeInvalidInput},
	{rules.ErrRuleInvalidAction, dto.ErrCodeInvalidInput},
	{rules.ErrRuleInvalidField, dto.ErrCodeInvalidInput},
	{syncdomain.ErrTargetRateLimited, dto.ErrCodeRateLimited},
	{syncdomain.ErrTargetUnavailable, dto.ErrCodeUpstreamUnavailable},
	{syncdomain.ErrSourceUnavailable, dto.ErrCodeUpstreamUnavailable},
}

// HandleError converts domain errors to HTTP responses. Sentinel errors get
// their mapped code; *shared.DomainError carries its own code; anything else
// is an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	for _, m := range sentinelErrorCodes {
		if errors.Is(err, m.err) {
			statusCode := dto.GetHTTPStatus(m.code)
			c.JSON(statusCode, dto.NewErrorResponseWithRequestID(m.code, err.Error(), requestID))
			return
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		statusCode := dto.GetHTTPStatus(code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
