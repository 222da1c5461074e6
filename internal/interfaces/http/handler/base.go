package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storebridge/backend/internal/domain/integration"
	"github.com/storebridge/backend/internal/infrastructure/dolibarr"
	"github.com/storebridge/backend/internal/interfaces/http/dto"
	"github.com/storebridge/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps sync errors to HTTP responses.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *dolibarr.APIError
	switch {
	case errors.Is(err, integration.ErrNotConfigured):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeNotConfigured), dto.ErrCodeNotConfigured, err.Error())
	case errors.Is(err, integration.ErrRemoteUnavailable):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeRemoteUnavailable), dto.ErrCodeRemoteUnavailable, err.Error())
	case errors.Is(err, integration.ErrRemoteNotFound),
		errors.Is(err, integration.ErrLocalNotFound),
		errors.Is(err, integration.ErrCrossReferenceNotFound),
		errors.Is(err, integration.ErrHistoryNotFound):
		h.NotFound(c, err.Error())
	case errors.As(err, &apiErr):
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeRemoteRejected), dto.ErrCodeRemoteRejected, apiErr.Message)
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
