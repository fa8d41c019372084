package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/invoiceflow/backend/internal/domain/shared"
	"github.com/invoiceflow/backend/internal/infrastructure/logger"
	"github.com/invoiceflow/backend/internal/interfaces/http/dto"
	"github.com/invoiceflow/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// UserIDHeader names the caller when JWT auth is disabled
const UserIDHeader = "X-User-ID"

var errMissingUser = errors.New("user ID not found in context")

// BaseHandler carries the request plumbing every handler shares
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDKey)
}

// getUserID prefers the JWT subject and falls back to X-User-ID
func getUserID(c *gin.Context) (string, error) {
	if userID := middleware.GetJWTUserID(c); userID != "" {
		return userID, nil
	}
	userID := c.GetHeader(UserIDHeader)
	if userID == "" {
		return "", errMissingUser
	}
	c.Set(middleware.JWTUserIDKey, userID)
	return userID, nil
}

func (h *BaseHandler) requireUser(c *gin.Context) (string, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return "", false
	}
	return userID, true
}

func (h *BaseHandler) parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidID, "Invalid "+name+" format")
		return 0, false
	}
	return id, true
}

// owned resolves the caller and the :id path parameter
func (h *BaseHandler) owned(c *gin.Context) (string, int64, bool) {
	userID, ok := h.requireUser(c)
	if !ok {
		return "", 0, false
	}
	id, ok := h.parseID(c, "id")
	return userID, id, ok
}

func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	return h.bind(c, c.ShouldBindJSON(req))
}

func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	return h.bind(c, c.ShouldBindQuery(req))
}

// bind reports whether binding succeeded and writes the failure otherwise
func (h *BaseHandler) bind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var maxBytes *http.MaxBytesError
	switch details := middleware.ValidationDetails(err); {
	case len(details) > 0:
		h.ValidationError(c, details)
	case errors.As(err, &maxBytes):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body too large")
	default:
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
	}
	return false
}

// reply writes data under status, or the error envelope when err is set.
// A nil data with 204 writes no body.
func (h *BaseHandler) reply(c *gin.Context, status int, data any, err error) {
	switch {
	case err != nil:
		h.HandleError(c, err)
	case status == http.StatusNoContent:
		c.Status(status)
	default:
		c.JSON(status, dto.NewSuccessResponse(data))
	}
}

// Error writes an error envelope
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// Unauthorized writes a 401
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// ValidationError writes a 400 listing the rejected fields
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", getRequestID(c), details))
}

// HandleError maps a DomainError to its status and code. Anything else is
// logged and hidden behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.GetGinLogger(c).Error("unexpected error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	status := dto.GetHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("request failed", zap.String("code", code), zap.Error(err))
	}
	c.JSON(status, dto.NewFieldErrorResponse(code, domainErr.Message, domainErr.Field, getRequestID(c)))
}
