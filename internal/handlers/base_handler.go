package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exambank-service/internal/blobstore"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/services"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

// ErrorResponse is the uniform error payload for every endpoint.
type ErrorResponse struct {
	Message string                      `json:"message"`
	Details string                      `json:"details,omitempty"`
	Fields  []validator.ValidationError `json:"fields,omitempty"`
}

type BaseHandler struct {
	logger *slog.Logger
}

func NewBaseHandler(logger *slog.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// currentUser returns the authenticated user set by the auth middleware.
// Writes a 401 and returns nil when missing.
func (h *BaseHandler) currentUser(c *gin.Context) *models.User {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil
	}
	return user
}

// handleServiceError maps the service error taxonomy onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Fields:  verrs,
		})
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Permission denied",
			Details: permErr.Reason,
		})
		return
	}

	var stateErr *services.StateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Invalid state transition",
			Details: stateErr.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrExamBookNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
		return
	}

	var storageErr *blobstore.StorageError
	if errors.As(err, &storageErr) {
		h.logger.Error("Storage failure", "op", storageErr.Op, "namespace", storageErr.Namespace, "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Storage temporarily unavailable",
		})
		return
	}

	h.logger.Error("Unhandled service error", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Message: "Internal server error",
	})
}
