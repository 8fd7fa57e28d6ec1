package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/services"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.GetByID(c.Request.Context(), user.ID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.GetByID(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.List(c.Request.Context(), parseUserFilters(c), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateAccount provisions a new profile. Unauthenticated: this is the
// sign-up path; the account starts as restricted-lecturer until an admin
// grants roles.
func (h *UserHandler) CreateAccount(c *gin.Context) {
	var req services.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	response, err := h.service.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateRoles replaces a user's role set. Admin only; enforced again in
// the service layer.
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	var req services.UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.UpdateRoles(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func parseUserFilters(c *gin.Context) repositories.UserFilters {
	filters := repositories.UserFilters{
		Search: c.Query("search"),
	}

	if role := c.Query("role"); role != "" {
		r := models.RoleType(role)
		filters.Role = &r
	}
	if verified := c.Query("verified"); verified != "" {
		v := verified == "true"
		filters.Verified = &v
	}

	filters.Limit = parseIntQuery(c, "limit", 20)
	filters.Offset = parseIntQuery(c, "offset", 0)
	return filters
}
