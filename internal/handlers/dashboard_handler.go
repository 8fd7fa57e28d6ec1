package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exambank-service/internal/services"
)

type DashboardHandler struct {
	BaseHandler
	service services.ReviewDashboardService
}

func NewDashboardHandler(service services.ReviewDashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetOverview returns review workload and progress figures.
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	dashboard, err := h.service.Overview(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
