package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/services"
)

type ExamBookHandler struct {
	BaseHandler
	service services.ExamBookService
}

func NewExamBookHandler(service services.ExamBookService, logger *slog.Logger) *ExamBookHandler {
	return &ExamBookHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *ExamBookHandler) CreateExamBook(c *gin.Context) {
	var req services.CreateExamBookRequest
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

	response, err := h.service.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *ExamBookHandler) GetExamBook(c *gin.Context) {
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

func (h *ExamBookHandler) ListExamBooks(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.List(c.Request.Context(), parseExamBookFilters(c), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ExamBookHandler) UpdateExamBook(c *gin.Context) {
	var req services.UpdateExamBookRequest
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

	response, err := h.service.Update(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ExamBookHandler) DeleteExamBook(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FinalizeExamBook locks a draft book against further edits.
func (h *ExamBookHandler) FinalizeExamBook(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.Finalize(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// PublishExamBook releases a finalized book.
func (h *ExamBookHandler) PublishExamBook(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.Publish(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func parseExamBookFilters(c *gin.Context) repositories.ExamBookFilters {
	filters := repositories.ExamBookFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		s := models.ExamBookStatus(status)
		filters.Status = &s
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if semester := c.Query("semester"); semester != "" {
		filters.Semester = &semester
	}
	if year := c.Query("academic_year"); year != "" {
		filters.AcademicYear = &year
	}

	filters.Limit = parseIntQuery(c, "limit", 20)
	filters.Offset = parseIntQuery(c, "offset", 0)
	return filters
}
