package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/services"
)

type QuestionHandler struct {
	BaseHandler
	service services.QuestionService
}

func NewQuestionHandler(service services.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== CORE CRUD ENDPOINTS =====

// SubmitQuestion creates a new question as draft or submitted
// @Summary Create a new question
// @Description Create a question; status selects draft save or submission to review
// @Tags questions
// @Accept json
// @Produce json
// @Param request body services.CreateQuestionRequest true "Question creation request"
// @Success 201 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /questions [post]
func (h *QuestionHandler) SubmitQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
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

	response, err := h.service.Submit(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetQuestion retrieves a question by ID
// @Summary Get a question by ID
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} services.QuestionResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
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

// ListQuestions lists questions visible to the caller
// @Summary List questions
// @Tags questions
// @Produce json
// @Param status query string false "Filter by status"
// @Param author_id query string false "Filter by author"
// @Success 200 {object} services.QuestionListResponse
// @Router /questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.List(c.Request.Context(), parseQuestionFilters(c), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateQuestion patches an editable question
// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param request body services.UpdateQuestionRequest true "Question update request"
// @Success 200 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var req services.UpdateQuestionRequest
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

// DeleteQuestion deletes a question
// @Summary Delete a question
// @Tags questions
// @Param id path string true "Question ID"
// @Success 204
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
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

// ===== WORKFLOW ENDPOINTS =====

// AssignReviewers assigns two reviewers and moves the question under review
// @Summary Assign reviewers to a submitted question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param request body services.AssignReviewersRequest true "Reviewer assignment"
// @Success 200 {object} services.QuestionResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Invalid state"
// @Router /questions/{id}/reviewers [post]
func (h *QuestionHandler) AssignReviewers(c *gin.Context) {
	var req services.AssignReviewersRequest
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

	response, err := h.service.AssignReviewers(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DecideReview records a review decision on an under-review question
// @Summary Decide a review
// @Tags questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param request body services.ReviewDecisionRequest true "Review decision"
// @Success 200 {object} services.QuestionResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Invalid state"
// @Router /questions/{id}/decision [post]
func (h *QuestionHandler) DecideReview(c *gin.Context) {
	var req services.ReviewDecisionRequest
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

	response, err := h.service.DecideReview(c.Request.Context(), c.Param("id"), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ResubmitQuestion returns a needs-revision question to the review queue
// @Summary Resubmit a revised question
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} services.QuestionResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Invalid state"
// @Router /questions/{id}/resubmit [post]
func (h *QuestionHandler) ResubmitQuestion(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	response, err := h.service.Resubmit(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func parseQuestionFilters(c *gin.Context) repositories.QuestionFilters {
	filters := repositories.QuestionFilters{
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := c.Query("status"); status != "" {
		s := models.QuestionStatus(status)
		filters.Status = &s
	}
	if authorID := c.Query("author_id"); authorID != "" {
		filters.AuthorID = &authorID
	}
	if reviewerID := c.Query("reviewer_id"); reviewerID != "" {
		filters.ReviewerID = &reviewerID
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if topic := c.Query("topic"); topic != "" {
		filters.Topic = &topic
	}
	if tags := c.Query("tags"); tags != "" {
		filters.Tags = strings.Split(tags, ",")
	}

	filters.Limit = parseIntQuery(c, "limit", 20)
	filters.Offset = parseIntQuery(c, "offset", 0)
	return filters
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
