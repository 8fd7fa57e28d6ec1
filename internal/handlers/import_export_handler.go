package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exambank-service/internal/services"
)

const maxImportSize = 10 << 20 // 10 MiB

type ImportExportHandler struct {
	BaseHandler
	service services.ImportExportService
}

func NewImportExportHandler(service services.ImportExportService, logger *slog.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ImportQuestionsCSV accepts a multipart CSV upload and imports each row
// as a draft question.
func (h *ImportExportHandler) ImportQuestionsCSV(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing CSV file upload",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	if header.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "CSV file too large",
		})
		return
	}

	result, err := h.service.ImportQuestionsCSV(c.Request.Context(), file, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ImportExportHandler) ExportQuestionsCSV(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	data, err := h.service.ExportQuestionsCSV(c.Request.Context(), parseQuestionFilters(c), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *ImportExportHandler) ExportExamBookText(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	id := c.Param("id")
	data, err := h.service.ExportExamBookText(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-book-%s.txt"`, id))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

func (h *ImportExportHandler) ExportExamBookXLSX(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	id := c.Param("id")
	data, err := h.service.ExportExamBookXLSX(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-book-%s.xlsx"`, id))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
