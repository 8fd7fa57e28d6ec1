package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/exambank-service/internal/config"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/services"
)

type HandlerManager struct {
	questionHandler     *QuestionHandler
	examBookHandler     *ExamBookHandler
	userHandler         *UserHandler
	dashboardHandler    *DashboardHandler
	importExportHandler *ImportExportHandler
	authMiddleware      *CasdoorAuthMiddleware
	serviceManager      services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger *slog.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		questionHandler:     NewQuestionHandler(serviceManager.Question(), logger),
		examBookHandler:     NewExamBookHandler(serviceManager.ExamBook(), logger),
		userHandler:         NewUserHandler(serviceManager.User(), logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), logger),
		importExportHandler: NewImportExportHandler(serviceManager.ImportExport(), logger),
		authMiddleware:      NewCasdoorAuthMiddleware(casdoorConfig, userRepo),
		serviceManager:      serviceManager,
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	// Sign-up is the only unauthenticated endpoint.
	router.POST("/api/v1/accounts", hm.userHandler.CreateAccount)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		questions := v1.Group("/questions")
		{
			// Authoring - any verified functional role; the policy layer
			// narrows further per question.
			questions.POST("", hm.questionHandler.SubmitQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			questions.POST("/:id/resubmit", hm.questionHandler.ResubmitQuestion)

			// Workflow - reviewer assignment is admin-only, decisions are
			// limited to the assigned reviewers.
			questions.POST("/:id/reviewers", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.questionHandler.AssignReviewers)
			questions.POST("/:id/decision", hm.authMiddleware.RequireRoleMiddleware(models.RoleReviewer), hm.questionHandler.DecideReview)

			// CSV boundary
			questions.POST("/import", hm.importExportHandler.ImportQuestionsCSV)
			questions.GET("/export", hm.importExportHandler.ExportQuestionsCSV)
		}

		examBooks := v1.Group("/exam-books")
		{
			examBooks.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator), hm.examBookHandler.CreateExamBook)
			examBooks.GET("", hm.examBookHandler.ListExamBooks)
			examBooks.GET("/:id", hm.examBookHandler.GetExamBook)
			examBooks.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator), hm.examBookHandler.UpdateExamBook)
			examBooks.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator), hm.examBookHandler.DeleteExamBook)

			examBooks.POST("/:id/finalize", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator), hm.examBookHandler.FinalizeExamBook)
			examBooks.POST("/:id/publish", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator), hm.examBookHandler.PublishExamBook)

			examBooks.GET("/:id/export/text", hm.importExportHandler.ExportExamBookText)
			examBooks.GET("/:id/export/xlsx", hm.importExportHandler.ExportExamBookXLSX)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetCurrentUser)
			users.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleCoordinator), hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id/profile", hm.userHandler.UpdateProfile)
			users.PUT("/:id/roles", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.UpdateRoles)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleReviewer, models.RoleCoordinator), hm.dashboardHandler.GetOverview)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "exambank-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
