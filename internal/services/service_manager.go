package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exambank-service/internal/events"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

// serviceManager wires every service over one repository handle. Services
// are constructed once at process start and passed by reference; there is
// no ambient singleton state.
type serviceManager struct {
	repoManager repositories.RepositoryManager
	logger      *slog.Logger

	question     QuestionService
	examBook     ExamBookService
	user         UserService
	dashboard    ReviewDashboardService
	importExport ImportExportService
	events       *notificationEventService
}

func NewServiceManager(repoManager repositories.RepositoryManager, v *validator.Validator, publisher events.EventPublisher, logger *slog.Logger) ServiceManager {
	repo := repoManager.GetRepository()
	eventSvc := NewNotificationEventService(publisher, logger)

	return &serviceManager{
		repoManager:  repoManager,
		logger:       logger,
		question:     NewQuestionService(repo, logger, v, eventSvc),
		examBook:     NewExamBookService(repo, logger, v, eventSvc),
		user:         NewUserService(repo, logger, v),
		dashboard:    NewReviewDashboardService(repo, logger),
		importExport: NewImportExportService(repo, logger),
		events:       eventSvc,
	}
}

func (m *serviceManager) Question() QuestionService         { return m.question }
func (m *serviceManager) ExamBook() ExamBookService         { return m.examBook }
func (m *serviceManager) User() UserService                 { return m.user }
func (m *serviceManager) Dashboard() ReviewDashboardService { return m.dashboard }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }

func (m *serviceManager) Initialize(ctx context.Context) error {
	if err := m.repoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	m.logger.Info("Service manager initialized")
	return nil
}

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	return m.repoManager.HealthCheck(ctx)
}

func (m *serviceManager) Shutdown(ctx context.Context) error {
	if err := m.events.Close(); err != nil {
		m.logger.Error("Failed to close event publisher", "error", err)
	}
	return m.repoManager.Shutdown(ctx)
}
