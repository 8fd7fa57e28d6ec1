package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type AssignReviewersRequest = validator.AssignReviewersRequest
type ReviewDecisionRequest = validator.ReviewDecisionRequest
type CreateExamBookRequest = validator.ExamBookCreateRequest
type UpdateExamBookRequest = validator.ExamBookUpdateRequest
type CreateAccountRequest = validator.CreateAccountRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type UpdateRolesRequest = validator.UpdateRolesRequest

type QuestionResponse struct {
	*models.Question
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanReview bool `json:"can_review"`
}

type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int                 `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

// ExamBookQuestionView resolves one entry of an exam book's question list.
// Missing=true marks a dangling reference to a deleted question; the book
// keeps the id and the view layer renders "question not found".
type ExamBookQuestionView struct {
	QuestionID string           `json:"question_id"`
	Missing    bool             `json:"missing"`
	Question   *models.Question `json:"question,omitempty"`
}

type ExamBookResponse struct {
	*models.ExamBook
	CanEdit     bool                   `json:"can_edit"`
	CanDelete   bool                   `json:"can_delete"`
	CanFinalize bool                   `json:"can_finalize"`
	Questions   []ExamBookQuestionView `json:"resolved_questions,omitempty"`
}

type ExamBookListResponse struct {
	ExamBooks []*ExamBookResponse `json:"exam_books"`
	Total     int                 `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

type UserResponse struct {
	*models.User
	RoleTypes []models.RoleType `json:"role_types"`
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

// ===== DASHBOARD DTOs =====

type ReviewDashboard struct {
	StatusCounts      map[models.QuestionStatus]int `json:"status_counts"`
	PendingAssignment int                           `json:"pending_assignment"`
	OpenReviews       int                           `json:"open_reviews"`
	ReviewerWorkload  []ReviewerWorkload            `json:"reviewer_workload,omitempty"`
	AuthorStats       []AuthorStats                 `json:"author_stats,omitempty"`
	ExamBookCounts    map[models.ExamBookStatus]int `json:"exam_book_counts"`
}

type ReviewerWorkload struct {
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name"`
	OpenReviews  int    `json:"open_reviews"`
}

type AuthorStats struct {
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	Total      int    `json:"total"`
	Approved   int    `json:"approved"`
	Rejected   int    `json:"rejected"`
}

// ===== IMPORT/EXPORT DTOs =====

type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

type ImportError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ===== SERVICE INTERFACES =====

// QuestionService owns the question review workflow: the status state
// machine, reviewer assignment and decision capture.
type QuestionService interface {
	Submit(ctx context.Context, req *CreateQuestionRequest, actor *models.User) (*QuestionResponse, error)
	GetByID(ctx context.Context, id string, actor *models.User) (*QuestionResponse, error)
	Update(ctx context.Context, id string, req *UpdateQuestionRequest, actor *models.User) (*QuestionResponse, error)
	Delete(ctx context.Context, id string, actor *models.User) error
	List(ctx context.Context, filters repositories.QuestionFilters, actor *models.User) (*QuestionListResponse, error)

	// Workflow transitions
	AssignReviewers(ctx context.Context, id string, req *AssignReviewersRequest, actor *models.User) (*QuestionResponse, error)
	DecideReview(ctx context.Context, id string, req *ReviewDecisionRequest, actor *models.User) (*QuestionResponse, error)
	Resubmit(ctx context.Context, id string, actor *models.User) (*QuestionResponse, error)
}

// ExamBookService owns exam book assembly: creation, edits, the
// draft → finalized → published lifecycle and its edit lock.
type ExamBookService interface {
	Create(ctx context.Context, req *CreateExamBookRequest, actor *models.User) (*ExamBookResponse, error)
	GetByID(ctx context.Context, id string, actor *models.User) (*ExamBookResponse, error)
	Update(ctx context.Context, id string, req *UpdateExamBookRequest, actor *models.User) (*ExamBookResponse, error)
	Delete(ctx context.Context, id string, actor *models.User) error
	List(ctx context.Context, filters repositories.ExamBookFilters, actor *models.User) (*ExamBookListResponse, error)

	Finalize(ctx context.Context, id string, actor *models.User) (*ExamBookResponse, error)
	Publish(ctx context.Context, id string, actor *models.User) (*ExamBookResponse, error)
}

// UserService wraps the identity store with role management and the role
// normalization invariant.
type UserService interface {
	GetByID(ctx context.Context, id string, actor *models.User) (*UserResponse, error)
	List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error)
	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*UserResponse, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest, actor *models.User) (*UserResponse, error)
	UpdateRoles(ctx context.Context, id string, req *UpdateRolesRequest, actor *models.User) (*UserResponse, error)
}

// ReviewDashboardService derives workload and progress figures from the
// question and exam book stores.
type ReviewDashboardService interface {
	Overview(ctx context.Context, actor *models.User) (*ReviewDashboard, error)
}

// ImportExportService handles the CSV import boundary and the
// CSV/plain-text/XLSX export boundaries.
type ImportExportService interface {
	ImportQuestionsCSV(ctx context.Context, r io.Reader, actor *models.User) (*ImportResult, error)
	ExportQuestionsCSV(ctx context.Context, filters repositories.QuestionFilters, actor *models.User) ([]byte, error)
	ExportExamBookText(ctx context.Context, examBookID string, actor *models.User) ([]byte, error)
	ExportExamBookXLSX(ctx context.Context, examBookID string, actor *models.User) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Question() QuestionService
	ExamBook() ExamBookService
	User() UserService
	Dashboard() ReviewDashboardService
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
