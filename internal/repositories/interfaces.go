package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exambank-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Status     *models.QuestionStatus `json:"status"`
	AuthorID   *string                `json:"author_id"`
	ReviewerID *string                `json:"reviewer_id"`
	Subject    *string                `json:"subject"`
	Topic      *string                `json:"topic"`
	Tags       []string               `json:"tags"`
	Search     string                 `json:"search"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
	SortBy     string                 `json:"sort_by"`    // "created_at", "updated_at", "topic"
	SortOrder  string                 `json:"sort_order"` // "asc", "desc"
}

type ExamBookFilters struct {
	Status       *models.ExamBookStatus `json:"status"`
	CreatedBy    *string                `json:"created_by"`
	Subject      *string                `json:"subject"`
	Semester     *string                `json:"semester"`
	AcademicYear *string                `json:"academic_year"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
	SortBy       string                 `json:"sort_by"`
	SortOrder    string                 `json:"sort_order"`
}

type UserFilters struct {
	Role     *models.RoleType `json:"role"`
	Verified *bool            `json:"verified"`
	Search   string           `json:"search"` // name or email
	DateFrom *time.Time       `json:"date_from"`
	DateTo   *time.Time       `json:"date_to"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

// QuestionRepository is the durable question store. Implementations
// operate on the full in-memory collection and persist the full collection
// on every mutation; there are no partial writes.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int, error)
}

// ExamBookRepository is the durable exam book store, same contract shape
// as the question store.
type ExamBookRepository interface {
	Create(ctx context.Context, book *models.ExamBook) error
	GetByID(ctx context.Context, id string) (*models.ExamBook, error)
	Update(ctx context.Context, book *models.ExamBook) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters ExamBookFilters) ([]*models.ExamBook, int, error)
}

// UserRepository is the remote identity store: user profiles and role
// assignments.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	GetByRole(ctx context.Context, role models.RoleType) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	// UpdateRoles replaces the user's role set (normalized by the caller)
	// and sets the verified flag in the same transaction.
	UpdateRoles(ctx context.Context, userID string, roles []models.RoleType, verified bool) error
}

// Repository aggregates every store behind one handle.
type Repository interface {
	Question() QuestionRepository
	ExamBook() ExamBookRepository
	User() UserRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager owns repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
