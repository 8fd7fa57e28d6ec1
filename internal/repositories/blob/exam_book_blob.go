package blob

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/SAP-F-2025/exambank-service/internal/blobstore"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
)

const examBookNamespace = "exam_books"

type ExamBookBlob struct {
	store  *blobstore.Store
	logger *slog.Logger
	mu     sync.Mutex
}

func NewExamBookBlob(kv blobstore.KV, logger *slog.Logger) repositories.ExamBookRepository {
	return &ExamBookBlob{
		store:  blobstore.NewStore(kv, examBookNamespace, logger),
		logger: logger,
	}
}

func (e *ExamBookBlob) loadAll() ([]*models.ExamBook, error) {
	var books []*models.ExamBook
	recovered, err := e.store.Load(&books)
	if err != nil {
		return nil, err
	}
	if recovered {
		e.logger.Warn("exam book collection recovered from backup slot")
	}
	return books, nil
}

func (e *ExamBookBlob) saveAll(books []*models.ExamBook) error {
	return e.store.Save(books)
}

func (e *ExamBookBlob) Create(ctx context.Context, book *models.ExamBook) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, err := e.loadAll()
	if err != nil {
		return err
	}
	books = append(books, book)
	return e.saveAll(books)
}

func (e *ExamBookBlob) GetByID(ctx context.Context, id string) (*models.ExamBook, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, err := e.loadAll()
	if err != nil {
		return nil, err
	}
	for _, book := range books {
		if book.ID == id {
			return book, nil
		}
	}
	return nil, repositories.NewNotFoundError("exam book", id)
}

func (e *ExamBookBlob) Update(ctx context.Context, book *models.ExamBook) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, err := e.loadAll()
	if err != nil {
		return err
	}
	for i, existing := range books {
		if existing.ID == book.ID {
			books[i] = book
			return e.saveAll(books)
		}
	}
	return repositories.NewNotFoundError("exam book", book.ID)
}

func (e *ExamBookBlob) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, err := e.loadAll()
	if err != nil {
		return err
	}
	for i, existing := range books {
		if existing.ID == id {
			books = append(books[:i], books[i+1:]...)
			return e.saveAll(books)
		}
	}
	return repositories.NewNotFoundError("exam book", id)
}

func (e *ExamBookBlob) List(ctx context.Context, filters repositories.ExamBookFilters) ([]*models.ExamBook, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	books, err := e.loadAll()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*models.ExamBook, 0, len(books))
	for _, book := range books {
		if !matchExamBook(book, filters) {
			continue
		}
		matched = append(matched, book)
	}

	sortExamBooks(matched, filters.SortBy, filters.SortOrder)
	total := len(matched)
	return paginate(matched, filters.Offset, filters.Limit), total, nil
}

func matchExamBook(b *models.ExamBook, f repositories.ExamBookFilters) bool {
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if f.CreatedBy != nil && b.CreatedBy != *f.CreatedBy {
		return false
	}
	if f.Subject != nil && !strings.EqualFold(b.Subject, *f.Subject) {
		return false
	}
	if f.Semester != nil && !strings.EqualFold(b.Semester, *f.Semester) {
		return false
	}
	if f.AcademicYear != nil && b.AcademicYear != *f.AcademicYear {
		return false
	}
	return true
}

func sortExamBooks(books []*models.ExamBook, sortBy, sortOrder string) {
	less := func(i, j int) bool {
		switch sortBy {
		case "title":
			return books[i].Title < books[j].Title
		case "updated_at":
			return books[i].UpdatedAt.Before(books[j].UpdatedAt)
		default:
			return books[i].CreatedAt.Before(books[j].CreatedAt)
		}
	}
	if sortOrder == "desc" {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(books, less)
}
