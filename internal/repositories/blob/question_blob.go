// Package blob implements the question and exam book stores on top of the
// versioned blob persistence layer. Both stores follow the same discipline:
// load the full collection, mutate in memory, persist the full collection.
// Persistence happens before the mutation is considered applied, so a
// storage failure fails the whole operation.
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

const questionNamespace = "questions"

type QuestionBlob struct {
	store  *blobstore.Store
	logger *slog.Logger
	mu     sync.Mutex // serializes read-modify-write cycles in this process
}

func NewQuestionBlob(kv blobstore.KV, logger *slog.Logger) repositories.QuestionRepository {
	return &QuestionBlob{
		store:  blobstore.NewStore(kv, questionNamespace, logger),
		logger: logger,
	}
}

// loadAll reads the persisted collection and discards entries missing the
// fields nothing downstream can render without. Discards are logged, not
// fatal.
func (q *QuestionBlob) loadAll() ([]*models.Question, error) {
	var raw []*models.Question
	recovered, err := q.store.Load(&raw)
	if err != nil {
		return nil, err
	}
	if recovered {
		q.logger.Warn("question collection recovered from backup slot")
	}

	valid := raw[:0]
	discarded := 0
	for _, question := range raw {
		if question == nil || question.ID == "" || question.ClinicalVignette == "" || question.LeadQuestion == "" {
			discarded++
			continue
		}
		valid = append(valid, question)
	}
	if discarded > 0 {
		q.logger.Warn("discarded invalid questions on load", "count", discarded)
	}
	return valid, nil
}

func (q *QuestionBlob) saveAll(questions []*models.Question) error {
	return q.store.Save(questions)
}

func (q *QuestionBlob) Create(ctx context.Context, question *models.Question) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	questions, err := q.loadAll()
	if err != nil {
		return err
	}
	questions = append(questions, question)
	return q.saveAll(questions)
}

func (q *QuestionBlob) GetByID(ctx context.Context, id string) (*models.Question, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	questions, err := q.loadAll()
	if err != nil {
		return nil, err
	}
	for _, question := range questions {
		if question.ID == id {
			return question, nil
		}
	}
	return nil, repositories.NewNotFoundError("question", id)
}

// GetByIDs returns the questions that exist, in the order requested.
// Missing ids are simply absent from the result; dangling exam book
// references are a display case, not an error.
func (q *QuestionBlob) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	questions, err := q.loadAll()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}
	found := make([]*models.Question, 0, len(ids))
	for _, id := range ids {
		if question, ok := byID[id]; ok {
			found = append(found, question)
		}
	}
	return found, nil
}

func (q *QuestionBlob) Update(ctx context.Context, question *models.Question) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	questions, err := q.loadAll()
	if err != nil {
		return err
	}
	for i, existing := range questions {
		if existing.ID == question.ID {
			questions[i] = question
			return q.saveAll(questions)
		}
	}
	return repositories.NewNotFoundError("question", question.ID)
}

func (q *QuestionBlob) Delete(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	questions, err := q.loadAll()
	if err != nil {
		return err
	}
	for i, existing := range questions {
		if existing.ID == id {
			questions = append(questions[:i], questions[i+1:]...)
			return q.saveAll(questions)
		}
	}
	return repositories.NewNotFoundError("question", id)
}

func (q *QuestionBlob) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	questions, err := q.loadAll()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*models.Question, 0, len(questions))
	for _, question := range questions {
		if !matchQuestion(question, filters) {
			continue
		}
		matched = append(matched, question)
	}

	sortQuestions(matched, filters.SortBy, filters.SortOrder)
	total := len(matched)
	return paginate(matched, filters.Offset, filters.Limit), total, nil
}

func matchQuestion(q *models.Question, f repositories.QuestionFilters) bool {
	if f.Status != nil && q.Status != *f.Status {
		return false
	}
	if f.AuthorID != nil && q.AuthorID != *f.AuthorID {
		return false
	}
	if f.ReviewerID != nil && !q.IsAssignedReviewer(*f.ReviewerID) {
		return false
	}
	if f.Subject != nil && !strings.EqualFold(q.Subject, *f.Subject) {
		return false
	}
	if f.Topic != nil && !strings.EqualFold(q.Topic, *f.Topic) {
		return false
	}
	for _, tag := range f.Tags {
		if !containsFold(q.Tags, tag) {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(q.ClinicalVignette), needle) &&
			!strings.Contains(strings.ToLower(q.LeadQuestion), needle) &&
			!strings.Contains(strings.ToLower(q.Topic), needle) {
			return false
		}
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func sortQuestions(questions []*models.Question, sortBy, sortOrder string) {
	less := func(i, j int) bool {
		switch sortBy {
		case "updated_at":
			return questions[i].UpdatedAt.Before(questions[j].UpdatedAt)
		case "topic":
			return questions[i].Topic < questions[j].Topic
		default:
			return questions[i].CreatedAt.Before(questions[j].CreatedAt)
		}
	}
	if sortOrder == "desc" {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(questions, less)
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
