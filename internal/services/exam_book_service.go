package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exambank-service/internal/events"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/policy"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

type examBookService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    *notificationEventService
}

func NewExamBookService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, events *notificationEventService) ExamBookService {
	return &examBookService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ===== CRUD OPERATIONS =====

// Create assembles a new draft exam book. Every referenced question must
// exist and be approved; the failure message names each offending id.
func (s *examBookService) Create(ctx context.Context, req *CreateExamBookRequest, actor *models.User) (*ExamBookResponse, error) {
	s.logger.Info("Creating exam book", "actor_id", actorID(actor), "title", req.Title)

	if !policy.CanCreateExamBook(actor) {
		return nil, NewPermissionError(actorID(actor), "", "exam_book", "create", "coordinator or admin role required")
	}

	errs := s.validator.GetBusinessValidator().ValidateExamBookCreate(req)
	errs = append(errs, s.checkQuestionSelection(ctx, req.QuestionIDs)...)
	if len(errs) > 0 {
		return nil, errs
	}

	now := time.Now().UTC()
	book := &models.ExamBook{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Subject:      req.Subject,
		TotalPoints:  len(req.QuestionIDs), // one point per question
		Duration:     req.Duration,
		Instructions: req.Instructions,
		QuestionIDs:  req.QuestionIDs,
		Status:       models.ExamBookDraft,
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.ExamBook().Create(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create exam book: %w", err)
	}

	s.logger.Info("Exam book created", "exam_book_id", book.ID, "questions", len(book.QuestionIDs))

	return s.buildExamBookResponse(ctx, book, actor), nil
}

func (s *examBookService) GetByID(ctx context.Context, id string, actor *models.User) (*ExamBookResponse, error) {
	book, err := s.getExamBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewExamBook(actor, book) {
		return nil, NewPermissionError(actorID(actor), id, "exam_book", "read", "not creator, coordinator or admin")
	}
	return s.buildExamBookResponse(ctx, book, actor), nil
}

// Update replaces a draft exam book's fields. A finalized or published
// book rejects every edit, metadata included; status must return to draft
// first, which the lifecycle does not allow.
func (s *examBookService) Update(ctx context.Context, id string, req *UpdateExamBookRequest, actor *models.User) (*ExamBookResponse, error) {
	s.logger.Info("Updating exam book", "exam_book_id", id, "actor_id", actorID(actor))

	book, err := s.getExamBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if book.Status != models.ExamBookDraft {
		return nil, NewStateError("exam_book", id, string(book.Status), "update")
	}
	if !policy.CanEditExamBook(actor, book) {
		return nil, NewPermissionError(actorID(actor), id, "exam_book", "update", "not creator or admin")
	}

	errs := s.validator.GetBusinessValidator().ValidateExamBookCreate(req)
	errs = append(errs, s.checkQuestionSelection(ctx, req.QuestionIDs)...)
	if len(errs) > 0 {
		return nil, errs
	}

	updated := *book
	updated.Title = req.Title
	updated.Description = req.Description
	updated.Subject = req.Subject
	updated.Duration = req.Duration
	updated.Instructions = req.Instructions
	updated.Semester = req.Semester
	updated.AcademicYear = req.AcademicYear
	updated.QuestionIDs = req.QuestionIDs
	updated.TotalPoints = len(req.QuestionIDs)
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.ExamBook().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update exam book: %w", err)
	}

	return s.buildExamBookResponse(ctx, &updated, actor), nil
}

// Delete removes an exam book in any status. Questions referenced by the
// book are untouched.
func (s *examBookService) Delete(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Deleting exam book", "exam_book_id", id, "actor_id", actorID(actor))

	book, err := s.getExamBook(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanDeleteExamBook(actor, book) {
		return NewPermissionError(actorID(actor), id, "exam_book", "delete", "not creator or admin")
	}

	if err := s.repo.ExamBook().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam book: %w", err)
	}
	return nil
}

func (s *examBookService) List(ctx context.Context, filters repositories.ExamBookFilters, actor *models.User) (*ExamBookListResponse, error) {
	if actor == nil {
		return nil, NewPermissionError("", "", "exam_book", "list", "not authenticated")
	}

	books, total, err := s.repo.ExamBook().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exam books: %w", err)
	}

	visible := make([]*ExamBookResponse, 0, len(books))
	hidden := 0
	for _, book := range books {
		if !policy.CanViewExamBook(actor, book) {
			hidden++
			continue
		}
		// Question resolution is skipped in list views; only the flat
		// book fields are rendered there.
		visible = append(visible, &ExamBookResponse{
			ExamBook:    book,
			CanEdit:     policy.CanEditExamBook(actor, book),
			CanDelete:   policy.CanDeleteExamBook(actor, book),
			CanFinalize: policy.CanFinalizeExamBook(actor, book),
		})
	}

	return &ExamBookListResponse{
		ExamBooks: visible,
		Total:     total - hidden,
		Page:      pageFromOffset(filters.Offset, filters.Limit),
		Size:      filters.Limit,
	}, nil
}

// ===== LIFECYCLE =====

// Finalize locks a draft exam book against further edits. Every
// referenced question must still exist and be approved at the moment of
// finalization.
func (s *examBookService) Finalize(ctx context.Context, id string, actor *models.User) (*ExamBookResponse, error) {
	s.logger.Info("Finalizing exam book", "exam_book_id", id, "actor_id", actorID(actor))

	book, err := s.getExamBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if book.Status != models.ExamBookDraft {
		return nil, NewStateError("exam_book", id, string(book.Status), "finalize")
	}
	if !policy.CanFinalizeExamBook(actor, book) {
		return nil, NewPermissionError(actorID(actor), id, "exam_book", "finalize", "not creator or admin")
	}
	if errs := s.checkQuestionSelection(ctx, book.QuestionIDs); len(errs) > 0 {
		return nil, errs
	}

	updated := *book
	updated.Status = models.ExamBookFinalized
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.ExamBook().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to finalize exam book: %w", err)
	}

	s.events.PublishExamBookLifecycle(ctx, events.ExamBookFinalized, &updated, actor.ID)

	return s.buildExamBookResponse(ctx, &updated, actor), nil
}

// Publish releases a finalized exam book.
func (s *examBookService) Publish(ctx context.Context, id string, actor *models.User) (*ExamBookResponse, error) {
	s.logger.Info("Publishing exam book", "exam_book_id", id, "actor_id", actorID(actor))

	book, err := s.getExamBook(ctx, id)
	if err != nil {
		return nil, err
	}

	if book.Status != models.ExamBookFinalized {
		return nil, NewStateError("exam_book", id, string(book.Status), "publish")
	}
	if !policy.CanFinalizeExamBook(actor, book) {
		return nil, NewPermissionError(actorID(actor), id, "exam_book", "publish", "not creator or admin")
	}

	updated := *book
	updated.Status = models.ExamBookPublished
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.ExamBook().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to publish exam book: %w", err)
	}

	s.events.PublishExamBookLifecycle(ctx, events.ExamBookPublished, &updated, actor.ID)

	return s.buildExamBookResponse(ctx, &updated, actor), nil
}

// ===== HELPERS =====

func (s *examBookService) getExamBook(ctx context.Context, id string) (*models.ExamBook, error) {
	book, err := s.repo.ExamBook().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamBookNotFound
		}
		return nil, fmt.Errorf("failed to load exam book: %w", err)
	}
	return book, nil
}

// checkQuestionSelection verifies every selected question exists and is
// approved. All offending ids are collected into one violation each so
// the caller sees the full list.
func (s *examBookService) checkQuestionSelection(ctx context.Context, ids []string) validator.ValidationErrors {
	if len(ids) == 0 {
		return nil
	}

	questions, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return validator.ValidationErrors{{
			Field:   "questions",
			Message: "failed to load selected questions",
			Rule:    "business_logic",
		}}
	}

	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var missing, unapproved []string
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		if q.Status != models.StatusApproved {
			unapproved = append(unapproved, id)
		}
	}

	var errs validator.ValidationErrors
	if len(missing) > 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "questions",
			Message: fmt.Sprintf("questions not found: %s", strings.Join(missing, ", ")),
			Value:   missing,
			Rule:    "business_logic",
		})
	}
	if len(unapproved) > 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "questions",
			Message: fmt.Sprintf("questions not approved: %s", strings.Join(unapproved, ", ")),
			Value:   unapproved,
			Rule:    "business_logic",
		})
	}
	return errs
}

// buildExamBookResponse resolves the book's question list. Deleted
// questions stay in the list as missing entries.
func (s *examBookService) buildExamBookResponse(ctx context.Context, book *models.ExamBook, actor *models.User) *ExamBookResponse {
	resp := &ExamBookResponse{
		ExamBook:    book,
		CanEdit:     policy.CanEditExamBook(actor, book),
		CanDelete:   policy.CanDeleteExamBook(actor, book),
		CanFinalize: policy.CanFinalizeExamBook(actor, book),
	}

	questions, err := s.repo.Question().GetByIDs(ctx, book.QuestionIDs)
	if err != nil {
		s.logger.Error("Failed to resolve exam book questions", "exam_book_id", book.ID, "error", err)
		return resp
	}
	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	views := make([]ExamBookQuestionView, 0, len(book.QuestionIDs))
	for _, id := range book.QuestionIDs {
		q, ok := byID[id]
		views = append(views, ExamBookQuestionView{
			QuestionID: id,
			Missing:    !ok,
			Question:   q,
		})
	}
	resp.Questions = views
	return resp
}
