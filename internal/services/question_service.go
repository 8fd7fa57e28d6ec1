package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/policy"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	events    *notificationEventService
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, events *notificationEventService) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		events:    events,
	}
}

// ===== CORE CRUD OPERATIONS =====

// Submit validates and persists a new question. The caller chooses the
// save action through req.Status: draft keeps it private, submitted enters
// the review queue. Every violated field is reported, not just the first.
func (s *questionService) Submit(ctx context.Context, req *CreateQuestionRequest, actor *models.User) (*QuestionResponse, error) {
	s.logger.Info("Submitting question", "actor_id", actorID(actor), "status", req.Status)

	if !policy.CanSubmitQuestion(actor) {
		return nil, NewPermissionError(actorID(actor), "", "question", "create", "requires a verified functional role")
	}

	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = models.StatusDraft
	}
	qType := req.Type
	if qType == "" {
		qType = models.MultipleChoice
	}
	pathomechanism := req.Pathomechanism
	if pathomechanism == "" {
		pathomechanism = models.PathoNonApplicable
	}
	aspect := req.Aspect
	if aspect == "" {
		aspect = models.AspectKnowledge
	}

	question := &models.Question{
		ID:                 uuid.New().String(),
		ClinicalVignette:   req.ClinicalVignette,
		LeadQuestion:       req.LeadQuestion,
		Type:               qType,
		Subject:            req.Subject,
		Topic:              req.Topic,
		Options:            req.Options,
		CorrectAnswer:      req.CorrectAnswer,
		Explanation:        req.Explanation,
		Status:             status,
		AuthorID:           actor.ID,
		AuthorName:         actor.FullName(),
		Tags:               req.Tags,
		LearningObjectives: req.LearningObjectives,
		Pathomechanism:     pathomechanism,
		Aspect:             aspect,
		Disease:            req.Disease,
		References:         req.References,
		PictureLink:        req.PictureLink,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Persist first; the caller only sees the question once the store
	// confirmed the save.
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID, "status", question.Status)

	if status == models.StatusSubmitted {
		s.events.PublishQuestionStatusChanged(ctx, question, models.StatusDraft, actor.ID)
	}

	return s.buildQuestionResponse(question, actor), nil
}

func (s *questionService) GetByID(ctx context.Context, id string, actor *models.User) (*QuestionResponse, error) {
	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewQuestion(actor, question) {
		return nil, NewPermissionError(actorID(actor), id, "question", "read", "not author, assigned reviewer or admin")
	}
	return s.buildQuestionResponse(question, actor), nil
}

// Update patches an editable question. Permitted to the author while the
// question is in draft or needs-revision, or to an assigned reviewer while
// the decision is pending.
func (s *questionService) Update(ctx context.Context, id string, req *UpdateQuestionRequest, actor *models.User) (*QuestionResponse, error) {
	s.logger.Info("Updating question", "question_id", id, "actor_id", actorID(actor))

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanEditQuestion(actor, question) {
		return nil, NewPermissionError(actorID(actor), id, "question", "update", "not author in an editable status nor pending reviewer")
	}

	if errs := s.validator.GetBusinessValidator().ValidateQuestionUpdate(req, question); len(errs) > 0 {
		return nil, errs
	}

	updated := *question
	applyQuestionPatch(&updated, req)
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Question().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	return s.buildQuestionResponse(&updated, actor), nil
}

// Delete removes a question. Permitted to the author while editable, or to
// an admin at any time. Exam books referencing the id are not cascaded;
// the dangling reference renders as "question not found".
func (s *questionService) Delete(ctx context.Context, id string, actor *models.User) error {
	s.logger.Info("Deleting question", "question_id", id, "actor_id", actorID(actor))

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return err
	}

	if !policy.CanDeleteQuestion(actor, question) {
		return NewPermissionError(actorID(actor), id, "question", "delete", "only the author of an editable question or an admin")
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, actor *models.User) (*QuestionListResponse, error) {
	if actor == nil {
		return nil, NewPermissionError("", "", "question", "list", "not authenticated")
	}

	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	// Reads flow store → collection → access control filter → caller.
	visible := make([]*QuestionResponse, 0, len(questions))
	hidden := 0
	for _, question := range questions {
		if !policy.CanViewQuestion(actor, question) {
			hidden++
			continue
		}
		visible = append(visible, s.buildQuestionResponse(question, actor))
	}

	return &QuestionListResponse{
		Questions: visible,
		Total:     total - hidden,
		Page:      pageFromOffset(filters.Offset, filters.Limit),
		Size:      filters.Limit,
	}, nil
}

// ===== WORKFLOW TRANSITIONS =====

// AssignReviewers moves a submitted question under review. Admin only;
// both reviewers must be distinct verified holders of the reviewer role.
func (s *questionService) AssignReviewers(ctx context.Context, id string, req *AssignReviewersRequest, actor *models.User) (*QuestionResponse, error) {
	s.logger.Info("Assigning reviewers", "question_id", id, "actor_id", actorID(actor))

	if !policy.CanAssignReviewers(actor) {
		return nil, NewPermissionError(actorID(actor), id, "question", "assign_reviewers", "admin role required")
	}

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	if question.Status != models.StatusSubmitted {
		return nil, NewStateError("question", id, string(question.Status), "assign reviewers to")
	}

	errs := s.validator.GetBusinessValidator().ValidateReviewerAssignment(req)

	reviewer1, rerr1 := s.resolveReviewer(ctx, req.Reviewer1ID)
	if rerr1 != nil {
		errs = append(errs, *rerr1)
	}
	reviewer2, rerr2 := s.resolveReviewer(ctx, req.Reviewer2ID)
	if rerr2 != nil {
		errs = append(errs, *rerr2)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	updated := *question
	updated.Status = models.StatusUnderReview
	updated.Reviewer1ID = reviewer1.ID
	updated.Reviewer1Name = reviewer1.FullName()
	updated.Reviewer2ID = reviewer2.ID
	updated.Reviewer2Name = reviewer2.FullName()
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Question().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to assign reviewers: %w", err)
	}

	s.events.PublishReviewersAssigned(ctx, &updated, actor.ID)
	s.events.PublishQuestionStatusChanged(ctx, &updated, question.Status, actor.ID)

	return s.buildQuestionResponse(&updated, actor), nil
}

// DecideReview applies a reviewer decision to an under-review question.
// The status guard is checked before the actor so an illegal transition
// surfaces as a StateError even for a legitimate reviewer.
func (s *questionService) DecideReview(ctx context.Context, id string, req *ReviewDecisionRequest, actor *models.User) (*QuestionResponse, error) {
	s.logger.Info("Recording review decision", "question_id", id, "actor_id", actorID(actor), "decision", req.Decision)

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	if question.Status != models.StatusUnderReview {
		return nil, NewStateError("question", id, string(question.Status), "decide review on")
	}

	if actor == nil || (!actor.HasRole(models.RoleAdmin) && !question.IsAssignedReviewer(actorID(actor))) {
		return nil, NewPermissionError(actorID(actor), id, "question", "decide_review", "not one of the two assigned reviewers")
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}
	newStatus, ok := req.Decision.Status()
	if !ok {
		return nil, validator.ValidationErrors{{
			Field:   "decision",
			Message: "must be one of: approve reject revision",
			Value:   req.Decision,
			Rule:    "business_logic",
		}}
	}

	updated := *question
	updated.Status = newStatus
	updated.ReviewerID = actor.ID
	updated.ReviewerName = actor.FullName()
	if req.Feedback != nil {
		updated.Feedback = *req.Feedback
	}
	if req.Comment != nil {
		updated.ReviewerComment = *req.Comment
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Question().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to record review decision: %w", err)
	}

	s.events.PublishQuestionStatusChanged(ctx, &updated, question.Status, actor.ID)

	return s.buildQuestionResponse(&updated, actor), nil
}

// Resubmit moves a needs-revision question back to submitted. Both
// reviewer slots and the prior decision details are cleared so the
// question re-enters the pending pool and requires a fresh assignment.
func (s *questionService) Resubmit(ctx context.Context, id string, actor *models.User) (*QuestionResponse, error) {
	s.logger.Info("Resubmitting question", "question_id", id, "actor_id", actorID(actor))

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor == nil || question.AuthorID != actor.ID {
		return nil, NewPermissionError(actorID(actor), id, "question", "resubmit", "only the author may resubmit")
	}
	if question.Status != models.StatusNeedsRevision {
		return nil, NewStateError("question", id, string(question.Status), "resubmit")
	}

	updated := *question
	updated.Status = models.StatusSubmitted
	updated.ClearAssignment()
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.Question().Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to resubmit question: %w", err)
	}

	s.events.PublishQuestionStatusChanged(ctx, &updated, question.Status, actor.ID)

	return s.buildQuestionResponse(&updated, actor), nil
}
