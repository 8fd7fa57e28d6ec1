package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/policy"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

func actorID(actor *models.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}

func pageFromOffset(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

func (s *questionService) getQuestion(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	return question, nil
}

// resolveReviewer looks up a reviewer candidate and checks the role
// requirement. Lookup failures are reported as field violations so an
// assignment with two bad ids surfaces both at once.
func (s *questionService) resolveReviewer(ctx context.Context, id string) (*models.User, *validator.ValidationError) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		return nil, &validator.ValidationError{
			Field:   "reviewer_id",
			Message: fmt.Sprintf("reviewer %s not found", id),
			Value:   id,
			Rule:    "business_logic",
		}
	}
	if !user.IsVerified || !user.HasRole(models.RoleReviewer) {
		return nil, &validator.ValidationError{
			Field:   "reviewer_id",
			Message: fmt.Sprintf("user %s does not hold the reviewer role", id),
			Value:   id,
			Rule:    "business_logic",
		}
	}
	return user, nil
}

func (s *questionService) buildQuestionResponse(question *models.Question, actor *models.User) *QuestionResponse {
	return &QuestionResponse{
		Question:  question,
		CanEdit:   policy.CanEditQuestion(actor, question),
		CanDelete: policy.CanDeleteQuestion(actor, question),
		CanReview: policy.CanDecideReview(actor, question),
	}
}

func applyQuestionPatch(question *models.Question, req *UpdateQuestionRequest) {
	if req.ClinicalVignette != nil {
		question.ClinicalVignette = *req.ClinicalVignette
	}
	if req.LeadQuestion != nil {
		question.LeadQuestion = *req.LeadQuestion
	}
	if req.Subject != nil {
		question.Subject = *req.Subject
	}
	if req.Topic != nil {
		question.Topic = *req.Topic
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Explanation != nil {
		question.Explanation = *req.Explanation
	}
	if req.Tags != nil {
		question.Tags = req.Tags
	}
	if req.LearningObjectives != nil {
		question.LearningObjectives = req.LearningObjectives
	}
	if req.Pathomechanism != nil {
		question.Pathomechanism = *req.Pathomechanism
	}
	if req.Aspect != nil {
		question.Aspect = *req.Aspect
	}
	if req.Disease != nil {
		question.Disease = *req.Disease
	}
	if req.References != nil {
		question.References = *req.References
	}
	if req.PictureLink != nil {
		question.PictureLink = *req.PictureLink
	}
	if req.ReviewerComment != nil {
		question.ReviewerComment = *req.ReviewerComment
	}
}
