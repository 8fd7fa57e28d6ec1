package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/exambank-service/internal/events"
	"github.com/SAP-F-2025/exambank-service/internal/models"
)

// notificationEventService publishes workflow notifications as domain
// events. Publishing happens after the owning operation has persisted;
// a broker failure is logged and swallowed so notification delivery
// never rolls back a committed change.
type notificationEventService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewNotificationEventService(publisher events.EventPublisher, logger *slog.Logger) *notificationEventService {
	return &notificationEventService{publisher: publisher, logger: logger}
}

func (s *notificationEventService) publish(ctx context.Context, event *events.Event) {
	if s == nil || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "event_id", event.ID, "error", err)
	}
}

func (s *notificationEventService) PublishQuestionStatusChanged(ctx context.Context, question *models.Question, oldStatus models.QuestionStatus, actorID string) {
	s.publish(ctx, events.NewEvent(events.QuestionStatusChanged, events.QuestionStatusChangedData{
		QuestionID: question.ID,
		AuthorID:   question.AuthorID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(question.Status),
		ActorID:    actorID,
		Feedback:   question.Feedback,
	}))
}

func (s *notificationEventService) PublishReviewersAssigned(ctx context.Context, question *models.Question, assignedBy string) {
	s.publish(ctx, events.NewEvent(events.QuestionReviewersAssigned, events.ReviewersAssignedData{
		QuestionID:  question.ID,
		Reviewer1ID: question.Reviewer1ID,
		Reviewer2ID: question.Reviewer2ID,
		AssignedBy:  assignedBy,
	}))
}

func (s *notificationEventService) PublishExamBookLifecycle(ctx context.Context, eventType string, book *models.ExamBook, actorID string) {
	s.publish(ctx, events.NewEvent(eventType, events.ExamBookLifecycleData{
		ExamBookID:    book.ID,
		Title:         book.Title,
		Status:        string(book.Status),
		QuestionCount: len(book.QuestionIDs),
		ActorID:       actorID,
	}))
}

func (s *notificationEventService) Close() error {
	if s == nil || s.publisher == nil {
		return nil
	}
	return s.publisher.Close()
}
