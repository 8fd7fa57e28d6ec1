// Package events defines the outbound event contract for the exam bank.
// Review workflow and exam book lifecycle changes are published as
// domain events; consumers (notification delivery, analytics) live in
// other services.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	Source  = "exambank-service"
	Version = "1.0"
)

// Event types published by the service.
const (
	QuestionStatusChanged     = "question.status_changed"
	QuestionReviewersAssigned = "question.reviewers_assigned"
	ExamBookFinalized         = "exam_book.finalized"
	ExamBookPublished         = "exam_book.published"
)

type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps id, source, version and timestamp.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// QuestionStatusChangedData is the payload for QuestionStatusChanged.
type QuestionStatusChangedData struct {
	QuestionID string `json:"question_id"`
	AuthorID   string `json:"author_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	ActorID    string `json:"actor_id"`
	Feedback   string `json:"feedback,omitempty"`
}

// ReviewersAssignedData is the payload for QuestionReviewersAssigned.
type ReviewersAssignedData struct {
	QuestionID  string `json:"question_id"`
	Reviewer1ID string `json:"reviewer1_id"`
	Reviewer2ID string `json:"reviewer2_id"`
	AssignedBy  string `json:"assigned_by"`
}

// ExamBookLifecycleData is the payload for exam book lifecycle events.
type ExamBookLifecycleData struct {
	ExamBookID    string `json:"exam_book_id"`
	Title         string `json:"title"`
	Status        string `json:"status"`
	QuestionCount int    `json:"question_count"`
	ActorID       string `json:"actor_id"`
}
