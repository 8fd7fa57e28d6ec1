package models

import "time"

type ExamBookStatus string

const (
	ExamBookDraft     ExamBookStatus = "draft"
	ExamBookFinalized ExamBookStatus = "finalized"
	ExamBookPublished ExamBookStatus = "published"
)

func (s ExamBookStatus) Valid() bool {
	switch s {
	case ExamBookDraft, ExamBookFinalized, ExamBookPublished:
		return true
	}
	return false
}

// MinExamDuration is the minimum exam length in minutes.
const MinExamDuration = 30

// ExamBook is a named, time-boxed bundle of approved questions for an
// examination event. Persisted as JSON in the exam book blob store.
//
// QuestionIDs is an ordered list of question identifiers; a referenced
// question may have been deleted since, in which case it renders as
// "question not found" rather than being cascaded out of the book.
type ExamBook struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Subject      string         `json:"subject"`
	TotalPoints  int            `json:"total_points"` // one point per question
	Duration     int            `json:"duration"`     // minutes
	Instructions string         `json:"instructions,omitempty"`
	QuestionIDs  []string       `json:"questions"`
	Status       ExamBookStatus `json:"status"`
	Semester     string         `json:"semester"`
	AcademicYear string         `json:"academic_year"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
