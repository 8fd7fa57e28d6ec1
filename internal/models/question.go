package models

import "time"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
)

// OptionCount is fixed for multiple-choice questions: one correct answer
// plus four distractors.
const OptionCount = 5

type QuestionStatus string

const (
	StatusDraft         QuestionStatus = "draft"
	StatusSubmitted     QuestionStatus = "submitted"
	StatusUnderReview   QuestionStatus = "under-review"
	StatusApproved      QuestionStatus = "approved"
	StatusRejected      QuestionStatus = "rejected"
	StatusNeedsRevision QuestionStatus = "needs-revision"
)

func (s QuestionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusNeedsRevision:
		return true
	}
	return false
}

// Editable reports whether the author may still change or delete the
// question in this status.
func (s QuestionStatus) Editable() bool {
	return s == StatusDraft || s == StatusNeedsRevision
}

type ReviewDecision string

const (
	DecisionApprove  ReviewDecision = "approve"
	DecisionReject   ReviewDecision = "reject"
	DecisionRevision ReviewDecision = "revision"
)

// Status maps a review decision to the resulting question status.
func (d ReviewDecision) Status() (QuestionStatus, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	case DecisionRevision:
		return StatusNeedsRevision, true
	}
	return "", false
}

type Pathomechanism string

const (
	PathoInflammatory  Pathomechanism = "inflammatory"
	PathoInfectious    Pathomechanism = "infectious"
	PathoNeoplastic    Pathomechanism = "neoplastic"
	PathoVascular      Pathomechanism = "vascular"
	PathoMetabolic     Pathomechanism = "metabolic"
	PathoDegenerative  Pathomechanism = "degenerative"
	PathoCongenital    Pathomechanism = "congenital"
	PathoTraumatic     Pathomechanism = "traumatic"
	PathoNonApplicable Pathomechanism = "non-applicable"
)

func (p Pathomechanism) Valid() bool {
	switch p {
	case PathoInflammatory, PathoInfectious, PathoNeoplastic, PathoVascular,
		PathoMetabolic, PathoDegenerative, PathoCongenital, PathoTraumatic,
		PathoNonApplicable:
		return true
	}
	return false
}

type Aspect string

const (
	AspectKnowledge  Aspect = "knowledge"
	AspectDiagnosis  Aspect = "diagnosis"
	AspectTherapy    Aspect = "therapy"
	AspectEmergency  Aspect = "emergency"
	AspectPrevention Aspect = "prevention"
)

func (a Aspect) Valid() bool {
	switch a {
	case AspectKnowledge, AspectDiagnosis, AspectTherapy, AspectEmergency, AspectPrevention:
		return true
	}
	return false
}

// Question is a clinical multiple-choice exam question. Persisted as JSON
// in the question blob store, never through GORM.
type Question struct {
	ID               string         `json:"id"`
	ClinicalVignette string         `json:"clinical_vignette"`
	LeadQuestion     string         `json:"lead_question"`
	Type             QuestionType   `json:"type"`
	Subject          string         `json:"subject"`
	Topic            string         `json:"topic"`
	Options          []string       `json:"options"` // exactly 5, correct answer included
	CorrectAnswer    string         `json:"correct_answer"`
	Explanation      string         `json:"explanation"`
	Status           QuestionStatus `json:"status"`

	// Authorship
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`

	// Review assignment (two named slots) and the deciding reviewer.
	Reviewer1ID     string `json:"reviewer1_id,omitempty"`
	Reviewer1Name   string `json:"reviewer1_name,omitempty"`
	Reviewer2ID     string `json:"reviewer2_id,omitempty"`
	Reviewer2Name   string `json:"reviewer2_name,omitempty"`
	ReviewerID      string `json:"reviewer_id,omitempty"`
	ReviewerName    string `json:"reviewer_name,omitempty"`
	Feedback        string `json:"feedback,omitempty"`
	ReviewerComment string `json:"reviewer_comment,omitempty"`

	// Taxonomy
	Tags               []string       `json:"tags,omitempty"`
	LearningObjectives []string       `json:"learning_objectives"`
	Pathomechanism     Pathomechanism `json:"pathomechanism"`
	Aspect             Aspect         `json:"aspect"`
	Disease            string         `json:"disease,omitempty"`
	References         string         `json:"references,omitempty"`
	PictureLink        string         `json:"picture_link,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAssignedReviewer reports whether userID occupies one of the two
// reviewer slots.
func (q *Question) IsAssignedReviewer(userID string) bool {
	if q == nil || userID == "" {
		return false
	}
	return q.Reviewer1ID == userID || q.Reviewer2ID == userID
}

// HasCorrectOption reports whether the recorded correct answer appears
// among the options.
func (q *Question) HasCorrectOption() bool {
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

// ClearAssignment empties both reviewer slots and any recorded decision
// details. Used when a revised question re-enters the pending pool.
func (q *Question) ClearAssignment() {
	q.Reviewer1ID, q.Reviewer1Name = "", ""
	q.Reviewer2ID, q.Reviewer2Name = "", ""
	q.ReviewerID, q.ReviewerName = "", ""
	q.Feedback = ""
}
