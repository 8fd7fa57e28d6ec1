package validator

import (
	"github.com/SAP-F-2025/exambank-service/internal/models"
)

// QuestionCreateRequest carries a new question. Status selects the save
// action: "draft" keeps it private, "submitted" enters the review queue.
type QuestionCreateRequest struct {
	ClinicalVignette   string                 `json:"clinical_vignette" validate:"required"`
	LeadQuestion       string                 `json:"lead_question" validate:"required"`
	Type               models.QuestionType    `json:"type" validate:"omitempty,oneof=multiple_choice"`
	Subject            string                 `json:"subject" validate:"required,max=200"`
	Topic              string                 `json:"topic" validate:"required,max=200"`
	Options            []string               `json:"options" validate:"question_options"`
	CorrectAnswer      string                 `json:"correct_answer" validate:"required"`
	Explanation        string                 `json:"explanation" validate:"omitempty,max=5000"`
	Status             models.QuestionStatus  `json:"status" validate:"omitempty,oneof=draft submitted"`
	Tags               []string               `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	LearningObjectives []string               `json:"learning_objectives" validate:"required,min=1,dive,required"`
	Pathomechanism     models.Pathomechanism  `json:"pathomechanism" validate:"omitempty,pathomechanism"`
	Aspect             models.Aspect          `json:"aspect" validate:"omitempty,aspect"`
	Disease            string                 `json:"disease" validate:"omitempty,max=200"`
	References         string                 `json:"references" validate:"omitempty,max=2000"`
	PictureLink        string                 `json:"picture_link" validate:"omitempty,max=1000"`
}

// QuestionUpdateRequest patches an editable question.
type QuestionUpdateRequest struct {
	ClinicalVignette   *string                `json:"clinical_vignette" validate:"omitempty,min=1"`
	LeadQuestion       *string                `json:"lead_question" validate:"omitempty,min=1"`
	Subject            *string                `json:"subject" validate:"omitempty,max=200"`
	Topic              *string                `json:"topic" validate:"omitempty,max=200"`
	Options            []string               `json:"options" validate:"omitempty,question_options"`
	CorrectAnswer      *string                `json:"correct_answer"`
	Explanation        *string                `json:"explanation" validate:"omitempty,max=5000"`
	Tags               []string               `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	LearningObjectives []string               `json:"learning_objectives" validate:"omitempty,min=1,dive,required"`
	Pathomechanism     *models.Pathomechanism `json:"pathomechanism" validate:"omitempty,pathomechanism"`
	Aspect             *models.Aspect         `json:"aspect" validate:"omitempty,aspect"`
	Disease            *string                `json:"disease" validate:"omitempty,max=200"`
	References         *string                `json:"references" validate:"omitempty,max=2000"`
	PictureLink        *string                `json:"picture_link" validate:"omitempty,max=1000"`
	ReviewerComment    *string                `json:"reviewer_comment" validate:"omitempty,max=2000"`
}

// AssignReviewersRequest names the two reviewer slots.
type AssignReviewersRequest struct {
	Reviewer1ID string `json:"reviewer1_id" validate:"required"`
	Reviewer2ID string `json:"reviewer2_id" validate:"required"`
}

// ReviewDecisionRequest records a reviewer decision on an under-review
// question.
type ReviewDecisionRequest struct {
	Decision models.ReviewDecision `json:"decision" validate:"required,oneof=approve reject revision"`
	Feedback *string               `json:"feedback" validate:"omitempty,max=5000"`
	Comment  *string               `json:"comment" validate:"omitempty,max=2000"`
}

// ExamBookCreateRequest assembles approved questions into an exam book.
type ExamBookCreateRequest struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"required,max=2000"`
	Subject      string   `json:"subject" validate:"required,max=200"`
	Duration     int      `json:"duration" validate:"required,exam_duration"`
	Instructions string   `json:"instructions" validate:"omitempty,max=5000"`
	Semester     string   `json:"semester" validate:"required,max=50"`
	AcademicYear string   `json:"academic_year" validate:"required,max=20"`
	QuestionIDs  []string `json:"questions" validate:"required,min=1,dive,required"`
}

// ExamBookUpdateRequest replaces a draft exam book's fields in place; the
// validation is identical to create.
type ExamBookUpdateRequest = ExamBookCreateRequest

// CreateAccountRequest provisions a new user profile with the default
// restricted-lecturer role.
type CreateAccountRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Department *string `json:"department" validate:"omitempty,max=200"`
	Title      *string `json:"title" validate:"omitempty,max=100"`
}

// UpdateProfileRequest patches a user profile.
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,max=100"`
	LastName       *string `json:"last_name" validate:"omitempty,max=100"`
	Department     *string `json:"department" validate:"omitempty,max=200"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	Title          *string `json:"title" validate:"omitempty,max=100"`
	Bio            *string `json:"bio" validate:"omitempty,max=5000"`
	OfficeLocation *string `json:"office_location" validate:"omitempty,max=200"`
}

// UpdateRolesRequest replaces a user's role set. An empty set is allowed
// and normalizes to restricted-lecturer. Verified defaults to the side
// effect of granting a functional role when omitted.
type UpdateRolesRequest struct {
	Roles    []models.RoleType `json:"roles"`
	Verified *bool             `json:"verified"`
}
