package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/exambank-service/internal/models"
)

// BusinessValidator handles business rule validation on top of tag-based
// struct validation. All rules for a request run to completion; the result
// lists every violation, never just the first.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateQuestionCreate validates a question submission. Beyond struct
// tags it checks that the correct answer appears among the five options
// and that no option is blank.
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateOptions(req.Options, req.CorrectAnswer)...)

	return errors
}

// ValidateQuestionUpdate validates a question patch against the existing
// question: if options or the correct answer change, the pair must still
// be consistent.
func (bv *BusinessValidator) ValidateQuestionUpdate(req *QuestionUpdateRequest, existing *models.Question) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	options := existing.Options
	if req.Options != nil {
		options = req.Options
	}
	correct := existing.CorrectAnswer
	if req.CorrectAnswer != nil {
		correct = *req.CorrectAnswer
	}
	errors = append(errors, bv.validateOptions(options, correct)...)

	return errors
}

func (bv *BusinessValidator) validateOptions(options []string, correctAnswer string) ValidationErrors {
	var errors ValidationErrors

	filled := 0
	correctPresent := false
	for _, opt := range options {
		if strings.TrimSpace(opt) == "" {
			continue
		}
		filled++
		if opt == correctAnswer {
			correctPresent = true
		}
	}

	if filled != models.OptionCount || len(options) != models.OptionCount {
		errors = append(errors, ValidationError{
			Field:   "options",
			Message: fmt.Sprintf("multiple-choice questions need exactly %d non-empty options", models.OptionCount),
			Value:   len(options),
			Rule:    "question_options",
		})
	}
	if correctAnswer != "" && !correctPresent {
		errors = append(errors, ValidationError{
			Field:   "correct_answer",
			Message: "correct answer must be one of the options",
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateReviewerAssignment checks the two reviewer slots are distinct.
// Whether each id resolves to a verified reviewer is checked by the
// workflow engine against the identity store.
func (bv *BusinessValidator) ValidateReviewerAssignment(req *AssignReviewersRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Reviewer1ID != "" && req.Reviewer1ID == req.Reviewer2ID {
		errors = append(errors, ValidationError{
			Field:   "reviewer2_id",
			Message: "two different reviewers must be assigned",
			Value:   req.Reviewer2ID,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateExamBookCreate validates exam book form data plus the question
// selection shape. Approval status of each selected question is checked by
// the assembly engine against the question store.
func (bv *BusinessValidator) ValidateExamBookCreate(req *ExamBookCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	seen := make(map[string]bool, len(req.QuestionIDs))
	for _, id := range req.QuestionIDs {
		if seen[id] {
			errors = append(errors, ValidationError{
				Field:   "questions",
				Message: fmt.Sprintf("question %s selected more than once", id),
				Value:   id,
				Rule:    "business_logic",
			})
		}
		seen[id] = true
	}

	return errors
}

// ValidateRoleUpdate checks every requested role type is known.
func (bv *BusinessValidator) ValidateRoleUpdate(req *UpdateRolesRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	for _, role := range req.Roles {
		if !role.Valid() {
			errors = append(errors, ValidationError{
				Field:   "roles",
				Message: fmt.Sprintf("unknown role type %q", role),
				Value:   role,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Exam duration in minutes, 30 minimum.
	bv.validate.RegisterValidation("exam_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= models.MinExamDuration
	})

	// Exactly 5 options, none blank.
	bv.validate.RegisterValidation("question_options", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Slice {
			return false
		}
		if field.Len() != models.OptionCount {
			return false
		}
		for i := 0; i < field.Len(); i++ {
			if strings.TrimSpace(field.Index(i).String()) == "" {
				return false
			}
		}
		return true
	})

	bv.validate.RegisterValidation("pathomechanism", func(fl validator.FieldLevel) bool {
		return models.Pathomechanism(fl.Field().String()).Valid()
	})

	bv.validate.RegisterValidation("aspect", func(fl validator.FieldLevel) bool {
		return models.Aspect(fl.Field().String()).Valid()
	})
}
