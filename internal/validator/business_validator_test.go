package validator

import (
	"testing"

	"github.com/SAP-F-2025/exambank-service/internal/models"
)

func validCreateRequest() *QuestionCreateRequest {
	return &QuestionCreateRequest{
		ClinicalVignette:   "A 60-year-old woman presents with progressive dyspnea.",
		LeadQuestion:       "What is the next diagnostic step?",
		Type:               models.MultipleChoice,
		Subject:            "Cardiology",
		Topic:              "Heart failure",
		Options:            []string{"Echocardiography", "CT", "MRI", "Stress test", "Biopsy"},
		CorrectAnswer:      "Echocardiography",
		Status:             models.StatusSubmitted,
		LearningObjectives: []string{"Select initial workup for suspected heart failure"},
		Pathomechanism:     models.PathoDegenerative,
		Aspect:             models.AspectDiagnosis,
	}
}

func TestValidateQuestionCreateOK(t *testing.T) {
	bv := NewBusinessValidator()
	if errs := bv.ValidateQuestionCreate(validCreateRequest()); len(errs) != 0 {
		t.Errorf("valid request rejected: %+v", errs)
	}
}

func TestValidateQuestionCreateFourOptions(t *testing.T) {
	bv := NewBusinessValidator()
	req := validCreateRequest()
	req.Options = []string{"Echocardiography", "CT", "MRI", "Stress test", ""}

	errs := bv.ValidateQuestionCreate(req)
	if len(errs) == 0 {
		t.Fatal("request with 4 filled options should fail")
	}
	if !errs.HasField("options") {
		t.Errorf("errors should mention options, got %+v", errs)
	}
}

func TestValidateQuestionCreateAccumulatesAllViolations(t *testing.T) {
	bv := NewBusinessValidator()
	req := validCreateRequest()
	req.ClinicalVignette = ""
	req.Topic = ""
	req.LearningObjectives = nil
	req.Options = []string{"only one"}

	errs := bv.ValidateQuestionCreate(req)
	for _, field := range []string{"ClinicalVignette", "Topic", "LearningObjectives"} {
		if !errs.HasField(field) {
			t.Errorf("missing violation for %s in %+v", field, errs)
		}
	}
	if !errs.HasField("options") && !errs.HasField("Options") {
		t.Errorf("missing violation for options in %+v", errs)
	}
}

func TestValidateQuestionCreateCorrectAnswerNotAmongOptions(t *testing.T) {
	bv := NewBusinessValidator()
	req := validCreateRequest()
	req.CorrectAnswer = "Something else entirely"

	errs := bv.ValidateQuestionCreate(req)
	if !errs.HasField("correct_answer") {
		t.Errorf("errors should mention correct_answer, got %+v", errs)
	}
}

func TestValidateReviewerAssignmentSameReviewerTwice(t *testing.T) {
	bv := NewBusinessValidator()
	errs := bv.ValidateReviewerAssignment(&AssignReviewersRequest{
		Reviewer1ID: "rev-1",
		Reviewer2ID: "rev-1",
	})
	if len(errs) == 0 {
		t.Fatal("assigning the same reviewer twice should fail")
	}
	if !errs.HasField("reviewer2_id") {
		t.Errorf("errors should mention reviewer2_id, got %+v", errs)
	}
}

func TestValidateExamBookCreate(t *testing.T) {
	bv := NewBusinessValidator()

	valid := &ExamBookCreateRequest{
		Title:        "Surgery Final",
		Description:  "Final exam",
		Subject:      "Surgery",
		Duration:     60,
		Semester:     "SS",
		AcademicYear: "2026",
		QuestionIDs:  []string{"q-1", "q-2"},
	}
	if errs := bv.ValidateExamBookCreate(valid); len(errs) != 0 {
		t.Errorf("valid exam book rejected: %+v", errs)
	}

	short := *valid
	short.Duration = 20
	if errs := bv.ValidateExamBookCreate(&short); !errs.HasField("Duration") {
		t.Errorf("duration below 30 should fail, got %+v", errs)
	}

	empty := *valid
	empty.QuestionIDs = nil
	if errs := bv.ValidateExamBookCreate(&empty); len(errs) == 0 {
		t.Error("empty question selection should fail")
	}

	dup := *valid
	dup.QuestionIDs = []string{"q-1", "q-1"}
	if errs := bv.ValidateExamBookCreate(&dup); !errs.HasField("questions") {
		t.Errorf("duplicate question ids should fail, got %+v", errs)
	}
}
