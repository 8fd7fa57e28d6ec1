package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SAP-F-2025/exambank-service/internal/events"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

func TestSubmitQuestion(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))

	resp, err := svc.Submit(context.Background(), sampleCreateRequest(), author)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if resp.Status != models.StatusSubmitted {
		t.Errorf("status = %s, want %s", resp.Status, models.StatusSubmitted)
	}
	if resp.AuthorID != author.ID {
		t.Errorf("author_id = %s, want %s", resp.AuthorID, author.ID)
	}
	if resp.ID == "" {
		t.Error("expected a generated id")
	}
	if !resp.Status.Valid() {
		t.Errorf("status %q is not a defined value", resp.Status)
	}
}

func TestSubmitQuestionDefaultsToDraft(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))

	req := sampleCreateRequest()
	req.Status = ""
	resp, err := svc.Submit(context.Background(), req, author)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if resp.Status != models.StatusDraft {
		t.Errorf("status = %s, want %s", resp.Status, models.StatusDraft)
	}
	if got := len(env.publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("draft save published %d events, want 0", got)
	}
}

func TestSubmitQuestionWithFourOptions(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))

	req := sampleCreateRequest()
	req.Options = req.Options[:4]
	_, err := svc.Submit(context.Background(), req, author)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Submit() error = %v, want ValidationErrors", err)
	}
	if !strings.Contains(verrs.Error(), "options") && !verrs.HasField("options") {
		t.Errorf("error %q should mention options", verrs.Error())
	}
}

func TestSubmitQuestionRestrictedLecturer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	restricted := env.addUser(testUser("restricted-1", models.RoleRestrictedLecturer))

	_, err := svc.Submit(context.Background(), sampleCreateRequest(), restricted)
	if !IsPermissionError(err) {
		t.Fatalf("Submit() error = %v, want PermissionError", err)
	}
}

func TestSubmitQuestionPersistFirst(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	env.repo.questionRepo.failNext = errors.New("disk full")

	_, err := svc.Submit(context.Background(), sampleCreateRequest(), author)
	if err == nil {
		t.Fatal("Submit() should fail when the store fails")
	}
	if len(env.repo.questionRepo.questions) != 0 {
		t.Error("failed save must leave the store empty")
	}
	if got := len(env.publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("failed save published %d events, want 0", got)
	}
}

func TestUpdateQuestion(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", author.ID, models.StatusDraft))

	topic := "Heart failure"
	resp, err := svc.Update(context.Background(), "q-1", &UpdateQuestionRequest{Topic: &topic}, author)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if resp.Topic != topic {
		t.Errorf("topic = %s, want %s", resp.Topic, topic)
	}
}

func TestUpdateQuestionWrongActor(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	other := env.addUser(testUser("lect-2", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", author.ID, models.StatusDraft))

	topic := "Heart failure"
	_, err := svc.Update(context.Background(), "q-1", &UpdateQuestionRequest{Topic: &topic}, other)
	if !IsPermissionError(err) {
		t.Fatalf("Update() error = %v, want PermissionError", err)
	}
}

func TestUpdateQuestionSubmittedIsLocked(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", author.ID, models.StatusSubmitted))

	topic := "Heart failure"
	_, err := svc.Update(context.Background(), "q-1", &UpdateQuestionRequest{Topic: &topic}, author)
	if !IsPermissionError(err) {
		t.Fatalf("Update() error = %v, want PermissionError", err)
	}
}

func TestAssignReviewers(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	admin := env.addUser(testUser("admin-1", models.RoleAdmin))
	r1 := env.addUser(testUser("rev-1", models.RoleReviewer))
	r2 := env.addUser(testUser("rev-2", models.RoleReviewer))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusSubmitted))

	resp, err := svc.AssignReviewers(context.Background(), "q-1", &AssignReviewersRequest{Reviewer1ID: r1.ID, Reviewer2ID: r2.ID}, admin)
	if err != nil {
		t.Fatalf("AssignReviewers() error = %v", err)
	}
	if resp.Status != models.StatusUnderReview {
		t.Errorf("status = %s, want %s", resp.Status, models.StatusUnderReview)
	}
	if resp.Reviewer1ID != r1.ID || resp.Reviewer2ID != r2.ID {
		t.Errorf("reviewer slots = %s/%s, want %s/%s", resp.Reviewer1ID, resp.Reviewer2ID, r1.ID, r2.ID)
	}

	published := env.publisher.GetPublishedEvents()
	var sawAssignment bool
	for _, e := range published {
		if e.Type == events.QuestionReviewersAssigned {
			sawAssignment = true
		}
	}
	if !sawAssignment {
		t.Error("expected a reviewers-assigned event")
	}
}

func TestAssignReviewersSameIDTwice(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	admin := env.addUser(testUser("admin-1", models.RoleAdmin))
	r1 := env.addUser(testUser("rev-1", models.RoleReviewer))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusSubmitted))

	_, err := svc.AssignReviewers(context.Background(), "q-1", &AssignReviewersRequest{Reviewer1ID: r1.ID, Reviewer2ID: r1.ID}, admin)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("AssignReviewers() error = %v, want ValidationErrors", err)
	}
	if !strings.Contains(verrs.Error(), "different reviewers") && !verrs.HasField("reviewer2_id") {
		t.Errorf("error %q should report the duplicate reviewer", verrs.Error())
	}
}

func TestAssignReviewersNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	coordinator := env.addUser(testUser("coord-1", models.RoleCoordinator))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusSubmitted))

	_, err := svc.AssignReviewers(context.Background(), "q-1", &AssignReviewersRequest{Reviewer1ID: "rev-1", Reviewer2ID: "rev-2"}, coordinator)
	if !IsPermissionError(err) {
		t.Fatalf("AssignReviewers() error = %v, want PermissionError", err)
	}
}

func TestAssignReviewersWrongStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	admin := env.addUser(testUser("admin-1", models.RoleAdmin))
	env.addUser(testUser("rev-1", models.RoleReviewer))
	env.addUser(testUser("rev-2", models.RoleReviewer))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusDraft))

	_, err := svc.AssignReviewers(context.Background(), "q-1", &AssignReviewersRequest{Reviewer1ID: "rev-1", Reviewer2ID: "rev-2"}, admin)
	if !IsStateError(err) {
		t.Fatalf("AssignReviewers() error = %v, want StateError", err)
	}
}

func TestAssignReviewersCandidateWithoutRole(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	admin := env.addUser(testUser("admin-1", models.RoleAdmin))
	env.addUser(testUser("rev-1", models.RoleReviewer))
	env.addUser(testUser("lect-2", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusSubmitted))

	_, err := svc.AssignReviewers(context.Background(), "q-1", &AssignReviewersRequest{Reviewer1ID: "rev-1", Reviewer2ID: "lect-2"}, admin)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("AssignReviewers() error = %v, want ValidationErrors", err)
	}
}

func TestDecideReview(t *testing.T) {
	tests := []struct {
		name       string
		decision   models.ReviewDecision
		wantStatus models.QuestionStatus
	}{
		{"approve", models.DecisionApprove, models.StatusApproved},
		{"reject", models.DecisionReject, models.StatusRejected},
		{"revision", models.DecisionRevision, models.StatusNeedsRevision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			svc := env.questionService()
			reviewer := env.addUser(testUser("rev-1", models.RoleReviewer))
			q := sampleQuestion("q-1", "lect-1", models.StatusUnderReview)
			q.Reviewer1ID = reviewer.ID
			q.Reviewer2ID = "rev-2"
			env.addQuestion(q)

			feedback := "needs a sharper vignette"
			resp, err := svc.DecideReview(context.Background(), "q-1", &ReviewDecisionRequest{Decision: tt.decision, Feedback: &feedback}, reviewer)
			if err != nil {
				t.Fatalf("DecideReview() error = %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", resp.Status, tt.wantStatus)
			}
			if resp.ReviewerID != reviewer.ID {
				t.Errorf("reviewer_id = %s, want %s", resp.ReviewerID, reviewer.ID)
			}
			if resp.Feedback != feedback {
				t.Errorf("feedback = %q, want %q", resp.Feedback, feedback)
			}
		})
	}
}

func TestDecideReviewUnassignedReviewer(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	outsider := env.addUser(testUser("rev-3", models.RoleReviewer))
	q := sampleQuestion("q-1", "lect-1", models.StatusUnderReview)
	q.Reviewer1ID = "rev-1"
	q.Reviewer2ID = "rev-2"
	env.addQuestion(q)

	_, err := svc.DecideReview(context.Background(), "q-1", &ReviewDecisionRequest{Decision: models.DecisionApprove}, outsider)
	if !IsPermissionError(err) {
		t.Fatalf("DecideReview() error = %v, want PermissionError", err)
	}
}

func TestDecideReviewAdminBypassesAssignment(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	admin := env.addUser(testUser("admin-1", models.RoleAdmin))
	q := sampleQuestion("q-1", "lect-1", models.StatusUnderReview)
	q.Reviewer1ID = "rev-1"
	q.Reviewer2ID = "rev-2"
	env.addQuestion(q)

	resp, err := svc.DecideReview(context.Background(), "q-1", &ReviewDecisionRequest{Decision: models.DecisionApprove}, admin)
	if err != nil {
		t.Fatalf("DecideReview() error = %v", err)
	}
	if resp.Status != models.StatusApproved {
		t.Errorf("status = %s, want %s", resp.Status, models.StatusApproved)
	}
}

// The status guard runs before the permission check: deciding on an
// already-approved question is a StateError even for its own reviewer.
func TestDecideReviewAlreadyApproved(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	reviewer := env.addUser(testUser("rev-1", models.RoleReviewer))
	q := sampleQuestion("q-1", "lect-1", models.StatusApproved)
	q.Reviewer1ID = reviewer.ID
	q.Reviewer2ID = "rev-2"
	env.addQuestion(q)

	_, err := svc.DecideReview(context.Background(), "q-1", &ReviewDecisionRequest{Decision: models.DecisionApprove}, reviewer)
	if !IsStateError(err) {
		t.Fatalf("DecideReview() error = %v, want StateError", err)
	}

	stored, _ := env.repo.questionRepo.GetByID(context.Background(), "q-1")
	if stored.Status != models.StatusApproved {
		t.Errorf("failed decision changed status to %s", stored.Status)
	}
}

func TestResubmit(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	q := sampleQuestion("q-1", author.ID, models.StatusNeedsRevision)
	q.Reviewer1ID = "rev-1"
	q.Reviewer2ID = "rev-2"
	q.ReviewerID = "rev-1"
	q.Feedback = "fix the distractors"
	env.addQuestion(q)

	resp, err := svc.Resubmit(context.Background(), "q-1", author)
	if err != nil {
		t.Fatalf("Resubmit() error = %v", err)
	}
	if resp.Status != models.StatusSubmitted {
		t.Errorf("status = %s, want %s", resp.Status, models.StatusSubmitted)
	}
	// The question re-enters the pending pool: assignment and decision
	// details must be gone.
	if resp.Reviewer1ID != "" || resp.Reviewer2ID != "" || resp.ReviewerID != "" || resp.Feedback != "" {
		t.Errorf("resubmit kept assignment: %+v", resp.Question)
	}
}

func TestResubmitWrongStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", author.ID, models.StatusDraft))

	_, err := svc.Resubmit(context.Background(), "q-1", author)
	if !IsStateError(err) {
		t.Fatalf("Resubmit() error = %v, want StateError", err)
	}
}

func TestResubmitNonAuthor(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	other := env.addUser(testUser("lect-2", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusNeedsRevision))

	_, err := svc.Resubmit(context.Background(), "q-1", other)
	if !IsPermissionError(err) {
		t.Fatalf("Resubmit() error = %v, want PermissionError", err)
	}
}

func TestDeleteQuestion(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", author.ID, models.StatusDraft))

	if err := svc.Delete(context.Background(), "q-1", author); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := env.repo.questionRepo.GetByID(context.Background(), "q-1"); err == nil {
		t.Error("question still present after delete")
	}
}

func TestDeleteQuestionApprovedByAuthor(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", author.ID, models.StatusApproved))

	err := svc.Delete(context.Background(), "q-1", author)
	if !IsPermissionError(err) {
		t.Fatalf("Delete() error = %v, want PermissionError", err)
	}
}

func TestGetQuestionNotFound(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	admin := env.addUser(testUser("admin-1", models.RoleAdmin))

	_, err := svc.GetByID(context.Background(), "missing", admin)
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrQuestionNotFound", err)
	}
}

func TestListQuestionsVisibility(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	author := env.addUser(testUser("lect-1", models.RoleLecturer))
	env.addQuestion(sampleQuestion("q-1", author.ID, models.StatusDraft))
	env.addQuestion(sampleQuestion("q-2", "lect-2", models.StatusDraft))
	env.addQuestion(sampleQuestion("q-3", "lect-2", models.StatusApproved))

	resp, err := svc.List(context.Background(), repositories.QuestionFilters{}, author)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	// A lecturer sees only their own questions; another author's draft
	// and approved pool stay hidden.
	if len(resp.Questions) != 1 {
		t.Fatalf("visible questions = %d, want 1", len(resp.Questions))
	}
	if resp.Questions[0].ID != "q-1" {
		t.Errorf("visible question = %s, want q-1", resp.Questions[0].ID)
	}
}

func TestListQuestionsCoordinatorSeesApproved(t *testing.T) {
	env := newTestEnv(t)
	svc := env.questionService()
	coordinator := env.addUser(testUser("coord-1", models.RoleCoordinator))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusDraft))
	env.addQuestion(sampleQuestion("q-2", "lect-1", models.StatusApproved))

	resp, err := svc.List(context.Background(), repositories.QuestionFilters{}, coordinator)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(resp.Questions) != 1 {
		t.Fatalf("visible questions = %d, want 1", len(resp.Questions))
	}
	if resp.Questions[0].ID != "q-2" {
		t.Errorf("visible question = %s, want q-2", resp.Questions[0].ID)
	}
}
