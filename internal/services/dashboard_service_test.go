package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/exambank-service/internal/models"
)

func TestDashboardOverview(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewDashboardService(env.repo, testLogger())
	admin := env.addUser(testUser("admin-1", models.RoleAdmin))

	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusSubmitted))
	env.addQuestion(sampleQuestion("q-2", "lect-1", models.StatusApproved))
	under := sampleQuestion("q-3", "lect-2", models.StatusUnderReview)
	under.Reviewer1ID, under.Reviewer1Name = "rev-1", "Test rev-1"
	under.Reviewer2ID, under.Reviewer2Name = "rev-2", "Test rev-2"
	env.addQuestion(under)
	env.addExamBook(sampleExamBook("b-1", "coord-1", models.ExamBookDraft, "q-2"))

	dashboard, err := svc.Overview(context.Background(), admin)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}

	if dashboard.PendingAssignment != 1 {
		t.Errorf("pending_assignment = %d, want 1", dashboard.PendingAssignment)
	}
	if dashboard.OpenReviews != 1 {
		t.Errorf("open_reviews = %d, want 1", dashboard.OpenReviews)
	}
	if got := dashboard.StatusCounts[models.StatusApproved]; got != 1 {
		t.Errorf("approved count = %d, want 1", got)
	}
	if got := dashboard.ExamBookCounts[models.ExamBookDraft]; got != 1 {
		t.Errorf("draft book count = %d, want 1", got)
	}
	if len(dashboard.ReviewerWorkload) != 2 {
		t.Fatalf("reviewer workload entries = %d, want 2", len(dashboard.ReviewerWorkload))
	}
	for _, w := range dashboard.ReviewerWorkload {
		if w.OpenReviews != 1 {
			t.Errorf("reviewer %s open_reviews = %d, want 1", w.ReviewerID, w.OpenReviews)
		}
	}
	if len(dashboard.AuthorStats) != 2 {
		t.Errorf("author stats entries = %d, want 2", len(dashboard.AuthorStats))
	}
}

// Reviewers see counts but not the management breakdowns.
func TestDashboardOverviewReviewerView(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewDashboardService(env.repo, testLogger())
	reviewer := env.addUser(testUser("rev-1", models.RoleReviewer))
	env.addQuestion(sampleQuestion("q-1", "lect-1", models.StatusSubmitted))

	dashboard, err := svc.Overview(context.Background(), reviewer)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if dashboard.ReviewerWorkload != nil {
		t.Error("reviewer view should not include workload breakdown")
	}
	if dashboard.AuthorStats != nil {
		t.Error("reviewer view should not include author stats")
	}
}

func TestDashboardOverviewLecturerForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := NewReviewDashboardService(env.repo, testLogger())
	lecturer := env.addUser(testUser("lect-1", models.RoleLecturer))

	_, err := svc.Overview(context.Background(), lecturer)
	if !IsPermissionError(err) {
		t.Fatalf("Overview() error = %v, want PermissionError", err)
	}
}
