package policy

import (
	"testing"

	"github.com/SAP-F-2025/exambank-service/internal/models"
)

func userWith(id string, verified bool, roles ...models.RoleType) *models.User {
	u := &models.User{ID: id, IsVerified: verified}
	for _, r := range roles {
		u.Roles = append(u.Roles, models.Role{UserID: id, Type: r})
	}
	return u
}

func TestNilUserAlwaysFalse(t *testing.T) {
	book := &models.ExamBook{ID: "eb-1", CreatedBy: "u-1", Status: models.ExamBookDraft}
	question := &models.Question{ID: "q-1", Status: models.StatusUnderReview, Reviewer1ID: "r-1", Reviewer2ID: "r-2"}

	checks := map[string]bool{
		"HasRole":                 HasRole(nil, models.RoleAdmin),
		"HasPermission":           HasPermission(nil, "questions:review"),
		"IsVerifiedAndFunctional": IsVerifiedAndFunctional(nil),
		"CanViewExamBook":         CanViewExamBook(nil, book),
		"CanEditExamBook":         CanEditExamBook(nil, book),
		"CanAssignReviewers":      CanAssignReviewers(nil),
		"CanDecideReview":         CanDecideReview(nil, question),
		"CanEditQuestion":         CanEditQuestion(nil, question),
		"CanSubmitQuestion":       CanSubmitQuestion(nil),
	}
	for name, got := range checks {
		if got {
			t.Errorf("%s(nil, ...) = true, want false", name)
		}
	}
}

func TestIsVerifiedAndFunctional(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"verified lecturer", userWith("u-1", true, models.RoleLecturer), true},
		{"unverified lecturer", userWith("u-1", false, models.RoleLecturer), false},
		{"verified restricted only", userWith("u-1", true, models.RoleRestrictedLecturer), false},
		{"no roles", userWith("u-1", true), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVerifiedAndFunctional(tt.user); got != tt.want {
				t.Errorf("IsVerifiedAndFunctional() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanViewExamBook(t *testing.T) {
	book := &models.ExamBook{ID: "eb-1", CreatedBy: "creator", Status: models.ExamBookDraft}

	if !CanViewExamBook(userWith("admin", true, models.RoleAdmin), book) {
		t.Error("admin should view any exam book")
	}
	if !CanViewExamBook(userWith("creator", true, models.RoleCoordinator), book) {
		t.Error("creator should view own exam book")
	}
	if CanViewExamBook(userWith("other", true, models.RoleCoordinator), book) {
		t.Error("non-creator coordinator should not view someone else's book")
	}
}

func TestCanEditExamBook(t *testing.T) {
	creator := userWith("creator", true, models.RoleCoordinator)
	admin := userWith("admin", true, models.RoleAdmin)

	draft := &models.ExamBook{ID: "eb-1", CreatedBy: "creator", Status: models.ExamBookDraft}
	finalized := &models.ExamBook{ID: "eb-2", CreatedBy: "creator", Status: models.ExamBookFinalized}

	if !CanEditExamBook(creator, draft) {
		t.Error("creator should edit own draft")
	}
	if !CanEditExamBook(admin, draft) {
		t.Error("admin should edit any draft")
	}
	if CanEditExamBook(creator, finalized) {
		t.Error("finalized book must not be editable, even by its creator")
	}
	if CanEditExamBook(admin, finalized) {
		t.Error("finalized book must not be editable, even by an admin")
	}
}

func TestCanDecideReview(t *testing.T) {
	underReview := &models.Question{ID: "q-1", Status: models.StatusUnderReview, Reviewer1ID: "r-1", Reviewer2ID: "r-2"}
	approved := &models.Question{ID: "q-2", Status: models.StatusApproved, Reviewer1ID: "r-1", Reviewer2ID: "r-2"}

	tests := []struct {
		name     string
		user     *models.User
		question *models.Question
		want     bool
	}{
		{"assigned reviewer 1", userWith("r-1", true, models.RoleReviewer), underReview, true},
		{"assigned reviewer 2", userWith("r-2", true, models.RoleReviewer), underReview, true},
		{"admin", userWith("a-1", true, models.RoleAdmin), underReview, true},
		{"unassigned reviewer", userWith("r-3", true, models.RoleReviewer), underReview, false},
		{"assigned reviewer, wrong status", userWith("r-1", true, models.RoleReviewer), approved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDecideReview(tt.user, tt.question); got != tt.want {
				t.Errorf("CanDecideReview() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanEditQuestion(t *testing.T) {
	author := userWith("author", true, models.RoleLecturer)
	reviewer := userWith("r-1", true, models.RoleReviewer)

	tests := []struct {
		name     string
		user     *models.User
		question *models.Question
		want     bool
	}{
		{"author draft", author, &models.Question{AuthorID: "author", Status: models.StatusDraft}, true},
		{"author needs-revision", author, &models.Question{AuthorID: "author", Status: models.StatusNeedsRevision}, true},
		{"author submitted", author, &models.Question{AuthorID: "author", Status: models.StatusSubmitted}, false},
		{"author approved", author, &models.Question{AuthorID: "author", Status: models.StatusApproved}, false},
		{"assigned reviewer pending", reviewer, &models.Question{AuthorID: "author", Status: models.StatusUnderReview, Reviewer1ID: "r-1"}, true},
		{"assigned reviewer after decision", reviewer, &models.Question{AuthorID: "author", Status: models.StatusApproved, Reviewer1ID: "r-1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEditQuestion(tt.user, tt.question); got != tt.want {
				t.Errorf("CanEditQuestion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasPermissionFallsBackToDefaults(t *testing.T) {
	reviewer := userWith("r-1", true, models.RoleReviewer)
	if !HasPermission(reviewer, "questions:review") {
		t.Error("reviewer should have questions:review via default permissions")
	}
	if HasPermission(reviewer, "users:manage") {
		t.Error("reviewer must not have users:manage")
	}
}
