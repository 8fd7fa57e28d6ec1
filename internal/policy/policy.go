// Package policy holds the pure access-control predicates consulted by the
// service layer and the route middleware. Every predicate is a function of
// its arguments only; a nil or absent user always yields false.
package policy

import (
	"encoding/json"

	"github.com/SAP-F-2025/exambank-service/internal/models"
)

// HasRole reports whether the user holds the given role type.
func HasRole(user *models.User, role models.RoleType) bool {
	return user.HasRole(role)
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func HasAnyRole(user *models.User, roles ...models.RoleType) bool {
	if user == nil {
		return false
	}
	for _, r := range roles {
		if user.HasRole(r) {
			return true
		}
	}
	return false
}

// HasPermission reports whether any of the user's roles carries the
// permission string.
func HasPermission(user *models.User, permission string) bool {
	if user == nil {
		return false
	}
	for _, role := range user.Roles {
		var perms []string
		if len(role.Permissions) > 0 {
			if err := json.Unmarshal(role.Permissions, &perms); err != nil {
				continue
			}
		} else {
			perms = models.DefaultPermissions[role.Type]
		}
		for _, p := range perms {
			if p == permission {
				return true
			}
		}
	}
	return false
}

// IsVerifiedAndFunctional reports whether the user is verified and holds
// at least one role beyond restricted-lecturer.
func IsVerifiedAndFunctional(user *models.User) bool {
	if user == nil || !user.IsVerified {
		return false
	}
	return models.HasFunctionalRole(user.RoleTypes())
}

// CanViewExamBook: admins see every book, everyone else only their own.
func CanViewExamBook(user *models.User, book *models.ExamBook) bool {
	if user == nil || book == nil {
		return false
	}
	if user.HasRole(models.RoleAdmin) {
		return true
	}
	return book.CreatedBy == user.ID
}

// CanEditExamBook: structural edits are draft-only, by the creator or an
// admin.
func CanEditExamBook(user *models.User, book *models.ExamBook) bool {
	if user == nil || book == nil {
		return false
	}
	if book.Status != models.ExamBookDraft {
		return false
	}
	return user.HasRole(models.RoleAdmin) || book.CreatedBy == user.ID
}

// CanDeleteExamBook: creator or admin, regardless of status.
func CanDeleteExamBook(user *models.User, book *models.ExamBook) bool {
	if user == nil || book == nil {
		return false
	}
	return user.HasRole(models.RoleAdmin) || book.CreatedBy == user.ID
}

// CanFinalizeExamBook: creator or admin. The draft-status guard is a state
// check, not a permission check, and lives in the assembly service.
func CanFinalizeExamBook(user *models.User, book *models.ExamBook) bool {
	if user == nil || book == nil {
		return false
	}
	return user.HasRole(models.RoleAdmin) || book.CreatedBy == user.ID
}

// CanCreateExamBook: coordinators and admins assemble exam books.
func CanCreateExamBook(user *models.User) bool {
	return HasAnyRole(user, models.RoleCoordinator, models.RoleAdmin)
}

// CanAssignReviewers: admin only.
func CanAssignReviewers(user *models.User) bool {
	return user.HasRole(models.RoleAdmin)
}

// CanDecideReview: the question must be under review and the actor must be
// one of its two assigned reviewers or an admin.
func CanDecideReview(user *models.User, question *models.Question) bool {
	if user == nil || question == nil {
		return false
	}
	if question.Status != models.StatusUnderReview {
		return false
	}
	return user.HasRole(models.RoleAdmin) || question.IsAssignedReviewer(user.ID)
}

// CanEditQuestion: the author while the question is editable, or an
// assigned reviewer touching up fields during a pending decision.
func CanEditQuestion(user *models.User, question *models.Question) bool {
	if user == nil || question == nil {
		return false
	}
	if question.AuthorID == user.ID && question.Status.Editable() {
		return true
	}
	return question.Status == models.StatusUnderReview && question.IsAssignedReviewer(user.ID)
}

// CanDeleteQuestion: the author while editable, or an admin at any time.
func CanDeleteQuestion(user *models.User, question *models.Question) bool {
	if user == nil || question == nil {
		return false
	}
	if user.HasRole(models.RoleAdmin) {
		return true
	}
	return question.AuthorID == user.ID && question.Status.Editable()
}

// CanViewQuestion: admins and the author always; assigned reviewers while
// a review is pending; coordinators once the question is approved.
func CanViewQuestion(user *models.User, question *models.Question) bool {
	if user == nil || question == nil {
		return false
	}
	if user.HasRole(models.RoleAdmin) || question.AuthorID == user.ID {
		return true
	}
	if question.IsAssignedReviewer(user.ID) {
		return true
	}
	return question.Status == models.StatusApproved && user.HasRole(models.RoleCoordinator)
}

// CanSubmitQuestion: verified users with a functional authoring role.
func CanSubmitQuestion(user *models.User) bool {
	if !IsVerifiedAndFunctional(user) {
		return false
	}
	return HasAnyRole(user, models.RoleLecturer, models.RoleReviewer, models.RoleCoordinator, models.RoleAdmin)
}
