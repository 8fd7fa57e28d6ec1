package models

import (
	"time"

	"gorm.io/datatypes"
)

type RoleType string

const (
	RoleAdmin              RoleType = "admin"
	RoleCoordinator        RoleType = "coordinator"
	RoleReviewer           RoleType = "reviewer"
	RoleLecturer           RoleType = "lecturer"
	RoleRestrictedLecturer RoleType = "restricted-lecturer"
)

// FunctionalRoles are every role except restricted-lecturer. A user holding
// restricted-lecturer holds only that role; granting any functional role
// removes it again.
var FunctionalRoles = []RoleType{RoleAdmin, RoleCoordinator, RoleReviewer, RoleLecturer}

func (r RoleType) IsFunctional() bool {
	return r != RoleRestrictedLecturer && r != ""
}

func (r RoleType) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoordinator, RoleReviewer, RoleLecturer, RoleRestrictedLecturer:
		return true
	}
	return false
}

// DefaultPermissions maps each role to its permission strings. Stored
// alongside the role row so the policy layer never needs this table at
// request time.
var DefaultPermissions = map[RoleType][]string{
	RoleAdmin: {
		"users:manage", "roles:manage", "questions:review", "questions:assign",
		"questions:delete", "exam_books:manage", "dashboard:view",
	},
	RoleCoordinator: {
		"exam_books:create", "exam_books:manage_own", "questions:view_approved",
		"dashboard:view",
	},
	RoleReviewer: {
		"questions:review", "questions:view_assigned", "dashboard:view",
	},
	RoleLecturer: {
		"questions:create", "questions:submit", "questions:manage_own",
	},
	RoleRestrictedLecturer: {},
}

type Role struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      string         `json:"user_id" gorm:"not null;index;size:255"`
	Type        RoleType       `json:"type" gorm:"not null;size:50"`
	Permissions datatypes.JSON `json:"permissions" gorm:"type:jsonb"` // []string

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

type User struct {
	ID        string `json:"id" gorm:"primaryKey;size:255"`
	Email     string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	FirstName string `json:"first_name" gorm:"not null;size:100" validate:"required,max=100"`
	LastName  string `json:"last_name" gorm:"not null;size:100" validate:"required,max=100"`

	// Profile info
	Department     *string `json:"department" gorm:"size:200"`
	Phone          *string `json:"phone" gorm:"size:50"`
	Title          *string `json:"title" gorm:"size:100"`
	Bio            *string `json:"bio" gorm:"type:text"`
	OfficeLocation *string `json:"office_location" gorm:"size:200"`

	// Status
	IsVerified bool `json:"is_verified" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Roles []Role `json:"roles" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasRole reports whether the user holds the given role type.
func (u *User) HasRole(role RoleType) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r.Type == role {
			return true
		}
	}
	return false
}

// RoleTypes returns the user's role types in stored order.
func (u *User) RoleTypes() []RoleType {
	if u == nil {
		return nil
	}
	types := make([]RoleType, 0, len(u.Roles))
	for _, r := range u.Roles {
		types = append(types, r.Type)
	}
	return types
}

// NormalizeRoles is the single place the role-set invariant is enforced:
// the result is never empty, restricted-lecturer is mutually exclusive with
// every functional role, and duplicates are dropped. An empty or invalid
// input collapses to {restricted-lecturer}.
func NormalizeRoles(roles []RoleType) []RoleType {
	seen := make(map[RoleType]bool, len(roles))
	functional := make([]RoleType, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() || seen[r] {
			continue
		}
		seen[r] = true
		if r.IsFunctional() {
			functional = append(functional, r)
		}
	}
	if len(functional) == 0 {
		return []RoleType{RoleRestrictedLecturer}
	}
	return functional
}

// HasFunctionalRole reports whether the role set contains anything beyond
// restricted-lecturer.
func HasFunctionalRole(roles []RoleType) bool {
	for _, r := range roles {
		if r.IsFunctional() {
			return true
		}
	}
	return false
}
