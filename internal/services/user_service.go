package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/policy"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) GetByID(ctx context.Context, id string, actor *models.User) (*UserResponse, error) {
	if actor == nil {
		return nil, NewPermissionError("", id, "user", "read", "not authenticated")
	}
	// Everyone may read their own profile; admins may read anyone.
	if actor.ID != id && !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError(actor.ID, id, "user", "read", "admin role required")
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters, actor *models.User) (*UserListResponse, error) {
	if !policy.HasAnyRole(actor, models.RoleAdmin, models.RoleCoordinator) {
		return nil, NewPermissionError(actorID(actor), "", "user", "list", "admin or coordinator role required")
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, buildUserResponse(user))
	}

	return &UserListResponse{
		Users: responses,
		Total: total,
		Page:  pageFromOffset(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}, nil
}

// CreateAccount provisions a new profile with the default
// restricted-lecturer role and verified off. An admin grants functional
// roles later through UpdateRoles.
func (s *userService) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*UserResponse, error) {
	s.logger.Info("Creating account", "email", req.Email)

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.repo.User().GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, validator.ValidationErrors{{
			Field:   "email",
			Message: "an account with this email already exists",
			Value:   email,
			Rule:    "business_logic",
		}}
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:         uuid.New().String(),
		Email:      email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
		Title:      req.Title,
		IsVerified: false,
		CreatedAt:  now,
		UpdatedAt:  now,
		Roles: []models.Role{
			{Type: models.RoleRestrictedLecturer},
		},
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Account created", "user_id", user.ID, "email", user.Email)

	return buildUserResponse(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest, actor *models.User) (*UserResponse, error) {
	s.logger.Info("Updating profile", "user_id", id, "actor_id", actorID(actor))

	if actor == nil {
		return nil, NewPermissionError("", id, "user", "update_profile", "not authenticated")
	}
	if actor.ID != id && !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError(actor.ID, id, "user", "update_profile", "may only edit own profile")
	}

	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *user
	if req.FirstName != nil {
		updated.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		updated.LastName = *req.LastName
	}
	if req.Department != nil {
		updated.Department = req.Department
	}
	if req.Phone != nil {
		updated.Phone = req.Phone
	}
	if req.Title != nil {
		updated.Title = req.Title
	}
	if req.Bio != nil {
		updated.Bio = req.Bio
	}
	if req.OfficeLocation != nil {
		updated.OfficeLocation = req.OfficeLocation
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := s.repo.User().UpdateProfile(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return buildUserResponse(&updated), nil
}

// UpdateRoles replaces a user's role set. Admin only. The requested set
// is normalized before it is stored: restricted-lecturer never coexists
// with a functional role, and an emptied set falls back to
// restricted-lecturer. Granting a functional role marks the user
// verified; stripping the last one revokes verification.
func (s *userService) UpdateRoles(ctx context.Context, id string, req *UpdateRolesRequest, actor *models.User) (*UserResponse, error) {
	s.logger.Info("Updating roles", "user_id", id, "actor_id", actorID(actor), "roles", req.Roles)

	if !policy.HasRole(actor, models.RoleAdmin) {
		return nil, NewPermissionError(actorID(actor), id, "user", "update_roles", "admin role required")
	}

	if errs := s.validator.GetBusinessValidator().ValidateRoleUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}

	normalized := models.NormalizeRoles(req.Roles)
	verified := models.HasFunctionalRole(normalized)
	if req.Verified != nil {
		verified = *req.Verified && models.HasFunctionalRole(normalized)
	}

	if err := s.repo.User().UpdateRoles(ctx, id, normalized, verified); err != nil {
		return nil, fmt.Errorf("failed to update roles: %w", err)
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildUserResponse(user), nil
}

func (s *userService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func buildUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		User:      user,
		RoleTypes: user.RoleTypes(),
	}
}
