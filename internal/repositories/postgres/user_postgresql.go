package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/exambank-service/internal/cache"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
)

// UserPostgreSQL persists user profiles and role assignments in the remote
// relational store, fronted by a Redis read cache.
type UserPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.UserCacheConfig.Prefix),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	// New accounts always start from the normalized role set; a sign-up
	// without roles gets restricted-lecturer.
	roleTypes := models.NormalizeRoles(user.RoleTypes())
	user.Roles = buildRoleRows(user.ID, roleTypes)

	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var cached models.User
	if err := u.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var user models.User
	if err := u.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("user", id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := u.cache.Set(ctx, cacheKey, &user, cache.UserCacheConfig.TTL); err != nil {
		// Cache failures never fail the read.
		_ = err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.NewNotFoundError("user", email)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	query := u.db.WithContext(ctx).Model(&models.User{}).Preload("Roles")

	if filters.Role != nil {
		query = query.Joins("JOIN roles ON roles.user_id = users.id").
			Where("roles.type = ?", *filters.Role)
	}
	if filters.Verified != nil {
		query = query.Where("users.is_verified = ?", *filters.Verified)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("users.email ILIKE ? OR users.first_name ILIKE ? OR users.last_name ILIKE ?", like, like, like)
	}
	if filters.DateFrom != nil {
		query = query.Where("users.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("users.created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Distinct("users.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var users []*models.User
	if err := query.Distinct().Order("users.created_at").Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (u *UserPostgreSQL) GetByRole(ctx context.Context, role models.RoleType) ([]*models.User, error) {
	users, _, err := u.List(ctx, repositories.UserFilters{Role: &role})
	return users, err
}

func (u *UserPostgreSQL) UpdateProfile(ctx context.Context, user *models.User) error {
	updates := map[string]interface{}{
		"first_name":      user.FirstName,
		"last_name":       user.LastName,
		"department":      user.Department,
		"phone":           user.Phone,
		"title":           user.Title,
		"bio":             user.Bio,
		"office_location": user.OfficeLocation,
		"updated_at":      time.Now().UTC(),
	}

	result := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update user profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.NewNotFoundError("user", user.ID)
	}

	cache.SafeDelete(ctx, u.cache, fmt.Sprintf("id:%s", user.ID))
	return nil
}

// UpdateRoles replaces the user's role rows and the verified flag in one
// transaction. The caller passes an already-normalized role set.
func (u *UserPostgreSQL) UpdateRoles(ctx context.Context, userID string, roles []models.RoleType, verified bool) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repositories.NewNotFoundError("user", userID)
			}
			return fmt.Errorf("failed to load user: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Role{}).Error; err != nil {
			return fmt.Errorf("failed to clear roles: %w", err)
		}

		rows := buildRoleRows(userID, roles)
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert roles: %w", err)
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"is_verified": verified,
				"updated_at":  time.Now().UTC(),
			}).Error
	})
	if err != nil {
		return err
	}

	cache.SafeDelete(ctx, u.cache, fmt.Sprintf("id:%s", userID))
	return nil
}

func buildRoleRows(userID string, roles []models.RoleType) []models.Role {
	rows := make([]models.Role, 0, len(roles))
	for _, roleType := range roles {
		perms, _ := json.Marshal(models.DefaultPermissions[roleType])
		rows = append(rows, models.Role{
			UserID:      userID,
			Type:        roleType,
			Permissions: datatypes.JSON(perms),
		})
	}
	return rows
}
