// Package postgres wires the concrete stores into the aggregate Repository:
// users/roles live in PostgreSQL behind a Redis cache, questions and exam
// books in the local blob store.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/exambank-service/internal/blobstore"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/repositories/blob"
)

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	BlobKV      blobstore.KV
	Logger      *slog.Logger
}

type Repository struct {
	db          *gorm.DB
	redisClient *redis.Client

	question repositories.QuestionRepository
	examBook repositories.ExamBookRepository
	user     repositories.UserRepository
}

func NewRepository(config RepositoryConfig) repositories.Repository {
	return &Repository{
		db:          config.DB,
		redisClient: config.RedisClient,
		question:    blob.NewQuestionBlob(config.BlobKV, config.Logger),
		examBook:    blob.NewExamBookBlob(config.BlobKV, config.Logger),
		user:        NewUserPostgreSQL(config.DB, config.RedisClient),
	}
}

func (r *Repository) Question() repositories.QuestionRepository { return r.question }
func (r *Repository) ExamBook() repositories.ExamBookRepository { return r.examBook }
func (r *Repository) User() repositories.UserRepository         { return r.user }

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if r.redisClient != nil {
		if err := r.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

func (r *Repository) Close() error {
	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return err
		}
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Manager implements repositories.RepositoryManager.
type Manager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) *Manager {
	return &Manager{config: config}
}

func (m *Manager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	if m.config.BlobKV == nil {
		return fmt.Errorf("blob store backend is required")
	}
	m.repo = NewRepository(m.config)
	return nil
}

func (m *Manager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repositories not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *Manager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
