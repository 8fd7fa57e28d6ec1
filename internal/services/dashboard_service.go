package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/policy"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
)

// reviewDashboardService derives workload and progress figures from the
// question and exam book stores. Figures are computed per request; the
// collections are small enough that no materialized counters are kept.
type reviewDashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReviewDashboardService(repo repositories.Repository, logger *slog.Logger) ReviewDashboardService {
	return &reviewDashboardService{repo: repo, logger: logger}
}

func (s *reviewDashboardService) Overview(ctx context.Context, actor *models.User) (*ReviewDashboard, error) {
	if !policy.HasAnyRole(actor, models.RoleAdmin, models.RoleCoordinator, models.RoleReviewer) {
		return nil, NewPermissionError(actorID(actor), "", "dashboard", "view", "admin, coordinator or reviewer role required")
	}

	questions, _, err := s.repo.Question().List(ctx, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	books, _, err := s.repo.ExamBook().List(ctx, repositories.ExamBookFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load exam books: %w", err)
	}

	dashboard := &ReviewDashboard{
		StatusCounts:   make(map[models.QuestionStatus]int),
		ExamBookCounts: make(map[models.ExamBookStatus]int),
	}

	workload := make(map[string]*ReviewerWorkload)
	authors := make(map[string]*AuthorStats)

	for _, q := range questions {
		dashboard.StatusCounts[q.Status]++

		switch q.Status {
		case models.StatusSubmitted:
			dashboard.PendingAssignment++
		case models.StatusUnderReview:
			dashboard.OpenReviews++
			for _, slot := range []struct{ id, name string }{
				{q.Reviewer1ID, q.Reviewer1Name},
				{q.Reviewer2ID, q.Reviewer2Name},
			} {
				if slot.id == "" {
					continue
				}
				w, ok := workload[slot.id]
				if !ok {
					w = &ReviewerWorkload{ReviewerID: slot.id, ReviewerName: slot.name}
					workload[slot.id] = w
				}
				w.OpenReviews++
			}
		}

		a, ok := authors[q.AuthorID]
		if !ok {
			a = &AuthorStats{AuthorID: q.AuthorID, AuthorName: q.AuthorName}
			authors[q.AuthorID] = a
		}
		a.Total++
		switch q.Status {
		case models.StatusApproved:
			a.Approved++
		case models.StatusRejected:
			a.Rejected++
		}
	}

	for _, book := range books {
		dashboard.ExamBookCounts[book.Status]++
	}

	// Reviewer workload and author breakdowns are management views.
	if policy.HasAnyRole(actor, models.RoleAdmin, models.RoleCoordinator) {
		dashboard.ReviewerWorkload = sortedWorkload(workload)
		dashboard.AuthorStats = sortedAuthorStats(authors)
	}

	return dashboard, nil
}

func sortedWorkload(byID map[string]*ReviewerWorkload) []ReviewerWorkload {
	out := make([]ReviewerWorkload, 0, len(byID))
	for _, w := range byID {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenReviews != out[j].OpenReviews {
			return out[i].OpenReviews > out[j].OpenReviews
		}
		return out[i].ReviewerID < out[j].ReviewerID
	})
	return out
}

func sortedAuthorStats(byID map[string]*AuthorStats) []AuthorStats {
	out := make([]AuthorStats, 0, len(byID))
	for _, a := range byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].AuthorID < out[j].AuthorID
	})
	return out
}
