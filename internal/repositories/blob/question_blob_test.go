package blob

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/SAP-F-2025/exambank-service/internal/blobstore"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newQuestionRepo(t *testing.T) (repositories.QuestionRepository, blobstore.KV) {
	t.Helper()
	kv, err := blobstore.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	return NewQuestionBlob(kv, testLogger()), kv
}

func sampleQuestion(id string) *models.Question {
	return &models.Question{
		ID:               id,
		ClinicalVignette: "A 54-year-old man presents with crushing chest pain.",
		LeadQuestion:     "What is the most likely diagnosis?",
		Type:             models.MultipleChoice,
		Subject:          "Cardiology",
		Topic:            "Acute coronary syndrome",
		Options:          []string{"STEMI", "Pericarditis", "PE", "GERD", "Costochondritis"},
		CorrectAnswer:    "STEMI",
		Status:           models.StatusDraft,
		AuthorID:         "author-1",
		AuthorName:       "A. Author",
		LearningObjectives: []string{
			"Recognize acute coronary syndrome",
		},
		Pathomechanism: models.PathoVascular,
		Aspect:         models.AspectDiagnosis,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		UpdatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestQuestionCRUDRoundTrip(t *testing.T) {
	repo, _ := newQuestionRepo(t)
	ctx := context.Background()

	in := sampleQuestion("q-1")
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "q-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(in, got) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, in)
	}

	got.Status = models.StatusSubmitted
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, err := repo.GetByID(ctx, "q-1")
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if updated.Status != models.StatusSubmitted {
		t.Errorf("status = %s, want submitted", updated.Status)
	}

	if err := repo.Delete(ctx, "q-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "q-1"); !repositories.IsNotFoundError(err) {
		t.Errorf("GetByID after delete: want not-found, got %v", err)
	}
}

func TestQuestionUpdateMissing(t *testing.T) {
	repo, _ := newQuestionRepo(t)
	err := repo.Update(context.Background(), sampleQuestion("ghost"))
	if !repositories.IsNotFoundError(err) {
		t.Errorf("Update missing: want not-found, got %v", err)
	}
}

func TestLoadDiscardsInvalidEntries(t *testing.T) {
	kv, err := blobstore.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	// One complete question, one missing its lead question, one missing id.
	broken := []*models.Question{
		sampleQuestion("q-ok"),
		{ID: "q-no-lead", ClinicalVignette: "vignette"},
		{ClinicalVignette: "vignette", LeadQuestion: "lead"},
	}
	raw, _ := json.Marshal(broken)
	if err := kv.Set("questions", raw); err != nil {
		t.Fatalf("Set: %v", err)
	}

	repo := NewQuestionBlob(kv, testLogger())
	questions, total, err := repo.List(context.Background(), repositories.QuestionFilters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(questions) != 1 || questions[0].ID != "q-ok" {
		t.Errorf("invalid entries not discarded: total=%d questions=%+v", total, questions)
	}
}

func TestQuestionListFilters(t *testing.T) {
	repo, _ := newQuestionRepo(t)
	ctx := context.Background()

	approved := sampleQuestion("q-approved")
	approved.Status = models.StatusApproved
	submitted := sampleQuestion("q-submitted")
	submitted.Status = models.StatusSubmitted
	other := sampleQuestion("q-other-author")
	other.Status = models.StatusApproved
	other.AuthorID = "author-2"

	for _, q := range []*models.Question{approved, submitted, other} {
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("Create %s: %v", q.ID, err)
		}
	}

	status := models.StatusApproved
	got, total, err := repo.List(ctx, repositories.QuestionFilters{Status: &status})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if total != 2 {
		t.Errorf("approved count = %d, want 2", total)
	}
	for _, q := range got {
		if q.Status != models.StatusApproved {
			t.Errorf("filter leaked status %s", q.Status)
		}
	}

	author := "author-1"
	_, total, err = repo.List(ctx, repositories.QuestionFilters{Status: &status, AuthorID: &author})
	if err != nil {
		t.Fatalf("List by status+author: %v", err)
	}
	if total != 1 {
		t.Errorf("author-filtered count = %d, want 1", total)
	}
}

func TestGetByIDsSkipsMissing(t *testing.T) {
	repo, _ := newQuestionRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleQuestion("q-1")); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetByIDs(ctx, []string{"q-1", "q-deleted"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != "q-1" {
		t.Errorf("GetByIDs = %+v, want only q-1", got)
	}
}
