package blob

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/SAP-F-2025/exambank-service/internal/blobstore"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
)

func newExamBookRepo(t *testing.T) repositories.ExamBookRepository {
	t.Helper()
	kv, err := blobstore.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	return NewExamBookBlob(kv, testLogger())
}

func sampleExamBook(id, createdBy string) *models.ExamBook {
	return &models.ExamBook{
		ID:           id,
		Title:        "Internal Medicine Final",
		Description:  "End of semester examination",
		Subject:      "Internal Medicine",
		TotalPoints:  2,
		Duration:     90,
		QuestionIDs:  []string{"q-1", "q-2"},
		Status:       models.ExamBookDraft,
		Semester:     "WS",
		AcademicYear: "2025/2026",
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		UpdatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestExamBookCRUDRoundTrip(t *testing.T) {
	repo := newExamBookRepo(t)
	ctx := context.Background()

	in := sampleExamBook("eb-1", "coord-1")
	if err := repo.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, "eb-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !reflect.DeepEqual(in, got) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, in)
	}

	got.Status = models.ExamBookFinalized
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	updated, _ := repo.GetByID(ctx, "eb-1")
	if updated.Status != models.ExamBookFinalized {
		t.Errorf("status = %s, want finalized", updated.Status)
	}

	if err := repo.Delete(ctx, "eb-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "eb-1"); !repositories.IsNotFoundError(err) {
		t.Errorf("want not-found after delete, got %v", err)
	}
}

func TestExamBookListByCreator(t *testing.T) {
	repo := newExamBookRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, sampleExamBook("eb-1", "coord-1")); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, sampleExamBook("eb-2", "coord-2")); err != nil {
		t.Fatal(err)
	}

	creator := "coord-1"
	books, total, err := repo.List(ctx, repositories.ExamBookFilters{CreatedBy: &creator})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || books[0].ID != "eb-1" {
		t.Errorf("creator filter: total=%d books=%+v", total, books)
	}
}
