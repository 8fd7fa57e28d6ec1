package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/policy"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
)

// csvHeader is the fixed ordered column set of the question CSV boundary.
var csvHeader = []string{
	"ID",
	"Topic",
	"Clinical Vignette",
	"Lead Question",
	"Picture Link",
	"Correct Answer",
	"Distractor Option 1",
	"Distractor Option 2",
	"Distractor Option 3",
	"Distractor Option 4",
	"Explanation",
	"References",
	"Learning Objective",
	"Pathomechanism",
	"Aspect",
	"Disease",
	"Created By",
	"Reviewer 1",
	"Reviewer 2",
	"Reviewer Comment",
}

// subjectKeywords maps topic substrings to inferred subjects. Matching is
// case-insensitive, first hit wins; anything unmatched falls back to
// Internal Medicine.
var subjectKeywords = []struct {
	keyword string
	subject string
}{
	{"cardio", "Cardiology"},
	{"heart", "Cardiology"},
	{"pulmo", "Pulmonology"},
	{"lung", "Pulmonology"},
	{"respir", "Pulmonology"},
	{"gastro", "Gastroenterology"},
	{"hepat", "Gastroenterology"},
	{"neuro", "Neurology"},
	{"nephro", "Nephrology"},
	{"renal", "Nephrology"},
	{"kidney", "Nephrology"},
	{"endocrin", "Endocrinology"},
	{"diabet", "Endocrinology"},
	{"thyroid", "Endocrinology"},
	{"hemat", "Hematology"},
	{"onco", "Oncology"},
	{"infect", "Infectious Diseases"},
	{"rheuma", "Rheumatology"},
	{"derma", "Dermatology"},
	{"psych", "Psychiatry"},
	{"surg", "Surgery"},
	{"pedia", "Pediatrics"},
	{"gyn", "Gynecology"},
	{"obstet", "Gynecology"},
}

const defaultSubject = "Internal Medicine"

// InferSubject derives a subject from free-text topic keywords.
func InferSubject(topic string) string {
	lower := strings.ToLower(topic)
	for _, entry := range subjectKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.subject
		}
	}
	return defaultSubject
}

type importExportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewImportExportService(repo repositories.Repository, logger *slog.Logger) ImportExportService {
	return &importExportService{repo: repo, logger: logger}
}

// ===== IMPORT =====

// ImportQuestionsCSV reads the fixed-schema CSV and creates one draft
// question per valid row. Invalid rows are skipped and reported with
// their row number; a bad row never aborts the rest of the file.
func (s *importExportService) ImportQuestionsCSV(ctx context.Context, r io.Reader, actor *models.User) (*ImportResult, error) {
	if !policy.CanSubmitQuestion(actor) {
		return nil, NewPermissionError(actorID(actor), "", "question", "import", "requires a verified functional role")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // length checked per row for a better message

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected CSV header: want %d columns, got %d", len(csvHeader), len(header))
	}

	result := &ImportResult{}
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Row: row, Message: err.Error()})
			continue
		}

		question, rowErr := s.questionFromRecord(record, actor)
		if rowErr != "" {
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Row: row, Message: rowErr})
			continue
		}

		if err := s.repo.Question().Create(ctx, question); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Row: row, Message: fmt.Sprintf("failed to save: %v", err)})
			continue
		}
		result.Imported++
	}

	s.logger.Info("CSV import finished", "actor_id", actor.ID, "imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}

// questionFromRecord maps one CSV row to a draft question. Returns a
// non-empty message when the row is unusable.
func (s *importExportService) questionFromRecord(record []string, actor *models.User) (*models.Question, string) {
	if len(record) != len(csvHeader) {
		return nil, fmt.Sprintf("want %d columns, got %d", len(csvHeader), len(record))
	}

	get := func(i int) string { return strings.TrimSpace(record[i]) }

	topic := get(1)
	vignette := get(2)
	lead := get(3)
	correct := get(5)
	if vignette == "" || lead == "" {
		return nil, "clinical vignette and lead question are required"
	}
	if correct == "" {
		return nil, "correct answer is required"
	}

	options := []string{correct}
	for i := 6; i <= 9; i++ {
		if d := get(i); d != "" {
			options = append(options, d)
		}
	}
	if len(options) != models.OptionCount {
		return nil, fmt.Sprintf("want %d options, got %d", models.OptionCount, len(options))
	}

	pathomechanism := models.Pathomechanism(strings.ToLower(get(13)))
	if !pathomechanism.Valid() {
		pathomechanism = models.PathoNonApplicable
	}
	aspect := models.Aspect(strings.ToLower(get(14)))
	if !aspect.Valid() {
		aspect = models.AspectKnowledge
	}

	var objectives []string
	if lo := get(12); lo != "" {
		for _, part := range strings.Split(lo, ";") {
			if part = strings.TrimSpace(part); part != "" {
				objectives = append(objectives, part)
			}
		}
	}
	if len(objectives) == 0 {
		return nil, "at least one learning objective is required"
	}

	now := time.Now().UTC()
	return &models.Question{
		ID:                 uuid.New().String(),
		ClinicalVignette:   vignette,
		LeadQuestion:       lead,
		Type:               models.MultipleChoice,
		Subject:            InferSubject(topic),
		Topic:              topic,
		Options:            options,
		CorrectAnswer:      correct,
		Explanation:        get(10),
		Status:             models.StatusDraft,
		AuthorID:           actor.ID,
		AuthorName:         actor.FullName(),
		LearningObjectives: objectives,
		Pathomechanism:     pathomechanism,
		Aspect:             aspect,
		Disease:            get(15),
		References:         get(11),
		PictureLink:        get(4),
		ReviewerComment:    get(19),
		CreatedAt:          now,
		UpdatedAt:          now,
	}, ""
}

// ===== EXPORT =====

func (s *importExportService) ExportQuestionsCSV(ctx context.Context, filters repositories.QuestionFilters, actor *models.User) ([]byte, error) {
	questions, err := s.visibleQuestions(ctx, filters, actor)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	for _, q := range questions {
		if err := w.Write(recordFromQuestion(q)); err != nil {
			return nil, fmt.Errorf("failed to write CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func recordFromQuestion(q *models.Question) []string {
	distractors := make([]string, 0, models.OptionCount-1)
	for _, opt := range q.Options {
		if opt != q.CorrectAnswer {
			distractors = append(distractors, opt)
		}
	}
	for len(distractors) < models.OptionCount-1 {
		distractors = append(distractors, "")
	}

	return []string{
		q.ID,
		q.Topic,
		q.ClinicalVignette,
		q.LeadQuestion,
		q.PictureLink,
		q.CorrectAnswer,
		distractors[0],
		distractors[1],
		distractors[2],
		distractors[3],
		q.Explanation,
		q.References,
		strings.Join(q.LearningObjectives, "; "),
		string(q.Pathomechanism),
		string(q.Aspect),
		q.Disease,
		q.AuthorName,
		q.Reviewer1Name,
		q.Reviewer2Name,
		q.ReviewerComment,
	}
}

// ExportExamBookText renders an exam book as a printable plain-text
// paper. Deleted questions render as a "question not found" placeholder
// so numbering stays stable.
func (s *importExportService) ExportExamBookText(ctx context.Context, examBookID string, actor *models.User) ([]byte, error) {
	book, views, err := s.resolveExamBook(ctx, examBookID, actor)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", book.Title)
	fmt.Fprintf(&b, "%s | %s %s\n", book.Subject, book.Semester, book.AcademicYear)
	fmt.Fprintf(&b, "Duration: %d minutes | Total points: %d\n", book.Duration, book.TotalPoints)
	if book.Instructions != "" {
		fmt.Fprintf(&b, "\nInstructions: %s\n", book.Instructions)
	}
	b.WriteString("\n")

	for i, view := range views {
		fmt.Fprintf(&b, "Question %d\n", i+1)
		if view.Missing {
			fmt.Fprintf(&b, "[question %s not found]\n\n", view.QuestionID)
			continue
		}
		q := view.Question
		fmt.Fprintf(&b, "%s\n%s\n", q.ClinicalVignette, q.LeadQuestion)
		for j, opt := range q.Options {
			fmt.Fprintf(&b, "  %c) %s\n", 'A'+j, opt)
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// ExportExamBookXLSX renders an exam book as a spreadsheet, one question
// per row.
func (s *importExportService) ExportExamBookXLSX(ctx context.Context, examBookID string, actor *models.User) ([]byte, error) {
	book, views, err := s.resolveExamBook(ctx, examBookID, actor)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"#", "Question ID", "Topic", "Clinical Vignette", "Lead Question", "Option A", "Option B", "Option C", "Option D", "Option E", "Correct Answer"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, view := range views {
		rowNum := i + 2
		setCell := func(col int, value interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			f.SetCellValue(sheet, cell, value)
		}
		setCell(1, i+1)
		setCell(2, view.QuestionID)
		if view.Missing {
			setCell(3, "question not found")
			continue
		}
		q := view.Question
		setCell(3, q.Topic)
		setCell(4, q.ClinicalVignette)
		setCell(5, q.LeadQuestion)
		for j, opt := range q.Options {
			setCell(6+j, opt)
		}
		setCell(11, q.CorrectAnswer)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write XLSX for exam book %s: %w", book.ID, err)
	}
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *importExportService) visibleQuestions(ctx context.Context, filters repositories.QuestionFilters, actor *models.User) ([]*models.Question, error) {
	if actor == nil {
		return nil, NewPermissionError("", "", "question", "export", "not authenticated")
	}
	questions, _, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	visible := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		if policy.CanViewQuestion(actor, q) {
			visible = append(visible, q)
		}
	}
	return visible, nil
}

func (s *importExportService) resolveExamBook(ctx context.Context, id string, actor *models.User) (*models.ExamBook, []ExamBookQuestionView, error) {
	book, err := s.repo.ExamBook().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrExamBookNotFound
		}
		return nil, nil, fmt.Errorf("failed to load exam book: %w", err)
	}
	if !policy.CanViewExamBook(actor, book) {
		return nil, nil, NewPermissionError(actorID(actor), id, "exam_book", "export", "not creator, coordinator or admin")
	}

	questions, err := s.repo.Question().GetByIDs(ctx, book.QuestionIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load exam book questions: %w", err)
	}
	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	views := make([]ExamBookQuestionView, 0, len(book.QuestionIDs))
	for _, qid := range book.QuestionIDs {
		q, ok := byID[qid]
		views = append(views, ExamBookQuestionView{QuestionID: qid, Missing: !ok, Question: q})
	}
	return book, views, nil
}
