package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/exambank-service/internal/events"
	"github.com/SAP-F-2025/exambank-service/internal/models"
	"github.com/SAP-F-2025/exambank-service/internal/repositories"
	"github.com/SAP-F-2025/exambank-service/internal/validator"
)

// ===== IN-MEMORY REPOSITORIES =====

type mockQuestionRepo struct {
	questions map[string]*models.Question
	failNext  error
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{questions: make(map[string]*models.Question)}
}

func (m *mockQuestionRepo) takeErr() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockQuestionRepo) Create(ctx context.Context, q *models.Question) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, id string) (*models.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, repositories.NewNotFoundError("question", id)
	}
	cp := *q
	return &cp, nil
}

func (m *mockQuestionRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	var out []*models.Question
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockQuestionRepo) Update(ctx context.Context, q *models.Question) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	if _, ok := m.questions[q.ID]; !ok {
		return repositories.NewNotFoundError("question", q.ID)
	}
	cp := *q
	m.questions[q.ID] = &cp
	return nil
}

func (m *mockQuestionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.questions[id]; !ok {
		return repositories.NewNotFoundError("question", id)
	}
	delete(m.questions, id)
	return nil
}

func (m *mockQuestionRepo) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int, error) {
	var out []*models.Question
	for _, q := range m.questions {
		if filters.Status != nil && q.Status != *filters.Status {
			continue
		}
		if filters.AuthorID != nil && q.AuthorID != *filters.AuthorID {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type mockExamBookRepo struct {
	books    map[string]*models.ExamBook
	failNext error
}

func newMockExamBookRepo() *mockExamBookRepo {
	return &mockExamBookRepo{books: make(map[string]*models.ExamBook)}
}

func (m *mockExamBookRepo) takeErr() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockExamBookRepo) Create(ctx context.Context, b *models.ExamBook) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *mockExamBookRepo) GetByID(ctx context.Context, id string) (*models.ExamBook, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, repositories.NewNotFoundError("exam book", id)
	}
	cp := *b
	return &cp, nil
}

func (m *mockExamBookRepo) Update(ctx context.Context, b *models.ExamBook) error {
	if err := m.takeErr(); err != nil {
		return err
	}
	if _, ok := m.books[b.ID]; !ok {
		return repositories.NewNotFoundError("exam book", b.ID)
	}
	cp := *b
	m.books[b.ID] = &cp
	return nil
}

func (m *mockExamBookRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.books[id]; !ok {
		return repositories.NewNotFoundError("exam book", id)
	}
	delete(m.books, id)
	return nil
}

func (m *mockExamBookRepo) List(ctx context.Context, filters repositories.ExamBookFilters) ([]*models.ExamBook, int, error) {
	var out []*models.ExamBook
	for _, b := range m.books {
		if filters.Status != nil && b.Status != *filters.Status {
			continue
		}
		if filters.CreatedBy != nil && b.CreatedBy != *filters.CreatedBy {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.NewNotFoundError("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.NewNotFoundError("user", email)
}

func (m *mockUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) GetByRole(ctx context.Context, role models.RoleType) ([]*models.User, error) {
	var out []*models.User
	for _, u := range m.users {
		if u.HasRole(role) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return repositories.NewNotFoundError("user", u.ID)
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) UpdateRoles(ctx context.Context, userID string, roles []models.RoleType, verified bool) error {
	u, ok := m.users[userID]
	if !ok {
		return repositories.NewNotFoundError("user", userID)
	}
	u.Roles = nil
	for _, r := range roles {
		u.Roles = append(u.Roles, models.Role{UserID: userID, Type: r})
	}
	u.IsVerified = verified
	return nil
}

type mockRepository struct {
	questionRepo *mockQuestionRepo
	examBookRepo *mockExamBookRepo
	userRepo     *mockUserRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		questionRepo: newMockQuestionRepo(),
		examBookRepo: newMockExamBookRepo(),
		userRepo:     newMockUserRepo(),
	}
}

func (m *mockRepository) Question() repositories.QuestionRepository { return m.questionRepo }
func (m *mockRepository) ExamBook() repositories.ExamBookRepository { return m.examBookRepo }
func (m *mockRepository) User() repositories.UserRepository         { return m.userRepo }
func (m *mockRepository) Ping(ctx context.Context) error            { return nil }
func (m *mockRepository) Close() error                              { return nil }

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	repo      *mockRepository
	publisher *events.MockEventPublisher
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		repo:      newMockRepository(),
		publisher: events.NewMockEventPublisher(testLogger()),
		validator: validator.New(),
	}
}

func (e *testEnv) questionService() QuestionService {
	return NewQuestionService(e.repo, testLogger(), e.validator, NewNotificationEventService(e.publisher, testLogger()))
}

func (e *testEnv) examBookService() ExamBookService {
	return NewExamBookService(e.repo, testLogger(), e.validator, NewNotificationEventService(e.publisher, testLogger()))
}

func (e *testEnv) userService() UserService {
	return NewUserService(e.repo, testLogger(), e.validator)
}

func testUser(id string, roles ...models.RoleType) *models.User {
	u := &models.User{
		ID:         id,
		Email:      id + "@med.example.edu",
		FirstName:  "Test",
		LastName:   id,
		IsVerified: models.HasFunctionalRole(roles),
	}
	for _, r := range roles {
		u.Roles = append(u.Roles, models.Role{UserID: id, Type: r})
	}
	return u
}

func (e *testEnv) addUser(u *models.User) *models.User {
	e.repo.userRepo.users[u.ID] = u
	return u
}

func (e *testEnv) addQuestion(q *models.Question) *models.Question {
	cp := *q
	e.repo.questionRepo.questions[q.ID] = &cp
	return q
}

func (e *testEnv) addExamBook(b *models.ExamBook) *models.ExamBook {
	cp := *b
	e.repo.examBookRepo.books[b.ID] = &cp
	return b
}

func sampleQuestion(id, authorID string, status models.QuestionStatus) *models.Question {
	return &models.Question{
		ID:               id,
		ClinicalVignette: "A 58-year-old man presents with crushing chest pain radiating to the left arm.",
		LeadQuestion:     "What is the most likely diagnosis?",
		Type:             models.MultipleChoice,
		Subject:          "Cardiology",
		Topic:            "Acute coronary syndrome",
		Options: []string{
			"Acute myocardial infarction",
			"Pulmonary embolism",
			"Aortic dissection",
			"Pericarditis",
			"Costochondritis",
		},
		CorrectAnswer:      "Acute myocardial infarction",
		Status:             status,
		AuthorID:           authorID,
		AuthorName:         "Test " + authorID,
		LearningObjectives: []string{"Recognize the presentation of acute MI"},
		Pathomechanism:     models.PathoVascular,
		Aspect:             models.AspectDiagnosis,
	}
}

func sampleExamBook(id, createdBy string, status models.ExamBookStatus, questionIDs ...string) *models.ExamBook {
	return &models.ExamBook{
		ID:           id,
		Title:        "Internal Medicine Final",
		Description:  "End of semester exam",
		Subject:      "Internal Medicine",
		TotalPoints:  len(questionIDs),
		Duration:     90,
		QuestionIDs:  questionIDs,
		Status:       status,
		Semester:     "WS",
		AcademicYear: "2025/26",
		CreatedBy:    createdBy,
	}
}

func sampleCreateRequest() *CreateQuestionRequest {
	return &CreateQuestionRequest{
		ClinicalVignette: "A 58-year-old man presents with crushing chest pain radiating to the left arm.",
		LeadQuestion:     "What is the most likely diagnosis?",
		Subject:          "Cardiology",
		Topic:            "Acute coronary syndrome",
		Options: []string{
			"Acute myocardial infarction",
			"Pulmonary embolism",
			"Aortic dissection",
			"Pericarditis",
			"Costochondritis",
		},
		CorrectAnswer:      "Acute myocardial infarction",
		Status:             models.StatusSubmitted,
		LearningObjectives: []string{"Recognize the presentation of acute MI"},
		Pathomechanism:     models.PathoVascular,
		Aspect:             models.AspectDiagnosis,
	}
}
