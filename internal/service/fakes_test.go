package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/repository"
	"exam_site_backend/internal/util"

	"gorm.io/gorm"
)

type fakeKeyStore struct {
	exams     map[uint]model.Exam
	questions []model.Question
	variants  []model.QuestionVariant
}

func (f *fakeKeyStore) GetExam(ctx context.Context, examID uint) (*model.Exam, error) {
	e, ok := f.exams[examID]
	if !ok {
		return nil, util.ErrExamNotFound
	}
	return &e, nil
}

func (f *fakeKeyStore) ListQuestions(ctx context.Context, examID uint) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.ExamID == examID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeKeyStore) ListVariants(ctx context.Context, questionID uint) ([]model.QuestionVariant, error) {
	return f.ListVariantsByQuestions(ctx, []uint{questionID})
}

func (f *fakeKeyStore) ListVariantsByQuestions(ctx context.Context, questionIDs []uint) ([]model.QuestionVariant, error) {
	want := make(map[uint]bool, len(questionIDs))
	for _, id := range questionIDs {
		want[id] = true
	}
	var out []model.QuestionVariant
	for _, v := range f.variants {
		if want[v.QuestionID] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeKeyStore) FindQuestions(ctx context.Context, ids []uint) ([]model.Question, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for _, q := range f.questions {
		if want[q.ID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeKeyStore) FindVariants(ctx context.Context, ids []uint) ([]model.QuestionVariant, error) {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.QuestionVariant
	for _, v := range f.variants {
		if want[v.ID] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeKeyStore) setCorrect(variantID uint, correct bool) {
	for i := range f.variants {
		if f.variants[i].ID == variantID {
			f.variants[i].IsCorrectAnswer = correct
		}
	}
}

func (f *fakeKeyStore) setText(variantID uint, text string) {
	for i := range f.variants {
		if f.variants[i].ID == variantID {
			f.variants[i].Text = text
		}
	}
}

func (f *fakeKeyStore) deleteQuestion(questionID uint) {
	out := f.questions[:0]
	for _, q := range f.questions {
		if q.ID != questionID {
			out = append(out, q)
		}
	}
	f.questions = out
}

func variant(id, questionID uint, letter, text string, correct bool) model.QuestionVariant {
	v := model.QuestionVariant{QuestionID: questionID, ChoiceLetter: letter, Text: text, IsCorrectAnswer: correct}
	v.ID = id
	return v
}

func question(id, examID uint, title string) model.Question {
	q := model.Question{ExamID: examID, Title: title, Text: title + "?", AnswerExplanation: "see " + title}
	q.ID = id
	return q
}

func exam(id uint, title string) model.Exam {
	e := model.Exam{Title: title}
	e.ID = id
	return e
}

// newKeyStore 三张试卷：
//
//	1 Geography: 问题 10，A Paris(正确) B Lyon C Nice
//	2 Multi:     问题 20，A(正确) B(正确) C
//	3 Pair:      问题 30 (A 正确)，问题 31 (B 正确)
func newKeyStore() *fakeKeyStore {
	return &fakeKeyStore{
		exams: map[uint]model.Exam{
			1: exam(1, "Geography"),
			2: exam(2, "Multi"),
			3: exam(3, "Pair"),
		},
		questions: []model.Question{
			question(10, 1, "Capital of France"),
			question(20, 2, "Pick the vowels"),
			question(30, 3, "First"),
			question(31, 3, "Second"),
		},
		variants: []model.QuestionVariant{
			variant(100, 10, "A", "Paris", true),
			variant(101, 10, "B", "Lyon", false),
			variant(102, 10, "C", "Nice", false),
			variant(200, 20, "A", "a", true),
			variant(201, 20, "B", "e", true),
			variant(202, 20, "C", "x", false),
			variant(300, 30, "A", "yes", true),
			variant(301, 30, "B", "no", false),
			variant(310, 31, "A", "no", false),
			variant(311, 31, "B", "yes", true),
		},
	}
}

type fakeAttemptStore struct {
	mu         sync.Mutex
	nextID     uint
	attempts   []model.Attempt
	questions  []model.RecordedQuestion
	selections []model.RecordedSelection

	// 故障注入
	dropSelection   bool
	finalizeRows    *int64
	createQuestionF error
}

func newAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{nextID: 1}
}

func (f *fakeAttemptStore) id() uint {
	id := f.nextID
	f.nextID++
	return id
}

// Transaction 回调出错时恢复到调用前的快照
func (f *fakeAttemptStore) Transaction(ctx context.Context, fn func(tx repository.AttemptStore) error) error {
	f.mu.Lock()
	attempts := append([]model.Attempt(nil), f.attempts...)
	questions := append([]model.RecordedQuestion(nil), f.questions...)
	selections := append([]model.RecordedSelection(nil), f.selections...)
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.attempts, f.questions, f.selections = attempts, questions, selections
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeAttemptStore) CreateAttempt(ctx context.Context, attempt *model.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attempts {
		if a.UniqueID == attempt.UniqueID {
			return gorm.ErrDuplicatedKey
		}
	}
	attempt.ID = f.id()
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptStore) CreateRecordedQuestion(ctx context.Context, rq *model.RecordedQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createQuestionF != nil {
		return f.createQuestionF
	}
	rq.ID = f.id()
	f.questions = append(f.questions, *rq)
	return nil
}

func (f *fakeAttemptStore) CreateRecordedSelections(ctx context.Context, selections []model.RecordedSelection) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropSelection && len(selections) > 0 {
		selections = selections[:len(selections)-1]
	}
	for i := range selections {
		selections[i].ID = f.id()
		f.selections = append(f.selections, selections[i])
	}
	return int64(len(selections)), nil
}

func (f *fakeAttemptStore) FinalizeScore(ctx context.Context, attemptID uint, score int, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeRows != nil {
		return *f.finalizeRows, nil
	}
	for i := range f.attempts {
		if f.attempts[i].ID == attemptID && f.attempts[i].FinalizedAt == nil {
			f.attempts[i].Score = score
			f.attempts[i].FinalizedAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeAttemptStore) FindAttempt(ctx context.Context, examID uint, uniqueID string) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.attempts {
		if a.ExamID == examID && a.UniqueID == uniqueID && a.FinalizedAt != nil {
			return &a, nil
		}
	}
	return nil, util.ErrAttemptNotFound
}

func (f *fakeAttemptStore) ListRecordedQuestions(ctx context.Context, attemptID uint) ([]model.RecordedQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.RecordedQuestion
	for _, rq := range f.questions {
		if rq.AttemptID == attemptID {
			out = append(out, rq)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) ListRecordedSelections(ctx context.Context, recordedQuestionIDs []uint) ([]model.RecordedSelection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[uint]bool, len(recordedQuestionIDs))
	for _, id := range recordedQuestionIDs {
		want[id] = true
	}
	var out []model.RecordedSelection
	for _, s := range f.selections {
		if want[s.RecordedQuestionID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) ListAttemptsByUser(ctx context.Context, userID uint, limit int) ([]repository.AttemptHistoryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.AttemptHistoryRow
	for _, a := range f.attempts {
		if a.UserID == userID && a.FinalizedAt != nil {
			out = append(out, repository.AttemptHistoryRow{Attempt: a})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenOn.After(out[j].TakenOn) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUsers struct {
	mu     sync.Mutex
	users  map[uint]model.User
	nextID uint
}

func newFakeUsers(names ...string) *fakeUsers {
	f := &fakeUsers{users: make(map[uint]model.User), nextID: 1}
	for _, n := range names {
		u := model.User{Username: n, IsActive: true}
		u.ID = f.nextID
		f.nextID++
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (f *fakeUsers) UpdateLastLogin(ctx context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return util.ErrUserNotFound
	}
	u.LastLogin = time.Now()
	f.users[userID] = u
	return nil
}

// fixedClock 每次调用前进一秒，保证同一用户的成绩编号不重复
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}
