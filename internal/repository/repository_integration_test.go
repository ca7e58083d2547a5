package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/util"
	"exam_site_backend/pkg/database"

	"gorm.io/gorm"
)

// EXAM_SITE_TEST_DRIVER=mysql|postgres EXAM_SITE_TEST_DSN=... go test ./internal/repository
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("EXAM_SITE_TEST_DSN")
	if dsn == "" {
		t.Skip("set EXAM_SITE_TEST_DSN to run database tests")
	}
	db, err := database.Open(os.Getenv("EXAM_SITE_TEST_DRIVER"), dsn, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedExam(t *testing.T, ctx context.Context, exams *ExamRepository) *model.Exam {
	t.Helper()
	exam := &model.Exam{
		Title: fmt.Sprintf("Geography %d", time.Now().UnixNano()),
		Questions: []model.Question{{
			Title: "Capital",
			Text:  "Capital of France?",
			Variants: []model.QuestionVariant{
				{ChoiceLetter: "A", Text: "Paris", IsCorrectAnswer: true},
				{ChoiceLetter: "B", Text: "Lyon"},
			},
		}},
	}
	if err := exams.CreateExamWithContent(ctx, exam); err != nil {
		t.Fatalf("create exam: %v", err)
	}
	return exam
}

func TestAttemptRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	exams := NewExamRepository(db)
	attempts := NewAttemptRepository(db)
	users := NewUserRepository(db)

	exam := seedExam(t, ctx, exams)
	q := exam.Questions[0]
	user := &model.User{Username: fmt.Sprintf("u%d", time.Now().UnixNano()), Password: "x", IsActive: true}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	uniqueID := fmt.Sprintf("%s_%s", user.Username, now.Format("2006-01-02_15-04-05"))
	err := attempts.Transaction(ctx, func(tx AttemptStore) error {
		a := &model.Attempt{UniqueID: uniqueID, ExamID: exam.ID, UserID: user.ID, TakenOn: now}
		if err := tx.CreateAttempt(ctx, a); err != nil {
			return err
		}
		rq := &model.RecordedQuestion{AttemptID: a.ID, QuestionID: q.ID, AnsweredCorrectly: true}
		if err := tx.CreateRecordedQuestion(ctx, rq); err != nil {
			return err
		}
		n, err := tx.CreateRecordedSelections(ctx, []model.RecordedSelection{
			{RecordedQuestionID: rq.ID, VariantID: q.Variants[0].ID, ChoiceLetter: "A", WasCorrect: true, WasSelected: true},
			{RecordedQuestionID: rq.ID, VariantID: q.Variants[1].ID, ChoiceLetter: "B"},
		})
		if err != nil || n != 2 {
			return fmt.Errorf("selections: %d %v", n, err)
		}
		if n, err := tx.FinalizeScore(ctx, a.ID, 100, now); err != nil || n != 1 {
			return fmt.Errorf("finalize: %d %v", n, err)
		}
		if n, _ := tx.FinalizeScore(ctx, a.ID, 0, now); n != 0 {
			return fmt.Errorf("second finalize updated %d rows", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	got, err := attempts.FindAttempt(ctx, exam.ID, uniqueID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Score != 100 || !got.TakenOn.Equal(now) {
		t.Fatalf("unexpected attempt: %+v", got)
	}
	rqs, err := attempts.ListRecordedQuestions(ctx, got.ID)
	if err != nil || len(rqs) != 1 {
		t.Fatalf("recorded questions: %v %d", err, len(rqs))
	}
	sels, err := attempts.ListRecordedSelections(ctx, []uint{rqs[0].ID})
	if err != nil || len(sels) != 2 || sels[0].ChoiceLetter != "A" {
		t.Fatalf("selections: %v %+v", err, sels)
	}

	// 同一秒的第二次提交由唯一索引拒绝
	dup := &model.Attempt{UniqueID: uniqueID, ExamID: exam.ID, UserID: user.ID, TakenOn: now}
	if err := attempts.CreateAttempt(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate unique id: %v", err)
	}

	history, err := attempts.ListAttemptsByUser(ctx, user.ID, 10)
	if err != nil || len(history) != 1 || history[0].ExamTitle != exam.Title {
		t.Fatalf("history: %v %+v", err, history)
	}
}

func TestAttemptRepository_RollbackLeavesNothing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	exam := seedExam(t, ctx, NewExamRepository(db))
	attempts := NewAttemptRepository(db)

	uniqueID := fmt.Sprintf("rollback_%d", time.Now().UnixNano())
	boom := errors.New("boom")
	err := attempts.Transaction(ctx, func(tx AttemptStore) error {
		a := &model.Attempt{UniqueID: uniqueID, ExamID: exam.ID, UserID: 1, TakenOn: time.Now().UTC()}
		if err := tx.CreateAttempt(ctx, a); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction error = %v", err)
	}

	var count int64
	db.Model(&model.Attempt{}).Where("unique_id = ?", uniqueID).Count(&count)
	if count != 0 {
		t.Fatalf("rolled back attempt still present")
	}
	if _, err := attempts.FindAttempt(ctx, exam.ID, uniqueID); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("find after rollback: %v", err)
	}
}

func TestExamRepository_Catalog(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	exams := NewExamRepository(db)
	exam := seedExam(t, ctx, exams)

	n, err := exams.CountQuestions(ctx, exam.ID)
	if err != nil || n != 1 {
		t.Fatalf("count: %v %d", err, n)
	}
	variants, err := exams.ListVariantsByQuestions(ctx, []uint{exam.Questions[0].ID})
	if err != nil || len(variants) != 2 {
		t.Fatalf("variants: %v %d", err, len(variants))
	}
	if _, err := exams.GetExam(ctx, 2147483000); !errors.Is(err, util.ErrExamNotFound) {
		t.Fatalf("missing exam: %v", err)
	}
}
