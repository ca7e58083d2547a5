package repository

import (
	"context"
	"time"

	"exam_site_backend/internal/model"
)

// AnswerKeyStore 考试内容的只读视图，是评分的依据
type AnswerKeyStore interface {
	GetExam(ctx context.Context, examID uint) (*model.Exam, error)
	ListQuestions(ctx context.Context, examID uint) ([]model.Question, error)
	ListVariants(ctx context.Context, questionID uint) ([]model.QuestionVariant, error)
	ListVariantsByQuestions(ctx context.Context, questionIDs []uint) ([]model.QuestionVariant, error)
	FindQuestions(ctx context.Context, ids []uint) ([]model.Question, error)
	FindVariants(ctx context.Context, ids []uint) ([]model.QuestionVariant, error)
}

// AttemptStore 成绩记录的持久化。Transaction 内回调收到的 store 共享同一个事务
type AttemptStore interface {
	Transaction(ctx context.Context, fn func(tx AttemptStore) error) error
	CreateAttempt(ctx context.Context, attempt *model.Attempt) error
	CreateRecordedQuestion(ctx context.Context, rq *model.RecordedQuestion) error
	CreateRecordedSelections(ctx context.Context, selections []model.RecordedSelection) (int64, error)
	FinalizeScore(ctx context.Context, attemptID uint, score int, at time.Time) (int64, error)
	FindAttempt(ctx context.Context, examID uint, uniqueID string) (*model.Attempt, error)
	ListRecordedQuestions(ctx context.Context, attemptID uint) ([]model.RecordedQuestion, error)
	ListRecordedSelections(ctx context.Context, recordedQuestionIDs []uint) ([]model.RecordedSelection, error)
	ListAttemptsByUser(ctx context.Context, userID uint, limit int) ([]AttemptHistoryRow, error)
}

// UserDirectory 认证模块对外提供的用户查询
type UserDirectory interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

type AttemptHistoryRow struct {
	model.Attempt
	ExamTitle string `json:"examTitle"`
}
