package service

import (
	"context"

	"exam_site_backend/internal/repository"
)

// ExamLister 试卷目录查询
type ExamLister interface {
	ListExams(ctx context.Context) ([]repository.ExamListRow, error)
	CountQuestions(ctx context.Context, examID uint) (int64, error)
}

type ExamCatalogService struct {
	Exams ExamLister
	Keys  repository.AnswerKeyStore
	// DefaultQuantity 配置热加载时会被更新
	DefaultQuantity func() Quantity
}

func NewExamCatalogService(exams ExamLister, keys repository.AnswerKeyStore, defaultQuantity func() Quantity) *ExamCatalogService {
	return &ExamCatalogService{Exams: exams, Keys: keys, DefaultQuantity: defaultQuantity}
}

func (s *ExamCatalogService) List(ctx context.Context) ([]repository.ExamListRow, error) {
	return s.Exams.ListExams(ctx)
}

// ExamSetup 开始考试前选择题量所需的信息
type ExamSetup struct {
	ExamID          uint   `json:"examId"`
	Title           string `json:"title"`
	Source          string `json:"source"`
	QuestionCount   int64  `json:"questionCount"`
	DefaultQuantity string `json:"defaultQuantity"`
}

func (s *ExamCatalogService) Setup(ctx context.Context, examID uint) (*ExamSetup, error) {
	exam, err := s.Keys.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	count, err := s.Exams.CountQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}
	def := AllQuestions
	if s.DefaultQuantity != nil {
		def = s.DefaultQuantity()
	}
	return &ExamSetup{
		ExamID:          exam.ID,
		Title:           exam.Title,
		Source:          exam.Source,
		QuestionCount:   count,
		DefaultQuantity: def.String(),
	}, nil
}
