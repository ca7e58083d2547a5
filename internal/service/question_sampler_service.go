package service

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/repository"
	"exam_site_backend/internal/util"
	"exam_site_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Quantity 本次考试抽取的题量，AllQuestions 表示全部
type Quantity int

const AllQuestions Quantity = -1

// ParseQuantity 解析表单中的题量："all" 或正整数
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == util.QuantityAll {
		return AllQuestions, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, util.ErrInvalidQuantity
	}
	return Quantity(n), nil
}

func (q Quantity) String() string {
	if q == AllQuestions {
		return util.QuantityAll
	}
	return strconv.Itoa(int(q))
}

type SampledVariant struct {
	ID           uint   `json:"id"`
	ChoiceLetter string `json:"choiceLetter"`
	Text         string `json:"text"`
}

// SampledQuestion 渲染答题表单所需的题目，不包含正确答案
type SampledQuestion struct {
	ID                  uint             `json:"id"`
	Title               string           `json:"title"`
	Text                string           `json:"text"`
	HasOneCorrectAnswer bool             `json:"hasOneCorrectAnswer"`
	Variants            []SampledVariant `json:"variants"`
}

type SampledExam struct {
	ExamID    uint              `json:"examId"`
	Title     string            `json:"title"`
	Quantity  string            `json:"quantity"`
	Questions []SampledQuestion `json:"questions"`
}

type QuestionSamplerService struct {
	Keys repository.AnswerKeyStore
	// Shuffle 默认使用进程级随机源，测试中可注入固定种子
	Shuffle func(n int, swap func(i, j int))
}

func NewQuestionSamplerService(keys repository.AnswerKeyStore) *QuestionSamplerService {
	return &QuestionSamplerService{Keys: keys, Shuffle: rand.Shuffle}
}

// Sample 返回考试的题目子集。题量不小于总题数时返回全部题目
func (s *QuestionSamplerService) Sample(ctx context.Context, examID uint, quantity Quantity) ([]model.Question, error) {
	ctx, span := tracing.Tracer.Start(ctx, "sampler.Sample")
	defer span.End()
	span.SetAttributes(attribute.Int("exam.id", int(examID)), attribute.String("exam.quantity", quantity.String()))

	if quantity != AllQuestions && quantity <= 0 {
		return nil, util.ErrInvalidQuantity
	}
	if _, err := s.Keys.GetExam(ctx, examID); err != nil {
		return nil, err
	}
	questions, err := s.Keys.ListQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}
	if quantity == AllQuestions || int(quantity) >= len(questions) {
		return questions, nil
	}

	pool := make([]model.Question, len(questions))
	copy(pool, questions)
	s.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:int(quantity)], nil
}

// SampleForForm 抽题并附带选项，用于渲染答题页
func (s *QuestionSamplerService) SampleForForm(ctx context.Context, examID uint, quantity Quantity) (*SampledExam, error) {
	exam, err := s.Keys.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Sample(ctx, examID, quantity)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	variants, err := s.Keys.ListVariantsByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	byQuestion := groupVariants(variants)

	out := &SampledExam{
		ExamID:    exam.ID,
		Title:     exam.Title,
		Quantity:  quantity.String(),
		Questions: make([]SampledQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		vs := byQuestion[q.ID]
		sq := SampledQuestion{
			ID:       q.ID,
			Title:    q.Title,
			Text:     q.Text,
			Variants: make([]SampledVariant, 0, len(vs)),
		}
		correct := 0
		for _, v := range vs {
			if v.IsCorrectAnswer {
				correct++
			}
			sq.Variants = append(sq.Variants, SampledVariant{ID: v.ID, ChoiceLetter: v.ChoiceLetter, Text: v.Text})
		}
		sq.HasOneCorrectAnswer = correct == 1
		out.Questions = append(out.Questions, sq)
	}
	return out, nil
}

func groupVariants(variants []model.QuestionVariant) map[uint][]model.QuestionVariant {
	out := make(map[uint][]model.QuestionVariant)
	for _, v := range variants {
		out[v.QuestionID] = append(out[v.QuestionID], v)
	}
	return out
}
