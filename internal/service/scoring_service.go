package service

import (
	"context"
	"fmt"
	"sort"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/repository"
	"exam_site_backend/internal/util"
)

// Submission 题目 ID -> 用户选择的选项字母。值为空表示题目展示过但未作答
type Submission map[uint][]string

func (s Submission) QuestionIDs() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AnswerKey 题目 ID -> 该题全部选项
type AnswerKey map[uint][]model.QuestionVariant

func NewAnswerKey(variants []model.QuestionVariant) AnswerKey {
	return AnswerKey(groupVariants(variants))
}

type VariantOutcome struct {
	VariantID    uint   `json:"variantId"`
	ChoiceLetter string `json:"choiceLetter"`
	IsCorrect    bool   `json:"isCorrect"`
	WasSelected  bool   `json:"wasSelected"`
}

type QuestionOutcome struct {
	QuestionID uint             `json:"questionId"`
	Correct    bool             `json:"correct"`
	Variants   []VariantOutcome `json:"variants"`
}

type ScoringResult struct {
	Questions    []QuestionOutcome `json:"questions"`
	CorrectCount int               `json:"correctCount"`
	Total        int               `json:"total"`
	Percent      int               `json:"percent"`
}

// Outcome 按题目 ID 查找结果
func (r *ScoringResult) Outcome(questionID uint) (QuestionOutcome, bool) {
	for _, q := range r.Questions {
		if q.QuestionID == questionID {
			return q, true
		}
	}
	return QuestionOutcome{}, false
}

// ScoreAgainstKey 对照答案评分。一道题正确当且仅当每个选项的选中状态都与其正确性一致，
// 单选和多选共用同一规则
func ScoreAgainstKey(sub Submission, key AnswerKey) (*ScoringResult, error) {
	if len(sub) == 0 {
		return nil, util.ErrEmptySubmission
	}

	result := &ScoringResult{
		Questions: make([]QuestionOutcome, 0, len(sub)),
		Total:     len(sub),
	}
	for _, qid := range sub.QuestionIDs() {
		variants, ok := key[qid]
		if !ok || len(variants) == 0 {
			return nil, fmt.Errorf("%w: id %d", util.ErrQuestionNotFound, qid)
		}

		selected := make(map[string]bool, len(sub[qid]))
		for _, letter := range sub[qid] {
			selected[letter] = true
		}

		outcome := QuestionOutcome{
			QuestionID: qid,
			Correct:    true,
			Variants:   make([]VariantOutcome, 0, len(variants)),
		}
		for _, v := range variants {
			was := selected[v.ChoiceLetter]
			if was != v.IsCorrectAnswer {
				outcome.Correct = false
			}
			outcome.Variants = append(outcome.Variants, VariantOutcome{
				VariantID:    v.ID,
				ChoiceLetter: v.ChoiceLetter,
				IsCorrect:    v.IsCorrectAnswer,
				WasSelected:  was,
			})
		}
		if outcome.Correct {
			result.CorrectCount++
		}
		result.Questions = append(result.Questions, outcome)
	}

	result.Percent = Percent(result.CorrectCount, result.Total)
	return result, nil
}

// Percent 100*correct/total，向零截断
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return 100 * correct / total
}

type ScoringService struct {
	Keys repository.AnswerKeyStore
}

func NewScoringService(keys repository.AnswerKeyStore) *ScoringService {
	return &ScoringService{Keys: keys}
}

// Score 从答案库读取选项后评分，不产生任何写入
func (s *ScoringService) Score(ctx context.Context, sub Submission) (*ScoringResult, error) {
	if len(sub) == 0 {
		return nil, util.ErrEmptySubmission
	}
	variants, err := s.Keys.ListVariantsByQuestions(ctx, sub.QuestionIDs())
	if err != nil {
		return nil, err
	}
	return ScoreAgainstKey(sub, NewAnswerKey(variants))
}
