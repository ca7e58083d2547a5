package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/repository"
	"exam_site_backend/internal/util"
	"exam_site_backend/pkg/logger"
	"exam_site_backend/pkg/monitoring"
	"exam_site_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	Keys  repository.AnswerKeyStore
	Store repository.AttemptStore
	Users repository.UserDirectory
	Guard SubmissionGuard
	Now   func() time.Time
}

func NewAttemptService(keys repository.AnswerKeyStore, store repository.AttemptStore, users repository.UserDirectory, guard SubmissionGuard) *AttemptService {
	return &AttemptService{
		Keys:  keys,
		Store: store,
		Users: users,
		Guard: guard,
		Now:   time.Now,
	}
}

// AttemptUniqueID 成绩编号：<用户名>_<YYYY-MM-DD_HH-MM-SS>
func AttemptUniqueID(username string, takenOn time.Time) string {
	return username + "_" + takenOn.UTC().Format(util.AttemptTimeFormat)
}

// SubmitForm 解析表单答案后记录本次考试
func (s *AttemptService) SubmitForm(ctx context.Context, examID, userID uint, raw map[string][]string) (*model.Attempt, error) {
	sub, err := ParseFormAnswers(raw)
	if err != nil {
		return nil, err
	}
	return s.Record(ctx, examID, userID, sub)
}

// Record 校验、评分并在单个事务中写入成绩头、题目快照、选项快照和最终分数。
// 事务失败时不留下任何记录
func (s *AttemptService) Record(ctx context.Context, examID, userID uint, sub Submission) (*model.Attempt, error) {
	ctx, span := tracing.Tracer.Start(ctx, "attempt.Record")
	defer span.End()
	span.SetAttributes(
		attribute.Int("exam.id", int(examID)),
		attribute.Int("user.id", int(userID)),
		attribute.Int("attempt.questions", len(sub)),
	)

	key, user, err := s.validate(ctx, examID, userID, sub)
	if err != nil {
		monitoring.AttemptsRecorded.WithLabelValues("rejected").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	release, err := s.Guard.Acquire(ctx, userID)
	if err != nil {
		monitoring.AttemptsRecorded.WithLabelValues("rejected").Inc()
		return nil, err
	}
	defer release()

	takenOn := s.Now().UTC().Truncate(time.Second)
	attempt := &model.Attempt{
		UniqueID: AttemptUniqueID(user.Username, takenOn),
		ExamID:   examID,
		UserID:   userID,
		TakenOn:  takenOn,
	}

	err = s.Store.Transaction(ctx, func(tx repository.AttemptStore) error {
		if err := tx.CreateAttempt(ctx, attempt); err != nil {
			return err
		}

		result, err := ScoreAgainstKey(sub, key)
		if err != nil {
			return err
		}

		for _, qo := range result.Questions {
			rq := &model.RecordedQuestion{
				AttemptID:         attempt.ID,
				QuestionID:        qo.QuestionID,
				AnsweredCorrectly: qo.Correct,
			}
			if err := tx.CreateRecordedQuestion(ctx, rq); err != nil {
				return err
			}

			selections := make([]model.RecordedSelection, 0, len(qo.Variants))
			for _, vo := range qo.Variants {
				selections = append(selections, model.RecordedSelection{
					RecordedQuestionID: rq.ID,
					VariantID:          vo.VariantID,
					ChoiceLetter:       vo.ChoiceLetter,
					WasCorrect:         vo.IsCorrect,
					WasSelected:        vo.WasSelected,
				})
			}
			n, err := tx.CreateRecordedSelections(ctx, selections)
			if err != nil {
				return err
			}
			if n != int64(len(selections)) {
				return fmt.Errorf("%w: question %d wrote %d of %d selections", util.ErrPartialWrite, qo.QuestionID, n, len(selections))
			}
		}

		finalizedAt := s.Now().UTC()
		n, err := tx.FinalizeScore(ctx, attempt.ID, result.Percent, finalizedAt)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("%w: attempt %s (%d rows)", util.ErrScoreAlreadyFinalized, attempt.UniqueID, n)
		}
		attempt.Score = result.Percent
		attempt.FinalizedAt = &finalizedAt
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			monitoring.AttemptsRecorded.WithLabelValues("rejected").Inc()
			return nil, util.ErrSubmissionInProgress
		case errors.Is(err, util.ErrIntegrityFault):
			monitoring.IntegrityFaults.Inc()
			logger.Log.Error("attempt write rolled back",
				zap.Error(err),
				zap.String("attempt_unique_id", attempt.UniqueID),
				zap.Uint("exam_id", examID),
				zap.Uint("user_id", userID),
			)
		}
		monitoring.AttemptsRecorded.WithLabelValues("failed").Inc()
		return nil, err
	}

	monitoring.AttemptsRecorded.WithLabelValues("recorded").Inc()
	monitoring.AttemptScore.Observe(float64(attempt.Score))
	logger.Log.Info("attempt recorded",
		zap.String("attempt_unique_id", attempt.UniqueID),
		zap.Uint("exam_id", examID),
		zap.Uint("user_id", userID),
		zap.Int("score", attempt.Score),
	)
	return attempt, nil
}

// validate 在任何写入之前完成全部校验，并取得评分用的答案快照
func (s *AttemptService) validate(ctx context.Context, examID, userID uint, sub Submission) (AnswerKey, *model.User, error) {
	if _, err := s.Keys.GetExam(ctx, examID); err != nil {
		return nil, nil, err
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(sub) == 0 {
		return nil, nil, util.ErrEmptySubmission
	}

	questions, err := s.Keys.ListQuestions(ctx, examID)
	if err != nil {
		return nil, nil, err
	}
	owned := make(map[uint]bool, len(questions))
	for _, q := range questions {
		owned[q.ID] = true
	}
	for _, qid := range sub.QuestionIDs() {
		if !owned[qid] {
			return nil, nil, fmt.Errorf("%w: question %d", util.ErrForeignQuestion, qid)
		}
	}

	variants, err := s.Keys.ListVariantsByQuestions(ctx, sub.QuestionIDs())
	if err != nil {
		return nil, nil, err
	}
	key := NewAnswerKey(variants)
	for _, qid := range sub.QuestionIDs() {
		if len(key[qid]) == 0 {
			return nil, nil, fmt.Errorf("%w: question %d has no variants", util.ErrQuestionNotFound, qid)
		}
	}
	return key, user, nil
}

type VariantView struct {
	VariantID       uint   `json:"variantId"`
	ChoiceLetter    string `json:"choiceLetter"`
	Text            string `json:"text"`
	IsCorrectAnswer bool   `json:"isCorrectAnswer"`
	WasSelected     bool   `json:"wasSelected"`
	// KeyChanged 提交后该选项的正确性被修改过
	KeyChanged bool `json:"keyChanged,omitempty"`
}

type QuestionView struct {
	QuestionID          uint          `json:"questionId"`
	Title               string        `json:"title"`
	Text                string        `json:"text"`
	AnswerExplanation   string        `json:"answerExplanation"`
	HasOneCorrectAnswer bool          `json:"hasOneCorrectAnswer"`
	AnsweredCorrectly   bool          `json:"answeredCorrectly"`
	Variants            []VariantView `json:"variants"`
}

type AttemptView struct {
	UniqueID     string         `json:"uniqueId"`
	ExamID       uint           `json:"examId"`
	ExamTitle    string         `json:"examTitle"`
	UserID       uint           `json:"userId"`
	TakenOn      time.Time      `json:"takenOn"`
	Score        int            `json:"score"`
	CorrectCount int            `json:"correctCount"`
	KeyChanged   bool           `json:"keyChanged"`
	Questions    []QuestionView `json:"questions"`
}

// Read 重建一次已定稿的考试记录。题目正确性只由提交时冻结的选项快照推导，
// 与保存的总分一致；题干和选项文字通过弱引用读取当前内容
func (s *AttemptService) Read(ctx context.Context, examID uint, uniqueID string) (*AttemptView, error) {
	ctx, span := tracing.Tracer.Start(ctx, "attempt.Read")
	defer span.End()
	span.SetAttributes(attribute.Int("exam.id", int(examID)), attribute.String("attempt.unique_id", uniqueID))

	attempt, err := s.Store.FindAttempt(ctx, examID, uniqueID)
	if err != nil {
		return nil, err
	}
	exam, err := s.Keys.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	rqs, err := s.Store.ListRecordedQuestions(ctx, attempt.ID)
	if err != nil {
		return nil, err
	}
	if len(rqs) == 0 {
		logger.Log.Error("finalized attempt has no recorded questions", zap.String("attempt_unique_id", uniqueID))
		return nil, fmt.Errorf("%w: attempt %s", util.ErrPartialWrite, uniqueID)
	}

	rqIDs := make([]uint, len(rqs))
	questionIDs := make([]uint, len(rqs))
	for i, rq := range rqs {
		rqIDs[i] = rq.ID
		questionIDs[i] = rq.QuestionID
	}
	selections, err := s.Store.ListRecordedSelections(ctx, rqIDs)
	if err != nil {
		return nil, err
	}
	selByRQ := make(map[uint][]model.RecordedSelection, len(rqs))
	variantIDs := make([]uint, 0, len(selections))
	for _, sel := range selections {
		selByRQ[sel.RecordedQuestionID] = append(selByRQ[sel.RecordedQuestionID], sel)
		variantIDs = append(variantIDs, sel.VariantID)
	}

	questions, err := s.Keys.FindQuestions(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	questionByID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}
	variants, err := s.Keys.FindVariants(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	variantByID := make(map[uint]model.QuestionVariant, len(variants))
	for _, v := range variants {
		variantByID[v.ID] = v
	}

	view := &AttemptView{
		UniqueID:  attempt.UniqueID,
		ExamID:    attempt.ExamID,
		ExamTitle: exam.Title,
		UserID:    attempt.UserID,
		TakenOn:   attempt.TakenOn,
		Score:     attempt.Score,
		Questions: make([]QuestionView, 0, len(rqs)),
	}
	for _, rq := range rqs {
		q, ok := questionByID[rq.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: question %d", util.ErrRecordedContentMissing, rq.QuestionID)
		}
		sels := selByRQ[rq.ID]
		if len(sels) == 0 {
			return nil, fmt.Errorf("%w: question %d of attempt %s has no selections", util.ErrPartialWrite, rq.QuestionID, uniqueID)
		}

		qv := QuestionView{
			QuestionID:        q.ID,
			Title:             q.Title,
			Text:              q.Text,
			AnswerExplanation: q.AnswerExplanation,
			AnsweredCorrectly: true,
			Variants:          make([]VariantView, 0, len(sels)),
		}
		correctVariants := 0
		for _, sel := range sels {
			live, ok := variantByID[sel.VariantID]
			if !ok {
				return nil, fmt.Errorf("%w: variant %d", util.ErrRecordedContentMissing, sel.VariantID)
			}
			if sel.WasSelected != sel.WasCorrect {
				qv.AnsweredCorrectly = false
			}
			if sel.WasCorrect {
				correctVariants++
			}
			vv := VariantView{
				VariantID:       sel.VariantID,
				ChoiceLetter:    sel.ChoiceLetter,
				Text:            live.Text,
				IsCorrectAnswer: sel.WasCorrect,
				WasSelected:     sel.WasSelected,
				KeyChanged:      live.IsCorrectAnswer != sel.WasCorrect,
			}
			if vv.KeyChanged {
				view.KeyChanged = true
			}
			qv.Variants = append(qv.Variants, vv)
		}
		qv.HasOneCorrectAnswer = correctVariants == 1
		if qv.AnsweredCorrectly != rq.AnsweredCorrectly {
			logger.Log.Warn("recorded question correctness disagrees with its selections",
				zap.String("attempt_unique_id", uniqueID),
				zap.Uint("question_id", rq.QuestionID),
			)
		}
		if qv.AnsweredCorrectly {
			view.CorrectCount++
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}

// History 用户已完成的考试记录，最新的在前
func (s *AttemptService) History(ctx context.Context, userID uint, limit int) ([]repository.AttemptHistoryRow, error) {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Store.ListAttemptsByUser(ctx, userID, limit)
}
