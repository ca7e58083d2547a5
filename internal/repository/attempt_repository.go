package repository

import (
	"context"
	"errors"
	"time"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Transaction(ctx context.Context, fn func(tx AttemptStore) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AttemptRepository{DB: tx})
	})
}

func (r *AttemptRepository) CreateAttempt(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) CreateRecordedQuestion(ctx context.Context, rq *model.RecordedQuestion) error {
	return r.DB.WithContext(ctx).Create(rq).Error
}

func (r *AttemptRepository) CreateRecordedSelections(ctx context.Context, selections []model.RecordedSelection) (int64, error) {
	if len(selections) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Create(&selections)
	return res.RowsAffected, res.Error
}

// FinalizeScore 只更新尚未定稿的记录，返回受影响行数
func (r *AttemptRepository) FinalizeScore(ctx context.Context, attemptID uint, score int, at time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND finalized_at IS NULL", attemptID).
		Updates(map[string]interface{}{
			"score":        score,
			"finalized_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *AttemptRepository) FindAttempt(ctx context.Context, examID uint, uniqueID string) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.WithContext(ctx).
		Where("exam_id = ? AND unique_id = ? AND finalized_at IS NOT NULL", examID, uniqueID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListRecordedQuestions(ctx context.Context, attemptID uint) ([]model.RecordedQuestion, error) {
	var rqs []model.RecordedQuestion
	err := r.DB.WithContext(ctx).Where("attempt_id = ?", attemptID).Order("id asc").Find(&rqs).Error
	return rqs, err
}

func (r *AttemptRepository) ListRecordedSelections(ctx context.Context, recordedQuestionIDs []uint) ([]model.RecordedSelection, error) {
	if len(recordedQuestionIDs) == 0 {
		return nil, nil
	}
	var sels []model.RecordedSelection
	err := r.DB.WithContext(ctx).
		Where("recorded_question_id IN ?", recordedQuestionIDs).
		Order("recorded_question_id asc, choice_letter asc").
		Find(&sels).Error
	return sels, err
}

func (r *AttemptRepository) ListAttemptsByUser(ctx context.Context, userID uint, limit int) ([]AttemptHistoryRow, error) {
	var rows []AttemptHistoryRow
	query := r.DB.WithContext(ctx).Table("exam_results a").
		Select("a.*, e.title as exam_title").
		Joins("JOIN exams e ON a.exam_id = e.id").
		Where("a.user_id = ? AND a.finalized_at IS NOT NULL AND a.deleted_at IS NULL", userID).
		Order("a.taken_on desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&rows).Error
	return rows, err
}
