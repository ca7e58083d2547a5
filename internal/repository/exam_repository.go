package repository

import (
	"context"
	"errors"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/util"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) GetExam(ctx context.Context, examID uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.DB.WithContext(ctx).First(&exam, examID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) ListQuestions(ctx context.Context, examID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.WithContext(ctx).Where("exam_id = ?", examID).Order("id asc").Find(&qs).Error
	return qs, err
}

func (r *ExamRepository) ListVariants(ctx context.Context, questionID uint) ([]model.QuestionVariant, error) {
	return r.ListVariantsByQuestions(ctx, []uint{questionID})
}

func (r *ExamRepository) ListVariantsByQuestions(ctx context.Context, questionIDs []uint) ([]model.QuestionVariant, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var vs []model.QuestionVariant
	err := r.DB.WithContext(ctx).
		Where("question_id IN ?", questionIDs).
		Order("question_id asc, choice_letter asc").
		Find(&vs).Error
	return vs, err
}

func (r *ExamRepository) FindQuestions(ctx context.Context, ids []uint) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var qs []model.Question
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *ExamRepository) FindVariants(ctx context.Context, ids []uint) ([]model.QuestionVariant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vs []model.QuestionVariant
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&vs).Error
	return vs, err
}

type ExamListRow struct {
	model.Exam
	QuestionCount int `json:"questionCount"`
}

func (r *ExamRepository) ListExams(ctx context.Context) ([]ExamListRow, error) {
	var rows []ExamListRow
	err := r.DB.WithContext(ctx).Table("exams e").
		Select("e.*, " +
			"(SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id AND q.deleted_at IS NULL) as question_count").
		Where("e.deleted_at IS NULL").
		Order("e.id asc").
		Scan(&rows).Error
	return rows, err
}

func (r *ExamRepository) CountQuestions(ctx context.Context, examID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Question{}).Where("exam_id = ?", examID).Count(&count).Error
	return count, err
}

// CreateExamWithContent 在一个事务内写入试卷、题目和选项
func (r *ExamRepository) CreateExamWithContent(ctx context.Context, exam *model.Exam) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := exam.Questions
		exam.Questions = nil
		if err := tx.Create(exam).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].ExamID = exam.ID
			variants := questions[i].Variants
			questions[i].Variants = nil
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
			for j := range variants {
				variants[j].QuestionID = questions[i].ID
			}
			if len(variants) > 0 {
				if err := tx.Create(&variants).Error; err != nil {
					return err
				}
			}
			questions[i].Variants = variants
		}
		exam.Questions = questions
		return nil
	})
}

func (r *ExamRepository) UpdateSourceFileURL(ctx context.Context, examID uint, url string) error {
	return r.DB.WithContext(ctx).Model(&model.Exam{}).Where("id = ?", examID).Update("source_file_url", url).Error
}
