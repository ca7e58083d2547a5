package model

import "time"

// Attempt 一次考试提交的结果头记录
// swagger:model Attempt
type Attempt struct {
	BaseModel
	UniqueID    string     `gorm:"size:100;uniqueIndex;not null" json:"uniqueId"`
	ExamID      uint       `gorm:"index;not null" json:"examId"`
	UserID      uint       `gorm:"index;not null" json:"userId"`
	TakenOn     time.Time  `gorm:"not null" json:"takenOn"`
	Score       int        `gorm:"default:0" json:"score"`
	FinalizedAt *time.Time `json:"finalizedAt,omitempty"`
}

func (Attempt) TableName() string {
	return "exam_results"
}

// RecordedQuestion 本次提交中展示过的题目，QuestionID 仅用于回查题干
type RecordedQuestion struct {
	BaseModel
	AttemptID         uint `gorm:"index;not null" json:"attemptId"`
	QuestionID        uint `gorm:"index;not null" json:"questionId"`
	AnsweredCorrectly bool `gorm:"default:false" json:"answeredCorrectly"`
}

func (RecordedQuestion) TableName() string {
	return "questions_recorded"
}

// RecordedSelection 提交时每个选项的快照
type RecordedSelection struct {
	BaseModel
	RecordedQuestionID uint   `gorm:"index;not null" json:"recordedQuestionId"`
	VariantID          uint   `gorm:"index;not null" json:"variantId"`
	ChoiceLetter       string `gorm:"size:1;not null" json:"choiceLetter"`
	WasCorrect         bool   `gorm:"default:false" json:"wasCorrect"`
	WasSelected        bool   `gorm:"default:false" json:"wasSelected"`
}

func (RecordedSelection) TableName() string {
	return "variant_answers_recorded"
}
