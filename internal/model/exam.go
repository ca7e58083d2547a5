package model

// swagger:model Exam
type Exam struct {
	BaseModel
	Title          string     `gorm:"size:200;not null" json:"title"`
	Source         string     `gorm:"size:200" json:"source"`
	IsUserUploaded bool       `gorm:"default:false" json:"isUserUploaded"`
	Uploader       string     `gorm:"size:200" json:"uploader"`
	SourceFileURL  string     `gorm:"size:255" json:"sourceFileUrl,omitempty"`
	Questions      []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

// swagger:model Question
type Question struct {
	BaseModel
	ExamID            uint              `gorm:"index;not null" json:"examId"`
	Title             string            `gorm:"size:1000" json:"title"`
	Text              string            `gorm:"type:text" json:"text"`
	AnswerExplanation string            `gorm:"type:text" json:"answerExplanation"`
	Variants          []QuestionVariant `gorm:"constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionVariant 题目的一个选项，IsCorrectAnswer 为评分依据
// swagger:model QuestionVariant
type QuestionVariant struct {
	BaseModel
	QuestionID      uint   `gorm:"not null;uniqueIndex:idx_variant_letter" json:"questionId"`
	ChoiceLetter    string `gorm:"size:1;not null;uniqueIndex:idx_variant_letter" json:"choiceLetter"`
	Text            string `gorm:"size:1000" json:"text"`
	IsCorrectAnswer bool   `gorm:"default:false" json:"isCorrectAnswer"`
}

func (QuestionVariant) TableName() string {
	return "question_variants"
}
