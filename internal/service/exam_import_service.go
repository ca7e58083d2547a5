package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/util"
	"exam_site_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ExamFileQuestion 试题文件中的一道题
type ExamFileQuestion struct {
	Title         string            `json:"title" yaml:"title"`
	Text          string            `json:"text" yaml:"text"`
	AnswerComment string            `json:"answer_comment" yaml:"answer_comment"`
	Answer        AnswerLetters     `json:"answer" yaml:"answer"`
	Variants      map[string]string `json:"variants" yaml:"variants"`
}

// AnswerLetters 正确答案字母，文件中可写成列表 ["A","C"] 或字符串 "AC"
type AnswerLetters []string

func (a *AnswerLetters) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = splitLetters(s)
	return nil
}

func (a *AnswerLetters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*a = list
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*a = splitLetters(s)
	return nil
}

func splitLetters(s string) []string {
	letters := make([]string, 0, len(s))
	for _, r := range strings.TrimSpace(s) {
		if r == ',' || r == ' ' {
			continue
		}
		letters = append(letters, string(r))
	}
	return letters
}

// ExamFileError 试题文件中发现的全部问题
type ExamFileError struct {
	Problems []string
}

func (e *ExamFileError) Error() string {
	return fmt.Sprintf("%s: %s", util.ErrInvalidExamFile.Error(), strings.Join(e.Problems, "; "))
}

func (e *ExamFileError) Unwrap() error {
	return util.ErrInvalidExamFile
}

// ExamWriter 导入试卷所需的持久化操作
type ExamWriter interface {
	CreateExamWithContent(ctx context.Context, exam *model.Exam) error
	UpdateSourceFileURL(ctx context.Context, examID uint, url string) error
}

type ImportRequest struct {
	Title          string
	Source         string
	Uploader       string
	IsUserUploaded bool
	Filename       string
	Data           []byte
}

type ExamImportService struct {
	Exams   ExamWriter
	Storage *StorageService
}

func NewExamImportService(exams ExamWriter, storage *StorageService) *ExamImportService {
	return &ExamImportService{Exams: exams, Storage: storage}
}

// ParseExamFile 按扩展名解析 JSON 或 YAML 试题文件，返回题目列表和发现的全部问题
func ParseExamFile(filename string, data []byte) ([]model.Question, error) {
	var items []ExamFileQuestion
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".json", "":
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&items); err != nil {
			return nil, &ExamFileError{Problems: []string{"cannot decode JSON: " + err.Error()}}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, &ExamFileError{Problems: []string{"cannot decode YAML: " + err.Error()}}
		}
	default:
		return nil, &ExamFileError{Problems: []string{fmt.Sprintf("unsupported file type %q", ext)}}
	}
	if len(items) == 0 {
		return nil, &ExamFileError{Problems: []string{"file contains no questions"}}
	}

	var problems []string
	questions := make([]model.Question, 0, len(items))
	for i, item := range items {
		q, errs := buildQuestion(i+1, item)
		problems = append(problems, errs...)
		questions = append(questions, q)
	}
	if len(problems) > 0 {
		return nil, &ExamFileError{Problems: problems}
	}
	return questions, nil
}

func buildQuestion(pos int, item ExamFileQuestion) (model.Question, []string) {
	var problems []string
	label := strings.TrimSpace(item.Title)
	if label == "" {
		label = fmt.Sprintf("#%d", pos)
		problems = append(problems, fmt.Sprintf("question %s has no title", label))
	}
	if strings.TrimSpace(item.Text) == "" {
		problems = append(problems, fmt.Sprintf("question %s has no text", label))
	}
	if len(item.Variants) < 2 {
		problems = append(problems, fmt.Sprintf("question %s needs at least two variants", label))
	}
	if len(item.Answer) == 0 {
		problems = append(problems, fmt.Sprintf("question %s has no correct answer marked", label))
	}

	letters := make([]string, 0, len(item.Variants))
	for letter := range item.Variants {
		letters = append(letters, letter)
	}
	sort.Strings(letters)

	correct := make(map[string]bool, len(item.Answer))
	for _, a := range item.Answer {
		a = strings.TrimSpace(a)
		if _, ok := item.Variants[a]; !ok {
			problems = append(problems, fmt.Sprintf("question %s marks answer %q which is not a variant", label, a))
		}
		correct[a] = true
	}

	q := model.Question{
		Title:             item.Title,
		Text:              item.Text,
		AnswerExplanation: item.AnswerComment,
		Variants:          make([]model.QuestionVariant, 0, len(letters)),
	}
	for _, letter := range letters {
		if utf8.RuneCountInString(letter) != 1 {
			problems = append(problems, fmt.Sprintf("question %s has variant letter %q, expected a single character", label, letter))
		}
		q.Variants = append(q.Variants, model.QuestionVariant{
			ChoiceLetter:    letter,
			Text:            item.Variants[letter],
			IsCorrectAnswer: correct[letter],
		})
	}
	return q, problems
}

// Import 解析试题文件，无错误时在一个事务内保存整张试卷，随后归档源文件
func (s *ExamImportService) Import(ctx context.Context, req ImportRequest) (*model.Exam, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.ErrInvalidExamTitle
	}

	questions, err := ParseExamFile(req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	uploader := req.Uploader
	if uploader == "" {
		uploader = "application"
	}
	exam := &model.Exam{
		Title:          title,
		Source:         req.Source,
		IsUserUploaded: req.IsUserUploaded,
		Uploader:       uploader,
		Questions:      questions,
	}
	if err := s.Exams.CreateExamWithContent(ctx, exam); err != nil {
		return nil, err
	}
	logger.Log.Info("exam imported",
		zap.Uint("exam_id", exam.ID),
		zap.String("title", exam.Title),
		zap.Int("questions", len(exam.Questions)),
	)

	if s.Storage != nil {
		url, err := s.Storage.ArchiveExamSource(ctx, req.Filename, bytes.NewReader(req.Data), int64(len(req.Data)))
		if err != nil {
			// 源文件归档失败不影响已导入的试卷
			logger.Log.Warn("failed to archive exam source", zap.Uint("exam_id", exam.ID), zap.Error(err))
			return exam, nil
		}
		if err := s.Exams.UpdateSourceFileURL(ctx, exam.ID, url); err != nil {
			logger.Log.Warn("failed to save exam source url", zap.Uint("exam_id", exam.ID), zap.Error(err))
			return exam, nil
		}
		exam.SourceFileURL = url
	}
	return exam, nil
}
