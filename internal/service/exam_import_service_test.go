package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exam_site_backend/internal/config"
	"exam_site_backend/internal/model"
	"exam_site_backend/internal/util"
)

type fakeExamWriter struct {
	created []*model.Exam
	urls    map[uint]string
}

func (f *fakeExamWriter) CreateExamWithContent(ctx context.Context, exam *model.Exam) error {
	exam.ID = uint(len(f.created) + 1)
	f.created = append(f.created, exam)
	return nil
}

func (f *fakeExamWriter) UpdateSourceFileURL(ctx context.Context, examID uint, url string) error {
	if f.urls == nil {
		f.urls = make(map[uint]string)
	}
	f.urls[examID] = url
	return nil
}

const geographyJSON = `[
  {
    "title": "Capital of France",
    "text": "Which city is the capital of France?",
    "answer_comment": "Paris has been the capital since 987.",
    "answer": ["A"],
    "variants": {"A": "Paris", "B": "Lyon", "C": "Nice"}
  },
  {
    "title": "Vowels",
    "text": "Pick the vowels",
    "answer_comment": "",
    "answer": "AB",
    "variants": {"C": "x", "A": "a", "B": "e"}
  }
]`

const geographyYAML = `
- title: Capital of France
  text: Which city is the capital of France?
  answer_comment: Paris has been the capital since 987.
  answer: [A]
  variants:
    A: Paris
    B: Lyon
- title: Vowels
  text: Pick the vowels
  answer: AB
  variants:
    A: a
    B: e
    C: x
`

func TestParseExamFile(t *testing.T) {
	for _, tc := range []struct {
		filename string
		data     string
	}{
		{filename: "geo.json", data: geographyJSON},
		{filename: "geo.yaml", data: geographyYAML},
	} {
		t.Run(tc.filename, func(t *testing.T) {
			qs, err := ParseExamFile(tc.filename, []byte(tc.data))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(qs) != 2 {
				t.Fatalf("got %d questions, want 2", len(qs))
			}
			vowels := qs[1]
			if len(vowels.Variants) != 3 {
				t.Fatalf("got %d variants, want 3", len(vowels.Variants))
			}
			for i, want := range []struct {
				letter  string
				correct bool
			}{{"A", true}, {"B", true}, {"C", false}} {
				v := vowels.Variants[i]
				if v.ChoiceLetter != want.letter || v.IsCorrectAnswer != want.correct {
					t.Fatalf("variant %d = %s/%v, want %s/%v", i, v.ChoiceLetter, v.IsCorrectAnswer, want.letter, want.correct)
				}
			}
		})
	}
}

func TestParseExamFile_CollectsAllProblems(t *testing.T) {
	data := `[
	  {"title": "", "text": "t", "answer": ["A"], "variants": {"A": "x", "B": "y"}},
	  {"title": "no answer", "text": "t", "answer": [], "variants": {"A": "x", "B": "y"}},
	  {"title": "one variant", "text": "t", "answer": ["A"], "variants": {"A": "x"}},
	  {"title": "bad letter", "text": "t", "answer": ["A"], "variants": {"A": "x", "BB": "y"}},
	  {"title": "ghost answer", "text": "", "answer": ["D"], "variants": {"A": "x", "B": "y"}}
	]`
	_, err := ParseExamFile("broken.json", []byte(data))
	var fileErr *ExamFileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("error = %v, want *ExamFileError", err)
	}
	if !errors.Is(err, util.ErrInvalidExamFile) || !errors.Is(err, util.ErrInvalidInput) {
		t.Fatalf("error %v is not an invalid exam file", err)
	}

	joined := strings.Join(fileErr.Problems, "\n")
	for _, want := range []string{
		"question #1 has no title",
		"no answer has no correct answer marked",
		"one variant needs at least two variants",
		`bad letter has variant letter "BB"`,
		"ghost answer has no text",
		`ghost answer marks answer "D"`,
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing problem %q in:\n%s", want, joined)
		}
	}
}

func TestParseExamFile_Unreadable(t *testing.T) {
	tests := []struct {
		filename string
		data     string
	}{
		{filename: "x.json", data: `{"not": "a list"}`},
		{filename: "x.json", data: `[]`},
		{filename: "x.yaml", data: "- title: [unclosed"},
		{filename: "x.csv", data: "a,b"},
	}
	for _, tc := range tests {
		if _, err := ParseExamFile(tc.filename, []byte(tc.data)); !errors.Is(err, util.ErrInvalidExamFile) {
			t.Errorf("%s %q: error = %v", tc.filename, tc.data, err)
		}
	}
}

func TestExamImportService_Import(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir}})
	writer := &fakeExamWriter{}
	svc := NewExamImportService(writer, storage)

	exam, err := svc.Import(context.Background(), ImportRequest{
		Title:    " Geography ",
		Source:   "atlas",
		Filename: "geo.json",
		Data:     []byte(geographyJSON),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if exam.Title != "Geography" || exam.Uploader != "application" || len(exam.Questions) != 2 {
		t.Fatalf("unexpected exam: %+v", exam)
	}
	if !strings.HasPrefix(exam.SourceFileURL, "/uploads/exams/") || !strings.HasSuffix(exam.SourceFileURL, ".json") {
		t.Fatalf("source url = %q", exam.SourceFileURL)
	}
	if writer.urls[exam.ID] != exam.SourceFileURL {
		t.Fatalf("source url not persisted")
	}

	archived := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(exam.SourceFileURL, "/uploads/")))
	data, err := os.ReadFile(archived)
	if err != nil {
		t.Fatalf("archived file: %v", err)
	}
	if string(data) != geographyJSON {
		t.Fatalf("archived content differs")
	}
}

func TestExamImportService_NothingSavedOnError(t *testing.T) {
	writer := &fakeExamWriter{}
	svc := NewExamImportService(writer, nil)

	_, err := svc.Import(context.Background(), ImportRequest{Title: "x", Filename: "x.json", Data: []byte(`[{"title":"q","text":"t","answer":["Z"],"variants":{"A":"a","B":"b"}}]`)})
	if !errors.Is(err, util.ErrInvalidExamFile) {
		t.Fatalf("error = %v", err)
	}
	_, err = svc.Import(context.Background(), ImportRequest{Title: "  ", Filename: "x.json", Data: []byte(geographyJSON)})
	if !errors.Is(err, util.ErrInvalidExamTitle) {
		t.Fatalf("error = %v", err)
	}
	if len(writer.created) != 0 {
		t.Fatalf("exam saved despite errors")
	}
}
