package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"exam_site_backend/internal/model"
	"exam_site_backend/internal/util"
)

func keyFor(t *testing.T, store *fakeKeyStore, questionIDs ...uint) AnswerKey {
	t.Helper()
	vs, err := store.ListVariantsByQuestions(context.Background(), questionIDs)
	if err != nil {
		t.Fatalf("list variants: %v", err)
	}
	return NewAnswerKey(vs)
}

func TestScoreAgainstKey_SingleCorrect(t *testing.T) {
	key := keyFor(t, newKeyStore(), 10)

	tests := []struct {
		name    string
		letters []string
		correct bool
		percent int
	}{
		{name: "paris", letters: []string{"A"}, correct: true, percent: 100},
		{name: "lyon", letters: []string{"B"}, correct: false, percent: 0},
		{name: "nice", letters: []string{"C"}, correct: false, percent: 0},
		{name: "nothing selected", letters: []string{}, correct: false, percent: 0},
		{name: "correct plus wrong", letters: []string{"A", "B"}, correct: false, percent: 0},
		{name: "unknown letter", letters: []string{"Z"}, correct: false, percent: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScoreAgainstKey(Submission{10: tc.letters}, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out, ok := got.Outcome(10)
			if !ok {
				t.Fatalf("missing outcome for question 10")
			}
			if out.Correct != tc.correct {
				t.Fatalf("correct = %v, want %v", out.Correct, tc.correct)
			}
			if got.Percent != tc.percent {
				t.Fatalf("percent = %d, want %d", got.Percent, tc.percent)
			}
			if len(out.Variants) != 3 {
				t.Fatalf("expected all 3 variants in outcome, got %d", len(out.Variants))
			}
			for _, v := range out.Variants {
				if v.WasSelected != slices.Contains(tc.letters, v.ChoiceLetter) {
					t.Fatalf("variant %s selected = %v", v.ChoiceLetter, v.WasSelected)
				}
			}
		})
	}
}

func TestScoreAgainstKey_MultiCorrect(t *testing.T) {
	key := keyFor(t, newKeyStore(), 20)

	tests := []struct {
		name    string
		letters []string
		correct bool
	}{
		{name: "exact set", letters: []string{"A", "B"}, correct: true},
		{name: "exact set reversed", letters: []string{"B", "A"}, correct: true},
		{name: "subset", letters: []string{"A"}, correct: false},
		{name: "superset", letters: []string{"A", "B", "C"}, correct: false},
		{name: "empty", letters: nil, correct: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScoreAgainstKey(Submission{20: tc.letters}, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Questions[0].Correct != tc.correct {
				t.Fatalf("correct = %v, want %v", got.Questions[0].Correct, tc.correct)
			}
		})
	}
}

func TestScoreAgainstKey_HalfRight(t *testing.T) {
	key := keyFor(t, newKeyStore(), 30, 31)

	got, err := ScoreAgainstKey(Submission{30: {"A"}, 31: {"A"}}, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CorrectCount != 1 || got.Total != 2 {
		t.Fatalf("correct/total = %d/%d, want 1/2", got.CorrectCount, got.Total)
	}
	if got.Percent != 50 {
		t.Fatalf("percent = %d, want 50", got.Percent)
	}
}

func TestScoreAgainstKey_Errors(t *testing.T) {
	key := keyFor(t, newKeyStore(), 10)

	_, err := ScoreAgainstKey(Submission{}, key)
	if !errors.Is(err, util.ErrEmptySubmission) || !errors.Is(err, util.ErrInvalidInput) {
		t.Fatalf("empty submission: got %v", err)
	}

	_, err = ScoreAgainstKey(Submission{99: {"A"}}, key)
	if !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("unknown question: got %v", err)
	}
}

// 单一正确选项：只有提交该字母才算对
func TestScoreAgainstKey_SingleLetterProperty(t *testing.T) {
	letters := []string{"A", "B", "C", "D", "E"}
	for correctIdx, correctLetter := range letters {
		var vs []model.QuestionVariant
		for i, l := range letters {
			vs = append(vs, variant(uint(i+1), 1, l, l, i == correctIdx))
		}
		key := NewAnswerKey(vs)

		for _, submitted := range letters {
			got, err := ScoreAgainstKey(Submission{1: {submitted}}, key)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := submitted == correctLetter; got.Questions[0].Correct != want {
				t.Fatalf("key %s submitted %s: correct = %v, want %v", correctLetter, submitted, got.Questions[0].Correct, want)
			}
		}
		got, _ := ScoreAgainstKey(Submission{1: nil}, key)
		if got.Questions[0].Correct {
			t.Fatalf("key %s: empty selection scored correct", correctLetter)
		}
	}
}

// 多个正确选项：提交集合与正确集合完全相等才算对
func TestScoreAgainstKey_ExactSetProperty(t *testing.T) {
	letters := []string{"A", "B", "C", "D"}
	correct := map[string]bool{"A": true, "C": true}
	var vs []model.QuestionVariant
	for i, l := range letters {
		vs = append(vs, variant(uint(i+1), 1, l, l, correct[l]))
	}
	key := NewAnswerKey(vs)

	for mask := 0; mask < 1<<len(letters); mask++ {
		var submitted []string
		equal := true
		for i, l := range letters {
			chosen := mask&(1<<i) != 0
			if chosen {
				submitted = append(submitted, l)
			}
			if chosen != correct[l] {
				equal = false
			}
		}
		got, err := ScoreAgainstKey(Submission{1: submitted}, key)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Questions[0].Correct != equal {
			t.Fatalf("submitted %v: correct = %v, want %v", submitted, got.Questions[0].Correct, equal)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 1, 0},
		{1, 1, 100},
		{1, 3, 33},
		{2, 3, 66},
		{0, 0, 0},
	}
	for _, tc := range tests {
		if got := Percent(tc.correct, tc.total); got != tc.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}

func TestScoringService_Score(t *testing.T) {
	svc := NewScoringService(newKeyStore())

	got, err := svc.Score(context.Background(), Submission{10: {"A"}, 20: {"A"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Percent != 50 {
		t.Fatalf("percent = %d, want 50", got.Percent)
	}

	if _, err := svc.Score(context.Background(), nil); !errors.Is(err, util.ErrEmptySubmission) {
		t.Fatalf("nil submission: got %v", err)
	}
}
