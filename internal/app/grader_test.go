package app_test

import (
	"testing"

	"skillnest/internal/app"
	"skillnest/internal/domain"
)

func questions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "2+2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1},
		{ID: "q2", Prompt: "3+3?", Options: []string{"6", "7"}, CorrectAnswer: 0},
		{ID: "q3", Prompt: "1+1?", Options: []string{"1", "2"}, CorrectAnswer: 1},
	}
}

func TestGradeCountsCorrectAnswers(t *testing.T) {
	got := app.Grade(questions(), map[string]int{"q1": 1, "q2": 1, "q3": 1})
	if got.CorrectCount != 2 || got.Total != 3 || got.Score != 67 {
		t.Fatalf("unexpected grade %+v", got)
	}
}

func TestGradeMissingAndOutOfRangeAnswers(t *testing.T) {
	got := app.Grade(questions(), map[string]int{"q1": 9, "q2": -1, "unknown": 0})
	if got.CorrectCount != 0 || got.Score != 0 {
		t.Fatalf("expected zero score, got %+v", got)
	}
}

func TestGradeEmptyBank(t *testing.T) {
	got := app.Grade(nil, map[string]int{"q1": 0})
	if got.Score != 0 || got.Total != 0 {
		t.Fatalf("expected empty grade, got %+v", got)
	}
}
