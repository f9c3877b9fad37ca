package app

import (
	"math"

	"skillnest/internal/domain"
)

// GradeResult is the outcome of grading one submission.
type GradeResult struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correctCount"`
	Total        int `json:"total"`
}

// Grade scores answers (question id -> option index) against questions.
// Missing or out-of-range answers count as incorrect; an empty bank scores 0.
func Grade(questions []domain.Question, answers map[string]int) GradeResult {
	result := GradeResult{Total: len(questions)}
	for _, q := range questions {
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		if chosen == q.CorrectAnswer && chosen >= 0 && chosen < len(q.Options) {
			result.CorrectCount++
		}
	}
	if result.Total > 0 {
		result.Score = int(math.Round(100 * float64(result.CorrectCount) / float64(result.Total)))
	}
	return result
}
