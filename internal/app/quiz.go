package app

import (
	"context"
	"fmt"

	"skillnest/internal/domain"
)

// QuizSubmission models a learner's answers to one quiz module.
type QuizSubmission struct {
	UserID   int64
	CourseID int64
	ModuleID string
	Answers  map[string]int
}

// QuizResult is the recorded attempt, serialized flat, plus the grade
// breakdown and what it earned.
type QuizResult struct {
	domain.QuizAttempt
	Grade   GradeResult `json:"grade"`
	Rewards Rewards     `json:"rewards"`
}

// SubmitQuiz grades the submission against the module's question bank,
// appends an attempt (every submission, not just the first) and applies
// quiz rewards.
func (s *Service) SubmitQuiz(ctx context.Context, sub QuizSubmission) (QuizResult, error) {
	verr := &domain.ValidationError{}
	if sub.UserID <= 0 {
		verr.Add("userId", "is required")
	}
	if sub.CourseID <= 0 {
		verr.Add("courseId", "is required")
	}
	if sub.ModuleID == "" {
		verr.Add("moduleId", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return QuizResult{}, err
	}
	if _, err := s.repo.GetUser(ctx, sub.UserID); err != nil {
		return QuizResult{}, err
	}
	course, err := s.courses.GetCourse(ctx, sub.CourseID)
	if err != nil {
		return QuizResult{}, err
	}
	module, ok := course.Module(sub.ModuleID)
	if !ok {
		return QuizResult{}, fmt.Errorf("%w (%q)", domain.ErrModuleNotFound, sub.ModuleID)
	}
	if module.Type != domain.ModuleQuiz {
		return QuizResult{}, domain.ErrNotQuizModule
	}
	answers := sub.Answers
	if answers == nil {
		answers = map[string]int{}
	}

	var result QuizResult
	err = s.inLearnerTx(ctx, sub.UserID, func(repo Repository) error {
		grade := Grade(module.Questions(), answers)
		attempt, err := repo.CreateQuizAttempt(ctx, domain.QuizAttempt{
			UserID:      sub.UserID,
			CourseID:    sub.CourseID,
			ModuleID:    sub.ModuleID,
			Answers:     answers,
			Score:       grade.Score,
			CompletedAt: s.now(),
		})
		if err != nil {
			return err
		}
		rewards, err := s.applyEvents(ctx, repo, sub.UserID, []domain.Event{{Kind: domain.EventQuizGraded, QuizScore: grade.Score}})
		if err != nil {
			return err
		}
		result = QuizResult{QuizAttempt: attempt, Grade: grade, Rewards: rewards}
		return nil
	})
	if err != nil {
		return QuizResult{}, err
	}
	s.log.Info("quiz graded", "userId", sub.UserID, "courseId", sub.CourseID, "moduleId", sub.ModuleID, "score", result.Grade.Score)
	return result, nil
}

// ListQuizAttempts returns a user's attempts, for one course when courseID > 0.
func (s *Service) ListQuizAttempts(ctx context.Context, userID, courseID int64) ([]domain.QuizAttempt, error) {
	return s.repo.ListQuizAttempts(ctx, userID, courseID)
}
