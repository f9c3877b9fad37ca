package app

import (
	"context"
	"errors"
	"fmt"

	"skillnest/internal/domain"
)

// EnrollmentView is an enrollment joined with its course.
type EnrollmentView struct {
	domain.Enrollment
	Course *domain.Course `json:"course"`
}

// Rewards summarizes XP and badges earned by one request.
type Rewards struct {
	XPGained int            `json:"xpGained"`
	Badges   []domain.Badge `json:"badges"`
	TotalXP  int            `json:"totalXP"`
	Level    int            `json:"level"`
}

// ProgressResult is the updated enrollment, serialized flat, plus the
// certificate and rewards the update produced.
type ProgressResult struct {
	domain.Enrollment
	Certificate *domain.Certificate `json:"certificate"`
	Rewards     Rewards             `json:"rewards"`
}

// Enroll registers a user on a published course, once per (user, course).
func (s *Service) Enroll(ctx context.Context, userID, courseID int64) (domain.Enrollment, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return domain.Enrollment{}, err
	}
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return domain.Enrollment{}, err
	}
	if !course.IsPublished {
		return domain.Enrollment{}, domain.ErrCourseNotPublished
	}

	var created domain.Enrollment
	err = s.inLearnerTx(ctx, userID, func(repo Repository) error {
		if _, err := repo.FindEnrollment(ctx, userID, courseID); err == nil {
			return domain.ErrAlreadyEnrolled
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		created, err = repo.CreateEnrollment(ctx, domain.Enrollment{
			UserID:           userID,
			CourseID:         courseID,
			CompletedModules: []string{},
			EnrolledAt:       s.now(),
		})
		return err
	})
	if err != nil {
		return domain.Enrollment{}, err
	}
	s.log.Info("user enrolled", "userId", userID, "courseId", courseID, "enrollmentId", created.ID)
	return created, nil
}

// ListEnrollments returns the user's enrollments with their courses.
func (s *Service) ListEnrollments(ctx context.Context, userID int64) ([]EnrollmentView, error) {
	enrollments, err := s.repo.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		view := EnrollmentView{Enrollment: e}
		course, err := s.courses.GetCourse(ctx, e.CourseID)
		switch {
		case err == nil:
			view.Course = &course
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// CompleteModule marks one module completed. score, when set, becomes the
// certificate score if this completion finishes the course.
func (s *Service) CompleteModule(ctx context.Context, enrollmentID int64, moduleID string, score *int) (ProgressResult, error) {
	return s.UpdateProgress(ctx, enrollmentID, []string{moduleID}, score)
}

// UpdateProgress completes every listed module in one step. Completion is
// monotonic: modules are only ever added. Events fire once per newly
// completed module and once when the course reaches 100%, after which a
// certificate is issued if the pair has none.
func (s *Service) UpdateProgress(ctx context.Context, enrollmentID int64, moduleIDs []string, score *int) (ProgressResult, error) {
	if len(moduleIDs) == 0 {
		return ProgressResult{}, domain.NewValidationError("moduleId", "is required")
	}
	current, err := s.repo.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return ProgressResult{}, err
	}

	var result ProgressResult
	err = s.inLearnerTx(ctx, current.UserID, func(repo Repository) error {
		// Re-read under the lock; another request may have advanced it.
		e, err := repo.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}
		course, err := s.courses.GetCourse(ctx, e.CourseID)
		if err != nil {
			return err
		}
		for _, id := range moduleIDs {
			if !course.HasModule(id) {
				return fmt.Errorf("%w (%q)", domain.ErrModuleNotInCourse, id)
			}
		}

		updated := e
		newlyCompleted := 0
		for _, id := range moduleIDs {
			if !updated.HasCompleted(id) {
				newlyCompleted++
			}
			updated = CompleteModule(updated, id, len(course.Modules), s.now())
		}
		if err := repo.UpdateEnrollment(ctx, updated); err != nil {
			return err
		}

		var events []domain.Event
		for i := 0; i < newlyCompleted; i++ {
			events = append(events, domain.Event{Kind: domain.EventModuleCompleted, Enrollment: &updated})
		}
		if !e.IsCompleted() && updated.IsCompleted() {
			events = append(events, domain.Event{Kind: domain.EventCourseCompleted, Enrollment: &updated})
		}
		rewards, err := s.applyEvents(ctx, repo, updated.UserID, events)
		if err != nil {
			return err
		}

		var cert *domain.Certificate
		if updated.Progress == 100 {
			var final int
			if score != nil {
				final = *score
			} else {
				final, err = courseScore(ctx, repo, updated.UserID, course)
				if err != nil {
					return err
				}
			}
			if cert, err = s.issuer.using(repo).IssueIfEligible(ctx, updated, course, final); err != nil {
				return err
			}
		}

		result = ProgressResult{Enrollment: updated, Certificate: cert, Rewards: rewards}
		return nil
	})
	if err != nil {
		return ProgressResult{}, err
	}

	s.log.Info("progress updated",
		"enrollmentId", enrollmentID,
		"userId", result.Enrollment.UserID,
		"progress", result.Enrollment.Progress,
		"xpGained", result.Rewards.XPGained,
		"certified", result.Certificate != nil,
	)
	return result, nil
}

// courseScore is the mean of the best attempt per attempted quiz module,
// or 100 when no quiz of the course was attempted.
func courseScore(ctx context.Context, repo Repository, userID int64, course domain.Course) (int, error) {
	attempts, err := repo.ListQuizAttempts(ctx, userID, course.ID)
	if err != nil {
		return 0, err
	}
	best := make(map[string]int)
	for _, a := range attempts {
		if prev, ok := best[a.ModuleID]; !ok || a.Score > prev {
			best[a.ModuleID] = a.Score
		}
	}
	sum, n := 0, 0
	for _, m := range course.QuizModules() {
		if score, ok := best[m.ID]; ok {
			sum += score
			n++
		}
	}
	if n == 0 {
		return 100, nil
	}
	return (sum + n/2) / n, nil
}
