package app

import (
	"context"
	"errors"
	"strings"

	"skillnest/internal/domain"
)

// AllCategories is the catalog filter value that disables category filtering.
const AllCategories = "All Categories"

// ListCourses returns published courses, optionally filtered by exact
// category and a case-insensitive search over title, description and tags.
func (s *Service) ListCourses(ctx context.Context, category, search string) ([]domain.Course, error) {
	category = strings.TrimSpace(category)
	if category == AllCategories {
		category = ""
	}
	return s.repo.ListCourses(ctx, CourseFilter{
		PublishedOnly: true,
		Category:      category,
		Search:        strings.TrimSpace(search),
	})
}

// GetCourse returns a course with its modules.
func (s *Service) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	return s.courses.GetCourse(ctx, id)
}

// CreateCourse validates and stores a new course.
func (s *Service) CreateCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	if err := course.Validate(); err != nil {
		return domain.Course{}, err
	}
	if course.AuthorID != 0 {
		if _, err := s.repo.GetUser(ctx, course.AuthorID); errors.Is(err, domain.ErrNotFound) {
			return domain.Course{}, domain.NewValidationError("authorId", "unknown user")
		} else if err != nil {
			return domain.Course{}, err
		}
	}
	if course.Tags == nil {
		course.Tags = []string{}
	}
	if course.Modules == nil {
		course.Modules = []domain.Module{}
	}
	course.CreatedAt = s.now()

	created, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		return domain.Course{}, err
	}
	s.log.Info("course created", "courseId", created.ID, "modules", len(created.Modules), "published", created.IsPublished)
	return created, nil
}

// SetCoursePublished toggles catalog visibility and drops cached copies.
func (s *Service) SetCoursePublished(ctx context.Context, id int64, published bool) (domain.Course, error) {
	course, err := s.repo.GetCourse(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}
	if course.IsPublished == published {
		return course, nil
	}
	course.IsPublished = published
	if err := s.repo.UpdateCourse(ctx, course); err != nil {
		return domain.Course{}, err
	}
	if inv, ok := s.courses.(CourseInvalidator); ok {
		if err := inv.Invalidate(ctx, id); err != nil {
			s.log.Warn("course cache invalidation failed", "courseId", id, "error", err)
		}
	}
	return course, nil
}
