package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"skillnest/internal/app"
	"skillnest/internal/domain"
)

// CourseLoader reads course documents, modules JSONB included, straight
// from the pool. It backs the course caches on the hot read path.
type CourseLoader struct {
	pool *pgxpool.Pool
}

var _ app.CourseReader = (*CourseLoader)(nil)

func NewCourseLoader(pool *pgxpool.Pool) *CourseLoader {
	return &CourseLoader{pool: pool}
}

const selectCourse = `
SELECT id, title, description, category, level, duration, thumbnail,
       coalesce(author_id, 0), modules, tags, is_published, created_at
FROM courses WHERE id=$1`

func (l *CourseLoader) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	var (
		course  domain.Course
		level   string
		modules []byte
	)
	err := l.pool.QueryRow(ctx, selectCourse, id).Scan(
		&course.ID, &course.Title, &course.Description, &course.Category, &level,
		&course.Duration, &course.Thumbnail, &course.AuthorID, &modules, &course.Tags,
		&course.IsPublished, &course.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	if err != nil {
		return domain.Course{}, fmt.Errorf("load course: %w", err)
	}
	course.Level = domain.CourseLevel(level)
	if err := json.Unmarshal(modules, &course.Modules); err != nil {
		return domain.Course{}, fmt.Errorf("unmarshal modules: %w", err)
	}
	course.Modules = nonNil(course.Modules)
	course.Tags = nonNil(course.Tags)
	return course, nil
}
