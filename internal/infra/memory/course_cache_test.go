package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"skillnest/internal/domain"
)

func TestCourseCacheCaches(t *testing.T) {
	store := NewStore()
	course, err := store.CreateCourse(context.Background(), sampleCourse())
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	loader := &countingLoader{store: store}
	cache := NewCourseCache(loader, time.Minute)

	if _, err := cache.GetCourse(context.Background(), course.ID); err != nil {
		t.Fatalf("get course: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}

	got, err := cache.GetCourse(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("get course 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
	if got.Title != course.Title {
		t.Fatalf("expected title %q, got %q", course.Title, got.Title)
	}
}

func TestCourseCacheInvalidate(t *testing.T) {
	store := NewStore()
	course, _ := store.CreateCourse(context.Background(), sampleCourse())
	loader := &countingLoader{store: store}
	cache := NewCourseCache(loader, time.Minute)

	_, _ = cache.GetCourse(context.Background(), course.ID)
	course.IsPublished = false
	if err := store.UpdateCourse(context.Background(), course); err != nil {
		t.Fatalf("update course: %v", err)
	}
	if err := cache.Invalidate(context.Background(), course.ID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	got, err := cache.GetCourse(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("get course: %v", err)
	}
	if got.IsPublished {
		t.Fatalf("expected reloaded course to be unpublished")
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls.Load())
	}
}

func TestCourseCacheExpires(t *testing.T) {
	store := NewStore()
	course, _ := store.CreateCourse(context.Background(), sampleCourse())
	loader := &countingLoader{store: store}
	cache := NewCourseCache(loader, time.Minute)
	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, _ = cache.GetCourse(context.Background(), course.ID)
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetCourse(context.Background(), course.ID)

	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls.Load())
	}
}

func TestCourseCacheDoesNotCacheMisses(t *testing.T) {
	loader := &countingLoader{store: NewStore()}
	cache := NewCourseCache(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cache.GetCourse(context.Background(), 42); !errors.Is(err, domain.ErrCourseNotFound) {
			t.Fatalf("expected ErrCourseNotFound, got %v", err)
		}
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected misses to reach loader, calls %d", loader.calls.Load())
	}
}

type countingLoader struct {
	store *Store
	calls atomic.Int32
}

func (l *countingLoader) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	l.calls.Add(1)
	return l.store.GetCourse(ctx, id)
}

func sampleCourse() domain.Course {
	return domain.Course{
		Title:       "Leadership Fundamentals",
		Description: "Essential leadership skills",
		Category:    "Leadership",
		Level:       domain.CourseBeginner,
		Duration:    "2 hours",
		IsPublished: true,
		Modules: []domain.Module{
			{ID: "m1", Type: domain.ModuleText, Title: "Intro", Content: domain.TextContent{Body: "Welcome"}},
			{ID: "m2", Type: domain.ModuleQuiz, Title: "Check", Content: domain.QuizContent{Questions: []domain.Question{
				{ID: "q1", Prompt: "2+2?", Type: "multiple-choice", Options: []string{"3", "4"}, CorrectAnswer: 1},
			}}},
		},
		Tags: []string{"leadership"},
	}
}
