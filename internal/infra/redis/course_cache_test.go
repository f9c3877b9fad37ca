package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"skillnest/internal/domain"
	"skillnest/internal/infra/memory"
)

func TestCourseCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := memory.NewStore()
	course, err := store.CreateCourse(context.Background(), sampleCourse())
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	loader := &countingLoader{store: store}
	cache := NewCourseCache(newClient(mr), loader, time.Minute)

	if _, err := cache.GetCourse(context.Background(), course.ID); err != nil {
		t.Fatalf("get course: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("course:1") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache and decode the module variants.
	got, err := cache.GetCourse(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("get course 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(got.Modules) != 2 || len(got.Modules[1].Questions()) != 1 {
		t.Fatalf("expected quiz module to survive the round trip, got %+v", got.Modules)
	}
}

func TestCourseCacheInvalidateDeletesKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := memory.NewStore()
	course, _ := store.CreateCourse(context.Background(), sampleCourse())
	cache := NewCourseCache(newClient(mr), &countingLoader{store: store}, time.Minute)

	_, _ = cache.GetCourse(context.Background(), course.ID)
	if err := cache.Invalidate(context.Background(), course.ID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("course:1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestCourseCacheMissPropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewCourseCache(newClient(mr), &countingLoader{store: memory.NewStore()}, time.Minute)
	if _, err := cache.GetCourse(context.Background(), 7); !errors.Is(err, domain.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
	if mr.Exists("course:7") {
		t.Fatalf("misses must not be cached")
	}
}

type countingLoader struct {
	store *memory.Store
	calls int
}

func (l *countingLoader) GetCourse(ctx context.Context, id int64) (domain.Course, error) {
	l.calls++
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
				{ID: "q1", Prompt: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1},
			}}},
		},
		Tags: []string{"leadership"},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
