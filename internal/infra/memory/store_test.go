package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillnest/internal/app"
	"skillnest/internal/domain"
)

func TestStoreAssignsSequentialIDs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	u1, err := store.CreateUser(ctx, domain.User{Email: "a@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u2, _ := store.CreateUser(ctx, domain.User{Email: "b@example.com"})
	c1, _ := store.CreateCourse(ctx, sampleCourse())

	if u1.ID != 1 || u2.ID != 2 || c1.ID != 1 {
		t.Fatalf("expected per-entity sequences, got users %d,%d course %d", u1.ID, u2.ID, c1.ID)
	}
}

func TestStoreRejectsDuplicateEmail(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, _ = store.CreateUser(ctx, domain.User{Email: "john@example.com"})

	if _, err := store.CreateUser(ctx, domain.User{Email: "JOHN@example.com"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := store.GetUserByEmail(ctx, "John@Example.com"); err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
}

func TestStoreEnrollmentUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	e := domain.Enrollment{UserID: 1, CourseID: 1, CompletedModules: []string{}, EnrolledAt: time.Now()}

	if _, err := store.CreateEnrollment(ctx, e); err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	if _, err := store.CreateEnrollment(ctx, e); !errors.Is(err, domain.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
	if _, err := store.FindEnrollment(ctx, 1, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreCopiesSlices(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	e, _ := store.CreateEnrollment(ctx, domain.Enrollment{UserID: 1, CourseID: 1, CompletedModules: []string{"m1"}})

	e.CompletedModules[0] = "mutated"
	got, _ := store.GetEnrollment(ctx, e.ID)
	if got.CompletedModules[0] != "m1" {
		t.Fatalf("store shares slices with callers: %v", got.CompletedModules)
	}
}

func TestStoreCertificateUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	cert := domain.Certificate{UserID: 1, CourseID: 1, CertificateID: "CERT-JD-001-0001"}
	if _, err := store.CreateCertificate(ctx, cert); err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	if _, err := store.CreateCertificate(ctx, cert); !errors.Is(err, domain.ErrAlreadyCertified) {
		t.Fatalf("expected ErrAlreadyCertified, got %v", err)
	}
	other := domain.Certificate{UserID: 2, CourseID: 1, CertificateID: cert.CertificateID}
	if _, err := store.CreateCertificate(ctx, other); !errors.Is(err, domain.ErrCertificateCodeTaken) {
		t.Fatalf("expected ErrCertificateCodeTaken, got %v", err)
	}
	got, err := store.GetCertificateByCode(ctx, cert.CertificateID)
	if err != nil || got.UserID != 1 {
		t.Fatalf("get by code: %+v %v", got, err)
	}
}

func TestStoreUserBadgeUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	badge, _ := store.CreateBadge(ctx, domain.Badge{
		Name:        "First Course", Type: domain.BadgeCourse,
		Requirement: domain.CourseCountRequirement{CourseCount: 1}, XPReward: 100,
	})

	award := domain.UserBadge{UserID: 1, BadgeID: badge.ID, EarnedAt: time.Now()}
	if _, err := store.CreateUserBadge(ctx, award); err != nil {
		t.Fatalf("award badge: %v", err)
	}
	if _, err := store.CreateUserBadge(ctx, award); !errors.Is(err, domain.ErrBadgeAlreadyEarned) {
		t.Fatalf("expected ErrBadgeAlreadyEarned, got %v", err)
	}
	if _, err := store.CreateUserBadge(ctx, domain.UserBadge{UserID: 1, BadgeID: 99}); !errors.Is(err, domain.ErrBadgeNotFound) {
		t.Fatalf("expected ErrBadgeNotFound, got %v", err)
	}
}

func TestStoreListCoursesFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	published := sampleCourse()
	draft := sampleCourse()
	draft.Title = "Data Analytics"
	draft.Category = "Technical"
	draft.IsPublished = false
	_, _ = store.CreateCourse(ctx, published)
	_, _ = store.CreateCourse(ctx, draft)

	got, _ := store.ListCourses(ctx, app.CourseFilter{PublishedOnly: true})
	if len(got) != 1 || got[0].Title != published.Title {
		t.Fatalf("expected only the published course, got %d", len(got))
	}
	got, _ = store.ListCourses(ctx, app.CourseFilter{Search: "analytics"})
	if len(got) != 1 || got[0].Category != "Technical" {
		t.Fatalf("expected search match, got %d", len(got))
	}
}

func TestStoreListQuizAttempts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_, _ = store.CreateQuizAttempt(ctx, domain.QuizAttempt{UserID: 1, CourseID: 1, ModuleID: "m2", Score: 50})
	_, _ = store.CreateQuizAttempt(ctx, domain.QuizAttempt{UserID: 1, CourseID: 2, ModuleID: "m3", Score: 80})
	_, _ = store.CreateQuizAttempt(ctx, domain.QuizAttempt{UserID: 2, CourseID: 1, ModuleID: "m2", Score: 90})

	all, _ := store.ListQuizAttempts(ctx, 1, 0)
	if len(all) != 2 {
		t.Fatalf("expected 2 attempts for user 1, got %d", len(all))
	}
	one, _ := store.ListQuizAttempts(ctx, 1, 2)
	if len(one) != 1 || one[0].Score != 80 {
		t.Fatalf("expected the course 2 attempt, got %+v", one)
	}
}
