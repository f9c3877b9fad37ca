package app

import (
	"context"

	"skillnest/internal/domain"
)

// UserRepository stores accounts. ListUsers returns users in creation order.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// CourseFilter narrows catalog listings. Zero values do not filter.
type CourseFilter struct {
	PublishedOnly bool
	Category      string
	Search        string
}

// CourseRepository stores the catalog.
type CourseRepository interface {
	GetCourse(ctx context.Context, id int64) (domain.Course, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]domain.Course, error)
	CreateCourse(ctx context.Context, course domain.Course) (domain.Course, error)
	UpdateCourse(ctx context.Context, course domain.Course) error
}

// EnrollmentRepository stores enrollments, unique per (UserID, CourseID).
type EnrollmentRepository interface {
	GetEnrollment(ctx context.Context, id int64) (domain.Enrollment, error)
	FindEnrollment(ctx context.Context, userID, courseID int64) (domain.Enrollment, error)
	ListEnrollments(ctx context.Context, userID int64) ([]domain.Enrollment, error)
	CreateEnrollment(ctx context.Context, enrollment domain.Enrollment) (domain.Enrollment, error)
	UpdateEnrollment(ctx context.Context, enrollment domain.Enrollment) error
}

// CertificateRepository stores certificates, unique per (UserID, CourseID)
// and per CertificateID.
type CertificateRepository interface {
	FindCertificate(ctx context.Context, userID, courseID int64) (domain.Certificate, error)
	GetCertificateByCode(ctx context.Context, code string) (domain.Certificate, error)
	ListCertificates(ctx context.Context, userID int64) ([]domain.Certificate, error)
	CreateCertificate(ctx context.Context, cert domain.Certificate) (domain.Certificate, error)
}

// BadgeRepository stores the badge catalog and awards, awards unique per (UserID, BadgeID).
type BadgeRepository interface {
	ListBadges(ctx context.Context) ([]domain.Badge, error)
	CreateBadge(ctx context.Context, badge domain.Badge) (domain.Badge, error)
	ListUserBadges(ctx context.Context, userID int64) ([]domain.UserBadge, error)
	CreateUserBadge(ctx context.Context, award domain.UserBadge) (domain.UserBadge, error)
}

// QuizAttemptRepository is an append-only attempt log. A zero courseID lists all courses.
type QuizAttemptRepository interface {
	CreateQuizAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error)
	ListQuizAttempts(ctx context.Context, userID, courseID int64) ([]domain.QuizAttempt, error)
}

// Repository abstracts how entities are stored (in-memory, Postgres).
// Implementations assign monotonically increasing ids per entity type
// and report missing rows with domain not-found errors.
type Repository interface {
	UserRepository
	CourseRepository
	EnrollmentRepository
	CertificateRepository
	BadgeRepository
	QuizAttemptRepository

	// RunInTx runs fn as one unit of work: when fn returns an error every
	// write made through the Repository passed to fn is undone.
	RunInTx(ctx context.Context, fn func(Repository) error) error
}

// CourseReader loads courses, typically through a cache in front of the repository.
type CourseReader interface {
	GetCourse(ctx context.Context, id int64) (domain.Course, error)
}

// CourseInvalidator is implemented by caching readers that must drop stale courses.
type CourseInvalidator interface {
	Invalidate(ctx context.Context, id int64) error
}

// Locker serializes read-modify-write sequences on one aggregate key.
// The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Match reports whether c passes the filter.
func (f CourseFilter) Match(c domain.Course) bool {
	if f.PublishedOnly && !c.IsPublished {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	return c.Matches(f.Search)
}
