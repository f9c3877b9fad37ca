package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"skillnest/internal/app"
	"skillnest/internal/domain"
)

// Store is an in-memory implementation of app.Repository. Every entity
// type has its own id sequence starting at 1; ids are never reused.
// Values are copied on the way in and out so callers never share slices.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users        map[int64]domain.User
	courses      map[int64]domain.Course
	enrollments  map[int64]domain.Enrollment
	certificates map[int64]domain.Certificate
	badges       map[int64]domain.Badge
	userBadges   map[int64]domain.UserBadge
	attempts     map[int64]domain.QuizAttempt

	seq sequences
}

type sequences struct {
	user, course, enrollment, certificate, badge, userBadge, attempt int64
}

var _ app.Repository = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		courses:      make(map[int64]domain.Course),
		enrollments:  make(map[int64]domain.Enrollment),
		certificates: make(map[int64]domain.Certificate),
		badges:       make(map[int64]domain.Badge),
		userBadges:   make(map[int64]domain.UserBadge),
		attempts:     make(map[int64]domain.QuizAttempt),
	}
}

// Users

func (s *Store) GetUser(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	s.seq.user++
	user.ID = s.seq.user
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.users, func(domain.User) bool { return true }), nil
}

// Courses

func (s *Store) GetCourse(_ context.Context, id int64) (domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return cloneCourse(course), nil
}

func (s *Store) ListCourses(_ context.Context, filter app.CourseFilter) ([]domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := collect(s.courses, filter.Match)
	for i := range out {
		out[i] = cloneCourse(out[i])
	}
	return out, nil
}

func (s *Store) CreateCourse(_ context.Context, course domain.Course) (domain.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.course++
	course.ID = s.seq.course
	s.courses[course.ID] = cloneCourse(course)
	return cloneCourse(course), nil
}

func (s *Store) UpdateCourse(_ context.Context, course domain.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[course.ID]; !ok {
		return domain.ErrCourseNotFound
	}
	s.courses[course.ID] = cloneCourse(course)
	return nil
}

// Enrollments

func (s *Store) GetEnrollment(_ context.Context, id int64) (domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[id]
	if !ok {
		return domain.Enrollment{}, domain.ErrEnrollmentNotFound
	}
	return cloneEnrollment(e), nil
}

func (s *Store) FindEnrollment(_ context.Context, userID, courseID int64) (domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return cloneEnrollment(e), nil
		}
	}
	return domain.Enrollment{}, domain.ErrEnrollmentNotFound
}

func (s *Store) ListEnrollments(_ context.Context, userID int64) ([]domain.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := collect(s.enrollments, func(e domain.Enrollment) bool { return e.UserID == userID })
	for i := range out {
		out[i] = cloneEnrollment(out[i])
	}
	return out, nil
}

func (s *Store) CreateEnrollment(_ context.Context, e domain.Enrollment) (domain.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.enrollments {
		if existing.UserID == e.UserID && existing.CourseID == e.CourseID {
			return domain.Enrollment{}, domain.ErrAlreadyEnrolled
		}
	}
	s.seq.enrollment++
	e.ID = s.seq.enrollment
	s.enrollments[e.ID] = cloneEnrollment(e)
	return cloneEnrollment(e), nil
}

func (s *Store) UpdateEnrollment(_ context.Context, e domain.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[e.ID]; !ok {
		return domain.ErrEnrollmentNotFound
	}
	s.enrollments[e.ID] = cloneEnrollment(e)
	return nil
}

// Certificates

func (s *Store) FindCertificate(_ context.Context, userID, courseID int64) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.certificates {
		if c.UserID == userID && c.CourseID == courseID {
			return c, nil
		}
	}
	return domain.Certificate{}, domain.ErrCertificateNotFound
}

func (s *Store) GetCertificateByCode(_ context.Context, code string) (domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.certificates {
		if c.CertificateID == code {
			return c, nil
		}
	}
	return domain.Certificate{}, domain.ErrCertificateNotFound
}

func (s *Store) ListCertificates(_ context.Context, userID int64) ([]domain.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.certificates, func(c domain.Certificate) bool { return c.UserID == userID }), nil
}

// CreateCertificate enforces both uniqueness rules in one critical section.
func (s *Store) CreateCertificate(_ context.Context, cert domain.Certificate) (domain.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.certificates {
		if c.UserID == cert.UserID && c.CourseID == cert.CourseID {
			return domain.Certificate{}, domain.ErrAlreadyCertified
		}
		if c.CertificateID == cert.CertificateID {
			return domain.Certificate{}, domain.ErrCertificateCodeTaken
		}
	}
	s.seq.certificate++
	cert.ID = s.seq.certificate
	s.certificates[cert.ID] = cert
	return cert, nil
}

// Badges

func (s *Store) ListBadges(_ context.Context) ([]domain.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.badges, func(domain.Badge) bool { return true }), nil
}

func (s *Store) CreateBadge(_ context.Context, badge domain.Badge) (domain.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.badge++
	badge.ID = s.seq.badge
	s.badges[badge.ID] = badge
	return badge, nil
}

func (s *Store) ListUserBadges(_ context.Context, userID int64) ([]domain.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.userBadges, func(ub domain.UserBadge) bool { return ub.UserID == userID }), nil
}

func (s *Store) CreateUserBadge(_ context.Context, award domain.UserBadge) (domain.UserBadge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.badges[award.BadgeID]; !ok {
		return domain.UserBadge{}, domain.ErrBadgeNotFound
	}
	for _, ub := range s.userBadges {
		if ub.UserID == award.UserID && ub.BadgeID == award.BadgeID {
			return domain.UserBadge{}, domain.ErrBadgeAlreadyEarned
		}
	}
	s.seq.userBadge++
	award.ID = s.seq.userBadge
	s.userBadges[award.ID] = award
	return award, nil
}

// Quiz attempts

func (s *Store) CreateQuizAttempt(_ context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.attempt++
	attempt.ID = s.seq.attempt
	attempt.Answers = maps.Clone(attempt.Answers)
	s.attempts[attempt.ID] = attempt
	return attempt, nil
}

func (s *Store) ListQuizAttempts(_ context.Context, userID, courseID int64) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := collect(s.attempts, func(a domain.QuizAttempt) bool {
		return a.UserID == userID && (courseID == 0 || a.CourseID == courseID)
	})
	for i := range out {
		out[i].Answers = maps.Clone(out[i].Answers)
	}
	return out, nil
}

// collect returns the values passing keep, ordered by id (creation order).
func collect[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v := m[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func cloneCourse(c domain.Course) domain.Course {
	c.Modules = slices.Clone(c.Modules)
	c.Tags = slices.Clone(c.Tags)
	return c
}

func cloneEnrollment(e domain.Enrollment) domain.Enrollment {
	e.CompletedModules = slices.Clone(e.CompletedModules)
	if e.CompletedAt != nil {
		at := *e.CompletedAt
		e.CompletedAt = &at
	}
	return e
}
