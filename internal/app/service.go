package app

import (
	"context"
	"fmt"
	"time"

	"skillnest/internal/logger"
)

// Service contains the learning platform use cases: enrollment, progress,
// quizzes, rewards and certificates.
type Service struct {
	repo    Repository
	courses CourseReader
	locker  Locker
	issuer  *CertificateIssuer
	log     *logger.Logger
	now     func() time.Time
}

// NewService wires the use cases. courses may be a cache in front of repo;
// when nil, courses are read from repo directly.
func NewService(repo Repository, courses CourseReader, locker Locker, log *logger.Logger) *Service {
	return NewServiceWithClock(repo, courses, locker, log, time.Now)
}

// NewServiceWithClock is used by tests that need deterministic timestamps.
func NewServiceWithClock(repo Repository, courses CourseReader, locker Locker, log *logger.Logger, now func() time.Time) *Service {
	if courses == nil {
		courses = repo
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:    repo,
		courses: courses,
		locker:  locker,
		issuer:  NewCertificateIssuer(repo, now),
		log:     log,
		now:     now,
	}
}

// inLearnerTx runs fn as one unit of work while holding the learner's
// aggregate lock, so enrollment updates, XP, badge awards and certificate
// issuance for one user never interleave and never half-apply.
func (s *Service) inLearnerTx(ctx context.Context, userID int64, fn func(repo Repository) error) error {
	unlock, err := s.locker.Lock(ctx, learnerKey(userID))
	if err != nil {
		return fmt.Errorf("lock learner %d: %w", userID, err)
	}
	defer unlock()
	return s.repo.RunInTx(ctx, fn)
}

func learnerKey(userID int64) string {
	return fmt.Sprintf("learner:%d", userID)
}
