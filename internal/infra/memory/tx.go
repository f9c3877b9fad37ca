package memory

import (
	"context"

	"skillnest/internal/app"
	"skillnest/internal/domain"
)

// RunInTx runs fn on a view of the store that journals its writes. If fn
// fails (or panics) the journal is replayed backwards, restoring every
// entity it touched. Transactions run one at a time; id sequences are not
// rewound, so ids are never reused.
func (s *Store) RunInTx(ctx context.Context, fn func(app.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return (&txStore{Store: s}).RunInTx(ctx, fn)
}

// txStore overrides the write methods of Store to record how to undo them.
type txStore struct {
	*Store
	undo []func()
}

var _ app.Repository = (*txStore)(nil)

// RunInTx on an open transaction behaves like a savepoint.
func (t *txStore) RunInTx(_ context.Context, fn func(app.Repository) error) (err error) {
	mark := len(t.undo)
	done := false
	defer func() {
		if !done {
			t.rollbackTo(mark)
		}
	}()
	if err = fn(t); err != nil {
		return err
	}
	done = true
	return nil
}

func (t *txStore) rollbackTo(mark int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.undo) - 1; i >= mark; i-- {
		t.undo[i]()
	}
	t.undo = t.undo[:mark]
}

// onRollback registers an undo step; steps run with mu held.
func (t *txStore) onRollback(step func()) {
	t.undo = append(t.undo, step)
}

func (t *txStore) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := t.Store.CreateUser(ctx, user)
	if err == nil {
		t.onRollback(func() { delete(t.users, created.ID) })
	}
	return created, err
}

func (t *txStore) UpdateUser(ctx context.Context, user domain.User) error {
	prev, err := t.Store.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := t.Store.UpdateUser(ctx, user); err != nil {
		return err
	}
	t.onRollback(func() { t.users[prev.ID] = prev })
	return nil
}

func (t *txStore) CreateCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	created, err := t.Store.CreateCourse(ctx, course)
	if err == nil {
		t.onRollback(func() { delete(t.courses, created.ID) })
	}
	return created, err
}

func (t *txStore) UpdateCourse(ctx context.Context, course domain.Course) error {
	prev, err := t.Store.GetCourse(ctx, course.ID)
	if err != nil {
		return err
	}
	if err := t.Store.UpdateCourse(ctx, course); err != nil {
		return err
	}
	t.onRollback(func() { t.courses[prev.ID] = prev })
	return nil
}

func (t *txStore) CreateEnrollment(ctx context.Context, e domain.Enrollment) (domain.Enrollment, error) {
	created, err := t.Store.CreateEnrollment(ctx, e)
	if err == nil {
		t.onRollback(func() { delete(t.enrollments, created.ID) })
	}
	return created, err
}

func (t *txStore) UpdateEnrollment(ctx context.Context, e domain.Enrollment) error {
	prev, err := t.Store.GetEnrollment(ctx, e.ID)
	if err != nil {
		return err
	}
	if err := t.Store.UpdateEnrollment(ctx, e); err != nil {
		return err
	}
	t.onRollback(func() { t.enrollments[prev.ID] = prev })
	return nil
}

func (t *txStore) CreateCertificate(ctx context.Context, cert domain.Certificate) (domain.Certificate, error) {
	created, err := t.Store.CreateCertificate(ctx, cert)
	if err == nil {
		t.onRollback(func() { delete(t.certificates, created.ID) })
	}
	return created, err
}

func (t *txStore) CreateBadge(ctx context.Context, badge domain.Badge) (domain.Badge, error) {
	created, err := t.Store.CreateBadge(ctx, badge)
	if err == nil {
		t.onRollback(func() { delete(t.badges, created.ID) })
	}
	return created, err
}

func (t *txStore) CreateUserBadge(ctx context.Context, award domain.UserBadge) (domain.UserBadge, error) {
	created, err := t.Store.CreateUserBadge(ctx, award)
	if err == nil {
		t.onRollback(func() { delete(t.userBadges, created.ID) })
	}
	return created, err
}

func (t *txStore) CreateQuizAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	created, err := t.Store.CreateQuizAttempt(ctx, attempt)
	if err == nil {
		t.onRollback(func() { delete(t.attempts, created.ID) })
	}
	return created, err
}
