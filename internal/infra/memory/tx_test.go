package memory

import (
	"context"
	"errors"
	"testing"

	"skillnest/internal/app"
	"skillnest/internal/domain"
)

func TestRunInTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	user, err := store.CreateUser(ctx, domain.User{Email: "a@example.com", TotalXP: 10})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	enrollment, err := store.CreateEnrollment(ctx, domain.Enrollment{UserID: user.ID, CourseID: 1, CompletedModules: []string{}})
	if err != nil {
		t.Fatalf("create enrollment: %v", err)
	}

	boom := errors.New("boom")
	err = store.RunInTx(ctx, func(repo app.Repository) error {
		enrollment.Progress = 50
		enrollment.CompletedModules = []string{"m1"}
		if err := repo.UpdateEnrollment(ctx, enrollment); err != nil {
			return err
		}
		if _, err := repo.CreateQuizAttempt(ctx, domain.QuizAttempt{UserID: user.ID, CourseID: 1, ModuleID: "m2"}); err != nil {
			return err
		}
		user.TotalXP = 35
		if err := repo.UpdateUser(ctx, user); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	stored, _ := store.GetEnrollment(ctx, enrollment.ID)
	if stored.Progress != 0 || len(stored.CompletedModules) != 0 {
		t.Fatalf("enrollment not restored: %+v", stored)
	}
	storedUser, _ := store.GetUser(ctx, user.ID)
	if storedUser.TotalXP != 10 {
		t.Fatalf("user not restored: %+v", storedUser)
	}
	attempts, _ := store.ListQuizAttempts(ctx, user.ID, 0)
	if len(attempts) != 0 {
		t.Fatalf("attempt not removed: %+v", attempts)
	}
}

func TestRunInTxCommitsAndNestsAsSavepoint(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.RunInTx(ctx, func(repo app.Repository) error {
		if _, err := repo.CreateUser(ctx, domain.User{Email: "kept@example.com"}); err != nil {
			return err
		}
		inner := repo.RunInTx(ctx, func(repo app.Repository) error {
			if _, err := repo.CreateUser(ctx, domain.User{Email: "dropped@example.com"}); err != nil {
				return err
			}
			_, err := repo.CreateUser(ctx, domain.User{Email: "KEPT@example.com"})
			return err
		})
		if !errors.Is(inner, domain.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken from the nested call, got %v", inner)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run in tx: %v", err)
	}

	users, _ := store.ListUsers(ctx)
	if len(users) != 1 || users[0].Email != "kept@example.com" {
		t.Fatalf("expected only the outer write to survive, got %+v", users)
	}
	if _, err := store.GetUserByEmail(ctx, "dropped@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("nested write survived: %v", err)
	}
}
