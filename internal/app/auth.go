package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"skillnest/internal/domain"
)

const minPasswordLength = 8

// RegisterInput is a new account request.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	Role       domain.Role
	FirstName  string
	LastName   string
	Department string
}

// Register creates an account with a bcrypt password hash. Role defaults to learner.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	user := domain.User{
		Username:   strings.TrimSpace(in.Username),
		Email:      normalizeEmail(in.Email),
		Role:       in.Role,
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Department: strings.TrimSpace(in.Department),
		CreatedAt:  s.now(),
	}
	if user.Role == "" {
		user.Role = domain.RoleLearner
	}
	user.SetXP(0)

	verr := &domain.ValidationError{}
	if err := user.Validate(); err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return domain.User{}, err
		}
		for k, v := range ve.Fields {
			verr.Add(k, v)
		}
	}
	if len(in.Password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if err := verr.OrNil(); err != nil {
		return domain.User{}, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, user.Email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = hash

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("user registered", "userId", created.ID, "role", created.Role)
	return created, nil
}

// Login checks credentials. Unknown emails and wrong passwords both yield
// domain.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrUnauthorized
	}
	return user, nil
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
