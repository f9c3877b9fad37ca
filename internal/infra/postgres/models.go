package postgres

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
	"skillnest/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username"`
	Email        string    `bun:"email"`
	PasswordHash string    `bun:"password_hash"`
	Role         string    `bun:"role"`
	FirstName    string    `bun:"first_name"`
	LastName     string    `bun:"last_name"`
	Department   string    `bun:"department"`
	TotalXP      int       `bun:"total_xp"`
	Level        int       `bun:"level"`
	CreatedAt    time.Time `bun:"created_at"`
}

func newUserRow(u domain.User) *userRow {
	return &userRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Department:   u.Department,
		TotalXP:      u.TotalXP,
		Level:        u.Level,
		CreatedAt:    u.CreatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Department:   r.Department,
		TotalXP:      r.TotalXP,
		Level:        r.Level,
		CreatedAt:    r.CreatedAt,
	}
}

type courseRow struct {
	bun.BaseModel `bun:"table:courses"`

	ID          int64           `bun:"id,pk,autoincrement"`
	Title       string          `bun:"title"`
	Description string          `bun:"description"`
	Category    string          `bun:"category"`
	Level       string          `bun:"level"`
	Duration    string          `bun:"duration"`
	Thumbnail   string          `bun:"thumbnail"`
	AuthorID    int64           `bun:"author_id,nullzero"`
	Modules     []domain.Module `bun:"modules,type:jsonb"`
	Tags        []string        `bun:"tags,array"`
	IsPublished bool            `bun:"is_published"`
	CreatedAt   time.Time       `bun:"created_at"`
}

func newCourseRow(c domain.Course) *courseRow {
	return &courseRow{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Level:       string(c.Level),
		Duration:    c.Duration,
		Thumbnail:   c.Thumbnail,
		AuthorID:    c.AuthorID,
		Modules:     nonNil(c.Modules),
		Tags:        nonNil(c.Tags),
		IsPublished: c.IsPublished,
		CreatedAt:   c.CreatedAt,
	}
}

func (r courseRow) toDomain() domain.Course {
	return domain.Course{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Level:       domain.CourseLevel(r.Level),
		Duration:    r.Duration,
		Thumbnail:   r.Thumbnail,
		AuthorID:    r.AuthorID,
		Modules:     nonNil(r.Modules),
		Tags:        nonNil(r.Tags),
		IsPublished: r.IsPublished,
		CreatedAt:   r.CreatedAt,
	}
}

type enrollmentRow struct {
	bun.BaseModel `bun:"table:enrollments"`

	ID               int64      `bun:"id,pk,autoincrement"`
	UserID           int64      `bun:"user_id"`
	CourseID         int64      `bun:"course_id"`
	Progress         int        `bun:"progress"`
	CompletedModules []string   `bun:"completed_modules,array"`
	EnrolledAt       time.Time  `bun:"enrolled_at"`
	CompletedAt      *time.Time `bun:"completed_at"`
}

func newEnrollmentRow(e domain.Enrollment) *enrollmentRow {
	return &enrollmentRow{
		ID:               e.ID,
		UserID:           e.UserID,
		CourseID:         e.CourseID,
		Progress:         e.Progress,
		CompletedModules: nonNil(e.CompletedModules),
		EnrolledAt:       e.EnrolledAt,
		CompletedAt:      e.CompletedAt,
	}
}

func (r enrollmentRow) toDomain() domain.Enrollment {
	return domain.Enrollment{
		ID:               r.ID,
		UserID:           r.UserID,
		CourseID:         r.CourseID,
		Progress:         r.Progress,
		CompletedModules: nonNil(r.CompletedModules),
		EnrolledAt:       r.EnrolledAt,
		CompletedAt:      r.CompletedAt,
	}
}

type certificateRow struct {
	bun.BaseModel `bun:"table:certificates"`

	ID            int64     `bun:"id,pk,autoincrement"`
	UserID        int64     `bun:"user_id"`
	CourseID      int64     `bun:"course_id"`
	CertificateID string    `bun:"certificate_id"`
	Score         int       `bun:"score"`
	IssuedAt      time.Time `bun:"issued_at"`
}

func (r certificateRow) toDomain() domain.Certificate {
	return domain.Certificate{
		ID:            r.ID,
		UserID:        r.UserID,
		CourseID:      r.CourseID,
		CertificateID: r.CertificateID,
		Score:         r.Score,
		IssuedAt:      r.IssuedAt,
	}
}

type badgeRow struct {
	bun.BaseModel `bun:"table:badges"`

	ID          int64           `bun:"id,pk,autoincrement"`
	Name        string          `bun:"name"`
	Description string          `bun:"description"`
	Icon        string          `bun:"icon"`
	Type        string          `bun:"type"`
	Requirement json.RawMessage `bun:"requirement,type:jsonb"`
	XPReward    int             `bun:"xp_reward"`
}

func newBadgeRow(b domain.Badge) (*badgeRow, error) {
	req, err := domain.EncodeRequirement(b.Requirement)
	if err != nil {
		return nil, err
	}
	return &badgeRow{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		Type:        string(b.Type),
		Requirement: req,
		XPReward:    b.XPReward,
	}, nil
}

func (r badgeRow) toDomain() (domain.Badge, error) {
	req, err := domain.DecodeRequirement(domain.BadgeType(r.Type), r.Requirement)
	if err != nil {
		return domain.Badge{}, err
	}
	return domain.Badge{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		Type:        domain.BadgeType(r.Type),
		Requirement: req,
		XPReward:    r.XPReward,
	}, nil
}

type userBadgeRow struct {
	bun.BaseModel `bun:"table:user_badges"`

	ID       int64     `bun:"id,pk,autoincrement"`
	UserID   int64     `bun:"user_id"`
	BadgeID  int64     `bun:"badge_id"`
	EarnedAt time.Time `bun:"earned_at"`
}

func (r userBadgeRow) toDomain() domain.UserBadge {
	return domain.UserBadge{ID: r.ID, UserID: r.UserID, BadgeID: r.BadgeID, EarnedAt: r.EarnedAt}
}

type quizAttemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID          int64          `bun:"id,pk,autoincrement"`
	UserID      int64          `bun:"user_id"`
	CourseID    int64          `bun:"course_id"`
	ModuleID    string         `bun:"module_id"`
	Answers     map[string]int `bun:"answers,type:jsonb"`
	Score       int            `bun:"score"`
	CompletedAt time.Time      `bun:"completed_at"`
}

func (r quizAttemptRow) toDomain() domain.QuizAttempt {
	answers := r.Answers
	if answers == nil {
		answers = map[string]int{}
	}
	return domain.QuizAttempt{
		ID:          r.ID,
		UserID:      r.UserID,
		CourseID:    r.CourseID,
		ModuleID:    r.ModuleID,
		Answers:     answers,
		Score:       r.Score,
		CompletedAt: r.CompletedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
