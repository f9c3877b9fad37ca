package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the access role of a platform user.
type Role string

const (
	RoleLearner    Role = "learner"
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
)

// User is a platform account. Level is derived from TotalXP and must only
// change through AddXP or SetXP.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" validate:"required,min=3,max=64"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role" validate:"required,oneof=learner admin instructor"`
	FirstName    string    `json:"firstName" validate:"required"`
	LastName     string    `json:"lastName" validate:"required"`
	Department   string    `json:"department,omitempty"`
	TotalXP      int       `json:"totalXP" validate:"gte=0"`
	Level        int       `json:"level" validate:"gte=1"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AddXP credits delta experience points. XP never decreases, so
// non-positive deltas are ignored.
func (u *User) AddXP(delta int) {
	if delta <= 0 {
		return
	}
	u.SetXP(u.TotalXP + delta)
}

// SetXP sets the XP total and recomputes the level.
func (u *User) SetXP(xp int) {
	if xp < 0 {
		xp = 0
	}
	u.TotalXP = xp
	u.Level = LevelForXP(xp)
}

// Validate checks the user fields that come from input.
func (u User) Validate() error {
	return ValidateStruct(u)
}

// CourseLevel is the difficulty of a course.
type CourseLevel string

const (
	CourseBeginner     CourseLevel = "beginner"
	CourseIntermediate CourseLevel = "intermediate"
	CourseAdvanced     CourseLevel = "advanced"
)

// Course is a catalog entry with its ordered modules.
type Course struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"required"`
	Category    string      `json:"category" validate:"required"`
	Level       CourseLevel `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Duration    string      `json:"duration" validate:"required"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	AuthorID    int64       `json:"authorId,omitempty"`
	Modules     []Module    `json:"modules" validate:"dive"`
	Tags        []string    `json:"tags"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Validate checks course fields, every module payload and module id uniqueness.
func (c Course) Validate() error {
	verr := &ValidationError{}
	if err := ValidateStruct(c); err != nil {
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		for k, v := range ve.Fields {
			verr.Add(k, v)
		}
	}
	seen := make(map[string]struct{}, len(c.Modules))
	for i, m := range c.Modules {
		prefix := fmt.Sprintf("modules[%d]", i)
		if _, dup := seen[m.ID]; dup && m.ID != "" {
			verr.Add(prefix+".id", "must be unique within the course")
		}
		seen[m.ID] = struct{}{}
		if m.Content == nil {
			verr.Add(prefix+".content", "is required")
			continue
		}
		if m.Content.ModuleType() != m.Type {
			verr.Add(prefix+".type", "does not match content")
			continue
		}
		if err := m.Content.validate(); err != nil {
			ve, ok := err.(*ValidationError)
			if !ok {
				return err
			}
			for k, v := range ve.Fields {
				verr.Add(prefix+".content."+k, v)
			}
		}
	}
	return verr.OrNil()
}

// Module returns the module with the given id.
func (c Course) Module(id string) (Module, bool) {
	for _, m := range c.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// HasModule reports whether id names one of the course modules.
func (c Course) HasModule(id string) bool {
	_, ok := c.Module(id)
	return ok
}

// QuizModules returns the quiz modules in course order.
func (c Course) QuizModules() []Module {
	var out []Module
	for _, m := range c.Modules {
		if m.Type == ModuleQuiz {
			out = append(out, m)
		}
	}
	return out
}

// Matches reports whether term occurs in the title, description or a tag (case-insensitive).
func (c Course) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Title), term) || strings.Contains(strings.ToLower(c.Description), term) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Enrollment tracks a user's completion of a course.
type Enrollment struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"userId"`
	CourseID         int64      `json:"courseId"`
	Progress         int        `json:"progress"`
	CompletedModules []string   `json:"completedModules"`
	EnrolledAt       time.Time  `json:"enrolledAt"`
	CompletedAt      *time.Time `json:"completedAt"`
}

// HasCompleted reports whether moduleID is in the completed set.
func (e Enrollment) HasCompleted(moduleID string) bool {
	for _, id := range e.CompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}

// IsCompleted reports whether the course was finished.
func (e Enrollment) IsCompleted() bool {
	return e.CompletedAt != nil
}

// Certificate is proof of completion, unique per (UserID, CourseID).
type Certificate struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	CourseID      int64     `json:"courseId"`
	CertificateID string    `json:"certificateId"`
	Score         int       `json:"score"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// UserBadge records that a user earned a badge.
type UserBadge struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"userId"`
	BadgeID  int64     `json:"badgeId"`
	EarnedAt time.Time `json:"earnedAt"`
}

// QuizAttempt is an append-only record of one graded submission.
// Answers maps question id to the chosen option index.
type QuizAttempt struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"userId"`
	CourseID    int64          `json:"courseId"`
	ModuleID    string         `json:"moduleId"`
	Answers     map[string]int `json:"answers"`
	Score       int            `json:"score"`
	CompletedAt time.Time      `json:"completedAt"`
}

// UserStats summarizes a learner's dashboard counters.
type UserStats struct {
	InProgress    int `json:"inProgress"`
	Completed     int `json:"completed"`
	Certificates  int `json:"certificates"`
	TotalXP       int `json:"totalXP"`
	Level         int `json:"level"`
	XPToNextLevel int `json:"xpToNextLevel"`
}
