package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// BadgeType discriminates badge requirement variants.
type BadgeType string

const (
	BadgeCourse        BadgeType = "course"
	BadgeStreak        BadgeType = "streak"
	BadgeScore         BadgeType = "score"
	BadgeParticipation BadgeType = "participation"
)

// EventKind names a learning event that can move XP and badges.
type EventKind string

const (
	EventModuleCompleted EventKind = "module_completed"
	EventCourseCompleted EventKind = "course_completed"
	EventQuizGraded      EventKind = "quiz_graded"
)

// Event is one learning event. Enrollment is set for module and course
// completion, QuizScore for graded quizzes.
type Event struct {
	Kind       EventKind
	Enrollment *Enrollment
	QuizScore  int
}

// Snapshot is the learner state a badge rule is evaluated against,
// taken after the event was persisted.
type Snapshot struct {
	CompletedCourses int
	Activities       int
}

// Requirement is the rule payload of a badge.
type Requirement interface {
	BadgeType() BadgeType
	Satisfied(ev Event, snap Snapshot) bool
	validate() error
}

// CourseCountRequirement unlocks once CourseCount courses are completed.
type CourseCountRequirement struct {
	CourseCount int `json:"courseCount" validate:"gte=1"`
}

func (CourseCountRequirement) BadgeType() BadgeType { return BadgeCourse }

func (r CourseCountRequirement) Satisfied(_ Event, snap Snapshot) bool {
	return snap.CompletedCourses >= r.CourseCount
}

func (r CourseCountRequirement) validate() error { return ValidateStruct(r) }

// CompletionTimeRequirement unlocks when a course is completed within
// TimeLimit hours of enrolling.
type CompletionTimeRequirement struct {
	TimeLimit int `json:"timeLimit" validate:"gte=1"`
}

func (CompletionTimeRequirement) BadgeType() BadgeType { return BadgeStreak }

func (r CompletionTimeRequirement) Satisfied(ev Event, _ Snapshot) bool {
	if ev.Kind != EventCourseCompleted || ev.Enrollment == nil || ev.Enrollment.CompletedAt == nil {
		return false
	}
	elapsed := ev.Enrollment.CompletedAt.Sub(ev.Enrollment.EnrolledAt)
	return elapsed <= time.Duration(r.TimeLimit)*time.Hour
}

func (r CompletionTimeRequirement) validate() error { return ValidateStruct(r) }

// ScoreRequirement unlocks on a graded quiz scoring at least MinScore.
type ScoreRequirement struct {
	MinScore int `json:"minScore" validate:"gte=0,lte=100"`
}

func (ScoreRequirement) BadgeType() BadgeType { return BadgeScore }

func (r ScoreRequirement) Satisfied(ev Event, _ Snapshot) bool {
	return ev.Kind == EventQuizGraded && ev.QuizScore >= r.MinScore
}

func (r ScoreRequirement) validate() error { return ValidateStruct(r) }

// ParticipationRequirement unlocks after ActivityCount learning activities
// (completed modules plus quiz attempts).
type ParticipationRequirement struct {
	ActivityCount int `json:"activityCount" validate:"gte=1"`
}

func (ParticipationRequirement) BadgeType() BadgeType { return BadgeParticipation }

func (r ParticipationRequirement) Satisfied(_ Event, snap Snapshot) bool {
	return snap.Activities >= r.ActivityCount
}

func (r ParticipationRequirement) validate() error { return ValidateStruct(r) }

// Badge is an achievement with a typed unlock rule.
type Badge struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Icon        string      `json:"icon,omitempty"`
	Type        BadgeType   `json:"type" validate:"required,oneof=course streak score participation"`
	Requirement Requirement `json:"-" validate:"-"`
	XPReward    int         `json:"xpReward" validate:"gte=0"`
}

// Validate checks the badge and its requirement payload.
func (b Badge) Validate() error {
	verr := &ValidationError{}
	if err := ValidateStruct(b); err != nil {
		ve, ok := err.(*ValidationError)
		if !ok {
			return err
		}
		for k, v := range ve.Fields {
			verr.Add(k, v)
		}
	}
	switch {
	case b.Requirement == nil:
		verr.Add("requirement", "is required")
	case b.Requirement.BadgeType() != b.Type:
		verr.Add("requirement", "does not match badge type")
	default:
		if err := b.Requirement.validate(); err != nil {
			ve, ok := err.(*ValidationError)
			if !ok {
				return err
			}
			for k, v := range ve.Fields {
				verr.Add("requirement."+k, v)
			}
		}
	}
	return verr.OrNil()
}

type badgeWire struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon,omitempty"`
	Type        BadgeType       `json:"type"`
	Requirement json.RawMessage `json:"requirement"`
	XPReward    int             `json:"xpReward"`
}

// MarshalJSON writes the requirement payload under "requirement".
func (b Badge) MarshalJSON() ([]byte, error) {
	req, err := EncodeRequirement(b.Requirement)
	if err != nil {
		return nil, err
	}
	return json.Marshal(badgeWire{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		Type:        b.Type,
		Requirement: req,
		XPReward:    b.XPReward,
	})
}

// UnmarshalJSON decodes the requirement according to "type".
func (b *Badge) UnmarshalJSON(data []byte) error {
	var wire badgeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	req, err := DecodeRequirement(wire.Type, wire.Requirement)
	if err != nil {
		return err
	}
	*b = Badge{
		ID:          wire.ID,
		Name:        wire.Name,
		Description: wire.Description,
		Icon:        wire.Icon,
		Type:        wire.Type,
		Requirement: req,
		XPReward:    wire.XPReward,
	}
	return nil
}

// EncodeRequirement renders a requirement payload; nil becomes "{}".
func EncodeRequirement(r Requirement) ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

// DecodeRequirement parses raw into the variant for t. Unknown types and
// empty payloads yield a nil requirement, which Badge.Validate rejects.
func DecodeRequirement(t BadgeType, raw []byte) (Requirement, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var (
		req Requirement
		err error
	)
	switch t {
	case BadgeCourse:
		var r CourseCountRequirement
		err = json.Unmarshal(raw, &r)
		req = r
	case BadgeStreak:
		var r CompletionTimeRequirement
		err = json.Unmarshal(raw, &r)
		req = r
	case BadgeScore:
		var r ScoreRequirement
		err = json.Unmarshal(raw, &r)
		req = r
	case BadgeParticipation:
		var r ParticipationRequirement
		err = json.Unmarshal(raw, &r)
		req = r
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s requirement: %w", t, err)
	}
	return req, nil
}
