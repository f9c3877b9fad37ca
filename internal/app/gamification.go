package app

import (
	"sort"

	"skillnest/internal/domain"
)

// XP awarded per event.
const (
	XPModuleCompleted = 25
	XPCourseCompleted = 100
	XPQuizPassed      = 50

	// QuizPassScore is the minimum score that earns quiz XP.
	QuizPassScore = 60

	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// Outcome is what one event earns: fixed event XP plus the badges whose
// rules became satisfied. Badge rewards are applied only once the award
// is recorded.
type Outcome struct {
	EventXP int
	Badges  []domain.Badge
}

// Engine evaluates XP and badge rules against a badge catalog.
type Engine struct {
	badges []domain.Badge
}

func NewEngine(badges []domain.Badge) *Engine {
	return &Engine{badges: badges}
}

// EventXP returns the fixed XP for an event.
func EventXP(ev domain.Event) int {
	switch ev.Kind {
	case domain.EventModuleCompleted:
		return XPModuleCompleted
	case domain.EventCourseCompleted:
		return XPCourseCompleted
	case domain.EventQuizGraded:
		if ev.QuizScore >= QuizPassScore {
			return XPQuizPassed
		}
	}
	return 0
}

// Evaluate computes what ev earns. earned holds the badge ids the user
// already has; those are never returned again.
func (e *Engine) Evaluate(ev domain.Event, snap domain.Snapshot, earned map[int64]bool) Outcome {
	out := Outcome{EventXP: EventXP(ev)}
	for _, b := range e.badges {
		if earned[b.ID] || b.Requirement == nil {
			continue
		}
		if b.Requirement.Satisfied(ev, snap) {
			out.Badges = append(out.Badges, b)
		}
	}
	return out
}

// Rank orders users by TotalXP descending, keeping input order among ties,
// and truncates to limit. A non-positive limit means DefaultLeaderboardLimit.
func Rank(users []domain.User, limit int) []domain.User {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	ranked := make([]domain.User, len(users))
	copy(ranked, users)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalXP > ranked[j].TotalXP
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
