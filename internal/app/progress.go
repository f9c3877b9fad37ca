package app

import (
	"math"
	"time"

	"skillnest/internal/domain"
)

// ProgressPercent is round(100 * completed / total), 0 for an empty course
// and never above 100.
func ProgressPercent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// CompleteModule marks moduleID completed and recomputes progress.
// Re-completing a module leaves the set unchanged but still recomputes.
// CompletedAt is set the first time progress reaches 100 and never cleared.
// Membership of moduleID in the course is the caller's check.
func CompleteModule(e domain.Enrollment, moduleID string, totalModules int, now time.Time) domain.Enrollment {
	completed := make([]string, 0, len(e.CompletedModules)+1)
	completed = append(completed, e.CompletedModules...)
	if !e.HasCompleted(moduleID) {
		completed = append(completed, moduleID)
	}
	e.CompletedModules = completed

	e.Progress = ProgressPercent(len(completed), totalModules)
	if e.Progress == 100 && e.CompletedAt == nil {
		at := now
		e.CompletedAt = &at
	}
	return e
}
