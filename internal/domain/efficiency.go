package domain

import (
	"math"
	"time"
)

// Score penalties per task.
const (
	LatePenalty    = 5
	OverduePenalty = 15
)

// EfficiencyScore rates a user's delivery on a 0-100 scale:
// the on-time completion rate minus a penalty for every late
// completion and every active overdue task.
func EfficiencyScore(total, onTime, late, overdue int) int {
	if total <= 0 {
		return 0
	}
	rate := int(math.Round(100 * float64(onTime) / float64(total)))
	score := rate - LatePenalty*late - OverduePenalty*overdue
	return max(0, min(100, score))
}

// ComputeUserStats classifies tasks at ref and scores them.
func ComputeUserStats(tasks []Task, ref time.Time, loc *time.Location) UserStats {
	var stats UserStats
	stats.Total = len(tasks)

	for _, t := range tasks {
		switch DisplayStatusOf(t, ref, loc).Kind {
		case DisplayDoneOnTime:
			stats.Completed++
		case DisplayDoneLate:
			stats.CompletedLate++
		case DisplayOverdue:
			stats.Overdue++
		case DisplayNotStarted:
			stats.NotStarted++
		case DisplayInProgress:
			stats.InProgress++
		}
	}

	stats.Score = EfficiencyScore(stats.Total, stats.Completed, stats.CompletedLate, stats.Overdue)
	return stats
}
