package engine

import "github.com/ridecare/ridecare/internal/models"

// Urgency bonuses stacked on a rule's base priority.
const (
	overdueBonus   = 20
	proximityBonus = 10
)

// scorePriority converts base priority plus urgency signals into a bounded
// score. Both proximity bonuses can apply independently; the clamp is applied
// once, at the end.
func scorePriority(basePriority int, status models.DueStatus, kmUntilDue, daysUntilDue *int) int {
	priority := basePriority

	if status == models.DueStatusOverdue {
		priority += overdueBonus
	}
	if kmUntilDue != nil && *kmUntilDue <= 100 {
		priority += proximityBonus
	}
	if daysUntilDue != nil && *daysUntilDue <= 2 {
		priority += proximityBonus
	}

	return clamp(priority, 0, 100)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
