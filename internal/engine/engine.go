package engine

import (
	"sort"
	"time"

	"github.com/ridecare/ridecare/internal/models"
)

// EvaluateVehicle runs every rule in the registry against a vehicle's current
// odometer and completion history. Rules that are neither due nor inside the
// near window contribute no result at all.
//
// Results are ordered: overdue items first, keeping their registry order
// within that group, then the rest by descending priority. Ties keep registry
// iteration order.
func EvaluateVehicle(reg *Registry, currentOdometer float64, history []models.MaintenanceEvent, now time.Time, policy NearPolicy) []models.DueResult {
	var results []models.DueResult

	for _, rule := range reg.Rules() {
		last := LastEventForRule(rule.ID, history)
		if res := EvaluateRule(rule, currentOdometer, last, now, policy); res != nil {
			results = append(results, *res)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		oi := results[i].Status == models.DueStatusOverdue
		oj := results[j].Status == models.DueStatusOverdue
		if oi != oj {
			return oi
		}
		if oi {
			return false
		}
		return results[i].Priority > results[j].Priority
	})

	return results
}

// EvaluateRule evaluates a single rule against a vehicle's state. It returns
// nil when the rule is neither due nor near.
func EvaluateRule(rule models.MaintenanceRule, currentOdometer float64, lastEvent *models.MaintenanceEvent, now time.Time, policy NearPolicy) *models.DueResult {
	baseOdometer := 0.0
	baseDate := time.Unix(0, 0).UTC()
	if lastEvent != nil {
		baseOdometer = lastEvent.Odometer
		baseDate = lastEvent.CompletedAt
	}

	ev := evaluateConditions(rule, baseOdometer, baseDate, currentOdometer, now, policy)

	status := models.DueStatusUpcoming
	if ev.isDue {
		overdue := (ev.kmUntilDue != nil && *ev.kmUntilDue < -overdueMarginKm) ||
			(ev.daysUntilDue != nil && *ev.daysUntilDue < -overdueMarginDays)
		if overdue {
			status = models.DueStatusOverdue
		} else {
			status = models.DueStatusDue
		}
	} else if !ev.isNear {
		return nil
	}

	return &models.DueResult{
		Rule:         rule,
		Status:       status,
		DaysUntilDue: ev.daysUntilDue,
		KmUntilDue:   ev.kmUntilDue,
		Priority:     scorePriority(rule.BasePriority, status, ev.kmUntilDue, ev.daysUntilDue),
		LastEvent:    lastEvent,
	}
}

// LastEventForRule resolves the baseline completion for a rule: the event
// with the greatest CompletedAt among those matching the rule id. Selection
// is by time, never by odometer. On equal timestamps the first event in input
// order wins.
func LastEventForRule(ruleID string, history []models.MaintenanceEvent) *models.MaintenanceEvent {
	var last *models.MaintenanceEvent
	for i := range history {
		ev := &history[i]
		if ev.RuleID != ruleID {
			continue
		}
		if last == nil || ev.CompletedAt.After(last.CompletedAt) {
			last = ev
		}
	}
	return last
}
