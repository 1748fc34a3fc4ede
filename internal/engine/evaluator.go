package engine

import (
	"math"
	"time"

	"github.com/ridecare/ridecare/internal/models"
)

// NearPolicy defines the "approaching due" window. Each caller supplies its
// own: the trip trigger, the daily sweep and the display path deliberately
// use different windows. A zero field disables that window.
type NearPolicy struct {
	WithinKm   float64
	WithinDays int
}

var (
	// LocalNearPolicy is used by the synchronous display evaluation.
	LocalNearPolicy = NearPolicy{WithinKm: 500, WithinDays: 7}
	// TripNearPolicy is used when a trip is recorded. It carries no day
	// window.
	TripNearPolicy = NearPolicy{WithinKm: 500}
	// SweepNearPolicy is used by the daily sweep.
	SweepNearPolicy = NearPolicy{WithinKm: 300, WithinDays: 3}
)

// Margins past the triggering threshold beyond which a due item is
// classified overdue. Shared by every call site.
const (
	overdueMarginKm   = 500
	overdueMarginDays = 7
)

// evaluation accumulates per-condition outcomes for one rule.
type evaluation struct {
	isDue        bool
	isNear       bool
	kmUntilDue   *int
	daysUntilDue *int
}

// evaluateConditions walks a rule's conditions in order against the baseline
// (last completion, or zero/epoch when there is none).
//
// The predecessor's combinator decides how each verdict joins the chain. An
// AND chain stops as soon as the accumulated verdict is false, before the
// next condition is evaluated, so remaining km/days past that point stay
// unset. An OR chain always evaluates every condition. A missing combinator
// on a non-final condition behaves like OR.
func evaluateConditions(rule models.MaintenanceRule, baseOdometer float64, baseDate time.Time, currentOdometer float64, now time.Time, policy NearPolicy) evaluation {
	var ev evaluation

	for i, cond := range rule.Conditions {
		if i > 0 && rule.Conditions[i-1].Combinator == models.CombinatorAnd && !ev.isDue {
			break
		}

		var met bool
		switch cond.Kind {
		case models.ConditionOdometer:
			since := currentOdometer - baseOdometer
			remaining := cond.Value - since
			met = compare(since, cond.Operator, cond.Value)
			km := int(math.Round(remaining))
			ev.kmUntilDue = &km
			if !met && policy.WithinKm > 0 && remaining <= policy.WithinKm {
				ev.isNear = true
			}
		case models.ConditionTime:
			elapsed := wholeDays(now.Sub(baseDate))
			remaining := int(cond.Value) - elapsed
			met = compare(float64(elapsed), cond.Operator, cond.Value)
			days := remaining
			ev.daysUntilDue = &days
			if !met && policy.WithinDays > 0 && remaining <= policy.WithinDays {
				ev.isNear = true
			}
		default:
			// Unrecognized kinds never match.
			met = false
		}

		if i == 0 {
			ev.isDue = met
			continue
		}
		switch rule.Conditions[i-1].Combinator {
		case models.CombinatorAnd:
			ev.isDue = ev.isDue && met
		default:
			ev.isDue = ev.isDue || met
		}
	}

	return ev
}

func compare(actual float64, op models.Operator, expected float64) bool {
	switch op {
	case models.OperatorGTE:
		return actual >= expected
	case models.OperatorLTE:
		return actual <= expected
	case models.OperatorEQ:
		return actual == expected
	default:
		return false
	}
}

// wholeDays converts a duration to complete elapsed days.
func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}
