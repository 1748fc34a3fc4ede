package engine

import (
	"math"
	"time"

	"github.com/ridecare/ridecare/internal/models"
)

// PredictNext projects when an odometer-based rule will next come due,
// assuming the vehicle keeps covering avgKmPerDay. It uses the rule's first
// odometer condition; rules without one, or a non-positive average, yield no
// prediction.
//
// With no prior completion the projection baselines at the current odometer
// and now, not at zero/epoch: a fresh vehicle is projected forward from
// today.
func PredictNext(rule models.MaintenanceRule, avgKmPerDay float64, currentOdometer float64, lastEvent *models.MaintenanceEvent, now time.Time) *models.Prediction {
	if avgKmPerDay <= 0 {
		return nil
	}

	var odoCond *models.Condition
	for i := range rule.Conditions {
		if rule.Conditions[i].Kind == models.ConditionOdometer {
			odoCond = &rule.Conditions[i]
			break
		}
	}
	if odoCond == nil {
		return nil
	}

	baseOdometer := currentOdometer
	baseDate := now
	if lastEvent != nil {
		baseOdometer = lastEvent.Odometer
		baseDate = lastEvent.CompletedAt
	}

	kmUntilDue := odoCond.Value - (currentOdometer - baseOdometer)
	daysUntilDue := int(math.Ceil(kmUntilDue / avgKmPerDay))

	return &models.Prediction{
		PredictedDate:     baseDate.AddDate(0, 0, daysUntilDue),
		PredictedOdometer: currentOdometer + kmUntilDue,
	}
}
