package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecare/ridecare/internal/models"
)

func TestPredictNext_NoHistoryBaselinesAtNow(t *testing.T) {
	rule := odometerRule("rule_3k", 3000, 50)

	pred := PredictNext(rule, 50, 1000, nil, testNow)
	require.NotNil(t, pred)
	assert.Equal(t, 4000.0, pred.PredictedOdometer)
	assert.Equal(t, testNow.AddDate(0, 0, 60), pred.PredictedDate)
}

func TestPredictNext_WithLastCompletion(t *testing.T) {
	rule := odometerRule("rule_3k", 3000, 50)
	last := &models.MaintenanceEvent{
		RuleID:      "rule_3k",
		CompletedAt: testNow.AddDate(0, 0, -10),
		Odometer:    1000,
	}

	// 500 km since completion, 2500 to go at 100 km/day: 25 days from the
	// completion date.
	pred := PredictNext(rule, 100, 1500, last, testNow)
	require.NotNil(t, pred)
	assert.Equal(t, 4000.0, pred.PredictedOdometer)
	assert.Equal(t, last.CompletedAt.AddDate(0, 0, 25), pred.PredictedDate)
}

func TestPredictNext_CeilsPartialDays(t *testing.T) {
	rule := odometerRule("rule_3k", 3000, 50)

	// 3000 km at 70 km/day is 42.86 days, rounded up to 43.
	pred := PredictNext(rule, 70, 0, nil, testNow)
	require.NotNil(t, pred)
	assert.Equal(t, testNow.AddDate(0, 0, 43), pred.PredictedDate)
}

func TestPredictNext_NoOdometerCondition(t *testing.T) {
	rule := models.MaintenanceRule{
		ID: "time_only",
		Conditions: []models.Condition{
			{Kind: models.ConditionTime, Operator: models.OperatorGTE, Value: 365},
		},
	}

	assert.Nil(t, PredictNext(rule, 50, 1000, nil, testNow))
}

func TestPredictNext_NonPositiveAverage(t *testing.T) {
	rule := odometerRule("rule_3k", 3000, 50)
	assert.Nil(t, PredictNext(rule, 0, 1000, nil, testNow))
	assert.Nil(t, PredictNext(rule, -10, 1000, nil, testNow))
}
