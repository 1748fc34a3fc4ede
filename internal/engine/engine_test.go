package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridecare/ridecare/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func odometerRule(id string, threshold float64, basePriority int) models.MaintenanceRule {
	return models.MaintenanceRule{
		ID:          id,
		Type:        models.RuleTypeService,
		Title:       id,
		Description: "test rule",
		Conditions: []models.Condition{
			{Kind: models.ConditionOdometer, Operator: models.OperatorGTE, Value: threshold},
		},
		Recurrence:   models.RecurrenceRecurring,
		BasePriority: basePriority,
	}
}

func TestEvaluateVehicle_OdometerThresholds(t *testing.T) {
	reg := NewRegistry(odometerRule("rule_3k", 3000, 50))

	tests := []struct {
		name       string
		odometer   float64
		wantStatus models.DueStatus
		wantKm     int
		omitted    bool
	}{
		{"exactly at threshold is due", 3000, models.DueStatusDue, 0, false},
		{"within near window is upcoming", 2600, models.DueStatusUpcoming, 400, false},
		{"past overdue margin is overdue", 4000, models.DueStatusOverdue, -1000, false},
		{"far below threshold is omitted", 1000, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := EvaluateVehicle(reg, tt.odometer, nil, testNow, LocalNearPolicy)
			if tt.omitted {
				assert.Empty(t, results)
				return
			}
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantStatus, results[0].Status)
			require.NotNil(t, results[0].KmUntilDue)
			assert.Equal(t, tt.wantKm, *results[0].KmUntilDue)
		})
	}
}

func TestLastEventForRule_SelectsByTimeNotOdometer(t *testing.T) {
	history := []models.MaintenanceEvent{
		{RuleID: "rule_3k", CompletedAt: testNow.AddDate(0, 0, -30), Odometer: 5000},
		{RuleID: "rule_3k", CompletedAt: testNow.AddDate(0, 0, -10), Odometer: 100},
		{RuleID: "other", CompletedAt: testNow.AddDate(0, 0, -1), Odometer: 9999},
	}

	last := LastEventForRule("rule_3k", history)
	require.NotNil(t, last)
	assert.Equal(t, 100.0, last.Odometer)
}

func TestLastEventForRule_EqualTimestampsFirstWins(t *testing.T) {
	when := testNow.AddDate(0, 0, -5)
	history := []models.MaintenanceEvent{
		{RuleID: "r", CompletedAt: when, Odometer: 111},
		{RuleID: "r", CompletedAt: when, Odometer: 222},
	}

	last := LastEventForRule("r", history)
	require.NotNil(t, last)
	assert.Equal(t, 111.0, last.Odometer)
}

func TestLastEventForRule_NoHistory(t *testing.T) {
	assert.Nil(t, LastEventForRule("r", nil))
}

func TestEvaluateVehicle_BaselineFromLastCompletion(t *testing.T) {
	reg := NewRegistry(odometerRule("rule_3k", 3000, 50))
	history := []models.MaintenanceEvent{
		{RuleID: "rule_3k", CompletedAt: testNow.AddDate(0, 0, -20), Odometer: 3100},
	}

	// 3100 done + 400 ridden since: 2600 remaining, not near, no result.
	results := EvaluateVehicle(reg, 3500, history, testNow, LocalNearPolicy)
	assert.Empty(t, results)

	// 2900 ridden since completion: inside the near window.
	results = EvaluateVehicle(reg, 6000, history, testNow, LocalNearPolicy)
	require.Len(t, results, 1)
	assert.Equal(t, models.DueStatusUpcoming, results[0].Status)
	require.NotNil(t, results[0].KmUntilDue)
	assert.Equal(t, 100, *results[0].KmUntilDue)
	require.NotNil(t, results[0].LastEvent)
	assert.Equal(t, 3100.0, results[0].LastEvent.Odometer)
}

func TestEvaluateVehicle_Ordering(t *testing.T) {
	// Two overdue rules (registry order must hold between them) and two due
	// rules sorted by priority.
	reg := NewRegistry(
		odometerRule("overdue_low", 100, 10),
		odometerRule("due_low", 9900, 30),
		odometerRule("overdue_high", 200, 80),
		odometerRule("due_high", 9500, 90),
	)

	results := EvaluateVehicle(reg, 10000, nil, testNow, LocalNearPolicy)
	require.Len(t, results, 4)
	assert.Equal(t, "overdue_low", results[0].Rule.ID)
	assert.Equal(t, "overdue_high", results[1].Rule.ID)
	assert.Equal(t, "due_high", results[2].Rule.ID)
	assert.Equal(t, "due_low", results[3].Rule.ID)
}

func TestRegistry_RemoveAndReAdd(t *testing.T) {
	rule := odometerRule("rule_3k", 3000, 50)
	reg := NewRegistry(rule)

	require.Len(t, EvaluateVehicle(reg, 5000, nil, testNow, LocalNearPolicy), 1)

	assert.True(t, reg.Remove("rule_3k"))
	assert.False(t, reg.Remove("rule_3k"))
	assert.Empty(t, EvaluateVehicle(reg, 5000, nil, testNow, LocalNearPolicy))

	reg.Add(rule)
	require.Len(t, EvaluateVehicle(reg, 5000, nil, testNow, LocalNearPolicy), 1)
}

func TestRegistry_AddReplacesInPlace(t *testing.T) {
	reg := NewRegistry(
		odometerRule("a", 100, 10),
		odometerRule("b", 200, 20),
	)

	replacement := odometerRule("a", 150, 99)
	reg.Add(replacement)

	rules := reg.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "a", rules[0].ID)
	assert.Equal(t, 99, rules[0].BasePriority)
	assert.Equal(t, 2, reg.Len())
}

func TestDefaultRegistry_FreshVehicleNoHistory(t *testing.T) {
	// A brand new vehicle with zero odometer and no history: every time-based
	// condition measures against epoch and fires, so the OR-combined defaults
	// all come back overdue.
	results := EvaluateVehicle(DefaultRegistry(), 0, nil, testNow, LocalNearPolicy)
	require.NotEmpty(t, results)
	for _, res := range results {
		hasTime := false
		for _, cond := range res.Rule.Conditions {
			if cond.Kind == models.ConditionTime {
				hasTime = true
			}
		}
		if hasTime {
			assert.Equal(t, models.DueStatusOverdue, res.Status, "rule %s", res.Rule.ID)
		}
	}
}
