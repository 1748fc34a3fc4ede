package models

import "time"

// DueStatus classifies how far a rule's threshold is from current usage/time.
type DueStatus string

const (
	DueStatusUpcoming DueStatus = "upcoming"
	DueStatusDue      DueStatus = "due"
	DueStatusOverdue  DueStatus = "overdue"
)

// DueResult is one rule's evaluation outcome for a vehicle. A result only
// exists for rules that are due, overdue, or inside the caller's near window;
// everything else is omitted from engine output.
//
// DaysUntilDue/KmUntilDue are nil when the corresponding condition kind was
// never evaluated for the rule (time-only rules, distance-only rules, or an
// AND chain that stopped early).
type DueResult struct {
	Rule         MaintenanceRule   `json:"rule"`
	Status       DueStatus         `json:"status"`
	DaysUntilDue *int              `json:"days_until_due,omitempty"`
	KmUntilDue   *int              `json:"km_until_due,omitempty"`
	Priority     int               `json:"priority"` // 0-100
	LastEvent    *MaintenanceEvent `json:"last_event,omitempty"`
}

// Prediction estimates when an odometer-based rule will next come due,
// assuming a steady daily distance.
type Prediction struct {
	PredictedDate     time.Time `json:"predicted_date"`
	PredictedOdometer float64   `json:"predicted_odometer"`
}
