package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// MaintenanceEvent records a completed piece of maintenance work.
// Events are immutable once written; the engine only ever reads them.
type MaintenanceEvent struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	EventID     string             `json:"event_id" bson:"event_id"`
	RuleID      string             `json:"rule_id" bson:"rule_id"`
	VehicleID   string             `json:"vehicle_id" bson:"vehicle_id"`
	UserID      string             `json:"user_id" bson:"user_id"`
	CompletedAt time.Time          `json:"completed_at" bson:"completed_at"`
	Odometer    float64            `json:"odometer" bson:"odometer"` // reading at completion, km
	Cost        float64            `json:"cost,omitempty" bson:"cost,omitempty"`
	Notes       string             `json:"notes,omitempty" bson:"notes,omitempty"`
	ReceiptRef  string             `json:"receipt_ref,omitempty" bson:"receipt_ref,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
