package models

import "time"

// Trip is a usage increment produced by the trip-detection subsystem.
// This service only consumes the recorded distance; it never detects
// or reconstructs trips itself.
type Trip struct {
	ID        string    `json:"id" bson:"trip_id"`
	VehicleID string    `json:"vehicle_id" bson:"vehicle_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Distance  float64   `json:"distance" bson:"distance"` // in kilometers
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
}
