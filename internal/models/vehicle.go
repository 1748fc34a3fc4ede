package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Vehicle represents a tracked bike. The odometer is monotonically
// non-decreasing and is only ever advanced by trip ingestion.
type Vehicle struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	Name       string             `bson:"name" json:"name"`
	Make       string             `bson:"make" json:"make"`
	Model      string             `bson:"model" json:"model"`
	Year       int                `bson:"year" json:"year"`
	Odometer   float64            `bson:"odometer" json:"odometer"` // in kilometers
	LastTripAt *time.Time         `bson:"last_trip_at,omitempty" json:"last_trip_at,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
