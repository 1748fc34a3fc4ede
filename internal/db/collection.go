package db

import (
	"context"
	"time"

	"github.com/ridecare/ridecare/internal/models"
)

// RuleCollection defines the interface for maintenance rule storage.
type RuleCollection interface {
	InsertRule(ctx context.Context, rule models.MaintenanceRule) error
	FindRulesByUser(ctx context.Context, userID string) ([]models.MaintenanceRule, error)
	DeleteRule(ctx context.Context, userID, ruleID string) error
}

// EventCollection defines the interface for completion record storage.
// Events are insert-only; nothing updates or deletes them.
type EventCollection interface {
	InsertEvent(ctx context.Context, event models.MaintenanceEvent) error
	FindEventsByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceEvent, error)
}

// VehicleCollection defines the interface for vehicle storage.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehiclesByUser(ctx context.Context, userID string) ([]models.Vehicle, error)
	IncrementOdometer(ctx context.Context, id string, distance float64, tripEnd time.Time) error
}

// UserCollection defines the interface for user and delivery-token storage.
// RemoveFCMTokens must be an atomic set-removal: concurrent cleanups from the
// trip trigger and the sweep must neither resurrect a removed token nor drop
// an unrelated one, and removing an absent token is a no-op.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUsersWithTokens(ctx context.Context) ([]models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
	AddFCMToken(ctx context.Context, id string, token string) error
	RemoveFCMTokens(ctx context.Context, id string, tokens []string) error
}
