// Package adapters hosts the three drivers of the evaluation core: the trip
// trigger, the daily sweep and the synchronous display path. They share the
// engine and differ only in trigger, data-fetch and near-window policy.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ridecare/ridecare/internal/db"
	"github.com/ridecare/ridecare/internal/engine"
	"github.com/ridecare/ridecare/internal/models"
	"github.com/ridecare/ridecare/internal/push"
)

// TripAdapter reacts to recorded trips: it advances the vehicle odometer,
// re-evaluates the vehicle and dispatches notifications for anything due or
// near due. It is the only component that writes the odometer.
type TripAdapter struct {
	vehicles   db.VehicleCollection
	rules      db.RuleCollection
	events     db.EventCollection
	users      db.UserCollection
	dispatcher *push.Dispatcher
}

// NewTripAdapter wires a trip adapter. The dispatcher may be nil, in which
// case evaluation still runs but nothing is sent.
func NewTripAdapter(vehicles db.VehicleCollection, rules db.RuleCollection, events db.EventCollection, users db.UserCollection, dispatcher *push.Dispatcher) *TripAdapter {
	return &TripAdapter{
		vehicles:   vehicles,
		rules:      rules,
		events:     events,
		users:      users,
		dispatcher: dispatcher,
	}
}

// HandleTrip processes one usage increment. A missing vehicle is logged and
// skipped; the error is not surfaced so one bad trip never takes down the
// ingestion loop.
func (a *TripAdapter) HandleTrip(ctx context.Context, trip models.Trip) error {
	logger := log.WithFields(log.Fields{
		"trip_id":    trip.ID,
		"vehicle_id": trip.VehicleID,
		"user_id":    trip.UserID,
	})

	if err := a.vehicles.IncrementOdometer(ctx, trip.VehicleID, trip.Distance, trip.EndTime); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("trip references unknown vehicle, skipping")
			return nil
		}
		return fmt.Errorf("increment odometer: %w", err)
	}

	vehicle, err := a.vehicles.FindVehicleByID(ctx, trip.VehicleID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("vehicle disappeared after odometer update, skipping")
			return nil
		}
		return fmt.Errorf("load vehicle: %w", err)
	}

	registry, err := LoadRegistry(ctx, a.rules, trip.UserID)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	history, err := a.events.FindEventsByVehicle(ctx, trip.VehicleID)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	results := engine.EvaluateVehicle(registry, vehicle.Odometer, history, time.Now(), engine.TripNearPolicy)
	if len(results) == 0 {
		logger.Debug("trip processed, nothing due")
		return nil
	}

	if a.dispatcher == nil {
		logger.WithField("due_items", len(results)).Info("trip processed, dispatch disabled")
		return nil
	}

	user, err := a.users.FindUserByID(ctx, trip.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("trip references unknown user, skipping dispatch")
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}
	if len(user.FCMTokens) == 0 {
		logger.Debug("no delivery tokens, skipping dispatch")
		return nil
	}

	sent := a.dispatcher.Dispatch(ctx, trip.UserID, vehicle, results, user.FCMTokens)
	logger.WithFields(log.Fields{"due_items": len(results), "sent": sent}).Info("trip processed")
	return nil
}

// LoadRegistry builds an evaluation registry from the user's stored rules.
// Accounts created before rule seeding existed have no stored rules and fall
// back to the stock set.
func LoadRegistry(ctx context.Context, rules db.RuleCollection, userID string) (*engine.Registry, error) {
	stored, err := rules.FindRulesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return engine.DefaultRegistry(), nil
	}
	return engine.NewRegistry(stored...), nil
}
