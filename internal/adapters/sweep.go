package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ridecare/ridecare/internal/db"
	"github.com/ridecare/ridecare/internal/engine"
	"github.com/ridecare/ridecare/internal/push"
)

// SweepReport summarizes one pass of the daily sweep.
type SweepReport struct {
	UsersProcessed    int
	NotificationsSent int
}

// Sweeper walks every account with delivery tokens once per day and
// dispatches reminders for anything due or near due. Failures are isolated
// per vehicle: a missing document or a broken send skips that unit of work
// and the sweep carries on.
type Sweeper struct {
	vehicles   db.VehicleCollection
	rules      db.RuleCollection
	events     db.EventCollection
	users      db.UserCollection
	dispatcher *push.Dispatcher
	cron       *cron.Cron
}

// NewSweeper wires a sweeper.
func NewSweeper(vehicles db.VehicleCollection, rules db.RuleCollection, events db.EventCollection, users db.UserCollection, dispatcher *push.Dispatcher) *Sweeper {
	return &Sweeper{
		vehicles:   vehicles,
		rules:      rules,
		events:     events,
		users:      users,
		dispatcher: dispatcher,
	}
}

// Start schedules RunOnce on the given cron expression in the given
// timezone and begins the schedule.
func (s *Sweeper) Start(schedule, timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid sweep timezone %q: %w", timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(loc))
	_, err = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		report, err := s.RunOnce(ctx)
		if err != nil {
			log.WithError(err).Error("scheduled maintenance check failed")
			return
		}
		log.WithFields(log.Fields{
			"users_processed":    report.UsersProcessed,
			"notifications_sent": report.NotificationsSent,
		}).Info("scheduled maintenance check complete")
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{"schedule": schedule, "timezone": timezone}).Info("maintenance sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce evaluates every vehicle of every account that has delivery tokens.
// Only the user listing can fail the whole pass; everything below it is
// per-unit logged-and-skipped.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	users, err := s.users.FindUsersWithTokens(ctx)
	if err != nil {
		return report, fmt.Errorf("list users: %w", err)
	}

	now := time.Now()
	for _, user := range users {
		userID := user.ID.Hex()
		logger := log.WithField("user_id", userID)

		registry, err := LoadRegistry(ctx, s.rules, userID)
		if err != nil {
			logger.WithError(err).Error("failed to load rules, skipping user")
			continue
		}

		vehicles, err := s.vehicles.FindVehiclesByUser(ctx, userID)
		if err != nil {
			logger.WithError(err).Error("failed to load vehicles, skipping user")
			continue
		}

		for _, vehicle := range vehicles {
			vehicleID := vehicle.ID.Hex()
			history, err := s.events.FindEventsByVehicle(ctx, vehicleID)
			if err != nil {
				logger.WithError(err).WithField("vehicle_id", vehicleID).Error("failed to load history, skipping vehicle")
				continue
			}

			results := engine.EvaluateVehicle(registry, vehicle.Odometer, history, now, engine.SweepNearPolicy)
			if len(results) == 0 {
				continue
			}

			if s.dispatcher != nil {
				vehicle := vehicle
				report.NotificationsSent += s.dispatcher.Dispatch(ctx, userID, &vehicle, results, user.FCMTokens)
			}
		}

		report.UsersProcessed++
	}

	return report, nil
}
