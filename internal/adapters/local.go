package adapters

import (
	"time"

	"github.com/ridecare/ridecare/internal/engine"
	"github.com/ridecare/ridecare/internal/models"
)

// EvaluateLocal is the display path: a synchronous, side-effect-free
// evaluation over data the caller already holds. It sends nothing, stores
// nothing, and is cheap enough to run on every refresh.
func EvaluateLocal(registry *engine.Registry, currentOdometer float64, history []models.MaintenanceEvent, now time.Time) []models.DueResult {
	return engine.EvaluateVehicle(registry, currentOdometer, history, now, engine.LocalNearPolicy)
}
