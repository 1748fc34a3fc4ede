package push

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ridecare/ridecare/internal/models"
)

// Payload data types on the wire. Due and overdue items go out as
// maintenance_due, upcoming items as maintenance_reminder.
const (
	payloadTypeDue      = "maintenance_due"
	payloadTypeReminder = "maintenance_reminder"
)

// Dispatcher fans due-evaluation results out to an account's delivery tokens
// and prunes tokens the transport rejects. Transport failures are logged and
// swallowed here; a broken push provider must never abort the evaluation
// path that called us.
type Dispatcher struct {
	messenger Multicaster
	tokens    TokenStore
}

// NewDispatcher creates a dispatcher over a messenger and a token store.
func NewDispatcher(messenger Multicaster, tokens TokenStore) *Dispatcher {
	return &Dispatcher{messenger: messenger, tokens: tokens}
}

// Dispatch sends one notification per result to all of the account's tokens
// and returns how many sends went through. Tokens rejected on any send are
// collected and removed in a single idempotent update at the end.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, vehicle *models.Vehicle, results []models.DueResult, tokens []string) int {
	if len(tokens) == 0 || len(results) == 0 {
		return 0
	}

	sent := 0
	invalid := make(map[string]struct{})

	for _, res := range results {
		notification, data := buildPayload(vehicle, res)

		result, err := d.messenger.SendMulticast(ctx, tokens, notification, data)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id": userID,
				"rule_id": res.Rule.ID,
			}).Error("failed to send maintenance notification")
			continue
		}

		sent++
		log.WithFields(log.Fields{
			"user_id": userID,
			"rule_id": res.Rule.ID,
			"status":  res.Status,
			"success": result.SuccessCount,
			"failure": result.FailureCount,
		}).Info("maintenance notification sent")

		for _, token := range result.FailedTokens {
			invalid[token] = struct{}{}
		}
	}

	if len(invalid) > 0 {
		stale := make([]string, 0, len(invalid))
		for token := range invalid {
			stale = append(stale, token)
		}
		if err := d.tokens.RemoveFCMTokens(ctx, userID, stale); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("failed to prune invalid tokens")
		} else {
			log.WithFields(log.Fields{"user_id": userID, "count": len(stale)}).Info("pruned invalid tokens")
		}
	}

	return sent
}

// buildPayload maps a result onto the wire contract: title by severity, body
// with vehicle name and rule description, data for client-side routing.
func buildPayload(vehicle *models.Vehicle, res models.DueResult) (Notification, map[string]string) {
	body := fmt.Sprintf("%s: %s", vehicle.Name, res.Rule.Description)
	payloadType := payloadTypeDue

	var title string
	switch res.Status {
	case models.DueStatusOverdue:
		title = "🚨 Maintenance Overdue: " + res.Rule.Title
		body = "⚠️ NOW: " + body
	case models.DueStatusDue:
		title = "🔧 Maintenance Due: " + res.Rule.Title
	default:
		title = "⏰ Maintenance Reminder: " + res.Rule.Title
		payloadType = payloadTypeReminder
		if res.DaysUntilDue != nil && *res.DaysUntilDue >= 0 && *res.DaysUntilDue <= 7 {
			body = fmt.Sprintf("📅 In %d days: %s", *res.DaysUntilDue, body)
		} else if res.KmUntilDue != nil && *res.KmUntilDue >= 0 {
			body = fmt.Sprintf("📍 In %d km: %s", *res.KmUntilDue, body)
		}
	}

	data := map[string]string{
		"type":      payloadType,
		"ruleId":    res.Rule.ID,
		"vehicleId": vehicle.ID.Hex(),
		"status":    string(res.Status),
	}
	return Notification{Title: title, Body: body}, data
}
