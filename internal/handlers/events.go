package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ridecare/ridecare/internal/db"
	"github.com/ridecare/ridecare/internal/middleware"
	"github.com/ridecare/ridecare/internal/models"
)

// EventHandler handles maintenance completion records
type EventHandler struct {
	eventCollection db.EventCollection
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventCollection db.EventCollection) *EventHandler {
	return &EventHandler{
		eventCollection: eventCollection,
	}
}

// eventRequest is the wire form of a completion record. Timestamps arrive as
// ISO-8601 strings and are parsed at this boundary only.
type eventRequest struct {
	RuleID      string  `json:"rule_id"`
	VehicleID   string  `json:"vehicle_id"`
	CompletedAt string  `json:"completed_at"`
	Odometer    float64 `json:"odometer"`
	Cost        float64 `json:"cost"`
	Notes       string  `json:"notes"`
	ReceiptRef  string  `json:"receipt_ref"`
}

// HandleEvents routes /api/events by method: GET lists a vehicle's history,
// POST records a completion.
func (h *EventHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listEvents(w, r)
	case http.MethodPost:
		h.createEvent(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EventHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserFromContext(r.Context()); !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		http.Error(w, "vehicle_id is required", http.StatusBadRequest)
		return
	}

	events, err := h.eventCollection.FindEventsByVehicle(r.Context(), vehicleID)
	if err != nil {
		http.Error(w, "Failed to fetch events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

func (h *EventHandler) createEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req eventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	event, err := buildEvent(req, claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.eventCollection.InsertEvent(r.Context(), *event); err != nil {
		http.Error(w, "Failed to save event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

func buildEvent(req eventRequest, userID string) (*models.MaintenanceEvent, error) {
	if req.RuleID == "" {
		return nil, errors.New("rule_id is required")
	}
	if req.VehicleID == "" {
		return nil, errors.New("vehicle_id is required")
	}
	if req.Odometer < 0 {
		return nil, errors.New("odometer must not be negative")
	}

	completedAt := time.Now()
	if req.CompletedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.CompletedAt)
		if err != nil {
			return nil, errors.New("completed_at must be an ISO-8601 timestamp")
		}
		completedAt = parsed
	}

	return &models.MaintenanceEvent{
		ID:          primitive.NewObjectID(),
		EventID:     "event_" + uuid.New().String(),
		RuleID:      req.RuleID,
		VehicleID:   req.VehicleID,
		UserID:      userID,
		CompletedAt: completedAt,
		Odometer:    req.Odometer,
		Cost:        req.Cost,
		Notes:       req.Notes,
		ReceiptRef:  req.ReceiptRef,
		CreatedAt:   time.Now(),
	}, nil
}
