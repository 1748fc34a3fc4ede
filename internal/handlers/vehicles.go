package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ridecare/ridecare/internal/adapters"
	"github.com/ridecare/ridecare/internal/db"
	"github.com/ridecare/ridecare/internal/engine"
	"github.com/ridecare/ridecare/internal/middleware"
	"github.com/ridecare/ridecare/internal/models"
)

// VehicleHandler handles vehicle requests, including the synchronous due
// evaluation the app shows on its home screen.
type VehicleHandler struct {
	vehicleCollection db.VehicleCollection
	ruleCollection    db.RuleCollection
	eventCollection   db.EventCollection
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(vehicleCollection db.VehicleCollection, ruleCollection db.RuleCollection, eventCollection db.EventCollection) *VehicleHandler {
	return &VehicleHandler{
		vehicleCollection: vehicleCollection,
		ruleCollection:    ruleCollection,
		eventCollection:   eventCollection,
	}
}

// HandleVehicles routes /api/vehicles by method: GET lists the caller's
// vehicles, POST registers one.
func (h *VehicleHandler) HandleVehicles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listVehicles(w, r)
	case http.MethodPost:
		h.createVehicle(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleVehicleByID routes /api/vehicles/{id} and its subresources
// /api/vehicles/{id}/due and /api/vehicles/{id}/predict.
func (h *VehicleHandler) HandleVehicleByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/vehicles/")
	parts := strings.Split(rest, "/")
	if parts[0] == "" {
		http.Error(w, "Vehicle ID is required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1:
		h.getVehicle(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "due":
		h.getDue(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "predict":
		h.getPrediction(w, r, parts[0])
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *VehicleHandler) listVehicles(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	vehicles, err := h.vehicleCollection.FindVehiclesByUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch vehicles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicles)
}

func (h *VehicleHandler) createVehicle(w http.ResponseWriter, r *http.Request) {
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

	var vehicle models.Vehicle
	if err := json.Unmarshal(body, &vehicle); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if vehicle.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if vehicle.Odometer < 0 {
		http.Error(w, "Odometer must not be negative", http.StatusBadRequest)
		return
	}

	vehicle.UserID = claims.UserID
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	id, err := h.vehicleCollection.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		http.Error(w, "Failed to create vehicle", http.StatusInternalServerError)
		return
	}

	created, err := h.vehicleCollection.FindVehicleByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load created vehicle", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *VehicleHandler) getVehicle(w http.ResponseWriter, r *http.Request, id string) {
	vehicle, ok := h.loadOwnedVehicle(w, r, id)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(vehicle)
}

// getDue runs the synchronous evaluation path for one vehicle and returns the
// sorted due list.
func (h *VehicleHandler) getDue(w http.ResponseWriter, r *http.Request, id string) {
	vehicle, ok := h.loadOwnedVehicle(w, r, id)
	if !ok {
		return
	}

	registry, err := adapters.LoadRegistry(r.Context(), h.ruleCollection, vehicle.UserID)
	if err != nil {
		http.Error(w, "Failed to load rules", http.StatusInternalServerError)
		return
	}

	history, err := h.eventCollection.FindEventsByVehicle(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	var results []models.DueResult
	if policy, overridden := nearPolicyOverride(r); overridden {
		results = engine.EvaluateVehicle(registry, vehicle.Odometer, history, time.Now(), policy)
	} else {
		results = adapters.EvaluateLocal(registry, vehicle.Odometer, history, time.Now())
	}
	if results == nil {
		results = []models.DueResult{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// nearPolicyOverride reads optional within_km/within_days query parameters.
// When either is present the display default is replaced wholesale, so a
// caller passing only within_km gets no day window at all.
func nearPolicyOverride(r *http.Request) (engine.NearPolicy, bool) {
	kmParam := r.URL.Query().Get("within_km")
	daysParam := r.URL.Query().Get("within_days")
	if kmParam == "" && daysParam == "" {
		return engine.NearPolicy{}, false
	}

	var policy engine.NearPolicy
	if km, err := strconv.ParseFloat(kmParam, 64); err == nil && km > 0 {
		policy.WithinKm = km
	}
	if days, err := strconv.Atoi(daysParam); err == nil && days > 0 {
		policy.WithinDays = days
	}
	return policy, true
}

// getPrediction estimates when a rule will next come due, given the caller's
// average daily distance.
func (h *VehicleHandler) getPrediction(w http.ResponseWriter, r *http.Request, id string) {
	vehicle, ok := h.loadOwnedVehicle(w, r, id)
	if !ok {
		return
	}

	ruleID := r.URL.Query().Get("rule_id")
	if ruleID == "" {
		http.Error(w, "rule_id is required", http.StatusBadRequest)
		return
	}

	avgKmPerDay, err := strconv.ParseFloat(r.URL.Query().Get("avg_km_per_day"), 64)
	if err != nil || avgKmPerDay <= 0 {
		http.Error(w, "avg_km_per_day must be a positive number", http.StatusBadRequest)
		return
	}

	registry, err := adapters.LoadRegistry(r.Context(), h.ruleCollection, vehicle.UserID)
	if err != nil {
		http.Error(w, "Failed to load rules", http.StatusInternalServerError)
		return
	}

	rule, found := registry.Get(ruleID)
	if !found {
		http.Error(w, "Rule not found", http.StatusNotFound)
		return
	}

	history, err := h.eventCollection.FindEventsByVehicle(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	lastEvent := engine.LastEventForRule(ruleID, history)
	prediction := engine.PredictNext(rule, avgKmPerDay, vehicle.Odometer, lastEvent, time.Now())
	if prediction == nil {
		http.Error(w, "Rule has no odometer condition to predict from", http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prediction)
}

// loadOwnedVehicle fetches a vehicle and checks it belongs to the caller.
// It writes the error response itself and reports success via the bool.
func (h *VehicleHandler) loadOwnedVehicle(w http.ResponseWriter, r *http.Request, id string) (*models.Vehicle, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return nil, false
	}

	vehicle, err := h.vehicleCollection.FindVehicleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Vehicle not found", http.StatusNotFound)
			return nil, false
		}
		http.Error(w, "Failed to fetch vehicle", http.StatusInternalServerError)
		return nil, false
	}

	if vehicle.UserID != claims.UserID {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return nil, false
	}

	return vehicle, true
}
