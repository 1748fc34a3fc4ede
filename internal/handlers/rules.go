package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ridecare/ridecare/internal/db"
	"github.com/ridecare/ridecare/internal/middleware"
	"github.com/ridecare/ridecare/internal/models"
)

// RuleHandler handles maintenance rule requests
type RuleHandler struct {
	ruleCollection db.RuleCollection
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(ruleCollection db.RuleCollection) *RuleHandler {
	return &RuleHandler{
		ruleCollection: ruleCollection,
	}
}

// HandleRules routes /api/rules by method: GET lists the caller's rules,
// POST creates or replaces one.
func (h *RuleHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRules(w, r)
	case http.MethodPost:
		h.createRule(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RuleHandler) listRules(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	rules, err := h.ruleCollection.FindRulesByUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch rules", http.StatusInternalServerError)
		return
	}
	if len(rules) == 0 {
		rules = models.DefaultRules()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rules)
}

func (h *RuleHandler) createRule(w http.ResponseWriter, r *http.Request) {
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

	var rule models.MaintenanceRule
	if err := json.Unmarshal(body, &rule); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := validateRule(&rule); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if rule.ID == "" {
		rule.ID = "rule_" + uuid.New().String()
	}
	rule.UserID = claims.UserID
	if rule.Recurrence == "" {
		rule.Recurrence = models.RecurrenceRecurring
	}

	if err := h.ruleCollection.InsertRule(r.Context(), rule); err != nil {
		http.Error(w, "Failed to save rule", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rule)
}

// DeleteRule handles DELETE /api/rules/{id}
func (h *RuleHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	ruleID := strings.TrimPrefix(r.URL.Path, "/api/rules/")
	if ruleID == "" || strings.Contains(ruleID, "/") {
		http.Error(w, "Rule ID is required", http.StatusBadRequest)
		return
	}

	if err := h.ruleCollection.DeleteRule(r.Context(), claims.UserID, ruleID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Rule not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete rule", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateRule(rule *models.MaintenanceRule) error {
	if rule.Title == "" {
		return errors.New("title is required")
	}
	if !models.IsValidRuleType(rule.Type) {
		return errors.New("invalid rule type")
	}
	if len(rule.Conditions) == 0 {
		return errors.New("at least one condition is required")
	}
	for _, cond := range rule.Conditions {
		if !models.IsValidConditionKind(cond.Kind) {
			return errors.New("invalid condition kind")
		}
		if cond.Value <= 0 {
			return errors.New("condition value must be positive")
		}
	}
	if rule.BasePriority < 0 || rule.BasePriority > 100 {
		return errors.New("base priority must be between 0 and 100")
	}
	return nil
}
