package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ridecare/ridecare/internal/db"
	"github.com/ridecare/ridecare/internal/middleware"
)

// DeviceHandler manages delivery token registration. Tokens are a set per
// user: registering twice is harmless and removal is idempotent.
type DeviceHandler struct {
	userCollection db.UserCollection
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(userCollection db.UserCollection) *DeviceHandler {
	return &DeviceHandler{
		userCollection: userCollection,
	}
}

type tokenRequest struct {
	Token string `json:"token"`
}

// HandleToken routes /api/devices/token: POST registers a token for the
// caller, DELETE unregisters one.
func (h *DeviceHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
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

	var req tokenRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		if err := h.userCollection.AddFCMToken(r.Context(), claims.UserID, req.Token); err != nil {
			http.Error(w, "Failed to register token", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := h.userCollection.RemoveFCMTokens(r.Context(), claims.UserID, []string{req.Token}); err != nil {
			http.Error(w, "Failed to remove token", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
