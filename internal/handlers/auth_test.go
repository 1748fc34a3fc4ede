package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ridecare/ridecare/internal/auth"
	"github.com/ridecare/ridecare/internal/models"
)

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	service, err := auth.NewService("", "")
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	return service
}

func TestAuthHandler_Login(t *testing.T) {
	authService := newAuthService(t)

	t.Run("successful login", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		passwordHash, err := authService.HashPassword("password123")
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "rider",
			Email:        "rider@example.com",
			PasswordHash: passwordHash,
			Role:         models.RoleOwner,
			IsActive:     true,
		}

		mockUsers.On("FindUserByUsername", mock.Anything, "rider").Return(user, nil)
		mockUsers.On("UpdateLastLogin", mock.Anything, user.ID.Hex()).Return(nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "rider", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response models.LoginResponse
		err = json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, "rider", response.User.Username)
		mockUsers.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "rider",
			PasswordHash: passwordHash,
			Role:         models.RoleOwner,
			IsActive:     true,
		}
		mockUsers.On("FindUserByUsername", mock.Anything, "rider").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "rider", Password: "wrong"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		passwordHash, _ := authService.HashPassword("password123")
		user := &models.User{
			ID:           primitive.NewObjectID(),
			Username:     "rider",
			PasswordHash: passwordHash,
			Role:         models.RoleOwner,
			IsActive:     false,
		}
		mockUsers.On("FindUserByUsername", mock.Anything, "rider").Return(user, nil)

		body, _ := json.Marshal(models.LoginRequest{Username: "rider", Password: "password123"})
		req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		req := httptest.NewRequest("GET", "/api/auth/login", nil)
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestAuthHandler_Register(t *testing.T) {
	authService := newAuthService(t)

	t.Run("successful registration seeds default rules", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		mockUsers.On("FindUserByUsername", mock.Anything, "newrider").Return(nil, mongo.ErrNoDocuments)
		mockUsers.On("FindUserByEmail", mock.Anything, "new@example.com").Return(nil, mongo.ErrNoDocuments)
		mockUsers.On("InsertUser", mock.Anything, mock.AnythingOfType("models.User")).Return(nil)
		mockRules.On("InsertRule", mock.Anything, mock.AnythingOfType("models.MaintenanceRule")).Return(nil)

		body, _ := json.Marshal(models.RegisterRequest{
			Username: "newrider",
			Email:    "new@example.com",
			Password: "password123",
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response models.LoginResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.NotEmpty(t, response.Token)
		// Role defaults to owner when omitted.
		assert.Equal(t, models.RoleOwner, response.User.Role)

		mockRules.AssertNumberOfCalls(t, "InsertRule", len(models.DefaultRules()))
	})

	t.Run("duplicate username", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		existing := &models.User{ID: primitive.NewObjectID(), Username: "newrider"}
		mockUsers.On("FindUserByUsername", mock.Anything, "newrider").Return(existing, nil)

		body, _ := json.Marshal(models.RegisterRequest{
			Username: "newrider",
			Email:    "new@example.com",
			Password: "password123",
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		body, _ := json.Marshal(models.RegisterRequest{
			Username: "newrider",
			Email:    "new@example.com",
			Password: "short",
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		body, _ := json.Marshal(models.RegisterRequest{
			Username: "newrider",
			Email:    "new@example.com",
			Password: "password123",
			Role:     models.Role("admin"),
		})
		req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Register(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	authService := newAuthService(t)

	t.Run("returns caller profile", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		user := &models.User{
			ID:       primitive.NewObjectID(),
			Username: "rider",
			Role:     models.RoleOwner,
		}
		mockUsers.On("FindUserByID", mock.Anything, user.ID.Hex()).Return(user, nil)

		req := authedRequest("GET", "/api/auth/profile", nil, user.ID.Hex())
		w := httptest.NewRecorder()

		handler.GetProfile(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing user context", func(t *testing.T) {
		mockUsers := new(MockUserCollection)
		mockRules := new(MockRuleCollection)
		handler := NewAuthHandler(authService, mockUsers, mockRules)

		req := httptest.NewRequest("GET", "/api/auth/profile", nil)
		w := httptest.NewRecorder()

		handler.GetProfile(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
