package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ridecare/ridecare/internal/middleware"
	"github.com/ridecare/ridecare/internal/models"
)

// MockRuleCollection is a mock implementation of db.RuleCollection
type MockRuleCollection struct {
	mock.Mock
}

func (m *MockRuleCollection) InsertRule(ctx context.Context, rule models.MaintenanceRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleCollection) FindRulesByUser(ctx context.Context, userID string) ([]models.MaintenanceRule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRule), args.Error(1)
}

func (m *MockRuleCollection) DeleteRule(ctx context.Context, userID, ruleID string) error {
	args := m.Called(ctx, userID, ruleID)
	return args.Error(0)
}

// MockEventCollection is a mock implementation of db.EventCollection
type MockEventCollection struct {
	mock.Mock
}

func (m *MockEventCollection) InsertEvent(ctx context.Context, event models.MaintenanceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventCollection) FindEventsByVehicle(ctx context.Context, vehicleID string) ([]models.MaintenanceEvent, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceEvent), args.Error(1)
}

// MockVehicleCollection is a mock implementation of db.VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (string, error) {
	args := m.Called(ctx, vehicle)
	return args.String(0), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehiclesByUser(ctx context.Context, userID string) ([]models.Vehicle, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) IncrementOdometer(ctx context.Context, id string, distance float64, tripEnd time.Time) error {
	args := m.Called(ctx, id, distance, tripEnd)
	return args.Error(0)
}

// MockUserCollection is a mock implementation of db.UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUsersWithTokens(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserCollection) AddFCMToken(ctx context.Context, id string, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserCollection) RemoveFCMTokens(ctx context.Context, id string, tokens []string) error {
	args := m.Called(ctx, id, tokens)
	return args.Error(0)
}

// authedRequest builds a request carrying authenticated-user claims, the way
// the auth middleware would have attached them.
func authedRequest(method, target string, body []byte, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
	claims := &models.Claims{
		UserID:   userID,
		Username: "rider",
		Role:     models.RoleOwner,
	}
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	return req.WithContext(ctx)
}
