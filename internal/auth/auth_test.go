package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ridecare/ridecare/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService("", "")
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	return service
}

func TestNewService(t *testing.T) {
	service := newTestService(t)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
}

func TestNewService_CustomExpiry(t *testing.T) {
	service, err := NewService("secret", "1h")
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, service.tokenExp)

	_, err = NewService("secret", "not-a-duration")
	assert.Error(t, err)
}

func TestService_HashAndCheckPassword(t *testing.T) {
	service := newTestService(t)

	password := "testpassword123"
	hash, err := service.HashPassword(password)
	assert.NoError(t, err)
	assert.NotEqual(t, password, hash)

	assert.True(t, service.CheckPassword(password, hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_GenerateAndValidateToken(t *testing.T) {
	service := newTestService(t)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "rider",
		Role:     models.RoleOwner,
	}

	token, err := service.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, models.RoleOwner, claims.Role)

	// Bearer prefix is tolerated
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := newTestService(t)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	assert.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	_, err = service.ExtractTokenFromHeader("")
	assert.Equal(t, ErrInvalidToken, err)

	_, err = service.ExtractTokenFromHeader("InvalidFormat")
	assert.Equal(t, ErrInvalidToken, err)

	_, err = service.ExtractTokenFromHeader("Bearer ")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_Validators(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.ValidatePassword("validpassword123"))
	assert.Error(t, service.ValidatePassword("short"))

	assert.NoError(t, service.ValidateEmail("rider@example.com"))
	assert.Error(t, service.ValidateEmail("riderexample.com"))
	assert.Error(t, service.ValidateEmail("rider@"))

	assert.NoError(t, service.ValidateUsername("rider"))
	assert.Error(t, service.ValidateUsername("ab"))
	assert.Error(t, service.ValidateUsername(strings.Repeat("a", 51)))
}

func TestService_TokenExpiration(t *testing.T) {
	service := newTestService(t)

	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "rider",
		Role:     models.RoleOwner,
	}

	token, _ := service.GenerateToken(user)
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)

	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(service.tokenExp.Seconds())+1)
}
