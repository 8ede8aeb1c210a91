package auth

import (
	"testing"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthToken_RoundTrip(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))

	token, err := at.CreateToken(&models.User{ID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)

	payload, err := at.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, models.RoleStudent, payload.Role)
}

func TestAuthToken_WrongKey(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))

	token, err := at.CreateToken(&models.User{ID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)

	other := NewAuthToken([]byte("fedcba9876543210"))
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestAuthToken_Garbage(t *testing.T) {
	at := NewAuthToken([]byte("0123456789abcdef"))

	_, err := at.VerifyToken("not.a.token")
	assert.Error(t, err)
}
