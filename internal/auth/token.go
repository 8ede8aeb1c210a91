package auth

import (
	"fmt"
	"time"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

// AuthToken creates and verifies signed bearer tokens.
type AuthToken struct {
	key []byte
}

// NewAuthToken creates new AuthToken instance with signing key.
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// CreateToken issues a signed token for user.
func (at *AuthToken) CreateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})

	return token.SignedString(at.key)
}

// VerifyToken parses and validates tokenString, returning its payload.
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return at.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return &models.TokenPayload{UserID: c.Subject, Role: c.Role}, nil
}
