package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  12,
		"role": "provider",
		"iss":  "salon-api",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func TestValidateToken(t *testing.T) {
	svc := NewJWTService(testSecret, "salon-api")

	id, err := svc.ValidateToken(sign(t, validClaims(), testSecret))
	require.NoError(t, err)
	assert.Equal(t, model.Identity{ID: 12, Role: model.RoleProvider}, id)

	stringSub := validClaims()
	stringSub["sub"] = "12"
	id, err = svc.ValidateToken(sign(t, stringSub, testSecret))
	require.NoError(t, err)
	assert.Equal(t, int64(12), id.ID)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := NewJWTService(testSecret, "salon-api")

	mutate := func(f func(jwt.MapClaims)) jwt.MapClaims {
		c := validClaims()
		f(c)
		return c
	}
	tests := []struct {
		name   string
		claims jwt.MapClaims
		secret string
	}{
		{"wrong secret", validClaims(), "other"},
		{"expired", mutate(func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }), testSecret},
		{"no expiry", mutate(func(c jwt.MapClaims) { delete(c, "exp") }), testSecret},
		{"wrong issuer", mutate(func(c jwt.MapClaims) { c["iss"] = "elsewhere" }), testSecret},
		{"system role", mutate(func(c jwt.MapClaims) { c["role"] = "system" }), testSecret},
		{"unknown role", mutate(func(c jwt.MapClaims) { c["role"] = "owner" }), testSecret},
		{"missing sub", mutate(func(c jwt.MapClaims) { delete(c, "sub") }), testSecret},
		{"zero sub", mutate(func(c jwt.MapClaims) { c["sub"] = 0 }), testSecret},
		{"fractional sub", mutate(func(c jwt.MapClaims) { c["sub"] = 1.5 }), testSecret},
		{"huge sub", mutate(func(c jwt.MapClaims) { c["sub"] = 1e300 }), testSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(sign(t, tt.claims, tt.secret))
			assert.Error(t, err)
		})
	}
}

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, "salon-api")

	token, err := svc.GenerateAccessToken(model.Identity{ID: 7, Role: model.RoleAdmin}, time.Minute)
	require.NoError(t, err)

	id, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.Identity{ID: 7, Role: model.RoleAdmin}, id)

	_, err = svc.GenerateAccessToken(model.SystemIdentity(), time.Minute)
	assert.Error(t, err)

	_, err = NewJWTService("different", "salon-api").ValidateToken(token)
	assert.Error(t, err)
}
