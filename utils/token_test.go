package utils

import (
	"testing"
	"time"

	"github.com/Kariqs/amexan-shop/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestJWTRoundTrip(t *testing.T) {
	user := models.User{Model: gorm.Model{ID: 42}, Username: "jane", Email: "jane@example.com", Role: models.RoleAdmin}

	token, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	id, ok := UserIDFromClaims(claims)
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)
	assert.Equal(t, "admin", claims["role"])

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT(models.User{Model: gorm.Model{ID: 1}}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseJWT(signed, "secret")
	assert.Error(t, err)
}

func TestUserIDFromClaims(t *testing.T) {
	_, ok := UserIDFromClaims(jwt.MapClaims{})
	assert.False(t, ok)
	_, ok = UserIDFromClaims(jwt.MapClaims{"user_id": "7"})
	assert.False(t, ok)
	id, ok := UserIDFromClaims(jwt.MapClaims{"user_id": float64(7)})
	assert.True(t, ok)
	assert.EqualValues(t, 7, id)
}
