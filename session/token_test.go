package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/pinrail/pinrail-go/utils"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestUserIDFromToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userID, err := UserIDFromToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", userID)
}

func TestUserIDFromTokenErrors(t *testing.T) {
	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"no subject": signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := UserIDFromToken(token)
			require.Error(t, err)
			require.ErrorIs(t, errors.Cause(err), utils.ErrUnauthorized)
		})
	}
}
