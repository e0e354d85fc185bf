// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/casefile/internal/core"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := newTestJWTManager(t)

	signed, err := manager.CreateAccessToken(AccessTokenClaims{
		UserID:       "user-1",
		Role:         "admin",
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := manager.VerifyAccessToken(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, 3, claims.TokenVersion)
	require.NotEmpty(t, claims.JTI)
	require.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	manager := newTestJWTManager(t)

	_, err := manager.VerifyAccessToken(
		context.Background(),
		"not-a-token",
	)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestVerifyAccessTokenRejectsForeignKey(t *testing.T) {
	issuer := newTestJWTManager(t)
	verifier := newTestJWTManager(t)

	signed, err := issuer.CreateAccessToken(AccessTokenClaims{
		UserID: "user-1",
		Role:   "user",
	})
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(context.Background(), signed)
	require.ErrorIs(t, err, core.ErrTokenInvalid)
}
