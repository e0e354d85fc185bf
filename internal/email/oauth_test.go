// AngelaMos | 2026
// oauth_test.go

package email

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/angelamos/casefile/internal/config"
)

func TestConsentURLRequestsOfflineAccess(t *testing.T) {
	provider := NewGoogleProvider(config.OAuthConfig{
		GoogleClientID:     "client-1",
		GoogleClientSecret: "secret-1",
		RedirectURL:        "https://app.example.com/v1/email/callback",
	})

	consent, err := url.Parse(provider.ConsentURL("state-token"))
	require.NoError(t, err)

	q := consent.Query()
	require.Equal(t, "client-1", q.Get("client_id"))
	require.Equal(t, "state-token", q.Get("state"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Contains(t, q.Get("scope"), "gmail.readonly")
}

func TestTokenSetFromGrantResponse(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	token := (&oauth2.Token{
		AccessToken:  "at-1",
		RefreshToken: "rt-1",
		Expiry:       expiry,
	}).WithExtra(map[string]any{
		"scope": "https://www.googleapis.com/auth/gmail.readonly",
	})

	ts := tokenSetFrom(token)
	require.Equal(t, "at-1", ts.AccessToken)
	require.Equal(t, "rt-1", ts.RefreshToken)
	require.NotNil(t, ts.ExpiresAt)
	require.WithinDuration(t, expiry, *ts.ExpiresAt, time.Second)
	require.Equal(t,
		ScopeList{"https://www.googleapis.com/auth/gmail.readonly"},
		ts.Scopes)
}

func TestTokenSetWithoutExpiryOrScope(t *testing.T) {
	ts := tokenSetFrom(&oauth2.Token{AccessToken: "at-1"})
	require.Nil(t, ts.ExpiresAt)
	require.Empty(t, ts.Scopes)
}
