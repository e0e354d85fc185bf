// AngelaMos | 2026
// oauth.go

package email

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/angelamos/casefile/internal/config"
)

const (
	googleRevokeURL  = "https://oauth2.googleapis.com/revoke"
	googleProfileURL = "https://gmail.googleapis.com/gmail/v1/users/me/profile"
)

// gmail.readonly plus the userinfo scope needed to resolve the address.
var defaultScopes = ScopeList{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
}

// TokenSet is the result of an authorization-code exchange or a refresh
// grant.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       ScopeList
}

// OAuthProvider abstracts the provider round trips so the service can
// be tested against a fake.
type OAuthProvider interface {
	ConsentURL(state string) string
	Exchange(ctx context.Context, code string) (*TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	Revoke(ctx context.Context, token string) error
	Profile(ctx context.Context, accessToken string) (string, error)
}

type googleProvider struct {
	oauth      *oauth2.Config
	httpClient *http.Client
}

func NewGoogleProvider(cfg config.OAuthConfig) OAuthProvider {
	return &googleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       defaultScopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ConsentURL requests offline access with forced consent so Google returns
// a refresh token even when the mailbox was linked before.
func (g *googleProvider) ConsentURL(state string) string {
	return g.oauth.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (g *googleProvider) Exchange(
	ctx context.Context,
	code string,
) (*TokenSet, error) {
	token, err := g.oauth.Exchange(g.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	return tokenSetFrom(token), nil
}

func (g *googleProvider) Refresh(
	ctx context.Context,
	refreshToken string,
) (*TokenSet, error) {
	source := g.oauth.TokenSource(
		g.clientContext(ctx),
		&oauth2.Token{RefreshToken: refreshToken},
	)

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token grant: %w", err)
	}

	return tokenSetFrom(token), nil
}

func (g *googleProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func tokenSetFrom(token *oauth2.Token) *TokenSet {
	ts := &TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	if scope, ok := token.Extra("scope").(string); ok {
		ts.Scopes = ParseScopes(scope)
	}

	if !token.Expiry.IsZero() {
		expiresAt := token.Expiry.UTC()
		ts.ExpiresAt = &expiresAt
	}

	return ts
}

// Revoke invalidates a token at the provider. Google has no revocation
// support in the oauth2 package, so this stays a plain form POST.
func (g *googleProvider) Revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, googleRevokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke request: %w", err)
	}
	defer resp.Body.Close()
	//nolint:errcheck // drain for connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke endpoint returned %d", resp.StatusCode)
	}

	return nil
}

type gmailProfile struct {
	EmailAddress string `json:"emailAddress"`
}

// Profile resolves the linked mailbox address for an access token.
func (g *googleProvider) Profile(
	ctx context.Context,
	accessToken string,
) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, googleProfileURL, nil)
	if err != nil {
		return "", fmt.Errorf("profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("profile request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("profile response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"profile endpoint returned %d: %s", resp.StatusCode, body)
	}

	var profile gmailProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("profile response: %w", err)
	}

	if profile.EmailAddress == "" {
		return "", fmt.Errorf("profile response missing email address")
	}

	return profile.EmailAddress, nil
}
