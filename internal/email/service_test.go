// AngelaMos | 2026
// service_test.go

package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/casefile/internal/core"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[string]*Connection
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Connection)}
}

func (f *fakeRepo) Upsert(_ context.Context, c *Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.UserID == c.UserID &&
			existing.Provider == c.Provider &&
			existing.EmailAddress == c.EmailAddress {
			c.ID = existing.ID
			cp := *c
			f.items[c.ID] = &cp
			return nil
		}
	}
	cp := *c
	cp.CreatedAt = time.Now().UTC()
	f.items[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) ListForUser(
	_ context.Context,
	userID string,
) ([]Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []Connection
	for _, c := range f.items {
		if c.UserID == userID {
			items = append(items, *c)
		}
	}
	return items, nil
}

func (f *fakeRepo) UpdateTokens(_ context.Context, c *Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[c.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return core.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeProvider struct {
	mu         sync.Mutex
	refreshErr error
	revoked    []string
}

func (f *fakeProvider) ConsentURL(state string) string {
	return "https://auth.test/consent?state=" + state
}

func (f *fakeProvider) Exchange(
	_ context.Context,
	code string,
) (*TokenSet, error) {
	if code != "good-code" {
		return nil, errors.New("invalid code")
	}
	expires := time.Now().UTC().Add(time.Hour)
	return &TokenSet{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    &expires,
		Scopes:       ScopeList{"gmail.readonly"},
	}, nil
}

func (f *fakeProvider) Refresh(
	_ context.Context,
	_ string,
) (*TokenSet, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	expires := time.Now().UTC().Add(time.Hour)
	return &TokenSet{
		AccessToken: "access-2",
		ExpiresAt:   &expires,
	}, nil
}

func (f *fakeProvider) Revoke(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeProvider) Profile(
	_ context.Context,
	_ string,
) (string, error) {
	return "mailbox@example.com", nil
}

func newTestService(
	t *testing.T,
	provider OAuthProvider,
) (*Service, *fakeRepo) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeRepo()
	return NewService(repo, provider, client, 10*time.Minute, nil), repo
}

func TestLinkFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeProvider{})

	link, err := svc.BeginLink(ctx, "user-1")
	require.NoError(t, err)
	assert.Contains(t, link.ConsentURL, link.State)

	conn, err := svc.CompleteLink(ctx, link.State, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "mailbox@example.com", conn.EmailAddress)
	assert.Equal(t, StatusActive, conn.Status)
	assert.Equal(t, ScopeList{"gmail.readonly"}, conn.Scopes)
}

func TestStateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeProvider{})

	link, err := svc.BeginLink(ctx, "user-1")
	require.NoError(t, err)

	_, err = svc.CompleteLink(ctx, link.State, "good-code")
	require.NoError(t, err)

	// replaying the same state must fail
	_, err = svc.CompleteLink(ctx, link.State, "good-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUnknownStateRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeProvider{})

	_, err := svc.CompleteLink(ctx, "forged-state", "good-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestEnsureFreshTokenRefreshesExpired(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, &fakeProvider{})

	expired := time.Now().UTC().Add(-time.Minute)
	conn := &Connection{
		ID:             "conn-1",
		UserID:         "user-1",
		Provider:       ProviderGmail,
		EmailAddress:   "mailbox@example.com",
		AccessToken:    "stale",
		RefreshToken:   "refresh-1",
		TokenExpiresAt: &expired,
		Status:         StatusActive,
	}
	require.NoError(t, repo.Upsert(ctx, conn))

	refreshed, err := svc.EnsureFreshToken(ctx, "user-1", conn.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.TokenExpiresAt)
	assert.True(t, refreshed.TokenExpiresAt.After(time.Now()))

	stored, err := repo.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.AccessToken)
	// refresh grant without a new refresh token keeps the old one
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestEnsureFreshTokenMarksErrorOnFailure(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{refreshErr: errors.New("upstream down")}
	svc, repo := newTestService(t, provider)

	expired := time.Now().UTC().Add(-time.Minute)
	conn := &Connection{
		ID:             "conn-1",
		UserID:         "user-1",
		Provider:       ProviderGmail,
		EmailAddress:   "mailbox@example.com",
		RefreshToken:   "refresh-1",
		TokenExpiresAt: &expired,
		Status:         StatusActive,
	}
	require.NoError(t, repo.Upsert(ctx, conn))

	_, err := svc.EnsureFreshToken(ctx, "user-1", conn.ID)
	require.Error(t, err)

	stored, err := repo.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusError, stored.Status)
}

func TestRevokeMarksAndCallsProvider(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	svc, repo := newTestService(t, provider)

	conn := &Connection{
		ID:           "conn-1",
		UserID:       "user-1",
		Provider:     ProviderGmail,
		EmailAddress: "mailbox@example.com",
		RefreshToken: "refresh-1",
		Status:       StatusActive,
	}
	require.NoError(t, repo.Upsert(ctx, conn))

	require.NoError(t, svc.Revoke(ctx, "user-1", conn.ID))

	stored, err := repo.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRevoked, stored.Status)
	assert.Equal(t, []string{"refresh-1"}, provider.revoked)
}

func TestConnectionOwnership(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, &fakeProvider{})

	conn := &Connection{
		ID:           "conn-1",
		UserID:       "user-1",
		Provider:     ProviderGmail,
		EmailAddress: "mailbox@example.com",
		Status:       StatusActive,
	}
	require.NoError(t, repo.Upsert(ctx, conn))

	_, err := svc.Get(ctx, "someone-else", conn.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}
