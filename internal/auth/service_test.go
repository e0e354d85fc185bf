// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/casefile/internal/config"
	"github.com/angelamos/casefile/internal/core"
	"github.com/angelamos/casefile/internal/middleware"
)

type fakeRepo struct {
	mu     sync.Mutex
	byHash map[string]*RefreshToken
	byID   map[string]*RefreshToken
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byHash: make(map[string]*RefreshToken),
		byID:   make(map[string]*RefreshToken),
	}
}

func (f *fakeRepo) Create(_ context.Context, t *RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byHash[t.TokenHash]; exists {
		return core.ErrDuplicateKey
	}
	cp := *t
	cp.CreatedAt = time.Now().UTC()
	f.byHash[cp.TokenHash] = &cp
	f.byID[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) Rotate(
	ctx context.Context,
	oldHash string,
	newToken *RefreshToken,
) error {
	if _, err := f.RevokeByHash(ctx, oldHash); err != nil {
		return err
	}
	return f.Create(ctx, newToken)
}

func (f *fakeRepo) FindByHash(
	_ context.Context,
	hash string,
) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[hash]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) FindByID(
	_ context.Context,
	id string,
) (*RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) RevokeByHash(_ context.Context, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byHash[hash]
	if !ok || t.RevokedAt != nil {
		return false, nil
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	return true, nil
}

func (f *fakeRepo) RevokeByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok || t.RevokedAt != nil {
		return core.ErrNotFound
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	return nil
}

func (f *fakeRepo) RevokeAllForUser(
	_ context.Context,
	userID string,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	now := time.Now().UTC()
	for _, t := range f.byHash {
		if t.UserID == userID && t.RevokedAt == nil &&
			t.ExpiresAt.After(now) {
			t.RevokedAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) GetActiveSessionsForUser(
	_ context.Context,
	userID string,
) ([]RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sessions []RefreshToken
	now := time.Now().UTC()
	for _, t := range f.byHash {
		if t.UserID == userID && t.RevokedAt == nil && t.ExpiresAt.After(now) {
			sessions = append(sessions, *t)
		}
	}
	return sessions, nil
}

func (f *fakeRepo) DeleteExpired(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	now := time.Now().UTC()
	for hash, t := range f.byHash {
		if !t.ExpiresAt.After(now) {
			delete(f.byHash, hash)
			delete(f.byID, t.ID)
			count++
		}
	}
	return count, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*UserInfo
}

func newFakeUsers(users ...*UserInfo) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*UserInfo)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(
	_ context.Context,
	email, passwordHash, name string,
) (*UserInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return nil, core.ErrDuplicateKey
		}
	}
	u := &UserInfo{
		ID:           "user-" + email,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         "user",
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) IncrementTokenVersion(
	_ context.Context,
	userID string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (f *fakeUsers) UpdatePassword(
	_ context.Context,
	userID, passwordHash string,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt-private.pem")
	pubPath := filepath.Join(dir, "jwt-public.pem")
	require.NoError(t, GenerateKeyPair(privPath, pubPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:    privPath,
		PublicKeyPath:     pubPath,
		AccessTokenExpire: 15 * time.Minute,
		RefreshTokenDays:  30,
		Issuer:            "casefile-test",
		Audience:          "casefile",
	})
	require.NoError(t, err)

	return manager
}

func newTestService(
	t *testing.T,
	repo Repository,
	users UserProvider,
) *Service {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewService(repo, newTestJWTManager(t), users, client)
}

func testUser(password string, t *testing.T) *UserInfo {
	t.Helper()
	hash, err := core.HashPassword(password)
	require.NoError(t, err)
	return &UserInfo{
		ID:           "user-1",
		Email:        "attorney@example.com",
		Name:         "Test Attorney",
		PasswordHash: hash,
		Role:         "user",
	}
}

func TestLoginAndRefreshRotation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(t, repo, newFakeUsers(testUser("correct horse", t)))

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "attorney@example.com",
		Password: "correct horse",
	}, "test-agent", "203.0.113.7")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Tokens.RefreshToken)

	first := resp.Tokens.RefreshToken

	rotated, err := svc.Refresh(ctx, first, "test-agent", "203.0.113.7")
	require.NoError(t, err)
	assert.NotEqual(t, first, rotated.Tokens.RefreshToken)

	// the rotated-out token must not work a second time
	_, err = svc.Refresh(ctx, first, "test-agent", "203.0.113.7")
	require.ErrorIs(t, err, core.ErrTokenInvalid)

	// the replacement still works
	_, err = svc.Refresh(ctx, rotated.Tokens.RefreshToken, "test-agent", "203.0.113.7")
	require.NoError(t, err)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeRepo(), newFakeUsers(testUser("right", t)))

	_, err := svc.Login(ctx, LoginRequest{
		Email:    "attorney@example.com",
		Password: "wrong",
	}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	}, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveUserUniformlyNil(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("pw", t)
	svc := newTestService(t, repo, newFakeUsers(user))

	// unknown hash
	resolved, err := svc.ResolveUser(ctx, core.HashToken("never-issued"))
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// expired token
	expiredHash := core.HashToken("expired-token")
	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-expired",
		TokenHash: expiredHash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	resolved, err = svc.ResolveUser(ctx, expiredHash)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// revoked token
	revokedHash := core.HashToken("revoked-token")
	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-revoked",
		TokenHash: revokedHash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	_, err = repo.RevokeByHash(ctx, revokedHash)
	require.NoError(t, err)
	resolved, err = svc.ResolveUser(ctx, revokedHash)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	// valid token resolves
	validHash := core.HashToken("valid-token")
	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-valid",
		TokenHash: validHash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	resolved, err = svc.ResolveUser(ctx, validHash)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestLogoutIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("pw", t)
	svc := newTestService(t, repo, newFakeUsers(user))

	// unknown token is a no-op
	require.NoError(t, svc.Logout(ctx, "never-issued", user.ID))

	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-1",
		TokenHash: core.HashToken("session-token"),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, svc.Logout(ctx, "session-token", user.ID))
	// second logout of the same token is still fine
	require.NoError(t, svc.Logout(ctx, "session-token", user.ID))
}

func TestLogoutOtherUsersToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("pw", t)
	svc := newTestService(t, repo, newFakeUsers(user))

	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-1",
		TokenHash: core.HashToken("their-token"),
		UserID:    "someone-else",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	err := svc.Logout(ctx, "their-token", user.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestLogoutAllRevokesAndBumpsVersion(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("pw", t)
	users := newFakeUsers(user)
	svc := newTestService(t, repo, users)

	for i, token := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &RefreshToken{
			ID:        string(rune('x' + i)),
			TokenHash: core.HashToken(token),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	count, err := svc.LogoutAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// second pass finds nothing active
	count, err = svc.LogoutAll(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	refreshed, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed.TokenVersion)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("pw", t)
	svc := newTestService(t, repo, newFakeUsers(user))

	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-expired",
		TokenHash: core.HashToken("old"),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	// revoked but unexpired rows are kept for audit
	revokedHash := core.HashToken("revoked")
	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-revoked",
		TokenHash: revokedHash,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	_, err := repo.RevokeByHash(ctx, revokedHash)
	require.NoError(t, err)

	deleted, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByHash(ctx, revokedHash)
	require.NoError(t, err)
	_, err = repo.FindByHash(ctx, core.HashToken("old"))
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestAccessTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeRepo(), newFakeUsers(testUser("pw", t)))

	blacklisted, err := svc.IsAccessTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, svc.RevokeAccessToken(
		ctx, "jti-1", time.Now().Add(10*time.Minute)))

	blacklisted, err = svc.IsAccessTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	// an already-expired access token needs no blacklist entry
	require.NoError(t, svc.RevokeAccessToken(
		ctx, "jti-2", time.Now().Add(-time.Minute)))
	blacklisted, err = svc.IsAccessTokenBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("old password", t)
	users := newFakeUsers(user)
	svc := newTestService(t, repo, users)

	require.NoError(t, repo.Create(ctx, &RefreshToken{
		ID:        "tok-1",
		TokenHash: core.HashToken("session"),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	err := svc.ChangePassword(ctx, user.ID, "wrong", "new password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(
		ctx, user.ID, "old password", "new password"))

	sessions, err := svc.GetActiveSessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// old refresh token no longer resolves
	resolved, err := svc.ResolveUser(ctx, core.HashToken("session"))
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func authStatus(t *testing.T, svc *Service, accessToken string) int {
	t.Helper()

	handler := middleware.Authenticator(svc.jwt, svc)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec.Code
}

func TestLogoutAllInvalidatesOutstandingAccessTokens(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("pw", t)
	svc := newTestService(t, repo, newFakeUsers(user))

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "attorney@example.com",
		Password: "pw",
	}, "", "")
	require.NoError(t, err)

	require.Equal(t, http.StatusOK,
		authStatus(t, svc, resp.Tokens.AccessToken))

	_, err = svc.LogoutAll(ctx, user.ID)
	require.NoError(t, err)

	// access tokens minted before the version bump stop validating
	// even though their signatures are still good
	assert.Equal(t, http.StatusUnauthorized,
		authStatus(t, svc, resp.Tokens.AccessToken))

	// a fresh login carries the new version and authenticates again
	fresh, err := svc.Login(ctx, LoginRequest{
		Email:    "attorney@example.com",
		Password: "pw",
	}, "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK,
		authStatus(t, svc, fresh.Tokens.AccessToken))
}

func TestChangePasswordInvalidatesAccessTokens(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	user := testUser("old password", t)
	svc := newTestService(t, repo, newFakeUsers(user))

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    "attorney@example.com",
		Password: "old password",
	}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(
		ctx, user.ID, "old password", "new password"))

	assert.Equal(t, http.StatusUnauthorized,
		authStatus(t, svc, resp.Tokens.AccessToken))
}
