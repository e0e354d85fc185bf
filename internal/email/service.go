// AngelaMos | 2026
// service.go

package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/angelamos/casefile/internal/core"
)

const stateKeyPrefix = "oauth:state:"

var ErrInvalidState = errors.New("invalid or expired oauth state")

type Service struct {
	repo     Repository
	provider OAuthProvider
	redis    *redis.Client
	stateTTL time.Duration
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	provider OAuthProvider,
	redisClient *redis.Client,
	stateTTL time.Duration,
	logger *slog.Logger,
) *Service {
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		provider: provider,
		redis:    redisClient,
		stateTTL: stateTTL,
		logger:   logger,
	}
}

// BeginLink issues a consent URL with a single-use state bound to the
// user in redis.
func (s *Service) BeginLink(
	ctx context.Context,
	userID string,
) (*LinkResponse, error) {
	state, err := core.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	err = s.redis.Set(ctx, stateKeyPrefix+state, userID, s.stateTTL).Err()
	if err != nil {
		return nil, fmt.Errorf("store state: %w", err)
	}

	return &LinkResponse{
		ConsentURL: s.provider.ConsentURL(state),
		State:      state,
	}, nil
}

// CompleteLink validates the callback state, exchanges the code, and
// upserts the connection for the user the state was issued to.
func (s *Service) CompleteLink(
	ctx context.Context,
	state, code string,
) (*ConnectionResponse, error) {
	userID, err := s.consumeState(ctx, state)
	if err != nil {
		return nil, err
	}

	tokens, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	address, err := s.provider.Profile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("resolve mailbox: %w", err)
	}

	conn := &Connection{
		ID:             uuid.NewString(),
		UserID:         userID,
		Provider:       ProviderGmail,
		EmailAddress:   address,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: tokens.ExpiresAt,
		Scopes:         tokens.Scopes,
		Status:         StatusActive,
	}

	if err := s.repo.Upsert(ctx, conn); err != nil {
		return nil, err
	}

	resp := ToConnectionResponse(conn)
	return &resp, nil
}

func (s *Service) List(
	ctx context.Context,
	userID string,
) ([]ConnectionResponse, error) {
	items, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToConnectionResponseList(items), nil
}

func (s *Service) Get(
	ctx context.Context,
	userID, id string,
) (*ConnectionResponse, error) {
	conn, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	resp := ToConnectionResponse(conn)
	return &resp, nil
}

// EnsureFreshToken refreshes an expired access token through the
// refresh grant. A failed refresh flips the connection to error status.
func (s *Service) EnsureFreshToken(
	ctx context.Context,
	userID, id string,
) (*ConnectionResponse, error) {
	conn, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if conn.Status != StatusActive {
		return nil, fmt.Errorf("connection not active: %w", core.ErrInvalidInput)
	}

	if !conn.TokenExpired(time.Now().UTC()) {
		resp := ToConnectionResponse(conn)
		return &resp, nil
	}

	if conn.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token: %w", core.ErrInvalidInput)
	}

	tokens, err := s.provider.Refresh(ctx, conn.RefreshToken)
	if err != nil {
		if stErr := s.repo.UpdateStatus(ctx, conn.ID, StatusError); stErr != nil {
			s.logger.Error("mark connection errored",
				"connection_id", conn.ID, "error", stErr)
		}
		return nil, fmt.Errorf("token refresh: %w", err)
	}

	conn.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		conn.RefreshToken = tokens.RefreshToken
	}
	conn.TokenExpiresAt = tokens.ExpiresAt
	if len(tokens.Scopes) > 0 {
		conn.Scopes = tokens.Scopes
	}
	conn.Status = StatusActive

	if err := s.repo.UpdateTokens(ctx, conn); err != nil {
		return nil, err
	}

	resp := ToConnectionResponse(conn)
	return &resp, nil
}

// Revoke marks the connection revoked and makes a best-effort
// revocation call to the provider.
func (s *Service) Revoke(ctx context.Context, userID, id string) error {
	conn, err := s.fetchOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, conn.ID, StatusRevoked); err != nil {
		return err
	}

	token := conn.RefreshToken
	if token == "" {
		token = conn.AccessToken
	}
	if token != "" {
		if err := s.provider.Revoke(ctx, token); err != nil {
			s.logger.Warn("provider revocation failed",
				"connection_id", conn.ID, "error", err)
		}
	}

	return nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.fetchOwned(ctx, userID, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *Service) fetchOwned(
	ctx context.Context,
	userID, id string,
) (*Connection, error) {
	conn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if conn.UserID != userID {
		return nil, fmt.Errorf("connection access: %w", core.ErrForbidden)
	}

	return conn, nil
}

// consumeState deletes the state atomically so it cannot be replayed.
func (s *Service) consumeState(
	ctx context.Context,
	state string,
) (string, error) {
	userID, err := s.redis.GetDel(ctx, stateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidState
	}
	if err != nil {
		return "", fmt.Errorf("consume state: %w", err)
	}

	return userID, nil
}
