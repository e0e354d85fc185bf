// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/casefile/internal/auth"
	"github.com/angelamos/casefile/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByEmail implements auth.UserProvider.
func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// GetByID implements auth.UserProvider.
func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// Create implements auth.UserProvider.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleUser,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toUserInfo(u), nil
}

// IncrementTokenVersion implements auth.UserProvider.
func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

// UpdatePassword implements auth.UserProvider.
func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetProfile(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	return &resp, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	return &resp, nil
}

func (s *Service) UpdateRole(
	ctx context.Context,
	userID, role string,
) (*UserResponse, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf("update role: %w", core.ErrInvalidInput)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.Role = role

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	resp := ToUserResponse(u)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.repo.SoftDelete(ctx, userID)
}

func (s *Service) List(
	ctx context.Context,
	params ListUsersParams,
) ([]UserResponse, int, error) {
	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	return ToUserResponseList(users), total, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
	}
}
