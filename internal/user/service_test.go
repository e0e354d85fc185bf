// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/casefile/internal/core"
)

type fakeRepo struct {
	items map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*User)}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	for _, existing := range f.items {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	f.items[u.ID] = u
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.items[id]
	if !ok || u.DeletedAt != nil {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.items {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, u *User) error {
	if _, ok := f.items[u.ID]; !ok {
		return core.ErrNotFound
	}
	f.items[u.ID] = u
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := f.items[id]
	if !ok {
		return core.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	u, ok := f.items[id]
	if !ok {
		return core.ErrNotFound
	}
	u.TokenVersion++
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) error {
	u, ok := f.items[id]
	if !ok {
		return core.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (f *fakeRepo) List(
	_ context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	var out []User
	for _, u := range f.items {
		if u.DeletedAt != nil {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "a@example.com", "hash", "Alice")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "a@example.com", "hash", "Imposter")
	require.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestUpdateRoleValidatesValue(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	info, err := svc.Create(ctx, "a@example.com", "hash", "Alice")
	require.NoError(t, err)

	_, err = svc.UpdateRole(ctx, info.ID, "superuser")
	require.ErrorIs(t, err, core.ErrInvalidInput)

	resp, err := svc.UpdateRole(ctx, info.ID, RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, resp.Role)
}

func TestSoftDeleteHidesUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	info, err := svc.Create(ctx, "a@example.com", "hash", "Alice")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, info.ID))

	_, err = svc.GetProfile(ctx, info.ID)
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.GetByEmail(ctx, "a@example.com")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateProfileChangesName(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	info, err := svc.Create(ctx, "a@example.com", "hash", "Alice")
	require.NoError(t, err)

	name := "Alice Q."
	resp, err := svc.UpdateProfile(ctx, info.ID, UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Alice Q.", resp.Name)
}
