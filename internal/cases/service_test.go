// AngelaMos | 2026
// service_test.go

package cases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/casefile/internal/core"
	"github.com/angelamos/casefile/internal/tag"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[string]*Case
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Case)}
}

func (f *fakeRepo) Create(_ context.Context, c *Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.items[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, c *Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[c.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *c
	cp.UpdatedAt = time.Now().UTC()
	f.items[c.ID] = &cp
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

func (f *fakeRepo) List(
	_ context.Context,
	ownerID string,
	params ListCasesParams,
) ([]Case, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []Case
	for _, c := range f.items {
		if c.UserID != ownerID {
			continue
		}
		if params.Status != "" && c.Status != params.Status {
			continue
		}
		items = append(items, *c)
	}
	return items, len(items), nil
}

func (f *fakeRepo) AttachTag(context.Context, string, string, string) error {
	return nil
}

func (f *fakeRepo) DetachTag(context.Context, string, string, string) error {
	return nil
}

func (f *fakeRepo) ListTags(
	context.Context,
	string, string,
) ([]tag.Tag, error) {
	return nil, nil
}

var (
	owner    = Actor{UserID: "owner-1"}
	stranger = Actor{UserID: "someone-else"}
	admin    = Actor{UserID: "admin-1", IsAdmin: true}
)

func TestCreateDefaultsToOpen(t *testing.T) {
	svc := NewService(newFakeRepo())

	resp, err := svc.Create(context.Background(), owner, CreateCaseRequest{
		Title: "Kramer v. Kramer",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, resp.Status)
	assert.Nil(t, resp.ClosedOn)
}

func TestOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	created, err := svc.Create(ctx, owner, CreateCaseRequest{Title: "In re Test"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, created.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	err = svc.Delete(ctx, stranger, created.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	// admins can read and modify any case
	_, err = svc.Get(ctx, admin, created.ID)
	assert.NoError(t, err)
}

func TestCloseStampsClosedOn(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	created, err := svc.Create(ctx, owner, CreateCaseRequest{Title: "Doe v. Roe"})
	require.NoError(t, err)

	closed, err := svc.UpdateStatus(ctx, owner, created.ID, StatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedOn)
	assert.WithinDuration(t, time.Now(), *closed.ClosedOn, time.Minute)

	// reopening clears the close date
	reopened, err := svc.UpdateStatus(ctx, owner, created.ID, StatusOpen)
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedOn)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	created, err := svc.Create(ctx, owner, CreateCaseRequest{Title: "State v. Test"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, owner, created.ID, "dismissed")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestListScopedToOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	_, err := svc.Create(ctx, owner, CreateCaseRequest{Title: "Mine"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, stranger, CreateCaseRequest{Title: "Theirs"})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, owner, ListCasesParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Mine", items[0].Title)
}
