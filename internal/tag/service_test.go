// AngelaMos | 2026
// service_test.go

package tag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/casefile/internal/core"
)

type fakeRepo struct {
	items map[string]*Tag
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Tag)}
}

func (f *fakeRepo) Create(_ context.Context, t *Tag) error {
	for _, existing := range f.items {
		if existing.UserID == t.UserID && existing.Name == t.Name {
			return core.ErrDuplicateKey
		}
	}
	f.items[t.ID] = t
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Tag, error) {
	t, ok := f.items[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRepo) Rename(_ context.Context, t *Tag) error {
	if _, ok := f.items[t.ID]; !ok {
		return core.ErrNotFound
	}
	f.items[t.ID] = t
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) ListForUser(
	_ context.Context,
	userID string,
) ([]Tag, error) {
	var out []Tag
	for _, t := range f.items {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeTaggable struct {
	links map[string]map[string]bool // entityID -> tagID set
}

func newFakeTaggable() *fakeTaggable {
	return &fakeTaggable{links: make(map[string]map[string]bool)}
}

func (f *fakeTaggable) AttachTag(
	_ context.Context,
	_, entityID, tagID string,
) error {
	if f.links[entityID] == nil {
		f.links[entityID] = make(map[string]bool)
	}
	f.links[entityID][tagID] = true
	return nil
}

func (f *fakeTaggable) DetachTag(
	_ context.Context,
	_, entityID, tagID string,
) error {
	delete(f.links[entityID], tagID)
	return nil
}

func (f *fakeTaggable) ListTags(
	_ context.Context,
	_, entityID string,
) ([]Tag, error) {
	var out []Tag
	for tagID := range f.links[entityID] {
		out = append(out, Tag{ID: tagID})
	}
	return out, nil
}

func TestCreateTrimsAndRejectsBlank(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	created, err := svc.Create(context.Background(), "user-1", "  urgent  ")
	require.NoError(t, err)
	require.Equal(t, "urgent", created.Name)

	_, err = svc.Create(context.Background(), "user-1", "   ")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreateDuplicateNamePerUser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "user-1", "urgent")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "user-1", "urgent")
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	// Same name under a different user is fine.
	_, err = svc.Create(context.Background(), "user-2", "urgent")
	require.NoError(t, err)
}

func TestRenameEnforcesOwnership(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), "user-1", "urgent")
	require.NoError(t, err)

	_, err = svc.Rename(context.Background(), "user-2", created.ID, "stale")
	require.ErrorIs(t, err, core.ErrForbidden)

	renamed, err := svc.Rename(context.Background(), "user-1", created.ID, "stale")
	require.NoError(t, err)
	require.Equal(t, "stale", renamed.Name)
}

func TestAttachDetachRoutesToTaggable(t *testing.T) {
	caseLinks := newFakeTaggable()
	svc := NewService(newFakeRepo(), map[string]Taggable{
		"cases": caseLinks,
	})

	ctx := context.Background()
	require.NoError(t,
		svc.Attach(ctx, "user-1", "cases", "case-1", "tag-1"))

	tags, err := svc.TagsFor(ctx, "user-1", "cases", "case-1")
	require.NoError(t, err)
	require.Len(t, tags, 1)

	require.NoError(t,
		svc.Detach(ctx, "user-1", "cases", "case-1", "tag-1"))

	tags, err = svc.TagsFor(ctx, "user-1", "cases", "case-1")
	require.NoError(t, err)
	require.Empty(t, tags)
}

func TestUnknownTaggableKind(t *testing.T) {
	svc := NewService(newFakeRepo(), map[string]Taggable{})

	err := svc.Attach(context.Background(), "user-1", "widgets", "w-1", "tag-1")
	require.ErrorIs(t, err, core.ErrInvalidInput)
}
