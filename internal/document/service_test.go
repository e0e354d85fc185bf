// AngelaMos | 2026
// service_test.go

package document

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
	items map[string]*Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Document)}
}

func (f *fakeRepo) Create(_ context.Context, d *Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	f.items[cp.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, d *Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[d.ID]; !ok {
		return core.ErrNotFound
	}
	cp := *d
	f.items[d.ID] = &cp
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
	_ ListDocumentsParams,
) ([]Document, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []Document
	for _, d := range f.items {
		if d.UserID == ownerID {
			items = append(items, *d)
		}
	}
	return items, len(items), nil
}

func (f *fakeRepo) CaseOwnedBy(
	_ context.Context,
	caseID, ownerID string,
) (bool, error) {
	return caseID == "case-1" && ownerID == "owner-1", nil
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

type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeStorage) PresignPut(
	_ context.Context,
	key, _ string,
) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (f *fakeStorage) PresignGet(
	_ context.Context,
	key, _ string,
) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

var docOwner = Actor{UserID: "owner-1"}

func newTestService() (*Service, *fakeRepo, *fakeStorage) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	return NewService(repo, storage, nil), repo, storage
}

func TestCreateUploadIsPending(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.CreateUpload(context.Background(), docOwner,
		CreateDocumentRequest{
			CaseID:   "case-1",
			FileName: "complaint.pdf",
		})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, resp.Document.Status)
	assert.Contains(t, resp.UploadURL, "https://storage.test/put/")
	assert.Equal(t, "application/octet-stream", resp.Document.ContentType)
}

func TestCreateUploadRejectsForeignCase(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateUpload(context.Background(), docOwner,
		CreateDocumentRequest{
			CaseID:   "not-yours",
			FileName: "exhibit-a.pdf",
		})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestConfirmUploadFlipsToStored(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	created, err := svc.CreateUpload(ctx, docOwner, CreateDocumentRequest{
		CaseID:   "case-1",
		FileName: "deposition.pdf",
	})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmUpload(ctx, docOwner, created.Document.ID,
		ConfirmUploadRequest{
			SizeBytes: 2048,
			SHA256:    "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		})
	require.NoError(t, err)
	assert.Equal(t, StatusStored, confirmed.Status)
	assert.Equal(t, int64(2048), confirmed.SizeBytes)
}

func TestDownloadRequiresStored(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	created, err := svc.CreateUpload(ctx, docOwner, CreateDocumentRequest{
		CaseID:   "case-1",
		FileName: "motion.pdf",
	})
	require.NoError(t, err)

	_, err = svc.Download(ctx, docOwner, created.Document.ID)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.ConfirmUpload(ctx, docOwner, created.Document.ID,
		ConfirmUploadRequest{})
	require.NoError(t, err)

	dl, err := svc.Download(ctx, docOwner, created.Document.ID)
	require.NoError(t, err)
	assert.Contains(t, dl.DownloadURL, "https://storage.test/get/")
}

func TestDeleteRemovesObject(t *testing.T) {
	ctx := context.Background()
	svc, repo, storage := newTestService()

	created, err := svc.CreateUpload(ctx, docOwner, CreateDocumentRequest{
		CaseID:   "case-1",
		FileName: "brief.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, docOwner, created.Document.ID))

	_, err = repo.GetByID(ctx, created.Document.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.Len(t, storage.deleted, 1)
}

func TestDocumentOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	created, err := svc.CreateUpload(ctx, docOwner, CreateDocumentRequest{
		CaseID:   "case-1",
		FileName: "retainer.pdf",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, Actor{UserID: "intruder"}, created.Document.ID)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.Get(ctx, Actor{UserID: "root", IsAdmin: true}, created.Document.ID)
	assert.NoError(t, err)
}
