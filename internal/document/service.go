// AngelaMos | 2026
// service.go

package document

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/angelamos/casefile/internal/core"
)

type Service struct {
	repo    Repository
	storage ObjectStorage
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	storage ObjectStorage,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, storage: storage, logger: logger}
}

type Actor struct {
	UserID  string
	IsAdmin bool
}

func (a Actor) mayAccess(d *Document) bool {
	return a.IsAdmin || d.UserID == a.UserID
}

// CreateUpload registers a pending document and returns a presigned PUT
// URL. The record stays pending until ConfirmUpload.
func (s *Service) CreateUpload(
	ctx context.Context,
	actor Actor,
	req CreateDocumentRequest,
) (*UploadResponse, error) {
	owned, err := s.repo.CaseOwnedBy(ctx, req.CaseID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, fmt.Errorf("case reference: %w", core.ErrNotFound)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	d := &Document{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		CaseID:      req.CaseID,
		FileName:    req.FileName,
		ContentType: contentType,
		SizeBytes:   req.SizeBytes,
		StorageKey:  newStorageKey(actor.UserID),
		Status:      StatusPending,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	uploadURL, err := s.storage.PresignPut(ctx, d.StorageKey, d.ContentType)
	if err != nil {
		return nil, err
	}

	return &UploadResponse{
		Document:  ToDocumentResponse(d),
		UploadURL: uploadURL,
	}, nil
}

// ConfirmUpload flips a pending document to stored once the client has
// finished the PUT.
func (s *Service) ConfirmUpload(
	ctx context.Context,
	actor Actor,
	id string,
	req ConfirmUploadRequest,
) (*DocumentResponse, error) {
	d, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.SizeBytes > 0 {
		d.SizeBytes = req.SizeBytes
	}
	if req.SHA256 != "" {
		d.SHA256 = req.SHA256
	}
	d.Status = StatusStored

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(d)
	return &resp, nil
}

func (s *Service) Get(
	ctx context.Context,
	actor Actor,
	id string,
) (*DocumentResponse, error) {
	d, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(d)
	return &resp, nil
}

// Download returns a presigned GET URL. Only stored documents can be
// downloaded.
func (s *Service) Download(
	ctx context.Context,
	actor Actor,
	id string,
) (*DownloadResponse, error) {
	d, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !d.IsStored() {
		return nil, fmt.Errorf("document not uploaded: %w", core.ErrInvalidInput)
	}

	url, err := s.storage.PresignGet(ctx, d.StorageKey, d.FileName)
	if err != nil {
		return nil, err
	}

	return &DownloadResponse{DownloadURL: url}, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor Actor,
	id string,
	req UpdateDocumentRequest,
) (*DocumentResponse, error) {
	d, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.FileName != nil {
		d.FileName = *req.FileName
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	resp := ToDocumentResponse(d)
	return &resp, nil
}

// Delete removes the record and then the object. A failed object delete
// is logged, not surfaced, so orphans can be reaped out of band.
func (s *Service) Delete(ctx context.Context, actor Actor, id string) error {
	d, err := s.fetchOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, d.StorageKey); err != nil {
		s.logger.Warn("orphaned storage object",
			"key", d.StorageKey,
			"error", err,
		)
	}

	return nil
}

func (s *Service) List(
	ctx context.Context,
	actor Actor,
	params ListDocumentsParams,
) ([]DocumentResponse, int, error) {
	if params.Status != "" &&
		params.Status != StatusPending && params.Status != StatusStored {
		return nil, 0, fmt.Errorf("list documents: %w", core.ErrInvalidInput)
	}

	items, total, err := s.repo.List(ctx, actor.UserID, params)
	if err != nil {
		return nil, 0, err
	}

	return ToDocumentResponseList(items), total, nil
}

func (s *Service) fetchOwned(
	ctx context.Context,
	actor Actor,
	id string,
) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.mayAccess(d) {
		return nil, fmt.Errorf("document access: %w", core.ErrForbidden)
	}

	return d, nil
}
