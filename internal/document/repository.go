// AngelaMos | 2026
// repository.go

package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/angelamos/casefile/internal/core"
	"github.com/angelamos/casefile/internal/tag"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string, params ListDocumentsParams) ([]Document, int, error)
	CaseOwnedBy(ctx context.Context, caseID, ownerID string) (bool, error)

	tag.Taggable
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *Document) error {
	query := `
		INSERT INTO documents
			(id, user_id, case_id, file_name, content_type, size_bytes,
			 storage_key, sha256, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, d, query,
		d.ID,
		d.UserID,
		d.CaseID,
		d.FileName,
		d.ContentType,
		d.SizeBytes,
		d.StorageKey,
		d.SHA256,
		d.Status,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Document, error) {
	query := `
		SELECT id, user_id, case_id, file_name, content_type, size_bytes,
		       storage_key, sha256, status, created_at, updated_at
		FROM documents
		WHERE id = $1`

	var d Document
	err := r.db.GetContext(ctx, &d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &d, nil
}

func (r *repository) Update(ctx context.Context, d *Document) error {
	query := `
		UPDATE documents
		SET file_name = $2, size_bytes = $3, sha256 = $4, status = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &d.UpdatedAt, query,
		d.ID,
		d.FileName,
		d.SizeBytes,
		d.SHA256,
		d.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update document: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete document: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	ownerID string,
	params ListDocumentsParams,
) ([]Document, int, error) {
	params.Normalize()

	conditions := []string{"user_id = $1"}
	args := []any{ownerID}
	argIdx := 2

	if params.CaseID != "" {
		conditions = append(conditions, fmt.Sprintf("case_id = $%d", argIdx))
		args = append(args, params.CaseID)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("file_name ILIKE $%d", argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM documents WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, case_id, file_name, content_type, size_bytes,
		       storage_key, sha256, status, created_at, updated_at
		FROM documents
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var items []Document
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	return items, total, nil
}

func (r *repository) CaseOwnedBy(
	ctx context.Context,
	caseID, ownerID string,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM cases WHERE id = $1 AND user_id = $2
		)`

	var owned bool
	if err := r.db.GetContext(ctx, &owned, query, caseID, ownerID); err != nil {
		return false, fmt.Errorf("check case owner: %w", err)
	}

	return owned, nil
}

// AttachTag implements tag.Taggable.
func (r *repository) AttachTag(
	ctx context.Context,
	ownerID, entityID, tagID string,
) error {
	query := `
		INSERT INTO document_tags (document_id, tag_id)
		SELECT d.id, t.id
		FROM documents d, tags t
		WHERE d.id = $1 AND d.user_id = $3
		  AND t.id = $2 AND t.user_id = $3
		ON CONFLICT DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, entityID, tagID, ownerID)
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}

	if rows == 0 {
		if r.linkExists(ctx, entityID, tagID, ownerID) {
			return nil
		}
		return fmt.Errorf("attach tag: %w", core.ErrNotFound)
	}

	return nil
}

// DetachTag implements tag.Taggable.
func (r *repository) DetachTag(
	ctx context.Context,
	ownerID, entityID, tagID string,
) error {
	query := `
		DELETE FROM document_tags dt
		USING documents d
		WHERE dt.document_id = d.id
		  AND dt.document_id = $1 AND dt.tag_id = $2 AND d.user_id = $3`

	result, err := r.db.ExecContext(ctx, query, entityID, tagID, ownerID)
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("detach tag: %w", core.ErrNotFound)
	}

	return nil
}

// ListTags implements tag.Taggable.
func (r *repository) ListTags(
	ctx context.Context,
	ownerID, entityID string,
) ([]tag.Tag, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.created_at
		FROM tags t
		JOIN document_tags dt ON dt.tag_id = t.id
		JOIN documents d ON d.id = dt.document_id
		WHERE dt.document_id = $1 AND d.user_id = $2
		ORDER BY t.name`

	var tags []tag.Tag
	if err := r.db.SelectContext(ctx, &tags, query, entityID, ownerID); err != nil {
		return nil, fmt.Errorf("list document tags: %w", err)
	}

	return tags, nil
}

func (r *repository) linkExists(
	ctx context.Context,
	entityID, tagID, ownerID string,
) bool {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM document_tags dt
			JOIN documents d ON d.id = dt.document_id
			WHERE dt.document_id = $1 AND dt.tag_id = $2 AND d.user_id = $3
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entityID, tagID, ownerID); err != nil {
		return false
	}
	return exists
}
