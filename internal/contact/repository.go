// AngelaMos | 2026
// repository.go

package contact

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
	Create(ctx context.Context, c *Contact) error
	GetByID(ctx context.Context, id string) (*Contact, error)
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string, params ListContactsParams) ([]Contact, int, error)
	CaseOwnedBy(ctx context.Context, caseID, ownerID string) (bool, error)

	tag.Taggable
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Contact) error {
	query := `
		INSERT INTO contacts
			(id, user_id, case_id, name, role, email, phone, organization, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID,
		c.UserID,
		c.CaseID,
		c.Name,
		c.Role,
		c.Email,
		c.Phone,
		c.Organization,
		c.Notes,
	)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Contact, error) {
	query := `
		SELECT id, user_id, case_id, name, role, email, phone,
		       organization, notes, created_at, updated_at
		FROM contacts
		WHERE id = $1`

	var c Contact
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get contact: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}

	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Contact) error {
	query := `
		UPDATE contacts
		SET case_id = $2, name = $3, role = $4, email = $5, phone = $6,
		    organization = $7, notes = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.CaseID,
		c.Name,
		c.Role,
		c.Email,
		c.Phone,
		c.Organization,
		c.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update contact: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete contact: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	ownerID string,
	params ListContactsParams,
) ([]Contact, int, error) {
	params.Normalize()

	conditions := []string{"user_id = $1"}
	args := []any{ownerID}
	argIdx := 2

	switch {
	case params.CaseID != "":
		conditions = append(conditions, fmt.Sprintf("case_id = $%d", argIdx))
		args = append(args, params.CaseID)
		argIdx++
	case params.Unattached:
		conditions = append(conditions, "case_id IS NULL")
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR organization ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM contacts WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, case_id, name, role, email, phone,
		       organization, notes, created_at, updated_at
		FROM contacts
		WHERE %s
		ORDER BY name
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var items []Contact
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
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
		INSERT INTO contact_tags (contact_id, tag_id)
		SELECT c.id, t.id
		FROM contacts c, tags t
		WHERE c.id = $1 AND c.user_id = $3
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
		DELETE FROM contact_tags ct
		USING contacts c
		WHERE ct.contact_id = c.id
		  AND ct.contact_id = $1 AND ct.tag_id = $2 AND c.user_id = $3`

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
		JOIN contact_tags ct ON ct.tag_id = t.id
		JOIN contacts c ON c.id = ct.contact_id
		WHERE ct.contact_id = $1 AND c.user_id = $2
		ORDER BY t.name`

	var tags []tag.Tag
	if err := r.db.SelectContext(ctx, &tags, query, entityID, ownerID); err != nil {
		return nil, fmt.Errorf("list contact tags: %w", err)
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
			FROM contact_tags ct
			JOIN contacts c ON c.id = ct.contact_id
			WHERE ct.contact_id = $1 AND ct.tag_id = $2 AND c.user_id = $3
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entityID, tagID, ownerID); err != nil {
		return false
	}
	return exists
}
