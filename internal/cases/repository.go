// AngelaMos | 2026
// repository.go

package cases

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
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id string) (*Case, error)
	Update(ctx context.Context, c *Case) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string, params ListCasesParams) ([]Case, int, error)

	tag.Taggable
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Case) error {
	query := `
		INSERT INTO cases
			(id, user_id, title, case_number, court, status, description, opened_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID,
		c.UserID,
		c.Title,
		c.CaseNumber,
		c.Court,
		c.Status,
		c.Description,
		c.OpenedOn,
	)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Case, error) {
	query := `
		SELECT id, user_id, title, case_number, court, status, description,
		       opened_on, closed_on, created_at, updated_at
		FROM cases
		WHERE id = $1`

	var c Case
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get case: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}

	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Case) error {
	query := `
		UPDATE cases
		SET title = $2, case_number = $3, court = $4, status = $5,
		    description = $6, opened_on = $7, closed_on = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.Title,
		c.CaseNumber,
		c.Court,
		c.Status,
		c.Description,
		c.OpenedOn,
		c.ClosedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update case: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete case: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	ownerID string,
	params ListCasesParams,
) ([]Case, int, error) {
	params.Normalize()

	conditions := []string{"user_id = $1"}
	args := []any{ownerID}
	argIdx := 2

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR case_number ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM cases WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count cases: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, title, case_number, court, status, description,
		       opened_on, closed_on, created_at, updated_at
		FROM cases
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var items []Case
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list cases: %w", err)
	}

	return items, total, nil
}

// AttachTag implements tag.Taggable. The subselect enforces that both
// the case and the tag belong to the owner.
func (r *repository) AttachTag(
	ctx context.Context,
	ownerID, entityID, tagID string,
) error {
	query := `
		INSERT INTO case_tags (case_id, tag_id)
		SELECT c.id, t.id
		FROM cases c, tags t
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
		DELETE FROM case_tags ct
		USING cases c
		WHERE ct.case_id = c.id
		  AND ct.case_id = $1 AND ct.tag_id = $2 AND c.user_id = $3`

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
		JOIN case_tags ct ON ct.tag_id = t.id
		JOIN cases c ON c.id = ct.case_id
		WHERE ct.case_id = $1 AND c.user_id = $2
		ORDER BY t.name`

	var tags []tag.Tag
	if err := r.db.SelectContext(ctx, &tags, query, entityID, ownerID); err != nil {
		return nil, fmt.Errorf("list case tags: %w", err)
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
			FROM case_tags ct
			JOIN cases c ON c.id = ct.case_id
			WHERE ct.case_id = $1 AND ct.tag_id = $2 AND c.user_id = $3
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entityID, tagID, ownerID); err != nil {
		return false
	}
	return exists
}
