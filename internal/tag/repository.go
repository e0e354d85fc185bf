// AngelaMos | 2026
// repository.go

package tag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/casefile/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Tag) error
	GetByID(ctx context.Context, id string) (*Tag, error)
	Rename(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID string) ([]Tag, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *Tag) error {
	query := `
		INSERT INTO tags (id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &t.CreatedAt, query, t.ID, t.UserID, t.Name)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create tag: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create tag: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tag, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM tags
		WHERE id = $1`

	var t Tag
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tag: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}

	return &t, nil
}

func (r *repository) Rename(ctx context.Context, t *Tag) error {
	query := `
		UPDATE tags
		SET name = $2
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, t.ID, t.Name)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("rename tag: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("rename tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename tag: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("rename tag: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete tag: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]Tag, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM tags
		WHERE user_id = $1
		ORDER BY name`

	var tags []Tag
	if err := r.db.SelectContext(ctx, &tags, query, userID); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return tags, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
