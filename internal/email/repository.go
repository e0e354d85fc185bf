// AngelaMos | 2026
// repository.go

package email

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/angelamos/casefile/internal/core"
)

type Repository interface {
	Upsert(ctx context.Context, c *Connection) error
	GetByID(ctx context.Context, id string) (*Connection, error)
	ListForUser(ctx context.Context, userID string) ([]Connection, error)
	UpdateTokens(ctx context.Context, c *Connection) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Upsert inserts a connection, or refreshes tokens and reactivates on
// conflict with an existing (user, provider, address) row.
func (r *repository) Upsert(ctx context.Context, c *Connection) error {
	query := `
		INSERT INTO email_connections
			(id, user_id, provider, email_address, access_token,
			 refresh_token, token_expires_at, scopes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, provider, email_address) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = CASE
				WHEN EXCLUDED.refresh_token <> ''
				THEN EXCLUDED.refresh_token
				ELSE email_connections.refresh_token
			END,
			token_expires_at = EXCLUDED.token_expires_at,
			scopes = EXCLUDED.scopes,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID,
		c.UserID,
		c.Provider,
		c.EmailAddress,
		c.AccessToken,
		c.RefreshToken,
		c.TokenExpiresAt,
		c.Scopes,
		c.Status,
	)
	if err != nil {
		return fmt.Errorf("upsert connection: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Connection, error) {
	query := `
		SELECT id, user_id, provider, email_address, access_token,
		       refresh_token, token_expires_at, scopes, status,
		       created_at, updated_at
		FROM email_connections
		WHERE id = $1`

	var c Connection
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get connection: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}

	return &c, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]Connection, error) {
	query := `
		SELECT id, user_id, provider, email_address, access_token,
		       refresh_token, token_expires_at, scopes, status,
		       created_at, updated_at
		FROM email_connections
		WHERE user_id = $1
		ORDER BY created_at DESC`

	var items []Connection
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	return items, nil
}

func (r *repository) UpdateTokens(ctx context.Context, c *Connection) error {
	query := `
		UPDATE email_connections
		SET access_token = $2, refresh_token = $3, token_expires_at = $4,
		    scopes = $5, status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.AccessToken,
		c.RefreshToken,
		c.TokenExpiresAt,
		c.Scopes,
		c.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update tokens: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update tokens: %w", err)
	}

	return nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id, status string,
) error {
	query := `
		UPDATE email_connections
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM email_connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete connection: %w", core.ErrNotFound)
	}

	return nil
}
