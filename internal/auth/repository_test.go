// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/casefile/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewRepository(db), mock
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WithArgs("tok-1", "hash-1", "user-1",
			sqlmock.AnyArg(), "agent", "203.0.113.7").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	token := &RefreshToken{
		ID:        "tok-1",
		TokenHash: "hash-1",
		UserID:    "user-1",
		ExpiresAt: now.Add(24 * time.Hour),
		UserAgent: "agent",
		IPAddress: "203.0.113.7",
	}
	require.NoError(t, repo.Create(context.Background(), token))
	assert.Equal(t, now, token.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryFindByHashNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens")).
		WithArgs("missing-hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByHash(context.Background(), "missing-hash")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRevokeByHash(t *testing.T) {
	t.Run("active token is revoked", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WithArgs("hash-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		revoked, err := repo.RevokeByHash(context.Background(), "hash-1")
		require.NoError(t, err)
		assert.True(t, revoked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already revoked is a no-op", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WithArgs("hash-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		revoked, err := repo.RevokeByHash(context.Background(), "hash-1")
		require.NoError(t, err)
		assert.False(t, revoked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepositoryRevokeAllForUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.RevokeAllForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteExpired(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(0, 7))

	count, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryRotate(t *testing.T) {
	t.Run("revoke and insert commit together", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		now := time.Now().UTC()
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WithArgs("old-hash").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
			WithArgs("tok-2", "new-hash", "user-1",
				sqlmock.AnyArg(), "agent", "203.0.113.7").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
		mock.ExpectCommit()

		err := repo.Rotate(context.Background(), "old-hash", &RefreshToken{
			ID:        "tok-2",
			TokenHash: "new-hash",
			UserID:    "user-1",
			ExpiresAt: now.Add(24 * time.Hour),
			UserAgent: "agent",
			IPAddress: "203.0.113.7",
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back the revocation", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens")).
			WithArgs("old-hash").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
			WillReturnError(errDuplicateInsert)
		mock.ExpectRollback()

		err := repo.Rotate(context.Background(), "old-hash", &RefreshToken{
			ID:        "tok-2",
			TokenHash: "new-hash",
			UserID:    "user-1",
		})
		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

var errDuplicateInsert = errors.New("duplicate key value violates unique constraint")
