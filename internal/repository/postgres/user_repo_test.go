package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"calmerge/internal/domain"
)

var userCols = []string{"id", "email", "password_hash", "salt", "name", "last_name", "created_at", "updated_at"}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice@example.com", "hash", "salt", "Alice", "Liddell", now, now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-uuid-1"))
			},
		},
		{
			name: "unique violation returns ErrDuplicateEmail",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateEmail,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			u := domain.NewUser("alice@example.com", "hash", "salt", "Alice", "Liddell", now, now)
			err = repo.Create(ctx, u)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, "user-uuid-1", u.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, email, password_hash, salt, name, last_name, created_at, updated_at\s+FROM users`).
			WithArgs("user-uuid-1").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("user-uuid-1", "alice@example.com", "hash", "salt", "Alice", "Liddell", now, now))

		u, err := NewUserRepository(db).GetByID(ctx, "user-uuid-1")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", u.Email)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, email`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err = NewUserRepository(db).GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_ListByIDs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	t.Run("returns matching users", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE id = ANY`).
			WithArgs(pq.Array([]string{"u1", "u2"})).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u1", "a@example.com", "h", "s", "A", "", now, now).
				AddRow("u2", "b@example.com", "h", "s", "B", "", now, now))

		users, err := NewUserRepository(db).ListByIDs(ctx, []string{"u1", "u2"})
		require.NoError(t, err)
		require.Len(t, users, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input skips query", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		users, err := NewUserRepository(db).ListByIDs(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, users)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
