package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var userCols = []string{"id", "name", "email", "is_admin", "created_at"}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).
			AddRow("user-1", "Alice", "alice@example.com", false, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("user-1").
			WillReturnRows(rows)

		u, err := repo.FindByID(ctx, "user-1")

		assert.NoError(t, err)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.True(t, u.HasEmail())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_ListAdmins(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("returns admins", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).
			AddRow("admin-1", "Root", "root@example.com", true, time.Now()).
			AddRow("admin-2", "Ops", "", true, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM users").
			WillReturnRows(rows)

		admins, err := repo.ListAdmins(ctx)

		assert.NoError(t, err)
		assert.Len(t, admins, 2)
		assert.False(t, admins[1].HasEmail())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty admin set", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users").
			WillReturnRows(sqlmock.NewRows(userCols))

		admins, err := repo.ListAdmins(ctx)

		assert.NoError(t, err)
		assert.Empty(t, admins)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
