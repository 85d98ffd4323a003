package user

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "password", "first_name", "last_name", "role", "profile_picture", "created_at", "updated_at"}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()
	in := &User{Email: "sam@greencare.test", Password: "hashed", FirstName: "Sam", LastName: "Reed", Role: "farmer"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (email, password, first_name, last_name, role, profile_picture)")).
			WithArgs(in.Email, in.Password, in.FirstName, in.LastName, in.Role, nil).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(1, in.Email, in.Password, in.FirstName, in.LastName, in.Role, nil, now, now))

		u, err := repo.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, uint(1), u.ID)
		assert.Nil(t, u.ProfilePicture)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err := repo.Create(ctx, in)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("db down"))

		_, err := repo.Create(ctx, in)
		assert.EqualError(t, err, "db down")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Find(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("ByEmail", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
			WithArgs("sam@greencare.test").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(3, "sam@greencare.test", "hashed", "Sam", "Reed", "seller", "https://img/p.png", now, now))

		u, err := repo.FindByEmail(ctx, "sam@greencare.test")
		require.NoError(t, err)
		assert.Equal(t, uint(3), u.ID)
		require.NotNil(t, u.ProfilePicture)
		assert.Equal(t, "https://img/p.png", *u.ProfilePicture)
	})

	t.Run("ByEmailMissing", func(t *testing.T) {
		mock.ExpectQuery("FROM users WHERE email").
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := repo.FindByEmail(ctx, "nobody@greencare.test")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("ByIDMissing", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := repo.FindByID(ctx, 99)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
