package product

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productRowColumns = []string{
		"id", "name", "description", "price", "category", "stock", "image",
		"owner_id", "first_name", "last_name", "email", "created_at", "updated_at",
	}
	imageRowColumns = []string{"id", "product_id", "image_url", "public_id", "position", "created_at"}
)

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("FiltersAndImages", func(t *testing.T) {
		owner := uint(3)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.category = $1 AND p.owner_id = $2 ORDER BY p.created_at DESC")).
			WithArgs("tools", owner).
			WillReturnRows(sqlmock.NewRows(productRowColumns).
				AddRow(1, "Shears", "Sharp", "12.50", "tools", 4, "https://img/a.jpg", 3, "Sam", "Green", "sam@greencare.test", now, now).
				AddRow(2, "Trowel", "Small", "5.00", "tools", 0, nil, nil, nil, nil, nil, now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
			WillReturnRows(sqlmock.NewRows(imageRowColumns).
				AddRow(10, 1, "https://img/a.jpg", "pid-a", 0, now).
				AddRow(11, 1, "https://img/b.jpg", nil, 1, now))

		products, err := repo.List(context.Background(), Filter{Category: "tools", OwnerID: &owner})
		require.NoError(t, err)
		require.Len(t, products, 2)

		assert.True(t, decimal.RequireFromString("12.5").Equal(products[0].Price))
		assert.Equal(t, CategoryTools, products[0].Category)
		require.Len(t, products[0].Images, 2)
		assert.Equal(t, "pid-a", *products[0].Images[0].PublicID)
		assert.Nil(t, products[0].Images[1].PublicID)
		assert.Equal(t, "Sam", products[0].Owner.FirstName)

		assert.Nil(t, products[1].OwnerID)
		assert.Empty(t, products[1].Images)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptySkipsImages", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM products p LEFT JOIN users u ON u.id = p.owner_id ORDER BY")).
			WillReturnRows(sqlmock.NewRows(productRowColumns))

		products, err := repo.List(context.Background(), Filter{})
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Create(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	owner := uint(3)
	image := "https://img/a.jpg"
	p := &Product{
		Name: "Shears", Description: "Sharp", Price: decimal.RequireFromString("12.50"),
		Category: CategoryTools, Stock: 4, Image: &image, OwnerID: &owner,
	}

	t.Run("WritesGalleryInTransaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
			WithArgs("Shears", "Sharp", sqlmock.AnyArg(), "tools", 4, image, owner).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_images")).
			WithArgs(7, "https://img/a.jpg", 0).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_images")).
			WithArgs(7, "https://img/b.jpg", 1).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(productRowColumns).
				AddRow(7, "Shears", "Sharp", "12.50", "tools", 4, image, 3, "Sam", "Green", "sam@greencare.test", now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
			WillReturnRows(sqlmock.NewRows(imageRowColumns).
				AddRow(1, 7, "https://img/a.jpg", nil, 0, now).
				AddRow(2, 7, "https://img/b.jpg", nil, 1, now))

		created, err := NewRepository(db).Create(context.Background(), p, []string{"https://img/a.jpg", "https://img/b.jpg"})
		require.NoError(t, err)
		assert.Equal(t, uint(7), created.ID)
		assert.Len(t, created.Images, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ImageFailureRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_images")).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err = NewRepository(db).Create(context.Background(), p, []string{"https://img/a.jpg"})
		assert.EqualError(t, err, "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Update(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("KeepsGalleryWhenNil", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE products")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows(productRowColumns).
				AddRow(7, "Shears", "Sharp", "9.99", "tools", 4, nil, nil, nil, nil, nil, now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
			WillReturnRows(sqlmock.NewRows(imageRowColumns))

		updated, err := NewRepository(db).Update(context.Background(), &Product{ID: 7, Name: "Shears"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "9.99", updated.Price.StringFixed(2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ReplacesGallery", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE products")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM product_images WHERE product_id = $1")).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_images")).
			WithArgs(7, "https://img/c.jpg", 0).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectCommit()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
			WillReturnRows(sqlmock.NewRows(productRowColumns).
				AddRow(7, "Shears", "Sharp", "9.99", "tools", 4, "https://img/c.jpg", nil, nil, nil, nil, now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
			WillReturnRows(sqlmock.NewRows(imageRowColumns).AddRow(3, 7, "https://img/c.jpg", nil, 0, now))

		updated, err := NewRepository(db).Update(context.Background(), &Product{ID: 7}, []string{"https://img/c.jpg"})
		require.NoError(t, err)
		require.Len(t, updated.Images, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE products")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err = NewRepository(db).Update(context.Background(), &Product{ID: 99}, nil)
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(productRowColumns))
	_, err = repo.Get(context.Background(), 5)
	assert.ErrorIs(t, err, ErrProductNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), ErrProductNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), 6))
	assert.NoError(t, mock.ExpectationsWereMet())
}
