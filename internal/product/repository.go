package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"greencare-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const productSelect = `SELECT p.id, p.name, p.description, p.price, p.category, p.stock, p.image,
	p.owner_id, u.first_name, u.last_name, u.email, p.created_at, p.updated_at
	FROM products p LEFT JOIN users u ON u.id = p.owner_id`

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
	Create(ctx context.Context, p *Product, gallery []string) (*Product, error)
	Update(ctx context.Context, p *Product, gallery []string) (*Product, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, f Filter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("p.category = $%d", len(args)))
	}
	if f.OwnerID != nil {
		args = append(args, *f.OwnerID)
		where = append(where, fmt.Sprintf("p.owner_id = $%d", len(args)))
	}

	query := productSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list products",
			zap.String("layer", "repository"),
			zap.String("method", "List"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) Get(ctx context.Context, id uint) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	products := []Product{*p}
	if err := r.attachImages(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// Create inserts the product and its gallery in one transaction.
func (r *repository) Create(ctx context.Context, p *Product, gallery []string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	var id uint
	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, category, stock, image, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		p.Name, p.Description, p.Price, p.Category, p.Stock, p.Image, p.OwnerID,
	).Scan(&id)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return nil, err
	}

	if err := insertImages(ctx, tx, id, gallery); err != nil {
		log.Error("failed to insert product images", zap.Uint("product_id", id), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit product", zap.Error(err))
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update rewrites the product row. A nil gallery keeps the stored images,
// otherwise they are replaced in order.
func (r *repository) Update(ctx context.Context, p *Product, gallery []string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.Uint("product_id", p.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, stock = $5, image = $6, updated_at = NOW()
		WHERE id = $7`,
		p.Name, p.Description, p.Price, p.Category, p.Stock, p.Image, p.ID,
	)
	if err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrProductNotFound
	}

	if gallery != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = $1", p.ID); err != nil {
			log.Error("failed to clear product images", zap.Error(err))
			return nil, err
		}
		if err := insertImages(ctx, tx, p.ID, gallery); err != nil {
			log.Error("failed to insert product images", zap.Error(err))
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit product", zap.Error(err))
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to delete product",
			zap.String("layer", "repository"),
			zap.String("method", "Delete"),
			zap.Uint("product_id", id),
			zap.Error(err),
		)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func insertImages(ctx context.Context, tx *sql.Tx, productID uint, gallery []string) error {
	for i, url := range gallery {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO product_images (product_id, image_url, position) VALUES ($1, $2, $3)",
			productID, url, i,
		); err != nil {
			return err
		}
	}
	return nil
}

// attachImages loads the galleries of products with a single query.
func (r *repository) attachImages(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(products))
	index := make(map[uint]int, len(products))
	for i := range products {
		ids = append(ids, int64(products[i].ID))
		index[products[i].ID] = i
		products[i].Images = []Image{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, image_url, public_id, position, created_at
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY position, created_at`,
		pq.Array(ids),
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to load product images",
			zap.String("layer", "repository"),
			zap.String("method", "attachImages"),
			zap.Error(err),
		)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			img       Image
			productID uint
			publicID  sql.NullString
		)
		if err := rows.Scan(&img.ID, &productID, &img.ImageURL, &publicID, &img.Order, &img.CreatedAt); err != nil {
			return err
		}
		if publicID.Valid {
			img.PublicID = &publicID.String
		}
		if i, ok := index[productID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*Product, error) {
	var (
		p                         Product
		image                     sql.NullString
		ownerID                   sql.NullInt64
		firstName, lastName, mail sql.NullString
	)
	err := s.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock, &image,
		&ownerID, &firstName, &lastName, &mail, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		p.Image = &image.String
	}
	if ownerID.Valid {
		id := uint(ownerID.Int64)
		p.OwnerID = &id
		p.Owner = &Owner{FirstName: firstName.String, LastName: lastName.String, Email: mail.String}
	}
	return &p, nil
}
