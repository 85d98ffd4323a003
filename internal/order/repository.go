package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"greencare-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const orderSelect = `SELECT o.id, o.product_id, p.name, p.image, o.buyer_id, b.email, o.seller_id, s.email,
	o.quantity, o.total_price, o.status, o.shipping_address, o.notes, o.created_at, o.updated_at
	FROM orders o
	JOIN products p ON p.id = o.product_id
	JOIN users b ON b.id = o.buyer_id
	LEFT JOIN users s ON s.id = o.seller_id`

type Repository interface {
	List(ctx context.Context, f Filter) ([]Order, error)
	Get(ctx context.Context, id uint) (*Order, error)
	CreateTx(ctx context.Context, p Placement) (*Order, error)
	CancelTx(ctx context.Context, id uint) (*Order, error)
	Update(ctx context.Context, o *Order) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, f Filter) ([]Order, error) {
	var (
		where []string
		args  []any
	)
	if f.Participant != nil {
		args = append(args, *f.Participant)
		where = append(where, fmt.Sprintf("(o.buyer_id = $%d OR o.seller_id = $%d)", len(args), len(args)))
	}
	if f.BuyerID != nil {
		args = append(args, *f.BuyerID)
		where = append(where, fmt.Sprintf("o.buyer_id = $%d", len(args)))
	}
	if f.SellerID != nil {
		args = append(args, *f.SellerID)
		where = append(where, fmt.Sprintf("o.seller_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}

	query := orderSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list orders",
			zap.String("layer", "repository"),
			zap.String("method", "List"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uint) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+" WHERE o.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// CreateTx locks the product row, takes the quantity out of stock and
// records the order in one transaction. The seller is the product owner at
// this moment and the total is fixed at unit price times quantity.
func (r *repository) CreateTx(ctx context.Context, p Placement) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateTx"),
		zap.Uint("product_id", p.ProductID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	var (
		ownerID sql.NullInt64
		price   decimal.Decimal
		stock   int
	)
	err = tx.QueryRowContext(ctx,
		"SELECT owner_id, price, stock FROM products WHERE id = $1 FOR UPDATE", p.ProductID,
	).Scan(&ownerID, &price, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errProductMissing(p.ProductID)
	}
	if err != nil {
		log.Error("failed to lock product", zap.Error(err))
		return nil, err
	}

	if ownerID.Valid && uint(ownerID.Int64) == p.BuyerID {
		return nil, errOwnProduct()
	}
	if p.Quantity > stock {
		return nil, errInsufficientStock(stock)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2 AND stock >= $1",
		p.Quantity, p.ProductID,
	)
	if err != nil {
		log.Error("failed to decrement stock", zap.Error(err))
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errInsufficientStock(stock)
	}

	var seller *uint
	if ownerID.Valid {
		id := uint(ownerID.Int64)
		seller = &id
	}
	total := price.Mul(decimal.NewFromInt(int64(p.Quantity)))

	var id uint
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (product_id, buyer_id, seller_id, quantity, total_price, status, shipping_address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.ProductID, p.BuyerID, seller, p.Quantity, total, StatusPending, p.ShippingAddress, p.Notes,
	).Scan(&id)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order", zap.Error(err))
		return nil, err
	}

	log.Info("order placed",
		zap.Uint("order_id", id),
		zap.Uint("buyer_id", p.BuyerID),
		zap.Int("quantity", p.Quantity),
	)
	return r.Get(ctx, id)
}

// CancelTx marks a pending or processing order cancelled and puts its
// quantity back into the product stock.
func (r *repository) CancelTx(ctx context.Context, id uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CancelTx"),
		zap.Uint("order_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	var (
		productID uint
		quantity  int
		status    Status
	)
	err = tx.QueryRowContext(ctx,
		"SELECT product_id, quantity, status FROM orders WHERE id = $1 FOR UPDATE", id,
	).Scan(&productID, &quantity, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order", zap.Error(err))
		return nil, err
	}

	if !status.Cancellable() {
		return nil, errCannotCancel(status)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2", StatusCancelled, id,
	); err != nil {
		log.Error("failed to cancel order", zap.Error(err))
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2", quantity, productID,
	); err != nil {
		log.Error("failed to restore stock", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit cancellation", zap.Error(err))
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, o *Order) (*Order, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, shipping_address = $2, notes = $3, updated_at = NOW() WHERE id = $4",
		o.Status, o.ShippingAddress, o.Notes, o.ID,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to update order",
			zap.String("layer", "repository"),
			zap.String("method", "Update"),
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrOrderNotFound
	}
	return r.Get(ctx, o.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*Order, error) {
	var (
		o           Order
		image       sql.NullString
		sellerID    sql.NullInt64
		sellerEmail sql.NullString
	)
	err := s.Scan(
		&o.ID, &o.ProductID, &o.ProductName, &image, &o.BuyerID, &o.BuyerEmail, &sellerID, &sellerEmail,
		&o.Quantity, &o.TotalPrice, &o.Status, &o.ShippingAddress, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		o.ProductImage = &image.String
	}
	if sellerID.Valid {
		id := uint(sellerID.Int64)
		o.SellerID = &id
	}
	if sellerEmail.Valid {
		o.SellerEmail = &sellerEmail.String
	}
	return &o, nil
}
