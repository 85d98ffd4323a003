package plant

import (
	"context"
	"database/sql"
	"errors"

	"greencare-be/internal/logger"

	"go.uber.org/zap"
)

const plantColumns = "id, name, species, age, height, width, description, image"

type Repository interface {
	List(ctx context.Context) ([]Plant, error)
	Get(ctx context.Context, id uint) (*Plant, error)
	Create(ctx context.Context, p *Plant) (*Plant, error)
	Update(ctx context.Context, p *Plant) (*Plant, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Plant, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+plantColumns+" FROM plants ORDER BY id")
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list plants",
			zap.String("layer", "repository"),
			zap.String("method", "List"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	plants := []Plant{}
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, err
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uint) (*Plant, error) {
	p, err := scanPlant(r.db.QueryRowContext(ctx, "SELECT "+plantColumns+" FROM plants WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlantNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p *Plant) (*Plant, error) {
	created, err := scanPlant(r.db.QueryRowContext(ctx,
		`INSERT INTO plants (name, species, age, height, width, description, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+plantColumns,
		p.Name, p.Species, p.Age, p.Height, p.Width, p.Description, p.Image,
	))
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert plant",
			zap.String("layer", "repository"),
			zap.String("method", "Create"),
			zap.Error(err),
		)
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, p *Plant) (*Plant, error) {
	updated, err := scanPlant(r.db.QueryRowContext(ctx,
		`UPDATE plants SET name = $1, species = $2, age = $3, height = $4, width = $5,
		description = $6, image = $7 WHERE id = $8 RETURNING `+plantColumns,
		p.Name, p.Species, p.Age, p.Height, p.Width, p.Description, p.Image, p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlantNotFound
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM plants WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlantNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlant(s scanner) (*Plant, error) {
	var p Plant
	var image sql.NullString
	if err := s.Scan(&p.ID, &p.Name, &p.Species, &p.Age, &p.Height, &p.Width, &p.Description, &image); err != nil {
		return nil, err
	}
	if image.Valid {
		p.Image = &image.String
	}
	return &p, nil
}
