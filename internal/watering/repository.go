package watering

import (
	"context"
	"database/sql"
	"errors"

	"greencare-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const foreignKeyViolation = "23503"

const selectRecords = `SELECT w.id, w.plant_id, p.name, w.watering_date, w.next_watering_date,
	w.amount_ml, w.notes, w.is_completed, w.created_at, w.updated_at
	FROM plant_waterings w JOIN plants p ON p.id = w.plant_id`

type Repository interface {
	List(ctx context.Context) ([]Record, error)
	ListByPlant(ctx context.Context, plantID uint) ([]Record, error)
	Get(ctx context.Context, id uint) (*Record, error)
	Create(ctx context.Context, rec *Record) (*Record, error)
	Update(ctx context.Context, rec *Record) (*Record, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Record, error) {
	return r.query(ctx, "List", selectRecords+" ORDER BY w.watering_date DESC, w.id DESC")
}

func (r *repository) ListByPlant(ctx context.Context, plantID uint) ([]Record, error) {
	return r.query(ctx, "ListByPlant",
		selectRecords+" WHERE w.plant_id = $1 ORDER BY w.watering_date DESC, w.id DESC", plantID)
}

func (r *repository) query(ctx context.Context, method, q string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list watering records",
			zap.String("layer", "repository"),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uint) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectRecords+" WHERE w.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return rec, err
}

func (r *repository) Create(ctx context.Context, rec *Record) (*Record, error) {
	var id uint
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO plant_waterings (plant_id, watering_date, next_watering_date, amount_ml, notes, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		rec.PlantID, rec.WateringDate, rec.NextWateringDate, rec.AmountML, rec.Notes, rec.IsCompleted,
	).Scan(&id)
	if err != nil {
		return nil, r.writeError(ctx, "Create", rec.PlantID, err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, rec *Record) (*Record, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plant_waterings SET plant_id = $1, watering_date = $2, next_watering_date = $3,
		amount_ml = $4, notes = $5, is_completed = $6, updated_at = NOW() WHERE id = $7`,
		rec.PlantID, rec.WateringDate, rec.NextWateringDate, rec.AmountML, rec.Notes, rec.IsCompleted, rec.ID,
	)
	if err != nil {
		return nil, r.writeError(ctx, "Update", rec.PlantID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrRecordNotFound
	}
	return r.Get(ctx, rec.ID)
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM plant_waterings WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *repository) writeError(ctx context.Context, method string, plantID uint, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return errPlantMissing(plantID)
	}
	logger.FromCtx(ctx).Error("db: failed to write watering record",
		zap.String("layer", "repository"),
		zap.String("method", method),
		zap.Uint("plant_id", plantID),
		zap.Error(err),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var next sql.NullTime
	var notes sql.NullString
	err := s.Scan(&rec.ID, &rec.PlantID, &rec.PlantName, &rec.WateringDate, &next,
		&rec.AmountML, &notes, &rec.IsCompleted, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if next.Valid {
		rec.NextWateringDate = &next.Time
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	return &rec, nil
}
