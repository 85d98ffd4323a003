package predict

import (
	"context"
	"database/sql"
	"errors"

	"greencare-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const detectionColumns = "id, user_id, image_url, status, disease, confidence, recommendations, groq_raw_response, created_at"

type Repository interface {
	Create(ctx context.Context, d *Detection) (*Detection, error)
	ListByUser(ctx context.Context, userID uint) ([]Detection, error)
	GetForUser(ctx context.Context, id, userID uint) (*Detection, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *Detection) (*Detection, error) {
	created, err := scanDetection(r.db.QueryRowContext(ctx, `
		INSERT INTO detection_results (user_id, image_url, status, disease, confidence, recommendations, groq_raw_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+detectionColumns,
		d.UserID, d.ImageURL, d.Status, d.Disease, d.Confidence, d.Recommendations, d.RawResponse,
	))
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert detection",
			zap.String("layer", "repository"),
			zap.String("method", "Create"),
			zap.Uint("user_id", d.UserID),
			zap.Error(err),
		)
		return nil, err
	}
	return created, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Detection, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+detectionColumns+" FROM detection_results WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to list detections",
			zap.String("layer", "repository"),
			zap.String("method", "ListByUser"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	detections := []Detection{}
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		detections = append(detections, *d)
	}
	return detections, rows.Err()
}

// GetForUser returns the detection only when userID owns it.
func (r *repository) GetForUser(ctx context.Context, id, userID uint) (*Detection, error) {
	d, err := scanDetection(r.db.QueryRowContext(ctx,
		"SELECT "+detectionColumns+" FROM detection_results WHERE id = $1 AND user_id = $2", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDetectionNotFound
	}
	return d, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDetection(s scanner) (*Detection, error) {
	var (
		d       Detection
		disease sql.NullString
		raw     sql.NullString
	)
	err := s.Scan(&d.ID, &d.UserID, &d.ImageURL, &d.Status, &disease, &d.Confidence, &d.Recommendations, &raw, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if disease.Valid {
		d.Disease = &disease.String
	}
	if raw.Valid {
		d.RawResponse = &raw.String
	}
	if d.Recommendations == nil {
		d.Recommendations = pq.StringArray{}
	}
	return &d, nil
}
