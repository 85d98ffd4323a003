package user

import (
	"context"
	"database/sql"
	"errors"

	"greencare-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const userColumns = "id, email, password, first_name, last_name, role, profile_picture, created_at, updated_at"

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	created, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password, first_name, last_name, role, profile_picture)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		u.Email, u.Password, u.FirstName, u.LastName, u.Role, u.ProfilePicture,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			log.Info("email already registered", zap.String("email", u.Email))
			return nil, ErrEmailTaken
		}
		log.Error("db: failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return nil, err
	}

	return created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var picture sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.Role, &picture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if picture.Valid {
		u.ProfilePicture = &picture.String
	}
	return &u, nil
}
