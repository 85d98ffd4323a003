package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"greencare-be/internal/apperr"
	"greencare-be/internal/auth"
	"greencare-be/internal/logger"

	"go.uber.org/zap"
)

const minPasswordLength = 8

type TokenIssuer interface {
	IssuePair(id auth.Identity) (auth.TokenPair, error)
	IssueAccess(id auth.Identity) (string, error)
	ParseRefresh(raw string) (auth.Identity, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Me(ctx context.Context, userID uint) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.Role == "" {
		in.Role = auth.RolePlantOwner
	}
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		log.Error("failed to check existing email", zap.Error(err))
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, &User{
		Email:          in.Email,
		Password:       hashed,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           in.Role,
		ProfilePicture: in.ProfilePicture,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssuePair(identity(u))
	if err != nil {
		log.Error("failed to issue tokens", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("role", u.Role))

	return &AuthResult{
		Message: "Account created successfully!",
		Refresh: pair.Refresh,
		Access:  pair.Access,
		User:    u.Summary(),
	}, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	v := apperr.NewValidation()
	if strings.TrimSpace(in.Email) == "" {
		v.Add("email", "This field is required.")
	}
	if in.Password == "" {
		v.Add("password", "This field is required.")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(in.Password, u.Password) {
		log.Info("password mismatch", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(identity(u))
	if err != nil {
		log.Error("failed to issue tokens", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	return &AuthResult{
		Message: "Login successful",
		Refresh: pair.Refresh,
		Access:  pair.Access,
		User:    u.Summary(),
	}, nil
}

func (s *service) Me(ctx context.Context, userID uint) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// Refresh exchanges a refresh token for a new access token. The user must still exist.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	id, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	u, err := s.repo.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", auth.ErrInvalidToken
		}
		return "", err
	}

	return s.tokens.IssueAccess(identity(u))
}

func identity(u *User) auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(in RegisterInput) error {
	v := apperr.NewValidation()
	required := "This field is required."

	if in.FirstName == "" {
		v.Add("first_name", required)
	}
	if in.LastName == "" {
		v.Add("last_name", required)
	}
	if in.Email == "" {
		v.Add("email", required)
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		v.Add("email", "Enter a valid email address.")
	}
	if in.Password == "" {
		v.Add("password", required)
	} else if len(in.Password) < minPasswordLength {
		v.Add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if !auth.ValidRole(in.Role) {
		v.Add("role", `"`+in.Role+`" is not a valid choice.`)
	}

	return v.OrNil()
}
