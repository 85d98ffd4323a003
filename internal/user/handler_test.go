package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"greencare-be/internal/auth"
	"greencare-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResult), args.Error(1)
}

func (m *MockService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AuthResult), args.Error(1)
}

func (m *MockService) Me(ctx context.Context, userID uint) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func newRouter(svc Service) chi.Router {
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func TestHandler_Register(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Register", mock.Anything, RegisterInput{FirstName: "Lina", LastName: "Ben", Email: "lina@greencare.test", Password: "password123", Role: "farmer"}).
			Return(&AuthResult{Message: "Account created successfully!", Access: "a", Refresh: "r", User: Summary{ID: 1, Role: "farmer"}}, nil)

		body := `{"first_name":"Lina","last_name":"Ben","email":"lina@greencare.test","password":"password123","role":"farmer"}`
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"message":"Account created successfully!","access":"a","refresh":"r",
			"user":{"id":1,"email":"","role":"farmer","first_name":"","last_name":""}}`, w.Body.String())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, ErrEmailTaken)

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Email already registered!"}`, w.Body.String())
	})

	t.Run("MalformedBody", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, LoginInput{Email: "x@y.z", Password: "bad"}).Return(nil, ErrInvalidCredentials)

	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"x@y.z","password":"bad"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
}

func TestHandler_Me(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Authenticated", func(t *testing.T) {
		created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		svc := new(MockService)
		svc.On("Me", mock.Anything, uint(5)).
			Return(&User{ID: 5, Email: "a@b.c", FirstName: "A", LastName: "B", Role: auth.RoleFarmer, CreatedAt: created}, nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), 5, "a@b.c", auth.RoleFarmer))
		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":5,"email":"a@b.c","first_name":"A","last_name":"B","role":"farmer",
			"profile_picture":null,"created_at":"2024-03-01T09:00:00Z"}`, w.Body.String())
	})
}

func TestHandler_Refresh(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Refresh", mock.Anything, "tok").Return("new-access", nil)

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/token/refresh", strings.NewReader(`{"refresh":"tok"}`)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"access":"new-access"}`, w.Body.String())
	})

	t.Run("Invalid", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Refresh", mock.Anything, "tok").Return("", auth.ErrInvalidToken)

		w := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/token/refresh", strings.NewReader(`{"refresh":"tok"}`)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(new(MockService)).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/token/refresh", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"refresh":["This field is required."]}`, w.Body.String())
	})
}
