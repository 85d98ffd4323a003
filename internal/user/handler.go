package user

import (
	"net/http"

	"greencare-be/internal/apperr"
	"greencare-be/internal/auth"
	"greencare-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", transport.Handle(h.register))
		r.Post("/login", transport.Handle(h.login))
		r.Get("/me", transport.Handle(h.me))
		r.Post("/token/refresh", transport.Handle(h.refresh))
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) error {
	var in RegisterInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}

	res, err := h.svc.Register(r.Context(), in)
	if err != nil {
		return err
	}

	transport.WriteJSON(w, http.StatusCreated, res)
	return nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var in LoginInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}

	res, err := h.svc.Login(r.Context(), in)
	if err != nil {
		return err
	}

	transport.WriteJSON(w, http.StatusOK, res)
	return nil
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) error {
	subject := auth.SubjectFromContext(r.Context())
	if !subject.Authenticated() {
		return auth.ErrNotAuthenticated
	}

	u, err := h.svc.Me(r.Context(), subject.UserID)
	if err != nil {
		return err
	}

	transport.WriteJSON(w, http.StatusOK, u.Response())
	return nil
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) error {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	if in.Refresh == "" {
		return apperr.Field("refresh", "This field is required.")
	}

	access, err := h.svc.Refresh(r.Context(), in.Refresh)
	if err != nil {
		return err
	}

	transport.WriteJSON(w, http.StatusOK, map[string]string{"access": access})
	return nil
}
