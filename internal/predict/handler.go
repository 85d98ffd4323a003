package predict

import (
	"errors"
	"net/http"

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
	r.Route("/predict", func(r chi.Router) {
		r.Post("/predict", transport.Handle(h.predict))
		r.Get("/history", transport.Handle(h.history))
		r.Get("/{id}/history_detail", transport.Handle(h.historyDetail))
	})
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) error {
	if !auth.SubjectFromContext(r.Context()).Authenticated() {
		return auth.ErrNotAuthenticated
	}
	file, header, err := transport.FormImage(r, "image")
	if errors.Is(err, transport.ErrNoImage) {
		return ErrImageRequired
	}
	if err != nil {
		return err
	}
	defer file.Close()

	d, err := h.svc.Detect(r.Context(), file, header.Filename)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, d)
	return nil
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) error {
	detections, err := h.svc.History(r.Context())
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, detections)
	return nil
}

func (h *Handler) historyDetail(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return ErrDetectionNotFound
	}
	d, err := h.svc.HistoryDetail(r.Context(), id)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, d)
	return nil
}
