package order

import (
	"context"
	"net/http"

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
	r.Route("/products/orders", func(r chi.Router) {
		r.Get("/", transport.Handle(h.list))
		r.Post("/", transport.Handle(h.create))
		r.Get("/my_orders", transport.Handle(h.listWith(h.svc.MyOrders)))
		r.Get("/my_sales", transport.Handle(h.listWith(h.svc.MySales)))
		r.Get("/{id}", transport.Handle(h.get))
		r.Put("/{id}", transport.Handle(h.update))
		r.Patch("/{id}", transport.Handle(h.update))
		r.Delete("/{id}", transport.Handle(h.cancel))
		r.Post("/{id}/cancel", transport.Handle(h.cancel))
		r.Post("/{id}/update_status", transport.Handle(h.updateStatus))
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	orders, err := h.svc.List(r.Context(), ListOptions{View: q.Get("view"), Status: q.Get("status")})
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponses(orders))
	return nil
}

func (h *Handler) listWith(fn func(context.Context) ([]Order, error)) transport.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		orders, err := fn(r.Context())
		if err != nil {
			return err
		}
		transport.WriteJSON(w, http.StatusOK, ToResponses(orders))
		return nil
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponse(o))
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var in CreateInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	o, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusCreated, ToResponse(o))
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	o, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponse(o))
	return nil
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	o, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponse(o))
	return nil
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	var in StatusInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	o, err := h.svc.UpdateStatus(r.Context(), id, in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponse(o))
	return nil
}
