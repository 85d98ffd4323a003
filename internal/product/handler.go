package product

import (
	"context"
	"net/http"

	"greencare-be/internal/apperr"
	"greencare-be/internal/transport"
	"greencare-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", transport.Handle(h.list))
		r.Post("/", transport.Handle(h.create))
		r.Get("/my_products", transport.Handle(h.myProducts))
		r.Post("/upload_image", transport.Handle(h.uploadImage))
		r.Get("/{id}", transport.Handle(h.get))
		r.Put("/{id}", transport.Handle(h.update))
		r.Patch("/{id}", transport.Handle(h.patch))
		r.Delete("/{id}", transport.Handle(h.delete))
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	f := Filter{Category: q.Get("category")}
	if raw := q.Get("owner"); raw != "" {
		owner, err := utils.ToUint(raw)
		if err != nil {
			return apperr.Field("owner", "Enter a number.")
		}
		f.OwnerID = &owner
	}

	products, err := h.svc.List(r.Context(), f)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponses(products))
	return nil
}

func (h *Handler) myProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.svc.MyProducts(r.Context())
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponses(products))
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponse(p))
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var in Input
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusCreated, ToResponse(p))
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	return h.write(w, r, h.svc.Update)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) error {
	return h.write(w, r, h.svc.Patch)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, fn func(context.Context, uint, Input) (*Product, error)) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	var in Input
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	p, err := fn(r.Context(), id, in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, ToResponse(p))
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		return err
	}
	transport.NoContent(w)
	return nil
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) error {
	file, header, err := transport.FormImage(r, "image")
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := h.svc.UploadImage(r.Context(), file, header.Filename)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, res)
	return nil
}
