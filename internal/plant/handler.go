package plant

import (
	"context"
	"net/http"

	"greencare-be/internal/auth"
	"greencare-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

type Authorizer interface {
	Authorize(s auth.Subject, action auth.Action, res auth.Resource) error
}

type Handler struct {
	svc    Service
	policy Authorizer
}

func NewHandler(svc Service, policy Authorizer) *Handler {
	return &Handler{svc: svc, policy: policy}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/plants", func(r chi.Router) {
		r.Get("/", transport.Handle(h.list))
		r.Post("/", transport.Handle(h.create))
		r.Post("/upload_image", transport.Handle(h.uploadImage))
		r.Get("/{id}", transport.Handle(h.get))
		r.Put("/{id}", transport.Handle(h.update))
		r.Patch("/{id}", transport.Handle(h.patch))
		r.Delete("/{id}", transport.Handle(h.delete))
		r.Get("/{id}/watering_record", transport.Handle(h.wateringRecords))
	})
}

func (h *Handler) authorize(r *http.Request, action auth.Action) error {
	return h.policy.Authorize(auth.SubjectFromContext(r.Context()), action, auth.Resource{Kind: auth.KindPlant})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	plants, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, plants)
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
	transport.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	if err := h.authorize(r, auth.ActionCreate); err != nil {
		return err
	}
	var in Input
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusCreated, p)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	return h.write(w, r, h.svc.Update)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) error {
	return h.write(w, r, h.svc.Patch)
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, fn func(context.Context, uint, Input) (*Plant, error)) error {
	if err := h.authorize(r, auth.ActionUpdate); err != nil {
		return err
	}
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
	transport.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	if err := h.authorize(r, auth.ActionDelete); err != nil {
		return err
	}
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

func (h *Handler) wateringRecords(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	records, err := h.svc.WateringRecords(r.Context(), id)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, records)
	return nil
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) error {
	if err := h.authorize(r, auth.ActionUpload); err != nil {
		return err
	}
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
