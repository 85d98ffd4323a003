package watering

import (
	"context"
	"net/http"
	"strconv"

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
	r.Route("/watering", func(r chi.Router) {
		r.Get("/", transport.Handle(h.list))
		r.Post("/", transport.Handle(h.create))
		r.Get("/weather_forecast", transport.Handle(h.weatherForecast))
		r.Get("/{id}", transport.Handle(h.get))
		r.Put("/{id}", transport.Handle(h.update))
		r.Patch("/{id}", transport.Handle(h.patch))
		r.Delete("/{id}", transport.Handle(h.delete))
	})
}

func (h *Handler) authorize(r *http.Request, action auth.Action) error {
	return h.policy.Authorize(auth.SubjectFromContext(r.Context()), action, auth.Resource{Kind: auth.KindWatering})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	records, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, records)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, rec)
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	if err := h.authorize(r, auth.ActionCreate); err != nil {
		return err
	}
	var in RecordInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	rec, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusCreated, rec)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	return h.write(w, r, h.svc.Update)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) error {
	return h.write(w, r, h.svc.Patch)
}

type writeFunc func(ctx context.Context, id uint, in RecordInput) (*Record, error)

func (h *Handler) write(w http.ResponseWriter, r *http.Request, fn writeFunc) error {
	if err := h.authorize(r, auth.ActionUpdate); err != nil {
		return err
	}
	id, err := transport.PathID(r, "id")
	if err != nil {
		return err
	}
	var in RecordInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		return err
	}
	rec, err := fn(r.Context(), id, in)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, rec)
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

func (h *Handler) weatherForecast(w http.ResponseWriter, r *http.Request) error {
	loc := h.svc.DefaultLocation()
	q := r.URL.Query()

	if raw := q.Get("latitude"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ErrInvalidCoords
		}
		loc.Latitude = lat
	}
	if raw := q.Get("longitude"); raw != "" {
		lon, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ErrInvalidCoords
		}
		loc.Longitude = lon
	}

	res, err := h.svc.WeatherForecast(r.Context(), loc)
	if err != nil {
		return err
	}
	transport.WriteJSON(w, http.StatusOK, res)
	return nil
}
