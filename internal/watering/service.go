package watering

import (
	"context"
	"time"

	"greencare-be/internal/apperr"
	"greencare-be/internal/logger"
	"greencare-be/internal/metrics"
	"greencare-be/internal/weather"

	"go.uber.org/zap"
)

type Forecaster interface {
	Forecast(ctx context.Context, loc weather.Location) (*weather.Forecast, error)
}

type Service interface {
	List(ctx context.Context) ([]Record, error)
	ListByPlant(ctx context.Context, plantID uint) ([]Record, error)
	Get(ctx context.Context, id uint) (*Record, error)
	Create(ctx context.Context, in RecordInput) (*Record, error)
	Update(ctx context.Context, id uint, in RecordInput) (*Record, error)
	Patch(ctx context.Context, id uint, in RecordInput) (*Record, error)
	Delete(ctx context.Context, id uint) error
	WeatherForecast(ctx context.Context, loc weather.Location) (*ForecastRecommendation, error)
	DefaultLocation() weather.Location
}

type service struct {
	repo       Repository
	forecaster Forecaster
	location   weather.Location
	fallbacks  *metrics.Counter
	now        func() time.Time
}

func NewService(repo Repository, forecaster Forecaster, defaultLoc weather.Location, reg *metrics.Registry) Service {
	s := &service{
		repo:       repo,
		forecaster: forecaster,
		location:   defaultLoc,
		fallbacks:  &metrics.Counter{},
		now:        time.Now,
	}
	if reg != nil {
		s.fallbacks = reg.Counter("watering_forecast_fallbacks_total", "Watering dates computed without forecast data.")
	}
	return s
}

func (s *service) DefaultLocation() weather.Location {
	return s.location
}

func (s *service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

func (s *service) ListByPlant(ctx context.Context, plantID uint) ([]Record, error) {
	return s.repo.ListByPlant(ctx, plantID)
}

func (s *service) Get(ctx context.Context, id uint) (*Record, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, in RecordInput) (*Record, error) {
	if err := validateFull(in); err != nil {
		return nil, err
	}

	rec := &Record{}
	apply(rec, in)
	rec.NextWateringDate = s.schedule(ctx, rec.WateringDate)

	return s.repo.Create(ctx, rec)
}

func (s *service) Update(ctx context.Context, id uint, in RecordInput) (*Record, error) {
	if err := validateFull(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	rec := &Record{ID: id}
	apply(rec, in)
	rec.NextWateringDate = s.schedule(ctx, rec.WateringDate)

	return s.repo.Update(ctx, rec)
}

func (s *service) Patch(ctx context.Context, id uint, in RecordInput) (*Record, error) {
	if err := validatePartial(in); err != nil {
		return nil, err
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(rec, in)
	rec.NextWateringDate = s.schedule(ctx, rec.WateringDate)

	return s.repo.Update(ctx, rec)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// WeatherForecast returns the forecast at loc with a recommendation based
// on the current time. Unlike scheduling, a failed fetch is an error here.
func (s *service) WeatherForecast(ctx context.Context, loc weather.Location) (*ForecastRecommendation, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	f, err := s.forecaster.Forecast(ctx, loc)
	if err != nil {
		return nil, err
	}

	return newRecommendation(loc, f, NextWateringDate(s.now(), f)), nil
}

// schedule computes the next watering from base, degrading to the default
// offset when the forecast cannot be fetched.
func (s *service) schedule(ctx context.Context, base time.Time) *time.Time {
	f, err := s.forecaster.Forecast(ctx, s.location)
	if err != nil {
		logger.FromCtx(ctx).Warn("scheduling without forecast",
			zap.String("layer", "service"),
			zap.String("method", "schedule"),
			zap.Error(err),
		)
		s.fallbacks.Inc()
		f = nil
	}

	next := NextWateringDate(base, f)
	return &next
}

func apply(rec *Record, in RecordInput) {
	if in.Plant != nil {
		rec.PlantID = *in.Plant
	}
	if in.WateringDate != nil {
		rec.WateringDate = *in.WateringDate
	}
	if in.AmountML != nil {
		rec.AmountML = *in.AmountML
	}
	if in.Notes != nil {
		rec.Notes = in.Notes
	}
	if in.IsCompleted != nil {
		rec.IsCompleted = *in.IsCompleted
	}
}

func validateFull(in RecordInput) error {
	v := apperr.NewValidation()
	required := "This field is required."
	if in.Plant == nil {
		v.Add("plant", required)
	}
	if in.WateringDate == nil {
		v.Add("watering_date", required)
	}
	if in.AmountML == nil {
		v.Add("amount_ml", required)
	}
	checkValues(v, in)
	return v.OrNil()
}

func validatePartial(in RecordInput) error {
	v := apperr.NewValidation()
	checkValues(v, in)
	return v.OrNil()
}

func checkValues(v *apperr.ValidationError, in RecordInput) {
	if in.AmountML != nil && *in.AmountML <= 0 {
		v.Add("amount_ml", "Ensure this value is greater than 0.")
	}
	if in.Plant != nil && *in.Plant == 0 {
		v.Add("plant", `Invalid pk "0" - object does not exist.`)
	}
}
