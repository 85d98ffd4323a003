package plant

import (
	"context"
	"io"
	"strings"

	"greencare-be/internal/apperr"
	"greencare-be/internal/imagehost"
	"greencare-be/internal/logger"
	"greencare-be/internal/watering"

	"go.uber.org/zap"
)

type WateringLister interface {
	ListByPlant(ctx context.Context, plantID uint) ([]watering.Record, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string) (*imagehost.Result, error)
}

type Service interface {
	List(ctx context.Context) ([]Plant, error)
	Get(ctx context.Context, id uint) (*Plant, error)
	Create(ctx context.Context, in Input) (*Plant, error)
	Update(ctx context.Context, id uint, in Input) (*Plant, error)
	Patch(ctx context.Context, id uint, in Input) (*Plant, error)
	Delete(ctx context.Context, id uint) error
	WateringRecords(ctx context.Context, id uint) ([]watering.Record, error)
	UploadImage(ctx context.Context, file io.Reader, filename string) (*imagehost.Result, error)
}

type service struct {
	repo     Repository
	watering WateringLister
	images   ImageUploader
}

func NewService(repo Repository, watering WateringLister, images ImageUploader) Service {
	return &service{repo: repo, watering: watering, images: images}
}

func (s *service) List(ctx context.Context) ([]Plant, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id uint) (*Plant, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, in Input) (*Plant, error) {
	if err := validate(in, true); err != nil {
		return nil, err
	}
	p := &Plant{}
	in.applyTo(p)
	return s.repo.Create(ctx, p)
}

func (s *service) Update(ctx context.Context, id uint, in Input) (*Plant, error) {
	if err := validate(in, true); err != nil {
		return nil, err
	}
	p := &Plant{ID: id}
	in.applyTo(p)
	return s.repo.Update(ctx, p)
}

func (s *service) Patch(ctx context.Context, id uint, in Input) (*Plant, error) {
	if err := validate(in, false); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.applyTo(p)
	return s.repo.Update(ctx, p)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// WateringRecords lists the plant's records, newest watering first.
func (s *service) WateringRecords(ctx context.Context, id uint) ([]watering.Record, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.watering.ListByPlant(ctx, id)
}

func (s *service) UploadImage(ctx context.Context, file io.Reader, filename string) (*imagehost.Result, error) {
	res, err := s.images.Upload(ctx, file, filename, imagehost.FolderPlants)
	if err != nil {
		logger.FromCtx(ctx).Error("plant image upload failed",
			zap.String("layer", "service"),
			zap.String("method", "UploadImage"),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

func validate(in Input, full bool) error {
	v := apperr.NewValidation()
	required := "This field is required."
	blank := "This field may not be blank."

	text := map[string]*string{"name": in.Name, "species": in.Species, "description": in.Description}
	for _, field := range []string{"name", "species", "description"} {
		val := text[field]
		switch {
		case val == nil && full:
			v.Add(field, required)
		case val != nil && strings.TrimSpace(*val) == "":
			v.Add(field, blank)
		}
	}
	if in.Name != nil && len(*in.Name) > 100 {
		v.Add("name", "Ensure this field has no more than 100 characters.")
	}
	if in.Species != nil && len(*in.Species) > 100 {
		v.Add("species", "Ensure this field has no more than 100 characters.")
	}

	if in.Age == nil && full {
		v.Add("age", required)
	} else if in.Age != nil && *in.Age < 0 {
		v.Add("age", "Ensure this value is greater than or equal to 0.")
	}
	if in.Height == nil && full {
		v.Add("height", required)
	}
	if in.Width == nil && full {
		v.Add("width", required)
	}

	return v.OrNil()
}
