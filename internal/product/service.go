package product

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"greencare-be/internal/apperr"
	"greencare-be/internal/auth"
	"greencare-be/internal/imagehost"
	"greencare-be/internal/logger"
	"greencare-be/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Authorizer interface {
	Authorize(s auth.Subject, action auth.Action, res auth.Resource) error
}

type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string) (*imagehost.Result, error)
}

type Service interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
	MyProducts(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, in Input) (*Product, error)
	Update(ctx context.Context, id uint, in Input) (*Product, error)
	Patch(ctx context.Context, id uint, in Input) (*Product, error)
	Delete(ctx context.Context, id uint) error
	UploadImage(ctx context.Context, file io.Reader, filename string) (*imagehost.Result, error)
}

type service struct {
	repo   Repository
	images ImageUploader
	policy Authorizer
}

func NewService(repo Repository, images ImageUploader, policy Authorizer) Service {
	return &service{repo: repo, images: images, policy: policy}
}

func (s *service) List(ctx context.Context, f Filter) ([]Product, error) {
	if f.Category == "all" {
		f.Category = ""
	}
	return s.repo.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) MyProducts(ctx context.Context) ([]Product, error) {
	sub := auth.SubjectFromContext(ctx)
	if !sub.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}
	return s.repo.List(ctx, Filter{OwnerID: &sub.UserID})
}

func (s *service) Create(ctx context.Context, in Input) (*Product, error) {
	sub := auth.SubjectFromContext(ctx)
	if err := s.policy.Authorize(sub, auth.ActionCreate, auth.Resource{Kind: auth.KindProduct}); err != nil {
		return nil, err
	}
	if err := validate(in, true); err != nil {
		return nil, err
	}

	p := &Product{OwnerID: &sub.UserID}
	in.applyTo(p)
	gallery := in.gallery()
	if len(gallery) > 0 {
		p.Image = &gallery[0]
	}

	created, err := s.repo.Create(ctx, p, gallery)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("product created",
		zap.String("layer", "service"),
		zap.Uint("product_id", created.ID),
		zap.Uint("owner_id", sub.UserID),
	)
	return created, nil
}

func (s *service) Update(ctx context.Context, id uint, in Input) (*Product, error) {
	return s.write(ctx, id, in, true)
}

func (s *service) Patch(ctx context.Context, id uint, in Input) (*Product, error) {
	return s.write(ctx, id, in, false)
}

func (s *service) write(ctx context.Context, id uint, in Input, full bool) (*Product, error) {
	p, err := s.authorizeOwner(ctx, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := validate(in, full); err != nil {
		return nil, err
	}

	in.applyTo(p)

	// Sending image or image_urls replaces the gallery so images[0] stays the primary image.
	var gallery []string
	if in.ImageURLs != nil || in.Image != nil {
		gallery = in.gallery()
		if gallery == nil {
			gallery = []string{}
		}
		p.Image = nil
		if len(gallery) > 0 {
			p.Image = &gallery[0]
		}
	}

	return s.repo.Update(ctx, p, gallery)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.authorizeOwner(ctx, id, auth.ActionDelete); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) UploadImage(ctx context.Context, file io.Reader, filename string) (*imagehost.Result, error) {
	if err := s.policy.Authorize(auth.SubjectFromContext(ctx), auth.ActionUpload, auth.Resource{Kind: auth.KindProduct}); err != nil {
		return nil, err
	}
	res, err := s.images.Upload(ctx, file, filename, imagehost.FolderProducts)
	if err != nil {
		logger.FromCtx(ctx).Error("product image upload failed",
			zap.String("layer", "service"),
			zap.String("method", "UploadImage"),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

func (s *service) authorizeOwner(ctx context.Context, id uint, action auth.Action) (*Product, error) {
	sub := auth.SubjectFromContext(ctx)
	if !sub.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := auth.Resource{Kind: auth.KindProduct}
	if p.OwnerID != nil {
		res.OwnerID = *p.OwnerID
	}
	if err := s.policy.Authorize(sub, action, res); err != nil {
		return nil, err
	}
	return p, nil
}

func (in Input) applyTo(p *Product) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = Category(*in.Category)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Image != nil {
		p.Image = nil
		if img := strings.TrimSpace(*in.Image); img != "" {
			p.Image = &img
		}
	}
}

// gallery returns the ordered image URLs: image_urls when sent, otherwise [image].
func (in Input) gallery() []string {
	if in.ImageURLs != nil {
		out := make([]string, 0, len(*in.ImageURLs))
		for _, u := range *in.ImageURLs {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
		return out
	}
	if utils.NonEmpty(in.Image) {
		return []string{strings.TrimSpace(*in.Image)}
	}
	return nil
}

func validate(in Input, full bool) error {
	v := apperr.NewValidation()
	required := "This field is required."

	if in.Name == nil && full {
		v.Add("name", required)
	} else if in.Name != nil {
		switch {
		case strings.TrimSpace(*in.Name) == "":
			v.Add("name", "This field may not be blank.")
		case len(*in.Name) > 200:
			v.Add("name", "Ensure this field has no more than 200 characters.")
		}
	}
	if in.Description == nil && full {
		v.Add("description", required)
	} else if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		v.Add("description", "This field may not be blank.")
	}

	if in.Price == nil && full {
		v.Add("price", required)
	} else if in.Price != nil {
		switch {
		case in.Price.IsNegative():
			v.Add("price", "Ensure this value is greater than or equal to 0.")
		case !in.Price.Equal(in.Price.Round(2)):
			v.Add("price", "Ensure that there are no more than 2 decimal places.")
		case in.Price.GreaterThanOrEqual(decimal.New(1, 8)):
			v.Add("price", "Ensure that there are no more than 10 digits in total.")
		}
	}

	if in.Category == nil && full {
		v.Add("category", required)
	} else if in.Category != nil && !Category(*in.Category).Valid() {
		v.Add("category", fmt.Sprintf("%q is not a valid choice.", *in.Category))
	}

	if in.Stock != nil && *in.Stock < 0 {
		v.Add("stock", "Ensure this value is greater than or equal to 0.")
	}

	if in.Image != nil && *in.Image != "" && !validURL(*in.Image) {
		v.Add("image", "Enter a valid URL.")
	}
	if in.ImageURLs != nil {
		if len(*in.ImageURLs) > MaxImages {
			v.Add("image_urls", fmt.Sprintf("Ensure this field has no more than %d elements.", MaxImages))
		}
		for _, u := range *in.ImageURLs {
			if !validURL(strings.TrimSpace(u)) {
				v.Add("image_urls", "Enter a valid URL.")
				break
			}
		}
	}

	return v.OrNil()
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
