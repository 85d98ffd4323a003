package order

import (
	"context"
	"fmt"

	"greencare-be/internal/apperr"
	"greencare-be/internal/auth"
	"greencare-be/internal/logger"

	"go.uber.org/zap"
)

type Authorizer interface {
	Authorize(s auth.Subject, action auth.Action, res auth.Resource) error
}

// ListOptions narrows the caller's order list. View is "purchases", "sales" or empty.
type ListOptions struct {
	View   string
	Status string
}

type Service interface {
	List(ctx context.Context, opts ListOptions) ([]Order, error)
	MyOrders(ctx context.Context) ([]Order, error)
	MySales(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id uint) (*Order, error)
	Create(ctx context.Context, in CreateInput) (*Order, error)
	Update(ctx context.Context, id uint, in UpdateInput) (*Order, error)
	Cancel(ctx context.Context, id uint) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, in StatusInput) (*Order, error)
}

type service struct {
	repo   Repository
	policy Authorizer
}

func NewService(repo Repository, policy Authorizer) Service {
	return &service{repo: repo, policy: policy}
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]Order, error) {
	sub := auth.SubjectFromContext(ctx)
	if err := s.policy.Authorize(sub, auth.ActionList, auth.Resource{Kind: auth.KindOrder}); err != nil {
		return nil, err
	}

	f := Filter{Status: opts.Status}
	switch {
	case opts.View == "sales":
		f.SellerID = &sub.UserID
	case opts.View == "purchases":
		f.BuyerID = &sub.UserID
	case !sub.IsAdmin():
		f.Participant = &sub.UserID
	}
	return s.repo.List(ctx, f)
}

func (s *service) MyOrders(ctx context.Context) ([]Order, error) {
	return s.List(ctx, ListOptions{View: "purchases"})
}

func (s *service) MySales(ctx context.Context) ([]Order, error) {
	return s.List(ctx, ListOptions{View: "sales"})
}

func (s *service) Get(ctx context.Context, id uint) (*Order, error) {
	return s.load(ctx, id, auth.ActionRead)
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	sub := auth.SubjectFromContext(ctx)
	if err := s.policy.Authorize(sub, auth.ActionCreate, auth.Resource{Kind: auth.KindOrder}); err != nil {
		return nil, err
	}

	v := apperr.NewValidation()
	if in.Product == nil {
		v.Add("product", "This field is required.")
	}
	if in.Quantity == nil {
		v.Add("quantity", "This field is required.")
	} else if *in.Quantity <= 0 {
		v.Add("quantity", "Ensure this value is greater than or equal to 1.")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	p := Placement{ProductID: *in.Product, BuyerID: sub.UserID, Quantity: *in.Quantity}
	if in.ShippingAddress != nil {
		p.ShippingAddress = *in.ShippingAddress
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	return s.repo.CreateTx(ctx, p)
}

// Update lets the seller edit notes, shipping address and status. Product
// and quantity are fixed once the order exists.
func (s *service) Update(ctx context.Context, id uint, in UpdateInput) (*Order, error) {
	o, err := s.load(ctx, id, auth.ActionUpdate)
	if err != nil {
		return nil, err
	}

	v := apperr.NewValidation()
	if in.Product != nil && *in.Product != o.ProductID {
		v.Add("product", "This field cannot be changed.")
	}
	if in.Quantity != nil && *in.Quantity != o.Quantity {
		v.Add("quantity", "This field cannot be changed.")
	}
	if in.Status != nil {
		if msg := checkStatus(*in.Status); msg != "" {
			v.Add("status", msg)
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if in.Status != nil && Status(*in.Status) != o.Status {
		if o.Status.Final() {
			return nil, errCannotUpdate(o.Status)
		}
		o.Status = Status(*in.Status)
	}
	if in.ShippingAddress != nil {
		o.ShippingAddress = *in.ShippingAddress
	}
	if in.Notes != nil {
		o.Notes = *in.Notes
	}
	return s.repo.Update(ctx, o)
}

func (s *service) Cancel(ctx context.Context, id uint) (*Order, error) {
	o, err := s.load(ctx, id, auth.ActionCancel)
	if err != nil {
		return nil, err
	}
	if !o.Status.Cancellable() {
		return nil, errCannotCancel(o.Status)
	}

	cancelled, err := s.repo.CancelTx(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("order cancelled",
		zap.String("layer", "service"),
		zap.Uint("order_id", id),
		zap.Int("restored", cancelled.Quantity),
	)
	return cancelled, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uint, in StatusInput) (*Order, error) {
	o, err := s.load(ctx, id, auth.ActionUpdateStatus)
	if err != nil {
		return nil, err
	}

	if in.Status == nil {
		return nil, apperr.Field("status", "This field is required.")
	}
	if msg := checkStatus(*in.Status); msg != "" {
		return nil, apperr.Field("status", msg)
	}
	if o.Status.Final() {
		return nil, errCannotUpdate(o.Status)
	}

	o.Status = Status(*in.Status)
	return s.repo.Update(ctx, o)
}

func (s *service) load(ctx context.Context, id uint, action auth.Action) (*Order, error) {
	sub := auth.SubjectFromContext(ctx)
	if !sub.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := auth.Resource{Kind: auth.KindOrder, BuyerID: o.BuyerID, SellerID: o.sellerID()}
	if err := s.policy.Authorize(sub, action, res); err != nil {
		return nil, err
	}
	return o, nil
}

// checkStatus returns the validation message for a requested status, or "".
// Cancellation goes through Cancel so stock is restored.
func checkStatus(raw string) string {
	st := Status(raw)
	switch {
	case !st.Valid():
		return fmt.Sprintf("%q is not a valid choice.", raw)
	case st == StatusCancelled:
		return "Use the cancel action to cancel an order."
	}
	return ""
}
