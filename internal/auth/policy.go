package auth

import (
	"context"

	"greencare-be/internal/apperr"
	"greencare-be/internal/utils"
)

const (
	RoleAdmin      = "admin"
	RoleFarmer     = "farmer"
	RolePlantOwner = "plant_owner"
	RoleSeller     = "seller"
)

var Roles = []string{RoleAdmin, RoleFarmer, RolePlantOwner, RoleSeller}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	ErrNotAuthenticated = apperr.New(apperr.ErrUnauthenticated, "Authentication credentials were not provided.")
	ErrPermissionDenied = apperr.New(apperr.ErrForbidden, "You do not have permission to perform this action.")
)

type Action string

const (
	ActionRead         Action = "read"
	ActionList         Action = "list"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionUpload       Action = "upload"
	ActionCancel       Action = "cancel"
	ActionUpdateStatus Action = "update_status"
)

type Kind string

const (
	KindPlant     Kind = "plant"
	KindWatering  Kind = "watering"
	KindProduct   Kind = "product"
	KindOrder     Kind = "order"
	KindDetection Kind = "detection"
)

// Subject is the caller. A zero UserID is an anonymous caller.
type Subject struct {
	UserID uint
	Role   string
}

func (s Subject) Authenticated() bool { return s.UserID != 0 }

func (s Subject) IsAdmin() bool { return s.Authenticated() && s.Role == RoleAdmin }

// SubjectFromContext reads the caller set by the auth middleware.
func SubjectFromContext(ctx context.Context) Subject {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return Subject{}
	}
	return Subject{UserID: id, Role: utils.GetUserRoleFromContext(ctx)}
}

// Resource describes what is acted on. Zero ids mean "not applicable".
type Resource struct {
	Kind     Kind
	OwnerID  uint
	BuyerID  uint
	SellerID uint
}

type Policy struct{}

func NewPolicy() *Policy { return &Policy{} }

// Authorize returns nil when subject may perform action on resource,
// ErrNotAuthenticated for anonymous callers and ErrPermissionDenied otherwise.
func (p *Policy) Authorize(s Subject, action Action, res Resource) error {
	if action == ActionRead && publicRead(res.Kind) {
		return nil
	}
	if action == ActionList && res.Kind != KindOrder && res.Kind != KindDetection {
		return nil
	}
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if s.Role == RoleAdmin {
		return nil
	}

	if allowed(s, action, res) {
		return nil
	}
	return ErrPermissionDenied
}

func publicRead(k Kind) bool {
	return k == KindPlant || k == KindWatering || k == KindProduct
}

func allowed(s Subject, action Action, res Resource) bool {
	switch res.Kind {
	case KindPlant, KindWatering:
		return true

	case KindProduct:
		switch action {
		case ActionCreate, ActionUpload:
			return s.Role == RoleSeller
		case ActionUpdate, ActionDelete:
			return s.Role == RoleSeller && res.OwnerID == s.UserID
		}

	case KindOrder:
		switch action {
		case ActionCreate, ActionList:
			return true
		case ActionRead:
			return res.BuyerID == s.UserID || res.SellerID == s.UserID
		case ActionCancel:
			return res.BuyerID == s.UserID
		case ActionUpdate, ActionUpdateStatus:
			return res.SellerID == s.UserID
		}

	case KindDetection:
		switch action {
		case ActionCreate, ActionList:
			return true
		case ActionRead:
			return res.OwnerID == s.UserID
		}
	}
	return false
}
