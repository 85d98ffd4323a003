package auth

import (
	"context"
	"testing"

	"greencare-be/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestPolicyAuthorize(t *testing.T) {
	p := NewPolicy()

	anon := Subject{}
	admin := Subject{UserID: 1, Role: RoleAdmin}
	seller := Subject{UserID: 2, Role: RoleSeller}
	otherSeller := Subject{UserID: 3, Role: RoleSeller}
	owner := Subject{UserID: 4, Role: RolePlantOwner}
	farmer := Subject{UserID: 5, Role: RoleFarmer}

	ownedProduct := Resource{Kind: KindProduct, OwnerID: seller.UserID}
	order := Resource{Kind: KindOrder, BuyerID: owner.UserID, SellerID: seller.UserID}

	tests := []struct {
		name    string
		subject Subject
		action  Action
		res     Resource
		want    error
	}{
		{"anon reads product", anon, ActionRead, ownedProduct, nil},
		{"anon lists plants", anon, ActionList, Resource{Kind: KindPlant}, nil},
		{"anon reads watering", anon, ActionRead, Resource{Kind: KindWatering}, nil},
		{"anon creates plant", anon, ActionCreate, Resource{Kind: KindPlant}, ErrNotAuthenticated},
		{"anon lists orders", anon, ActionList, Resource{Kind: KindOrder}, ErrNotAuthenticated},
		{"anon reads detection", anon, ActionRead, Resource{Kind: KindDetection, OwnerID: 4}, ErrNotAuthenticated},

		{"plant owner creates plant", owner, ActionCreate, Resource{Kind: KindPlant}, nil},
		{"farmer uploads plant image", farmer, ActionUpload, Resource{Kind: KindPlant}, nil},

		{"seller creates product", seller, ActionCreate, Resource{Kind: KindProduct}, nil},
		{"plant owner creates product", owner, ActionCreate, Resource{Kind: KindProduct}, ErrPermissionDenied},
		{"farmer uploads product image", farmer, ActionUpload, Resource{Kind: KindProduct}, ErrPermissionDenied},
		{"seller updates own product", seller, ActionUpdate, ownedProduct, nil},
		{"seller updates foreign product", otherSeller, ActionUpdate, ownedProduct, ErrPermissionDenied},
		{"seller deletes ownerless product", seller, ActionDelete, Resource{Kind: KindProduct}, ErrPermissionDenied},
		{"admin deletes any product", admin, ActionDelete, ownedProduct, nil},

		{"anyone authenticated orders", farmer, ActionCreate, Resource{Kind: KindOrder}, nil},
		{"buyer reads order", owner, ActionRead, order, nil},
		{"seller reads order", seller, ActionRead, order, nil},
		{"stranger reads order", farmer, ActionRead, order, ErrPermissionDenied},
		{"buyer cancels", owner, ActionCancel, order, nil},
		{"seller cancels", seller, ActionCancel, order, ErrPermissionDenied},
		{"admin cancels", admin, ActionCancel, order, nil},
		{"seller updates status", seller, ActionUpdateStatus, order, nil},
		{"buyer updates status", owner, ActionUpdateStatus, order, ErrPermissionDenied},
		{"buyer edits notes", owner, ActionUpdate, order, ErrPermissionDenied},
		{"admin updates status", admin, ActionUpdateStatus, order, nil},

		{"user runs detection", farmer, ActionCreate, Resource{Kind: KindDetection}, nil},
		{"owner reads detection", owner, ActionRead, Resource{Kind: KindDetection, OwnerID: owner.UserID}, nil},
		{"stranger reads detection", farmer, ActionRead, Resource{Kind: KindDetection, OwnerID: owner.UserID}, ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Authorize(tt.subject, tt.action, tt.res)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubjectFromContext(t *testing.T) {
	assert.False(t, SubjectFromContext(context.Background()).Authenticated())

	ctx := utils.SetUserContext(context.Background(), 9, "x@y.z", RoleSeller)
	s := SubjectFromContext(ctx)
	assert.Equal(t, Subject{UserID: 9, Role: RoleSeller}, s)
	assert.False(t, s.IsAdmin())
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleFarmer))
	assert.False(t, ValidRole("gardener"))
	assert.False(t, ValidRole(""))
}
