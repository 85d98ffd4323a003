package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// Final statuses accept no further transitions.
func (s Status) Final() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Order struct {
	ID              uint
	ProductID       uint
	ProductName     string
	ProductImage    *string
	BuyerID         uint
	BuyerEmail      string
	SellerID        *uint
	SellerEmail     *string
	Quantity        int
	TotalPrice      decimal.Decimal
	Status          Status
	ShippingAddress string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// sellerID returns 0 for orders whose product had no owner.
func (o *Order) sellerID() uint {
	if o.SellerID == nil {
		return 0
	}
	return *o.SellerID
}

// Placement is a validated purchase ready to be written.
type Placement struct {
	ProductID       uint
	BuyerID         uint
	Quantity        int
	ShippingAddress string
	Notes           string
}

type Filter struct {
	BuyerID     *uint
	SellerID    *uint
	Participant *uint
	Status      string
}

type CreateInput struct {
	Product         *uint   `json:"product"`
	Quantity        *int    `json:"quantity"`
	ShippingAddress *string `json:"shipping_address"`
	Notes           *string `json:"notes"`
}

// UpdateInput carries the seller-editable fields. Product and Quantity are
// accepted only when they match the stored order.
type UpdateInput struct {
	Product         *uint   `json:"product"`
	Quantity        *int    `json:"quantity"`
	Status          *string `json:"status"`
	ShippingAddress *string `json:"shipping_address"`
	Notes           *string `json:"notes"`
}

type StatusInput struct {
	Status *string `json:"status"`
}

type Response struct {
	ID              uint      `json:"id"`
	Product         uint      `json:"product"`
	ProductName     string    `json:"product_name"`
	ProductImage    *string   `json:"product_image"`
	Buyer           uint      `json:"buyer"`
	BuyerEmail      string    `json:"buyer_email"`
	Seller          *uint     `json:"seller"`
	SellerEmail     *string   `json:"seller_email"`
	Quantity        int       `json:"quantity"`
	TotalPrice      string    `json:"total_price"`
	Status          Status    `json:"status"`
	ShippingAddress string    `json:"shipping_address"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
