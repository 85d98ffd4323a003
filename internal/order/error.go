package order

import (
	"fmt"

	"greencare-be/internal/apperr"
)

var ErrOrderNotFound = apperr.New(apperr.ErrNotFound, "Order not found.")

func errProductMissing(id uint) error {
	return apperr.Field("product", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
}

func errInsufficientStock(available int) error {
	return apperr.Field("quantity", fmt.Sprintf("Insufficient stock. Available: %d", available))
}

func errOwnProduct() error {
	return apperr.Field("product", "You cannot order your own product.")
}

func errCannotCancel(s Status) error {
	return apperr.New(apperr.ErrInvalid, fmt.Sprintf("Cannot cancel order with status %s", s))
}

func errCannotUpdate(s Status) error {
	return apperr.New(apperr.ErrInvalid, fmt.Sprintf("Cannot update order with status %s", s))
}
