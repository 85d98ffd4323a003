package product

import "greencare-be/internal/apperr"

var ErrProductNotFound = apperr.New(apperr.ErrNotFound, "Product not found.")
