package predict

import "greencare-be/internal/apperr"

var (
	ErrImageRequired     = apperr.New(apperr.ErrInvalid, "Image file is required.")
	ErrImageTooLarge     = apperr.New(apperr.ErrInvalid, "Image file is too large. Maximum size is 10 MB.")
	ErrDetectionNotFound = apperr.New(apperr.ErrNotFound, "History entry not found.")
)
