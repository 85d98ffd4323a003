package watering

import (
	"fmt"

	"greencare-be/internal/apperr"
)

var (
	ErrRecordNotFound = apperr.New(apperr.ErrNotFound, "Watering record not found.")
	ErrInvalidCoords  = apperr.New(apperr.ErrInvalid, "Invalid latitude or longitude format")
)

func errPlantMissing(id uint) error {
	return apperr.Field("plant", fmt.Sprintf(`Invalid pk "%d" - object does not exist.`, id))
}
