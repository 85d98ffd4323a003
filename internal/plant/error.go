package plant

import "greencare-be/internal/apperr"

var ErrPlantNotFound = apperr.New(apperr.ErrNotFound, "Plant not found.")
