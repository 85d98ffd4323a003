package weather

import "greencare-be/internal/apperr"

// ErrForecastUnavailable covers every way a forecast fetch can fail.
var ErrForecastUnavailable = apperr.New(apperr.ErrUnavailable, "Failed to fetch weather data")
