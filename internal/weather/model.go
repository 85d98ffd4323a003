package weather

import (
	"fmt"
	"math"

	"greencare-be/internal/apperr"
)

type Location struct {
	Latitude  float64
	Longitude float64
}

func (l Location) Validate() error {
	v := apperr.NewValidation()
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		v.Add("latitude", "Ensure this value is between -90 and 90.")
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		v.Add("longitude", "Ensure this value is between -180 and 180.")
	}
	return v.OrNil()
}

func (l Location) cacheKey() string {
	return fmt.Sprintf("%.2f,%.2f", l.Latitude, l.Longitude)
}

// Forecast holds daily values aligned by index. A nil entry means the
// provider had no value for that day.
type Forecast struct {
	Dates          []string   `json:"dates"`
	Precipitation  []*float64 `json:"precipitation"`
	TemperatureMax []*float64 `json:"temperature_max"`
}

// Days is the number of days for which both series have an entry.
func (f *Forecast) Days() int {
	if f == nil {
		return 0
	}
	return min(len(f.Precipitation), len(f.TemperatureMax))
}
