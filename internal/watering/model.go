package watering

import (
	"time"

	"greencare-be/internal/weather"
)

type Record struct {
	ID               uint       `json:"id"`
	PlantID          uint       `json:"plant"`
	PlantName        string     `json:"plant_name"`
	WateringDate     time.Time  `json:"watering_date"`
	NextWateringDate *time.Time `json:"next_watering_date"`
	AmountML         float64    `json:"amount_ml"`
	Notes            *string    `json:"notes"`
	IsCompleted      bool       `json:"is_completed"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RecordInput is the request body for create, update and partial update.
// next_watering_date is accepted but always recomputed.
type RecordInput struct {
	Plant            *uint      `json:"plant"`
	WateringDate     *time.Time `json:"watering_date"`
	NextWateringDate *time.Time `json:"next_watering_date"`
	AmountML         *float64   `json:"amount_ml"`
	Notes            *string    `json:"notes"`
	IsCompleted      *bool      `json:"is_completed"`
}

type ForecastRecommendation struct {
	Latitude                float64    `json:"latitude"`
	Longitude               float64    `json:"longitude"`
	Dates                   []string   `json:"dates"`
	Precipitation           []*float64 `json:"precipitation"`
	TemperatureMax          []*float64 `json:"temperature_max"`
	NextRecommendedWatering time.Time  `json:"next_recommended_watering"`
}

func newRecommendation(loc weather.Location, f *weather.Forecast, next time.Time) *ForecastRecommendation {
	return &ForecastRecommendation{
		Latitude:                loc.Latitude,
		Longitude:               loc.Longitude,
		Dates:                   f.Dates,
		Precipitation:           f.Precipitation,
		TemperatureMax:          f.TemperatureMax,
		NextRecommendedWatering: next,
	}
}
