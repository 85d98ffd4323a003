package watering

import (
	"time"

	"greencare-be/internal/weather"
)

const (
	defaultOffsetDays = 3
	maxForecastDays   = 7

	rainThresholdMM = 5.0
	hotThresholdC   = 30.0
	coolThresholdC  = 20.0

	hotOffsetDays  = 2
	coolOffsetDays = 4
)

// NextWateringDate schedules the next watering relative to base.
//
// Days are scanned in order. The first day with more than 5mm of rain sets
// the offset to that day's index plus two and ends the scan. Otherwise a hot
// day (>30°C) sets the offset to 2 and a cool day (<20°C) sets it to 4,
// with later days overriding earlier ones. Without usable data the offset is 3.
func NextWateringDate(base time.Time, f *weather.Forecast) time.Time {
	offset := defaultOffsetDays

	days := min(f.Days(), maxForecastDays)
	for i := 0; i < days; i++ {
		if p := f.Precipitation[i]; p != nil && *p > rainThresholdMM {
			offset = i + 2
			break
		}

		t := f.TemperatureMax[i]
		if t == nil {
			continue
		}
		switch {
		case *t > hotThresholdC:
			offset = hotOffsetDays
		case *t < coolThresholdC:
			offset = coolOffsetDays
		}
	}

	return base.Add(time.Duration(offset) * 24 * time.Hour)
}
