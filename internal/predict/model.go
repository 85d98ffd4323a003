package predict

import (
	"time"

	"github.com/lib/pq"
)

const (
	StatusHealthy  = "healthy"
	StatusDiseased = "diseased"
)

// FallbackRecommendation is stored when no usable advice came back.
const FallbackRecommendation = "Failed to get recommendations from AI."

type Detection struct {
	ID              uint           `json:"id"`
	UserID          uint           `json:"user"`
	ImageURL        string         `json:"image_url"`
	Status          string         `json:"status"`
	Disease         *string        `json:"disease"`
	Confidence      float64        `json:"confidence"`
	Recommendations pq.StringArray `json:"recommendations"`
	RawResponse     *string        `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Prediction is the winning class of one classification. Probability is in [0, 1].
type Prediction struct {
	Label       string
	Probability float64
}

type Advice struct {
	Lines []string
	Raw   string
}
