package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"strconv"
	"time"

	"greencare-be/internal/apperr"

	"github.com/nfnt/resize"
)

const (
	inputSize    = 224
	unknownLabel = "Unknown"
)

type Classifier interface {
	Classify(ctx context.Context, img []byte) (Prediction, error)
}

// ServingClassifier sends a normalized 224x224 RGB tensor to a
// TensorFlow Serving style REST endpoint.
type ServingClassifier struct {
	url        string
	classes    map[int]string
	httpClient *http.Client
}

func NewServingClassifier(url string, classes map[int]string, timeout time.Duration) *ServingClassifier {
	return &ServingClassifier{
		url:        url,
		classes:    classes,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LoadClasses reads a {"0": "Apple___Apple_scab", ...} index file.
func LoadClasses(path string) (map[int]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var byKey map[string]string
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("parse classes %s: %w", path, err)
	}

	classes := make(map[int]string, len(byKey))
	for k, label := range byKey {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("parse classes %s: bad index %q", path, k)
		}
		classes[idx] = label
	}
	return classes, nil
}

type servingRequest struct {
	Instances [][][][3]float32 `json:"instances"`
}

type servingResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

func (c *ServingClassifier) Classify(ctx context.Context, img []byte) (Prediction, error) {
	tensor, err := preprocess(img)
	if err != nil {
		return Prediction{}, apperr.Wrap(apperr.ErrUpstream, err)
	}

	body, err := json.Marshal(servingRequest{Instances: [][][][3]float32{tensor}})
	if err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("inference request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("inference failed with status %d", resp.StatusCode))
	}

	var out servingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Prediction{}, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("decode inference response: %w", err))
	}
	if len(out.Predictions) == 0 || len(out.Predictions[0]) == 0 {
		return Prediction{}, apperr.Wrap(apperr.ErrUpstream, fmt.Errorf("inference response has no predictions"))
	}

	idx, prob := argmax(out.Predictions[0])
	label, ok := c.classes[idx]
	if !ok {
		label = unknownLabel
	}
	return Prediction{Label: label, Probability: prob}, nil
}

// preprocess decodes img, resizes it to the model input and scales channels to [0, 1].
func preprocess(img []byte) ([][][3]float32, error) {
	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}
	scaled := resize.Resize(inputSize, inputSize, src, resize.Bilinear)

	bounds := scaled.Bounds()
	tensor := make([][][3]float32, inputSize)
	for y := 0; y < inputSize; y++ {
		tensor[y] = make([][3]float32, inputSize)
		for x := 0; x < inputSize; x++ {
			r, g, b, _ := scaled.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tensor[y][x] = [3]float32{
				float32(r>>8) / 255,
				float32(g>>8) / 255,
				float32(b>>8) / 255,
			}
		}
	}
	return tensor, nil
}

func argmax(v []float64) (int, float64) {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best, v[best]
}
