package predict

import (
	"bytes"
	"context"
	"io"
	"strings"

	"greencare-be/internal/apperr"
	"greencare-be/internal/auth"
	"greencare-be/internal/imagehost"
	"greencare-be/internal/logger"
	"greencare-be/internal/metrics"

	"go.uber.org/zap"
)

const maxImageBytes = 10 << 20

type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string) (*imagehost.Result, error)
}

type Authorizer interface {
	Authorize(s auth.Subject, action auth.Action, res auth.Resource) error
}

type Service interface {
	Detect(ctx context.Context, file io.Reader, filename string) (*Detection, error)
	History(ctx context.Context) ([]Detection, error)
	HistoryDetail(ctx context.Context, id uint) (*Detection, error)
}

type Deps struct {
	Repo        Repository
	Classifier  Classifier
	Recommender Recommender
	Images      ImageUploader
	Policy      Authorizer
	Metrics     *metrics.Registry
}

type service struct {
	repo        Repository
	classifier  Classifier
	recommender Recommender
	images      ImageUploader
	policy      Authorizer

	inferenceFailures *metrics.Counter
	adviceFallbacks   *metrics.Counter
}

func NewService(d Deps) Service {
	s := &service{
		repo:              d.Repo,
		classifier:        d.Classifier,
		recommender:       d.Recommender,
		images:            d.Images,
		policy:            d.Policy,
		inferenceFailures: &metrics.Counter{},
		adviceFallbacks:   &metrics.Counter{},
	}
	if d.Metrics != nil {
		s.inferenceFailures = d.Metrics.Counter("predict_inference_failures_total", "Classifier calls that failed.")
		s.adviceFallbacks = d.Metrics.Counter("predict_recommendation_fallbacks_total", "Diseased detections stored with placeholder advice.")
	}
	return s
}

// Detect uploads the image, classifies it and stores the result for the caller.
// Recommendation failures degrade to a placeholder and never fail the request.
func (s *service) Detect(ctx context.Context, file io.Reader, filename string) (*Detection, error) {
	sub := auth.SubjectFromContext(ctx)
	if err := s.policy.Authorize(sub, auth.ActionCreate, auth.Resource{Kind: auth.KindDetection}); err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Detect"),
		zap.Uint("user_id", sub.UserID),
	)

	img, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, err)
	}
	if len(img) == 0 {
		return nil, ErrImageRequired
	}
	if len(img) > maxImageBytes {
		return nil, ErrImageTooLarge
	}

	uploaded, err := s.images.Upload(ctx, bytes.NewReader(img), filename, imagehost.FolderPredict)
	if err != nil {
		log.Error("detection image upload failed", zap.Error(err))
		return nil, err
	}

	pred, err := s.classifier.Classify(ctx, img)
	if err != nil {
		s.inferenceFailures.Inc()
		log.Error("classification failed", zap.Error(err))
		return nil, err
	}

	d := &Detection{
		UserID:          sub.UserID,
		ImageURL:        uploaded.URL,
		Status:          statusFor(pred.Label),
		Disease:         &pred.Label,
		Confidence:      pred.Probability * 100,
		Recommendations: []string{},
	}

	if d.Status == StatusDiseased {
		advice, err := s.recommender.Recommend(ctx, pred.Label)
		switch {
		case err != nil:
			log.Warn("recommendation request failed", zap.String("disease", pred.Label), zap.Error(err))
			d.Recommendations = []string{FallbackRecommendation}
			s.adviceFallbacks.Inc()
		case len(advice.Lines) == 0:
			d.Recommendations = []string{FallbackRecommendation}
			d.RawResponse = &advice.Raw
			s.adviceFallbacks.Inc()
		default:
			d.Recommendations = advice.Lines
			d.RawResponse = &advice.Raw
		}
	}

	created, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	log.Info("detection stored",
		zap.Uint("detection_id", created.ID),
		zap.String("status", created.Status),
		zap.Float64("confidence", created.Confidence),
	)
	return created, nil
}

func (s *service) History(ctx context.Context) ([]Detection, error) {
	sub := auth.SubjectFromContext(ctx)
	if err := s.policy.Authorize(sub, auth.ActionList, auth.Resource{Kind: auth.KindDetection}); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, sub.UserID)
}

// HistoryDetail only finds detections owned by the caller.
func (s *service) HistoryDetail(ctx context.Context, id uint) (*Detection, error) {
	sub := auth.SubjectFromContext(ctx)
	if !sub.Authenticated() {
		return nil, auth.ErrNotAuthenticated
	}
	d, err := s.repo.GetForUser(ctx, id, sub.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(sub, auth.ActionRead, auth.Resource{Kind: auth.KindDetection, OwnerID: d.UserID}); err != nil {
		return nil, err
	}
	return d, nil
}

func statusFor(label string) string {
	if strings.Contains(strings.ToLower(label), "healthy") {
		return StatusHealthy
	}
	return StatusDiseased
}
