// Package inference predicts a car brand from a partial record.
package inference

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OldStager01/car-analytics/internal/artifact"
	"github.com/OldStager01/car-analytics/internal/codec"
	"github.com/OldStager01/car-analytics/internal/events"
	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/internal/metrics"
	"github.com/OldStager01/car-analytics/pkg/models"
)

// ErrYearOutOfRange means the requested year lies outside the years present
// in the active dataset.
var ErrYearOutOfRange = errors.New("year of manufacture out of range")

const (
	OutcomeOK              = "ok"
	OutcomeYearOutOfRange  = "year_out_of_range"
	OutcomeUnknownCategory = "unknown_category"
	OutcomeInvalidCode     = "invalid_code"
	OutcomeClassifierError = "classifier_error"
)

// YearError carries the rejected year and the accepted bounds.
type YearError struct {
	Year   int
	Bounds models.YearRange
}

func (e *YearError) Error() string {
	if e.Bounds.Empty {
		return fmt.Sprintf("%s: %d, no years available", ErrYearOutOfRange, e.Year)
	}
	return fmt.Sprintf("%s: %d not in [%d, %d]", ErrYearOutOfRange, e.Year, e.Bounds.Oldest, e.Bounds.Newest)
}

func (e *YearError) Unwrap() error {
	return ErrYearOutOfRange
}

type Config struct {
	Publisher *events.Publisher
	Metrics   *metrics.Metrics
}

// Service runs encode, classify and decode for one request at a time. It is
// safe for concurrent use; the classifier and codecs are read-only.
type Service struct {
	classifier artifact.Classifier
	codecs     *codec.Set
	publisher  *events.Publisher
	metrics    *metrics.Metrics
}

// New builds a service from loaded artifacts. Unavailable artifacts yield
// an error wrapping artifact.ErrArtifactUnavailable.
func New(a artifact.Artifacts, cfg Config) (*Service, error) {
	if !a.Available() {
		if a.Err != nil {
			return nil, a.Err
		}
		return nil, artifact.ErrArtifactUnavailable
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.Get()
	}

	return &Service{
		classifier: a.Classifier,
		codecs:     a.Codecs,
		publisher:  cfg.Publisher,
		metrics:    m,
	}, nil
}

// Predict returns the upper-cased brand for req. The year must lie within
// bounds; every categorical value must be known to its codec.
func (s *Service) Predict(req models.PredictionRequest, bounds models.YearRange) (models.Prediction, error) {
	start := time.Now()

	pred, outcome, err := s.predict(req, bounds)
	s.metrics.ObservePrediction(outcome, time.Since(start))
	if err != nil {
		s.publisher.PredictionFailed(outcome, err)
		return models.Prediction{}, err
	}
	return pred, nil
}

func (s *Service) predict(req models.PredictionRequest, bounds models.YearRange) (models.Prediction, string, error) {
	if !bounds.Contains(req.YearOfManufacture) {
		return models.Prediction{}, OutcomeYearOutOfRange, &YearError{Year: req.YearOfManufacture, Bounds: bounds}
	}

	row, err := s.encode(req)
	if err != nil {
		return models.Prediction{}, OutcomeUnknownCategory, err
	}

	code, err := s.classifier.Predict(row)
	if err != nil {
		logger.WithError(err).Error("Classifier rejected feature row")
		return models.Prediction{}, OutcomeClassifierError, err
	}

	label, err := s.codecs.Decode(string(models.TargetField), code)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"field": models.TargetField,
			"code":  code,
		}).WithError(err).Error("Classifier output has no label")
		return models.Prediction{}, OutcomeInvalidCode, err
	}

	return models.Prediction{
		Brand: strings.ToUpper(label),
		Code:  code,
	}, OutcomeOK, nil
}

// encode builds the feature row in models.FeatureFields order. The year
// passes through unencoded.
func (s *Service) encode(req models.PredictionRequest) ([]float64, error) {
	row := make([]float64, 0, len(models.FeatureFields))
	for _, f := range models.FeatureFields {
		if f == models.FieldYear {
			row = append(row, float64(req.YearOfManufacture))
			continue
		}

		value, _ := req.Value(f)
		code, err := s.codecs.Encode(string(f), value)
		if err != nil {
			return nil, err
		}
		row = append(row, float64(code))
	}
	return row, nil
}

// Classes returns the codec domain of a categorical input field.
func (s *Service) Classes(f models.Field) ([]string, error) {
	return s.codecs.Classes(string(f))
}
