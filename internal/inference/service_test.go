package inference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/car-analytics/internal/artifact"
	"github.com/OldStager01/car-analytics/internal/codec"
	"github.com/OldStager01/car-analytics/internal/events"
	"github.com/OldStager01/car-analytics/internal/metrics"
	"github.com/OldStager01/car-analytics/pkg/models"
)

var bounds = models.YearRange{Oldest: 2018, Newest: 2020}

func testCodecs(t *testing.T) *codec.Set {
	t.Helper()
	set, err := codec.NewSet(map[string][]string{
		"country":          {"UK", "US"},
		"car_brand":        {"Honda", "Toyota"},
		"car_model":        {"Camry", "Civic", "Corolla"},
		"car_color":        {"Blue", "Red"},
		"credit_card_type": {"Amex", "Visa"},
	})
	require.NoError(t, err)
	return set
}

// modelTree splits on car_model only: Civic is a Honda, the rest Toyotas.
func modelTree(t *testing.T) artifact.Classifier {
	t.Helper()
	m, err := artifact.NewTreeEnsemble(artifact.ModelSpec{
		Kind:      "decision_tree",
		NFeatures: 5,
		NClasses:  2,
		Trees: []artifact.TreeSpec{{
			ChildrenLeft:  []int{1, -1, 3, -1, -1},
			ChildrenRight: []int{2, -1, 4, -1, -1},
			Feature:       []int{1, -2, 1, -2, -2},
			Threshold:     []float64{0.5, -2, 1.5, -2, -2},
			Value:         [][]float64{{2, 8}, {0, 3}, {2, 5}, {2, 0}, {0, 5}},
		}},
	})
	require.NoError(t, err)
	return m
}

// recordingClassifier returns a fixed code and keeps the last row.
type recordingClassifier struct {
	code int
	err  error
	row  []float64
}

func (c *recordingClassifier) Predict(row []float64) (int, error) {
	c.row = append([]float64(nil), row...)
	return c.code, c.err
}

func (c *recordingClassifier) NumClasses() int  { return 2 }
func (c *recordingClassifier) NumFeatures() int { return 5 }

func newService(t *testing.T, clf artifact.Classifier, pub *events.Publisher) *Service {
	t.Helper()
	svc, err := New(artifact.Artifacts{Classifier: clf, Codecs: testCodecs(t)}, Config{
		Publisher: pub,
		Metrics:   metrics.New(),
	})
	require.NoError(t, err)
	return svc
}

func request(country, carModel string, year int) models.PredictionRequest {
	return models.PredictionRequest{
		Country:           country,
		CarModel:          carModel,
		CarColor:          "Red",
		YearOfManufacture: year,
		CreditCardType:    "Visa",
	}
}

func TestNew_Unavailable(t *testing.T) {
	_, err := New(artifact.Artifacts{}, Config{})
	assert.ErrorIs(t, err, artifact.ErrArtifactUnavailable)

	reason := errors.New("model artifacts unavailable: read model: no such file")
	_, err = New(artifact.Artifacts{Err: reason}, Config{})
	assert.Equal(t, reason, err)
}

func TestPredict(t *testing.T) {
	svc := newService(t, modelTree(t), nil)

	tests := []struct {
		model string
		want  string
		code  int
	}{
		{"Camry", "TOYOTA", 1},
		{"Civic", "HONDA", 0},
		{"Corolla", "TOYOTA", 1},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, err := svc.Predict(request("US", tt.model, 2019), bounds)
			require.NoError(t, err)
			assert.Equal(t, models.Prediction{Brand: tt.want, Code: tt.code}, got)
		})
	}
}

func TestPredict_RowOrder(t *testing.T) {
	clf := &recordingClassifier{code: 1}
	svc := newService(t, clf, nil)

	_, err := svc.Predict(models.PredictionRequest{
		Country:           "US",
		CarModel:          "Corolla",
		CarColor:          "Blue",
		YearOfManufacture: 2020,
		CreditCardType:    "Amex",
	}, bounds)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 0, 2020, 0}, clf.row)
}

func TestPredict_UnknownCategory(t *testing.T) {
	clf := &recordingClassifier{code: 1}
	svc := newService(t, clf, nil)

	_, err := svc.Predict(request("DE", "Camry", 2019), bounds)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrUnknownCategory)

	var catErr *codec.CategoryError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, "country", catErr.Field)
	assert.Equal(t, "DE", catErr.Value)

	assert.Nil(t, clf.row, "classifier must not run on a partial row")
}

func TestPredict_YearOutOfRange(t *testing.T) {
	svc := newService(t, modelTree(t), nil)

	for _, year := range []int{2017, 2021} {
		_, err := svc.Predict(request("US", "Camry", year), bounds)
		assert.ErrorIs(t, err, ErrYearOutOfRange)
	}

	_, err := svc.Predict(request("US", "Camry", 2019), models.YearRange{Empty: true})
	assert.ErrorIs(t, err, ErrYearOutOfRange)

	for _, year := range []int{2018, 2020} {
		_, err := svc.Predict(request("US", "Camry", year), bounds)
		assert.NoError(t, err, "bounds are inclusive")
	}
}

func TestPredict_InvalidCode(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	failures := bus.Subscribe(models.EventTypePredictionFailed)

	svc := newService(t, &recordingClassifier{code: 7}, events.NewPublisher(bus))

	_, err := svc.Predict(request("US", "Camry", 2019), bounds)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrInvalidCode)

	require.Len(t, failures, 1)
	event := <-failures
	assert.Equal(t, models.SeverityCritical, event.Severity)
}

func TestPredict_ClassifierError(t *testing.T) {
	svc := newService(t, &recordingClassifier{err: artifact.ErrFeatureCount}, nil)

	_, err := svc.Predict(request("UK", "Civic", 2018), bounds)
	assert.ErrorIs(t, err, artifact.ErrFeatureCount)
}

func TestClasses(t *testing.T) {
	svc := newService(t, modelTree(t), nil)

	classes, err := svc.Classes(models.FieldCountry)
	require.NoError(t, err)
	assert.Equal(t, []string{"UK", "US"}, classes)

	_, err = svc.Classes(models.FieldYear)
	assert.ErrorIs(t, err, codec.ErrUnknownField)
}
