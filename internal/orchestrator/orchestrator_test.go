package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/car-analytics/internal/artifact"
	"github.com/OldStager01/car-analytics/internal/metrics"
	"github.com/OldStager01/car-analytics/internal/source"
	"github.com/OldStager01/car-analytics/pkg/config"
	"github.com/OldStager01/car-analytics/pkg/models"
)

const carsCSV = "country,car_brand,car_model,car_color,year_of_manufacture,credit_card_type\n" +
	"US,Toyota,Corolla,Red,2018,Visa\n" +
	"UK,Honda,Civic,Red,2019,Amex\n"

const codecJSON = `{"country":["UK","US"],"car_brand":["Honda","Toyota"],"car_model":["Civic","Corolla"],"car_color":["Red"],"credit_card_type":["Amex","Visa"]}`

const modelJSON = `{"kind":"decision_tree","n_features":5,"n_classes":2,"trees":[{
	"children_left":[1,-1,-1],"children_right":[2,-1,-1],"feature":[1,-2,-2],
	"threshold":[0.5,-2,-2],"value":[[1,1],[1,0],[0,1]]}]}`

func testConfig(t *testing.T, withModel bool) *config.Config {
	t.Helper()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "cars.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(carsCSV), 0o644))

	if withModel {
		require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.DefaultModelFile), []byte(modelJSON), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.DefaultCodecFile), []byte(codecJSON), 0o644))
	}

	return &config.Config{
		Database:  config.DatabaseConfig{Enabled: false},
		Snapshot:  config.SnapshotConfig{Path: csvPath},
		Artifacts: config.ArtifactsConfig{Dir: dir},
		Source:    config.SourceConfig{RetryAfter: time.Minute},
		Events:    config.EventsConfig{BufferSize: 10},
	}
}

func TestOrchestrator_SnapshotAndModel(t *testing.T) {
	o := New(testConfig(t, true), WithMetrics(metrics.New()))
	o.Start()
	defer o.Stop()

	ds, err := o.Resolver().Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SourceSnapshot, ds.Source)

	svc, err := o.Predictor()
	require.NoError(t, err)

	pred, err := svc.Predict(models.PredictionRequest{
		Country:           "UK",
		CarModel:          "Civic",
		CarColor:          "Red",
		YearOfManufacture: 2019,
		CreditCardType:    "Amex",
	}, o.Engine().YearRange(ds))
	require.NoError(t, err)
	assert.Equal(t, "HONDA", pred.Brand)
}

func TestOrchestrator_MissingModelDisablesPrediction(t *testing.T) {
	o := New(testConfig(t, false), WithMetrics(metrics.New()))
	unavailable := o.Events().Subscribe(models.EventTypeArtifactUnavailable)

	o.Start()
	defer o.Stop()

	svc, err := o.Predictor()
	assert.Nil(t, svc)
	assert.ErrorIs(t, err, artifact.ErrArtifactUnavailable)
	assert.Len(t, unavailable, 1)

	_, err = o.Resolver().Resolve(context.Background())
	assert.NoError(t, err, "analytics keep working without a model")
}

func TestOrchestrator_PredictorBeforeStart(t *testing.T) {
	o := New(testConfig(t, true), WithMetrics(metrics.New()))
	defer o.Stop()

	_, err := o.Predictor()
	assert.ErrorIs(t, err, artifact.ErrArtifactUnavailable)
}

type staticSnapshot []models.Record

func (s staticSnapshot) ReadSnapshot() ([]models.Record, error) {
	return s, nil
}

func TestOrchestrator_Options(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Database.Enabled = true

	o := New(cfg,
		WithMetrics(metrics.New()),
		WithConnector(source.DisabledConnector{}),
		WithSnapshot(staticSnapshot{{Country: "FR", CarBrand: "Renault", CarModel: "Clio", CarColor: "Blue", YearOfManufacture: 2015, CreditCardType: "Visa"}}),
	)
	defer o.Stop()

	ds, err := o.Resolver().Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "Renault", ds.Records[0].CarBrand)
	assert.True(t, o.Resolver().Status().Degraded)
}
