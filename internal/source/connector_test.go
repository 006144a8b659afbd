package source

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/car-analytics/pkg/database"
)

func TestUnavailable_AlwaysWrapsSentinel(t *testing.T) {
	conn := Unavailable(errors.New("dial tcp: connection refused"))
	assert.False(t, conn.Available())
	assert.ErrorIs(t, conn.Err, ErrSourceUnavailable)

	conn = Unavailable(nil)
	assert.ErrorIs(t, conn.Err, ErrSourceUnavailable)

	already := Unavailable(ErrSourceUnavailable)
	assert.Equal(t, ErrSourceUnavailable, already.Err)
}

func TestDisabledConnector(t *testing.T) {
	conn := DisabledConnector{}.Connect(context.Background())
	assert.False(t, conn.Available())
	assert.ErrorIs(t, conn.Err, ErrSourceUnavailable)
}

func TestPostgresConnector_OpenFails(t *testing.T) {
	c := NewPostgresConnector(database.Config{}, time.Second)
	c.open = func(ctx context.Context, cfg database.Config) (*database.DB, error) {
		return nil, errors.New("failed to ping database: timeout")
	}

	conn := c.Connect(context.Background())
	assert.False(t, conn.Available())
	assert.ErrorIs(t, conn.Err, ErrSourceUnavailable)
	assert.Contains(t, conn.Err.Error(), "timeout")
}

func TestPostgresConnector_ScansCars(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	c := NewPostgresConnector(database.Config{}, time.Second)
	c.open = func(ctx context.Context, cfg database.Config) (*database.DB, error) {
		return &database.DB{DB: sqlDB}, nil
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM cars")).
		WillReturnRows(sqlmock.NewRows([]string{"country", "car_brand", "car_model", "car_color", "year_of_manufacture", "credit_card_type"}).
			AddRow("UK", "Honda", "Civic", "Red", 2019, "Amex"))
	mock.ExpectPing()
	mock.ExpectClose()

	conn := c.Connect(context.Background())
	require.True(t, conn.Available())

	records, err := conn.Store.Cars(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Civic", records[0].CarModel)

	require.NoError(t, conn.Store.Ping(context.Background()))
	require.NoError(t, conn.Store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
