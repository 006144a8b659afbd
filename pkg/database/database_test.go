package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name:     "defaults",
			cfg:      Config{Host: "localhost", Port: 5432, Name: "car_analytics", User: "postgres"},
			expected: "host=localhost port=5432 user=postgres password= dbname=car_analytics sslmode=disable connect_timeout=10",
		},
		{
			name:     "sub-second timeout rounds up",
			cfg:      Config{Host: "db", Port: 5433, Name: "cars", User: "u", Password: "p", SSLMode: "require", PingTimeout: 300 * time.Millisecond},
			expected: "host=db port=5433 user=u password=p dbname=cars sslmode=require connect_timeout=1",
		},
		{
			name:     "fractional seconds round up",
			cfg:      Config{Host: "db", Port: 5432, Name: "cars", User: "u", PingTimeout: 2500 * time.Millisecond},
			expected: "host=db port=5432 user=u password= dbname=cars sslmode=disable connect_timeout=3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestWrap_PingSucceeds(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectPing()

	db, err := Wrap(context.Background(), sqlDB, Config{PingTimeout: time.Second})
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWrap_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	db, err := Wrap(context.Background(), sqlDB, Config{PingTimeout: time.Second})
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping database")
}
