package queries

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/car-analytics/pkg/models"
)

var carColumns = []string{"country", "car_brand", "car_model", "car_color", "year_of_manufacture", "credit_card_type"}

func TestCarRepository_All(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM cars")).
		WillReturnRows(sqlmock.NewRows(carColumns).
			AddRow("US", "Toyota", "Corolla", "Red", 2018, "Visa").
			AddRow("UK", "Honda", "Civic", "Red", 2019, "Amex"))

	records, err := NewCarRepository(db).All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.Record{
		{Country: "US", CarBrand: "Toyota", CarModel: "Corolla", CarColor: "Red", YearOfManufacture: 2018, CreditCardType: "Visa"},
		{Country: "UK", CarBrand: "Honda", CarModel: "Civic", CarColor: "Red", YearOfManufacture: 2019, CreditCardType: "Amex"},
	}, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarRepository_All_EmptyTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM cars")).WillReturnRows(sqlmock.NewRows(carColumns))

	records, err := NewCarRepository(db).All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestCarRepository_All_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM cars")).WillReturnError(errors.New("connection reset"))

	_, err = NewCarRepository(db).All(context.Background())
	assert.Error(t, err)
}

func TestCarRepository_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cars")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := NewCarRepository(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestCarRepository_InsertBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	records := []models.Record{
		{Country: "US", CarBrand: "Toyota", CarModel: "Camry", CarColor: "Blue", YearOfManufacture: 2020, CreditCardType: "Visa"},
		{Country: "UK", CarBrand: "Honda", CarModel: "Civic", CarColor: "Red", YearOfManufacture: 2019, CreditCardType: "Amex"},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO cars"))
	prep.ExpectExec().WithArgs("US", "Toyota", "Camry", "Blue", 2020, "Visa").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("UK", "Honda", "Civic", "Red", 2019, "Amex").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, NewCarRepository(db).InsertBatch(context.Background(), records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarRepository_InsertBatch_RollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO cars"))
	prep.ExpectExec().WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err = NewCarRepository(db).InsertBatch(context.Background(), []models.Record{{Country: "US"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCarRepository_InsertBatch_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewCarRepository(db).InsertBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
