package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/car-analytics/pkg/models"
)

const scenarioCSV = `country,car_brand,car_model,car_color,year_of_manufacture,credit_card_type
US,Toyota,Corolla,Red,2018,Visa
US,Toyota,Camry,Blue,2020,Visa
UK,Honda,Civic,Red,2019,Amex
`

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(scenarioCSV))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, models.Record{
		Country: "US", CarBrand: "Toyota", CarModel: "Corolla", CarColor: "Red",
		YearOfManufacture: 2018, CreditCardType: "Visa",
	}, records[0])
	assert.Equal(t, "Honda", records[2].CarBrand)
}

func TestParseCSV_ColumnOrderAndExtras(t *testing.T) {
	data := "\ufeffcredit_card_type,year_of_manufacture,car_color,car_model,car_brand,country,vin\n" +
		"Visa,2018.0,Red,Corolla,Toyota,US,X1\n"

	records, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2018, records[0].YearOfManufacture)
	assert.Equal(t, "US", records[0].Country)
	assert.Equal(t, "Visa", records[0].CreditCardType)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("country,car_brand,car_model,car_color,year_of_manufacture,credit_card_type\n"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		errContains string
	}{
		{name: "empty file", data: "", errContains: "header row missing"},
		{name: "missing column", data: "country,car_brand\nUS,Toyota\n", errContains: "missing column"},
		{
			name:        "bad year",
			data:        "country,car_brand,car_model,car_color,year_of_manufacture,credit_card_type\nUS,Toyota,Corolla,Red,soon,Visa\n",
			errContains: "line 2",
		},
		{
			name: "bad year after multi-line field",
			data: "country,car_brand,car_model,car_color,year_of_manufacture,credit_card_type\n" +
				"US,Toyota,Corolla,\"Red\nMetallic\",2018,Visa\n" +
				"UK,Honda,Civic,Red,soon,Amex\n",
			errContains: "line 4",
		},
		{
			name:        "fractional year",
			data:        "country,car_brand,car_model,car_color,year_of_manufacture,credit_card_type\nUS,Toyota,Corolla,Red,2018.5,Visa\n",
			errContains: "invalid year_of_manufacture",
		},
		{
			name: "ragged row",
			data: "country,car_brand,car_model,car_color,year_of_manufacture,credit_card_type\nUS,Toyota\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.data))
			require.Error(t, err)
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}

func TestCSVSnapshot_ReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cars.csv")
	require.NoError(t, os.WriteFile(path, []byte(scenarioCSV), 0o644))

	records, err := CSVSnapshot{Path: path}.ReadSnapshot()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestCSVSnapshot_Unavailable(t *testing.T) {
	dir := t.TempDir()

	_, err := CSVSnapshot{Path: filepath.Join(dir, "missing.csv")}.ReadSnapshot()
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)

	corrupt := filepath.Join(dir, "corrupt.csv")
	require.NoError(t, os.WriteFile(corrupt, []byte("not,a,cars,file\n1,2,3,4\n"), 0o644))
	_, err = CSVSnapshot{Path: corrupt}.ReadSnapshot()
	assert.ErrorIs(t, err, ErrSnapshotUnavailable)
}

func TestCSVSnapshot_Check(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cars.csv")
	require.NoError(t, os.WriteFile(path, []byte(scenarioCSV), 0o644))

	assert.NoError(t, CSVSnapshot{Path: path}.Check())
	assert.ErrorIs(t, CSVSnapshot{Path: filepath.Join(dir, "missing.csv")}.Check(), ErrSnapshotUnavailable)
	assert.ErrorIs(t, CSVSnapshot{Path: dir}.Check(), ErrSnapshotUnavailable)
}
