package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/OldStager01/car-analytics/pkg/models"
)

// ErrSnapshotUnavailable means the fallback snapshot is missing or
// corrupt. There is nothing left to fall back to.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

type SnapshotReader interface {
	ReadSnapshot() ([]models.Record, error)
}

// SnapshotChecker is implemented by readers that can tell whether a read
// would find its input without parsing it.
type SnapshotChecker interface {
	Check() error
}

// CSVSnapshot reads the six cars columns from a CSV file with a header
// row. Column order in the file does not matter.
type CSVSnapshot struct {
	Path string
}

func (s CSVSnapshot) ReadSnapshot() ([]models.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	defer f.Close()

	records, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotUnavailable, s.Path, err)
	}
	return records, nil
}

// Check reports whether the snapshot file exists and is a regular file.
func (s CSVSnapshot) Check() error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrSnapshotUnavailable, s.Path)
	}
	return nil
}

// ParseCSV decodes cars rows. Every column of models.Columns must be
// present in the header; extra columns are ignored.
func ParseCSV(r io.Reader) ([]models.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty file, header row missing")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[models.Field]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[models.Field(name)] = i
	}
	for _, col := range models.Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("header missing column %q", col)
		}
	}

	records := make([]models.Record, 0)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		yearCol := index[models.FieldYear]
		year, err := parseYear(row[yearCol])
		if err != nil {
			line, _ := cr.FieldPos(yearCol)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		records = append(records, models.Record{
			Country:           strings.TrimSpace(row[index[models.FieldCountry]]),
			CarBrand:          strings.TrimSpace(row[index[models.FieldCarBrand]]),
			CarModel:          strings.TrimSpace(row[index[models.FieldCarModel]]),
			CarColor:          strings.TrimSpace(row[index[models.FieldCarColor]]),
			YearOfManufacture: year,
			CreditCardType:    strings.TrimSpace(row[index[models.FieldCreditCardType]]),
		})
	}

	return records, nil
}

// parseYear accepts integral floats such as "2018.0", which dataframe
// exports produce for integer columns that once held nulls.
func parseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if year, err := strconv.Atoi(raw); err == nil {
		return year, nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid year_of_manufacture %q", raw)
	}
	return int(f), nil
}
