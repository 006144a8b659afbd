package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/OldStager01/car-analytics/pkg/models"
)

const (
	maxValueLength = 100

	// Years outside this window are typos, not cars.
	minYear = 1886
	maxYear = 2100
)

// ErrInvalidInput indicates the input failed validation
var ErrInvalidInput = errors.New("invalid input")

// FieldError names the offending field.
type FieldError struct {
	Field  models.Field
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

// SanitizeString trims whitespace and drops null bytes and control
// characters.
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// ValidateCategory checks one categorical value after sanitizing it.
func ValidateCategory(field models.Field, value string) (string, error) {
	value = SanitizeString(value)
	if value == "" {
		return "", &FieldError{Field: field, Reason: "cannot be empty"}
	}
	if len(value) > maxValueLength {
		return "", &FieldError{Field: field, Reason: fmt.Sprintf("must not exceed %d characters", maxValueLength)}
	}
	return value, nil
}

func ValidateYear(year int) error {
	if year < minYear || year > maxYear {
		return &FieldError{Field: models.FieldYear, Reason: fmt.Sprintf("must be between %d and %d", minYear, maxYear)}
	}
	return nil
}

// SanitizePredictionRequest returns req with every categorical value
// sanitized, or the first field that is unusable.
func SanitizePredictionRequest(req models.PredictionRequest) (models.PredictionRequest, error) {
	var err error
	if req.Country, err = ValidateCategory(models.FieldCountry, req.Country); err != nil {
		return req, err
	}
	if req.CarModel, err = ValidateCategory(models.FieldCarModel, req.CarModel); err != nil {
		return req, err
	}
	if req.CarColor, err = ValidateCategory(models.FieldCarColor, req.CarColor); err != nil {
		return req, err
	}
	if req.CreditCardType, err = ValidateCategory(models.FieldCreditCardType, req.CreditCardType); err != nil {
		return req, err
	}
	if err := ValidateYear(req.YearOfManufacture); err != nil {
		return req, err
	}
	return req, nil
}

// SanitizeRecord is SanitizePredictionRequest for a full record, including
// its brand. Used before records are written to the live store.
func SanitizeRecord(r models.Record) (models.Record, error) {
	req, err := SanitizePredictionRequest(models.PredictionRequest{
		Country:           r.Country,
		CarModel:          r.CarModel,
		CarColor:          r.CarColor,
		YearOfManufacture: r.YearOfManufacture,
		CreditCardType:    r.CreditCardType,
	})
	if err != nil {
		return r, err
	}

	brand, err := ValidateCategory(models.FieldCarBrand, r.CarBrand)
	if err != nil {
		return r, err
	}

	return models.Record{
		Country:           req.Country,
		CarBrand:          brand,
		CarModel:          req.CarModel,
		CarColor:          req.CarColor,
		YearOfManufacture: req.YearOfManufacture,
		CreditCardType:    req.CreditCardType,
	}, nil
}
