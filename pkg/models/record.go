package models

// Field names a column of the cars table.
type Field string

const (
	FieldCountry        Field = "country"
	FieldCarBrand       Field = "car_brand"
	FieldCarModel       Field = "car_model"
	FieldCarColor       Field = "car_color"
	FieldYear           Field = "year_of_manufacture"
	FieldCreditCardType Field = "credit_card_type"
)

// Columns lists the six cars columns in table order.
var Columns = []Field{
	FieldCountry,
	FieldCarBrand,
	FieldCarModel,
	FieldCarColor,
	FieldYear,
	FieldCreditCardType,
}

// FeatureFields is the fixed column order of the classifier input row.
var FeatureFields = []Field{
	FieldCountry,
	FieldCarModel,
	FieldCarColor,
	FieldYear,
	FieldCreditCardType,
}

// CategoricalFeatures are the feature columns that go through a codec.
var CategoricalFeatures = []Field{
	FieldCountry,
	FieldCarModel,
	FieldCarColor,
	FieldCreditCardType,
}

// TargetField is the column the classifier predicts.
const TargetField = FieldCarBrand

// Record is one vehicle registration.
type Record struct {
	Country           string `json:"country"`
	CarBrand          string `json:"car_brand"`
	CarModel          string `json:"car_model"`
	CarColor          string `json:"car_color"`
	YearOfManufacture int    `json:"year_of_manufacture"`
	CreditCardType    string `json:"credit_card_type"`
}

// Value returns the string value of a categorical field. The year column
// and unknown fields return false.
func (r Record) Value(f Field) (string, bool) {
	switch f {
	case FieldCountry:
		return r.Country, true
	case FieldCarBrand:
		return r.CarBrand, true
	case FieldCarModel:
		return r.CarModel, true
	case FieldCarColor:
		return r.CarColor, true
	case FieldCreditCardType:
		return r.CreditCardType, true
	default:
		return "", false
	}
}
