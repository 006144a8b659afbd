package models

// PredictionRequest is a partial record without car_brand.
type PredictionRequest struct {
	Country           string `json:"country" binding:"required"`
	CarModel          string `json:"car_model" binding:"required"`
	CarColor          string `json:"car_color" binding:"required"`
	YearOfManufacture int    `json:"year_of_manufacture" binding:"required"`
	CreditCardType    string `json:"credit_card_type" binding:"required"`
}

// Value mirrors Record.Value for the fields a request carries.
func (p PredictionRequest) Value(f Field) (string, bool) {
	switch f {
	case FieldCountry:
		return p.Country, true
	case FieldCarModel:
		return p.CarModel, true
	case FieldCarColor:
		return p.CarColor, true
	case FieldCreditCardType:
		return p.CreditCardType, true
	default:
		return "", false
	}
}

// Prediction is the decoded classifier output.
type Prediction struct {
	Brand string `json:"brand"`
	Code  int    `json:"code"`
}
