package models

// CountEntry is one row of a frequency table.
type CountEntry struct {
	Value string `json:"value"`
	Total int    `json:"total"`
}

// YearCount is one point of the cars-by-year series.
type YearCount struct {
	Year  int `json:"year"`
	Total int `json:"total"`
}

// YearRange holds the oldest and newest year of manufacture. Empty is set
// when the range was computed over no records.
type YearRange struct {
	Oldest int  `json:"oldest"`
	Newest int  `json:"newest"`
	Empty  bool `json:"empty,omitempty"`
}

// Contains reports whether year lies within the range, inclusive.
// An empty range contains nothing.
func (r YearRange) Contains(year int) bool {
	if r.Empty {
		return false
	}
	return year >= r.Oldest && year <= r.Newest
}

// CardUsage is one cell of the brand x credit card cross tabulation.
type CardUsage struct {
	CarBrand       string `json:"car_brand"`
	CreditCardType string `json:"credit_card_type"`
	Total          int    `json:"total"`
}

// Summary holds every aggregate table shown on the dashboard.
type Summary struct {
	TotalCars       int          `json:"total_cars"`
	UniqueBrands    int          `json:"unique_brands"`
	UniqueCountries int          `json:"unique_countries"`
	TopBrands       []CountEntry `json:"top_brands"`
	TopModels       []CountEntry `json:"top_models"`
	Countries       []CountEntry `json:"countries"`
	Colors          []CountEntry `json:"colors"`
	Years           []YearCount  `json:"years"`
	YearRange       YearRange    `json:"year_range"`
	CardUsage       []CardUsage  `json:"card_usage"`
}

// FieldDomains lists the distinct values of each categorical input field,
// sorted, together with the year bounds. It feeds prediction input forms.
type FieldDomains struct {
	Countries       []string  `json:"country"`
	CarModels       []string  `json:"car_model"`
	CarColors       []string  `json:"car_color"`
	CreditCardTypes []string  `json:"credit_card_type"`
	Years           YearRange `json:"year_of_manufacture"`
}
