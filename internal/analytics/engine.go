// Package analytics computes the dashboard aggregates over a dataset.
package analytics

import (
	"sort"

	"github.com/OldStager01/car-analytics/pkg/models"
)

const defaultTopN = 5

type Config struct {
	TopN int
}

// Engine is stateless; the same dataset always yields the same summary,
// whichever source backs it.
type Engine struct {
	topN int
}

func New(cfg Config) *Engine {
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopN
	}
	return &Engine{topN: cfg.TopN}
}

func (e *Engine) Summarize(ds *models.Dataset) models.Summary {
	var records []models.Record
	if ds != nil {
		records = ds.Records
	}

	brands := newTally()
	carModels := newTally()
	countries := newTally()
	colors := newTally()
	years := make(map[int]int)
	cards := newPairTally()

	for _, r := range records {
		brands.add(r.CarBrand)
		carModels.add(r.CarModel)
		countries.add(r.Country)
		colors.add(r.CarColor)
		years[r.YearOfManufacture]++
		cards.add(r.CarBrand, r.CreditCardType)
	}

	return models.Summary{
		TotalCars:       len(records),
		UniqueBrands:    brands.distinct(),
		UniqueCountries: countries.distinct(),
		TopBrands:       brands.top(e.topN),
		TopModels:       carModels.top(e.topN),
		Countries:       countries.top(0),
		Colors:          colors.top(0),
		Years:           yearSeries(years),
		YearRange:       yearRange(records),
		CardUsage:       cards.usage(),
	}
}

// Domains lists the distinct values of every categorical input field,
// sorted, plus the year bounds of the dataset.
func (e *Engine) Domains(ds *models.Dataset) models.FieldDomains {
	var records []models.Record
	if ds != nil {
		records = ds.Records
	}

	values := make(map[models.Field]map[string]struct{}, len(models.CategoricalFeatures))
	for _, f := range models.CategoricalFeatures {
		values[f] = make(map[string]struct{})
	}
	for _, r := range records {
		for _, f := range models.CategoricalFeatures {
			v, _ := r.Value(f)
			values[f][v] = struct{}{}
		}
	}

	return models.FieldDomains{
		Countries:       sortedKeys(values[models.FieldCountry]),
		CarModels:       sortedKeys(values[models.FieldCarModel]),
		CarColors:       sortedKeys(values[models.FieldCarColor]),
		CreditCardTypes: sortedKeys(values[models.FieldCreditCardType]),
		Years:           yearRange(records),
	}
}

// YearRange returns the inclusive year bounds of the dataset.
func (e *Engine) YearRange(ds *models.Dataset) models.YearRange {
	if ds == nil {
		return yearRange(nil)
	}
	return yearRange(ds.Records)
}

func yearSeries(years map[int]int) []models.YearCount {
	series := make([]models.YearCount, 0, len(years))
	for year, total := range years {
		series = append(series, models.YearCount{Year: year, Total: total})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Year < series[j].Year
	})
	return series
}

func yearRange(records []models.Record) models.YearRange {
	if len(records) == 0 {
		return models.YearRange{Empty: true}
	}

	yr := models.YearRange{
		Oldest: records[0].YearOfManufacture,
		Newest: records[0].YearOfManufacture,
	}
	for _, r := range records[1:] {
		if r.YearOfManufacture < yr.Oldest {
			yr.Oldest = r.YearOfManufacture
		}
		if r.YearOfManufacture > yr.Newest {
			yr.Newest = r.YearOfManufacture
		}
	}
	return yr
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
