package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OldStager01/car-analytics/internal/orchestrator"
	"github.com/OldStager01/car-analytics/pkg/models"
	"github.com/OldStager01/car-analytics/pkg/validation"
)

var predictReq models.PredictionRequest

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a car's brand from its other attributes",
	Example: `  caranalytics predict --country "United States" --model Camry \
    --color Red --year 2019 --card visa`,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictReq.Country, "country", "", "country of registration")
	f.StringVar(&predictReq.CarModel, "model", "", "car model")
	f.StringVar(&predictReq.CarColor, "color", "", "car color")
	f.IntVar(&predictReq.YearOfManufacture, "year", 0, "year of manufacture")
	f.StringVar(&predictReq.CreditCardType, "card", "", "credit card type")

	for _, name := range []string{"country", "model", "color", "year", "card"} {
		_ = predictCmd.MarkFlagRequired(name)
	}
}

func runPredict(cmd *cobra.Command, args []string) error {
	req, err := validation.SanitizePredictionRequest(predictReq)
	if err != nil {
		return err
	}

	orch := orchestrator.New(cfg)
	orch.Start()
	defer orch.Stop()

	svc, err := orch.Predictor()
	if err != nil {
		return err
	}

	ds, err := orch.Resolver().Resolve(cmd.Context())
	if err != nil {
		return err
	}

	pred, err := svc.Predict(req, orch.Engine().YearRange(ds))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), pred.Brand)
	return nil
}
