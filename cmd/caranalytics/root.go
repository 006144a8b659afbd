package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/pkg/config"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "caranalytics",
	Short: "Car registration analytics and brand prediction",
	Long: `caranalytics serves dashboard aggregates over the car registration
dataset and predicts a car's brand from its other attributes.

Data comes from the live Postgres store when it is reachable and from the
CSV snapshot otherwise.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(predictCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(loaded.App.LogLevel, loaded.App.Mode)
	cfg = loaded
	return nil
}
