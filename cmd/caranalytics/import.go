package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/internal/source"
	"github.com/OldStager01/car-analytics/pkg/database"
	"github.com/OldStager01/car-analytics/pkg/database/queries"
	"github.com/OldStager01/car-analytics/pkg/models"
	"github.com/OldStager01/car-analytics/pkg/validation"
)

var (
	importFile    string
	importSkipBad bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the CSV snapshot into the live store",
	Long: `Reads the snapshot CSV and inserts every row into the cars table in a
single transaction. Run migrate first.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file to import (default: snapshot.path)")
	importCmd.Flags().BoolVar(&importSkipBad, "skip-invalid", false, "skip rows that fail validation instead of aborting")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := importFile
	if path == "" {
		path = cfg.Snapshot.Path
	}

	records, err := source.CSVSnapshot{Path: path}.ReadSnapshot()
	if err != nil {
		return err
	}

	clean, skipped, err := sanitizeRecords(records, importSkipBad)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.Database.ToDBConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	exists, err := db.TableExists(ctx, database.CarsTable)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("table %q does not exist, run migrate first", database.CarsTable)
	}

	repo := queries.NewCarRepository(db.DB)
	if err := repo.InsertBatch(ctx, clean); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count cars: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"file":     path,
		"imported": len(clean),
		"skipped":  skipped,
		"total":    total,
	}).Info("Import completed")
	return nil
}

// sanitizeRecords validates every record. Row numbers in errors count the
// header as row 1.
func sanitizeRecords(records []models.Record, skipInvalid bool) ([]models.Record, int, error) {
	clean := make([]models.Record, 0, len(records))
	skipped := 0

	for i, r := range records {
		s, err := validation.SanitizeRecord(r)
		if err != nil {
			if !skipInvalid {
				return nil, 0, fmt.Errorf("row %d: %w", i+2, err)
			}
			logger.Warnf("Skipping row %d: %v", i+2, err)
			skipped++
			continue
		}
		clean = append(clean, s)
	}
	return clean, skipped, nil
}
