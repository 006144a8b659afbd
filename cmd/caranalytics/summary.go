package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OldStager01/car-analytics/internal/orchestrator"
	"github.com/OldStager01/car-analytics/pkg/models"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard aggregates",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "output as JSON")
}

func runSummary(cmd *cobra.Command, args []string) error {
	orch := orchestrator.New(cfg)
	defer orch.Stop()

	ds, err := orch.Resolver().Resolve(cmd.Context())
	if err != nil {
		return err
	}
	summary := orch.Engine().Summarize(ds)

	out := cmd.OutOrStdout()
	if summaryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"source":  ds.Source,
			"summary": summary,
		})
	}
	return printSummary(out, ds.Source, summary)
}

func printSummary(out io.Writer, src models.SourceKind, s models.Summary) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Source:\t%s\n", src)
	fmt.Fprintf(w, "Total cars:\t%d\n", s.TotalCars)
	fmt.Fprintf(w, "Unique brands:\t%d\n", s.UniqueBrands)
	fmt.Fprintf(w, "Unique countries:\t%d\n", s.UniqueCountries)
	if !s.YearRange.Empty {
		fmt.Fprintf(w, "Years:\t%d - %d\n", s.YearRange.Oldest, s.YearRange.Newest)
	}

	printCounts(w, "Top brands", s.TopBrands)
	printCounts(w, "Top models", s.TopModels)
	printCounts(w, "Colors", s.Colors)

	return w.Flush()
}

func printCounts(w io.Writer, title string, entries []models.CountEntry) {
	fmt.Fprintf(w, "\n%s\n", title)
	for _, e := range entries {
		fmt.Fprintf(w, "  %s\t%d\n", e.Value, e.Total)
	}
}
