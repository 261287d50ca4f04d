package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengzang/collision-records-go/internal/service"
)

var reportPath string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Derive the chart-ready collision report",
	Long: `Builds severity, age, race, hourly and map views from the enhanced table and
writes them as JSON. The enhanced table is produced first when it does not exist.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&collisionsPath, "collisions", "", "Collisions table (default from config)")
	reportCmd.Flags().StringVar(&partiesPath, "parties", "", "Parties table (default from config)")
	reportCmd.Flags().StringVar(&victimsPath, "victims", "", "Victims table (default from config)")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Enhanced table to read (default from config)")
	reportCmd.Flags().StringVar(&joinPolicy, "join", "", "Join policy used if the enhanced table must be built")
	reportCmd.Flags().StringVar(&reportPath, "report", "", "Report JSON to write (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	applyPathFlags(cmd)
	if cmd.Flags().Changed("report") {
		cfg.ReportPath = reportPath
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	svc := service.NewReportService(logger, newEnrichService(db))
	r, err := svc.Generate(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Collisions: %d\n", r.Collisions)
	for _, s := range r.SeverityCounts {
		fmt.Fprintf(out, "  %-14s %-18s %d\n", s.Mode, s.Label, s.Count)
	}
	fmt.Fprintf(out, "Victims: %g minors, %g aged 16-65, %g seniors\n",
		r.AgeCounts.Minors, r.AgeCounts.Working, r.AgeCounts.Seniors)
	fmt.Fprintf(out, "Timed collisions: %d (mean hour %.1f)\n", len(r.Hourly.Points), r.Hourly.MeanHour)
	if cfg.ReportPath != "" {
		fmt.Fprintf(out, "Report written to %s\n", cfg.ReportPath)
	}
	return nil
}
