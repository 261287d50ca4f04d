package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	collisionsPath string
	partiesPath    string
	victimsPath    string
	outputPath     string
	joinPolicy     string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Build the enhanced collision table",
	Long: `Reads the collision, party and victim tables, summarises victims and parties
per case, joins both summaries onto the collisions and writes the result.`,
	Example: `  enricher enrich
  enricher enrich --join left --output data/related_collisions.csv
  enricher enrich --db data/records.db`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().StringVar(&collisionsPath, "collisions", "", "Collisions table (default from config)")
	enrichCmd.Flags().StringVar(&partiesPath, "parties", "", "Parties table (default from config)")
	enrichCmd.Flags().StringVar(&victimsPath, "victims", "", "Victims table (default from config)")
	enrichCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Enhanced table to write (default from config)")
	enrichCmd.Flags().StringVar(&joinPolicy, "join", "", "Join policy: inner or left (default from config)")
}

// applyPathFlags overlays the input and output flags that were set on the command line.
func applyPathFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("collisions") {
		cfg.CollisionsPath = collisionsPath
	}
	if flags.Changed("parties") {
		cfg.PartiesPath = partiesPath
	}
	if flags.Changed("victims") {
		cfg.VictimsPath = victimsPath
	}
	if flags.Changed("output") {
		cfg.OutputPath = outputPath
	}
	if flags.Changed("join") {
		cfg.JoinPolicy = joinPolicy
	}
}

func runEnrich(cmd *cobra.Command, args []string) error {
	applyPathFlags(cmd)

	db, err := openDatabase()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	enhanced, err := newEnrichService(db).Enrich(cmd.Context(), cfg)
	if err != nil {
		logger.Error("Enrichment failed", zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d collisions with %d columns to %s\n",
		enhanced.Len(), len(enhanced.Columns()), cfg.OutputPath)
	return nil
}
