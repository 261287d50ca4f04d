package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/collision-records-go/internal/repository"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded enrichment runs",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to show (0 for all)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	if db == nil {
		return errors.New("no database configured: pass --db or set DB_PATH")
	}
	defer db.Close()

	runs, err := repository.NewRunRepository(db).List(runsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tJOIN\tROWS\tSTARTED\tDURATION\tERROR")
	for _, r := range runs {
		duration := "-"
		if r.CompletedAt != nil {
			duration = r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.Status, r.JoinPolicy, r.OutputRows,
			r.StartedAt.Local().Format(time.DateTime), duration, r.ErrorMessage)
	}
	return w.Flush()
}
