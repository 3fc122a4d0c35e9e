package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/smartgrid/core/runlog"
)

var historyOpts struct {
	runID     string
	algorithm string
	valid     bool
	since     time.Duration
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs from the run log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		store, err := runlog.Open(cfg.Logging.StoreOptions())
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		q := runlog.Query{RunID: historyOpts.runID, Algorithm: historyOpts.algorithm, ValidOnly: historyOpts.valid}
		if historyOpts.since > 0 {
			q.Start = time.Now().Add(-historyOpts.since)
		}
		recs, err := store.Query(cmd.Context(), q)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tRUN\tDATASET\tSTAGES\tROUTER\tCOST\tVALID")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f\t%t\n",
				r.Timestamp.Format(time.RFC3339), r.RunID, r.Dataset,
				strings.Join(r.Stages, ">"), r.Router, r.Costs.Total, r.Valid)
		}
		return w.Flush()
	},
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyOpts.runID, "run", "", "only this run id")
	f.StringVar(&historyOpts.algorithm, "algorithm", "", "only runs using this algorithm or router")
	f.BoolVar(&historyOpts.valid, "valid", false, "only valid runs")
	f.DurationVar(&historyOpts.since, "since", 0, "only runs newer than this")
	rootCmd.AddCommand(historyCmd)
}
