package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/smartgrid/core/bounds"
	"github.com/kilianp07/smartgrid/infra/dataset"
)

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Print cost bounds of the configured district",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		g, err := dataset.LoadGrid(cfg.Data.Batteries, cfg.Data.Houses, cfg.Grid.DatasetOptions())
		if err != nil {
			return err
		}
		rep, err := bounds.Compute(g)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "district\t%s\n", cfg.Data.Name())
		fmt.Fprintf(w, "nearest (lower)\t%.0f\n", rep.Nearest)
		fmt.Fprintf(w, "lp relaxation (lower)\t%.2f\n", rep.Relaxation)
		fmt.Fprintf(w, "furthest (upper)\t%.0f\n", rep.Furthest)
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(boundsCmd)
}
