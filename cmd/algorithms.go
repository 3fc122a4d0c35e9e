package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	coremetrics "github.com/kilianp07/smartgrid/core/metrics"
	"github.com/kilianp07/smartgrid/core/pipeline"
	_ "github.com/kilianp07/smartgrid/infra/metrics"
	"github.com/kilianp07/smartgrid/pkg/export"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the registered algorithms, routers, metrics sinks and output formats",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "algorithms: %s\n", strings.Join(pipeline.Algorithms(), ", "))
		fmt.Fprintf(out, "routers:    %s\n", strings.Join(pipeline.Routers(), ", "))
		fmt.Fprintf(out, "sinks:      %s\n", strings.Join(coremetrics.SinkTypes(), ", "))
		fmt.Fprintf(out, "formats:    %s\n", strings.Join(export.Formats(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
