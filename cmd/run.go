package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/smartgrid/app"
	"github.com/kilianp07/smartgrid/config"
	"github.com/kilianp07/smartgrid/core/factory"
	"github.com/kilianp07/smartgrid/infra/logger"
)

type runFlags struct {
	dataDir    string
	district   int
	start      string
	initial    string
	optimizers []string
	router     string
	seed       int64
	iterations int
	timeout    time.Duration
	output     string
	format     string
}

var runOpts runFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assign houses to batteries and route the cables",
	Long: `Run loads a district, builds an initial assignment, refines it with the
configured optimizers and routes the cables. Flags override the
configuration file.`,
	RunE: runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.dataDir, "data-dir", "", "directory holding district_<n> folders")
	f.IntVar(&runOpts.district, "district", 0, "district number")
	f.StringVar(&runOpts.start, "start", "", "saved connection list to start from")
	f.StringVar(&runOpts.initial, "initial", "", "initial algorithm")
	f.StringSliceVar(&runOpts.optimizers, "optimizer", nil, "optimizer, repeat to chain several")
	f.StringVar(&runOpts.router, "router", "", "cable router")
	f.Int64Var(&runOpts.seed, "seed", 0, "random seed")
	f.IntVar(&runOpts.iterations, "iterations", 0, "iteration budget per stage")
	f.DurationVar(&runOpts.timeout, "timeout", 0, "time budget per stage")
	f.StringVarP(&runOpts.output, "output", "o", "", "output file, standard output when empty")
	f.StringVar(&runOpts.format, "format", "", "output format: json, csv or connections")
	rootCmd.AddCommand(runCmd)
}

// moduleFor keeps the configured parameters when the flag names the same
// module.
func moduleFor(name string, current factory.ModuleConfig) factory.ModuleConfig {
	if current.Type == name {
		return current
	}
	return factory.ModuleConfig{Type: name}
}

func (o runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("data-dir") {
		cfg.Data.Dir = o.dataDir
		cfg.Data.Batteries, cfg.Data.Houses = "", ""
	}
	if f.Changed("district") {
		cfg.Data.District = o.district
		if cfg.Data.Dir != "" {
			cfg.Data.Batteries, cfg.Data.Houses = "", ""
		}
	}
	if f.Changed("start") {
		cfg.Data.Start = o.start
	}
	if f.Changed("initial") {
		cfg.Pipeline.Initial = moduleFor(o.initial, cfg.Pipeline.Initial)
	}
	if f.Changed("optimizer") {
		current := map[string]factory.ModuleConfig{}
		for _, m := range cfg.Pipeline.Optimizers {
			current[m.Type] = m
		}
		opts := make([]factory.ModuleConfig, 0, len(o.optimizers))
		for _, name := range o.optimizers {
			opts = append(opts, moduleFor(name, current[name]))
		}
		cfg.Pipeline.Optimizers = opts
	}
	if f.Changed("router") {
		cfg.Pipeline.Router = moduleFor(o.router, cfg.Pipeline.Router)
	}
	if f.Changed("seed") {
		cfg.Pipeline.Seed = o.seed
	}
	if f.Changed("iterations") {
		cfg.Pipeline.Iterations = o.iterations
	}
	if f.Changed("timeout") {
		cfg.Pipeline.TimeoutSeconds = timeoutSeconds(o.timeout)
	}
	if f.Changed("output") {
		cfg.Output.Path = o.output
	}
	if f.Changed("format") {
		cfg.Output.Format = o.format
	}
}

// timeoutSeconds converts a time budget to whole seconds, rounding away from
// zero so that a positive budget never becomes unlimited and a negative one
// still fails validation.
func timeoutSeconds(d time.Duration) int {
	if d < 0 {
		return int(math.Floor(d.Seconds()))
	}
	return int(math.Ceil(d.Seconds()))
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd, func(c *config.Config) { runOpts.apply(cmd, c) })
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	svc.SetOutput(cmd.OutOrStdout())
	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if !res.Valid {
		return fmt.Errorf("run %s: no valid assignment, %d houses unconnected", res.RunID, len(res.Unconnected))
	}
	return nil
}
