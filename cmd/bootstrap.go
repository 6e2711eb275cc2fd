package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/market-sim/market-sim/sim"
	"github.com/market-sim/market-sim/sim/bootstrap"
	"github.com/market-sim/market-sim/sim/metrics"
)

// bootstrapCmd simulates one market and block-bootstraps its lift
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Run one simulation and estimate the lift's uncertainty with a block bootstrap",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		log := logrus.WithField("run_id", uuid.NewString())
		if err := runBootstrap(os.Stdout, cfg, sim.ResolveSeed(cfg)); err != nil {
			log.Fatalf("Bootstrap failed: %v", err)
		}
		log.Info("Bootstrap complete.")
	},
}

// runBootstrap simulates cfg with seed and writes the run report and the
// bootstrap interval to w.
func runBootstrap(w io.Writer, cfg sim.Config, seed int64) error {
	res, err := sim.Simulate(cfg, seed)
	if err != nil {
		return err
	}
	iv, err := bootstrap.Run(res, bootstrap.OptionsFromResult(res))
	if err != nil {
		return fmt.Errorf("bootstrapping seed %d: %w", seed, err)
	}
	printRunReport(w, res)
	printInterval(w, iv, metrics.Collect(res).NaiveSE)
	return nil
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}
