// cmd/petfinder/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petfinder/internal/common/config"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/observability"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	cfg *config.Config
	zap *zap.Logger
	log logger.Logger
	obs *observability.Observability

	configPath string
	jsonOutput bool
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "petfinder",
		Short:         "Developer harness for the pet finder client core",
		Long:          `Runs the photo matching and last-seen location flows against configured backends.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a config file (default: configs/config.yaml lookup)")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(createMatchCmd(a))
	rootCmd.AddCommand(createLocateAtCmd(a))
	rootCmd.AddCommand(createReportCmd(a))
	rootCmd.AddCommand(createServeMetricsCmd(a))
	rootCmd.AddCommand(createComponentsCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	a.zap = logger.New(a.cfg.Logging.Level, a.cfg.Logging.Format, a.cfg.Logging.Output)
	a.log = logger.NewZapAdapter(a.zap)

	a.obs, err = observability.New(a.cfg.App.Name)
	if err != nil {
		// metrics are optional for a developer run
		a.log.Warn("observability disabled", map[string]interface{}{"error": err.Error()})
		a.obs = nil
	}
	return nil
}

func (a *app) teardown() {
	if a.obs != nil {
		if err := a.obs.Shutdown(context.Background()); err != nil {
			a.log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if a.zap != nil {
		_ = a.zap.Sync()
	}
}

// recorder returns the observability recorder, or nil when it failed to start.
func (a *app) recorder() observability.Recorder {
	if a.obs == nil {
		return nil
	}
	return a.obs
}
