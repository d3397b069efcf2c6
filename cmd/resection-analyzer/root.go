package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ritzau/resection-analyzer/pkg/config"
	"github.com/ritzau/resection-analyzer/pkg/logging"
)

// cfg is populated by the root command before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "resection-analyzer",
	Short: "Resected electrode classification and network control centrality",
	Long: `resection-analyzer finds the intracranial electrodes that fall inside a
patient's resection region and measures how lesioning a node set changes the
synchronizability of a functional network.

Settings are read, lowest priority first, from built-in defaults,
resection-analyzer.toml, RESECTION_ANALYZER_* environment variables and flags.

Examples:
  # Electrodes inside the resection, dilated by two voxels
  resection-analyzer classify --patient HUP064 --dilate 2

  # CSV reports for every patient at several radii
  resection-analyzer report --all --radii -1,0,1,2

  # Control centrality of the resected electrodes
  resection-analyzer centrality --adjacency adj.csv --patient HUP064 --node-labels channels.txt`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Setup(logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt), cfg.JSONLogs)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("data", "data/DATA.json", "patient data JSON file")
	pf.String("config-file", config.FileName, "settings file")
	pf.String("verbosity", "", "log level: trace, debug, info, warn, error")
	pf.CountP("verbose", "v", "increase log verbosity (repeatable)")
	pf.Bool("json-logs", false, "emit structured JSON logs")

	rootCmd.AddCommand(classifyCmd, reportCmd, centralityCmd, serveCmd, watchCmd)
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func loadPatients() (*config.Patients, error) {
	patients, err := config.LoadPatients(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("patient data: %w", err)
	}
	return patients, nil
}
