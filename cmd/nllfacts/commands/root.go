// Package commands provides the CLI commands for nllfacts.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/log"
)

var (
	configPath string
	verbose    bool

	// Set by PersistentPreRunE for every command.
	conf   *config.Config
	logger log.Logger = log.Default()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "nllfacts",
	Short: "nllfacts - borrow checker fact aggregation",
	Long: `nllfacts reads the per-function fact dumps written by rustc -Znll-facts,
rebuilds each function's control flow graph and emits one row of metrics
per function.

Commands:
  aggregate   Write metrics for every crate of a corpus
  crate       Emit rows for a single crate (worker mode)
  validate    Report missing relation files
  cfg         Show the control flow graph of one function
  status      Summarize the fact directories of a work directory
  init        Create a configuration file interactively
  doctor      Check configuration and environment

Use "nllfacts [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it with ctx.
// Errors are not printed; pass them to Report and ExitCode.
func Execute(ctx context.Context) error {
	return RootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		c.Verbose = true
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	if c.Verbose {
		level = log.DebugLevel
	}

	conf = c
	logger = log.New(log.LoggerConfig{Level: level, JSONOutput: c.JSONLog, Output: os.Stderr})
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// effectiveConfigPath returns the config file that Load would read last, or
// "" when only defaults and the environment apply.
func effectiveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	for _, p := range []string{config.ProjectConfigPath(), config.GlobalConfigPath()} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: project then global config)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	RootCmd.AddCommand(aggregateCmd)
	RootCmd.AddCommand(crateCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(cfgCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(doctorCmd)
}
