package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-nll-facts/internal/healthcheck"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration and environment",
	Long: `Shows the configuration in use and checks that the work directory exists,
the cache directory is writable and memory limits can be enforced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := healthcheck.Check(conf, effectiveConfigPath())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		displayDoctorResult(result)

		if !result.Healthy() {
			return fmt.Errorf("health check failed: one or more checks did not pass")
		}
		return nil
	},
}

func displayDoctorResult(result *healthcheck.HealthCheckResult) {
	if result.EffectivePath == "" {
		fmt.Println("Using config: defaults (no config file found)")
	} else {
		fmt.Printf("Using config: %s (%s)\n", result.EffectivePath, result.EffectiveScope)
	}
	fmt.Printf("Validation: %s  Workers: %d  Isolate: %v\n\n", conf.Validation, conf.Workers, conf.Isolate)

	for _, s := range []healthcheck.ComponentStatus{result.WorkDir, result.CacheDir, result.MemoryLimits} {
		fmt.Printf("%s:\n", s.Name)
		if s.Detail != "" {
			fmt.Printf("  %s\n", s.Detail)
		}
		fmt.Printf("  Status: %s %s\n", formatStatusIcon(s.Status), s.Status)
		if s.Error != "" {
			fmt.Printf("  Error: %s\n", s.Error)
		}
	}
}

func formatStatusIcon(status string) string {
	switch status {
	case "ready":
		return "✓"
	case "disabled", "unsupported":
		return "-"
	case "missing", "error":
		return "✗"
	default:
		return "?"
	}
}
