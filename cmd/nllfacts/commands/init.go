package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/healthcheck"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize nllfacts configuration interactively",
	Long: `Guides you through setting up nllfacts configuration step by step and
writes it to the project or global config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	c := config.DefaultConfig()
	if conf != nil {
		*c = *conf
	}
	workers := strconv.Itoa(c.Workers)
	validation := string(c.Validation)

	// === SECTION 1: Corpus ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Work directory").
				Description("Holds one directory per crate; used when aggregate gets no arguments").
				Placeholder("work").
				Value(&c.WorkDir),
			huh.NewSelect[string]().
				Title("Validation").
				Description("What to do with crates whose fact files are incomplete").
				Options(
					huh.NewOption("Skip the whole crate", string(config.ValidateCrate)),
					huh.NewOption("Skip only incomplete functions", string(config.ValidateFunction)),
				).
				Value(&validation),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Resources ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Workers").
				Description("Crates processed at once").
				Value(&workers).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Run every crate in its own process?").
				Description("Memory limits then apply per crate").
				Affirmative("Yes").
				Negative("No").
				Value(&c.Isolate),
			huh.NewInput().
				Title("Soft memory limit").
				Placeholder("8GiB").
				Value(&c.MemorySoft),
			huh.NewInput().
				Title("Hard memory limit").
				Placeholder("10GiB").
				Value(&c.MemoryHard),
			huh.NewInput().
				Title("Cache directory (optional, press Enter to disable)").
				Placeholder("optional").
				Value(&c.CacheDir),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	c.Workers, _ = strconv.Atoi(workers)
	c.Validation = config.ValidationMode(validation)

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Project (./.nllfacts/config.yaml)", "project"),
					huh.NewOption("Global (~/.nllfacts/config.yaml)", "global"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigPath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Work directory: %s\n", c.WorkDir)
	fmt.Printf("Validation: %s\n", c.Validation)
	fmt.Printf("Workers: %d\n", c.Workers)
	fmt.Printf("Isolate: %v\n", c.Isolate)
	fmt.Printf("Memory limits: %s / %s\n", orNone(c.MemorySoft), orNone(c.MemoryHard))
	fmt.Printf("Cache directory: %s\n", orNone(c.CacheDir))
	fmt.Println("================================")

	if err := c.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	// === SECTION 4: Health Check ===
	fmt.Println("\n=== Running Health Check ===")
	loaded, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}
	result, err := healthcheck.Check(loaded, configPath)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	conf = loaded
	displayDoctorResult(result)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
