package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-nll-facts/pkg/facts"
)

// crateReport is the validation outcome of one crate.
type crateReport struct {
	Crate    string   `json:"crate"`
	FactsDir string   `json:"facts_dir"`
	Missing  []string `json:"missing"`
}

var validateCmd = &cobra.Command{
	Use:   "validate [crate-dir...]",
	Short: "Report missing relation files",
	Long: `Checks that every function of every crate has all twelve relation files and
prints the missing paths. Exits non-zero when any crate is incomplete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		crates, err := discoverCrates(cmd, args)
		if err != nil {
			return err
		}

		reports := make([]crateReport, 0, len(crates))
		incomplete := 0
		for _, c := range crates {
			missing, err := facts.Missing(c.FactsDir)
			if err != nil {
				return fmt.Errorf("validating %s: %w", c.Name, err)
			}
			if missing == nil {
				missing = []string{}
			}
			if len(missing) > 0 {
				incomplete++
			}
			reports = append(reports, crateReport{Crate: c.Name, FactsDir: c.FactsDir, Missing: missing})
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling JSON: %w", err)
			}
			fmt.Println(string(data))
		} else {
			printReports(reports)
		}

		if incomplete > 0 {
			return fmt.Errorf("%d of %d crates are incomplete", incomplete, len(crates))
		}
		return nil
	},
}

func printReports(reports []crateReport) {
	for _, r := range reports {
		if len(r.Missing) == 0 {
			fmt.Printf("✓ %s\n", r.Crate)
			continue
		}
		fmt.Printf("✗ %s (%d missing)\n", r.Crate, len(r.Missing))
		for _, m := range r.Missing {
			fmt.Printf("    %s\n", m)
		}
	}
}

func init() {
	validateCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	validateCmd.Flags().String("exclude-from", "", "File of crate name patterns to skip")
}
