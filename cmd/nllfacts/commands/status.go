package commands

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/l3aro/go-nll-facts/internal/scanner"
)

var statusCmd = &cobra.Command{
	Use:   "status [work-dir]",
	Short: "Summarize the fact directories of a work directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := conf.WorkDir
		if len(args) == 1 {
			root = args[0]
		}

		s, err := scanner.SurveyDir(cmd.Context(), afs.New(), root)
		if err != nil {
			return fmt.Errorf("surveying %s: %w", root, err)
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Work directory: %s\n", root)
		fmt.Printf("Fact directories: %s\n", humanize.Comma(int64(s.FactsDirs)))
		fmt.Printf("Fact files: %s\n", humanize.Comma(int64(s.FactFiles)))
		fmt.Printf("Total size: %s\n", humanize.IBytes(uint64(s.Bytes)))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}
