package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/limits"
	"github.com/l3aro/go-nll-facts/internal/scanner"
	"github.com/l3aro/go-nll-facts/pkg/corpus"
	"github.com/l3aro/go-nll-facts/pkg/facts"
	"github.com/l3aro/go-nll-facts/pkg/sink"
)

var crateCmd = &cobra.Command{
	Use:   "crate <crate-dir>",
	Short: "Emit rows for a single crate",
	Long: `Processes one crate and writes its rows to stdout without a header.
The memory limits are applied before any fact file is read, so a crate that
exhausts them only takes this process down. aggregate --isolate runs one
of these per crate with --format msgpack.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrate,
}

func runCrate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("memory-soft") {
		conf.MemorySoft, _ = flags.GetString("memory-soft")
	}
	if flags.Changed("memory-hard") {
		conf.MemoryHard, _ = flags.GetString("memory-hard")
	}
	if flags.Changed("validation") {
		v, _ := flags.GetString("validation")
		conf.Validation = config.ValidationMode(v)
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	soft, hard, err := conf.MemoryLimits()
	if err != nil {
		return err
	}
	if err := limits.Apply(soft, hard); err != nil {
		if !errors.Is(err, limits.ErrUnsupported) {
			return err
		}
		logger.Debug("memory limit not applied", "error", err)
	}

	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return fmt.Errorf("not a crate directory: %s", args[0])
	}
	c := scanner.Resolve(args[0])

	var out sink.Sink
	switch format, _ := flags.GetString("format"); format {
	case "csv":
		if out, err = sink.NewCSV(os.Stdout, false); err != nil {
			return err
		}
	case "msgpack":
		out = sink.NewMsgpack(os.Stdout)
	default:
		return fmt.Errorf("unknown format: %s (use 'csv' or 'msgpack')", format)
	}

	res, err := corpus.ProcessCrate(cmd.Context(), c, conf.Validation, logger)
	if err != nil {
		return crateFailure(c.Name, err)
	}
	for _, row := range res.Rows {
		if err := out.Write(row); err != nil {
			return err
		}
	}
	logger.Debug("crate done", "crate", c.Name, "rows", len(res.Rows), "functions_skipped", res.FunctionsSkipped)
	return out.Close()
}

// crateFailure logs err once and maps it to the worker exit status. Missing
// facts exit with corpus.ExitIncomplete so the parent can count a skip.
func crateFailure(name string, err error) error {
	var verr *facts.ValidationError
	if errors.As(err, &verr) {
		logger.Warn("skipping crate", "crate", name, "missing", len(verr.Missing))
		return &exitError{code: corpus.ExitIncomplete, logged: true, err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	logger.Error("crate failed", "crate", name, "error", err)
	return &exitError{code: 1, logged: true, err: err}
}

func init() {
	crateCmd.Flags().String("format", "csv", "Output format: csv or msgpack")
	crateCmd.Flags().String("validation", string(config.ValidateCrate), "Incomplete facts handling: crate or function")
	crateCmd.Flags().String("memory-soft", "", "Soft address space limit, e.g. 8GiB")
	crateCmd.Flags().String("memory-hard", "", "Hard address space limit, e.g. 10GiB")
}
