package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/scanner"
	"github.com/l3aro/go-nll-facts/pkg/cache"
	"github.com/l3aro/go-nll-facts/pkg/corpus"
	"github.com/l3aro/go-nll-facts/pkg/sink"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [crate-dir...]",
	Short: "Write one metrics row per function for every crate",
	Long: `Validates every crate, rebuilds the control flow graph of each function and
writes one CSV row per function. Without arguments the crates are the
directories of the configured work directory.

Crates with missing relation files are skipped whole by default; use
--validation function to skip only the incomplete functions.`,
	RunE: runAggregate,
}

func runAggregate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		conf.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("isolate") {
		conf.Isolate, _ = flags.GetBool("isolate")
	}
	if flags.Changed("validation") {
		v, _ := flags.GetString("validation")
		conf.Validation = config.ValidationMode(v)
	}
	if flags.Changed("cache-dir") {
		conf.CacheDir, _ = flags.GetString("cache-dir")
	}
	if err := conf.Validate(); err != nil {
		return err
	}

	crates, err := discoverCrates(cmd, args)
	if err != nil {
		return err
	}

	out, err := openSinks(cmd)
	if err != nil {
		return err
	}

	opts := corpus.Options{
		Validation: conf.Validation,
		Workers:    conf.Workers,
		Logger:     logger,
	}
	if conf.CacheDir != "" {
		if opts.Cache, err = cache.New(cache.Options{Dir: conf.CacheDir}); err != nil {
			out.Close()
			return err
		}
	}
	if conf.Isolate {
		opts.Processor = &corpus.Isolated{
			Validation: conf.Validation,
			MemorySoft: conf.MemorySoft,
			MemoryHard: conf.MemoryHard,
		}
	}

	sum, runErr := corpus.New(out, opts).Run(cmd.Context(), crates)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing output: %w", err)
	}

	logger.Info("aggregate finished",
		"crates", sum.CratesSeen,
		"processed", sum.CratesProcessed,
		"skipped", sum.CratesSkipped,
		"rows", sum.FunctionsEmitted,
		"functions_skipped", sum.FunctionsSkipped,
		"cache_hits", sum.CacheHits,
	)
	return runErr
}

// discoverCrates resolves args (or the work directory) into crates, applying
// the configured and --exclude-from exclusion patterns.
func discoverCrates(cmd *cobra.Command, args []string) ([]scanner.Crate, error) {
	opts := scanner.DefaultOptions()
	opts.WorkDir = conf.WorkDir

	patterns, err := scanner.ParseExcludePatterns(conf.Exclude)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("exclude-from"); f != nil && f.Value.String() != "" {
		more, err := scanner.LoadExcludeFile(f.Value.String())
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, more...)
	}
	opts.Exclude = patterns

	crates, err := scanner.New(opts).Crates(args)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered crates", "count", len(crates))
	return crates, nil
}

func openSinks(cmd *cobra.Command) (sink.Sink, error) {
	var csvSink *sink.CSV
	var err error
	if path, _ := cmd.Flags().GetString("out"); path != "" && path != "-" {
		csvSink, err = sink.CreateCSV(path)
	} else {
		csvSink, err = sink.NewCSV(os.Stdout, true)
	}
	if err != nil {
		return nil, err
	}

	dbPath, _ := cmd.Flags().GetString("sqlite")
	if dbPath == "" {
		return csvSink, nil
	}
	db, err := sink.OpenSQLite(dbPath)
	if err != nil {
		csvSink.Close()
		return nil, err
	}
	return sink.Multi{csvSink, db}, nil
}

func init() {
	aggregateCmd.Flags().StringP("out", "o", "", "CSV output file (default stdout)")
	aggregateCmd.Flags().String("sqlite", "", "Also write rows to this SQLite database")
	aggregateCmd.Flags().IntP("workers", "w", 1, "Number of crates processed at once")
	aggregateCmd.Flags().Bool("isolate", false, "Process every crate in its own child process")
	aggregateCmd.Flags().String("validation", string(config.ValidateCrate), "Incomplete facts handling: crate or function")
	aggregateCmd.Flags().String("cache-dir", "", "Cache computed rows in this directory")
	aggregateCmd.Flags().String("exclude-from", "", "File of crate name patterns to skip")
}
