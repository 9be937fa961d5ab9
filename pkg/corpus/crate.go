package corpus

import (
	"context"
	"path/filepath"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/log"
	"github.com/l3aro/go-nll-facts/internal/scanner"
	"github.com/l3aro/go-nll-facts/pkg/facts"
	"github.com/l3aro/go-nll-facts/pkg/metrics"
)

// Result holds the rows of one crate.
type Result struct {
	Rows             []metrics.Row
	FunctionsSkipped int
}

// Processor computes the rows of a single crate.
type Processor interface {
	Process(ctx context.Context, c scanner.Crate) (Result, error)
}

// InProcess analyses crates inside the current process.
type InProcess struct {
	Validation config.ValidationMode
	Logger     log.Logger
}

func (p InProcess) Process(ctx context.Context, c scanner.Crate) (Result, error) {
	return ProcessCrate(ctx, c, p.Validation, p.Logger)
}

// ProcessCrate validates a crate's fact directory and computes one row per
// complete function. In crate mode any missing relation file fails the whole
// crate with a *facts.ValidationError; in function mode only the incomplete
// functions are skipped. Functions whose facts cannot be loaded or decoded
// are skipped and logged. Functions are handled one at a time.
func ProcessCrate(ctx context.Context, c scanner.Crate, mode config.ValidationMode, logger log.Logger) (Result, error) {
	if logger == nil {
		logger = log.Nop()
	}

	missing, err := facts.Missing(c.FactsDir)
	if err != nil {
		return Result{}, err
	}
	if mode != config.ValidateFunction && len(missing) > 0 {
		return Result{}, &facts.ValidationError{Crate: c.Name, Missing: missing}
	}
	if len(missing) == 1 && missing[0] == c.FactsDir {
		// Not a directory at all; nothing to salvage per function.
		return Result{}, &facts.ValidationError{Crate: c.Name, Missing: missing}
	}

	fns, err := facts.FunctionDirs(c.FactsDir)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, dir := range fns {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		fn := filepath.Base(dir)

		if mode == config.ValidateFunction {
			if m := facts.MissingIn(dir); len(m) > 0 {
				logger.Warn("skipping incomplete function", "crate", c.Name, "function", fn, "missing", len(m))
				res.FunctionsSkipped++
				continue
			}
		}

		set, err := facts.Load(dir)
		if err != nil {
			logger.Warn("skipping function", "crate", c.Name, "function", fn, "error", err)
			res.FunctionsSkipped++
			continue
		}
		row, err := metrics.NewRow(c.Name, set)
		if err != nil {
			logger.Warn("skipping function", "crate", c.Name, "function", fn, "error", err)
			res.FunctionsSkipped++
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
