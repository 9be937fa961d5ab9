package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/scanner"
	"github.com/l3aro/go-nll-facts/pkg/metrics"
	"github.com/l3aro/go-nll-facts/pkg/sink"
)

// Isolated runs every crate in a child process of the nllfacts binary
// ("nllfacts crate --format msgpack <dir>"). A child that runs out of
// memory or crashes loses only its own crate.
type Isolated struct {
	// Executable is the nllfacts binary. Empty means the running executable.
	Executable string

	Validation config.ValidationMode

	// Passed to the child as --memory-soft and --memory-hard when set.
	MemorySoft string
	MemoryHard string

	// Stderr receives the child's log output. Defaults to os.Stderr.
	Stderr io.Writer
}

// ExitIncomplete is the exit status of a crate worker that skipped its crate
// because relation files are missing.
const ExitIncomplete = 3

// ChildError reports a crate worker that did not exit cleanly.
type ChildError struct {
	Crate    string
	ExitCode int
	Err      error
}

func (e *ChildError) Error() string {
	return fmt.Sprintf("crate worker for %s exited with code %d: %v", e.Crate, e.ExitCode, e.Err)
}

func (e *ChildError) Unwrap() error { return e.Err }

// Incomplete reports whether the worker skipped the crate for missing facts.
func (e *ChildError) Incomplete() bool { return e.ExitCode == ExitIncomplete }

// Args returns the child command line for crate root, without the executable.
func (p *Isolated) Args(root string) []string {
	mode := p.Validation
	if mode == "" {
		mode = config.ValidateCrate
	}
	args := []string{"crate", "--format", "msgpack", "--validation", string(mode)}
	if p.MemorySoft != "" {
		args = append(args, "--memory-soft", p.MemorySoft)
	}
	if p.MemoryHard != "" {
		args = append(args, "--memory-hard", p.MemoryHard)
	}
	return append(args, "--", root)
}

func (p *Isolated) Process(ctx context.Context, c scanner.Crate) (Result, error) {
	exe := p.Executable
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return Result{}, fmt.Errorf("locating nllfacts binary: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, exe, p.Args(c.Root)...)
	cmd.Env = os.Environ()
	cmd.Stderr = p.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("creating worker pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("starting crate worker: %w", err)
	}

	var res Result
	decErr := sink.ReadMsgpack(stdout, func(r metrics.Row) error {
		res.Rows = append(res.Rows, r)
		return nil
	})
	if decErr != nil {
		// Keep the child from blocking on a full pipe.
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, &ChildError{Crate: c.Name, ExitCode: exitErr.ExitCode(), Err: err}
		}
		return Result{}, fmt.Errorf("waiting for crate worker: %w", err)
	}
	if decErr != nil {
		return Result{}, fmt.Errorf("reading rows of %s: %w", c.Name, decErr)
	}
	return res, nil
}
