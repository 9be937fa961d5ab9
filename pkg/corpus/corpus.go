// Package corpus walks a set of crates and streams one row per function to
// a sink.
//
// Crates are handled by a bounded pool of workers. Every worker processes
// one crate at a time and hands its rows to a single writer goroutine that
// owns the sink. A crate that fails is logged and skipped; only context
// cancellation or a failing sink stop the walk.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/l3aro/go-nll-facts/internal/config"
	"github.com/l3aro/go-nll-facts/internal/log"
	"github.com/l3aro/go-nll-facts/internal/scanner"
	"github.com/l3aro/go-nll-facts/pkg/cache"
	"github.com/l3aro/go-nll-facts/pkg/facts"
	"github.com/l3aro/go-nll-facts/pkg/sink"
)

// Options configures an Aggregator.
type Options struct {
	Validation config.ValidationMode

	// Workers bounds how many crates are processed at once. 0 means 1.
	Workers int

	// Cache, when set, short-circuits crates whose facts are unchanged.
	Cache *cache.RowCache

	// Processor computes a crate's rows. Nil means InProcess with the
	// configured validation mode and logger.
	Processor Processor

	Logger log.Logger
}

// Summary counts what a run did.
type Summary struct {
	CratesSeen       int `json:"crates_seen"`
	CratesProcessed  int `json:"crates_processed"`
	CratesSkipped    int `json:"crates_skipped"`
	FunctionsEmitted int `json:"functions_emitted"`
	FunctionsSkipped int `json:"functions_skipped"`
	CacheHits        int `json:"cache_hits"`
}

// Aggregator runs crates through a Processor into a Sink.
type Aggregator struct {
	sink sink.Sink
	opts Options
	log  log.Logger
}

// New returns an Aggregator writing to s. The caller keeps ownership of s
// and closes it after Run.
func New(s sink.Sink, opts Options) *Aggregator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Validation == "" {
		opts.Validation = config.ValidateCrate
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.Processor == nil {
		opts.Processor = InProcess{Validation: opts.Validation, Logger: opts.Logger}
	}
	return &Aggregator{sink: s, opts: opts, log: opts.Logger}
}

type outcome struct {
	crate  scanner.Crate
	res    Result
	cached bool
	err    error
}

// Run processes crates and writes their rows. Rows of one crate are written
// together, in function directory order.
func (a *Aggregator) Run(ctx context.Context, crates []scanner.Crate) (Summary, error) {
	sum := Summary{CratesSeen: len(crates)}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	results := make(chan outcome)

	g.Go(func() error {
		defer close(jobs)
		for i := range crates {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var workers sync.WaitGroup
	for w := 0; w < a.opts.Workers; w++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for i := range jobs {
				a.log.Info("processing crate", "crate", crates[i].Name, "index", i+1, "total", len(crates))
				o := a.process(gctx, crates[i])
				select {
				case results <- o:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	g.Go(func() error {
		for o := range results {
			if err := a.record(&sum, o); err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()
	if ctx.Err() != nil {
		err = ctx.Err()
	}
	return sum, err
}

func (a *Aggregator) process(ctx context.Context, c scanner.Crate) outcome {
	var key string
	if a.opts.Cache != nil {
		k, err := cache.Fingerprint(c.FactsDir, string(a.opts.Validation))
		if err == nil {
			key = k
			e, err := a.opts.Cache.Get(key)
			if err == nil {
				res := Result{Rows: e.Rows, FunctionsSkipped: e.FunctionsSkipped}
				return outcome{crate: c, res: res, cached: true}
			}
			if !errors.Is(err, cache.ErrMiss) {
				a.log.Warn("reading cache", "crate", c.Name, "error", err)
			}
		}
	}

	res, err := a.opts.Processor.Process(ctx, c)
	if err != nil {
		return outcome{crate: c, err: err}
	}

	if key != "" {
		e := cache.Entry{Crate: c.Name, Rows: res.Rows, FunctionsSkipped: res.FunctionsSkipped}
		if err := a.opts.Cache.Put(key, e); err != nil {
			a.log.Warn("writing cache", "crate", c.Name, "error", err)
		}
	}
	return outcome{crate: c, res: res}
}

// record runs on the writer goroutine only.
func (a *Aggregator) record(sum *Summary, o outcome) error {
	if o.err != nil {
		sum.CratesSkipped++
		var verr *facts.ValidationError
		var cerr *ChildError
		switch {
		case errors.As(o.err, &verr):
			a.log.Warn("skipping crate", "crate", o.crate.Name, "missing", len(verr.Missing))
		case errors.As(o.err, &cerr) && cerr.Incomplete():
			// The worker has already logged the skip with its missing count.
			a.log.Debug("crate worker skipped incomplete crate", "crate", o.crate.Name)
		case errors.Is(o.err, context.Canceled):
		default:
			a.log.Error("crate failed", "crate", o.crate.Name, "error", o.err)
		}
		return nil
	}

	for _, row := range o.res.Rows {
		if err := a.sink.Write(row); err != nil {
			return fmt.Errorf("writing row for %s/%s: %w", row.Program, row.Function, err)
		}
		sum.FunctionsEmitted++
	}
	sum.CratesProcessed++
	sum.FunctionsSkipped += o.res.FunctionsSkipped
	if o.cached {
		sum.CacheHits++
		a.log.Debug("cache hit", "crate", o.crate.Name, "rows", len(o.res.Rows))
	}
	return nil
}
