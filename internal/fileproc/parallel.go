// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/codescope/pkg/models"
	"github.com/panbanda/codescope/pkg/parser"
)

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrPanic wraps a panic recovered while processing a single file.
var ErrPanic = errors.New("panic while processing file")

type config struct {
	workers       int
	parserOptions []parser.Option
	onProgress    ProgressFunc
}

// Option configures a parallel map.
type Option func(*config)

// WithWorkers bounds the number of concurrent workers. Values <= 0 use
// DefaultWorkers.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithParserOptions sets the options each worker's parser is created with.
func WithParserOptions(opts ...parser.Option) Option {
	return func(c *config) {
		c.parserOptions = opts
	}
}

// WithProgress sets a callback invoked once per processed file.
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) {
		c.onProgress = fn
	}
}

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.workers <= 0 {
		c.workers = DefaultWorkers()
	}
	return c
}

// MapSources processes in-memory sources in parallel, calling fn for each
// source with a dedicated parser. Results keep the order of sources: the
// result for sources[i] is at index i. A source whose fn returns an error,
// panics or is skipped by cancellation leaves the zero value in its slot and
// is reported in the returned ProcessingErrors.
func MapSources[T any](
	ctx context.Context,
	sources []models.SourceFile,
	fn func(*parser.Parser, models.SourceFile) (T, error),
	opts ...Option,
) ([]T, *ProcessingErrors) {
	if len(sources) == 0 {
		return nil, nil
	}

	cfg := newConfig(opts)
	results := make([]T, len(sources))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(cfg.workers).WithContext(ctx)
	for i, src := range sources {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if cfg.onProgress != nil {
					cfg.onProgress()
				}
			}()

			select {
			case <-ctx.Done():
				errs.Add(src.Name, ctx.Err())
				return nil
			default:
			}

			result, err := runOne(src, cfg.parserOptions, fn)
			if err != nil {
				errs.Add(src.Name, err)
				return nil // Don't stop pool on individual file errors
			}
			results[i] = result
			return nil
		})
	}
	_ = p.Wait() // Per-file errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

func runOne[T any](
	src models.SourceFile,
	parserOptions []parser.Option,
	fn func(*parser.Parser, models.SourceFile) (T, error),
) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	psr := parser.New(parserOptions...)
	defer psr.Close()

	return fn(psr, src)
}

// ForEachPath processes paths in parallel without a parser, for I/O-bound
// work such as reading files. Result order matches paths; failed paths are
// dropped from the results and reported in the returned ProcessingErrors.
func ForEachPath[T any](
	ctx context.Context,
	paths []string,
	fn func(string) (T, error),
	opts ...Option,
) ([]T, *ProcessingErrors) {
	if len(paths) == 0 {
		return nil, nil
	}

	cfg := newConfig(opts)
	slots := make([]T, len(paths))
	ok := make([]bool, len(paths))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(cfg.workers).WithContext(ctx)
	for i, path := range paths {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if cfg.onProgress != nil {
					cfg.onProgress()
				}
			}()

			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}

			result, err := fn(path)
			if err != nil {
				errs.Add(path, err)
				return nil
			}
			slots[i] = result
			ok[i] = true
			return nil
		})
	}
	_ = p.Wait()

	results := make([]T, 0, len(paths))
	for i := range slots {
		if ok[i] {
			results = append(results, slots[i])
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
