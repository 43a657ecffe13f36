// Package operation provides the copy-if-absent transfer worker
package operation

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/walteh/copywatch/pkg/log"
	"github.com/walteh/copywatch/pkg/scan"
	"github.com/walteh/copywatch/pkg/state"
	"github.com/walteh/copywatch/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned when a path handed to the worker no longer exists
var ErrNotFound = errors.Base("path not found")

// 🔧 Options contains configuration for the worker
type Options struct {
	// SourceDir is the watched root; ignore patterns match relative to it
	SourceDir string
	// Target receives the copies
	Target status.FileManager
	// Ledger holds the names already transferred
	Ledger *state.Ledger
	// Logger receives user facing messages
	Logger log.Logger
	// Ignore skips matching files (optional)
	Ignore *scan.Matcher
}

// 📊 Stats counts what the worker has done since it was created
type Stats struct {
	Copied  int64
	Skipped int64
	Failed  int64
}

// 🎮 Worker copies new files from the source tree into the target directory
type Worker struct {
	sourceDir string
	target    status.FileManager
	ledger    *state.Ledger
	logger    log.Logger
	ignore    *scan.Matcher

	group singleflight.Group

	copied  atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

// 🏭 New creates a new worker with the given options
func New(opts Options) (*Worker, error) {
	if opts.Target == nil {
		return nil, errors.Errorf("target is required")
	}
	if opts.Ledger == nil {
		return nil, errors.Errorf("ledger is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard
	}
	return &Worker{
		sourceDir: filepath.Clean(opts.SourceDir),
		target:    opts.Target,
		ledger:    opts.Ledger,
		logger:    opts.Logger,
		ignore:    opts.Ignore,
	}, nil
}

// Stats returns a snapshot of the worker counters
func (w *Worker) Stats() Stats {
	return Stats{
		Copied:  w.copied.Load(),
		Skipped: w.skipped.Load(),
		Failed:  w.failed.Load(),
	}
}

// 🏃 HandlePath transfers path if it is a new file, or every new file below it
// if it is a directory. Children of a directory are handled sequentially and a
// failing child does not stop the rest; all child failures are joined.
func (w *Worker) HandlePath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("%s: %w", path, ErrNotFound)
		}
		return errors.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return w.handleDir(ctx, path)
	}
	return w.handleFile(ctx, path)
}

// 📂 handleDir lists immediate children and recurses into each
func (w *Worker) handleDir(ctx context.Context, dir string) error {
	children, err := scan.ListTopLevel(ctx, dir)
	if err != nil {
		return err
	}

	var errs []error
	for _, child := range children {
		if err := w.HandlePath(ctx, child); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// 📄 handleFile copies one file unless its name is already transferred
func (w *Worker) handleFile(ctx context.Context, path string) error {
	logger := zerolog.Ctx(ctx)

	if w.ignored(path) {
		logger.Debug().Str("path", path).Msg("file ignored by pattern")
		w.skipped.Add(1)
		return nil
	}

	name := filepath.Base(path)
	if w.ledger.Has(name) {
		logger.Debug().Str("file", name).Msg("already transferred")
		w.skipped.Add(1)
		return nil
	}

	// same-name callers wait on one flight at a time. A flight that ran for
	// another path only settles this call when it succeeded; after a failure
	// this path gets a flight of its own.
	for {
		ran := false
		_, err, _ := w.group.Do(name, func() (any, error) {
			ran = true
			return nil, w.transfer(ctx, path, name)
		})
		if ran || err == nil {
			return err
		}
		logger.Debug().Err(err).Str("file", name).Str("path", path).Msg("in-flight transfer for this name failed, retrying with own path")
	}
}

// 🔍 ignored reports whether path matches an ignore pattern
func (w *Worker) ignored(path string) bool {
	if w.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(w.sourceDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return w.ignore.Match(filepath.ToSlash(rel))
}
