// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package watch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/walteh/copywatch/pkg/config"
	"github.com/walteh/copywatch/pkg/log"
	"github.com/walteh/copywatch/pkg/operation"
	"github.com/walteh/copywatch/pkg/scan"
	"github.com/walteh/copywatch/pkg/state"
	"github.com/walteh/copywatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🚦 State is the lifecycle position of a Coordinator
type State int32

const (
	Starting State = iota
	BackfillInProgress
	Watching
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case BackfillInProgress:
		return "backfill"
	case Watching:
		return "watching"
	default:
		return "unknown"
	}
}

// ErrAlreadyRan is returned by a second call to Run
var ErrAlreadyRan = errors.Base("coordinator already ran")

// 👀 Coordinator runs the backlog pass and the live subscription for one
// source directory. A Coordinator is single use: Run may be called once.
type Coordinator struct {
	cfg    *config.Config
	logger log.Logger

	ran   atomic.Bool
	state atomic.Int32
	ready chan struct{}

	mu     sync.Mutex
	worker *operation.Worker

	handlers sync.WaitGroup
}

// 🏭 New creates a coordinator. It does no I/O until Run.
func New(cfg *config.Config, logger log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Discard
	}
	return &Coordinator{
		cfg:    cfg,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// State returns the current lifecycle state
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Ready is closed once the subscription is live and the backlog has been
// dispatched
func (c *Coordinator) Ready() <-chan struct{} {
	return c.ready
}

// Stats returns the transfer counters of the running worker
func (c *Coordinator) Stats() operation.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker == nil {
		return operation.Stats{}
	}
	return c.worker.Stats()
}

func (c *Coordinator) setState(ctx context.Context, s State) {
	prev := State(c.state.Swap(int32(s)))
	zerolog.Ctx(ctx).Debug().Stringer("from", prev).Stringer("to", s).Msg("coordinator state")
}

// 🏃 Run loads the ledger, subscribes to creations under the source tree,
// dispatches every pre-existing top-level entry and then serves events until
// ctx is cancelled. Only setup failures are returned; per-path failures are
// logged. On cancellation Run waits for in-flight handlers and returns nil.
// Any call after the first returns ErrAlreadyRan.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.ran.CompareAndSwap(false, true) {
		return errors.WithStack(ErrAlreadyRan)
	}
	logger := zerolog.Ctx(ctx)

	ledger := state.Load(ctx, c.cfg.RecordFile)

	ignore, err := scan.NewMatcher(c.cfg.IgnorePatterns)
	if err != nil {
		return err
	}

	worker, err := operation.New(operation.Options{
		SourceDir: c.cfg.SourceDir,
		Target:    status.NewManager(c.cfg.TargetDir),
		Ledger:    ledger,
		Logger:    c.logger,
		Ignore:    ignore,
	})
	if err != nil {
		return errors.Errorf("creating worker: %w", err)
	}
	c.mu.Lock()
	c.worker = worker
	c.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("creating watcher: %w", err)
	}

	// subscribe before listing so a file created in between is seen by at
	// least one of the two passes; the ledger absorbs the overlap
	if err := c.addTree(ctx, fw, c.cfg.SourceDir); err != nil {
		fw.Close()
		return errors.Errorf("watching %s: %w", c.cfg.SourceDir, err)
	}

	entries, err := scan.ListTopLevel(ctx, c.cfg.SourceDir)
	if err != nil {
		fw.Close()
		return err
	}

	// handlers outlive cancellation so a copy in flight is finished and
	// recorded rather than left half done
	handlerCtx := context.WithoutCancel(ctx)
	dispatch := func(path string) {
		c.handlers.Add(1)
		go func() {
			defer c.handlers.Done()
			c.handle(handlerCtx, worker, path)
		}()
	}

	c.setState(ctx, BackfillInProgress)
	logger.Debug().Int("entries", len(entries)).Int("recorded", ledger.Len()).Msg("dispatching backlog")
	for _, entry := range entries {
		dispatch(entry)
	}

	c.setState(ctx, Watching)
	c.logger.Info(fmt.Sprintf("Watching %s for new files...", c.cfg.SourceDir))
	close(c.ready)

	settle := newSettler(c.cfg.Settle)
	for {
		select {
		case <-ctx.Done():
			dropped := settle.stop()
			if err := fw.Close(); err != nil {
				logger.Debug().Err(err).Msg("closing watcher")
			}
			logger.Debug().Int("dropped", dropped).Msg("waiting for in-flight transfers")
			c.handlers.Wait()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				settle.stop()
				c.handlers.Wait()
				return errors.Errorf("watch subscription closed")
			}
			c.handleEvent(ctx, fw, settle, dispatch, event)

		case err, ok := <-fw.Errors:
			if !ok {
				continue
			}
			c.handleWatchError(ctx, fw, err, dispatch)
		}
	}
}

// ⚠️ handleWatchError reports a subscription error. An overflowed event queue
// means creations were lost, so the source tree is re-watched and its
// top-level entries dispatched again; the ledger skips what is already done.
func (c *Coordinator) handleWatchError(ctx context.Context, fw *fsnotify.Watcher, err error, dispatch func(string)) {
	if !errors.Is(err, fsnotify.ErrEventOverflow) {
		c.logger.Warn(fmt.Sprintf("Watcher error: %v", err))
		return
	}

	c.logger.Warn(fmt.Sprintf("Watcher overflowed, rescanning %s", c.cfg.SourceDir))
	if err := c.addTree(ctx, fw, c.cfg.SourceDir); err != nil {
		c.logger.Warn(fmt.Sprintf("Could not watch %s: %v", c.cfg.SourceDir, err))
	}

	entries, err := scan.ListTopLevel(ctx, c.cfg.SourceDir)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Rescan of %s failed: %v", c.cfg.SourceDir, err))
		return
	}
	zerolog.Ctx(ctx).Debug().Int("entries", len(entries)).Msg("dispatching rescan")
	for _, entry := range entries {
		dispatch(entry)
	}
}

// 📨 handleEvent reacts to one raw filesystem event
func (c *Coordinator) handleEvent(ctx context.Context, fw *fsnotify.Watcher, settle *settler, dispatch func(string), event fsnotify.Event) {
	logger := zerolog.Ctx(ctx)

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// files written into the new directory before its watch exists
			// are picked up when the directory itself is handled
			if err := c.addTree(ctx, fw, event.Name); err != nil {
				c.logger.Warn(fmt.Sprintf("Could not watch %s: %v", event.Name, err))
			}
		}
		logger.Trace().Str("path", event.Name).Msg("created")
		settle.schedule(event.Name, dispatch)

	case event.Has(fsnotify.Write):
		if settle.touch(event.Name) {
			logger.Trace().Str("path", event.Name).Msg("still being written")
		}
	}
}

// 🔄 handle runs the worker for one path and logs the outcome
func (c *Coordinator) handle(ctx context.Context, worker *operation.Worker, path string) {
	err := worker.HandlePath(ctx, path)
	if err == nil {
		return
	}
	if errors.Is(err, operation.ErrNotFound) {
		c.logger.Warn(fmt.Sprintf("Skipped %s: %v", path, err))
		return
	}
	c.logger.Error(fmt.Sprintf("Failed to transfer %s: %v", path, err))
}

// 🌲 addTree watches dir and every directory below it. Only a failure on
// dir itself is returned.
func (c *Coordinator) addTree(ctx context.Context, fw *fsnotify.Watcher, dir string) error {
	dirs, err := scan.Dirs(dir)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			if d == dir {
				return errors.Errorf("adding watch: %w", err)
			}
			c.logger.Warn(fmt.Sprintf("Could not watch %s: %v", d, err))
			continue
		}
		zerolog.Ctx(ctx).Debug().Str("dir", d).Msg("watch added")
	}
	return nil
}
