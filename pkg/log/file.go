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

package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"gitlab.com/tozd/go/errors"
)

const (
	fileQueueSize    = 1024
	filePollInterval = 10 * time.Millisecond
)

// closeTimeout bounds how long Close waits for queued lines to reach disk
var closeTimeout = 2 * time.Second

// 📄 File appends one line per message to a log file. Lines go through a
// zerolog diode, so callers never wait on disk: when the queue is full the
// oldest lines are dropped and the drop is reported to the fallback writer.
// A failed append is reported to the fallback writer and otherwise ignored.
type File struct {
	fallback io.Writer
	level    zerolog.Level

	mu     sync.RWMutex
	closed bool
	diode  diode.Writer
}

var _ Sink = (*File)(nil)

// 🏭 NewFile starts a file logger. Call Close to flush pending lines.
func NewFile(path string, fallback io.Writer, level zerolog.Level) *File {
	out := &appendWriter{path: path, fallback: fallback}
	return &File{
		fallback: fallback,
		level:    level,
		diode: diode.NewWriter(out, fileQueueSize, filePollInterval, func(missed int) {
			fmt.Fprintf(fallback, "log file dropped %d line(s)\n", missed)
		}),
	}
}

// appendWriter reopens the file for every line so external rotation is
// picked up. It only ever runs on the diode's reader goroutine.
type appendWriter struct {
	path     string
	fallback io.Writer
}

func (a *appendWriter) Write(p []byte) (int, error) {
	if err := appendLine(a.path, p); err != nil {
		fmt.Fprintf(a.fallback, "appending to log file: %v\n", err)
	}
	return len(p), nil
}

func appendLine(path string, line []byte) error {
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Errorf("opening %s: %w", path, err)
	}
	if _, err := fh.Write(line); err != nil {
		fh.Close()
		return errors.Errorf("writing %s: %w", path, err)
	}
	if err := fh.Close(); err != nil {
		return errors.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func (f *File) enqueue(level zerolog.Level, msg string) {
	if level < f.level {
		return
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		fmt.Fprintln(f.fallback, msg)
		return
	}
	// never blocks
	_, _ = f.diode.Write([]byte(msg + "\n"))
}

func (f *File) Log(msg string)   { f.enqueue(zerolog.InfoLevel, msg) }
func (f *File) Error(msg string) { f.enqueue(zerolog.ErrorLevel, msg) }
func (f *File) Warn(msg string)  { f.enqueue(zerolog.WarnLevel, msg) }
func (f *File) Info(msg string)  { f.enqueue(zerolog.InfoLevel, msg) }
func (f *File) Trace(msg string) { f.enqueue(zerolog.DebugLevel, msg) }

// 🛑 Close stops accepting lines and waits until queued lines are written,
// giving up after closeTimeout when the file does not accept them. Messages
// logged after Close go to the fallback writer.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- f.diode.Close() }()

	select {
	case err := <-done:
		return err
	case <-time.After(closeTimeout):
		return errors.Errorf("log file still blocked after %s, pending lines abandoned", closeTimeout)
	}
}
