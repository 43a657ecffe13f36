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
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎯 Logger is the user facing log capability. The watch pipeline only ever
// talks to this interface, never to a concrete sink.
type Logger interface {
	Log(msg string)
	Error(msg string)
	Warn(msg string)
	Info(msg string)
	// Trace covers both debug and trace output
	Trace(msg string)
}

// 🔌 Sink is a Logger that owns resources
type Sink interface {
	Logger
	io.Closer
}

// 🏭 New returns a File sink appending to path, or a Console sink on
// stdout/stderr when path is empty.
func New(path string, level zerolog.Level) Sink {
	if path == "" {
		return NewConsole(os.Stdout, os.Stderr, level)
	}
	return NewFile(path, os.Stderr, level)
}

// 🖥️ Console writes colored lines to the standard channels
type Console struct {
	stdout io.Writer
	stderr io.Writer
	level  zerolog.Level
	mu     sync.Mutex
}

var _ Sink = (*Console)(nil)

// 🏭 NewConsole creates a console logger. Log, Info and Trace go to stdout,
// Warn and Error go to stderr.
func NewConsole(stdout, stderr io.Writer, level zerolog.Level) *Console {
	return &Console{
		stdout: stdout,
		stderr: stderr,
		level:  level,
	}
}

func (c *Console) write(w io.Writer, level zerolog.Level, symbol string, attr color.Attribute, msg string) {
	if level < c.level {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(w, "%s %s\n", color.New(attr).Sprint(symbol), msg)
}

// 📝 Log logs a plain progress message
func (c *Console) Log(msg string) {
	c.write(c.stdout, zerolog.InfoLevel, "✓", color.FgGreen, msg)
}

// 📝 Error logs an error message
func (c *Console) Error(msg string) {
	c.write(c.stderr, zerolog.ErrorLevel, "❌", color.FgRed, msg)
}

// 📝 Warn logs a warning message
func (c *Console) Warn(msg string) {
	c.write(c.stderr, zerolog.WarnLevel, "⚠️ ", color.FgYellow, msg)
}

// 📝 Info logs an info message
func (c *Console) Info(msg string) {
	c.write(c.stdout, zerolog.InfoLevel, "ℹ️ ", color.FgCyan, msg)
}

// 📝 Trace logs a debug message
func (c *Console) Trace(msg string) {
	c.write(c.stdout, zerolog.DebugLevel, "·", color.Faint, msg)
}

// Close is a no-op, the standard channels are not ours to close
func (c *Console) Close() error {
	return nil
}

type discard struct{}

func (discard) Log(string)   {}
func (discard) Error(string) {}
func (discard) Warn(string)  {}
func (discard) Info(string)  {}
func (discard) Trace(string) {}
func (discard) Close() error { return nil }

// Discard drops every message
var Discard Sink = discard{}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) Logger {
	logger, ok := ctx.Value(contextKey{}).(Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}
