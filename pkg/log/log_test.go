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
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(buf *bytes.Buffer) []string {
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	res := strings.Split(out, "\n")
	for i := range res {
		res[i] = strings.TrimSpace(res[i])
	}
	return res
}

func TestConsole(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name       string
		level      zerolog.Level
		op         func(l Logger)
		wantStdout []string
		wantStderr []string
	}{
		{
			name:  "log_messages",
			level: zerolog.InfoLevel,
			op: func(l Logger) {
				l.Log("Copied: a.txt")
				l.Info("info message")
				l.Warn("warning message")
				l.Error("error message")
			},
			wantStdout: []string{
				"✓ Copied: a.txt",
				"ℹ️  info message",
			},
			wantStderr: []string{
				"⚠️  warning message",
				"❌ error message",
			},
		},
		{
			name:  "trace_hidden_at_info",
			level: zerolog.InfoLevel,
			op: func(l Logger) {
				l.Trace("detected new file")
			},
		},
		{
			name:  "trace_shown_at_debug",
			level: zerolog.DebugLevel,
			op: func(l Logger) {
				l.Trace("detected new file")
			},
			wantStdout: []string{
				"· detected new file",
			},
		},
		{
			name:  "errors_only",
			level: zerolog.ErrorLevel,
			op: func(l Logger) {
				l.Log("Copied: a.txt")
				l.Warn("warning message")
				l.Error("error message")
			},
			wantStderr: []string{
				"❌ error message",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			logger := NewConsole(stdout, stderr, tt.level)

			tt.op(logger)

			assert.Equal(t, tt.wantStdout, lines(stdout), "stdout lines should match")
			assert.Equal(t, tt.wantStderr, lines(stderr), "stderr lines should match")
			assert.NoError(t, logger.Close())
		})
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copywatch.log")
	fallback := &bytes.Buffer{}

	logger := NewFile(path, fallback, zerolog.InfoLevel)
	logger.Log("Copied: a.txt")
	logger.Warn("slow disk")
	logger.Error("Error copying file: boom")
	logger.Trace("hidden")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err, "reading log file should succeed")
	assert.Equal(t, "Copied: a.txt\nslow disk\nError copying file: boom\n", string(content))
	assert.Empty(t, fallback.String(), "nothing should reach the fallback")
}

func TestFileAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "copywatch.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0o644))

	logger := NewFile(path, io.Discard, zerolog.InfoLevel)
	logger.Info("later")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier\nlater\n", string(content))
}

func TestFileAppendFailureGoesToFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "copywatch.log")
	fallback := &bytes.Buffer{}

	logger := NewFile(path, fallback, zerolog.InfoLevel)
	logger.Log("Copied: a.txt")
	require.NoError(t, logger.Close())

	assert.Contains(t, fallback.String(), "appending to log file")
	assert.NoFileExists(t, path)
}

func TestFileAfterClose(t *testing.T) {
	fallback := &bytes.Buffer{}
	logger := NewFile(filepath.Join(t.TempDir(), "copywatch.log"), fallback, zerolog.InfoLevel)
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close(), "closing twice should be safe")

	logger.Info("late message")
	assert.Equal(t, "late message\n", fallback.String())
}

func TestNew(t *testing.T) {
	console := New("", zerolog.InfoLevel)
	assert.IsType(t, &Console{}, console)

	file := New(filepath.Join(t.TempDir(), "copywatch.log"), zerolog.InfoLevel)
	assert.IsType(t, &File{}, file)
	assert.NoError(t, file.Close())
}

func TestLoggerContext(t *testing.T) {
	logger := NewConsole(io.Discard, io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)

	got := FromContext(ctx)
	assert.Same(t, logger, got, "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}
