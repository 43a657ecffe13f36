//go:build unix

package log

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStuckAppendDoesNotBlockCallers(t *testing.T) {
	// opening a fifo for writing blocks until a reader shows up, so every
	// append stalls
	path := filepath.Join(t.TempDir(), "copywatch.fifo")
	require.NoError(t, syscall.Mkfifo(path, 0o644))

	prev := closeTimeout
	closeTimeout = 100 * time.Millisecond
	t.Cleanup(func() { closeTimeout = prev })

	logger := NewFile(path, io.Discard, zerolog.InfoLevel)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range fileQueueSize * 2 {
			logger.Info("Copied: a.txt")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("logging blocked the caller while the file was stuck")
	}

	closed := make(chan error, 1)
	go func() { closed <- logger.Close() }()
	select {
	case err := <-closed:
		assert.Error(t, err, "close should give up on a stuck file")
	case <-time.After(2 * time.Second):
		t.Fatal("close blocked on a stuck file")
	}

	// release the stalled append so the reader goroutine can exit
	if r, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0); err == nil {
		t.Cleanup(func() { r.Close() })
	}
}
