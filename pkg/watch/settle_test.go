package watch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fired struct {
	mu    sync.Mutex
	paths []string
}

func (f *fired) fire(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

func (f *fired) get() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func TestSettlerImmediate(t *testing.T) {
	s := newSettler(0)
	f := &fired{}

	s.schedule("a", f.fire)
	s.schedule("a", f.fire)
	assert.Equal(t, []string{"a", "a"}, f.get(), "no delay fires every time, synchronously")
	assert.False(t, s.touch("a"))
}

func TestSettlerCollapsesBursts(t *testing.T) {
	s := newSettler(30 * time.Millisecond)
	f := &fired{}

	s.schedule("a", f.fire)
	s.schedule("a", f.fire)
	s.schedule("b", f.fire)
	assert.Empty(t, f.get())

	assert.Eventually(t, func() bool { return len(f.get()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"a", "b"}, f.get())

	// nothing else is pending
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, f.get(), 2)
}

func TestSettlerTouchDelays(t *testing.T) {
	s := newSettler(100 * time.Millisecond)
	f := &fired{}

	start := time.Now()
	s.schedule("a", f.fire)
	for range 4 {
		time.Sleep(20 * time.Millisecond)
		require.True(t, s.touch("a"))
	}

	assert.Eventually(t, func() bool { return len(f.get()) == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond, "writes should keep pushing the flush out")
	assert.False(t, s.touch("a"), "flushed paths are no longer pending")
}

func TestSettlerStop(t *testing.T) {
	s := newSettler(20 * time.Millisecond)
	f := &fired{}

	s.schedule("a", f.fire)
	s.schedule("b", f.fire)
	assert.Equal(t, 2, s.stop())

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, f.get())

	s.schedule("c", f.fire)
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, f.get(), "a stopped settler never fires")
}
