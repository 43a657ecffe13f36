package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Ledger is the durable set of file base names that have already been
// copied to the target directory. A name is only ever added after its copy
// succeeded, and the whole set is written back after every addition.
type Ledger struct {
	path   string
	lock   *flock.Flock
	saveMu sync.Mutex

	mu    sync.RWMutex
	names map[string]struct{}
}

// Load reads the record file at path. A missing or unparsable record is not
// an error, it only means there is no prior history.
func Load(ctx context.Context, path string) *Ledger {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading transfer record")

	l := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("no transfer record, starting empty")
		return l
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("unparsable transfer record, starting empty")
		return l
	}

	for _, name := range names {
		l.names[name] = struct{}{}
	}

	logger.Debug().Int("names", len(l.names)).Msg("transfer record loaded")
	return l
}

// New returns an empty ledger persisted at path
func New(path string) *Ledger {
	return &Ledger{
		path:  path,
		lock:  flock.New(path + ".lock"),
		names: make(map[string]struct{}),
	}
}

// Path returns the record file location
func (l *Ledger) Path() string {
	return l.path
}

// Has reports whether name was already transferred
func (l *Ledger) Has(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.names[name]
	return ok
}

// Add inserts name and reports whether it was new
func (l *Ledger) Add(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.names[name]; ok {
		return false
	}
	l.names[name] = struct{}{}
	return true
}

// Len returns the number of recorded names
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names)
}

// Names returns the recorded names in sorted order
func (l *Ledger) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.names))
	for name := range l.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Record adds name and persists the ledger. It is called once per successful
// copy.
func (l *Ledger) Record(ctx context.Context, name string) error {
	l.Add(name)
	if err := l.Save(ctx); err != nil {
		return errors.Errorf("recording %s: %w", name, err)
	}
	return nil
}

// Save writes the full set as a JSON array. The file is written next to the
// record and renamed over it, so readers see either the old or the new
// record and never a partial one. Saves are serialized in-process and,
// through the lock file, across processes sharing one record.
func (l *Ledger) Save(ctx context.Context) error {
	l.saveMu.Lock()
	defer l.saveMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Errorf("creating record directory: %w", err)
	}

	if err := l.lock.Lock(); err != nil {
		return errors.Errorf("locking transfer record: %w", err)
	}
	defer func() {
		if err := l.lock.Unlock(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", l.path).Msg("unlocking transfer record")
		}
	}()

	// snapshot under the lock so a later save always carries every earlier name
	names := l.Names()
	data, err := json.Marshal(names)
	if err != nil {
		return errors.Errorf("encoding transfer record: %w", err)
	}

	if err := writeFileAtomic(l.path, data); err != nil {
		return errors.Errorf("writing transfer record: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", l.path).Int("names", len(names)).Msg("transfer record saved")
	return nil
}

// Reset forgets every name and removes the record file
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	l.names = make(map[string]struct{})
	l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("removing transfer record: %w", err)
	}
	if err := os.Remove(l.path + ".lock"); err != nil && !errors.Is(err, os.ErrNotExist) {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("removing transfer record lock")
	}

	zerolog.Ctx(ctx).Debug().Str("path", l.path).Msg("transfer record reset")
	return nil
}

func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
