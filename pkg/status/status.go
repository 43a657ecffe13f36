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

package status

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents where a source file stands
type FileStatus int

const (
	StatusUnknown     FileStatus = iota
	StatusPending                // Not yet in the transfer record
	StatusTransferred            // Name is in the transfer record
	StatusIgnored                // Matched an ignore pattern
	StatusMissing                // Recorded, but gone from the target directory
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusTransferred:
		return "transferred"
	case StatusIgnored:
		return "ignored"
	case StatusMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// 💾 FileManager writes into the target directory
type FileManager interface {
	// CopyFile copies src to <base>/<name>, replacing whatever is there
	CopyFile(ctx context.Context, src, name string) (int64, error)
	// FileExists reports whether <base>/<name> exists
	FileExists(ctx context.Context, name string) (bool, error)
}

// 🔧 Manager implements FileManager on the local filesystem
type Manager struct {
	baseDir string // Target directory for all operations
}

var _ FileManager = (*Manager)(nil)

// 🏭 NewManager creates a new target manager
func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir: filepath.Clean(baseDir),
	}
}

// Dir returns the target directory
func (m *Manager) Dir() string {
	return m.baseDir
}

// 🔒 getAbsPath returns the absolute path for a given name
func (m *Manager) getAbsPath(name string) string {
	return filepath.Join(m.baseDir, name)
}

// CopyFile streams src into a temp file in the target directory and renames
// it over the destination. Concurrent copies to one name each land whole;
// the last rename wins.
func (m *Manager) CopyFile(ctx context.Context, src, name string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Errorf("opening source file: %w", err)
	}
	defer srcFile.Close()

	if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
		return 0, errors.Errorf("creating target directory: %w", err)
	}

	tmp, err := os.CreateTemp(m.baseDir, "."+name+".*.tmp")
	if err != nil {
		return 0, errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, srcFile)
	if err != nil {
		cleanup()
		return 0, errors.Errorf("copying file content: %w", err)
	}

	if info, err := srcFile.Stat(); err == nil {
		if err := tmp.Chmod(info.Mode().Perm()); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("file", name).Msg("keeping default mode")
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, m.getAbsPath(name)); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return 0, errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("src", src).Str("dst", m.getAbsPath(name)).Int64("bytes", n).Msg("file copied")
	return n, nil
}

// FileExists reports whether name exists in the target directory
func (m *Manager) FileExists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(m.getAbsPath(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}
