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

// Package scan enumerates the contents of the source directory.
package scan

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📂 ListTopLevel returns the immediate children of dir as full paths, in
// the order the filesystem reports them. Files and directories are both
// included.
func ListTopLevel(ctx context.Context, dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}
	defer f.Close()

	// Readdirnames keeps directory order, os.ReadDir would sort
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, name))
	}

	zerolog.Ctx(ctx).Trace().Str("dir", dir).Int("entries", len(paths)).Msg("listed directory")
	return paths, nil
}

// 🌲 Walk yields every regular file below root, depth first. An error for a
// single entry is yielded alongside its path and the walk continues; the
// consumer stops the walk by breaking out of the loop.
func Walk(ctx context.Context, root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var walk func(dir string) bool
		walk = func(dir string) bool {
			if err := ctx.Err(); err != nil {
				return yield(dir, err)
			}
			children, err := ListTopLevel(ctx, dir)
			if err != nil {
				return yield(dir, err)
			}
			for _, child := range children {
				info, err := os.Stat(child)
				if err != nil {
					if !yield(child, errors.Errorf("inspecting %s: %w", child, err)) {
						return false
					}
					continue
				}
				if info.IsDir() {
					if !walk(child) {
						return false
					}
					continue
				}
				if !info.Mode().IsRegular() {
					continue
				}
				if !yield(child, nil) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}

// 📁 Dirs returns root and every directory below it
func Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// a subtree vanished or is unreadable, keep the rest
			return nil
		}
		if entry.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", root, err)
	}
	return dirs, nil
}
