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

package operation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📦 transfer copies path to the target under name and records it. It runs
// inside the singleflight group for name.
func (w *Worker) transfer(ctx context.Context, path, name string) error {
	logger := zerolog.Ctx(ctx)

	// a previous flight for this name may have finished between the caller's
	// ledger check and entering the group
	if w.ledger.Has(name) {
		w.skipped.Add(1)
		return nil
	}

	n, err := w.target.CopyFile(ctx, path, name)
	if err != nil {
		w.failed.Add(1)
		return errors.Errorf("copying %s: %w", name, err)
	}

	if err := w.ledger.Record(ctx, name); err != nil {
		// the copy landed, so the name stays in memory and the next save
		// carries it
		w.failed.Add(1)
		return errors.Errorf("copied %s but could not save record: %w", name, err)
	}

	w.copied.Add(1)
	logger.Debug().Str("src", path).Str("file", name).Int64("bytes", n).Msg("transferred")
	w.logger.Log(fmt.Sprintf("Copied: %s", name))
	return nil
}
