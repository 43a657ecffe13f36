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

package config

import (
	"github.com/caarlos0/env/v11"
	"gitlab.com/tozd/go/errors"
)

// Environment variable names, matching the env tags on Document
const (
	EnvSourceDir      = "SOURCE_DIR"
	EnvTargetDir      = "TARGET_DIR"
	EnvRecordFile     = "RECORD_FILE"
	EnvLogFile        = "LOG_FILE"
	EnvLogLevel       = "LOG_LEVEL"
	EnvIgnorePatterns = "IGNORE_PATTERNS"
	EnvSettleDelay    = "SETTLE_DELAY"
)

// 🌱 applyEnv overlays environment values onto the document. A nil environ
// reads the process environment. Unset and empty variables leave the file
// value in place.
func (d *Document) applyEnv(environ map[string]string) error {
	if err := env.ParseWithOptions(d, env.Options{Environment: environ}); err != nil {
		return errors.Errorf("reading environment: %w", err)
	}
	return nil
}
