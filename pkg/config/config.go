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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultRecordFile is used when RECORD_FILE is not set
	DefaultRecordFile = "transfers.json"
	// DefaultSettle is how long a new path must stay quiet before it is copied
	DefaultSettle = 100 * time.Millisecond
)

// 🔌 Parser is the interface for config file parsers
type Parser interface {
	// 📝 Parse parses the config document from bytes
	Parse(ctx context.Context, data []byte) (*Document, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📄 Document is the raw, unvalidated shape of a config file. Every field is
// optional; the environment fills or overrides what the file leaves out.
type Document struct {
	SourceDir      string   `json:"source_dir,omitempty" yaml:"source_dir,omitempty" env:"SOURCE_DIR"`
	TargetDir      string   `json:"target_dir,omitempty" yaml:"target_dir,omitempty" env:"TARGET_DIR"`
	RecordFile     string   `json:"record_file,omitempty" yaml:"record_file,omitempty" env:"RECORD_FILE"`
	LogFile        string   `json:"log_file,omitempty" yaml:"log_file,omitempty" env:"LOG_FILE"`
	LogLevel       string   `json:"log_level,omitempty" yaml:"log_level,omitempty" env:"LOG_LEVEL"`
	IgnorePatterns []string `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" env:"IGNORE_PATTERNS" envSeparator:","`
	SettleDelay    string   `json:"settle_delay,omitempty" yaml:"settle_delay,omitempty" env:"SETTLE_DELAY"`
}

// 📚 Config is read once at startup and never mutated afterwards
type Config struct {
	SourceDir      string
	TargetDir      string
	RecordFile     string
	LogFile        string
	LogLevel       zerolog.Level
	IgnorePatterns []string
	Settle         time.Duration
}

// ❌ Error reports missing or invalid configuration
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// 🎯 Load builds the configuration from an optional config file and the
// environment. Environment values win over file values. An empty path skips
// the file and a nil environ reads the process environment.
func Load(ctx context.Context, path string, environ map[string]string) (*Config, error) {
	doc := &Document{}
	if path != "" {
		var err error
		doc, err = LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	if err := doc.applyEnv(environ); err != nil {
		return nil, err
	}

	cfg, err := doc.Config()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("configuration loaded")

	return cfg, nil
}

// 📂 LoadFile parses a config file, picking the parser by file extension
func LoadFile(ctx context.Context, path string) (*Document, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading configuration file")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	doc, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return doc, nil
}

// 🔄 Config converts the document into a typed Config, applying defaults
func (d *Document) Config() (*Config, error) {
	cfg := &Config{
		SourceDir:      strings.TrimSpace(d.SourceDir),
		TargetDir:      strings.TrimSpace(d.TargetDir),
		RecordFile:     strings.TrimSpace(d.RecordFile),
		LogFile:        strings.TrimSpace(d.LogFile),
		LogLevel:       zerolog.InfoLevel,
		IgnorePatterns: trimList(d.IgnorePatterns),
		Settle:         DefaultSettle,
	}

	if cfg.RecordFile == "" {
		cfg.RecordFile = DefaultRecordFile
	}

	if d.LogLevel != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(d.LogLevel))
		if err != nil {
			return nil, &Error{Field: EnvLogLevel, Reason: fmt.Sprintf("is not a log level: %q", d.LogLevel)}
		}
		cfg.LogLevel = level
	}

	if d.SettleDelay != "" {
		settle, err := time.ParseDuration(d.SettleDelay)
		if err != nil {
			return nil, &Error{Field: EnvSettleDelay, Reason: fmt.Sprintf("is not a duration: %q", d.SettleDelay)}
		}
		cfg.Settle = settle
	}

	return cfg, nil
}

// 🔍 Validate checks that the configuration can drive a watch
func (cfg *Config) Validate() error {
	if cfg.SourceDir == "" {
		return &Error{Field: EnvSourceDir, Reason: "is required"}
	}
	if cfg.TargetDir == "" {
		return &Error{Field: EnvTargetDir, Reason: "is required"}
	}
	if cfg.Settle < 0 {
		return &Error{Field: EnvSettleDelay, Reason: "must not be negative"}
	}
	for _, pattern := range cfg.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return &Error{Field: EnvIgnorePatterns, Reason: fmt.Sprintf("has an invalid pattern: %q", pattern)}
		}
	}

	cfg.SourceDir = filepath.Clean(cfg.SourceDir)
	cfg.TargetDir = filepath.Clean(cfg.TargetDir)

	inside, err := within(cfg.SourceDir, cfg.TargetDir)
	if err != nil {
		return errors.Errorf("resolving directories: %w", err)
	}
	if inside {
		return &Error{Field: EnvTargetDir, Reason: "must not be inside " + EnvSourceDir}
	}

	return nil
}

// within reports whether dir is root or lives below it
func within(root, dir string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, errors.Errorf("absolute path of %s: %w", root, err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false, errors.Errorf("absolute path of %s: %w", dir, err)
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil {
		return false, nil
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (record: %s)", cfg.SourceDir, cfg.TargetDir, cfg.RecordFile)
}

// trimList drops blank entries, so "a, b,," yields [a b]
func trimList(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
