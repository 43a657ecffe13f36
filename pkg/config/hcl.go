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
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Document, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "copywatch.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// HOME is exposed so paths like "${env.HOME}/inbox" work
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(map[string]cty.Value{
				"HOME": cty.StringVal(homeDir()),
			}),
		},
	}

	type hclConfig struct {
		SourceDir      string   `hcl:"source_dir,optional"`
		TargetDir      string   `hcl:"target_dir,optional"`
		RecordFile     string   `hcl:"record_file,optional"`
		LogFile        string   `hcl:"log_file,optional"`
		LogLevel       string   `hcl:"log_level,optional"`
		IgnorePatterns []string `hcl:"ignore_patterns,optional"`
		SettleDelay    string   `hcl:"settle_delay,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &Document{
		SourceDir:      hclCfg.SourceDir,
		TargetDir:      hclCfg.TargetDir,
		RecordFile:     hclCfg.RecordFile,
		LogFile:        hclCfg.LogFile,
		LogLevel:       hclCfg.LogLevel,
		IgnorePatterns: hclCfg.IgnorePatterns,
		SettleDelay:    hclCfg.SettleDelay,
	}, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
