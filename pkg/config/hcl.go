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
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. Attributes absent from the file
// keep their built-in default.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	type hclConfig struct {
		Verbose   *bool   `hcl:"verbose,optional"`
		Progress  *bool   `hcl:"progress,optional"`
		Overwrite *bool   `hcl:"overwrite,optional"`
		Fsync     *bool   `hcl:"fsync,optional"`
		Generator *string `hcl:"generator,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := Default()
	applyOverlay(cfg, overlay{
		Verbose:   hclCfg.Verbose,
		Progress:  hclCfg.Progress,
		Overwrite: hclCfg.Overwrite,
		Fsync:     hclCfg.Fsync,
		Generator: hclCfg.Generator,
	})
	return cfg, nil
}

// overlay carries the optional fields a config file may set
type overlay struct {
	Verbose   *bool
	Progress  *bool
	Overwrite *bool
	Fsync     *bool
	Generator *string
}

func applyOverlay(cfg *Config, o overlay) {
	if o.Verbose != nil {
		cfg.Verbose = *o.Verbose
	}
	if o.Progress != nil {
		cfg.Progress = *o.Progress
	}
	if o.Overwrite != nil {
		cfg.Overwrite = *o.Overwrite
	}
	if o.Fsync != nil {
		cfg.Fsync = *o.Fsync
	}
	if o.Generator != nil {
		cfg.Generator = *o.Generator
	}
}
