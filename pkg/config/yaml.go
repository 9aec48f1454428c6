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

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

func init() {
	Register(&YAMLParser{})
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML. Attributes absent from the file
// keep their built-in default.
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	type yamlConfig struct {
		Verbose   *bool   `yaml:"verbose"`
		Progress  *bool   `yaml:"progress"`
		Overwrite *bool   `yaml:"overwrite"`
		Fsync     *bool   `yaml:"fsync"`
		Generator *string `yaml:"generator"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, errors.Errorf("decoding YAML: %w", err)
	}

	cfg := Default()
	applyOverlay(cfg, overlay{
		Verbose:   yamlCfg.Verbose,
		Progress:  yamlCfg.Progress,
		Overwrite: yamlCfg.Overwrite,
		Fsync:     yamlCfg.Fsync,
		Generator: yamlCfg.Generator,
	})
	return cfg, nil
}
