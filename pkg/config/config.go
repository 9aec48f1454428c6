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

// Package config loads the optional osmcat defaults file. The file only
// provides defaults; command-line flags always win. Both HCL and YAML
// syntaxes are supported through a pluggable parser registry.
package config

import (
	"context"
	"os"

	"gitlab.com/tozd/go/errors"
)

// ⚙️ Config holds run defaults an `.osmcat.hcl` or `.osmcat.yaml` file
// may provide
type Config struct {
	Verbose   bool   // verbose run commentary
	Progress  bool   // display the progress bar
	Overwrite bool   // allow overwriting existing output files
	Fsync     bool   // fsync outputs on close
	Generator string // generator string for output headers
}

// Default returns the configuration used when no defaults file exists
func Default() *Config {
	return &Config{
		Progress: true,
	}
}

// defaultFiles are probed in order when no --config flag is given
var defaultFiles = []string{".osmcat.hcl", ".osmcat.yaml", ".osmcat.yml"}

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of registered parsers
var parsers []Parser

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

// 📂 Load reads the defaults file. With an empty path the well-known
// names are probed in the working directory; a missing file is not an
// error, it just yields the built-in defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		for _, candidate := range defaultFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return Default(), nil
		}
	}

	parser := GetParser(path)
	if parser == nil {
		return nil, errors.Errorf("no parser for config file '%s'", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := parser.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config file '%s': %w", path, err)
	}
	return cfg, nil
}
