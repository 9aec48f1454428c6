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

// Package operation implements the cat run: one or more OSM inputs
// streamed through the copy-and-clean transform into a single output.
package operation

import (
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/osmcat/pkg/log"
	"github.com/walteh/osmcat/pkg/osm"
	"github.com/walteh/osmcat/pkg/osm/osmfile"
	"gitlab.com/tozd/go/errors"
)

// ⚙️ Options configures one cat run. Built once at setup, immutable
// during the run.
type Options struct {
	Inputs    []string         // input paths, may contain glob patterns
	Output    string           // output path, format derived from extension
	Types     osm.EntityTypes  // entity kinds the readers will yield
	Clean     osm.CleanAttrs   // metadata attributes to reset while copying
	Overwrite bool             // allow replacing an existing output file
	Fsync     bool             // fsync the output on close
	Generator string           // generator string stamped into the output header
	Logger    *log.RunLogger   // run commentary and progress, never nil after New
}

// 📦 CatOperation is the run orchestrator
type CatOperation struct {
	opts Options
}

// 🏭 New validates the options eagerly, before any file is opened:
// glob patterns are expanded, file formats are resolved from extensions,
// and an empty input list is rejected. Nothing here touches the output.
func New(opts Options) (*CatOperation, error) {
	if opts.Output == "" {
		return nil, errors.New("no output file given")
	}
	if len(opts.Inputs) == 0 {
		return nil, errors.New("no input files given")
	}
	if opts.Types == 0 {
		opts.Types = osm.AllEntities
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, zerolog.Nop(), false, false)
	}

	inputs, err := expandInputs(opts.Inputs)
	if err != nil {
		return nil, err
	}
	opts.Inputs = inputs

	for _, in := range opts.Inputs {
		if _, _, err := osmfile.DetectFormat(in); err != nil {
			return nil, err
		}
	}
	if _, _, err := osmfile.DetectFormat(opts.Output); err != nil {
		return nil, err
	}

	return &CatOperation{opts: opts}, nil
}

// expandInputs resolves glob patterns against the filesystem, keeping the
// command-line order. A pattern matching nothing is a setup error.
func expandInputs(patterns []string) ([]string, error) {
	var inputs []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			inputs = append(inputs, pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, errors.Errorf("invalid input pattern '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("input pattern '%s' matches no files", pattern)
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

// 📋 ShowArguments echoes the effective configuration to the verbose log
func (op *CatOperation) ShowArguments() {
	l := op.opts.Logger
	l.Verbose("  input files:")
	for _, in := range op.opts.Inputs {
		format, gzipped, _ := osmfile.DetectFormat(in)
		suffix := ""
		if gzipped {
			suffix = " (gzip)"
		}
		l.Verbosef("    %s [%s%s]", in, format, suffix)
	}
	l.Verbosef("  output file: %s", op.opts.Output)
	l.Verbosef("    overwrite: %v", op.opts.Overwrite)
	l.Verbosef("    fsync: %v", op.opts.Fsync)
	l.Verbose("  other options:")
	l.Verbosef("    object types: %s", op.opts.Types)
	l.Verbosef("    attributes to clean: %s", op.opts.Clean)
}
