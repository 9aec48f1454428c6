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

// Package log provides the run logger: verbose console commentary, a
// structured zerolog mirror, and the byte-progress bar. It is passed as
// an explicit handle instead of living in process-wide state.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎯 RunLogger carries all user-facing output of one command run
type RunLogger struct {
	console  io.Writer
	zlog     zerolog.Logger
	verbose  bool
	progress bool
	mu       sync.Mutex
}

// 🏭 New creates a run logger writing console output to the given writer
func New(console io.Writer, zlog zerolog.Logger, verbose, progress bool) *RunLogger {
	return &RunLogger{
		console:  console,
		zlog:     zlog,
		verbose:  verbose,
		progress: progress,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the run logger from context
func FromContext(ctx context.Context) *RunLogger {
	logger, ok := ctx.Value(contextKey{}).(*RunLogger)
	if !ok {
		panic("run logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the run logger to context
func NewContext(ctx context.Context, l *RunLogger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 Verbose prints one line of run commentary when verbose output is on.
// Every line is mirrored to zerolog at debug level regardless.
func (l *RunLogger) Verbose(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.verbose {
		fmt.Fprintf(l.console, "%s %s\n", color.New(color.Faint).Sprint("[osmcat]"), msg)
	}
	l.zlog.Debug().Msg(msg)
}

// 📝 Verbosef prints a formatted line of run commentary
func (l *RunLogger) Verbosef(format string, args ...any) {
	l.Verbose(fmt.Sprintf(format, args...))
}

// 📊 Progress tracks byte progress across one or more input files. The
// expected total is fixed up front; Update reports the absolute offset
// within the current file, FileDone folds a finished file into the base.
type Progress struct {
	bar     *pterm.ProgressbarPrinter
	base    int64
	current int64
}

// 📊 StartProgress begins a progress bar over the expected total bytes.
// With progress display off (or a zero total) it degrades to a counter
// that still tracks totals but draws nothing.
func (l *RunLogger) StartProgress(total int64) *Progress {
	p := &Progress{}
	if !l.progress || total <= 0 {
		return p
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(int(total)).
		WithWriter(l.console).
		WithShowCount(false).
		WithTitle("copying").
		Start()
	if err != nil {
		l.zlog.Warn().Err(err).Msg("cannot start progress bar")
		return p
	}
	p.bar = bar
	return p
}

// Update advances the bar to base plus the given in-file offset
func (p *Progress) Update(offset int64) {
	abs := p.base + offset
	if abs <= p.current {
		return
	}
	if p.bar != nil {
		p.bar.Add(int(abs - p.current))
	}
	p.current = abs
}

// FileDone marks one input as fully consumed, whatever its last offset was
func (p *Progress) FileDone(size int64) {
	p.base += size
	if p.base > p.current {
		if p.bar != nil {
			p.bar.Add(int(p.base - p.current))
		}
		p.current = p.base
	}
}

// Done stops the bar. Safe to call more than once; only the first call
// stops anything.
func (p *Progress) Done() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
