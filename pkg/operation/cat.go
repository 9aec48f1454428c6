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
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/walteh/osmcat/pkg/log"
	"github.com/walteh/osmcat/pkg/osm"
	"github.com/walteh/osmcat/pkg/osm/osmfile"
	"gitlab.com/tozd/go/errors"
)

func newDefaultHeader(generator string) *osm.Header {
	header := osm.NewHeader()
	header.Generator = generator
	return header
}

// 🏃 Execute runs the cat operation: every object of every input, in
// input order, forwarded to the output with the configured attributes
// cleaned. The first error aborts the run; no Done marker is emitted then.
func (op *CatOperation) Execute(ctx context.Context) error {
	l := op.opts.Logger
	progress := l.StartProgress(inputSizeSum(op.opts.Inputs))
	// on success the bar is stopped before the summary lines; the defer
	// covers the error returns so no live bar outlives the run
	defer progress.Done()

	var written int64
	if len(op.opts.Inputs) == 1 {
		// single input: its header carries over to the output
		input := op.opts.Inputs[0]
		reader, err := osmfile.Open(ctx, input, op.opts.Types)
		if err != nil {
			return err
		}
		defer reader.Close()
		l.Verbosef("Copying input file '%s' (%s)", input, humanize.Bytes(uint64(reader.FileSize())))

		header := reader.Header().Clone()
		if op.opts.Generator != "" {
			header.Generator = op.opts.Generator
		}
		writer, err := osmfile.Create(op.opts.Output, header, op.opts.Overwrite, op.opts.Fsync)
		if err != nil {
			return err
		}
		if err := op.copy(progress, reader, writer); err != nil {
			writer.Close()
			return errors.Errorf("copying '%s': %w", input, err)
		}
		progress.Done()
		written, err = writer.Close()
		if err != nil {
			return err
		}
	} else {
		// multiple inputs: headers may conflict across files, so the
		// output gets a default header instead of any input's
		header := newDefaultHeader(op.opts.Generator)
		writer, err := osmfile.Create(op.opts.Output, header, op.opts.Overwrite, op.opts.Fsync)
		if err != nil {
			return err
		}
		for _, input := range op.opts.Inputs {
			reader, err := osmfile.Open(ctx, input, op.opts.Types)
			if err != nil {
				writer.Close()
				return err
			}
			l.Verbosef("Copying input file '%s' (%s)", input, humanize.Bytes(uint64(reader.FileSize())))
			if err := op.copy(progress, reader, writer); err != nil {
				reader.Close()
				writer.Close()
				return errors.Errorf("copying '%s': %w", input, err)
			}
			progress.FileDone(reader.FileSize())
			reader.Close()
		}
		written, err = writer.Close()
		if err != nil {
			return err
		}
		progress.Done()
	}

	if written > 0 {
		l.Verbosef("Wrote %s bytes.", humanize.Comma(written))
	}
	l.Verbose("Done.")
	return nil
}

// copy is the copy-and-clean transform: chunks flow from reader to writer
// in order, mutated in place when any clean attribute is set. It performs
// no I/O of its own; reader and writer errors pass through unchanged.
func (op *CatOperation) copy(progress *log.Progress, reader *osmfile.Reader, writer *osmfile.Writer) error {
	for {
		chunk, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		progress.Update(reader.Offset())
		op.opts.Clean.ApplyChunk(chunk)
		if err := writer.Write(chunk); err != nil {
			return err
		}
	}
}

// inputSizeSum precomputes the expected progress total. Inputs that
// cannot be stat'ed contribute nothing; the open will fail properly later.
func inputSizeSum(inputs []string) int64 {
	var total int64
	for _, in := range inputs {
		if info, err := os.Stat(in); err == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
	}
	return total
}
