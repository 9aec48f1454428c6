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

package osmfile

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"github.com/walteh/osmcat/pkg/osm"
	"gitlab.com/tozd/go/errors"
)

// 📝 Writer accepts chunks in order and encodes them to one output file.
// The header is written at create time; Close flushes the trailer and
// returns total bytes written to disk.
type Writer struct {
	file    *os.File
	counter *countingWriter
	gz      *gzip.Writer
	enc     encoder
	fsync   bool
	closed  bool
}

type countingWriter struct {
	w io.Writer
	n atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}

// 📂 Create opens the output file and writes the header. Without the
// overwrite flag an existing file is refused rather than truncated.
func Create(path string, header *osm.Header, overwrite, fsync bool) (*Writer, error) {
	format, gzipped, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, errors.Errorf("opening output file: %w", err)
	}

	w := &Writer{file: file, fsync: fsync}
	w.counter = &countingWriter{w: file}
	var stream io.Writer = w.counter
	if gzipped {
		w.gz = gzip.NewWriter(stream)
		stream = w.gz
	}
	w.enc = newEncoder(format, stream)

	if err := w.enc.WriteHeader(header); err != nil {
		file.Close()
		return nil, errors.Errorf("writing header of '%s': %w", path, err)
	}
	return w, nil
}

// 📝 Write encodes one chunk. Ownership of the chunk transfers here; the
// caller must not touch it afterwards.
func (w *Writer) Write(chunk osm.Chunk) error {
	for _, o := range chunk {
		if err := w.enc.Write(o); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the trailer and compression stream, optionally fsyncs,
// and returns the total number of bytes written. Close is idempotent but
// only the first call reports an error.
func (w *Writer) Close() (int64, error) {
	if w.closed {
		return w.counter.n.Load(), nil
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		w.file.Close()
		return 0, err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			w.file.Close()
			return 0, errors.Errorf("closing gzip stream: %w", err)
		}
	}
	if w.fsync {
		if err := w.file.Sync(); err != nil {
			w.file.Close()
			return 0, errors.Errorf("syncing output file: %w", err)
		}
	}
	if err := w.file.Close(); err != nil {
		return 0, errors.Errorf("closing output file: %w", err)
	}
	return w.counter.n.Load(), nil
}
