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
	"context"
	"io"
	"os"
	"sync/atomic"

	"github.com/klauspost/compress/gzip"
	"github.com/walteh/osmcat/pkg/osm"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📖 Reader yields chunks of decoded objects from one OSM file. Decoding
// runs in a background goroutine feeding a channel, so Read stays a
// blocking sequential call for the consumer. The entity-type mask is
// fixed at open time; filtered kinds never reach the consumer.
type Reader struct {
	file    *os.File
	size    int64
	counter *countingReader
	gz      *gzip.Reader
	header  *osm.Header
	chunks  chan osm.Chunk
	group   *errgroup.Group
	cancel  context.CancelFunc
	closed  bool
}

// countingReader tracks bytes consumed from the underlying file. The
// decode goroutine advances it while the orchestrator polls Offset, so
// the counter is atomic.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// 📂 Open opens an OSM file for sequential reading. The header is decoded
// before Open returns.
func Open(ctx context.Context, path string, types osm.EntityTypes) (*Reader, error) {
	format, gzipped, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening input file: %w", err)
	}

	r := &Reader{file: file}
	if info, err := file.Stat(); err == nil && info.Mode().IsRegular() {
		r.size = info.Size()
	}

	r.counter = &countingReader{r: file}
	var stream io.Reader = r.counter
	if gzipped {
		gz, err := gzip.NewReader(stream)
		if err != nil {
			file.Close()
			return nil, errors.Errorf("opening gzip stream of '%s': %w", path, err)
		}
		r.gz = gz
		stream = gz
	}

	dec := newDecoder(format, stream, types)
	header, err := dec.ReadHeader()
	if err != nil {
		r.closeStreams()
		return nil, errors.Errorf("reading header of '%s': %w", path, err)
	}
	r.header = header

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.chunks = make(chan osm.Chunk, 1)
	r.group, ctx = errgroup.WithContext(ctx)
	r.group.Go(func() error {
		defer close(r.chunks)
		for {
			chunk, err := dec.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case r.chunks <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	return r, nil
}

// Header returns the file-level metadata decoded at open time
func (r *Reader) Header() *osm.Header {
	return r.header
}

// FileSize returns the on-disk size of the input, 0 for non-regular files
func (r *Reader) FileSize() int64 {
	return r.size
}

// Offset returns the number of bytes consumed so far. Monotone; used only
// for progress reporting.
func (r *Reader) Offset() int64 {
	return r.counter.n.Load()
}

// 📖 Read returns the next chunk, or io.EOF once the input is exhausted.
// Any decode error surfaces here unchanged.
func (r *Reader) Read() (osm.Chunk, error) {
	chunk, ok := <-r.chunks
	if !ok {
		if err := r.group.Wait(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return chunk, nil
}

// Close stops the decode goroutine and releases the file handle
func (r *Reader) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.cancel()
	_ = r.group.Wait()
	r.closeStreams()
}

func (r *Reader) closeStreams() {
	if r.gz != nil {
		_ = r.gz.Close()
	}
	_ = r.file.Close()
}
