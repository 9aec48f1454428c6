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

// Package osmfile reads and writes OSM data files. It provides the
// sequential Reader and Writer abstractions the rest of the tool is built
// on: a Reader yields chunks of decoded objects until exhaustion, a
// Writer accepts chunks in order and reports total bytes on close.
//
// Supported formats are OSM XML (.osm, .xml) and OPL (.opl), each
// optionally gzip-compressed (.gz suffix). The format is fixed by the
// file extension at open time.
package osmfile

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/walteh/osmcat/pkg/osm"
	"gitlab.com/tozd/go/errors"
)

// TODO(dr.methodical): 📦 Add PBF read support

// 📄 Format identifies the object encoding of a file
type Format int

const (
	FormatXML Format = iota
	FormatOPL
)

// String returns the short format name used in the configuration echo
func (f Format) String() string {
	switch f {
	case FormatXML:
		return "XML"
	case FormatOPL:
		return "OPL"
	}
	return "unknown"
}

// chunkSize is how many decoded objects travel per chunk
const chunkSize = 512

// decoder is the per-format read side: header first, then object chunks
// until io.EOF. Implementations apply the entity-type mask themselves.
type decoder interface {
	ReadHeader() (*osm.Header, error)
	Read() (osm.Chunk, error)
}

// encoder is the per-format write side. Close flushes any trailer.
type encoder interface {
	WriteHeader(h *osm.Header) error
	Write(o osm.Object) error
	Close() error
}

// 🔍 DetectFormat resolves a filename to its format and whether the
// stream is gzip-wrapped. Unknown extensions are rejected at open time.
func DetectFormat(path string) (Format, bool, error) {
	name := filepath.Base(path)
	gzipped := false
	if strings.HasSuffix(name, ".gz") {
		gzipped = true
		name = strings.TrimSuffix(name, ".gz")
	}
	switch filepath.Ext(name) {
	case ".osm", ".xml":
		return FormatXML, gzipped, nil
	case ".opl":
		return FormatOPL, gzipped, nil
	}
	return 0, false, errors.Errorf("cannot detect file format of '%s' (expected .osm, .xml or .opl, optionally .gz)", path)
}

func newDecoder(f Format, r io.Reader, types osm.EntityTypes) decoder {
	switch f {
	case FormatOPL:
		return newOPLDecoder(r, types)
	default:
		return newXMLDecoder(r, types)
	}
}

func newEncoder(f Format, w io.Writer) encoder {
	switch f {
	case FormatOPL:
		return newOPLEncoder(w)
	default:
		return newXMLEncoder(w)
	}
}
