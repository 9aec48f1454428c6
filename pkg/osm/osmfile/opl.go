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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/walteh/osmcat/pkg/osm"
	"gitlab.com/tozd/go/errors"
)

// OPL is the line-oriented OSM format: one object per line, fields are
// space-separated, each introduced by a single key character. Attributes
// holding their cleared value are omitted on output. OPL files carry no
// header, so the reader yields a default one.

// oplEscape protects the characters OPL reserves for field and list
// separators. Escapes are %<hex-codepoint>%.
func oplEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == ' ' || r == '\n' || r == ',' || r == '=' || r == '@' || r == '%' || r < 0x21:
			fmt.Fprintf(&b, "%%%x%%", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func oplUnescape(s string) (string, error) {
	if !strings.ContainsRune(s, '%') {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i+1:], '%')
		if end < 0 {
			return "", errors.Errorf("unterminated escape in '%s'", s)
		}
		code, err := strconv.ParseUint(s[i+1:i+1+end], 16, 32)
		if err != nil {
			return "", errors.Errorf("bad escape in '%s': %w", s, err)
		}
		b.WriteRune(rune(code))
		i += end + 2
	}
	return b.String(), nil
}

// 📖 oplDecoder streams objects out of an OPL document
type oplDecoder struct {
	scanner *bufio.Scanner
	types   osm.EntityTypes
	line    int
}

func newOPLDecoder(r io.Reader, types osm.EntityTypes) *oplDecoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &oplDecoder{scanner: scanner, types: types}
}

func (d *oplDecoder) ReadHeader() (*osm.Header, error) {
	return osm.NewHeader(), nil
}

func (d *oplDecoder) Read() (osm.Chunk, error) {
	chunk := make(osm.Chunk, 0, chunkSize)
	for len(chunk) < chunkSize {
		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return nil, errors.Errorf("reading OPL: %w", err)
			}
			break
		}
		d.line++
		text := strings.TrimSpace(d.scanner.Text())
		if text == "" {
			continue
		}
		o, err := d.parseLine(text)
		if err != nil {
			return nil, errors.Errorf("OPL line %d: %w", d.line, err)
		}
		if o != nil {
			chunk = append(chunk, o)
		}
	}
	if len(chunk) == 0 {
		return nil, io.EOF
	}
	return chunk, nil
}

func (d *oplDecoder) parseLine(line string) (osm.Object, error) {
	fields := strings.Split(line, " ")
	kind := fields[0][0]
	id, err := strconv.ParseInt(fields[0][1:], 10, 64)
	if err != nil {
		return nil, errors.Errorf("parsing object id: %w", err)
	}

	var meta osm.Metadata
	var tags osm.Tags
	var refs []int64
	var members []osm.Member
	var lat, lon float64

	for _, field := range fields[1:] {
		if field == "" {
			continue
		}
		key, value := field[0], field[1:]
		switch key {
		case 'v':
			n, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return nil, errors.Errorf("parsing version: %w", err)
			}
			meta.Version = int32(n)
		case 'c':
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, errors.Errorf("parsing changeset: %w", err)
			}
			meta.Changeset = n
		case 't', 's':
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, errors.Errorf("parsing timestamp: %w", err)
			}
			meta.Timestamp = ts
		case 'i':
			n, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return nil, errors.Errorf("parsing uid: %w", err)
			}
			meta.UID = int32(n)
		case 'u':
			user, err := oplUnescape(value)
			if err != nil {
				return nil, err
			}
			meta.User = user
		case 'T':
			tags, err = parseOPLTags(value)
			if err != nil {
				return nil, err
			}
		case 'x':
			lon, err = strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, errors.Errorf("parsing longitude: %w", err)
			}
		case 'y':
			lat, err = strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, errors.Errorf("parsing latitude: %w", err)
			}
		case 'N':
			refs, err = parseOPLRefs(value)
			if err != nil {
				return nil, err
			}
		case 'M':
			members, err = parseOPLMembers(value)
			if err != nil {
				return nil, err
			}
		case 'd':
			// visibility marker, not part of the model
		default:
			return nil, errors.Errorf("unknown field '%c'", key)
		}
	}

	switch kind {
	case 'n':
		if !d.types.Contains(osm.TypeNode) {
			return nil, nil
		}
		return &osm.Node{ID: id, Metadata: meta, Tags: tags, Lat: lat, Lon: lon}, nil
	case 'w':
		if !d.types.Contains(osm.TypeWay) {
			return nil, nil
		}
		return &osm.Way{ID: id, Metadata: meta, Tags: tags, NodeRefs: refs}, nil
	case 'r':
		if !d.types.Contains(osm.TypeRelation) {
			return nil, nil
		}
		return &osm.Relation{ID: id, Metadata: meta, Tags: tags, Members: members}, nil
	case 'c':
		if !d.types.Contains(osm.TypeChangeset) {
			return nil, nil
		}
		return &osm.Changeset{ID: id, Metadata: meta, Tags: tags}, nil
	}
	return nil, errors.Errorf("unknown object kind '%c'", kind)
}

func parseOPLTags(value string) (osm.Tags, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	tags := make(osm.Tags, 0, len(parts))
	for _, part := range parts {
		k, v, found := strings.Cut(part, "=")
		if !found {
			return nil, errors.Errorf("tag without value: '%s'", part)
		}
		key, err := oplUnescape(k)
		if err != nil {
			return nil, err
		}
		val, err := oplUnescape(v)
		if err != nil {
			return nil, err
		}
		tags = append(tags, osm.Tag{Key: key, Value: val})
	}
	return tags, nil
}

func parseOPLRefs(value string) ([]int64, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	refs := make([]int64, len(parts))
	for i, part := range parts {
		part = strings.TrimPrefix(part, "n")
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Errorf("parsing node ref '%s': %w", part, err)
		}
		refs[i] = n
	}
	return refs, nil
}

func parseOPLMembers(value string) ([]osm.Member, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	members := make([]osm.Member, len(parts))
	for i, part := range parts {
		ref, role, found := strings.Cut(part, "@")
		if !found {
			return nil, errors.Errorf("member without role separator: '%s'", part)
		}
		if len(ref) < 2 {
			return nil, errors.Errorf("malformed member ref: '%s'", part)
		}
		var mt osm.ObjectType
		switch ref[0] {
		case 'n':
			mt = osm.TypeNode
		case 'w':
			mt = osm.TypeWay
		case 'r':
			mt = osm.TypeRelation
		default:
			return nil, errors.Errorf("unknown member type '%c'", ref[0])
		}
		n, err := strconv.ParseInt(ref[1:], 10, 64)
		if err != nil {
			return nil, errors.Errorf("parsing member ref '%s': %w", ref, err)
		}
		unescapedRole, err := oplUnescape(role)
		if err != nil {
			return nil, err
		}
		members[i] = osm.Member{Type: mt, Ref: n, Role: unescapedRole}
	}
	return members, nil
}

// 📝 oplEncoder writes objects as OPL lines
type oplEncoder struct {
	w *bufio.Writer
}

func newOPLEncoder(w io.Writer) *oplEncoder {
	return &oplEncoder{w: bufio.NewWriter(w)}
}

// WriteHeader is a no-op: OPL has no file header
func (e *oplEncoder) WriteHeader(h *osm.Header) error {
	return nil
}

func (e *oplEncoder) Write(o osm.Object) error {
	var b strings.Builder
	m := o.Meta()

	switch v := o.(type) {
	case *osm.Node:
		fmt.Fprintf(&b, "n%d", v.ID)
		writeOPLMeta(&b, m)
		writeOPLTags(&b, v.Tags)
		fmt.Fprintf(&b, " x%s y%s", formatCoord(v.Lon), formatCoord(v.Lat))
	case *osm.Way:
		fmt.Fprintf(&b, "w%d", v.ID)
		writeOPLMeta(&b, m)
		writeOPLTags(&b, v.Tags)
		if len(v.NodeRefs) > 0 {
			b.WriteString(" N")
			for i, r := range v.NodeRefs {
				if i > 0 {
					b.WriteByte(',')
				}
				fmt.Fprintf(&b, "n%d", r)
			}
		}
	case *osm.Relation:
		fmt.Fprintf(&b, "r%d", v.ID)
		writeOPLMeta(&b, m)
		writeOPLTags(&b, v.Tags)
		if len(v.Members) > 0 {
			b.WriteString(" M")
			for i, mem := range v.Members {
				if i > 0 {
					b.WriteByte(',')
				}
				fmt.Fprintf(&b, "%c%d@%s", mem.Type.String()[0], mem.Ref, oplEscape(mem.Role))
			}
		}
	case *osm.Changeset:
		fmt.Fprintf(&b, "c%d", v.ID)
		if !m.Timestamp.IsZero() {
			fmt.Fprintf(&b, " s%s", m.Timestamp.UTC().Format(xmlTimeLayout))
		}
		if m.UID != 0 {
			fmt.Fprintf(&b, " i%d", m.UID)
		}
		if m.User != "" {
			fmt.Fprintf(&b, " u%s", oplEscape(m.User))
		}
		writeOPLTags(&b, v.Tags)
	default:
		return errors.Errorf("unknown object type %T", o)
	}

	b.WriteByte('\n')
	if _, err := e.w.WriteString(b.String()); err != nil {
		return errors.Errorf("writing OPL line: %w", err)
	}
	return nil
}

func (e *oplEncoder) Close() error {
	if err := e.w.Flush(); err != nil {
		return errors.Errorf("flushing OPL output: %w", err)
	}
	return nil
}

func writeOPLMeta(b *strings.Builder, m *osm.Metadata) {
	if m.Version != 0 {
		fmt.Fprintf(b, " v%d", m.Version)
	}
	if m.Changeset != 0 {
		fmt.Fprintf(b, " c%d", m.Changeset)
	}
	if !m.Timestamp.IsZero() {
		fmt.Fprintf(b, " t%s", m.Timestamp.UTC().Format(xmlTimeLayout))
	}
	if m.UID != 0 {
		fmt.Fprintf(b, " i%d", m.UID)
	}
	if m.User != "" {
		fmt.Fprintf(b, " u%s", oplEscape(m.User))
	}
}

func writeOPLTags(b *strings.Builder, tags osm.Tags) {
	if len(tags) == 0 {
		return
	}
	b.WriteString(" T")
	for i, t := range tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(oplEscape(t.Key))
		b.WriteByte('=')
		b.WriteString(oplEscape(t.Value))
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
