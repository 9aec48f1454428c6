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
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/walteh/osmcat/pkg/osm"
	"gitlab.com/tozd/go/errors"
)

// xmlTimeLayout is the canonical OSM timestamp form, always UTC
const xmlTimeLayout = "2006-01-02T15:04:05Z"

// wire structs for encoding/xml; metadata attributes are omitted when
// they hold their cleared value, matching what other OSM tools emit
type xmlTag struct {
	K string `xml:"k,attr"`
	V string `xml:"v,attr"`
}

type xmlMeta struct {
	Version   int32  `xml:"version,attr,omitempty"`
	Timestamp string `xml:"timestamp,attr,omitempty"`
	UID       int32  `xml:"uid,attr,omitempty"`
	User      string `xml:"user,attr,omitempty"`
	Changeset int64  `xml:"changeset,attr,omitempty"`
}

type xmlNode struct {
	XMLName xml.Name `xml:"node"`
	ID      int64    `xml:"id,attr"`
	xmlMeta
	Lat  float64  `xml:"lat,attr"`
	Lon  float64  `xml:"lon,attr"`
	Tags []xmlTag `xml:"tag"`
}

type xmlNodeRef struct {
	Ref int64 `xml:"ref,attr"`
}

type xmlWay struct {
	XMLName xml.Name `xml:"way"`
	ID      int64    `xml:"id,attr"`
	xmlMeta
	NodeRefs []xmlNodeRef `xml:"nd"`
	Tags     []xmlTag     `xml:"tag"`
}

type xmlMember struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

type xmlRelation struct {
	XMLName xml.Name `xml:"relation"`
	ID      int64    `xml:"id,attr"`
	xmlMeta
	Members []xmlMember `xml:"member"`
	Tags    []xmlTag    `xml:"tag"`
}

type xmlChangeset struct {
	XMLName   xml.Name `xml:"changeset"`
	ID        int64    `xml:"id,attr"`
	CreatedAt string   `xml:"created_at,attr,omitempty"`
	UID       int32    `xml:"uid,attr,omitempty"`
	User      string   `xml:"user,attr,omitempty"`
	Tags      []xmlTag `xml:"tag"`
}

type xmlBounds struct {
	XMLName xml.Name `xml:"bounds"`
	MinLat  float64  `xml:"minlat,attr"`
	MinLon  float64  `xml:"minlon,attr"`
	MaxLat  float64  `xml:"maxlat,attr"`
	MaxLon  float64  `xml:"maxlon,attr"`
}

func xmlFormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(xmlTimeLayout)
}

func xmlParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Errorf("parsing timestamp '%s': %w", s, err)
	}
	return t, nil
}

func metaToXML(m *osm.Metadata) xmlMeta {
	return xmlMeta{
		Version:   m.Version,
		Timestamp: xmlFormatTime(m.Timestamp),
		UID:       m.UID,
		User:      m.User,
		Changeset: m.Changeset,
	}
}

func metaFromXML(x xmlMeta) (osm.Metadata, error) {
	ts, err := xmlParseTime(x.Timestamp)
	if err != nil {
		return osm.Metadata{}, err
	}
	return osm.Metadata{
		Version:   x.Version,
		Changeset: x.Changeset,
		Timestamp: ts,
		UID:       x.UID,
		User:      x.User,
	}, nil
}

func tagsToXML(tags osm.Tags) []xmlTag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]xmlTag, len(tags))
	for i, t := range tags {
		out[i] = xmlTag{K: t.Key, V: t.Value}
	}
	return out
}

func tagsFromXML(tags []xmlTag) osm.Tags {
	if len(tags) == 0 {
		return nil
	}
	out := make(osm.Tags, len(tags))
	for i, t := range tags {
		out[i] = osm.Tag{Key: t.K, Value: t.V}
	}
	return out
}

// 📖 xmlDecoder streams objects out of an OSM XML document
type xmlDecoder struct {
	dec     *xml.Decoder
	types   osm.EntityTypes
	pending *xml.StartElement // first object element, seen while reading the header
	done    bool
}

func newXMLDecoder(r io.Reader, types osm.EntityTypes) *xmlDecoder {
	return &xmlDecoder{dec: xml.NewDecoder(r), types: types}
}

func isObjectElement(name string) bool {
	switch name {
	case "node", "way", "relation", "changeset":
		return true
	}
	return false
}

// ReadHeader consumes the <osm> root attributes and the optional <bounds>
// child. It stops at the first object element, which is kept pending for
// the first Read call.
func (d *xmlDecoder) ReadHeader() (*osm.Header, error) {
	header := osm.NewHeader()
	for {
		tok, err := d.dec.Token()
		if err == io.EOF {
			d.done = true
			return header, nil
		}
		if err != nil {
			return nil, errors.Errorf("reading XML header: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch {
		case se.Name.Local == "osm":
			for _, attr := range se.Attr {
				if attr.Name.Local == "generator" {
					header.Generator = attr.Value
				}
			}
		case se.Name.Local == "bounds":
			var b xmlBounds
			if err := d.dec.DecodeElement(&b, &se); err != nil {
				return nil, errors.Errorf("decoding bounds: %w", err)
			}
			header.Bounds = &osm.Bounds{MinLat: b.MinLat, MinLon: b.MinLon, MaxLat: b.MaxLat, MaxLon: b.MaxLon}
		case isObjectElement(se.Name.Local):
			pending := se
			d.pending = &pending
			return header, nil
		default:
			if err := d.dec.Skip(); err != nil {
				return nil, errors.Errorf("skipping element '%s': %w", se.Name.Local, err)
			}
		}
	}
}

// Read returns the next chunk of objects, io.EOF at end of document
func (d *xmlDecoder) Read() (osm.Chunk, error) {
	if d.done {
		return nil, io.EOF
	}
	chunk := make(osm.Chunk, 0, chunkSize)
	for len(chunk) < chunkSize {
		se, err := d.nextElement()
		if err == io.EOF {
			d.done = true
			break
		}
		if err != nil {
			return nil, err
		}
		o, err := d.decodeObject(se)
		if err != nil {
			return nil, err
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

func (d *xmlDecoder) nextElement() (*xml.StartElement, error) {
	if d.pending != nil {
		se := d.pending
		d.pending = nil
		return se, nil
	}
	for {
		tok, err := d.dec.Token()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, errors.Errorf("reading XML: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if isObjectElement(se.Name.Local) {
				return &se, nil
			}
			if err := d.dec.Skip(); err != nil {
				return nil, errors.Errorf("skipping element '%s': %w", se.Name.Local, err)
			}
		}
	}
}

// decodeObject decodes one object element. Filtered-out kinds are decoded
// and dropped here so the consumer never sees them.
func (d *xmlDecoder) decodeObject(se *xml.StartElement) (osm.Object, error) {
	switch se.Name.Local {
	case "node":
		var x xmlNode
		if err := d.dec.DecodeElement(&x, se); err != nil {
			return nil, errors.Errorf("decoding node: %w", err)
		}
		if !d.types.Contains(osm.TypeNode) {
			return nil, nil
		}
		meta, err := metaFromXML(x.xmlMeta)
		if err != nil {
			return nil, errors.Errorf("node %d: %w", x.ID, err)
		}
		return &osm.Node{ID: x.ID, Metadata: meta, Tags: tagsFromXML(x.Tags), Lat: x.Lat, Lon: x.Lon}, nil
	case "way":
		var x xmlWay
		if err := d.dec.DecodeElement(&x, se); err != nil {
			return nil, errors.Errorf("decoding way: %w", err)
		}
		if !d.types.Contains(osm.TypeWay) {
			return nil, nil
		}
		meta, err := metaFromXML(x.xmlMeta)
		if err != nil {
			return nil, errors.Errorf("way %d: %w", x.ID, err)
		}
		refs := make([]int64, len(x.NodeRefs))
		for i, r := range x.NodeRefs {
			refs[i] = r.Ref
		}
		return &osm.Way{ID: x.ID, Metadata: meta, Tags: tagsFromXML(x.Tags), NodeRefs: refs}, nil
	case "relation":
		var x xmlRelation
		if err := d.dec.DecodeElement(&x, se); err != nil {
			return nil, errors.Errorf("decoding relation: %w", err)
		}
		if !d.types.Contains(osm.TypeRelation) {
			return nil, nil
		}
		meta, err := metaFromXML(x.xmlMeta)
		if err != nil {
			return nil, errors.Errorf("relation %d: %w", x.ID, err)
		}
		members := make([]osm.Member, len(x.Members))
		for i, m := range x.Members {
			mt, err := memberType(m.Type)
			if err != nil {
				return nil, errors.Errorf("relation %d: %w", x.ID, err)
			}
			members[i] = osm.Member{Type: mt, Ref: m.Ref, Role: m.Role}
		}
		return &osm.Relation{ID: x.ID, Metadata: meta, Tags: tagsFromXML(x.Tags), Members: members}, nil
	case "changeset":
		var x xmlChangeset
		if err := d.dec.DecodeElement(&x, se); err != nil {
			return nil, errors.Errorf("decoding changeset: %w", err)
		}
		if !d.types.Contains(osm.TypeChangeset) {
			return nil, nil
		}
		ts, err := xmlParseTime(x.CreatedAt)
		if err != nil {
			return nil, errors.Errorf("changeset %d: %w", x.ID, err)
		}
		meta := osm.Metadata{Timestamp: ts, UID: x.UID, User: x.User}
		return &osm.Changeset{ID: x.ID, Metadata: meta, Tags: tagsFromXML(x.Tags)}, nil
	}
	return nil, errors.Errorf("unexpected element '%s'", se.Name.Local)
}

func memberType(s string) (osm.ObjectType, error) {
	switch s {
	case "node":
		return osm.TypeNode, nil
	case "way":
		return osm.TypeWay, nil
	case "relation":
		return osm.TypeRelation, nil
	}
	return 0, errors.Errorf("unknown member type: '%s'", s)
}

// 📝 xmlEncoder writes objects as an OSM XML document
type xmlEncoder struct {
	w      io.Writer
	closed bool
}

func newXMLEncoder(w io.Writer) *xmlEncoder {
	return &xmlEncoder{w: w}
}

func (e *xmlEncoder) WriteHeader(h *osm.Header) error {
	if _, err := fmt.Fprint(e.w, "<?xml version='1.0' encoding='UTF-8'?>\n"); err != nil {
		return errors.Errorf("writing XML declaration: %w", err)
	}
	generator := h.Generator
	if generator == "" {
		generator = "osmcat"
	}
	var esc bytes.Buffer
	if err := xml.EscapeText(&esc, []byte(generator)); err != nil {
		return errors.Errorf("escaping generator: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "<osm version=\"0.6\" generator=\"%s\">\n", esc.String()); err != nil {
		return errors.Errorf("writing osm element: %w", err)
	}
	if h.Bounds != nil {
		b := xmlBounds{MinLat: h.Bounds.MinLat, MinLon: h.Bounds.MinLon, MaxLat: h.Bounds.MaxLat, MaxLon: h.Bounds.MaxLon}
		if err := e.writeElement(b); err != nil {
			return err
		}
	}
	return nil
}

func (e *xmlEncoder) Write(o osm.Object) error {
	switch v := o.(type) {
	case *osm.Node:
		return e.writeElement(xmlNode{ID: v.ID, xmlMeta: metaToXML(&v.Metadata), Lat: v.Lat, Lon: v.Lon, Tags: tagsToXML(v.Tags)})
	case *osm.Way:
		refs := make([]xmlNodeRef, len(v.NodeRefs))
		for i, r := range v.NodeRefs {
			refs[i] = xmlNodeRef{Ref: r}
		}
		return e.writeElement(xmlWay{ID: v.ID, xmlMeta: metaToXML(&v.Metadata), NodeRefs: refs, Tags: tagsToXML(v.Tags)})
	case *osm.Relation:
		members := make([]xmlMember, len(v.Members))
		for i, m := range v.Members {
			members[i] = xmlMember{Type: m.Type.String(), Ref: m.Ref, Role: m.Role}
		}
		return e.writeElement(xmlRelation{ID: v.ID, xmlMeta: metaToXML(&v.Metadata), Members: members, Tags: tagsToXML(v.Tags)})
	case *osm.Changeset:
		return e.writeElement(xmlChangeset{
			ID:        v.ID,
			CreatedAt: xmlFormatTime(v.Metadata.Timestamp),
			UID:       v.Metadata.UID,
			User:      v.Metadata.User,
			Tags:      tagsToXML(v.Tags),
		})
	}
	return errors.Errorf("unknown object type %T", o)
}

func (e *xmlEncoder) writeElement(v any) error {
	data, err := xml.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return errors.Errorf("marshaling element: %w", err)
	}
	if _, err := e.w.Write(append(data, '\n')); err != nil {
		return errors.Errorf("writing element: %w", err)
	}
	return nil
}

func (e *xmlEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if _, err := fmt.Fprint(e.w, "</osm>\n"); err != nil {
		return errors.Errorf("writing XML trailer: %w", err)
	}
	return nil
}
