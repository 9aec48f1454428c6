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

package osm

// 🌐 Bounds is the bounding box declared in a file header
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// 📋 Header is the file-level metadata record, distinct from per-object
// attributes. A single-input run propagates the input header to the
// output; a multi-input run starts from a default header instead.
type Header struct {
	Generator string
	Bounds    *Bounds
}

// NewHeader returns an empty default header
func NewHeader() *Header {
	return &Header{}
}

// Clone returns an independent copy, so the output header can be stamped
// without touching the reader's view of its input
func (h *Header) Clone() *Header {
	out := &Header{Generator: h.Generator}
	if h.Bounds != nil {
		b := *h.Bounds
		out.Bounds = &b
	}
	return out
}
