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

import (
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 🧹 CleanAttrs is the set of metadata attributes to reset while copying.
// Built once from --clean values before any I/O, immutable afterwards.
type CleanAttrs uint8

const (
	CleanVersion CleanAttrs = 1 << iota
	CleanChangeset
	CleanTimestamp
	CleanUID
	CleanUser
)

// 🔍 ParseCleanAttr maps a user-supplied --clean value to its flag
func ParseCleanAttr(s string) (CleanAttrs, error) {
	switch s {
	case "version":
		return CleanVersion, nil
	case "changeset":
		return CleanChangeset, nil
	case "timestamp":
		return CleanTimestamp, nil
	case "uid":
		return CleanUID, nil
	case "user":
		return CleanUser, nil
	}
	return 0, errors.Errorf("unknown attribute on --clean option: '%s'", s)
}

// ParseCleanAttrs folds a list of --clean values into one set. Unknown
// values are rejected here, before any file is opened.
func ParseCleanAttrs(values []string) (CleanAttrs, error) {
	var attrs CleanAttrs
	for _, v := range values {
		a, err := ParseCleanAttr(v)
		if err != nil {
			return 0, err
		}
		attrs |= a
	}
	return attrs, nil
}

// String renders the set for the configuration echo, "(none)" when empty
func (c CleanAttrs) String() string {
	var names []string
	if c&CleanVersion != 0 {
		names = append(names, "version")
	}
	if c&CleanChangeset != 0 {
		names = append(names, "changeset")
	}
	if c&CleanTimestamp != 0 {
		names = append(names, "timestamp")
	}
	if c&CleanUID != 0 {
		names = append(names, "uid")
	}
	if c&CleanUser != 0 {
		names = append(names, "user")
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ",")
}

// 🧹 Apply resets every flagged attribute on the object's metadata record.
// The five resets are independent; applying them twice is a no-op.
func (c CleanAttrs) Apply(o Object) {
	if c == 0 {
		return
	}
	m := o.Meta()
	if c&CleanVersion != 0 {
		m.Version = 0
	}
	if c&CleanChangeset != 0 {
		m.Changeset = 0
	}
	if c&CleanTimestamp != 0 {
		m.Timestamp = time.Time{}
	}
	if c&CleanUID != 0 {
		m.UID = 0
	}
	if c&CleanUser != 0 {
		m.User = ""
	}
}

// ApplyChunk mutates every object of the chunk in place
func (c CleanAttrs) ApplyChunk(chunk Chunk) {
	if c == 0 {
		return
	}
	for _, o := range chunk {
		c.Apply(o)
	}
}
