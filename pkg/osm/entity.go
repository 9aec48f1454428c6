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

	"gitlab.com/tozd/go/errors"
)

// 🎚️ EntityTypes is a bitmask selecting which entity kinds a reader will
// yield. It is fixed at reader-open time and never consulted per object.
type EntityTypes uint8

const (
	Nodes EntityTypes = 1 << iota
	Ways
	Relations
	Changesets

	AllEntities = Nodes | Ways | Relations | Changesets
)

// 🔍 ParseEntityType maps a user-supplied --object-type value to its flag
func ParseEntityType(s string) (EntityTypes, error) {
	switch s {
	case "node":
		return Nodes, nil
	case "way":
		return Ways, nil
	case "relation":
		return Relations, nil
	case "changeset":
		return Changesets, nil
	}
	return 0, errors.Errorf("unknown object type: '%s' (expected node, way, relation or changeset)", s)
}

// ParseEntityTypes folds a list of --object-type values into one mask.
// An empty list selects all entity kinds.
func ParseEntityTypes(values []string) (EntityTypes, error) {
	if len(values) == 0 {
		return AllEntities, nil
	}
	var types EntityTypes
	for _, v := range values {
		t, err := ParseEntityType(v)
		if err != nil {
			return 0, err
		}
		types |= t
	}
	return types, nil
}

// Contains reports whether objects of the given kind pass the mask
func (e EntityTypes) Contains(t ObjectType) bool {
	switch t {
	case TypeNode:
		return e&Nodes != 0
	case TypeWay:
		return e&Ways != 0
	case TypeRelation:
		return e&Relations != 0
	case TypeChangeset:
		return e&Changesets != 0
	}
	return false
}

// String renders the mask for the configuration echo, e.g. "node,way"
func (e EntityTypes) String() string {
	if e == AllEntities {
		return "all"
	}
	var names []string
	if e&Nodes != 0 {
		names = append(names, "node")
	}
	if e&Ways != 0 {
		names = append(names, "way")
	}
	if e&Relations != 0 {
		names = append(names, "relation")
	}
	if e&Changesets != 0 {
		names = append(names, "changeset")
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ",")
}
