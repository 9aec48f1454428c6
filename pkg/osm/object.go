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

// Package osm holds the OpenStreetMap data model shared by all readers,
// writers and transforms: the four entity kinds, their common metadata
// record, and the bitmask types used to select entities and attributes.
package osm

import (
	"time"
)

// 🗺️ ObjectType identifies one of the four OSM entity kinds
type ObjectType int

const (
	TypeNode ObjectType = iota
	TypeWay
	TypeRelation
	TypeChangeset
)

// String returns the lowercase OSM name of the type
func (t ObjectType) String() string {
	switch t {
	case TypeNode:
		return "node"
	case TypeWay:
		return "way"
	case TypeRelation:
		return "relation"
	case TypeChangeset:
		return "changeset"
	}
	return "unknown"
}

// 🏷️ Tag is a single key/value annotation on an object
type Tag struct {
	Key   string
	Value string
}

// Tags is the ordered tag list of an object. Order is preserved end to end.
type Tags []Tag

// Get returns the value for key, or "" when the key is absent
func (t Tags) Get(key string) string {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}

// 📇 Metadata is the per-object attribute record common to every entity
// kind. These are the attributes the clean transform operates on.
type Metadata struct {
	Version   int32     // object version, 0 when unknown
	Changeset int64     // changeset id the object was last edited in
	Timestamp time.Time // last edit time, zero value when unknown
	UID       int32     // editing user id
	User      string    // editing user name
}

// 🎯 Object is the capability surface shared by all entity kinds: an id,
// a metadata record and a tag list. The clean transform needs nothing else.
type Object interface {
	Type() ObjectType
	ObjectID() int64
	Meta() *Metadata
	TagList() Tags
}

// Chunk is a batch of decoded objects moved as a unit between a reader
// and a writer. Ownership transfers with the chunk; it is never copied.
type Chunk []Object

// 📍 Node is a single point with coordinates
type Node struct {
	ID       int64
	Metadata Metadata
	Tags     Tags
	Lat      float64
	Lon      float64
}

func (n *Node) Type() ObjectType { return TypeNode }
func (n *Node) ObjectID() int64  { return n.ID }
func (n *Node) Meta() *Metadata  { return &n.Metadata }
func (n *Node) TagList() Tags    { return n.Tags }

// 🛤️ Way is an ordered list of node references
type Way struct {
	ID       int64
	Metadata Metadata
	Tags     Tags
	NodeRefs []int64
}

func (w *Way) Type() ObjectType { return TypeWay }
func (w *Way) ObjectID() int64  { return w.ID }
func (w *Way) Meta() *Metadata  { return &w.Metadata }
func (w *Way) TagList() Tags    { return w.Tags }

// Member is one entry of a relation
type Member struct {
	Type ObjectType
	Ref  int64
	Role string
}

// 🔗 Relation groups nodes, ways and other relations with roles
type Relation struct {
	ID       int64
	Metadata Metadata
	Tags     Tags
	Members  []Member
}

func (r *Relation) Type() ObjectType { return TypeRelation }
func (r *Relation) ObjectID() int64  { return r.ID }
func (r *Relation) Meta() *Metadata  { return &r.Metadata }
func (r *Relation) TagList() Tags    { return r.Tags }

// 📦 Changeset describes one edit session. Its metadata record reuses the
// shared layout: Timestamp is the creation time, Changeset is unused.
type Changeset struct {
	ID       int64
	Metadata Metadata
	Tags     Tags
}

func (c *Changeset) Type() ObjectType { return TypeChangeset }
func (c *Changeset) ObjectID() int64  { return c.ID }
func (c *Changeset) Meta() *Metadata  { return &c.Metadata }
func (c *Changeset) TagList() Tags    { return c.Tags }
