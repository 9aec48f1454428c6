package osm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCleanAttrs(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		want      CleanAttrs
		wantError string
	}{
		{
			name:   "empty_list",
			values: nil,
			want:   0,
		},
		{
			name:   "single_attribute",
			values: []string{"version"},
			want:   CleanVersion,
		},
		{
			name:   "all_attributes",
			values: []string{"version", "changeset", "timestamp", "uid", "user"},
			want:   CleanVersion | CleanChangeset | CleanTimestamp | CleanUID | CleanUser,
		},
		{
			name:   "repeated_attribute",
			values: []string{"uid", "uid"},
			want:   CleanUID,
		},
		{
			name:      "unknown_attribute",
			values:    []string{"foo"},
			wantError: "unknown attribute on --clean option: 'foo'",
		},
		{
			name:      "unknown_after_valid",
			values:    []string{"version", "bogus"},
			wantError: "unknown attribute on --clean option: 'bogus'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCleanAttrs(tt.values)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanAttrs_String(t *testing.T) {
	assert.Equal(t, "(none)", CleanAttrs(0).String())
	assert.Equal(t, "version", CleanVersion.String())
	assert.Equal(t, "version,timestamp,user", (CleanVersion | CleanTimestamp | CleanUser).String())
	assert.Equal(t, "version,changeset,timestamp,uid,user",
		(CleanVersion | CleanChangeset | CleanTimestamp | CleanUID | CleanUser).String())
}

func testNode() *Node {
	return &Node{
		ID: 17,
		Metadata: Metadata{
			Version:   3,
			Changeset: 7,
			Timestamp: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
			UID:       42,
			User:      "alice",
		},
		Tags: Tags{{Key: "amenity", Value: "pub"}},
		Lat:  51.5,
		Lon:  -0.1,
	}
}

func TestCleanAttrs_Apply(t *testing.T) {
	tests := []struct {
		name  string
		attrs CleanAttrs
		want  Metadata
	}{
		{
			name:  "empty_set_is_identity",
			attrs: 0,
			want:  testNode().Metadata,
		},
		{
			name:  "user_and_uid",
			attrs: CleanUser | CleanUID,
			want: Metadata{
				Version:   3,
				Changeset: 7,
				Timestamp: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
				UID:       0,
				User:      "",
			},
		},
		{
			name:  "timestamp_only",
			attrs: CleanTimestamp,
			want: Metadata{
				Version:   3,
				Changeset: 7,
				UID:       42,
				User:      "alice",
			},
		},
		{
			name:  "everything",
			attrs: CleanVersion | CleanChangeset | CleanTimestamp | CleanUID | CleanUser,
			want:  Metadata{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := testNode()
			tt.attrs.Apply(n)

			assert.Equal(t, tt.want, n.Metadata)

			// everything outside the metadata record is untouched
			assert.Equal(t, int64(17), n.ID)
			assert.Equal(t, Tags{{Key: "amenity", Value: "pub"}}, n.Tags)
			assert.Equal(t, 51.5, n.Lat)
			assert.Equal(t, -0.1, n.Lon)
		})
	}
}

func TestCleanAttrs_Apply_Idempotent(t *testing.T) {
	attrs := CleanVersion | CleanUser

	once := testNode()
	attrs.Apply(once)

	twice := testNode()
	attrs.Apply(twice)
	attrs.Apply(twice)

	assert.Equal(t, once, twice)
}

func TestCleanAttrs_Apply_AllKinds(t *testing.T) {
	meta := Metadata{Version: 1, Changeset: 2, UID: 3, User: "bob", Timestamp: time.Now()}
	objects := Chunk{
		&Node{ID: 1, Metadata: meta},
		&Way{ID: 2, Metadata: meta, NodeRefs: []int64{1}},
		&Relation{ID: 3, Metadata: meta, Members: []Member{{Type: TypeNode, Ref: 1, Role: "via"}}},
		&Changeset{ID: 4, Metadata: meta},
	}

	attrs := CleanVersion | CleanChangeset | CleanTimestamp | CleanUID | CleanUser
	attrs.ApplyChunk(objects)

	for _, o := range objects {
		assert.Equal(t, Metadata{}, *o.Meta(), "kind %s", o.Type())
	}
}
