package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityTypes(t *testing.T) {
	tests := []struct {
		name      string
		values    []string
		want      EntityTypes
		wantError string
	}{
		{
			name:   "empty_selects_all",
			values: nil,
			want:   AllEntities,
		},
		{
			name:   "single_type",
			values: []string{"node"},
			want:   Nodes,
		},
		{
			name:   "multiple_types",
			values: []string{"way", "relation"},
			want:   Ways | Relations,
		},
		{
			name:      "unknown_type",
			values:    []string{"vertex"},
			wantError: "unknown object type: 'vertex'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEntityTypes(tt.values)
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

func TestEntityTypes_Contains(t *testing.T) {
	mask := Nodes | Changesets
	assert.True(t, mask.Contains(TypeNode))
	assert.False(t, mask.Contains(TypeWay))
	assert.False(t, mask.Contains(TypeRelation))
	assert.True(t, mask.Contains(TypeChangeset))

	assert.True(t, AllEntities.Contains(TypeWay))
}

func TestEntityTypes_String(t *testing.T) {
	assert.Equal(t, "all", AllEntities.String())
	assert.Equal(t, "node,way", (Nodes | Ways).String())
	assert.Equal(t, "(none)", EntityTypes(0).String())
}
