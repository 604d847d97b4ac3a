// FILE: confull/tree_test.go
package confull

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetPath tests path writes, autovivification and conflict handling
func TestSetPath(t *testing.T) {
	t.Run("SimpleValue", func(t *testing.T) {
		tree := map[string]any{}
		err := setPath(tree, []string{"port"}, 8080, false)
		require.NoError(t, err)
		assert.Equal(t, int64(8080), tree["port"])
	})

	t.Run("Autovivification", func(t *testing.T) {
		tree := map[string]any{}
		err := setPath(tree, []string{"server", "http", "port"}, 8080, false)
		require.NoError(t, err)

		value, ok := getPath(tree, []string{"server", "http", "port"})
		require.True(t, ok)
		assert.Equal(t, int64(8080), value)

		// Intermediates are nodes
		node, ok := getPath(tree, []string{"server", "http"})
		require.True(t, ok)
		assert.IsType(t, map[string]any{}, node)
	})

	t.Run("ScalarBlocksPath", func(t *testing.T) {
		tree := map[string]any{"server": "not-a-table"}
		err := setPath(tree, []string{"server", "port"}, 8080, false)
		require.ErrorIs(t, err, ErrPathConflict)

		// A failed write leaves the tree untouched
		assert.Equal(t, "not-a-table", tree["server"])
	})

	t.Run("OverwriteDiscardsScalar", func(t *testing.T) {
		tree := map[string]any{"server": "not-a-table"}
		err := setPath(tree, []string{"server", "port"}, 8080, true)
		require.NoError(t, err)

		value, ok := getPath(tree, []string{"server", "port"})
		require.True(t, ok)
		assert.Equal(t, int64(8080), value)
	})

	t.Run("FinalSegmentAlwaysOverwritten", func(t *testing.T) {
		tree := map[string]any{}
		require.NoError(t, setPath(tree, []string{"server", "port"}, 8080, false))
		require.NoError(t, setPath(tree, []string{"server"}, "flattened", false))
		assert.Equal(t, "flattened", tree["server"])
	})

	t.Run("SiblingsSurvive", func(t *testing.T) {
		tree := map[string]any{}
		require.NoError(t, setPath(tree, []string{"server", "host"}, "localhost", false))
		require.NoError(t, setPath(tree, []string{"server", "port"}, 8080, false))

		host, ok := getPath(tree, []string{"server", "host"})
		require.True(t, ok)
		assert.Equal(t, "localhost", host)
	})

	t.Run("EmptyPath", func(t *testing.T) {
		tree := map[string]any{}
		assert.Error(t, setPath(tree, nil, 1, false))
	})
}

// TestGetPath tests nested reads
func TestGetPath(t *testing.T) {
	tree := map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"http": map[string]any{"port": int64(8080)},
		},
		"debug": true,
	}

	tests := []struct {
		name     string
		segments []string
		want     any
		found    bool
	}{
		{"TopLevel", []string{"debug"}, true, true},
		{"Nested", []string{"server", "http", "port"}, int64(8080), true},
		{"IntermediateNode", []string{"server", "http"}, map[string]any{"port": int64(8080)}, true},
		{"Missing", []string{"server", "tls"}, nil, false},
		{"ScalarMidPath", []string{"debug", "level"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := getPath(tree, tt.segments)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, value)
			}
		})
	}
}

// TestDeletePath tests removal and parent pruning
func TestDeletePath(t *testing.T) {
	t.Run("RemovesLeaf", func(t *testing.T) {
		tree := map[string]any{
			"server": map[string]any{"host": "localhost", "port": int64(8080)},
		}
		removed := deletePath(tree, []string{"server", "port"})
		assert.True(t, removed)

		_, ok := getPath(tree, []string{"server", "port"})
		assert.False(t, ok)
		_, ok = getPath(tree, []string{"server", "host"})
		assert.True(t, ok)
	})

	t.Run("PrunesEmptiedParents", func(t *testing.T) {
		tree := map[string]any{}
		require.NoError(t, setPath(tree, []string{"a", "b", "c"}, 1, false))

		removed := deletePath(tree, []string{"a", "b", "c"})
		assert.True(t, removed)
		assert.Empty(t, tree)
	})

	t.Run("PruningStopsAtNonEmpty", func(t *testing.T) {
		tree := map[string]any{}
		require.NoError(t, setPath(tree, []string{"a", "b", "c"}, 1, false))
		require.NoError(t, setPath(tree, []string{"a", "keep"}, 2, false))

		deletePath(tree, []string{"a", "b", "c"})
		_, ok := getPath(tree, []string{"a", "b"})
		assert.False(t, ok)
		_, ok = getPath(tree, []string{"a", "keep"})
		assert.True(t, ok)
	})

	t.Run("MissingPathIsNoOp", func(t *testing.T) {
		tree := map[string]any{"a": int64(1)}
		assert.False(t, deletePath(tree, []string{"x", "y"}))
		assert.Equal(t, map[string]any{"a": int64(1)}, tree)
	})

	t.Run("ScalarMidPathIsNoOp", func(t *testing.T) {
		tree := map[string]any{"a": int64(1)}
		assert.False(t, deletePath(tree, []string{"a", "b"}))
	})
}

// TestDeepMerge tests merge policies and dotted-key handling
func TestDeepMerge(t *testing.T) {
	t.Run("NodePlusNodeRecurses", func(t *testing.T) {
		dst := map[string]any{
			"server": map[string]any{"host": "localhost"},
		}
		src := map[string]any{
			"server": map[string]any{"port": 8080},
		}
		require.NoError(t, deepMerge(dst, src, MergeReplace))

		host, _ := getPath(dst, []string{"server", "host"})
		port, _ := getPath(dst, []string{"server", "port"})
		assert.Equal(t, "localhost", host)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("ReplaceWinsOnClash", func(t *testing.T) {
		dst := map[string]any{"debug": map[string]any{"level": 2}}
		src := map[string]any{"debug": false}
		require.NoError(t, deepMerge(dst, src, MergeReplace))
		assert.Equal(t, false, dst["debug"])
	})

	t.Run("KeepRetainsOnClash", func(t *testing.T) {
		dst := map[string]any{"debug": map[string]any{"level": int64(2)}}
		src := map[string]any{"debug": false}
		require.NoError(t, deepMerge(dst, src, MergeKeep))
		assert.Equal(t, map[string]any{"level": int64(2)}, dst["debug"])
	})

	t.Run("StrictFailsOnClash", func(t *testing.T) {
		dst := map[string]any{"debug": map[string]any{"level": 2}}
		src := map[string]any{"debug": false}
		assert.ErrorIs(t, deepMerge(dst, src, MergeStrict), ErrPathConflict)
	})

	t.Run("DottedKeysAreTreatedAsPaths", func(t *testing.T) {
		dst := map[string]any{}
		src := map[string]any{"server.http.port": 8080}
		require.NoError(t, deepMerge(dst, src, MergeReplace))

		value, ok := getPath(dst, []string{"server", "http", "port"})
		require.True(t, ok)
		assert.Equal(t, int64(8080), value)
	})
}

// TestDeepCopy verifies copies are detached from the source
func TestDeepCopy(t *testing.T) {
	tree := map[string]any{
		"server": map[string]any{"tags": []any{"a", "b"}},
	}
	clone := deepCopy(tree)

	clone["server"].(map[string]any)["tags"].([]any)[0] = "mutated"
	clone["server"].(map[string]any)["new"] = true

	assert.Equal(t, "a", tree["server"].(map[string]any)["tags"].([]any)[0])
	_, exists := tree["server"].(map[string]any)["new"]
	assert.False(t, exists)
}

// TestFlattenTree tests nested-to-dotted conversion
func TestFlattenTree(t *testing.T) {
	tree := map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"http": map[string]any{"port": int64(8080)},
		},
		"debug": true,
	}

	flat := flattenTree(tree, "")
	assert.Equal(t, map[string]any{
		"server.host":      "localhost",
		"server.http.port": int64(8080),
		"debug":            true,
	}, flat)
}
