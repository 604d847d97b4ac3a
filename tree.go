// FILE: confull/tree.go
package confull

import (
	"fmt"
	"strings"
)

// MergePolicy resolves type clashes during a deep merge: one side holds a
// nested node, the other a leaf (or two leaves disagree).
type MergePolicy int

const (
	// MergeReplace lets the incoming value win (default, destructive).
	MergeReplace MergePolicy = iota
	// MergeKeep keeps the existing value on clash.
	MergeKeep
	// MergeStrict fails with ErrPathConflict on clash.
	MergeStrict
)

// splitPath converts a dot-string into path segments. There is no escape
// syntax for a literal dot inside a segment; keys containing dots are only
// reachable through the segment-slice API.
func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// getPath walks segments through nested maps. ok is false when a segment is
// absent or a scalar is hit before the path is exhausted.
func getPath(tree map[string]any, segments []string) (any, bool) {
	current := any(tree)
	for _, seg := range segments {
		node, isMap := current.(map[string]any)
		if !isMap {
			return nil, false
		}
		value, exists := node[seg]
		if !exists {
			return nil, false
		}
		current = value
	}
	return current, true
}

// setPath writes value at segments, creating missing intermediate nodes.
// An intermediate segment holding a non-node value fails with
// ErrPathConflict unless overwrite is set, in which case the value is
// discarded and replaced by a fresh node. The final segment is always
// overwritten regardless of its previous type. The tree is only mutated
// once the whole walk is known to succeed.
func setPath(tree map[string]any, segments []string, value any, overwrite bool) error {
	if len(segments) == 0 {
		return fmt.Errorf("empty path")
	}

	// Validate the walk first so a conflict leaves the tree untouched.
	if !overwrite {
		current := tree
		for _, seg := range segments[:len(segments)-1] {
			next, exists := current[seg]
			if !exists {
				break // autovivification takes over from here
			}
			node, isMap := next.(map[string]any)
			if !isMap {
				return fmt.Errorf("%w: segment %q in path %q", ErrPathConflict, seg, strings.Join(segments, "."))
			}
			current = node
		}
	}

	current := tree
	for _, seg := range segments[:len(segments)-1] {
		next, exists := current[seg]
		if !exists {
			node := make(map[string]any)
			current[seg] = node
			current = node
			continue
		}
		if node, isMap := next.(map[string]any); isMap {
			current = node
			continue
		}
		// Reached only with overwrite: discard the scalar, destructively.
		node := make(map[string]any)
		current[seg] = node
		current = node
	}

	current[segments[len(segments)-1]] = normalizeValue(value)
	return nil
}

// deletePath removes the leaf at segments and prunes parent nodes left
// empty by the removal. A missing path is a no-op; the return reports
// whether anything was removed.
func deletePath(tree map[string]any, segments []string) bool {
	if len(segments) == 0 {
		return false
	}

	// Track the visited parents for pruning.
	parents := make([]map[string]any, 0, len(segments))
	current := tree
	for _, seg := range segments[:len(segments)-1] {
		next, exists := current[seg]
		if !exists {
			return false
		}
		node, isMap := next.(map[string]any)
		if !isMap {
			return false
		}
		parents = append(parents, current)
		current = node
	}

	last := segments[len(segments)-1]
	if _, exists := current[last]; !exists {
		return false
	}
	delete(current, last)

	// Prune emptied parents bottom-up, stopping at the first non-empty node.
	for i := len(parents) - 1; i >= 0; i-- {
		if len(current) != 0 {
			break
		}
		delete(parents[i], segments[i])
		current = parents[i]
	}
	return true
}

// deepMerge merges src into dst. Keys containing dots are treated as
// dot-paths, never as literal compound keys. Node+node merges recursively;
// any other combination is resolved by policy.
func deepMerge(dst, src map[string]any, policy MergePolicy) error {
	for key, srcVal := range src {
		if strings.Contains(key, ".") {
			if err := mergePathKey(dst, splitPath(key), srcVal, policy); err != nil {
				return err
			}
			continue
		}
		if err := mergeKey(dst, key, srcVal, policy); err != nil {
			return err
		}
	}
	return nil
}

// mergePathKey applies a dotted source key as a path write honoring policy.
func mergePathKey(dst map[string]any, segments []string, value any, policy MergePolicy) error {
	existing, exists := getPath(dst, segments)
	if exists {
		existingMap, dstIsMap := existing.(map[string]any)
		srcMap, srcIsMap := toStringMap(value)
		if dstIsMap && srcIsMap {
			return deepMerge(existingMap, srcMap, policy)
		}
		switch policy {
		case MergeKeep:
			return nil
		case MergeStrict:
			if dstIsMap != srcIsMap {
				return fmt.Errorf("%w: key %q", ErrPathConflict, strings.Join(segments, "."))
			}
		}
		return setPath(dst, segments, value, true)
	}

	// Absent target: create it. A scalar blocking the path mid-walk follows
	// the policy as well.
	err := setPath(dst, segments, value, policy == MergeReplace)
	if err != nil && policy == MergeKeep {
		return nil
	}
	return err
}

func mergeKey(dst map[string]any, key string, srcVal any, policy MergePolicy) error {
	dstVal, exists := dst[key]
	if !exists {
		dst[key] = normalizeValue(srcVal)
		return nil
	}

	dstMap, dstIsMap := dstVal.(map[string]any)
	srcMap, srcIsMap := toStringMap(srcVal)
	if dstIsMap && srcIsMap {
		return deepMerge(dstMap, srcMap, policy)
	}

	switch policy {
	case MergeKeep:
		return nil
	case MergeStrict:
		if dstIsMap != srcIsMap {
			return fmt.Errorf("%w: key %q", ErrPathConflict, key)
		}
		dst[key] = normalizeValue(srcVal)
		return nil
	default: // MergeReplace
		dst[key] = normalizeValue(srcVal)
		return nil
	}
}

// deepCopy returns a snapshot detached from the live tree. Callers may
// mutate the copy freely without affecting the store.
func deepCopy(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for key, value := range tree {
		out[key] = copyValue(value)
	}
	return out
}

func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopy(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

// flattenTree converts a nested tree to a flat map with dot-notation paths.
func flattenTree(tree map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	for key, value := range tree {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if node, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenTree(node, path) {
				flat[subPath] = subValue
			}
		} else {
			flat[path] = value
		}
	}
	return flat
}

// toStringMap reports whether value is a nested node, converting the
// map[any]any shape some decoders produce.
func toStringMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			ks, ok := key.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
