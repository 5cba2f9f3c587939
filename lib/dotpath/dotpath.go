package dotpath

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Path Parsing
// --------------------------------------------------------------------------

// segment is a single parsed path element. Bracket segments ("[3]") address
// slice positions, bare segments ("name") address map keys. A bare segment
// consisting only of digits also addresses a slice position when the value
// being traversed is a slice.
type segment struct {
	key     string
	index   int
	bracket bool
}

// mapKey returns the segment as a map key. Bracket segments map to their
// decimal string form, so "a[0]" and "a.0" address the same map entry.
func (s segment) mapKey() string {
	if s.bracket {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// sliceIndex returns the segment as a slice index. Bare segments are only
// usable as indices when they consist of digits.
func (s segment) sliceIndex() (int, bool) {
	if s.bracket {
		return s.index, true
	}
	idx, err := strconv.Atoi(s.key)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// parse splits a path like "a.b[0].c" into its segments.
// Both "a[0]" and "a.[0]" spellings are accepted.
func parse(path string) ([]segment, error) {
	var segs []segment
	i, n := 0, len(path)
	for i < n {
		c := path[i]

		// Bracket segment
		if c == '[' {
			end := strings.IndexByte(path[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("dotpath: unterminated bracket in %q", path)
			}
			raw := path[i+1 : i+1+end]
			idx, err := strconv.Atoi(raw)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("dotpath: invalid index %q in %q", raw, path)
			}
			segs = append(segs, segment{index: idx, bracket: true})
			i += end + 2
			if i < n && path[i] == '.' {
				i++
				if i == n {
					return nil, fmt.Errorf("dotpath: trailing separator in %q", path)
				}
			}
			continue
		}

		if c == '.' {
			return nil, fmt.Errorf("dotpath: empty segment in %q", path)
		}

		// Bare segment, runs until the next separator
		j := i
		for j < n && path[j] != '.' && path[j] != '[' {
			j++
		}
		segs = append(segs, segment{key: path[i:j]})
		i = j
		if i < n && path[i] == '.' {
			i++
			if i == n {
				return nil, fmt.Errorf("dotpath: trailing separator in %q", path)
			}
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("dotpath: empty path")
	}
	return segs, nil
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get resolves path inside v and returns the addressed sub-value.
// An empty path addresses v itself. The boolean return value reports whether
// the path resolved; it is false for malformed paths, missing keys,
// out-of-range indices and traversal into scalars.
func Get(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	segs, err := parse(path)
	if err != nil {
		return nil, false
	}
	cur := v
	for _, seg := range segs {
		switch node := cur.(type) {
		case map[string]any:
			child, ok := node[seg.mapKey()]
			if !ok {
				return nil, false
			}
			cur = child
		case []any:
			idx, ok := seg.sliceIndex()
			if !ok || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Set writes value at path inside root, creating intermediate containers as
// needed, and returns the resulting root. Bracket segments create slices
// (padded with nils up to the index), bare segments create maps. Traversing
// into a scalar replaces it with a fresh container.
//
// Existing containers along the path are mutated in place; Clone the root
// first when the original must be preserved. An empty path replaces the
// whole root with value.
func Set(root any, path string, value any) (any, error) {
	if path == "" {
		return value, nil
	}
	segs, err := parse(path)
	if err != nil {
		return root, err
	}
	return setNode(root, segs, value), nil
}

func setNode(node any, segs []segment, value any) any {
	if len(segs) == 0 {
		return value
	}
	seg := segs[0]
	switch cur := node.(type) {
	case map[string]any:
		k := seg.mapKey()
		cur[k] = setNode(cur[k], segs[1:], value)
		return cur
	case []any:
		if idx, ok := seg.sliceIndex(); ok {
			for len(cur) <= idx {
				cur = append(cur, nil)
			}
			cur[idx] = setNode(cur[idx], segs[1:], value)
			return cur
		}
		// Named segment on a slice: the slice gives way to a map
		return map[string]any{seg.key: setNode(nil, segs[1:], value)}
	default:
		if seg.bracket {
			s := make([]any, seg.index+1)
			s[seg.index] = setNode(nil, segs[1:], value)
			return s
		}
		return map[string]any{seg.key: setNode(nil, segs[1:], value)}
	}
}

// Unset removes the sub-field addressed by path and returns the resulting
// root along with whether anything was removed. Removing a slice element
// shifts the elements after it down by one. Missing paths, malformed paths
// and traversal into scalars leave root unchanged.
//
// Like Set, Unset mutates containers along the path; Clone the root first
// when the original must be preserved.
func Unset(root any, path string) (any, bool) {
	if path == "" {
		return root, false
	}
	segs, err := parse(path)
	if err != nil {
		return root, false
	}
	return unsetNode(root, segs)
}

func unsetNode(node any, segs []segment) (any, bool) {
	seg := segs[0]
	switch cur := node.(type) {
	case map[string]any:
		k := seg.mapKey()
		child, ok := cur[k]
		if !ok {
			return cur, false
		}
		if len(segs) == 1 {
			delete(cur, k)
			return cur, true
		}
		next, removed := unsetNode(child, segs[1:])
		cur[k] = next
		return cur, removed
	case []any:
		idx, ok := seg.sliceIndex()
		if !ok || idx >= len(cur) {
			return cur, false
		}
		if len(segs) == 1 {
			return append(cur[:idx], cur[idx+1:]...), true
		}
		next, removed := unsetNode(cur[idx], segs[1:])
		cur[idx] = next
		return cur, removed
	default:
		return node, false
	}
}

// --------------------------------------------------------------------------
// Value Helpers
// --------------------------------------------------------------------------

// Clone returns a deep copy of a JSON-family value. Maps and slices are
// copied recursively, scalars are returned as-is.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}

// IsContainer reports whether v is a nested structure (map or slice) rather
// than a scalar.
func IsContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
