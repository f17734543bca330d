// Package config holds what the configuration adapters share: a flat,
// dot-keyed value table and the coercions between decoded TOML values and
// the typed getters of driven.ConfigStore.
package config

import (
	"maps"
	"slices"
	"strings"
)

// Values maps dotted keys ("routes.tolerance_percent") to decoded values.
// It is not safe for concurrent use; stores guard it with their own lock.
type Values map[string]any

// String returns the value under key when it is a string.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int truncates floats; TOML decodes integers as int64.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	}
	return 0
}

// Float widens integers so "12" and "12.0" read the same.
func (v Values) Float(key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Bool returns the value under key when it is a bool.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Strings accepts []string and the []any TOML produces for arrays; non-string
// items are dropped.
func (v Values) Strings(key string) []string {
	switch items := v[key].(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Flatten turns nested tables into dotted keys: {"a": {"b": 1}} becomes
// {"a.b": 1}.
func Flatten(tree map[string]any) Values {
	out := make(Values)
	flattenInto(out, tree, "")
	return out
}

func flattenInto(out Values, tree map[string]any, prefix string) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flattenInto(out, table, key)
			continue
		}
		out[key] = value
	}
}

// Nest is the inverse of Flatten. A key that is both a value and the prefix
// of a table keeps the value under its full dotted name at the root.
func (v Values) Nest() map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(v)) {
		parts := strings.Split(key, ".")
		table, ok := descend(root, parts[:len(parts)-1])
		last := parts[len(parts)-1]
		if !ok {
			root[key] = v[key]
			continue
		}
		if _, clash := table[last].(map[string]any); clash {
			root[key] = v[key]
			continue
		}
		table[last] = v[key]
	}
	return root
}

// descend walks (creating as needed) the tables named by path. It reports
// false when a scalar already sits where a table is needed.
func descend(root map[string]any, path []string) (map[string]any, bool) {
	table := root
	for _, name := range path {
		child, exists := table[name]
		if !exists {
			next := make(map[string]any)
			table[name] = next
			table = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return nil, false
		}
		table = next
	}
	return table, true
}
