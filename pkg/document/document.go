// Package document reads and writes values inside a nested configuration
// document using dotted paths such as "wifi.ssid". A Document is a plain
// map[string]any tree, the shape produced by decoding JSON objects.
package document

import (
	"sort"
	"strings"
)

// Document is a nested configuration mapping.
type Document = map[string]any

// Separator splits path segments.
const Separator = "."

// Segments splits a dotted path.
func Segments(path string) []string {
	return strings.Split(path, Separator)
}

// Write sets value at path, creating missing intermediate mappings. An
// intermediate that exists but is not a mapping is replaced by an empty one.
// Write never fails; a nil doc is ignored.
func Write(doc Document, path string, value any) {
	if doc == nil {
		return
	}
	segments := Segments(path)
	current := doc
	for _, segment := range segments[:len(segments)-1] {
		next, ok := asMap(current[segment])
		if !ok || next == nil {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// Read returns the value at path. The boolean is false ("absent") when any
// segment is missing or a non-mapping value is reached before the leaf.
func Read(doc Document, path string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	var current any = doc
	for _, segment := range Segments(path) {
		node, ok := asMap(current)
		if !ok || node == nil {
			return nil, false
		}
		next, exists := node[segment]
		if !exists {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Clone deep-copies mappings and slices.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out, _ := deepCopy(doc).(map[string]any)
	return out
}

// Flatten returns the leaf values keyed by dotted path, with the keys sorted.
// Empty mappings do not produce entries.
func Flatten(doc Document) ([]string, map[string]any) {
	values := make(map[string]any)
	flatten("", doc, values)
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, values
}

func flatten(prefix string, node map[string]any, dest map[string]any) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + Separator + key
		}
		if child, ok := asMap(value); ok {
			flatten(path, child, dest)
			continue
		}
		dest[path] = value
	}
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	default:
		return nil, false
	}
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
