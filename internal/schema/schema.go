// Package schema models the nested field schemas that drive synthetic record
// generation. A schema is a tree: sections hold named children in declaration
// order, fields are leaves carrying a type and optional option list.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Field types understood by the value generator. Unknown types are legal;
// they degrade to a placeholder value rather than failing.
const (
	TypeMenu     = "menu"
	TypeEnum     = "enum"
	TypeBoolean  = "boolean"
	TypeDecimal  = "decimal"
	TypeInteger  = "integer"
	TypeDateTime = "datetime"
	TypeDate     = "date"
	TypeText     = "text"
)

// Descriptor keys that mark a mapping entry as a field definition rather
// than a nested section.
var descriptorKeys = map[string]bool{
	"type":        true,
	"options":     true,
	"values":      true,
	"description": true,
	"required":    true,
}

// Node is a schema tree node: either *Section or *Field.
type Node interface {
	node()
}

// Field is a leaf descriptor.
type Field struct {
	Type    string
	Options []string
}

func (f *Field) node() {}

// Section holds named children in declaration order.
type Section struct {
	names    []string
	children map[string]Node
}

func (s *Section) node() {}

// NewSection creates an empty section.
func NewSection() *Section {
	return &Section{children: make(map[string]Node)}
}

// Add appends a named child and returns the section for chaining.
// Re-adding a name replaces the child in place.
func (s *Section) Add(name string, child Node) *Section {
	if _, exists := s.children[name]; !exists {
		s.names = append(s.names, name)
	}
	s.children[name] = child
	return s
}

// Get returns the child with the given name.
func (s *Section) Get(name string) (Node, bool) {
	n, ok := s.children[name]
	return n, ok
}

// Names returns child names in declaration order.
func (s *Section) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of children.
func (s *Section) Len() int {
	return len(s.names)
}

// SchemaError reports a malformed schema entry. Generation aborts on the
// first one; no partial tree is returned.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

// ParseJSON parses a JSON schema document into the tagged tree, preserving
// the key order of the source text. This is the loader to use for schemas
// read from files: regenerated output must be stable for identical input,
// which requires the declaration order to survive parsing.
func ParseJSON(data []byte) (*Section, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &SchemaError{Path: "$", Reason: "document is not a JSON object"}
	}
	return parseSection(dec, "$")
}

func parseSection(dec *json.Decoder, path string) (*Section, error) {
	entries, err := readObject(dec, path)
	if err != nil {
		return nil, err
	}
	return classify(entries, path)
}

// objectEntry is one key/value pair read from a JSON object, order preserved.
type objectEntry struct {
	key   string
	value any // scalar, []any, or []objectEntry for nested objects
}

func readObject(dec *json.Decoder, path string) ([]objectEntry, error) {
	var entries []objectEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("schema: %s: %w", path, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &SchemaError{Path: path, Reason: fmt.Sprintf("expected object key, got %v", keyTok)}
		}
		value, err := readValue(dec, path+"."+key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, objectEntry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return entries, nil
}

func readValue(dec *json.Decoder, path string) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return readObject(dec, path)
		case '[':
			var list []any
			for dec.More() {
				item, err := readValue(dec, path)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("schema: %s: %w", path, err)
			}
			return list, nil
		default:
			return nil, &SchemaError{Path: path, Reason: fmt.Sprintf("unexpected delimiter %v", v)}
		}
	default:
		return tok, nil
	}
}

// classify turns the ordered entries of one object into a Section, deciding
// per entry whether it is a nested section or a field definition. An entry
// carrying a type AND nested object children is ambiguous and rejected.
func classify(entries []objectEntry, path string) (*Section, error) {
	section := NewSection()
	for _, entry := range entries {
		childPath := path + "." + entry.key
		child, ok := entry.value.([]objectEntry)
		if !ok {
			// Bare leaf with no descriptor; treat as an untyped field so the
			// generator degrades to its placeholder.
			section.Add(entry.key, &Field{})
			continue
		}
		typ, hasType := entryString(child, "type")
		if !hasType {
			sub, err := classify(child, childPath)
			if err != nil {
				return nil, err
			}
			section.Add(entry.key, sub)
			continue
		}
		for _, c := range child {
			if _, nested := c.value.([]objectEntry); nested && !descriptorKeys[c.key] {
				return nil, &SchemaError{
					Path:   childPath,
					Reason: fmt.Sprintf("entry has type %q but also nested section %q", typ, c.key),
				}
			}
		}
		section.Add(entry.key, &Field{Type: typ, Options: entryOptions(child)})
	}
	return section, nil
}

func entryString(entries []objectEntry, key string) (string, bool) {
	for _, e := range entries {
		if e.key == key {
			s, ok := e.value.(string)
			return s, ok
		}
	}
	return "", false
}

// entryOptions extracts the option list from "options", falling back to
// "values", matching the two spellings schema documents use.
func entryOptions(entries []objectEntry) []string {
	for _, key := range []string{"options", "values"} {
		for _, e := range entries {
			list, ok := e.value.([]any)
			if e.key != key || !ok {
				continue
			}
			out := make([]string, 0, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok {
					out = append(out, s)
				} else {
					out = append(out, fmt.Sprint(item))
				}
			}
			return out
		}
	}
	return nil
}

// Parse converts the mapping form of a schema into the tagged tree. Go maps
// have no insertion order, so children are visited in the map's natural
// (sorted) key order; callers needing source-order fidelity should use
// ParseJSON or declare sections directly.
func Parse(raw map[string]any) (*Section, error) {
	return parseMap(raw, "$")
}

func parseMap(raw map[string]any, path string) (*Section, error) {
	section := NewSection()
	for _, key := range sortedKeys(raw) {
		childPath := path + "." + key
		value, ok := raw[key].(map[string]any)
		if !ok {
			section.Add(key, &Field{})
			continue
		}
		typ, hasType := value["type"].(string)
		if !hasType {
			sub, err := parseMap(value, childPath)
			if err != nil {
				return nil, err
			}
			section.Add(key, sub)
			continue
		}
		for k, v := range value {
			if _, nested := v.(map[string]any); nested && !descriptorKeys[k] {
				return nil, &SchemaError{
					Path:   childPath,
					Reason: fmt.Sprintf("entry has type %q but also nested section %q", typ, k),
				}
			}
		}
		section.Add(key, &Field{Type: typ, Options: mapOptions(value)})
	}
	return section, nil
}

func mapOptions(value map[string]any) []string {
	for _, key := range []string{"options", "values"} {
		list, ok := value[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
