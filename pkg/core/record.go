// pkg/core/record.go
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is a schema-shaped document that preserves field insertion order.
// Plain maps would randomize key order on marshal; downstream consumers diff
// generated JSON byte-for-byte, so order must follow the schema.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set adds or replaces a field. A key keeps its original position when
// overwritten.
func (r *Record) Set(key string, value any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether it is present.
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Section returns the nested record stored under key, or nil if the
// receiver is nil, the key is absent, or the key holds a leaf value.
// Lookups chain safely across missing sections.
func (r *Record) Section(key string) *Record {
	if r == nil {
		return nil
	}
	v, ok := r.values[key]
	if !ok {
		return nil
	}
	sub, ok := v.(*Record)
	if !ok {
		return nil
	}
	return sub
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON writes the fields as a JSON object in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", key, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", key, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping its key order. Nested objects
// become nested Records; numbers are kept as json.Number to avoid float
// round-tripping noise.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}
	r.keys = nil
	r.values = make(map[string]any)
	return r.decodeInto(dec)
}

func (r *Record) decodeInto(dec *json.Decoder) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected object key, got %v", keyTok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return err
		}
		r.Set(key, value)
	}
	// consume closing brace
	_, err := dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			sub := NewRecord()
			if err := sub.decodeInto(dec); err != nil {
				return nil, err
			}
			return sub, nil
		case '[':
			var list []any
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("record: unexpected delimiter %v", v)
		}
	default:
		return tok, nil
	}
}
