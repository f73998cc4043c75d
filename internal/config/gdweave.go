package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// GDWeaveFile is an object of name -> value (bool, string, integer, or
// float), with no default values, descriptions, or ranges.
type GDWeaveFile struct {
	order  []string
	values map[string]any
}

// ParseGDWeave parses a GDWeave config document.
func ParseGDWeave(data []byte) (*GDWeaveFile, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(stripBOM(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("config: parse gdweave json: %w", err)
	}

	f := &GDWeaveFile{values: make(map[string]any, len(raw))}

	// Recover declaration order from the raw token stream since
	// encoding/json maps don't preserve it.
	order, err := objectKeyOrder(data)
	if err != nil {
		return nil, err
	}
	f.order = order

	for k, v := range raw {
		f.values[k] = normalizeJSONNumber(v)
	}

	return f, nil
}

func normalizeJSONNumber(v any) any {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if fl, err := n.Float64(); err == nil {
			return fl
		}
	}
	return v
}

// objectKeyOrder walks the top-level object's tokens to recover key order.
func objectKeyOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("config: gdweave token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("config: gdweave root must be an object")
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		order = append(order, key)

		// skip the value
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Get returns a value by name.
func (f *GDWeaveFile) Get(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Set inserts or replaces a value, appending to the declared order if new.
func (f *GDWeaveFile) Set(name string, value any) {
	if _, exists := f.values[name]; !exists {
		f.order = append(f.order, name)
	}
	f.values[name] = value
}

// Serialize pretty-prints the file back to JSON, preserving declaration
// order.
func (f *GDWeaveFile) Serialize() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("{\n")

	for i, name := range f.order {
		v, ok := f.values[name]
		if !ok {
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("config: encode %s: %w", name, err)
		}

		fmt.Fprintf(&b, "  %s: %s", mustMarshalString(name), encoded)
		if i < len(f.order)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString("}\n")
	return b.Bytes(), nil
}

func mustMarshalString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}
