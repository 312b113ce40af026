package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// orderedField is one key/value pair of a JSON object, captured in the
// order it appeared in the source. §4.2 requires parsers to preserve
// first-seen order from the source file; decoding into a Go map discards
// that order, so parsers that need it walk the token stream instead.
type orderedField struct {
	key   string
	value json.RawMessage
}

// decodeOrderedObject reads one JSON object from dec, preserving the
// source order of its fields. dec must be positioned immediately before
// the object's opening '{'.
func decodeOrderedObject(dec *json.Decoder) ([]orderedField, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsers: expected JSON object, got %v", tok)
	}

	var fields []orderedField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields = append(fields, orderedField{key: key, value: raw})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return fields, nil
}

// decodeOrderedObjectBytes is decodeOrderedObject over an already-extracted
// json.RawMessage, for recursing into a nested object field.
func decodeOrderedObjectBytes(raw json.RawMessage) ([]orderedField, error) {
	return decodeOrderedObject(json.NewDecoder(bytes.NewReader(raw)))
}

// orderedObjectField locates a named field within an already-decoded
// ordered object and, if it holds a JSON object itself, returns its
// fields in source order.
func orderedObjectField(fields []orderedField, name string) ([]orderedField, bool, error) {
	for _, f := range fields {
		if f.key != name {
			continue
		}
		trimmed := bytes.TrimSpace(f.value)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, true, nil
		}
		obj, err := decodeOrderedObjectBytes(f.value)
		if err != nil {
			return nil, true, err
		}
		return obj, true, nil
	}
	return nil, false, nil
}
