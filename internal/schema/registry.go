// Package schema centralizes JSON schema versioning and deterministic
// marshaling for every structured artifact the interpreter emits: machine
// step snapshots, verification reports, and project manifests. Keeping this
// in one package means every consumer (the CLI, the stepping REPL, a host
// debugger UI) agrees on one envelope shape.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Schema version constants stamped into the "schema" field of every
// structured artifact below.
const (
	ErrorV1      = "schema.error/v1"
	StepV1       = "schema.step/v1"
	VerificationV1 = "schema.verification/v1"
	ManifestV1   = "schema.manifest/v1"
)

// Accepts checks whether a schema version is compatible with the expected
// prefix, supporting forward compatibility within a major version
// (e.g. "schema.step/v1.2" accepts a reader expecting "schema.step/v1").
func Accepts(got, wantPrefix string) bool {
	if got == wantPrefix {
		return true
	}
	if strings.HasPrefix(got, wantPrefix+".") {
		return true
	}
	return false
}

// MarshalDeterministic marshals a value to JSON with recursively sorted
// object keys, so two runs over equal data always produce byte-identical
// output (needed for golden-file trace comparisons).
func MarshalDeterministic(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	data := bytes.TrimRight(buf.Bytes(), "\n")

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		// Not valid JSON to re-sort (shouldn't happen); return as-is.
		return data, nil
	}
	return marshalSorted(generic)
}

func marshalSorted(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			valJSON, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			buf.Write(valJSON)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			elemJSON, err := marshalSorted(elem)
			if err != nil {
				return nil, err
			}
			buf.Write(elemJSON)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	default:
		return json.Marshal(val)
	}
}

// FormatJSON pretty-prints already-marshaled compact JSON with two-space
// indentation, for human-facing CLI output.
func FormatJSON(compact []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
