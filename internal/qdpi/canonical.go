package qdpi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical serializes an event to its canonical byte form, the form
// written to the persisted event log and compared in golden traces.
//
// Canonical means:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping (< > & are written literally)
//  3. Strings NFC-normalized
//  4. Integers only; floats are rejected
//  5. No nulls
func (e Event) MarshalCanonical() ([]byte, error) {
	obj := map[string]any{
		"id":         e.ID,
		"episode_id": e.EpisodeID,
		"seq":        e.Seq,
		"name":       string(e.Name),
		"qdpi":       string(e.QDPI),
		"direction":  string(e.Direction),
		"refs":       e.Refs,
		"created_at": e.CreatedAt,
	}
	return marshalCanonical(obj)
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical form")
	case string:
		return marshalCanonicalString(val)
	case Name:
		return marshalCanonicalString(string(val))
	case Tag:
		return marshalCanonicalString(string(val))
	case Direction:
		return marshalCanonicalString(string(val))
	case Reason:
		return marshalCanonicalString(string(val))
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %q in canonical form", val)
		}
		return []byte(fmt.Sprintf("%d", n)), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("non-integer float %v in canonical form", val)
		}
		return []byte(fmt.Sprintf("%d", int64(val))), nil
	case []any:
		return marshalCanonicalArray(val)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalCanonicalArray(arr)
	case map[string]any:
		return marshalCanonicalObject(val)
	default:
		return nil, fmt.Errorf("unsupported type %T in canonical form", v)
	}
}

func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return utf16Less(keys[i], keys[j])
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("object key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// utf16Less compares strings by their UTF-16 code units, the ordering
// canonical JSON requires (it differs from byte order for supplementary
// plane characters).
func utf16Less(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
