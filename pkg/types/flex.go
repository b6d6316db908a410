package types

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
)

// FlexKind tags the encoding a FlexField arrived in.
type FlexKind int

// Flexible field encodings.
const (
	FlexAbsent FlexKind = iota
	FlexString
	FlexSequence
)

// FlexField is a stored attribute whose encoding is not fixed: it may be
// missing, a JSON array, or a string holding either a JSON array or a
// comma-separated list. Use ParseFlexible to obtain the normalized list.
type FlexField struct {
	kind FlexKind
	text string
	seq  []string
}

// FlexFromString returns a FlexField holding an undecoded string.
func FlexFromString(s string) FlexField {
	return FlexField{kind: FlexString, text: s}
}

// FlexFromSlice returns a FlexField holding an already structured list.
func FlexFromSlice(seq []string) FlexField {
	return FlexField{kind: FlexSequence, seq: slices.Clone(seq)}
}

// Kind reports how the field was encoded.
func (f FlexField) Kind() FlexKind {
	return f.kind
}

// UnmarshalJSON decodes null as absent, a JSON string as FlexString and a
// JSON array as FlexSequence. Any other JSON value is kept as a string of
// its JSON text.
func (f *FlexField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = FlexField{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexFromString(s)
	case '[':
		items, ok := decodeArray(trimmed)
		if !ok {
			*f = FlexFromString(string(trimmed))
			return nil
		}
		*f = FlexField{kind: FlexSequence, seq: items}
	default:
		*f = FlexFromString(string(trimmed))
	}
	return nil
}

// MarshalJSON writes the field back in the encoding it was read in.
func (f FlexField) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case FlexString:
		return json.Marshal(f.text)
	case FlexSequence:
		if f.seq == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(f.seq)
	default:
		return []byte("null"), nil
	}
}

// ParseFlexible normalizes a flexible field to a list of strings. The result
// is never nil and decoding problems are never reported: a string that is
// not a JSON array falls back to a comma split.
func ParseFlexible(f FlexField) []string {
	switch f.kind {
	case FlexSequence:
		out := make([]string, len(f.seq))
		copy(out, f.seq)
		return out
	case FlexString:
		return ParseFlexibleString(f.text)
	default:
		return []string{}
	}
}

// ParseFlexibleString decodes s as a JSON array, or splits it on commas
// when it is not one. Pieces are trimmed and empty pieces dropped.
func ParseFlexibleString(s string) []string {
	if items, ok := decodeArray([]byte(s)); ok {
		return items
	}
	return splitList(s)
}

// decodeArray decodes a JSON array. String elements are kept as-is; other
// elements are kept as their JSON text.
func decodeArray(data []byte) ([]string, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(bytes.TrimSpace(r)))
	}
	return out, true
}

func splitList(s string) []string {
	out := []string{}
	for _, piece := range strings.Split(s, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		out = append(out, piece)
	}
	return out
}
