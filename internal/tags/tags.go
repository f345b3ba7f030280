// Package tags holds the ordered, duplicate-free tag sets attached to log items.
package tags

import (
	"encoding/json"
	"fmt"
	"strings"
)

// List is an ordered set of tags. It travels on the wire as a single
// space-joined string.
type List []string

// Parse splits raw on whitespace, dropping empty tokens and exact duplicates.
func Parse(raw string) List {
	var out List
	for _, tok := range strings.Fields(raw) {
		out = out.With(tok)
	}
	return out
}

// Has reports whether tag is present.
func (l List) Has(tag string) bool {
	for _, t := range l {
		if t == tag {
			return true
		}
	}
	return false
}

// With returns the list with tag appended. Empty and duplicate tags are ignored.
func (l List) With(tag string) List {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.ContainsAny(tag, " \t\n") || l.Has(tag) {
		return l
	}
	return append(l, tag)
}

// Without returns a copy of the list with tag removed.
func (l List) Without(tag string) List {
	out := make(List, 0, len(l))
	for _, t := range l {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// String joins the tags with single spaces.
func (l List) String() string {
	return strings.Join(l, " ")
}

// Clone returns an independent copy.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// MarshalJSON encodes the list as a space-joined string.
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a space-joined string, an array of strings, or null.
func (l *List) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return fmt.Errorf("decoding tag array: %w", err)
		}
		*l = Parse(strings.Join(arr, " "))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding tags: %w", err)
	}
	*l = Parse(s)
	return nil
}
