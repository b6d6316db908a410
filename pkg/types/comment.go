package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Comment is a guestbook entry. Comments are created by Submit and never
// updated or deleted by this module.
type Comment struct {
	ID        int64     `json:"id"`
	Name      string    `json:"Name"`
	Email     string    `json:"Email"`
	Comment   string    `json:"Comment"`
	Photo     *string   `json:"Photo"`
	Pinned    bool      `json:"Pinned"`
	IsAdmin   bool      `json:"IsAdmin"`
	CreatedAt Timestamp `json:"created_at"`
}

// NewComment is the row written by an insert. The service assigns id,
// pinned/admin flags and created_at.
type NewComment struct {
	Name    string  `json:"Name"`
	Email   string  `json:"Email"`
	Comment string  `json:"Comment"`
	Photo   *string `json:"Photo"`
}

// PartitionPinned returns pinned comments followed by the rest. Relative
// order within each group is preserved.
func PartitionPinned(comments []Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.Pinned {
			out = append(out, c)
		}
	}
	for _, c := range comments {
		if !c.Pinned {
			out = append(out, c)
		}
	}
	return out
}

// Timestamp is a time decoded from the table service. Columns with and
// without a zone offset are both accepted; values without one are UTC.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order by UnmarshalJSON.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON accepts null and the timestamp layouts the service emits.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized value %q", s)
}

// MarshalJSON writes RFC 3339 with nanoseconds, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
