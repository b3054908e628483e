package validation

import (
	"encoding/json"
	"sort"
	"strings"
)

// Issues collects human-readable problems per JSON field name.
type Issues struct {
	fields map[string][]string
}

// NewIssues returns an empty issue set.
func NewIssues() *Issues {
	return &Issues{fields: make(map[string][]string)}
}

// Add records message for field. Duplicate messages are kept once.
func (i *Issues) Add(field, message string) {
	if i.fields == nil {
		i.fields = make(map[string][]string)
	}
	for _, m := range i.fields[field] {
		if m == message {
			return
		}
	}
	i.fields[field] = append(i.fields[field], message)
}

// Empty reports whether no issue was recorded.
func (i *Issues) Empty() bool {
	return i == nil || len(i.fields) == 0
}

// Has reports whether field has at least one issue.
func (i *Issues) Has(field string) bool {
	if i == nil {
		return false
	}
	return len(i.fields[field]) > 0
}

// Field returns the messages recorded for field.
func (i *Issues) Field(field string) []string {
	if i == nil {
		return nil
	}
	return i.fields[field]
}

// Fields returns the names of all fields with issues, sorted.
func (i *Issues) Fields() []string {
	if i == nil {
		return nil
	}
	names := make([]string, 0, len(i.fields))
	for name := range i.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Only returns the subset of issues that belong to the named fields.
func (i *Issues) Only(fields ...string) *Issues {
	out := NewIssues()
	if i == nil {
		return out
	}
	for _, f := range fields {
		for _, m := range i.fields[f] {
			out.Add(f, m)
		}
	}
	return out
}

// Merge copies every issue of other into i.
func (i *Issues) Merge(other *Issues) {
	if other == nil {
		return
	}
	for f, msgs := range other.fields {
		for _, m := range msgs {
			i.Add(f, m)
		}
	}
}

// Err returns i as an error, or nil when empty.
func (i *Issues) Err() error {
	if i.Empty() {
		return nil
	}
	return i
}

func (i *Issues) Error() string {
	parts := make([]string, 0, len(i.fields))
	for _, name := range i.Fields() {
		parts = append(parts, name+": "+strings.Join(i.fields[name], "; "))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// MarshalJSON encodes the issues as an object of field -> messages.
func (i *Issues) MarshalJSON() ([]byte, error) {
	if i == nil || i.fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(i.fields)
}

// UnmarshalJSON decodes an object of field -> messages.
func (i *Issues) UnmarshalJSON(data []byte) error {
	fields := make(map[string][]string)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	i.fields = fields
	return nil
}
