package realtime

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"skywatch/crewdeck/internal/constants"
)

// Filter restricts a channel to rows where Column equals Value
type Filter struct {
	Column string
	Value  string
}

// Eq builds a filter, e.g. Eq("user_id", id)
func Eq(column, value string) Filter {
	return Filter{Column: column, Value: value}
}

func (f Filter) IsZero() bool {
	return f.Column == ""
}

// String renders the change-feed filter syntax, column=eq.value
func (f Filter) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Column + "=eq." + f.Value
}

// ParseFilter reads column=eq.value. The empty string is the zero filter.
func ParseFilter(s string) (Filter, error) {
	if s == "" {
		return Filter{}, nil
	}
	col, rest, ok := strings.Cut(s, "=")
	if !ok || col == "" {
		return Filter{}, fmt.Errorf("invalid filter %q: missing column", s)
	}
	val, ok := strings.CutPrefix(rest, "eq.")
	if !ok {
		return Filter{}, fmt.Errorf("invalid filter %q: only eq is supported", s)
	}
	return Filter{Column: col, Value: val}, nil
}

// Matches reports whether the change touches a row selected by f. Updates
// match on either image so a row moving out of the filter is still seen.
func (f Filter) Matches(c Change) bool {
	if f.IsZero() {
		return true
	}
	return columnEquals(c.New, f.Column, f.Value) || columnEquals(c.Old, f.Column, f.Value)
}

func columnEquals(row map[string]any, col, want string) bool {
	v, ok := row[col]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == want
}

var unsafeChannelChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ChannelName is deterministic per (table, filter). The hash suffix keeps
// filters that sanitise to the same text apart.
func ChannelName(table constants.Table, f Filter) string {
	if f.IsZero() {
		return table.String() + "-changes"
	}
	raw := f.String()
	h := fnv.New32a()
	_, _ = h.Write([]byte(raw))
	return fmt.Sprintf("%s-%s-%08x", table, unsafeChannelChars.ReplaceAllString(raw, "-"), h.Sum32())
}
