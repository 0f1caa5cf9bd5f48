package cache

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Key identifies a cached query: the entity name first, then filter
// descriptors. Invalidation matches on element prefixes.
type Key []string

// NewKey builds a key from an entity and descriptor parts
func NewKey(entity string, parts ...string) Key {
	k := make(Key, 0, len(parts)+1)
	k = append(k, entity)
	return append(k, parts...)
}

// WithFilters appends a deterministic descriptor for filters. Empty filter
// sets append nothing, so ["missions"] and ["missions", ""] never both exist.
func (k Key) WithFilters(v url.Values) Key {
	enc := v.Encode()
	if enc == "" {
		return k
	}
	return append(append(Key(nil), k...), enc)
}

// Entity is the first element, used for metric labels
func (k Key) Entity() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// HasPrefix reports whether every element of prefix matches k in order.
// The empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

// id is the storage identity. JSON keeps elements containing "/" distinct.
func (k Key) id() string {
	b, _ := json.Marshal([]string(k))
	return string(b)
}
