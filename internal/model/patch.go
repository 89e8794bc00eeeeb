package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Patch is a sparse update body. A key that is absent leaves the column
// alone, a key set to null clears it where the column allows that.
type Patch map[string]json.RawMessage

// Has reports whether the caller sent key at all.
func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// IsNull reports whether key was sent as an explicit null.
func (p Patch) IsNull(key string) bool {
	raw, ok := p[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Decode unmarshals the value of key into dst.
func (p Patch) Decode(key string, dst interface{}) error {
	raw, ok := p[key]
	if !ok {
		return fmt.Errorf("%s: not present", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: invalid value", key)
	}
	return nil
}

// Unknown lists keys outside allowed, sorted.
func (p Patch) Unknown(allowed ...string) []string {
	set := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		set[k] = struct{}{}
	}
	var out []string
	for k := range p {
		if _, ok := set[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
