// Package sheet is the only package allowed to interpret raw spreadsheet
// rows. It normalizes heterogeneous, legacy-named columns into the
// canonical domain.Vehicle, builds write payloads the upstream Apps
// Script accepts, and implements the pagination-aware fetch-all loop.
package sheet

import (
	"sort"
	"strings"
)

// RawRow is one untyped record as returned by the upstream spreadsheet
// API. It has no fixed shape: header names vary across deployments
// ("Price40" vs "D.O.C.40%"), values may be strings, numbers, bools, or
// missing entirely. Nothing outside this package should touch one.
type RawRow map[string]any

// idHeaders are the header spellings that may carry the row identifier,
// in lookup priority order.
var idHeaders = []string{"VehicleId", "VehicleID", "Id", "id", "#"}

// normalizeKey lowercases a header and strips all whitespace, so
// "D.O.C. 40 %" and "d.o.c.40%" collide on the same normalized form.
func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// lookup finds the value for a canonical field. It tries the known
// historical spellings by exact key first, then falls back to a
// case/space-insensitive match over all row keys. Go maps have no stable
// iteration order, so the fallback scans keys in sorted order to keep
// "first match wins" deterministic; duplicate normalized forms keep the
// first sorted key.
func (r RawRow) lookup(candidates ...string) (any, bool) {
	for _, key := range candidates {
		if v, ok := r[key]; ok {
			return v, true
		}
	}

	wanted := make(map[string]struct{}, len(candidates))
	for _, key := range candidates {
		wanted[normalizeKey(key)] = struct{}{}
	}

	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		nk := normalizeKey(k)
		if _, dup := seen[nk]; dup {
			continue
		}
		seen[nk] = struct{}{}
		if _, ok := wanted[nk]; ok {
			return r[k], true
		}
	}
	return nil, false
}

// ID returns the row identifier under any of its known header spellings,
// or "" if none carries a non-blank value.
func (r RawRow) ID() string {
	v, ok := r.lookup(idHeaders...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringValue(v))
}

// IsValid reports whether a row is structurally worth keeping: it must
// have a non-blank identifier and at least one other non-blank value.
// Apps Script pads trailing sheet rows with empty cells; this filters
// them out before they reach the accumulator.
func (r RawRow) IsValid() bool {
	id := r.ID()
	if id == "" {
		return false
	}
	for key, v := range r {
		if isIDHeader(key) {
			continue
		}
		if strings.TrimSpace(stringValue(v)) != "" {
			return true
		}
	}
	return false
}

func isIDHeader(key string) bool {
	nk := normalizeKey(key)
	for _, h := range idHeaders {
		if normalizeKey(h) == nk {
			return true
		}
	}
	return false
}
