// DeDup collapses duplicate records by a key and picks a winner by policy:
//
//   - "keep-first"   : keep the earliest occurrence
//   - "keep-last"    : keep the latest occurrence (default)
//   - "most-complete": keep the record with the most non-empty fields; ties
//     break by keep-last
//
// Winners are emitted in input order of the winning record; records missing a
// key field pass through after them.
package builtin

import (
	"fmt"
	"sort"
	"strings"

	"hdidash/pkg/records"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the field names that form the key, e.g. ["country","year","metric"].
	Keys []string

	// Policy selects the winner among duplicates.
	Policy string
}

// Key renders the composite key of r over keys. ok is false when a key field
// is absent.
func Key(r records.Record, keys []string) (string, bool) {
	var b strings.Builder
	for i, k := range keys {
		v, ok := r[k]
		if !ok {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch t := v.(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return b.String(), true
}

func completeness(r records.Record) int {
	n := 0
	for k := range r {
		if !r.Missing(k) {
			n++
		}
	}
	return n
}

func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[string]slot, len(in))
	var passthrough []int

	for i, r := range in {
		key, ok := Key(r, d.Keys)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		prev, exists := winners[key]
		switch policy {
		case "keep-first":
			if !exists {
				winners[key] = slot{index: i}
			}
		case "most-complete":
			s := slot{index: i, score: completeness(r)}
			if !exists || s.score >= prev.score {
				winners[key] = s
			}
		default:
			winners[key] = slot{index: i}
		}
	}

	idx := make([]int, 0, len(winners))
	for _, s := range winners {
		idx = append(idx, s.index)
	}
	sort.Ints(idx)

	out := make([]records.Record, 0, len(idx)+len(passthrough))
	for _, i := range idx {
		out = append(out, in[i])
	}
	for _, i := range passthrough {
		out = append(out, in[i])
	}
	return out
}
