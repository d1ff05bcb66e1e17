package usage

import "sort"

// Merge concatenates per-period readings in the order given, sorts them by
// timestamp and drops duplicate timestamps. Callers pass the most recent
// period first; on a tie the earlier argument wins.
func Merge(periods ...[]Reading) []Reading {
	total := 0
	for _, p := range periods {
		total += len(p)
	}

	merged := make([]Reading, 0, total)
	for _, p := range periods {
		merged = append(merged, p...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})

	out := merged[:0]
	for _, r := range merged {
		if len(out) > 0 && out[len(out)-1].Timestamp == r.Timestamp {
			continue
		}
		out = append(out, r)
	}
	return out
}
