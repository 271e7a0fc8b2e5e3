package journal

import "sort"

// Diff computes word_added/word_removed events between the previous and
// current per-player word sets (spec.md §4.3 "Diff"). Both slices are
// indexed by playerIndex; a shorter prev is treated as having empty sets for
// the trailing indices (a new player joined). sessionID is stamped onto
// every event; nextSeq supplies each event's strictly increasing
// monotonicTimestamp.
func Diff(prev, curr []map[string]bool, zipf func(word string) float64, sessionID string, nextSeq func() int64) []Event {
	n := len(curr)
	if len(prev) > n {
		n = len(prev)
	}

	var events []Event
	for i := 0; i < n; i++ {
		var p, c map[string]bool
		if i < len(prev) {
			p = prev[i]
		}
		if i < len(curr) {
			c = curr[i]
		}

		for _, w := range sortedKeys(c) {
			if !p[w] {
				events = append(events, newEvent(WordAdded, i, w, zipf(w), sessionID, nextSeq()))
			}
		}
		for _, w := range sortedKeys(p) {
			if !c[w] {
				events = append(events, newEvent(WordRemoved, i, w, zipf(w), sessionID, nextSeq()))
			}
		}
	}
	return events
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for w := range m {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
