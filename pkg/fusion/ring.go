package fusion

// visibilityRing retains the two most recent raw snapshots' word sets, used
// solely to decide whether a disappeared word is still plausibly present
// (spec.md §4.1 rule V / Glossary). Rule 6's own "previous availableLetters"
// history is the single most recent value, tracked separately by Fuser.prevLetters.
type visibilityRing struct {
	words [2]map[string]bool
}

func newVisibilityRing() *visibilityRing {
	return &visibilityRing{}
}

// push records a new raw snapshot's word set, evicting the oldest.
func (r *visibilityRing) push(words map[string]bool) {
	r.words[0] = r.words[1]
	r.words[1] = words
}

// seenRecently reports whether word appeared in either of the last two raw
// snapshots.
func (r *visibilityRing) seenRecently(word string) bool {
	for _, set := range r.words {
		if set != nil && set[word] {
			return true
		}
	}
	return false
}
