// Package snapshot defines the canonical raw-snapshot shape and the
// normalization that every other component assumes has already run
// (spec.md §3 "Snapshot (raw input)", §9 "Dynamic shape of snapshots").
package snapshot

import "strings"

// Snapshot is the canonical normalized shape: lowercased, non-alphabetic
// stripped, one word list per player, loose letters as a single string.
type Snapshot struct {
	PlayersWords    [][]string
	AvailableLetters string
}

// NormalizeWord lowercases s and strips everything but a-z.
func NormalizeWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeLetters normalizes a loose-letters string the same way.
func NormalizeLetters(s string) string {
	return NormalizeWord(s)
}

// normalizeWords lowercases/strips a list of words, dropping any that
// normalize to empty.
func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := NormalizeWord(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// FromPlayers builds a normalized Snapshot from the "players: [{words:
// [...]}]" / "wordsPerPlayer: [[...]]" shapes (spec.md §6). Both shapes
// reduce to the same [][]string once unwrapped by the HTTP layer.
func FromPlayers(playersWords [][]string, availableLetters string) Snapshot {
	out := make([][]string, len(playersWords))
	for i, words := range playersWords {
		out[i] = normalizeWords(words)
	}
	return Snapshot{
		PlayersWords:     out,
		AvailableLetters: NormalizeLetters(availableLetters),
	}
}

// FromDelta applies an {addedWords, removedWords, availableLetters} delta
// (spec.md §6) on top of the previous raw snapshot. Because the delta shape
// carries no player index, added/removed words are applied to a single
// synthetic player list representing "the board" as a whole; multi-player
// attribution for delta-shaped updates is out of scope by construction (the
// upstream vision pipeline that would assign players is itself out of
// scope per spec.md §1). removedWords that aren't present are ignored.
func FromDelta(prev Snapshot, addedWords, removedWords []string, availableLetters string) Snapshot {
	var flat []string
	for _, p := range prev.PlayersWords {
		flat = append(flat, p...)
	}
	removed := make(map[string]bool, len(removedWords))
	for _, w := range removedWords {
		removed[NormalizeWord(w)] = true
	}
	var next []string
	for _, w := range flat {
		if !removed[w] {
			next = append(next, w)
		}
	}
	for _, w := range addedWords {
		if n := NormalizeWord(w); n != "" {
			next = append(next, n)
		}
	}
	letters := availableLetters
	if letters == "" {
		letters = prev.AvailableLetters
	}
	return Snapshot{
		PlayersWords:     [][]string{next},
		AvailableLetters: NormalizeLetters(letters),
	}
}

// Flatten returns every word across all players, preserving duplicates.
func (s Snapshot) Flatten() []string {
	var out []string
	for _, p := range s.PlayersWords {
		out = append(out, p...)
	}
	return out
}

// WordSet returns the distinct set of words across all players.
func (s Snapshot) WordSet() map[string]bool {
	set := make(map[string]bool)
	for _, w := range s.Flatten() {
		set[w] = true
	}
	return set
}
