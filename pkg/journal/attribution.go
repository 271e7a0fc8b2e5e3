package journal

import (
	"sort"

	"github.com/wordbench/wordbench/pkg/fusion"
	"github.com/wordbench/wordbench/pkg/snapshot"
)

// Attributor re-attributes fusion's flat corrected word list back to player
// indices (spec.md §9 "Player re-attribution after fusion"). Fusion itself
// has no player structure once a correction runs (a split erases the raw
// player boundary), so the journal step must reconstruct it.
//
// Convention implemented (spec.md §9's flagged open question, resolved):
// a corrected word prefers the player whose raw word list contains its
// RawSource (the un-corrected source word — for a split, the concatenated
// input both halves came from). A word with no RawSource this round (a
// restored disappeared word) falls back to whichever player owned that
// exact word last round. If neither resolves it, the word is assigned to
// player 0, the lowest index, keeping the ascending tie-break rule uniform.
type Attributor struct {
	// owner maps a fused word to the playerIndex that last owned it,
	// carried across rounds to resolve restorations.
	owner map[string]int
}

// NewAttributor creates an empty Attributor.
func NewAttributor() *Attributor {
	return &Attributor{owner: make(map[string]int)}
}

// Attribute assigns each fused word to a playerIndex and returns the
// per-player word sets Diff expects, updating the owner map for next round.
func (a *Attributor) Attribute(fused []fusion.FusedWord, raw snapshot.Snapshot) []map[string]bool {
	rawOwner := make(map[string]int)
	for i, words := range raw.PlayersWords {
		for _, w := range words {
			if _, exists := rawOwner[w]; !exists {
				rawOwner[w] = i
			}
		}
	}

	numPlayers := len(raw.PlayersWords)
	assignments := make(map[string]int, len(fused))

	for _, fw := range fused {
		idx, ok := 0, false
		if fw.RawSource != "" {
			idx, ok = rawOwner[fw.RawSource]
		}
		if !ok {
			idx, ok = a.owner[fw.Word]
		}
		if !ok {
			idx = 0
		}
		if idx >= numPlayers {
			numPlayers = idx + 1
		}
		assignments[fw.Word] = idx
	}

	curr := make([]map[string]bool, numPlayers)
	for i := range curr {
		curr[i] = make(map[string]bool)
	}
	for word, idx := range assignments {
		curr[idx][word] = true
	}

	nextOwner := make(map[string]int, len(assignments))
	for word, idx := range assignments {
		nextOwner[word] = idx
	}
	a.owner = nextOwner

	return curr
}

// Flatten returns a deterministic, alphabetically-sorted view of the words
// owned by each player (used by the broadcast payload's echoed player
// lists).
func Flatten(curr []map[string]bool) [][]string {
	out := make([][]string, len(curr))
	for i, set := range curr {
		words := make([]string, 0, len(set))
		for w := range set {
			words = append(words, w)
		}
		sort.Strings(words)
		out[i] = words
	}
	return out
}
