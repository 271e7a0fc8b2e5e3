// Package fusion implements Temporal Fusion (spec.md §4.1): it corrects
// OCR-class noise in the raw snapshot stream using dictionary membership,
// edit-distance to the prior fused state, and a short visibility window.
package fusion

import (
	"sort"
	"strings"

	"github.com/wordbench/wordbench/pkg/dictionary"
	"github.com/wordbench/wordbench/pkg/snapshot"
)

// letterFreqOrder is the frequency-ordered fallback alphabet used by rule 6
// when no loose letter yields a dictionary word (spec.md §4.1 rule 6,
// "frequency-ordered common letters as a fallback").
var letterFreqOrder = []byte("etaoinshrdlucmwfgypbvkjxqz")

// FusedWord is one word in the fused output, carrying the provenance the
// move journal needs for player re-attribution (spec.md §9).
type FusedWord struct {
	Word string
	// Modified is true if this word was produced by correction rules 2-6
	// rather than accepted unchanged (rule 1).
	Modified bool
	// RawSource is the single raw input word whose correction produced
	// this word, when one exists this round (empty for a restored
	// disappeared word, which has no raw ancestor this round).
	RawSource string
}

// FusedState is fusion's output: a flat pseudo-player word list plus the
// normalized loose letters (spec.md §4.1 Outputs).
type FusedState struct {
	Words            []FusedWord
	AvailableLetters string
}

// WordSet returns the distinct set of words in the fused state.
func (f FusedState) WordSet() map[string]bool {
	set := make(map[string]bool, len(f.Words))
	for _, w := range f.Words {
		set[w.Word] = true
	}
	return set
}

// Fuser holds the process-wide fusion trackers: the previous fused state,
// the confidence map, and the visibility ring (spec.md §3 Lifecycle —
// these persist for the process lifetime and are mutated only by the
// single solver goroutine, spec.md §5).
type Fuser struct {
	dict *dictionary.Dictionary

	prevFused   map[string]bool
	prevLetters string

	confidence *confidenceTracker
	ring       *visibilityRing
}

// New creates a Fuser bound to dict.
func New(dict *dictionary.Dictionary) *Fuser {
	return &Fuser{
		dict:       dict,
		prevFused:  make(map[string]bool),
		confidence: newConfidenceTracker(),
		ring:       newVisibilityRing(),
	}
}

// ConfidenceSnapshot exposes the current confidence map for diagnostics.
func (f *Fuser) ConfidenceSnapshot() map[string]Entry {
	return f.confidence.Snapshot()
}

// Fuse corrects one raw snapshot against the fuser's current belief and
// returns the new fused state. Fuse never fails (spec.md §4.1 Failure
// model); worst case it passes input through.
func (f *Fuser) Fuse(raw snapshot.Snapshot) FusedState {
	rawWordSet := raw.WordSet()

	// D: words in the previous fused state not appearing in the current
	// raw snapshot (spec.md §4.1 rule 2).
	var dSorted []string
	dSet := make(map[string]bool)
	for w := range f.prevFused {
		if !rawWordSet[w] {
			dSet[w] = true
			dSorted = append(dSorted, w)
		}
	}
	sort.Strings(dSorted)

	var corrections []FusedWord
	for _, playerWords := range raw.PlayersWords {
		for _, w := range playerWords {
			corrections = append(corrections, f.correctWord(w, dSet, dSorted)...)
		}
	}

	// Confidence veto: discard a modified word if the raw input also
	// contains a dictionary-valid word one edit away from it.
	var survivors []FusedWord
	for _, c := range corrections {
		if c.Modified && f.vetoed(c.Word, rawWordSet) {
			continue
		}
		survivors = append(survivors, c)
	}

	// Disappeared-word restoration. The ring must already include this raw
	// snapshot so "seen recently" spans exactly the last two raws, not three.
	f.ring.push(rawWordSet)

	survivorSet := make(map[string]bool, len(survivors))
	for _, c := range survivors {
		survivorSet[c.Word] = true
	}
	for _, p := range dSorted {
		if survivorSet[p] {
			continue
		}
		if subsumed(p, survivorSet) {
			continue
		}
		if !f.ring.seenRecently(p) {
			continue
		}
		if hasCloseNeighbour(p, rawWordSet) {
			continue
		}
		survivors = append(survivors, FusedWord{Word: p, Modified: false, RawSource: ""})
		survivorSet[p] = true
	}

	f.updateConfidence(survivors)

	f.prevFused = survivorSet
	f.prevLetters = raw.AvailableLetters

	return FusedState{Words: survivors, AvailableLetters: raw.AvailableLetters}
}

// subsumed reports whether p is a substring of some word in set, or some
// word in set is a substring of p ("not subsumed" check in restoration).
func subsumed(p string, set map[string]bool) bool {
	for w := range set {
		if w == p {
			continue
		}
		if strings.Contains(w, p) || strings.Contains(p, w) {
			return true
		}
	}
	return false
}

// hasCloseNeighbour reports whether any word in rawWordSet is within one
// edit of p — the likely correction that should block restoration.
func hasCloseNeighbour(p string, rawWordSet map[string]bool) bool {
	for w := range rawWordSet {
		if editDistanceAtMost1(p, w) {
			return true
		}
	}
	return false
}

func (f *Fuser) vetoed(modifiedWord string, rawWordSet map[string]bool) bool {
	for r := range rawWordSet {
		if f.dict.Contains(r) && editDistanceAtMost1(modifiedWord, r) {
			return true
		}
	}
	return false
}

func (f *Fuser) updateConfidence(final []FusedWord) {
	finalByWord := make(map[string]bool, len(final))
	modifiedByWord := make(map[string]bool, len(final))
	for _, c := range final {
		finalByWord[c.Word] = true
		if c.Modified {
			modifiedByWord[c.Word] = true
		}
	}

	tracked := f.confidence.Snapshot()
	seen := make(map[string]bool, len(tracked)+len(final))
	for w := range tracked {
		seen[w] = true
	}
	for w := range finalByWord {
		seen[w] = true
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)

	for _, w := range words {
		switch {
		case modifiedByWord[w]:
			f.confidence.observeModified(w)
		case finalByWord[w]:
			f.confidence.observeDirect(w)
		default:
			f.confidence.decay(w)
		}
	}
}

// correctWord applies the rule 1-6 correction pipeline to a single raw
// word, returning zero or more output words (zero if discarded, one for
// accept/edit/insert, two or three for a split).
func (f *Fuser) correctWord(w string, dSet map[string]bool, dSorted []string) []FusedWord {
	if len(w) < 3 {
		if ins, ok := f.tryInsertions(w); ok {
			return []FusedWord{{Word: ins, Modified: true, RawSource: w}}
		}
		return nil
	}

	// Rule 1: accept.
	if f.dict.Contains(w) {
		return []FusedWord{{Word: w, Modified: false, RawSource: w}}
	}

	// Rule 2: re-split against a disappeared word.
	if parts, ok := f.resplitAgainstDisappeared(w, dSet, dSorted); ok {
		out := make([]FusedWord, len(parts))
		for i, p := range parts {
			out[i] = FusedWord{Word: p, Modified: true, RawSource: w}
		}
		return out
	}

	// Rule 3: split into two real dictionary words.
	if left, right, ok := f.splitIntoTwoWords(w, dSet); ok {
		return []FusedWord{
			{Word: left, Modified: true, RawSource: w},
			{Word: right, Modified: true, RawSource: w},
		}
	}

	// Rule 4: recursive split, depth <= 3, for longer non-dictionary words.
	if len(w) >= 6 {
		if parts, ok := trySplitRecursive(f.dict, w, 3); ok && len(parts) >= 2 {
			out := make([]FusedWord, len(parts))
			for i, p := range parts {
				out[i] = FusedWord{Word: p, Modified: true, RawSource: w}
			}
			return out
		}
	}

	// Rule 5: single-edit correction to a prior fused word.
	if candidate, ok := f.singleEditToPrior(w); ok {
		return []FusedWord{{Word: candidate, Modified: true, RawSource: w}}
	}

	// Rule 6: add one letter to reach a dictionary word.
	if ins, ok := f.tryInsertions(w); ok {
		return []FusedWord{{Word: ins, Modified: true, RawSource: w}}
	}

	return nil
}

func (f *Fuser) resplitAgainstDisappeared(w string, dSet map[string]bool, dSorted []string) ([]string, bool) {
	for _, d := range dSorted {
		if len(d) < 3 || len(d) >= len(w) {
			continue
		}
		if strings.HasPrefix(w, d) {
			rest := w[len(d):]
			if len(rest) >= 3 && (f.dict.Contains(rest) || dSet[rest]) {
				return []string{d, rest}, true
			}
		}
		if strings.HasSuffix(w, d) {
			rest := w[:len(w)-len(d)]
			if len(rest) >= 3 && (f.dict.Contains(rest) || dSet[rest]) {
				return []string{rest, d}, true
			}
		}
		if idx := strings.Index(w, d); idx > 0 && idx+len(d) < len(w) {
			left := w[:idx]
			right := w[idx+len(d):]
			if len(left) >= 3 && len(right) >= 3 &&
				(f.dict.Contains(left) || dSet[left]) &&
				(f.dict.Contains(right) || dSet[right]) {
				return []string{left, d, right}, true
			}
		}
	}
	return nil, false
}

func (f *Fuser) splitIntoTwoWords(w string, dSet map[string]bool) (string, string, bool) {
	type cut struct {
		left, right string
		hasD        bool
	}
	var cuts []cut
	for i := 3; i <= len(w)-3; i++ {
		left, right := w[:i], w[i:]
		if f.dict.Contains(left) && f.dict.Contains(right) {
			cuts = append(cuts, cut{left, right, dSet[left] || dSet[right]})
		}
	}
	if len(cuts) == 0 {
		return "", "", false
	}
	for _, c := range cuts {
		if c.hasD {
			return c.left, c.right, true
		}
	}
	return cuts[0].left, cuts[0].right, true
}

// trySplitRecursive attempts to split w into >=2 dictionary words, allowing
// one side of each cut to itself be split, up to depth levels of recursion.
func trySplitRecursive(dict *dictionary.Dictionary, w string, depth int) ([]string, bool) {
	if dict.Contains(w) {
		return []string{w}, true
	}
	if depth <= 0 || len(w) < 6 {
		return nil, false
	}
	for i := 3; i <= len(w)-3; i++ {
		left, right := w[:i], w[i:]
		if dict.Contains(left) {
			if sub, ok := trySplitRecursive(dict, right, depth-1); ok {
				return append([]string{left}, sub...), true
			}
		}
		if dict.Contains(right) {
			if sub, ok := trySplitRecursive(dict, left, depth-1); ok {
				return append(sub, right), true
			}
		}
	}
	return nil, false
}

func (f *Fuser) singleEditToPrior(w string) (string, bool) {
	var priors []string
	for p := range f.prevFused {
		if absInt(len(w)-len(p)) == 1 {
			priors = append(priors, p)
		}
	}
	sort.Strings(priors)
	for _, p := range priors {
		longer, shorter := w, p
		if len(p) > len(w) {
			longer, shorter = p, w
		}
		if !isOneDeletionApart(longer, shorter) {
			continue
		}
		if f.dict.Contains(p) {
			return p, true
		}
	}
	return "", false
}

// tryInsertions implements rule 6: insert each available letter at each
// position of w, middle positions first, until a dictionary word results;
// falling back to frequency-ordered common letters if no loose letter
// works.
func (f *Fuser) tryInsertions(w string) (string, bool) {
	positions := insertionOrder(len(w))

	if cand, ok := tryLetterSet(f.dict, w, positions, []byte(f.prevLetters)); ok {
		return cand, true
	}
	if cand, ok := tryLetterSet(f.dict, w, positions, letterFreqOrder); ok {
		return cand, true
	}
	return "", false
}

func tryLetterSet(dict *dictionary.Dictionary, w string, positions []int, letterSet []byte) (string, bool) {
	tried := make(map[byte]bool)
	for _, ch := range letterSet {
		ch = lowerByte(ch)
		if ch < 'a' || ch > 'z' || tried[ch] {
			continue
		}
		tried[ch] = true
		for _, pos := range positions {
			candidate := w[:pos] + string(ch) + w[pos:]
			if dict.Contains(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// insertionOrder returns insertion positions 0..length, ordered by distance
// from the word's center (middle positions first), ties broken by the
// smaller index.
func insertionOrder(length int) []int {
	center := float64(length) / 2.0
	positions := make([]int, length+1)
	for i := range positions {
		positions[i] = i
	}
	sort.SliceStable(positions, func(i, j int) bool {
		di := absFloat(float64(positions[i]) - center)
		dj := absFloat(float64(positions[j]) - center)
		if di != dj {
			return di < dj
		}
		return positions[i] < positions[j]
	})
	return positions
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absFloat(n float64) float64 {
	if n < 0 {
		return -n
	}
	return n
}
