// Package construct implements the Construction Engine (spec.md §4.2): for
// a fused snapshot, it enumerates every dictionary word that can be built
// strictly by adding player words and loose letters together, subject to
// rules C1-C5, then scores and orders the results.
package construct

import (
	"sort"

	"github.com/wordbench/wordbench/pkg/dictionary"
	"github.com/wordbench/wordbench/pkg/letters"
)

// defaultMaxUniqueWords caps the unique-word set the subset cache is built
// over (spec.md §4.2 Complexity: "the specification permits capping at 16
// (keep the longest 16 unique words), trading completeness for bounded
// work"). Engine.MaxUniqueWords defaults to this but callers may override it.
const defaultMaxUniqueWords = 16

// Block is one building block of a Recommendation: either a whole player
// word (len >= 2) or a single loose letter.
type Block = string

// Recommendation is one target word's chosen construction (spec.md §3
// Glossary "Recommendation").
type Recommendation struct {
	Target         string
	Blocks         []Block
	LettersToSteal int
	Score          float64
}

// ScoreWeights configures the ranking formula (spec.md §4.2 Scoring):
// score = WeightFrequency*norm(Zipf(target)) + WeightLength*norm(length(target)),
// with results below FrequencyFloor dropped.
type ScoreWeights struct {
	WeightFrequency float64
	WeightLength    float64
	FrequencyFloor  float64
}

// DefaultScoreWeights matches spec.md §4.2's stated defaults.
var DefaultScoreWeights = ScoreWeights{WeightFrequency: 1.5, WeightLength: 1.0, FrequencyFloor: 1.0}

// Engine owns the subset cache across snapshots. When exactly one unique
// word is newly added it replaces the cache with an extended copy (see
// subsetCache.extend) instead of rebuilding it from scratch.
type Engine struct {
	dict *dictionary.Dictionary

	// MaxUniqueWords caps the unique-word set the subset cache is built
	// over; set by New to defaultMaxUniqueWords, overridable by callers.
	MaxUniqueWords int

	cache       *subsetCache
	cacheWords  []string // the unique-word signature the cache was built for
	cappedExtra []string // never populated: capUniqueWords discards words beyond MaxUniqueWords
}

// New creates an Engine bound to dict.
func New(dict *dictionary.Dictionary) *Engine {
	return &Engine{dict: dict, MaxUniqueWords: defaultMaxUniqueWords}
}

// Solve enumerates every constructible word for the given unique player
// words and loose-letter pool, scores them with weights, and returns the
// ranked, floor-filtered recommendations (spec.md §4.2 steps 1-5).
func (e *Engine) Solve(uniqueWords []string, looseLetters string, weights ScoreWeights) []Recommendation {
	words := capUniqueWords(uniqueWords, e.MaxUniqueWords)
	e.ensureCache(words)

	looseCounts := letters.Count(looseLetters)
	n := len(words)

	wordCounts := make([]letters.Counts, n)
	for i, w := range words {
		wordCounts[i] = letters.Count(w)
	}

	poolCounts := looseCounts
	for _, wc := range wordCounts {
		poolCounts = poolCounts.Add(wc)
	}

	playerWordCountSet := make(map[letters.Counts]bool, n)
	for _, wc := range wordCounts {
		playerWordCountSet[wc] = true
	}

	results := make(map[string]Recommendation)

	for c := byte('a'); c <= 'z'; c++ {
		if poolCounts[c-'a'] == 0 {
			continue
		}
		maxLen := e.dict.MaxLen()
		totalPool := poolCounts.Sum()
		if totalPool < maxLen {
			maxLen = totalPool
		}
		for length := 3; length <= maxLen; length++ {
			for _, idx := range e.dict.ByFirstLetterLength(c, length) {
				target := e.dict.Word(idx)
				tc := e.dict.CountsAt(idx)
				if !poolCounts.GreaterEqual(tc) {
					continue
				}
				if _, already := results[target]; already {
					continue
				}
				if rec, ok := constructOne(target, tc, looseCounts, playerWordCountSet, e.cache); ok {
					results[target] = rec
				}
			}
		}
	}

	return rankAndFilter(results, e.dict, weights)
}

// ensureCache rebuilds or extends the subset cache so it matches words. A
// snapshot signature differing by exactly one newly appended word reuses
// the existing cache via extend; any other change rebuilds from scratch.
func (e *Engine) ensureCache(words []string) {
	if e.cache != nil && sameSignature(e.cacheWords, words) {
		return
	}
	if e.cache != nil && isSingleAppend(e.cacheWords, words) {
		newWord := words[len(words)-1]
		e.cache = e.cache.extend(newWord, letters.Count(newWord))
		e.cacheWords = words
		return
	}
	counts := make([]letters.Counts, len(words))
	for i, w := range words {
		counts[i] = letters.Count(w)
	}
	e.cache = buildSubsetCache(words, counts)
	e.cacheWords = words
}

func sameSignature(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isSingleAppend reports whether next is prev plus exactly one new word
// appended at the end (the canonical order construct.Solve callers use is
// insertion order, so a single newly-typed word lands last).
func isSingleAppend(prev, next []string) bool {
	if len(next) != len(prev)+1 {
		return false
	}
	for i := range prev {
		if prev[i] != next[i] {
			return false
		}
	}
	return true
}

// capUniqueWords keeps at most max words, preferring the longest (spec.md
// §4.2 Complexity note).
func capUniqueWords(words []string, max int) []string {
	if len(words) <= max {
		return words
	}
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	return sorted[:max]
}

// constructOne runs the construction search (spec.md §4.2 step 4) for a
// single candidate target word.
func constructOne(target string, tc letters.Counts, looseCounts letters.Counts, playerWordCounts map[letters.Counts]bool, cache *subsetCache) (Recommendation, bool) {
	// 4a: letters-only fast path.
	if looseCounts.GreaterEqual(tc) && tc.Sum() >= 2 && !playerWordCounts[tc] {
		blocks := letters.Expand(tc)
		return Recommendation{Target: target, Blocks: blocks, LettersToSteal: len(blocks)}, true
	}

	// 4b: mask scan, high to low.
	for m := cache.size() - 1; m >= 0; m-- {
		s := cache.count(m)
		if !tc.GreaterEqual(s) {
			continue
		}
		remainder := tc.Sub(s)
		if !looseCounts.GreaterEqual(remainder) {
			continue
		}
		wordList := cache.list(m)
		blockCount := len(wordList) + remainder.Sum()
		if blockCount < 2 {
			continue
		}
		if len(wordList) == 0 && playerWordCounts[remainder] {
			continue
		}
		blocks := append(append([]string(nil), wordList...), letters.Expand(remainder)...)
		return Recommendation{
			Target:         target,
			Blocks:         blocks,
			LettersToSteal: remainder.Sum(),
		}, true
	}

	return Recommendation{}, false
}

// rankAndFilter scores every recommendation, drops those below the
// frequency floor, and sorts descending by score (spec.md §4.2 Scoring).
// With no frequency table loaded, scoring degrades to no-sort, no-filter
// (spec.md §7): every Zipf lookup would return 0 and the floor would drop
// every candidate, so the floor and frequency term are skipped entirely:
// every result is kept, scored by length alone, and ordered alphabetically
// by target rather than by score.
func rankAndFilter(results map[string]Recommendation, dict *dictionary.Dictionary, weights ScoreWeights) []Recommendation {
	if len(results) == 0 {
		return nil
	}

	if !dict.HasFrequencies() {
		out := make([]Recommendation, 0, len(results))
		for target, rec := range results {
			rec.Score = weights.WeightLength * float64(len(target))
			out = append(out, rec)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
		return out
	}

	var maxZipf, maxLen float64
	for target := range results {
		if z := dict.Zipf(target); z > maxZipf {
			maxZipf = z
		}
		if l := float64(len(target)); l > maxLen {
			maxLen = l
		}
	}
	if maxZipf == 0 {
		maxZipf = 1
	}
	if maxLen == 0 {
		maxLen = 1
	}

	out := make([]Recommendation, 0, len(results))
	for target, rec := range results {
		zipf := dict.Zipf(target)
		if zipf < weights.FrequencyFloor {
			continue
		}
		normFreq := zipf / maxZipf
		normLen := float64(len(target)) / maxLen
		rec.Score = weights.WeightFrequency*normFreq + weights.WeightLength*normLen
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Target < out[j].Target
	})
	return out
}
