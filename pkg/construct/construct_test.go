package construct

import (
	"testing"

	"github.com/wordbench/wordbench/pkg/dictionary"
	"github.com/wordbench/wordbench/pkg/letters"
)

func testDict() *dictionary.Dictionary {
	return dictionary.New([]string{
		"cat", "car", "act", "actor", "tractor", "factor", "hex", "boat",
	})
}

func TestSolveLettersOnlyConstruction(t *testing.T) {
	e := New(testDict())
	recs := e.Solve(nil, "cat", ScoreWeights{FrequencyFloor: 0})
	found := false
	for _, r := range recs {
		if r.Target == "cat" {
			found = true
			if r.LettersToSteal != 3 {
				t.Errorf("want lettersToSteal=3 for letters-only cat, got %d", r.LettersToSteal)
			}
		}
	}
	if !found {
		t.Fatalf("expected %q to be constructible from loose letters alone, got %+v", "cat", recs)
	}
}

func TestSolveRejectsPureAnagramOfSinglePlayerWord(t *testing.T) {
	e := New(testDict())
	// "cat" is already a player word; loose letters alone spelling out an
	// anagram of it must not also be offered (C4).
	recs := e.Solve([]string{"cat"}, "cat", ScoreWeights{FrequencyFloor: 0})
	for _, r := range recs {
		if r.Target == "cat" && len(r.Blocks) == 3 {
			allLetters := true
			for _, b := range r.Blocks {
				if len(b) != 1 {
					allLetters = false
				}
			}
			if allLetters {
				t.Fatalf("pure anagram of a single player word must not be offered: %+v", r)
			}
		}
	}
}

func TestSolveWholeWordPlusLetters(t *testing.T) {
	e := New(testDict())
	recs2 := e.Solve([]string{"act"}, "or", ScoreWeights{FrequencyFloor: 0})
	found2 := false
	for _, r := range recs2 {
		if r.Target == "actor" {
			found2 = true
			if r.LettersToSteal != 2 {
				t.Errorf("want lettersToSteal=2 (o,r), got %d", r.LettersToSteal)
			}
			hasWholeWord := false
			for _, b := range r.Blocks {
				if b == "act" {
					hasWholeWord = true
				}
			}
			if !hasWholeWord {
				t.Errorf("expected construction to reuse whole player word %q, got %+v", "act", r.Blocks)
			}
		}
	}
	if !found2 {
		t.Fatalf("expected %q to be constructible from %q + loose %q, got %+v", "actor", "act", "or", recs2)
	}
}

func TestSolveRequiresAtLeastTwoBlocks(t *testing.T) {
	e := New(testDict())
	// A single loose letter can never alone satisfy C1 (>=2 blocks); a
	// one-letter "construction" of a dictionary word should never surface.
	recs := e.Solve(nil, "a", ScoreWeights{FrequencyFloor: 0})
	for _, r := range recs {
		if len(r.Blocks) < 2 {
			t.Fatalf("construction with <2 blocks should never be emitted: %+v", r)
		}
	}
}

func TestExtendCacheMatchesColdBuild(t *testing.T) {
	words := []string{"act", "car", "cat"}
	counts := make([]letters.Counts, len(words))
	for i, w := range words {
		counts[i] = letters.Count(w)
	}
	cold := buildSubsetCache(words, counts)

	base := buildSubsetCache(words[:2], counts[:2])
	extended := base.extend(words[2], counts[2])

	if extended.size() != cold.size() {
		t.Fatalf("extended cache size %d != cold-built size %d", extended.size(), cold.size())
	}
	for m := 0; m < extended.size(); m++ {
		if extended.count(m) != cold.count(m) {
			t.Errorf("mask %d count mismatch: extended=%v cold=%v", m, extended.count(m), cold.count(m))
		}
	}

	oldSize := base.size()
	for m := 0; m < oldSize; m++ {
		if extended.count(m) != base.count(m) {
			t.Errorf("mask %d changed after extend, want unchanged base value", m)
		}
	}
}

func TestEngineSolveReusesExtendedCacheAcrossCalls(t *testing.T) {
	e := New(testDict())
	e.Solve([]string{"act", "car"}, "", ScoreWeights{FrequencyFloor: 0})
	firstCache := e.cache
	e.Solve([]string{"act", "car", "cat"}, "", ScoreWeights{FrequencyFloor: 0})
	if e.cache == firstCache {
		t.Fatalf("expected a new cache instance after extension")
	}
	if e.cache.size() != 8 {
		t.Fatalf("want extended cache of size 8 (2^3), got %d", e.cache.size())
	}
}
