package construct

import "github.com/wordbench/wordbench/pkg/letters"

// subsetCache holds, for every bitmask over a set of unique player words, the
// summed letter-count vector and the ordered word list the mask represents
// (spec.md §4.2 step 2). It is built in Gray-code order so each step from
// one mask to the next differs by exactly one word, turning the whole build
// into O(2^n · 26) work instead of O(2^n · n · 26).
type subsetCache struct {
	words  []string // the unique word set this cache was built for, canonical order
	counts []letters.Counts

	masks     []letters.Counts // masks[m] is the count vector for bitmask m
	wordLists [][]string       // wordLists[m] is the ordered word list for bitmask m
}

// buildSubsetCache builds a fresh cache for words (already deduplicated, in
// canonical order) and their parallel count vectors.
func buildSubsetCache(words []string, counts []letters.Counts) *subsetCache {
	size := 1 << len(words)
	c := &subsetCache{
		words:     words,
		counts:    counts,
		masks:     make([]letters.Counts, size),
		wordLists: make([][]string, size),
	}
	fillGrayCode(c.masks, c.wordLists, words, counts)
	return c
}

// fillGrayCode populates masksOut/listsOut (both pre-sized to 2^n) for the n
// words given, walking bitmasks in Gray-code order so each step toggles
// exactly one word in or out.
func fillGrayCode(masksOut []letters.Counts, listsOut [][]string, words []string, counts []letters.Counts) {
	n := len(words)
	size := 1 << n
	masksOut[0] = letters.Counts{}
	listsOut[0] = nil

	prevGray := 0
	cur := letters.Counts{}
	var curWords []string
	present := make([]bool, n)

	for i := 1; i < size; i++ {
		gray := i ^ (i >> 1)
		bit := trailingZeros(gray ^ prevGray)

		if present[bit] {
			cur = cur.Sub(counts[bit])
			curWords = removeWord(curWords, words[bit])
			present[bit] = false
		} else {
			cur = cur.Add(counts[bit])
			curWords = insertSorted(curWords, words[bit])
			present[bit] = true
		}

		masksOut[gray] = cur
		listsOut[gray] = append([]string(nil), curWords...)
		prevGray = gray
	}
}

func trailingZeros(x int) int {
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

// insertSorted inserts w into words, keeping the slice in canonical (sorted)
// word order so wordLists are deterministic regardless of toggle order.
func insertSorted(words []string, w string) []string {
	i := 0
	for i < len(words) && words[i] < w {
		i++
	}
	out := make([]string, 0, len(words)+1)
	out = append(out, words[:i]...)
	out = append(out, w)
	out = append(out, words[i:]...)
	return out
}

func removeWord(words []string, w string) []string {
	out := make([]string, 0, len(words))
	for _, x := range words {
		if x != w {
			out = append(out, x)
		}
	}
	return out
}

// extend returns a new cache grown by one newly added word; c itself is left
// unchanged. Masks 0..2^(n-1)-1 keep their values: their count vectors are
// copied by value into the new cache's slice (they are not the same memory
// as c's), while their word-list slices share c's backing arrays. Only the
// new half (old subsets + newWord) is computed.
func (c *subsetCache) extend(newWord string, newCount letters.Counts) *subsetCache {
	oldSize := 1 << len(c.words)
	newWords := append(append([]string(nil), c.words...), newWord)
	newCounts := append(append([]letters.Counts(nil), c.counts...), newCount)

	masks := make([]letters.Counts, oldSize*2)
	wordLists := make([][]string, oldSize*2)
	copy(masks, c.masks)
	copy(wordLists, c.wordLists)

	for m := 0; m < oldSize; m++ {
		masks[oldSize+m] = c.masks[m].Add(newCount)
		wordLists[oldSize+m] = insertSorted(append([]string(nil), c.wordLists[m]...), newWord)
	}

	return &subsetCache{
		words:     newWords,
		counts:    newCounts,
		masks:     masks,
		wordLists: wordLists,
	}
}

// count returns the count vector for bitmask m.
func (c *subsetCache) count(m int) letters.Counts {
	return c.masks[m]
}

// list returns the word list for bitmask m.
func (c *subsetCache) list(m int) []string {
	return c.wordLists[m]
}

// size returns 2^n, the number of masks in the cache.
func (c *subsetCache) size() int {
	return 1 << len(c.words)
}
