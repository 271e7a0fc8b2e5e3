// Package letters implements the 26-wide letter-count vector arithmetic that
// every other component builds on: dictionary membership, construction
// formability, and temporal-fusion word comparisons all reduce to vector
// add/subtract/compare.
package letters

import "strings"

// Counts is a fixed 26-element non-negative integer vector indexed by
// letter, a-z. It is the substrate representation for a word or a pool of
// loose letters.
type Counts [26]int

// Count builds a Counts vector from a string. Non a-z runes (after
// lowercasing) are ignored, matching the normalization rule in spec.md §3
// ("non-alphabetic stripped").
func Count(s string) Counts {
	var c Counts
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			c[r-'a']++
		}
	}
	return c
}

// Add returns c + other, element-wise.
func (c Counts) Add(other Counts) Counts {
	var out Counts
	for i := range c {
		out[i] = c[i] + other[i]
	}
	return out
}

// Sub returns c - other, element-wise. Negative results are not clamped;
// callers that require non-negativity should check GreaterEqual first.
func (c Counts) Sub(other Counts) Counts {
	var out Counts
	for i := range c {
		out[i] = c[i] - other[i]
	}
	return out
}

// GreaterEqual reports whether c has at least as many of every letter as
// other — i.e. whether other can be formed from c's pool.
func (c Counts) GreaterEqual(other Counts) bool {
	for i := range c {
		if c[i] < other[i] {
			return false
		}
	}
	return true
}

// Equal reports whether c and other are identical.
func (c Counts) Equal(other Counts) bool {
	return c == other
}

// Sum returns the total number of letters represented.
func (c Counts) Sum() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// IsZero reports whether c has no letters at all.
func (c Counts) IsZero() bool {
	return c == Counts{}
}

// String reconstructs a canonical sorted string representation, e.g. "aabcz".
// Used for debug output and as a map key where a string is more convenient
// than a [26]int array (arrays are already comparable and usable as map
// keys directly, but String gives a human-readable form for logs).
func (c Counts) String() string {
	var b strings.Builder
	for i, n := range c {
		for k := 0; k < n; k++ {
			b.WriteByte(byte('a' + i))
		}
	}
	return b.String()
}

// Expand turns a Counts vector back into a sorted slice of single-letter
// strings, e.g. {a:2,z:1} -> ["a","a","z"]. Used by the construction engine
// to materialize the single-letter blocks of a recommendation.
func Expand(c Counts) []string {
	var out []string
	for i, n := range c {
		for k := 0; k < n; k++ {
			out = append(out, string(rune('a'+i)))
		}
	}
	return out
}

// SortedLetters returns the canonical sorted multiset of single letters
// composing a word, e.g. "tap" -> ["a","p","t"]. Used for move event
// lettersUsed fields (spec.md §3/§8 scenario 5).
func SortedLetters(word string) []string {
	return Expand(Count(word))
}
