// Package dictionary loads the word list, per-word letter-count vectors, a
// first-letter/length lookup index, and the Zipf frequency table. The
// dictionary is loaded once at process start and is immutable thereafter
// (spec.md §3 Lifecycle); all other components treat it as a read-only
// value.
package dictionary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/coregx/coregex"

	"github.com/wordbench/wordbench/pkg/letters"
)

// wordShape guards that a raw line looks like a bare lowercase word before
// it is admitted into the dictionary. Plays the same role as the teacher's
// asciiRegex filter in pkg/ingest/ingest.go, built on the pack's own regex
// engine instead of stdlib regexp.
var wordShape = coregex.MustCompile(`^[a-z]+$`)

// key indexes the dictionary by first letter and word length, matching the
// "(first letter, length) -> [indices]" index spec.md §4.2 requires.
type key struct {
	first  byte
	length int
}

// Dictionary is the immutable, process-wide word index.
type Dictionary struct {
	// words and counts are parallel slices: words[i] has count vector
	// counts[i]. Index position i is the stable reference used by the
	// first-letter/length index and by candidate enumeration.
	words  []string
	counts []letters.Counts

	// membership allows O(1) "is this a dictionary word" checks.
	membership map[string]int // word -> index into words/counts

	// byFirstLen is the (first letter, length) -> []index lookup used by
	// the construction engine's candidate enumeration (spec.md §4.2 step 3).
	byFirstLen map[key][]int

	// mu guards zipf only: membership/byFirstLen/words/counts are built
	// once at load time and never mutated afterward, so they need no lock.
	// zipf is filled in by LoadFrequencies after New returns, so that write
	// and every read go through mu (the same RWMutex shape as the teacher's
	// Importer.index in japaniel/readerer).
	mu   sync.RWMutex
	zipf map[string]float64

	maxLen int
}

// fallbackWords is used when data/words.txt is absent (spec.md §7
// "Dictionary absent. Fallback embedded list used; logged once at load.").
// It is deliberately small but covers every word exercised by spec.md §8's
// worked scenarios.
var fallbackWords = []string{
	"at", "or", "is", "be", "to", "of", "in", "on", "an", "as", "so", "up",
	"we", "me", "he", "go", "do", "it",
	"cat", "car", "act", "dog", "hex", "bat", "tab", "cot", "cop", "top",
	"pot", "pit", "sit", "set", "net", "ten", "pen", "pan", "tan", "ran",
	"run", "fun", "fin", "fan", "man", "map", "cap", "can", "cab", "lab",
	"lap", "lip", "lit", "let", "led", "bed", "bad", "bar", "ban", "bun",
	"but", "cut", "cup", "cub", "rub", "rib", "rid", "red", "rod", "rot",
	"hot", "hop", "hip", "him", "hit", "his", "has", "had", "ham", "hay",
	"boat", "coat", "goat", "moat", "road", "toad", "load", "lord",
	"actor", "factor", "tractor", "hello", "world", "plate", "slate",
	"crate", "grate", "trace", "space", "place", "plane", "crane",
	"train", "brain", "grain", "drain", "stain", "saint", "paint",
	"point", "print", "sprint", "spring", "string", "strong", "stock",
	"stack", "track", "crack", "black", "block", "clock", "click",
	"brick", "trick", "truck", "trunk", "drunk", "drank", "blank",
	"plank", "flank", "thank", "think", "blink", "drink", "brink",
	"aboard", "board", "broad", "abroad",
	"elephant", "elegant", "element", "elevate", "elevator",
	"orange", "purple", "yellow", "violet", "silver", "golden",
	"garden", "harden", "hardly", "partly", "partner", "carton",
	"carpet", "cartoon", "balloon", "cannon", "canvas",
	"canyon", "candle", "handle", "bundle", "jungle", "single",
	"tangle", "tingle", "mingle", "shingle", "jingle",
}

// minWordLen is the minimum accepted length for any dictionary entry
// (spec.md §6 persisted-state note: "one word per line, lowercase a-z,
// >= 2 letters").
const minWordLen = 2

// New builds a Dictionary from a list of words (already lowercase,
// deduplicated by the caller is not required — New deduplicates).
func New(words []string) *Dictionary {
	d := &Dictionary{
		membership: make(map[string]int, len(words)),
		byFirstLen: make(map[key][]int),
		zipf:       make(map[string]float64),
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) < minWordLen || !wordShape.MatchString(w) {
			continue
		}
		if _, exists := d.membership[w]; exists {
			continue
		}
		idx := len(d.words)
		d.words = append(d.words, w)
		d.counts = append(d.counts, letters.Count(w))
		d.membership[w] = idx
		k := key{first: w[0], length: len(w)}
		d.byFirstLen[k] = append(d.byFirstLen[k], idx)
		if len(w) > d.maxLen {
			d.maxLen = len(w)
		}
	}
	return d
}

// Load reads one word per line from path. Malformed or too-short lines are
// skipped silently (spec.md §7 leniency policy).
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}
	return New(words), nil
}

// LoadOrFallback loads the dictionary from path, falling back to the
// embedded word list (and logging once) if the file is absent or empty.
func LoadOrFallback(path string, logf func(format string, args ...any)) *Dictionary {
	d, err := Load(path)
	if err != nil || d == nil || len(d.words) == 0 {
		if logf != nil {
			logf("dictionary: %s unavailable (%v); using embedded fallback list", path, err)
		}
		return New(fallbackWords)
	}
	return d
}

// LoadFrequencies attaches a word -> Zipf frequency map loaded from a JSON
// file ({"word": zipf, ...}, scale 0-8 per spec.md §6). Missing words
// default to 0 via Zipf. Absence of the file degrades scoring per spec.md
// §7 ("Frequency table absent. Scoring degrades to no-sort, no-filter");
// callers detect this via HasFrequencies.
func (d *Dictionary) LoadFrequencies(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var table map[string]float64
	if err := json.NewDecoder(f).Decode(&table); err != nil {
		return fmt.Errorf("parsing frequency table: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for w, z := range table {
		d.zipf[strings.ToLower(w)] = z
	}
	return nil
}

// HasFrequencies reports whether any frequency data was loaded.
func (d *Dictionary) HasFrequencies() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.zipf) > 0
}

// Zipf returns the Zipf frequency for word, or 0 if unknown.
func (d *Dictionary) Zipf(word string) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.zipf[strings.ToLower(word)]
}

// Contains reports dictionary membership.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.membership[strings.ToLower(word)]
	return ok
}

// Counts returns the letter-count vector for word and whether it is a
// dictionary word at all.
func (d *Dictionary) Counts(word string) (letters.Counts, bool) {
	idx, ok := d.membership[strings.ToLower(word)]
	if !ok {
		return letters.Counts{}, false
	}
	return d.counts[idx], true
}

// MaxLen returns the length of the longest dictionary word.
func (d *Dictionary) MaxLen() int {
	return d.maxLen
}

// Len returns the number of distinct words in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// ByFirstLetterLength returns dictionary indices registered under
// (first, length). This is the index spec.md §4.2 step 3 requires for
// candidate enumeration.
func (d *Dictionary) ByFirstLetterLength(first byte, length int) []int {
	return d.byFirstLen[key{first: first, length: length}]
}

// Word returns the word at dictionary index i.
func (d *Dictionary) Word(i int) string {
	return d.words[i]
}

// CountsAt returns the letter-count vector at dictionary index i.
func (d *Dictionary) CountsAt(i int) letters.Counts {
	return d.counts[i]
}

// HasFirstLetter reports whether any dictionary word starts with c.
func (d *Dictionary) HasFirstLetter(c byte) bool {
	for l := minWordLen; l <= d.maxLen; l++ {
		if len(d.byFirstLen[key{first: c, length: l}]) > 0 {
			return true
		}
	}
	return false
}
