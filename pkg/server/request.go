package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/wordbench/wordbench/pkg/snapshot"
)

// updatePayload covers all three equivalent snapshot shapes spec.md §6
// describes, so one JSON decode handles every vision-pipeline variant.
type updatePayload struct {
	// players-of-word-lists shape
	Players *[]struct {
		Words []string `json:"words"`
	} `json:"players"`
	AvailableLetters any `json:"availableLetters"`

	// array-of-arrays shape
	WordsPerPlayer *[][]string `json:"wordsPerPlayer"`
	Available      any         `json:"available"`

	// delta shape
	AddedWords   []string `json:"addedWords"`
	RemovedWords []string `json:"removedWords"`
}

// lettersString coerces the availableLetters/available field, which may
// arrive as a plain string or an array of single characters (spec.md §6
// "Normalized input").
func lettersString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		var out []byte
		for _, c := range t {
			if s, ok := c.(string); ok {
				out = append(out, s...)
			}
		}
		return string(out)
	default:
		return ""
	}
}

// decodeSnapshot reads and normalizes a POST /update-data body into a
// canonical snapshot.Snapshot, resolving whichever of the three shapes was
// sent. Malformed or empty bodies decode to an empty snapshot rather than
// an error (spec.md §7 "Malformed payload... coerced to empty; never
// rejected").
func decodeSnapshot(r *http.Request, prev snapshot.Snapshot) snapshot.Snapshot {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		return snapshot.Snapshot{}
	}

	var p updatePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return snapshot.Snapshot{}
	}

	switch {
	case p.Players != nil:
		words := make([][]string, len(*p.Players))
		for i, pl := range *p.Players {
			words[i] = pl.Words
		}
		return snapshot.FromPlayers(words, lettersString(p.AvailableLetters))

	case p.WordsPerPlayer != nil:
		return snapshot.FromPlayers(*p.WordsPerPlayer, lettersString(p.Available))

	case p.AddedWords != nil || p.RemovedWords != nil:
		letters := lettersString(p.AvailableLetters)
		return snapshot.FromDelta(prev, p.AddedWords, p.RemovedWords, letters)

	default:
		return snapshot.Snapshot{}
	}
}
