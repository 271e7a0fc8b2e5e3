// Package journal detects per-player word add/remove transitions between
// consecutive fused states, persists them as an append-only event log, and
// maintains rolling per-player vocabulary statistics (spec.md §4.3).
package journal

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/wordbench/wordbench/pkg/letters"
)

// EventType distinguishes a word entering or leaving a player's set.
type EventType string

const (
	WordAdded   EventType = "word_added"
	WordRemoved EventType = "word_removed"
)

// Event is one move-journal record (spec.md §4.3, §8 scenario 5). EventID is
// a supplement beyond the literal scenario shape: a stable identifier lets
// observers dedupe move-log entries delivered more than once over the push
// channel (reconnect replay), which spec.md doesn't rule out.
type Event struct {
	EventID            string    `json:"eventId"`
	SessionID          string    `json:"sessionId"`
	MonotonicTimestamp int64     `json:"monotonicTimestamp"`
	EventType          EventType `json:"eventType"`
	PlayerID           string    `json:"playerId"`
	PlayerIndex        int       `json:"playerIndex"`
	Word               string    `json:"word"`
	WordLength         int       `json:"wordLength"`
	FrequencyScore     float64   `json:"frequencyScore"`
	LettersUsed        []string  `json:"lettersUsed"`
}

// newEvent builds an Event for word at playerIndex, computing the derived
// wordLength/lettersUsed fields from word itself. monotonicTimestamp is a
// strictly increasing per-session sequence number, not a wall-clock reading
// (spec.md §4.3; this codebase injects time rather than calling it directly).
func newEvent(eventType EventType, playerIndex int, word string, zipf float64, sessionID string, monotonicTimestamp int64) Event {
	return Event{
		EventID:            uuid.NewString(),
		SessionID:          sessionID,
		MonotonicTimestamp: monotonicTimestamp,
		EventType:          eventType,
		PlayerID:           playerID(playerIndex),
		PlayerIndex:        playerIndex,
		Word:               word,
		WordLength:         len(word),
		FrequencyScore:     zipf,
		LettersUsed:        letters.SortedLetters(word),
	}
}

func playerID(index int) string {
	return "player_" + strconv.Itoa(index)
}
