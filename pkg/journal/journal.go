package journal

import (
	"github.com/google/uuid"

	"github.com/wordbench/wordbench/pkg/dictionary"
	"github.com/wordbench/wordbench/pkg/fusion"
	"github.com/wordbench/wordbench/pkg/snapshot"
)

// Journal wires together attribution, diffing, event persistence, and
// aggregate maintenance for one process lifetime (spec.md §4.3).
type Journal struct {
	dict        *dictionary.Dictionary
	attributor  *Attributor
	log         *EventLog
	aggregator  *Aggregator
	sessionID   string
	seq         int64
	prevPlayers []map[string]bool
}

// New creates a Journal bound to one session (spec.md §4.3 sessionId); log
// and aggregator may be nil in tests that only care about diffing/attribution.
func New(dict *dictionary.Dictionary, log *EventLog, aggregator *Aggregator) *Journal {
	return &Journal{
		dict:       dict,
		attributor: NewAttributor(),
		log:        log,
		aggregator: aggregator,
		sessionID:  uuid.NewString(),
	}
}

// nextSeq returns the next strictly increasing monotonicTimestamp for this
// session. Process runs on the single solver goroutine (spec.md §5), so no
// synchronization is needed.
func (j *Journal) nextSeq() int64 {
	j.seq++
	return j.seq
}

// Process attributes the fused state to players, diffs it against the
// previous round, appends and applies the resulting events, and returns
// them (for the move-log broadcast topic) along with the new per-player
// word lists (for the echoed players field, spec.md §4.4 Broadcast payload).
func (j *Journal) Process(fused fusion.FusedState, raw snapshot.Snapshot) ([]Event, [][]string) {
	curr := j.attributor.Attribute(fused.Words, raw)
	events := Diff(j.prevPlayers, curr, j.dict.Zipf, j.sessionID, j.nextSeq)

	if len(events) > 0 {
		if j.log != nil {
			_ = j.log.Append(events...) // spec.md §7: failures are logged by EventLog.OnError, not surfaced here
		}
		if j.aggregator != nil {
			for _, e := range events {
				j.aggregator.Apply(e)
			}
		}
	}

	j.prevPlayers = curr
	return events, Flatten(curr)
}
