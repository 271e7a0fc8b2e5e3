package journal

import (
	"testing"

	"github.com/wordbench/wordbench/pkg/dictionary"
	"github.com/wordbench/wordbench/pkg/fusion"
	"github.com/wordbench/wordbench/pkg/snapshot"
)

func TestDiffEmitsAddedAndRemoved(t *testing.T) {
	prev := []map[string]bool{{"cat": true, "dog": true}}
	curr := []map[string]bool{{"dog": true, "hex": true}}
	seq := int64(0)
	nextSeq := func() int64 { seq++; return seq }
	events := Diff(prev, curr, func(string) float64 { return 0 }, "session-1", nextSeq)

	var added, removed []string
	for _, e := range events {
		switch e.EventType {
		case WordAdded:
			added = append(added, e.Word)
		case WordRemoved:
			removed = append(removed, e.Word)
		}
	}
	if len(added) != 1 || added[0] != "hex" {
		t.Errorf("want added=[hex], got %v", added)
	}
	if len(removed) != 1 || removed[0] != "cat" {
		t.Errorf("want removed=[cat], got %v", removed)
	}
}

func TestEventShapeMatchesScenario5(t *testing.T) {
	seq := int64(0)
	nextSeq := func() int64 { seq++; return seq }
	events := Diff(nil, []map[string]bool{{"elephant": true}}, func(w string) float64 {
		if w == "elephant" {
			return 4.5
		}
		return 0
	}, "session-1", nextSeq)
	if len(events) != 1 {
		t.Fatalf("want 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventType != WordAdded || e.PlayerID != "player_0" || e.PlayerIndex != 0 ||
		e.Word != "elephant" || e.WordLength != 8 || e.FrequencyScore != 4.5 ||
		e.SessionID != "session-1" || e.MonotonicTimestamp != 1 || e.EventID == "" {
		t.Fatalf("event shape mismatch: %+v", e)
	}
	want := []string{"a", "e", "e", "h", "l", "n", "p", "t"}
	if len(e.LettersUsed) != len(want) {
		t.Fatalf("lettersUsed length mismatch: %v", e.LettersUsed)
	}
	for i := range want {
		if e.LettersUsed[i] != want[i] {
			t.Fatalf("lettersUsed mismatch at %d: got %v want %v", i, e.LettersUsed, want)
		}
	}
}

func TestAttributorAssignsSplitHalvesToConcatenatedOwner(t *testing.T) {
	a := NewAttributor()
	raw := snapshot.FromPlayers([][]string{{"catact"}, {"hello"}}, "")
	fused := []fusion.FusedWord{
		{Word: "cat", Modified: true, RawSource: "catact"},
		{Word: "act", Modified: true, RawSource: "catact"},
		{Word: "hello", Modified: false, RawSource: "hello"},
	}
	curr := a.Attribute(fused, raw)
	if !curr[0]["cat"] || !curr[0]["act"] {
		t.Fatalf("expected both split halves attributed to player 0, got %+v", curr)
	}
	if !curr[1]["hello"] {
		t.Fatalf("expected hello attributed to player 1, got %+v", curr)
	}
}

func TestAttributorFallsBackToPreviousOwnerForRestoration(t *testing.T) {
	a := NewAttributor()
	raw1 := snapshot.FromPlayers([][]string{{"dog"}}, "")
	a.Attribute([]fusion.FusedWord{{Word: "dog", Modified: false, RawSource: "dog"}}, raw1)

	raw2 := snapshot.FromPlayers([][]string{{}}, "")
	curr := a.Attribute([]fusion.FusedWord{{Word: "dog", Modified: false, RawSource: ""}}, raw2)
	if !curr[0]["dog"] {
		t.Fatalf("expected restored word to keep its previous owner, got %+v", curr)
	}
}

func TestAggregatorDerivedFields(t *testing.T) {
	clock := int64(1000)
	agg := NewAggregator(func() int64 { return clock })
	agg.Apply(Event{EventType: WordAdded, PlayerIndex: 0, Word: "cat", WordLength: 3, FrequencyScore: 6.0})
	agg.Apply(Event{EventType: WordAdded, PlayerIndex: 0, Word: "dog", WordLength: 3, FrequencyScore: 2.0})
	agg.Apply(Event{EventType: WordRemoved, PlayerIndex: 0, Word: "cat", WordLength: 3, FrequencyScore: 6.0})

	snap := agg.PlayerSnapshot(0)
	if snap.TotalWords != 2 {
		t.Errorf("want totalWords=2 (removed doesn't decrement), got %d", snap.TotalWords)
	}
	if snap.UniqueCount != 2 {
		t.Errorf("want uniqueCount=2, got %d", snap.UniqueCount)
	}
	if snap.WordsByFrequency["common"] != 1 || snap.WordsByFrequency["rare"] != 1 {
		t.Errorf("want one common, one rare, got %+v", snap.WordsByFrequency)
	}

	clock = 1090
	if agg.SessionDuration() != 90 {
		t.Errorf("want sessionDuration=90, got %d", agg.SessionDuration())
	}
}

func TestJournalProcessEmitsNoEventsOnRepeatedSnapshot(t *testing.T) {
	dict := dictionary.New([]string{"cat", "dog"})
	j := New(dict, nil, nil)
	raw := snapshot.FromPlayers([][]string{{"cat", "dog"}}, "")
	fused := fusion.FusedState{Words: []fusion.FusedWord{
		{Word: "cat", RawSource: "cat"},
		{Word: "dog", RawSource: "dog"},
	}}

	events1, _ := j.Process(fused, raw)
	if len(events1) != 2 {
		t.Fatalf("want 2 word_added events on first round, got %d", len(events1))
	}
	events2, _ := j.Process(fused, raw)
	if len(events2) != 0 {
		t.Fatalf("want 0 events on identical repeated snapshot, got %+v", events2)
	}
}
