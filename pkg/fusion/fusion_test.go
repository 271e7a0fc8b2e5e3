package fusion

import (
	"testing"

	"github.com/wordbench/wordbench/pkg/dictionary"
	"github.com/wordbench/wordbench/pkg/snapshot"
)

func testDict() *dictionary.Dictionary {
	return dictionary.New([]string{
		"cat", "act", "car", "hex", "boat", "coat", "board", "aboard",
		"hello", "world", "actor", "tractor", "factor", "elephant",
	})
}

func snap(letters string, players ...[]string) snapshot.Snapshot {
	return snapshot.FromPlayers(players, letters)
}

func TestFuseAcceptsDictionaryWordUnchanged(t *testing.T) {
	f := New(testDict())
	out := f.Fuse(snap("xyz", []string{"cat", "car"}))
	if len(out.Words) != 2 {
		t.Fatalf("want 2 words, got %d: %+v", len(out.Words), out.Words)
	}
	for _, w := range out.Words {
		if w.Modified {
			t.Errorf("word %q should not be modified", w.Word)
		}
	}
}

func TestFuseIdempotentOnRepeatedSnapshot(t *testing.T) {
	f := New(testDict())
	s := snap("xyz", []string{"cat", "boat"})
	first := f.Fuse(s)
	second := f.Fuse(s)
	if len(first.Words) != len(second.Words) {
		t.Fatalf("word count changed between identical snapshots: %d vs %d", len(first.Words), len(second.Words))
	}
	for _, w := range second.Words {
		if w.Modified {
			t.Errorf("repeated snapshot produced a modified word: %q", w.Word)
		}
	}
}

func TestFuseCorrectsSingleLetterDeletion(t *testing.T) {
	f := New(testDict())
	// Seed a prior fused word "boat" so the next round can correct "oat"
	// (one deletion away) back to it.
	f.Fuse(snap("xyz", []string{"boat"}))
	out := f.Fuse(snap("xyz", []string{"oat"}))
	found := false
	for _, w := range out.Words {
		if w.Word == "boat" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected correction to restore %q, got %+v", "boat", out.Words)
	}
}

func TestFuseSplitsMergedWord(t *testing.T) {
	f := New(testDict())
	out := f.Fuse(snap("xyz", []string{"catact"}))
	if len(out.Words) != 2 {
		t.Fatalf("want 2 split words, got %+v", out.Words)
	}
	words := map[string]bool{}
	for _, w := range out.Words {
		words[w.Word] = true
		if !w.Modified {
			t.Errorf("split word %q should be marked modified", w.Word)
		}
		if w.RawSource != "catact" {
			t.Errorf("split word %q has RawSource %q, want %q", w.Word, w.RawSource, "catact")
		}
	}
	if !words["cat"] || !words["act"] {
		t.Fatalf("expected {cat, act}, got %+v", words)
	}
}

func TestFuseRestoresDisappearedWordWithinVisibilityWindow(t *testing.T) {
	f := New(testDict())
	f.Fuse(snap("xyz", []string{"hello", "world"}))
	// "hello" drops out for one round with no close neighbour raw word.
	out := f.Fuse(snap("xyz", []string{"world"}))
	found := false
	for _, w := range out.Words {
		if w.Word == "hello" {
			found = true
			if w.RawSource != "" {
				t.Errorf("restored word should have empty RawSource, got %q", w.RawSource)
			}
		}
	}
	if !found {
		t.Fatalf("expected %q to be restored, got %+v", "hello", out.Words)
	}
}

func TestFuseDoesNotRestoreAfterVisibilityWindowExpires(t *testing.T) {
	f := New(testDict())
	f.Fuse(snap("xyz", []string{"hello", "world"}))
	// "hello" disappears and gets restored once, within the visibility window.
	restored := f.Fuse(snap("xyz", []string{"world"}))
	found := false
	for _, w := range restored.Words {
		if w.Word == "hello" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q to be restored on the first raw without it, got %+v", "hello", restored.Words)
	}
	// Second consecutive raw without "hello": the window has now expired.
	out := f.Fuse(snap("xyz", []string{"world"}))
	for _, w := range out.Words {
		if w.Word == "hello" {
			t.Fatalf("did not expect %q to still be restored after window expired", "hello")
		}
	}
}

func TestFuseVetoesCorrectionWhenDirectWordPresent(t *testing.T) {
	f := New(testDict())
	f.Fuse(snap("xyz", []string{"boat"}))
	// Both the stale-correction candidate's source ("oat") and the
	// genuinely-typed dictionary word "coat" appear in the same raw
	// snapshot; "coat" should win outright and "oat" must not also
	// resurrect "boat".
	out := f.Fuse(snap("xyz", []string{"oat", "coat"}))
	count := 0
	for _, w := range out.Words {
		if w.Word == "boat" {
			count++
		}
	}
	if count > 0 {
		t.Fatalf("expected veto to suppress stale correction, got %+v", out.Words)
	}
}

func TestFuseShortWordTriesInsertionOnly(t *testing.T) {
	f := New(testDict())
	out := f.Fuse(snap("h", []string{"ex"}))
	found := false
	for _, w := range out.Words {
		if w.Word == "hex" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected short word %q to be rescued via insertion into %+v", "ex", out.Words)
	}
}

func TestFuseConfidenceRisesOnRepeatedDirectObservation(t *testing.T) {
	f := New(testDict())
	f.Fuse(snap("xyz", []string{"cat"}))
	f.Fuse(snap("xyz", []string{"cat"}))
	entry, ok := f.confidence.get("cat")
	if !ok {
		t.Fatalf("expected confidence entry for %q", "cat")
	}
	if entry.Confidence <= 0.5 {
		t.Errorf("expected confidence to rise above 0.5 after repeated observation, got %v", entry.Confidence)
	}
}

func TestFuseConfidenceDecaysWhenWordMissing(t *testing.T) {
	f := New(testDict())
	f.Fuse(snap("xyz", []string{"world"}))
	// The first empty raw is still inside the visibility window, so "world"
	// is restored at full confidence; the second one drops it from the fused
	// state and its confidence decays.
	f.Fuse(snap("xyz", []string{}))
	f.Fuse(snap("xyz", []string{}))
	entry, ok := f.confidence.get("world")
	if !ok {
		t.Fatalf("expected decayed but still-tracked entry for %q after one miss", "world")
	}
	if entry.Confidence >= 1.0 {
		t.Errorf("expected confidence for %q to decay below 1.0, got %v", "world", entry.Confidence)
	}
}
