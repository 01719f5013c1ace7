package core

import (
	"errors"
	"testing"
)

func TestCursorStoreMonotonic(t *testing.T) {
	var c CursorStore
	c.Reset(10)

	if err := c.Set(12); err != nil {
		t.Fatalf("Set(12) error: %v", err)
	}
	if err := c.Set(12); err != nil {
		t.Fatalf("Set(12) again should be allowed: %v", err)
	}

	err := c.Set(11)
	if !errors.Is(err, ErrCursorRegressed) {
		t.Fatalf("Set(11) error = %v, want ErrCursorRegressed", err)
	}
	if c.Get() != 12 {
		t.Errorf("cursor = %d, want 12", c.Get())
	}

	c.Reset(3)
	if c.Get() != 3 {
		t.Errorf("cursor after Reset = %d, want 3", c.Get())
	}
}

func msg(id int64, sender, content string) Message {
	return Message{ID: id, Sender: sender, Content: content}
}

func TestViewStateBeginSession(t *testing.T) {
	v := NewViewState()
	v.SetInput("draft")

	gen := v.BeginSession("alice", 5)
	if gen != 1 {
		t.Errorf("generation = %d, want 1", gen)
	}

	snap := v.Snapshot()
	if !snap.Session.Joined || snap.Session.Name != "alice" {
		t.Errorf("session = %+v, want joined alice", snap.Session)
	}
	if snap.Cursor != 5 {
		t.Errorf("cursor = %d, want 5", snap.Cursor)
	}
	if len(snap.Messages) != 0 || len(snap.Roster) != 0 {
		t.Errorf("expected empty log and roster, got %d msgs %d names", len(snap.Messages), len(snap.Roster))
	}
	if snap.Input != "draft" {
		t.Errorf("input = %q, want draft", snap.Input)
	}
}

func TestViewStateApplyMessages(t *testing.T) {
	v := NewViewState()
	gen := v.BeginSession("alice", 5)

	appended, live := v.ApplyMessages(gen, []Message{msg(7, "bob", "b"), msg(6, "bob", "a")})
	if !live {
		t.Fatal("expected live batch")
	}
	if len(appended) != 2 || appended[0].ID != 6 || appended[1].ID != 7 {
		t.Fatalf("appended = %+v, want ids 6,7 ascending", appended)
	}
	if v.Cursor() != 7 {
		t.Errorf("cursor = %d, want 7", v.Cursor())
	}

	// Overlapping batch from a concurrent fetch
	appended, _ = v.ApplyMessages(gen, []Message{msg(7, "bob", "b"), msg(8, "carol", "c")})
	if len(appended) != 1 || appended[0].ID != 8 {
		t.Fatalf("appended = %+v, want only id 8", appended)
	}

	snap := v.Snapshot()
	if len(snap.Messages) != 3 {
		t.Fatalf("log length = %d, want 3", len(snap.Messages))
	}
	for i := 1; i < len(snap.Messages); i++ {
		if snap.Messages[i].ID <= snap.Messages[i-1].ID {
			t.Errorf("log not strictly ascending at %d: %+v", i, snap.Messages)
		}
	}
}

func TestViewStateEmptyBatchLeavesCursor(t *testing.T) {
	v := NewViewState()
	gen := v.BeginSession("alice", 42)

	appended, live := v.ApplyMessages(gen, nil)
	if !live || len(appended) != 0 {
		t.Fatalf("ApplyMessages(nil) = %v, %v", appended, live)
	}
	if v.Cursor() != 42 {
		t.Errorf("cursor = %d, want 42", v.Cursor())
	}
}

func TestViewStateDropsStaleResults(t *testing.T) {
	v := NewViewState()
	gen := v.BeginSession("alice", 0)

	if _, ok := v.EndSession(); !ok {
		t.Fatal("expected EndSession to report an active session")
	}

	if _, live := v.ApplyMessages(gen, []Message{msg(1, "bob", "late")}); live {
		t.Error("stale message batch was applied")
	}
	if _, live := v.ApplyRoster(gen, []string{"bob"}); live {
		t.Error("stale roster was applied")
	}
	if _, live := v.CursorFor(gen); live {
		t.Error("CursorFor reported a stale generation as live")
	}

	snap := v.Snapshot()
	if len(snap.Messages) != 0 || len(snap.Roster) != 0 || snap.Cursor != 0 {
		t.Errorf("state changed by stale results: %+v", snap)
	}
}

func TestViewStateRejoinDropsPreviousGeneration(t *testing.T) {
	v := NewViewState()
	first := v.BeginSession("alice", 0)
	second := v.BeginSession("alice", 10)

	if first == second {
		t.Fatal("rejoin must bump the generation")
	}
	if _, live := v.ApplyMessages(first, []Message{msg(11, "bob", "old")}); live {
		t.Error("batch from previous session was applied")
	}
	if v.Cursor() != 10 {
		t.Errorf("cursor = %d, want 10", v.Cursor())
	}
}

func TestViewStateEndSessionClearsEverythingButInput(t *testing.T) {
	v := NewViewState()
	gen := v.BeginSession("alice", 0)
	v.ApplyMessages(gen, []Message{msg(1, "bob", "hi")})
	v.ApplyRoster(gen, []string{"alice", "bob"})
	v.SetInput("unsent")

	name, wasJoined := v.EndSession()
	if name != "alice" || !wasJoined {
		t.Errorf("EndSession() = %q, %v", name, wasJoined)
	}

	snap := v.Snapshot()
	if snap.Session.Joined || snap.Session.Name != "" {
		t.Errorf("session = %+v, want cleared", snap.Session)
	}
	if snap.Cursor != 0 || len(snap.Messages) != 0 || len(snap.Roster) != 0 {
		t.Errorf("expected cleared view, got %+v", snap)
	}
	if snap.Input != "unsent" {
		t.Errorf("input = %q, want unsent", snap.Input)
	}

	if _, wasJoined := v.EndSession(); wasJoined {
		t.Error("second EndSession reported an active session")
	}
}

func TestViewStateApplyRoster(t *testing.T) {
	v := NewViewState()
	gen := v.BeginSession("alice", 0)

	roster, live := v.ApplyRoster(gen, []string{"carol", "alice", "bob", "alice"})
	if !live {
		t.Fatal("expected live roster")
	}
	want := []string{"alice", "bob", "carol"}
	if len(roster) != len(want) {
		t.Fatalf("roster = %v, want %v", roster, want)
	}
	for i := range want {
		if roster[i] != want[i] {
			t.Errorf("roster[%d] = %q, want %q", i, roster[i], want[i])
		}
	}

	// Full replacement, not a merge
	roster, _ = v.ApplyRoster(gen, []string{"dave"})
	if len(roster) != 1 || roster[0] != "dave" {
		t.Errorf("roster = %v, want [dave]", roster)
	}

	roster, _ = v.ApplyRoster(gen, nil)
	if len(roster) != 0 {
		t.Errorf("roster = %v, want empty", roster)
	}
}

func TestViewStateSnapshotIsCopy(t *testing.T) {
	v := NewViewState()
	gen := v.BeginSession("alice", 0)
	v.ApplyMessages(gen, []Message{msg(1, "bob", "hi")})

	snap := v.Snapshot()
	snap.Messages[0].Content = "mutated"

	if v.Snapshot().Messages[0].Content != "hi" {
		t.Error("snapshot shares storage with the view")
	}
}

func TestViewStateClearSentInput(t *testing.T) {
	v := NewViewState()
	stale := v.BeginSession("alice", 0)
	v.EndSession()
	gen := v.BeginSession("alice", 0)

	v.SetInput("hello")
	if v.ClearSentInput(stale, "hello") {
		t.Error("stale generation cleared the input")
	}
	if v.ClearSentInput(gen, "hell") {
		t.Error("different content cleared the input")
	}
	if v.Input() != "hello" {
		t.Fatalf("input = %q, want hello", v.Input())
	}

	if !v.ClearSentInput(gen, "hello") {
		t.Error("live generation with matching content kept the input")
	}
	if v.Input() != "" {
		t.Errorf("input = %q, want cleared", v.Input())
	}
}
