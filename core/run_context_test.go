package core

import (
	"context"
	"testing"
)

type stubRecaller struct {
	recorded []string
	snippets []string
}

func (s *stubRecaller) RecordInteraction(_ context.Context, userID, sessionID, question, answer string, _ map[string]any) error {
	s.recorded = append(s.recorded, question+"|"+answer)
	return nil
}

func (s *stubRecaller) Search(_ context.Context, _, _ string, limit int) ([]string, error) {
	if limit < len(s.snippets) {
		return s.snippets[:limit], nil
	}
	return s.snippets, nil
}

func newTestRunContext(emit chan Event, recall Recaller) *RunContext {
	sess := NewSession("s1")
	sess.UserID = "u1"
	return NewRunContext(
		context.Background(),
		"s1", "r1",
		AgentInfo{Name: "planner", Type: "planner"},
		NewTextContent("user", "make slides"),
		0,
		emit, nil,
		sess, nil, nil, recall, nil,
	)
}

func TestRunContextStateStaging(t *testing.T) {
	rc := newTestRunContext(make(chan Event, 1), nil)

	rc.SetState("outline", []string{"intro"})
	if _, ok := rc.GetState("outline"); !ok {
		t.Fatalf("staged state not visible")
	}

	// staged values shadow persisted session state
	rc.Session.SetState("outline", "persisted")
	if v, _ := rc.GetState("outline"); v == "persisted" {
		t.Fatalf("delta should shadow session state")
	}
}

func TestRunContextEmitMergesDelta(t *testing.T) {
	emit := make(chan Event, 1)
	rc := newTestRunContext(emit, nil)

	rc.SetState("slides.count", 3)
	if err := rc.EmitEvent(NewMessageEvent("planner", "outline ready")); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	ev := <-emit
	if ev.Actions.StateDelta["slides.count"].(int) != 3 {
		t.Fatalf("state delta not merged into event: %#v", ev.Actions)
	}
	if len(rc.StateDelta) != 0 {
		t.Fatalf("delta buffer not cleared after emit")
	}
}

func TestRunContextEmitProgressKeepsDelta(t *testing.T) {
	emit := make(chan Event, 1)
	rc := newTestRunContext(emit, nil)

	rc.SetState("slides.outline", "staged")
	if err := rc.EmitProgress(NewMessageEvent("planner", "planning done")); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	ev := <-emit
	if len(ev.Actions.StateDelta) != 0 {
		t.Fatalf("progress event should not carry the delta: %#v", ev.Actions)
	}
	if v, ok := rc.GetState("slides.outline"); !ok || v != "staged" {
		t.Fatalf("delta buffer lost after progress emit: %v %v", v, ok)
	}
}

func TestRunContextMemoryHelpers(t *testing.T) {
	recall := &stubRecaller{snippets: []string{"a", "b", "c"}}
	rc := newTestRunContext(make(chan Event, 1), recall)

	if err := rc.RecordInteraction("q", "a", nil); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(recall.recorded) != 1 {
		t.Fatalf("interaction not forwarded")
	}

	snippets, err := rc.SearchMemory("q", 2)
	if err != nil || len(snippets) != 2 {
		t.Fatalf("unexpected search result: %v %v", snippets, err)
	}
}

func TestRunContextNilRecallerSearch(t *testing.T) {
	rc := newTestRunContext(make(chan Event, 1), nil)
	snippets, err := rc.SearchMemory("anything", 5)
	if err != nil {
		t.Fatalf("nil recaller search should not error: %v", err)
	}
	if len(snippets) != 0 {
		t.Fatalf("expected empty snippets, got %v", snippets)
	}
}

func TestRunContextBranchClone(t *testing.T) {
	rc := newTestRunContext(make(chan Event, 1), nil)
	rc.SetState("k", "v")

	branch := rc.WithBranch("Writers.slide-1")
	if branch.Branch != "Writers.slide-1" {
		t.Fatalf("branch label not set")
	}
	branch.SetState("k2", "v2")
	if _, ok := rc.StateDelta["k2"]; ok {
		t.Fatalf("branch delta leaked into parent")
	}
}
