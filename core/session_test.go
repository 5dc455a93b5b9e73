package core

import "testing"

func TestSessionStateAndHistory(t *testing.T) {
	s := NewSession("s1")
	s.SetState("topic", "fractions")
	if v, ok := s.GetState("topic"); !ok || v != "fractions" {
		t.Fatalf("unexpected state: %v %v", v, ok)
	}

	s.MergeState(map[string]interface{}{"grade": 5, "topic": "decimals"})
	if v, _ := s.GetState("topic"); v != "decimals" {
		t.Fatalf("merge did not overwrite: %v", v)
	}

	s.AddEvent(NewUserMessageEvent("r1", "hi"))
	s.AddEvent(NewMessageEvent("tutor", "hello"))

	partial := true
	streaming := NewMessageEvent("tutor", "chunk")
	streaming.Partial = &partial
	s.AddEvent(streaming)

	control := NewEvent("r1", "engine") // no content
	s.AddEvent(control)

	history := s.GetConversationHistory()
	if len(history) != 2 {
		t.Fatalf("expected 2 conversational events, got %d", len(history))
	}
}

func TestSessionCloneIsolation(t *testing.T) {
	s := NewSession("s2")
	s.SetState("k", "v")
	s.AddEvent(NewUserMessageEvent("r1", "q"))

	clone := s.Clone()
	clone.SetState("k", "changed")
	clone.AddEvent(NewMessageEvent("tutor", "a"))

	if v, _ := s.GetState("k"); v != "v" {
		t.Fatalf("clone mutation leaked into original: %v", v)
	}
	if len(s.GetEvents()) != 1 {
		t.Fatalf("clone event leaked into original")
	}
}

func TestGetEventsDefensiveCopy(t *testing.T) {
	s := NewSession("s3")
	s.AddEvent(NewUserMessageEvent("r1", "q"))
	events := s.GetEvents()
	events[0].Author = "mutated"
	if s.GetEvents()[0].Author != "user" {
		t.Fatalf("expected defensive copy of events")
	}
}
