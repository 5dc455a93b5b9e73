package core

import "testing"

func TestNewEventBasics(t *testing.T) {
	ev := NewEvent("run-1", "planner")
	if ev.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if ev.RunID != "run-1" || ev.Author != "planner" {
		t.Fatalf("unexpected identity fields: %#v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
	if ev.Content != nil {
		t.Fatalf("bare event should carry no content")
	}
}

func TestMessageEventConstructors(t *testing.T) {
	msg := NewMessageEvent("assembler", "deck ready")
	if msg.Content == nil || msg.Content.Role != "assistant" {
		t.Fatalf("expected assistant content, got %#v", msg.Content)
	}
	if got := msg.Content.Text(); got != "deck ready" {
		t.Fatalf("unexpected text: %q", got)
	}

	user := NewUserMessageEvent("run-2", "explain photosynthesis")
	if user.Author != "user" || user.RunID != "run-2" {
		t.Fatalf("unexpected user event: %#v", user)
	}
	if user.Content.Role != "user" {
		t.Fatalf("expected user role, got %q", user.Content.Role)
	}
}

func TestNewDataEvent(t *testing.T) {
	ev := NewDataEvent("planner", map[string]any{"slides": 4})
	if ev.Content == nil || len(ev.Content.Parts) != 1 {
		t.Fatalf("expected single data part, got %#v", ev.Content)
	}
	dp, ok := ev.Content.Parts[0].(DataPart)
	if !ok {
		t.Fatalf("expected DataPart, got %T", ev.Content.Parts[0])
	}
	if dp.Data["slides"].(int) != 4 {
		t.Fatalf("unexpected payload: %#v", dp.Data)
	}
}

func TestIsPartialAndFinal(t *testing.T) {
	ev := NewMessageEvent("writer", "partial text")
	if ev.IsPartial() {
		t.Fatalf("nil Partial should not be partial")
	}
	if !ev.IsFinalResponse() {
		t.Fatalf("non-partial event should be final")
	}

	partial := true
	ev.Partial = &partial
	if !ev.IsPartial() || ev.IsFinalResponse() {
		t.Fatalf("partial event misclassified")
	}
}

func TestContentText(t *testing.T) {
	c := Content{Role: "assistant", Parts: []Part{
		TextPart{Text: "a"},
		DataPart{Data: map[string]any{"k": "v"}},
		TextPart{Text: "b"},
		ImagePart{Prompt: "diagram of a cell"},
	}}
	if got := c.Text(); got != "ab" {
		t.Fatalf("expected concatenated text parts, got %q", got)
	}
}
