package session

import (
	"testing"

	"github.com/taa217/lucidai/core"
)

func TestInMemoryStoreLazyCreate(t *testing.T) {
	store := NewInMemoryStore()

	sess, err := store.Get("s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if sess.ID != "s1" {
		t.Fatalf("unexpected session id %q", sess.ID)
	}
}

func TestInMemoryStoreAppendAndDelta(t *testing.T) {
	store := NewInMemoryStore()

	if err := store.AppendEvent("s1", core.NewUserMessageEvent("r1", "hello")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.ApplyDelta("s1", map[string]interface{}{"topic": "volcanoes"}); err != nil {
		t.Fatalf("delta failed: %v", err)
	}

	sess, err := store.Get("s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(sess.GetEvents()) != 1 {
		t.Fatalf("event not persisted")
	}
	if v, _ := sess.GetState("topic"); v != "volcanoes" {
		t.Fatalf("delta not persisted: %v", v)
	}
}

func TestInMemoryStoreReturnsClones(t *testing.T) {
	store := NewInMemoryStore()

	first, _ := store.Get("s1")
	first.SetState("k", "mutated")

	second, _ := store.Get("s1")
	if _, ok := second.GetState("k"); ok {
		t.Fatalf("external mutation leaked into store")
	}
}

func TestInMemoryStoreCreateResets(t *testing.T) {
	store := NewInMemoryStore()

	_ = store.ApplyDelta("s1", map[string]interface{}{"k": "v"})
	sess, err := store.Create("s1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, ok := sess.GetState("k"); ok {
		t.Fatalf("create did not reset session state")
	}
}
