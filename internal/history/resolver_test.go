package history

import (
	"strings"
	"testing"
	"time"
)

func seedConversations(t *testing.T) (*Store, []*Conversation) {
	t.Helper()
	s := newTestStore(t)

	titles := []string{"goroutines and channels", "error wrapping", "generics deep dive"}
	var convs []*Conversation
	for _, title := range titles {
		conv, err := s.CreateConversation("m")
		if err != nil {
			t.Fatalf("CreateConversation: %v", err)
		}
		if err := s.UpdateTitle(conv.ID, title); err != nil {
			t.Fatalf("UpdateTitle: %v", err)
		}
		convs = append(convs, conv)
		time.Sleep(5 * time.Millisecond) // distinct UpdatedAt ordering
	}
	return s, convs
}

func TestResolveAliases(t *testing.T) {
	s, convs := seedConversations(t)
	r := NewResolver(s)

	last, err := r.Resolve("@last")
	if err != nil {
		t.Fatalf("Resolve(@last): %v", err)
	}
	if last != convs[2].ID {
		t.Errorf("@last = %s, want most recently updated", last)
	}

	first, err := r.Resolve("@first")
	if err != nil {
		t.Fatalf("Resolve(@first): %v", err)
	}
	if first != convs[0].ID {
		t.Errorf("@first = %s, want oldest", first)
	}
}

func TestResolveIndex(t *testing.T) {
	s, convs := seedConversations(t)
	r := NewResolver(s)

	// Index 1 is the newest (list order).
	id, err := r.Resolve("1")
	if err != nil {
		t.Fatalf("Resolve(1): %v", err)
	}
	if id != convs[2].ID {
		t.Errorf("index 1 = %s, want newest", id)
	}

	if _, err := r.Resolve("99"); err == nil {
		t.Error("out-of-range index should fail")
	}
	if _, err := r.Resolve("0"); err == nil {
		t.Error("index 0 should fail (1-based)")
	}
}

func TestResolveDirectID(t *testing.T) {
	s, convs := seedConversations(t)
	r := NewResolver(s)

	id, err := r.Resolve(convs[1].ID)
	if err != nil {
		t.Fatalf("Resolve(id): %v", err)
	}
	if id != convs[1].ID {
		t.Errorf("direct ID resolution failed")
	}
}

func TestResolveTitleSubstring(t *testing.T) {
	s, convs := seedConversations(t)
	r := NewResolver(s)

	id, err := r.Resolve("GENERICS")
	if err != nil {
		t.Fatalf("Resolve(substring): %v", err)
	}
	if id != convs[2].ID {
		t.Errorf("case-insensitive title match failed")
	}
}

func TestResolveAmbiguous(t *testing.T) {
	s, _ := seedConversations(t)
	r := NewResolver(s)

	// "er" matches "error wrapping" and "generics deep dive".
	_, err := r.Resolve("er")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("ambiguous match should fail with detail, got %v", err)
	}
}

func TestResolveEmptyAndMissing(t *testing.T) {
	s, _ := seedConversations(t)
	r := NewResolver(s)

	if _, err := r.Resolve(""); err == nil {
		t.Error("empty reference should fail")
	}
	if _, err := r.Resolve("zzz-no-such-title"); err == nil {
		t.Error("unmatched reference should fail")
	}
}

func TestResolveNoConversations(t *testing.T) {
	s := newTestStore(t)
	r := NewResolver(s)

	if _, err := r.Resolve("@last"); err == nil {
		t.Error("resolver over empty store should fail")
	}
}
