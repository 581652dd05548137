package commands

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/silanhu/easycli/internal/chat"
	"github.com/silanhu/easycli/internal/config"
	"github.com/silanhu/easycli/internal/history"
)

// fakeSession builds a display-less session backed by a temp store.
func fakeSession(t *testing.T) *chatSession {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	store, err := history.DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore: %v", err)
	}
	return &chatSession{
		plainLog: chat.NewLog(),
		cfg:      config.DefaultConfig(),
		store:    store,
		model:    "test-model",
		registry: newSlashRegistry(),
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := fakeSession(t)
	err := s.registry.dispatch(s, "/bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unknown command should error with hint, got %v", err)
	}
}

func TestDispatchExit(t *testing.T) {
	s := fakeSession(t)
	for _, line := range []string{"/exit", "/quit", "/EXIT"} {
		if err := s.registry.dispatch(s, line); !errors.Is(err, errExitChat) {
			t.Errorf("dispatch(%q) = %v, want errExitChat", line, err)
		}
	}
}

func TestDispatchNewResetsSession(t *testing.T) {
	s := fakeSession(t)
	s.log().AddUser("old content")
	s.convID = "some-id"

	if err := s.registry.dispatch(s, "/new"); err != nil {
		t.Fatalf("/new: %v", err)
	}
	if s.log().Len() != 0 {
		t.Errorf("log should be cleared")
	}
	if s.convID != "" {
		t.Errorf("conversation binding should reset")
	}
}

func TestDispatchCopyWithoutReply(t *testing.T) {
	s := fakeSession(t)
	if err := s.registry.dispatch(s, "/copy"); err == nil {
		t.Error("copy with no assistant message should fail")
	}
}

func TestDispatchModel(t *testing.T) {
	s := fakeSession(t)
	if err := s.registry.dispatch(s, "/model claude-opus-4-20250514"); err != nil {
		t.Fatalf("/model: %v", err)
	}
	if s.model != "claude-opus-4-20250514" {
		t.Errorf("model = %q", s.model)
	}
	// Bare /model just reports.
	if err := s.registry.dispatch(s, "/model"); err != nil {
		t.Errorf("/model without args: %v", err)
	}
}

func TestAliasLifecycle(t *testing.T) {
	s := fakeSession(t)

	if err := s.registry.dispatch(s, "/alias add m model"); err != nil {
		t.Fatalf("/alias add: %v", err)
	}
	if s.cfg.Aliases["m"] != "model" {
		t.Errorf("alias not registered: %v", s.cfg.Aliases)
	}

	// Alias expands before dispatch; "/m x" behaves like "/model x".
	if err := s.registry.dispatch(s, "/m new-model"); err != nil {
		t.Fatalf("aliased dispatch: %v", err)
	}
	if s.model != "new-model" {
		t.Errorf("alias expansion did not reach the handler, model = %q", s.model)
	}

	// Persisted to config.
	saved, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Aliases["m"] != "model" {
		t.Errorf("alias not persisted: %v", saved.Aliases)
	}

	if err := s.registry.dispatch(s, "/alias rm m"); err != nil {
		t.Fatalf("/alias rm: %v", err)
	}
	if _, ok := s.cfg.Aliases["m"]; ok {
		t.Errorf("alias should be removed")
	}
}

func TestAliasWithEmbeddedArgs(t *testing.T) {
	s := fakeSession(t)
	s.cfg.Aliases = map[string]string{"opus": "model claude-opus-4-20250514"}

	if err := s.registry.dispatch(s, "/opus"); err != nil {
		t.Fatalf("aliased dispatch: %v", err)
	}
	if s.model != "claude-opus-4-20250514" {
		t.Errorf("expansion args lost, model = %q", s.model)
	}
}

func TestAliasErrors(t *testing.T) {
	s := fakeSession(t)
	if err := s.registry.dispatch(s, "/alias add"); err == nil {
		t.Error("alias add without args should fail")
	}
	if err := s.registry.dispatch(s, "/alias rm nothere"); err == nil {
		t.Error("removing a missing alias should fail")
	}
	if err := s.registry.dispatch(s, "/alias frobnicate"); err == nil {
		t.Error("unknown subcommand should fail")
	}
}

func TestLoadRestoresConversation(t *testing.T) {
	s := fakeSession(t)

	conv, err := s.store.CreateConversation("test-model")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	s.store.AddMessage(conv.ID, "user", "saved question", 0)
	s.store.AddMessage(conv.ID, "assistant", "saved answer", time.Second)

	if err := s.registry.dispatch(s, "/load @last"); err != nil {
		t.Fatalf("/load: %v", err)
	}
	if s.convID != conv.ID {
		t.Errorf("session not bound to loaded conversation")
	}
	msgs := s.log().Messages()
	if len(msgs) != 2 {
		t.Fatalf("restored %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != chat.RoleUser || msgs[0].Content != "saved question" {
		t.Errorf("user message not restored: %+v", msgs[0])
	}
	if msgs[1].Role != chat.RoleAssistant || msgs[1].Duration != time.Second {
		t.Errorf("assistant message not restored: %+v", msgs[1])
	}
}

func TestLoadRequiresRef(t *testing.T) {
	s := fakeSession(t)
	if err := s.registry.dispatch(s, "/load"); err == nil {
		t.Error("bare /load should show usage error")
	}
}

func TestFavToggles(t *testing.T) {
	s := fakeSession(t)
	conv, _ := s.store.CreateConversation("m")
	s.convID = conv.ID

	if err := s.registry.dispatch(s, "/fav"); err != nil {
		t.Fatalf("/fav: %v", err)
	}
	fav, _ := s.store.IsFavorite(conv.ID)
	if !fav {
		t.Errorf("conversation should be favorited")
	}
}

func TestSaveWithoutConversation(t *testing.T) {
	s := fakeSession(t)
	if err := s.registry.dispatch(s, "/save"); err == nil {
		t.Error("save before any turn should fail")
	}
}

func TestProviderMessagesExcludesStreaming(t *testing.T) {
	log := chat.NewLog()
	log.AddUser("q1")
	log.AddAssistant("a1", time.Now(), time.Second)
	log.AddUser("q2")
	log.StartAssistant()
	log.AppendChunk("in flight")

	msgs := providerMessages(log)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3 finalized", len(msgs))
	}
	if msgs[1].Role != "assistant" || msgs[1].Content != "a1" {
		t.Errorf("assistant turn mangled: %+v", msgs[1])
	}
}
