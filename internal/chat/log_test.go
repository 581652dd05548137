package chat

import (
	"strings"
	"testing"
	"time"
)

func TestAddUser(t *testing.T) {
	l := NewLog()
	l.AddUser("Hello! This is a test message.")

	if l.Len() != 1 {
		t.Fatalf("expected 1 message, got %d", l.Len())
	}
	msg := l.At(0)
	if msg.Role != RoleUser {
		t.Errorf("expected user role, got %v", msg.Role)
	}
	if msg.Content != "Hello! This is a test message." {
		t.Errorf("content mismatch: %q", msg.Content)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected non-zero timestamp")
	}
	if msg.Duration != 0 {
		t.Errorf("user message should have zero duration, got %v", msg.Duration)
	}
}

func TestStreamingConcatenation(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{"two chunks", []string{"This is a test ", "response."}, "This is a test response."},
		{"single characters", []string{"a", "b", "c"}, "abc"},
		{"empty chunk interleaved", []string{"foo", "", "bar"}, "foobar"},
		{"multibyte", []string{"你好", "，世界"}, "你好，世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLog()
			l.AddUser("hi")
			l.StartAssistant()
			for _, c := range tt.chunks {
				l.AppendChunk(c)
			}
			msg, ok := l.FinishAssistant()
			if !ok {
				t.Fatal("expected a finalized message")
			}
			if msg.Content != tt.want {
				t.Errorf("content = %q, want %q", msg.Content, tt.want)
			}
			if msg.Duration < 0 {
				t.Errorf("negative duration: %v", msg.Duration)
			}
			if l.Len() != 2 {
				t.Errorf("expected 2 log entries, got %d", l.Len())
			}
		})
	}
}

func TestFinishWithoutChunksIsNoOp(t *testing.T) {
	l := NewLog()
	l.StartAssistant()
	if _, ok := l.FinishAssistant(); ok {
		t.Error("empty stream should not produce a message")
	}
	if l.Len() != 0 {
		t.Errorf("expected empty log, got %d entries", l.Len())
	}
	if _, active := l.StreamingState(); active {
		t.Error("stream should be cleared after finish")
	}
}

func TestFinishWithoutStartIsNoOp(t *testing.T) {
	l := NewLog()
	if _, ok := l.FinishAssistant(); ok {
		t.Error("finish without start should be a no-op")
	}
}

func TestAppendChunkWithoutStreamIsDropped(t *testing.T) {
	l := NewLog()
	l.AppendChunk("orphan")
	if l.Len() != 0 {
		t.Error("orphan chunk must not create a message")
	}
	if _, active := l.StreamingState(); active {
		t.Error("orphan chunk must not create a stream")
	}
}

func TestStartAssistantForceFinishesActiveStream(t *testing.T) {
	l := NewLog()
	l.StartAssistant()
	l.AppendChunk("first answer")
	l.StartAssistant()
	l.AppendChunk("second answer")
	if _, ok := l.FinishAssistant(); !ok {
		t.Fatal("second stream should finalize")
	}

	if l.Len() != 2 {
		t.Fatalf("expected prior stream finalized, got %d entries", l.Len())
	}
	if got := l.At(0).Content; got != "first answer" {
		t.Errorf("first entry = %q", got)
	}
	if got := l.At(1).Content; got != "second answer" {
		t.Errorf("second entry = %q", got)
	}
}

func TestStartAssistantWithEmptyActiveStream(t *testing.T) {
	l := NewLog()
	l.StartAssistant()
	l.StartAssistant() // prior stream empty: degenerates to a silent reset
	l.AppendChunk("only answer")
	l.FinishAssistant()

	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}
}

func TestDiscardStreaming(t *testing.T) {
	l := NewLog()
	l.StartAssistant()
	l.AppendChunk("partial resp")
	l.DiscardStreaming()

	if _, active := l.StreamingState(); active {
		t.Error("stream should be gone after discard")
	}
	if _, ok := l.FinishAssistant(); ok {
		t.Error("discarded stream must not finalize")
	}
	if l.Len() != 0 {
		t.Error("discarded stream must not be recorded")
	}
}

func TestClear(t *testing.T) {
	l := NewLog()
	l.AddUser("hi")
	l.StartAssistant()
	l.AppendChunk("partial")
	l.Clear()

	if l.Len() != 0 {
		t.Errorf("expected empty log, got %d", l.Len())
	}
	if _, active := l.StreamingState(); active {
		t.Error("clear must drop the active stream")
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	l := NewLog()
	l.AddUser("original")
	msgs := l.Messages()
	msgs[0].Content = "mutated"
	if l.At(0).Content != "original" {
		t.Error("log records must not be shared by reference")
	}
}

func TestDurationUsesStreamStart(t *testing.T) {
	l := NewLog()
	base := time.Unix(1000, 0)
	step := 0
	l.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	l.StartAssistant()
	l.AppendChunk(strings.Repeat("x", 10))
	msg, ok := l.FinishAssistant()
	if !ok {
		t.Fatal("expected finalized message")
	}
	if msg.Duration != time.Second {
		t.Errorf("duration = %v, want 1s", msg.Duration)
	}
	if !msg.CreatedAt.Equal(base.Add(time.Second)) {
		t.Errorf("CreatedAt = %v, want stream start", msg.CreatedAt)
	}
}
