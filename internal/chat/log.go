// Package chat provides the in-memory message log for a chat session.
package chat

import (
	"time"

	"github.com/silanhu/easycli/internal/logging"
)

// Role identifies who authored a message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

// String returns the lowercase role name.
func (r Role) String() string {
	if r == RoleUser {
		return "user"
	}
	return "assistant"
}

// Message is a single finalized chat message. Messages are immutable once
// appended to the log; Duration is zero for user messages and set exactly
// once when a streamed assistant message completes.
type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
	Duration  time.Duration
}

// Streaming is the one in-progress assistant message being built
// chunk-by-chunk. At most one exists at a time.
type Streaming struct {
	Text      string
	StartedAt time.Time
}

// Log is an append-only ordered sequence of messages plus an optional
// in-progress streaming record. It is not safe for concurrent use; the
// display driver serializes access.
type Log struct {
	messages  []Message
	streaming *Streaming
	now       func() time.Time // swapped in tests
}

// NewLog creates an empty message log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// AddUser appends a user message with the current timestamp. Content is
// accepted verbatim; callers filter empty input upstream.
func (l *Log) AddUser(content string) {
	l.messages = append(l.messages, Message{
		Role:      RoleUser,
		Content:   content,
		CreatedAt: l.now(),
	})
}

// AddAssistant appends a completed assistant message directly, bypassing
// the streaming flow. Used when restoring a saved conversation.
func (l *Log) AddAssistant(content string, createdAt time.Time, duration time.Duration) {
	if createdAt.IsZero() {
		createdAt = l.now()
	}
	l.messages = append(l.messages, Message{
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: createdAt,
		Duration:  duration,
	})
}

// StartAssistant begins a new streaming assistant message. If a stream is
// already active it is force-finished first (finalized when non-empty,
// silently discarded when empty) so accumulated tokens are never lost.
func (l *Log) StartAssistant() {
	if l.streaming != nil {
		logging.Warn("starting assistant message while a stream is active; finishing prior stream")
		l.FinishAssistant()
	}
	l.streaming = &Streaming{StartedAt: l.now()}
}

// AppendChunk concatenates chunk to the active streaming message. Chunks
// may be any length, including empty. Without an active stream the chunk
// is dropped.
func (l *Log) AppendChunk(chunk string) {
	if l.streaming == nil {
		logging.Warn("streaming chunk dropped: no active assistant message")
		return
	}
	l.streaming.Text += chunk
}

// FinishAssistant finalizes the active streaming message. The finalized
// message's duration is the elapsed time since StartAssistant. An empty or
// absent stream produces no log entry and reports false.
func (l *Log) FinishAssistant() (Message, bool) {
	s := l.streaming
	l.streaming = nil
	if s == nil || s.Text == "" {
		return Message{}, false
	}
	msg := Message{
		Role:      RoleAssistant,
		Content:   s.Text,
		CreatedAt: s.StartedAt,
		Duration:  l.now().Sub(s.StartedAt),
	}
	l.messages = append(l.messages, msg)
	return msg, true
}

// DiscardStreaming abandons the active stream without finalizing it. Used
// when the token source fails mid-response so the log never contains a
// truncated assistant turn marked complete.
func (l *Log) DiscardStreaming() {
	l.streaming = nil
}

// Clear empties the log and drops any active stream.
func (l *Log) Clear() {
	l.messages = nil
	l.streaming = nil
}

// Len reports the number of finalized messages.
func (l *Log) Len() int {
	return len(l.messages)
}

// Messages returns a copy of the finalized messages in append order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// At returns the i-th finalized message (0-based, append order).
func (l *Log) At(i int) Message {
	return l.messages[i]
}

// StreamingState returns a snapshot of the in-progress message, if any.
func (l *Log) StreamingState() (Streaming, bool) {
	if l.streaming == nil {
		return Streaming{}, false
	}
	return *l.streaming, true
}
