// Package provider streams assistant tokens from a chat completion API.
package provider

import "context"

// Role values accepted by the messages API.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation context sent with a request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries everything a single streaming turn needs.
type Request struct {
	Model     string
	System    string
	Messages  []Message
	MaxTokens int
}

// Provider streams a single assistant turn. onChunk is invoked for each
// text fragment in arrival order on the calling goroutine. A nil return
// means the stream completed; any error means the turn failed and the
// partial text must not be treated as a finished message. Cancelling ctx
// aborts the stream.
type Provider interface {
	Stream(ctx context.Context, req Request, onChunk func(text string)) error
	Model() string
}
