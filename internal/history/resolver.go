package history

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver resolves user-friendly references to conversation IDs.
type Resolver struct {
	store *Store
}

// NewResolver creates a resolver over a store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve converts a user-friendly reference to a conversation ID.
//
// Supported references:
//   - "@last" - most recently updated conversation
//   - "@first" - oldest conversation
//   - "1", "2", "3" - by list index (1-based, newest first)
//   - "substring" - match on title (error if ambiguous)
//   - a full conversation ID
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	conversations, err := r.store.ListConversations()
	if err != nil {
		return "", fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(conversations) == 0 {
		return "", fmt.Errorf("no conversations found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		return conversations[0].ID, nil
	case "@first":
		return conversations[len(conversations)-1].ID, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(conversations) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(conversations))
		}
		return conversations[index-1].ID, nil
	}

	// Exact ID wins over title matching.
	for _, conv := range conversations {
		if conv.ID == ref {
			return conv.ID, nil
		}
	}

	var matches []*Conversation
	lower := strings.ToLower(ref)
	for _, conv := range conversations {
		if strings.Contains(strings.ToLower(conv.Title), lower) {
			matches = append(matches, conv)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no conversation matching %q", ref)
	case 1:
		return matches[0].ID, nil
	default:
		titles := make([]string, 0, len(matches))
		for _, m := range matches {
			titles = append(titles, m.Title)
		}
		return "", fmt.Errorf("ambiguous reference %q matches: %s", ref, strings.Join(titles, ", "))
	}
}
