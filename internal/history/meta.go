package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	metaFileName = "meta.json"
	metaVersion  = 1
)

// ConversationMeta stores per-conversation metadata kept outside the
// conversation file itself.
type ConversationMeta struct {
	ID         string `json:"id"`
	Title      string `json:"title"` // cached title for quick listing
	IsFavorite bool   `json:"is_favorite"`
}

// HistoryMeta stores favorites and display order for all conversations.
type HistoryMeta struct {
	Version int                          `json:"version"`
	Order   []string                     `json:"order"`
	Meta    map[string]*ConversationMeta `json:"meta"`
}

func newHistoryMeta() *HistoryMeta {
	return &HistoryMeta{
		Version: metaVersion,
		Order:   []string{},
		Meta:    make(map[string]*ConversationMeta),
	}
}

func (s *Store) metaPath() string {
	return filepath.Join(s.baseDir, metaFileName)
}

// loadMeta returns an empty HistoryMeta when the file does not exist.
func (s *Store) loadMeta() (*HistoryMeta, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		if os.IsNotExist(err) {
			return newHistoryMeta(), nil
		}
		return nil, fmt.Errorf("failed to read meta file: %w", err)
	}

	var meta HistoryMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse meta file: %w", err)
	}

	if meta.Meta == nil {
		meta.Meta = make(map[string]*ConversationMeta)
	}
	if meta.Order == nil {
		meta.Order = []string{}
	}

	return &meta, nil
}

func (s *Store) saveMeta(meta *HistoryMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal meta: %w", err)
	}

	if err := os.WriteFile(s.metaPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write meta file: %w", err)
	}

	return nil
}

func (s *Store) removeFromMeta(id string) error {
	meta, err := s.loadMeta()
	if err != nil {
		return err
	}

	newOrder := make([]string, 0, len(meta.Order))
	for _, oid := range meta.Order {
		if oid != id {
			newOrder = append(newOrder, oid)
		}
	}
	meta.Order = newOrder
	delete(meta.Meta, id)

	return s.saveMeta(meta)
}

func (s *Store) updateTitleInMeta(id, title string) error {
	meta, err := s.loadMeta()
	if err != nil {
		return err
	}

	if m, exists := meta.Meta[id]; exists {
		m.Title = title
		return s.saveMeta(meta)
	}

	return nil
}

// ensureInMeta registers a conversation in the meta file if missing.
// Caller holds the write lock.
func (s *Store) ensureInMeta(meta *HistoryMeta, id string) error {
	if _, exists := meta.Meta[id]; exists {
		return nil
	}
	conv, err := s.loadConversation(id)
	if err != nil {
		return err
	}
	meta.Meta[id] = &ConversationMeta{ID: id, Title: conv.Title}
	for _, oid := range meta.Order {
		if oid == id {
			return nil
		}
	}
	meta.Order = append(meta.Order, id)
	return nil
}

// IsFavorite reports whether a conversation is marked as favorite.
func (s *Store) IsFavorite(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := s.loadMeta()
	if err != nil {
		return false, err
	}

	if m, exists := meta.Meta[id]; exists {
		return m.IsFavorite, nil
	}

	return false, nil
}

// ToggleFavorite flips the favorite flag and returns the new status.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.loadMeta()
	if err != nil {
		return false, err
	}
	if err := s.ensureInMeta(meta, id); err != nil {
		return false, err
	}

	meta.Meta[id].IsFavorite = !meta.Meta[id].IsFavorite
	newStatus := meta.Meta[id].IsFavorite

	if err := s.saveMeta(meta); err != nil {
		return false, err
	}

	return newStatus, nil
}

// MoveConversation moves a conversation to a new 0-based position in the
// display order.
func (s *Store) MoveConversation(id string, newIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.loadMeta()
	if err != nil {
		return err
	}
	if err := s.ensureInMeta(meta, id); err != nil {
		return err
	}

	currentIndex := -1
	for i, oid := range meta.Order {
		if oid == id {
			currentIndex = i
			break
		}
	}
	if currentIndex == -1 {
		return fmt.Errorf("conversation not found in order: %s", id)
	}

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(meta.Order) {
		newIndex = len(meta.Order) - 1
	}
	if currentIndex == newIndex {
		return nil
	}

	meta.Order = append(meta.Order[:currentIndex], meta.Order[currentIndex+1:]...)
	meta.Order = append(meta.Order[:newIndex], append([]string{id}, meta.Order[newIndex:]...)...)

	return s.saveMeta(meta)
}
