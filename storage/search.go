package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"iask/model"
)

// TurnMatch is one search hit across stored conversations.
type TurnMatch struct {
	ChatID    string
	TurnID    string
	Role      model.Role
	Preview   string
	Timestamp time.Time
	Score     int
}

// SearchIndex runs fuzzy search over the turns in a ConversationStore.
type SearchIndex struct {
	store *ConversationStore
}

func NewSearchIndex(store *ConversationStore) *SearchIndex {
	return &SearchIndex{store: store}
}

// Search returns turns across all chats whose content fuzzy-matches the
// query, best matches first. Tool-log noise is excluded; only user-visible
// content is indexed.
func (si *SearchIndex) Search(query string) ([]TurnMatch, error) {
	if query == "" {
		return []TurnMatch{}, nil
	}

	chats, err := si.store.ListChats()
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	var candidates []model.Turn
	var targets []string

	for _, chatID := range chats {
		turns, err := si.store.LoadHistory(chatID)
		if err != nil {
			continue // skip unreadable chats
		}
		for _, t := range turns {
			if t.Content == "" {
				continue
			}
			candidates = append(candidates, t)
			targets = append(targets, t.Content)
		}
	}

	matches := fuzzy.Find(query, targets)

	results := make([]TurnMatch, 0, len(matches))
	for _, match := range matches {
		t := candidates[match.Index]
		results = append(results, TurnMatch{
			ChatID:    t.ChatID,
			TurnID:    t.ID,
			Role:      t.Role,
			Preview:   makePreview(t.Content),
			Timestamp: t.CreatedAt,
			Score:     match.Score,
		})
	}

	return results, nil
}

func makePreview(content string) string {
	content = strings.ReplaceAll(content, "\n", " ")
	if len(content) > 100 {
		return content[:100] + "..."
	}
	return content
}
