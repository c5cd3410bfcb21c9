package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gracechapel/scripture-assistant/internal/storage"
	"github.com/gracechapel/scripture-assistant/internal/types"
)

// Serialized blobs are versioned so a future schema change can migrate old
// slots instead of discarding them. time.Time fields round-trip as RFC 3339
// through encoding/json.
const persistVersion = 1

type conversationsEnvelope struct {
	Version       int                  `json:"version"`
	Conversations []types.Conversation `json:"conversations"`
}

type favoritesEnvelope struct {
	Version   int              `json:"version"`
	Favorites []types.Favorite `json:"favorites"`
}

// loadConversations deserializes the conversations slot. Absent or corrupt
// data is treated as no prior data; corruption is logged, never surfaced.
func (m *Manager) loadConversations(ctx context.Context) []types.Conversation {
	raw, err := m.store.Load(ctx, m.convKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.WithError(err).Warn("failed to load conversations")
		}
		return nil
	}
	var env conversationsEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		m.logger.WithError(err).Warn("discarding corrupt conversations slot")
		return nil
	}
	return env.Conversations
}

// loadFavorites deserializes the favorites slot with the same tolerance.
func (m *Manager) loadFavorites(ctx context.Context) []types.Favorite {
	raw, err := m.store.Load(ctx, m.favKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.WithError(err).Warn("failed to load favorites")
		}
		return nil
	}
	var env favoritesEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		m.logger.WithError(err).Warn("discarding corrupt favorites slot")
		return nil
	}
	return env.Favorites
}

// persistConversations writes the collection, removing the slot key entirely
// when the collection is empty. Writes are fire-and-forget: failures are
// logged and the in-memory state stays authoritative.
func (m *Manager) persistConversations(ctx context.Context) {
	if len(m.conversations) == 0 {
		if err := m.store.Remove(ctx, m.convKey); err != nil {
			m.logger.WithError(err).Error("failed to clear conversations slot")
		}
		return
	}
	blob, err := json.Marshal(conversationsEnvelope{
		Version:       persistVersion,
		Conversations: m.conversations,
	})
	if err != nil {
		m.logger.WithError(err).Error("failed to serialize conversations")
		return
	}
	if err := m.store.Save(ctx, m.convKey, string(blob)); err != nil {
		m.logger.WithError(err).Error("failed to save conversations")
	}
}

// persistFavorites mirrors persistConversations for the favorites slot.
func (m *Manager) persistFavorites(ctx context.Context) {
	if len(m.favorites) == 0 {
		if err := m.store.Remove(ctx, m.favKey); err != nil {
			m.logger.WithError(err).Error("failed to clear favorites slot")
		}
		return
	}
	blob, err := json.Marshal(favoritesEnvelope{
		Version:   persistVersion,
		Favorites: m.favorites,
	})
	if err != nil {
		m.logger.WithError(err).Error("failed to serialize favorites")
		return
	}
	if err := m.store.Save(ctx, m.favKey, string(blob)); err != nil {
		m.logger.WithError(err).Error("failed to save favorites")
	}
}
