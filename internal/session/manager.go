// Package session owns the conversational state of the scripture assistant:
// the live message array, the persisted conversation and favorite
// collections, the active topic mode, and the optional speech capabilities.
// All mutation goes through the Manager; the renderer and storage
// collaborators never touch session state directly.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gracechapel/scripture-assistant/internal/ai/completion"
	"github.com/gracechapel/scripture-assistant/internal/speech"
	"github.com/gracechapel/scripture-assistant/internal/storage"
	"github.com/gracechapel/scripture-assistant/internal/types"
)

// historyWindow bounds how many trailing messages are sent to the completion
// service with each submission.
const historyWindow = 10

// Completer generates assistant text for a submission. *completion.Client
// satisfies it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req *completion.Request) (string, error)
}

// Options configures a Manager.
type Options struct {
	Store     storage.Store
	Completer Completer
	Logger    *logrus.Logger

	// Scope namespaces the two storage slots, so each user gets
	// independent conversation and favorite collections.
	Scope string

	// Recognizer and Speaker are optional; nil means the capability is
	// absent and related operations report speech.ErrUnavailable.
	Recognizer *speech.Recognizer
	Speaker    *speech.Speaker

	// Notify receives transient user-visible notices raised from
	// asynchronous capability callbacks. Optional.
	Notify func(message string)
}

// Manager is the conversational session manager. Safe for concurrent use;
// a single mutex owns all state and the completion call runs outside it.
type Manager struct {
	store      storage.Store
	completer  Completer
	logger     *logrus.Logger
	recognizer *speech.Recognizer
	speaker    *speech.Speaker
	notify     func(string)

	convKey string
	favKey  string

	mu            sync.Mutex
	mode          types.Mode
	messages      []types.Message
	conversations []types.Conversation
	currentID     string
	favorites     []types.Favorite
	loading       bool
	submitGen     int
}

// NewManager creates a manager and restores persisted state: conversations
// sorted most-recently-updated first, the most recent one selected as
// current, and favorites loaded independently.
func NewManager(ctx context.Context, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	m := &Manager{
		store:      opts.Store,
		completer:  opts.Completer,
		logger:     logger,
		recognizer: opts.Recognizer,
		speaker:    opts.Speaker,
		notify:     opts.Notify,
		convKey:    "assistant:conversations:" + opts.Scope,
		favKey:     "assistant:favorites:" + opts.Scope,
		mode:       types.DefaultMode,
	}

	m.conversations = m.loadConversations(ctx)
	sortByUpdatedDesc(m.conversations)
	if len(m.conversations) > 0 {
		m.currentID = m.conversations[0].ID
		m.messages = append([]types.Message(nil), m.conversations[0].Messages...)
	}
	m.favorites = m.loadFavorites(ctx)

	if m.recognizer != nil {
		m.recognizer.OnError = func(err error) {
			if m.notify != nil && errors.Is(err, speech.ErrPermissionDenied) {
				m.notify("Microphone access was denied. Please allow microphone access to use voice input.")
			}
		}
	}

	return m
}

// Mode returns the active topic mode.
func (m *Manager) Mode() types.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// SetMode selects the active topic mode for subsequent submissions.
func (m *Manager) SetMode(mode types.Mode) error {
	if !types.ValidMode(mode) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	return nil
}

// Loading reports whether a completion request is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Messages returns a copy of the live message array.
func (m *Manager) Messages() []types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Message(nil), m.messages...)
}

// Conversations returns a copy of the conversation collection,
// most-recently-updated first.
func (m *Manager) Conversations() []types.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Conversation(nil), m.conversations...)
}

// CurrentConversationID returns the selected conversation's ID, or "" when
// none is selected.
func (m *Manager) CurrentConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentID
}

// Favorites returns a copy of the favorites collection.
func (m *Manager) Favorites() []types.Favorite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Favorite(nil), m.favorites...)
}

// Submit appends the user's input to the current conversation, requests a
// completion, and appends the assistant's response. The user message is
// visible before the completion resolves; on failure no assistant message is
// appended and the user may simply resubmit. A submission while a request is
// in flight returns ErrBusy without touching any state.
func (m *Manager) Submit(ctx context.Context, input string) (user, assistant types.Message, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return user, assistant, ErrEmptyInput
	}

	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return user, assistant, ErrBusy
	}

	// Voice input is interrupted, not blocked, by a submission.
	if m.recognizer != nil && m.recognizer.Active() {
		m.recognizer.Stop()
	}

	if m.currentID == "" {
		m.createConversationLocked(ctx)
	}
	convID := m.currentID

	history := m.historyWindowLocked()
	mode := m.mode

	user = types.NewMessage(types.RoleUser, input, mode)
	m.messages = append(m.messages, user)
	m.syncCurrentLocked(ctx)

	m.loading = true
	m.submitGen++
	gen := m.submitGen
	m.mu.Unlock()

	text, err := m.completer.Complete(ctx, &completion.Request{
		Message: input,
		Mode:    mode,
		History: history,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false

	if err != nil {
		m.logger.WithError(err).Error("completion request failed")
		return user, assistant, fmt.Errorf("get completion: %w", err)
	}

	assistant = types.NewMessage(types.RoleAssistant, text, mode)
	switch {
	case gen == m.submitGen && m.currentID == convID:
		m.messages = append(m.messages, assistant)
		m.syncCurrentLocked(ctx)
	default:
		// The user switched or deleted the conversation while the request
		// was in flight; deliver the response to its home conversation.
		m.appendToStoredLocked(ctx, convID, assistant)
	}
	return user, assistant, nil
}

// StartNewConversation creates and selects a new empty conversation without
// deleting any existing one.
func (m *Manager) StartNewConversation(ctx context.Context) types.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	return m.createConversationLocked(ctx)
}

// LoadConversation selects the conversation and replaces the live array with
// its stored messages. No network calls are made.
func (m *Manager) LoadConversation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.conversations {
		if c.ID == id {
			m.currentID = id
			m.messages = append([]types.Message(nil), c.Messages...)
			return nil
		}
	}
	return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
}

// DeleteConversation removes a conversation from the collection. Deleting
// the current one clears the live array; deleting the last one removes the
// storage slot entirely.
func (m *Manager) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, c := range m.conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	m.conversations = append(m.conversations[:idx], m.conversations[idx+1:]...)
	if m.currentID == id {
		m.currentID = ""
		m.messages = nil
	}
	m.persistConversations(ctx)
	return nil
}

// ClearChat empties the live message array. The current conversation keeps
// existing with empty messages and a refreshed update time; this is distinct
// from DeleteConversation.
func (m *Manager) ClearChat(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	if m.currentID != "" {
		m.syncCurrentLocked(ctx)
	}
}

// ToggleFavorite saves the message as a favorite, or removes the existing
// favorite with the same content. The preceding user message in the live
// array, if any, is captured as query context.
func (m *Manager) ToggleFavorite(ctx context.Context, message types.Message) (favorited bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, f := range m.favorites {
		if f.Content == message.Content {
			m.favorites = append(m.favorites[:i], m.favorites[i+1:]...)
			m.persistFavorites(ctx)
			return false
		}
	}

	var query string
	for i, msg := range m.messages {
		if msg.ID == message.ID && i > 0 && m.messages[i-1].Role == types.RoleUser {
			query = m.messages[i-1].Content
			break
		}
	}

	m.favorites = append(m.favorites, types.Favorite{
		ID:      uuid.NewString(),
		Content: message.Content,
		Mode:    message.Mode,
		SavedAt: time.Now(),
		Query:   query,
	})
	m.persistFavorites(ctx)
	return true
}

// ListeningAvailable reports whether speech input is supported.
func (m *Manager) ListeningAvailable() bool {
	return m.recognizer != nil && m.recognizer.Available()
}

// Listening reports whether a recognition session is active.
func (m *Manager) Listening() bool {
	return m.recognizer != nil && m.recognizer.Active()
}

// ToggleListening starts or stops a speech recognition session.
func (m *Manager) ToggleListening(ctx context.Context) error {
	if m.recognizer == nil {
		return speech.ErrUnavailable
	}
	return m.recognizer.Toggle(ctx)
}

// SpeakingAvailable reports whether speech output is supported.
func (m *Manager) SpeakingAvailable() bool {
	return m.speaker != nil && m.speaker.Available()
}

// SpeakingMessageID returns the ID of the message being narrated, or "".
func (m *Manager) SpeakingMessageID() string {
	if m.speaker == nil {
		return ""
	}
	return m.speaker.SpeakingID()
}

// SpeakMessage narrates a message from the live array, cancelling any
// in-progress narration first.
func (m *Manager) SpeakMessage(ctx context.Context, messageID string) error {
	if m.speaker == nil {
		return speech.ErrUnavailable
	}
	m.mu.Lock()
	var content string
	for _, msg := range m.messages {
		if msg.ID == messageID {
			content = msg.Content
			break
		}
	}
	m.mu.Unlock()
	if content == "" {
		return fmt.Errorf("message %s: %w", messageID, ErrNotFound)
	}
	return m.speaker.Speak(ctx, messageID, content)
}

// StopSpeaking cancels the in-progress narration, if any.
func (m *Manager) StopSpeaking() {
	if m.speaker != nil {
		m.speaker.Stop()
	}
}

// createConversationLocked creates, selects, and persists a new empty
// conversation. Callers hold m.mu.
func (m *Manager) createConversationLocked(ctx context.Context) types.Conversation {
	now := time.Now()
	conv := types.Conversation{
		ID:        uuid.NewString(),
		Title:     types.DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.conversations = append([]types.Conversation{conv}, m.conversations...)
	m.currentID = conv.ID
	m.persistConversations(ctx)
	return conv
}

// historyWindowLocked returns the trailing role/content pairs preceding the
// next submission. Mode is stripped; only role and content leave the process.
func (m *Manager) historyWindowLocked() []completion.Turn {
	start := 0
	if len(m.messages) > historyWindow {
		start = len(m.messages) - historyWindow
	}
	var turns []completion.Turn
	for _, msg := range m.messages[start:] {
		turns = append(turns, completion.Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// syncCurrentLocked mirrors the live array into the current conversation's
// stored entry, recomputes its title, refreshes its update time, re-sorts the
// collection, and persists it. Callers hold m.mu.
func (m *Manager) syncCurrentLocked(ctx context.Context) {
	for i := range m.conversations {
		if m.conversations[i].ID != m.currentID {
			continue
		}
		m.conversations[i].Messages = append([]types.Message(nil), m.messages...)
		m.conversations[i].Title = types.DeriveTitle(m.messages)
		m.conversations[i].UpdatedAt = time.Now()
		break
	}
	sortByUpdatedDesc(m.conversations)
	m.persistConversations(ctx)
}

// appendToStoredLocked delivers a message to a conversation that is no longer
// current. Dropped silently if the conversation was deleted meanwhile.
func (m *Manager) appendToStoredLocked(ctx context.Context, convID string, msg types.Message) {
	for i := range m.conversations {
		if m.conversations[i].ID != convID {
			continue
		}
		m.conversations[i].Messages = append(m.conversations[i].Messages, msg)
		m.conversations[i].Title = types.DeriveTitle(m.conversations[i].Messages)
		m.conversations[i].UpdatedAt = time.Now()
		sortByUpdatedDesc(m.conversations)
		m.persistConversations(ctx)
		return
	}
	m.logger.WithField("conversation_id", convID).Debug("dropping response for deleted conversation")
}

func sortByUpdatedDesc(convs []types.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
}
