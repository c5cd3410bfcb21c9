package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gracechapel/scripture-assistant/internal/ai/completion"
	"github.com/gracechapel/scripture-assistant/internal/speech"
	"github.com/gracechapel/scripture-assistant/internal/storage"
	"github.com/gracechapel/scripture-assistant/internal/storage/memory"
	"github.com/gracechapel/scripture-assistant/internal/types"
)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   []*completion.Request
	reply   string
	err     error
	release chan struct{} // when set, Complete blocks until closed
}

func (f *fakeCompleter) Complete(_ context.Context, req *completion.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestManager(t *testing.T, completer Completer) (*Manager, *memory.Store) {
	t.Helper()
	store := memory.New()
	m := NewManager(context.Background(), Options{
		Store:     store,
		Completer: completer,
		Logger:    testLogger(),
		Scope:     "tester",
	})
	return m, store
}

func TestSubmit_EndToEnd(t *testing.T) {
	ctx := context.Background()
	completer := &fakeCompleter{reply: "Hebrews 11:1 > Now faith is the substance"}
	m, store := newTestManager(t, completer)

	require.Empty(t, m.Conversations())

	user, assistant, err := m.Submit(ctx, "Show me scriptures about faith")
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, user.Role)
	assert.Equal(t, types.RoleAssistant, assistant.Role)
	assert.Equal(t, types.ModeScriptures, user.Mode)

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Show me scriptures about faith", msgs[0].Content)
	assert.Equal(t, completer.reply, msgs[1].Content)

	convs := m.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "Show me scriptures about faith", convs[0].Title)
	assert.Len(t, convs[0].Messages, 2)

	// The collection is persisted after every change.
	_, err = store.Load(ctx, "assistant:conversations:tester")
	assert.NoError(t, err)
}

func TestSubmit_EmptyInputRejected(t *testing.T) {
	m, _ := newTestManager(t, &fakeCompleter{reply: "x"})
	_, _, err := m.Submit(context.Background(), "   \n ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, m.Messages())
	assert.Empty(t, m.Conversations())
}

func TestSubmit_WhileLoadingIsIgnored(t *testing.T) {
	ctx := context.Background()
	completer := &fakeCompleter{reply: "response", release: make(chan struct{})}
	m, _ := newTestManager(t, completer)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _, err := m.Submit(ctx, "first")
		assert.NoError(t, err)
	}()

	// Wait for the first submission to reach the completer.
	require.Eventually(t, func() bool { return completer.callCount() == 1 },
		2*time.Second, 5*time.Millisecond)

	before := m.Messages()
	_, _, err := m.Submit(ctx, "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, before, m.Messages())
	assert.Equal(t, 1, completer.callCount())

	close(completer.release)
	<-firstDone
	assert.Len(t, m.Messages(), 2)
}

func TestSubmit_CompletionFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	completer := &fakeCompleter{err: errors.New("upstream unavailable")}
	m, _ := newTestManager(t, completer)

	_, _, err := m.Submit(ctx, "hello")
	require.Error(t, err)

	// The user message stays visible and loading is cleared for a retry.
	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, types.RoleUser, msgs[0].Role)
	assert.False(t, m.Loading())

	completer.err = nil
	completer.reply = "better now"
	_, _, err = m.Submit(ctx, "hello again")
	require.NoError(t, err)
	assert.Len(t, m.Messages(), 3)
}

func TestSubmit_HistoryWindowIsBounded(t *testing.T) {
	ctx := context.Background()
	completer := &fakeCompleter{reply: "ok"}
	m, _ := newTestManager(t, completer)

	for i := 0; i < 7; i++ {
		_, _, err := m.Submit(ctx, "message")
		require.NoError(t, err)
	}
	// 7 submissions leave 14 prior messages before the 8th.
	require.Len(t, m.Messages(), 14)

	_, _, err := m.Submit(ctx, "the eighth")
	require.NoError(t, err)

	last := completer.calls[len(completer.calls)-1]
	assert.Equal(t, "the eighth", last.Message)
	assert.Len(t, last.History, 10)
	for _, turn := range last.History {
		assert.NotEqual(t, "the eighth", turn.Content)
	}
}

func TestTitleDerivation(t *testing.T) {
	t.Run("truncated at forty characters", func(t *testing.T) {
		long := strings.Repeat("a", 50)
		title := types.DeriveTitle([]types.Message{{Role: types.RoleUser, Content: long}})
		assert.Len(t, title, 43)
		assert.True(t, strings.HasSuffix(title, "..."))
	})

	t.Run("short input untouched", func(t *testing.T) {
		title := types.DeriveTitle([]types.Message{{Role: types.RoleUser, Content: "Show me scriptures about faith"}})
		assert.Equal(t, "Show me scriptures about faith", title)
	})

	t.Run("no user messages", func(t *testing.T) {
		assert.Equal(t, "New conversation", types.DeriveTitle(nil))
		assert.Equal(t, "New conversation", types.DeriveTitle([]types.Message{
			{Role: types.RoleAssistant, Content: "hello"},
		}))
	})
}

func TestStartNewConversation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, &fakeCompleter{reply: "r"})

	_, _, err := m.Submit(ctx, "first topic")
	require.NoError(t, err)
	firstID := m.CurrentConversationID()

	conv := m.StartNewConversation(ctx)
	assert.NotEqual(t, firstID, conv.ID)
	assert.Equal(t, conv.ID, m.CurrentConversationID())
	assert.Empty(t, m.Messages())
	assert.Len(t, m.Conversations(), 2)
}

func TestLoadConversation(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, &fakeCompleter{reply: "r"})

	_, _, err := m.Submit(ctx, "first topic")
	require.NoError(t, err)
	firstID := m.CurrentConversationID()

	m.StartNewConversation(ctx)
	_, _, err = m.Submit(ctx, "second topic")
	require.NoError(t, err)

	require.NoError(t, m.LoadConversation(firstID))
	assert.Equal(t, firstID, m.CurrentConversationID())
	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "first topic", msgs[0].Content)

	assert.ErrorIs(t, m.LoadConversation("nope"), ErrNotFound)
}

func TestDeleteConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the only conversation clears the slot", func(t *testing.T) {
		m, store := newTestManager(t, &fakeCompleter{reply: "r"})
		_, _, err := m.Submit(ctx, "hello")
		require.NoError(t, err)
		id := m.CurrentConversationID()

		require.NoError(t, m.DeleteConversation(ctx, id))
		assert.Empty(t, m.Conversations())
		assert.Empty(t, m.Messages())
		assert.Equal(t, "", m.CurrentConversationID())

		_, err = store.Load(ctx, "assistant:conversations:tester")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("deleting a non-current conversation keeps the live array", func(t *testing.T) {
		m, _ := newTestManager(t, &fakeCompleter{reply: "r"})
		_, _, err := m.Submit(ctx, "first")
		require.NoError(t, err)
		firstID := m.CurrentConversationID()

		m.StartNewConversation(ctx)
		_, _, err = m.Submit(ctx, "second")
		require.NoError(t, err)

		require.NoError(t, m.DeleteConversation(ctx, firstID))
		assert.Len(t, m.Conversations(), 1)
		assert.Len(t, m.Messages(), 2)
	})

	t.Run("unknown id", func(t *testing.T) {
		m, _ := newTestManager(t, &fakeCompleter{reply: "r"})
		assert.ErrorIs(t, m.DeleteConversation(ctx, "missing"), ErrNotFound)
	})
}

func TestClearChat(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, &fakeCompleter{reply: "r"})

	_, _, err := m.Submit(ctx, "hello")
	require.NoError(t, err)
	id := m.CurrentConversationID()
	before := m.Conversations()[0].UpdatedAt

	m.ClearChat(ctx)

	assert.Empty(t, m.Messages())
	convs := m.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, id, convs[0].ID)
	assert.Empty(t, convs[0].Messages)
	assert.Equal(t, types.DefaultTitle, convs[0].Title)
	assert.False(t, convs[0].UpdatedAt.Before(before))
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle twice restores original state", func(t *testing.T) {
		m, store := newTestManager(t, &fakeCompleter{reply: "a verse"})
		_, assistant, err := m.Submit(ctx, "faith")
		require.NoError(t, err)

		assert.True(t, m.ToggleFavorite(ctx, assistant))
		favs := m.Favorites()
		require.Len(t, favs, 1)
		assert.Equal(t, "a verse", favs[0].Content)
		assert.Equal(t, "faith", favs[0].Query)

		assert.False(t, m.ToggleFavorite(ctx, assistant))
		assert.Empty(t, m.Favorites())

		// Removing the last favorite removes the slot, not an empty list.
		_, err = store.Load(ctx, "assistant:favorites:tester")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("favorite survives conversation deletion", func(t *testing.T) {
		m, _ := newTestManager(t, &fakeCompleter{reply: "kept verse"})
		_, assistant, err := m.Submit(ctx, "hope")
		require.NoError(t, err)
		m.ToggleFavorite(ctx, assistant)

		require.NoError(t, m.DeleteConversation(ctx, m.CurrentConversationID()))
		favs := m.Favorites()
		require.Len(t, favs, 1)
		assert.Equal(t, "kept verse", favs[0].Content)
	})

	t.Run("content equality toggles across message instances", func(t *testing.T) {
		m, _ := newTestManager(t, &fakeCompleter{reply: "same text"})
		_, first, err := m.Submit(ctx, "one")
		require.NoError(t, err)
		_, second, err := m.Submit(ctx, "two")
		require.NoError(t, err)
		require.Equal(t, first.Content, second.Content)

		assert.True(t, m.ToggleFavorite(ctx, first))
		assert.False(t, m.ToggleFavorite(ctx, second))
		assert.Empty(t, m.Favorites())
	})
}

func TestStartupRestore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	completer := &fakeCompleter{reply: "restored"}

	first := NewManager(ctx, Options{
		Store: store, Completer: completer, Logger: testLogger(), Scope: "u",
	})
	_, assistant, err := first.Submit(ctx, "remember this")
	require.NoError(t, err)
	first.ToggleFavorite(ctx, assistant)

	second := NewManager(ctx, Options{
		Store: store, Completer: completer, Logger: testLogger(), Scope: "u",
	})
	require.Len(t, second.Conversations(), 1)
	assert.Equal(t, first.CurrentConversationID(), second.CurrentConversationID())

	msgs := second.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "remember this", msgs[0].Content)
	// Timestamps must survive the serialization round trip.
	assert.WithinDuration(t, time.Now(), msgs[0].Timestamp, time.Minute)

	require.Len(t, second.Favorites(), 1)
}

func TestStartup_CorruptSlotsTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Save(ctx, "assistant:conversations:u", "{not json"))
	require.NoError(t, store.Save(ctx, "assistant:favorites:u", "[] trailing"))

	m := NewManager(ctx, Options{
		Store: store, Completer: &fakeCompleter{reply: "r"}, Logger: testLogger(), Scope: "u",
	})
	assert.Empty(t, m.Conversations())
	assert.Empty(t, m.Favorites())

	// The session is fully usable afterwards.
	_, _, err := m.Submit(ctx, "fresh start")
	assert.NoError(t, err)
}

func TestSetMode(t *testing.T) {
	m, _ := newTestManager(t, &fakeCompleter{reply: "r"})

	require.NoError(t, m.SetMode(types.ModeSermons))
	assert.Equal(t, types.ModeSermons, m.Mode())

	assert.ErrorIs(t, m.SetMode(types.Mode("weather")), ErrUnknownMode)
	assert.Equal(t, types.ModeSermons, m.Mode())

	_, _, err := m.Submit(context.Background(), "outline on grace")
	require.NoError(t, err)
	completer := m.completer.(*fakeCompleter)
	assert.Equal(t, types.ModeSermons, completer.calls[0].Mode)
}

func TestSubmit_ResponseForSwitchedConversationGoesHome(t *testing.T) {
	ctx := context.Background()
	completer := &fakeCompleter{reply: "late answer", release: make(chan struct{})}
	m, _ := newTestManager(t, completer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, err := m.Submit(ctx, "slow question")
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool { return completer.callCount() == 1 },
		2*time.Second, 5*time.Millisecond)
	firstID := m.CurrentConversationID()

	m.StartNewConversation(ctx)
	close(completer.release)
	<-done

	// The live array belongs to the new conversation and stays empty.
	assert.Empty(t, m.Messages())

	var first *types.Conversation
	for _, c := range m.Conversations() {
		if c.ID == firstID {
			conv := c
			first = &conv
		}
	}
	require.NotNil(t, first)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, "late answer", first.Messages[1].Content)
}

// scriptedInputEngine immediately exposes a controllable session.
type scriptedInputEngine struct {
	mu     sync.Mutex
	events chan<- speech.InputEvent
}

type scriptedSession struct{ engine *scriptedInputEngine }

func (s *scriptedSession) Stop() {
	s.engine.mu.Lock()
	ch := s.engine.events
	s.engine.mu.Unlock()
	ch <- speech.InputEvent{End: true}
}

func (e *scriptedInputEngine) Start(_ context.Context, events chan<- speech.InputEvent) (speech.InputSession, error) {
	e.mu.Lock()
	e.events = events
	e.mu.Unlock()
	return &scriptedSession{engine: e}, nil
}

func TestSubmit_StopsActiveListening(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	recognizer := speech.NewRecognizer(&scriptedInputEngine{}, testLogger())

	m := NewManager(ctx, Options{
		Store:      store,
		Completer:  &fakeCompleter{reply: "r"},
		Logger:     testLogger(),
		Scope:      "u",
		Recognizer: recognizer,
	})

	require.NoError(t, m.ToggleListening(ctx))
	assert.True(t, m.Listening())

	_, _, err := m.Submit(ctx, "spoken then typed")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !m.Listening() },
		2*time.Second, 5*time.Millisecond)
}

func TestSpeechUnavailable(t *testing.T) {
	m, _ := newTestManager(t, &fakeCompleter{reply: "r"})
	assert.False(t, m.ListeningAvailable())
	assert.False(t, m.SpeakingAvailable())
	assert.ErrorIs(t, m.ToggleListening(context.Background()), speech.ErrUnavailable)
	assert.ErrorIs(t, m.SpeakMessage(context.Background(), "id"), speech.ErrUnavailable)
	assert.Equal(t, "", m.SpeakingMessageID())
	m.StopSpeaking() // no-op without a speaker
}
