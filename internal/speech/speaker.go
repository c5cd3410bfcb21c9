package speech

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gracechapel/scripture-assistant/internal/markdown"
)

// defaultVoiceWait bounds how long Speak waits for an engine whose voice list
// is still loading before falling back to the default voice.
const defaultVoiceWait = 2 * time.Second

// preferredProviders are tried first when selecting an English voice.
var preferredProviders = []string{"Google", "Microsoft", "Apple"}

// Speaker owns the text-to-speech state machine. At most one utterance is
// active at a time; starting a new one cancels the current one first.
type Speaker struct {
	engine    OutputEngine
	logger    *logrus.Logger
	voiceWait time.Duration

	mu         sync.Mutex
	speakingID string
}

// NewSpeaker creates a speaker over the given engine. A nil engine marks the
// capability absent.
func NewSpeaker(engine OutputEngine, logger *logrus.Logger) *Speaker {
	return &Speaker{engine: engine, logger: logger, voiceWait: defaultVoiceWait}
}

// Available reports whether speech output is supported.
func (s *Speaker) Available() bool {
	return s.engine != nil
}

// SpeakingID returns the ID of the message currently being narrated, or ""
// when idle.
func (s *Speaker) SpeakingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speakingID
}

// Speak narrates the given message text, cancelling any in-progress
// utterance first. The text is stripped of markdown syntax before synthesis.
func (s *Speaker) Speak(ctx context.Context, messageID, text string) error {
	if s.engine == nil {
		return ErrUnavailable
	}

	s.Stop()

	utterance := Utterance{
		Text:  markdown.StripForSpeech(text),
		Voice: s.selectVoice(ctx),
	}

	s.mu.Lock()
	s.speakingID = messageID
	s.mu.Unlock()

	done := func() {
		s.mu.Lock()
		if s.speakingID == messageID {
			s.speakingID = ""
		}
		s.mu.Unlock()
	}

	if err := s.engine.Speak(ctx, utterance, done); err != nil {
		done()
		return err
	}
	return nil
}

// Stop cancels the in-progress utterance, if any.
func (s *Speaker) Stop() {
	if s.engine == nil {
		return
	}
	s.engine.Cancel()
	s.mu.Lock()
	s.speakingID = ""
	s.mu.Unlock()
}

// selectVoice picks an English voice, preferring the provider preference
// list, then any English voice, then the engine default (nil). It waits a
// bounded time for an asynchronously loading voice list.
func (s *Speaker) selectVoice(ctx context.Context) *Voice {
	voices := s.engine.Voices()
	if len(voices) == 0 {
		deadline := time.NewTimer(s.voiceWait)
		defer deadline.Stop()
		select {
		case <-s.engine.VoicesChanged():
			voices = s.engine.Voices()
		case <-deadline.C:
		case <-ctx.Done():
		}
	}
	if len(voices) == 0 {
		s.logger.Debug("no synthesizer voices loaded, using engine default")
		return nil
	}

	var firstEnglish *Voice
	for i := range voices {
		v := &voices[i]
		if !strings.HasPrefix(strings.ToLower(v.Lang), "en") {
			continue
		}
		if firstEnglish == nil {
			firstEnglish = v
		}
		for _, p := range preferredProviders {
			if strings.Contains(v.Provider, p) {
				return v
			}
		}
	}
	return firstEnglish
}
