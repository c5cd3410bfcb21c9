package speech

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Recognizer owns the speech-to-text state machine: Idle -> Listening -> Idle.
// At most one recognition session is active at a time; Toggle stops an active
// session and starts one otherwise.
type Recognizer struct {
	engine InputEngine
	logger *logrus.Logger

	// OnTranscript receives interim and final results. Each call replaces
	// the previous transcript. Set before the first Start.
	OnTranscript func(text string, final bool)

	// OnError receives errors worth surfacing to the user; currently only
	// permission denial. Other errors are logged and end the session
	// silently. Optional.
	OnError func(err error)

	mu      sync.Mutex
	session InputSession
	active  bool
}

// NewRecognizer creates a recognizer over the given engine. A nil engine
// marks the capability absent.
func NewRecognizer(engine InputEngine, logger *logrus.Logger) *Recognizer {
	return &Recognizer{engine: engine, logger: logger}
}

// Available reports whether speech input is supported.
func (r *Recognizer) Available() bool {
	return r.engine != nil
}

// Active reports whether a recognition session is in progress.
func (r *Recognizer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Toggle starts a session when idle and stops the active one otherwise.
func (r *Recognizer) Toggle(ctx context.Context) error {
	if r.Active() {
		r.Stop()
		return nil
	}
	return r.Start(ctx)
}

// Start begins a recognition session. Starting while one is active is a no-op.
func (r *Recognizer) Start(ctx context.Context) error {
	if r.engine == nil {
		return ErrUnavailable
	}

	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil
	}

	events := make(chan InputEvent, 8)
	session, err := r.engine.Start(ctx, events)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.session = session
	r.active = true
	r.mu.Unlock()

	go r.pump(events)
	return nil
}

// Stop ends the active session, if any.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	session := r.session
	r.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// pump consumes session events until the session ends.
func (r *Recognizer) pump(events <-chan InputEvent) {
	for ev := range events {
		switch {
		case ev.Err != nil:
			if errors.Is(ev.Err, ErrPermissionDenied) {
				if r.OnError != nil {
					r.OnError(ev.Err)
				}
			} else {
				r.logger.WithError(ev.Err).Warn("speech recognition error")
			}
			r.finish()
			return
		case ev.End:
			r.finish()
			return
		default:
			if r.OnTranscript != nil {
				r.OnTranscript(ev.Transcript, ev.Final)
			}
		}
	}
	r.finish()
}

func (r *Recognizer) finish() {
	r.mu.Lock()
	r.session = nil
	r.active = false
	r.mu.Unlock()
}
