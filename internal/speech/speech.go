// Package speech models the optional speech input/output capabilities as
// injected engine ports wrapped by small state machines. Engines are
// best-effort: a nil engine means the capability is absent, which disables
// the feature without affecting anything else.
package speech

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a speech capability has no engine.
var ErrUnavailable = errors.New("speech capability unavailable")

// ErrPermissionDenied is reported when microphone access is refused. It is
// surfaced distinctly from generic capability absence.
var ErrPermissionDenied = errors.New("microphone permission denied")

// InputEvent is one asynchronous event from a recognition session.
type InputEvent struct {
	// Transcript carries an interim or final recognition result. Each
	// transcript replaces the previous one; results are not cumulative.
	Transcript string
	Final      bool

	// End marks the engine-signaled end of the session.
	End bool

	// Err ends the session with an error. Permission refusal satisfies
	// errors.Is(Err, ErrPermissionDenied).
	Err error
}

// InputSession is a handle to one active recognition session.
type InputSession interface {
	// Stop ends the session. The engine must still deliver an End event.
	Stop()
}

// InputEngine starts single-shot, non-continuous recognition sessions.
type InputEngine interface {
	Start(ctx context.Context, events chan<- InputEvent) (InputSession, error)
}

// Voice describes one synthesizer voice.
type Voice struct {
	Name     string
	Lang     string
	Provider string
	Default  bool
}

// Utterance is one piece of prepared prose to narrate.
type Utterance struct {
	Text  string
	Voice *Voice // nil selects the engine default
}

// OutputEngine synthesizes speech. The voice list may be empty until the
// engine finishes loading; VoicesChanged signals updates.
type OutputEngine interface {
	Voices() []Voice
	VoicesChanged() <-chan struct{}
	// Speak starts narrating the utterance and calls done when it finishes
	// naturally. Starting a new utterance requires a prior Cancel.
	Speak(ctx context.Context, u Utterance, done func()) error
	Cancel()
}
