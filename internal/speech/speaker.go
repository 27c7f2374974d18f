package speech

import (
	"context"
	"sync"
)

// Engine synthesizes text into 48kHz s16le mono PCM.
type Engine interface {
	// Voices enumerates the voices this engine offers.
	Voices() []Voice
	// DefaultVoice is used for speakers with no assignment.
	DefaultVoice() Voice
	// Stream synthesizes text with the given voice. The PCM channel closes
	// when synthesis finishes or ctx is cancelled; at most one error is sent.
	Stream(ctx context.Context, voice Voice, text string) (<-chan []byte, <-chan error)
}

// Player renders a PCM stream audibly. Play blocks until the stream closes
// or ctx is cancelled.
type Player interface {
	Play(ctx context.Context, pcm <-chan []byte) error
}

// Speaker plays interviewer lines, one utterance at a time. The in-flight
// utterance and its cancel func are owned fields, so independent Speaker
// instances never interfere.
type Speaker struct {
	engine  Engine
	player  Player
	enabled bool
	onError func(error)

	mu          sync.Mutex
	cancel      context.CancelFunc
	assignments map[string]Voice
}

// NewSpeaker wires an engine and player. Either may be nil, in which case
// every Speak call is a silent no-op. onError receives playback and
// synthesis failures; it may be nil.
func NewSpeaker(engine Engine, player Player, enabled bool, onError func(error)) *Speaker {
	return &Speaker{
		engine:      engine,
		player:      player,
		enabled:     enabled,
		onError:     onError,
		assignments: map[string]Voice{},
	}
}

// Available reports whether this Speaker can actually produce audio.
func (s *Speaker) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && s.engine != nil && s.player != nil
}

// SetEnabled toggles voice output. Disabling cancels any in-flight
// utterance.
func (s *Speaker) SetEnabled(v bool) {
	s.mu.Lock()
	s.enabled = v
	if !v && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
}

// AssignVoices recomputes the interviewer-to-voice mapping. Called whenever
// the interviewer roster changes.
func (s *Speaker) AssignVoices(interviewers []string, preferred []string) {
	if s.engine == nil {
		return
	}
	m := Assignments(s.engine.Voices(), interviewers, preferred)
	s.mu.Lock()
	s.assignments = m
	s.mu.Unlock()
}

// Speak cancels any in-flight utterance and starts a new one using the voice
// bound to speakerName, or the engine default if none is bound. A no-op when
// voice output is disabled, text is empty, or no engine/player is present.
func (s *Speaker) Speak(text, speakerName string) {
	if !s.Available() || text == "" {
		return
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	voice, ok := s.assignments[speakerName]
	s.mu.Unlock()
	if !ok {
		voice = s.engine.DefaultVoice()
	}

	go func() {
		defer func() {
			s.mu.Lock()
			if s.cancel != nil {
				// Only clear if we are still the active utterance.
				select {
				case <-ctx.Done():
				default:
					s.cancel = nil
				}
			}
			s.mu.Unlock()
			cancel()
		}()

		pcm, errCh := s.engine.Stream(ctx, voice, text)
		playErr := make(chan error, 1)
		go func() { playErr <- s.player.Play(ctx, pcm) }()

		for {
			select {
			case err, ok := <-errCh:
				if ok && err != nil && s.onError != nil {
					s.onError(err)
				}
				errCh = nil
			case err := <-playErr:
				if err != nil && ctx.Err() == nil && s.onError != nil {
					s.onError(err)
				}
				return
			case <-ctx.Done():
				<-playErr
				return
			}
		}
	}()
}

// StopAll cancels any in-flight utterance. Safe to call when idle.
func (s *Speaker) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
