package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

// Completion policy for a synthesis stream: the utterance is considered
// finished once audio has been arriving and then goes quiet for idleWindow,
// bounded by maxSynthesis so a stalled connection cannot hang the speaker.
const (
	idleWindow   = 400 * time.Millisecond
	quietPoll    = 50 * time.Millisecond
	maxSynthesis = 30 * time.Second
)

// pulse records when audio last arrived, readable from another goroutine.
type pulse struct {
	lastUnixNano int64
	seen         int32
}

func (p *pulse) mark() {
	atomic.StoreInt64(&p.lastUnixNano, time.Now().UnixNano())
	atomic.StoreInt32(&p.seen, 1)
}

// quietFor reports whether audio has arrived at least once and then stayed
// absent for the given window.
func (p *pulse) quietFor(window time.Duration) bool {
	if atomic.LoadInt32(&p.seen) == 0 {
		return false
	}
	last := time.Unix(0, atomic.LoadInt64(&p.lastUnixNano))
	return time.Since(last) > window
}

// waitQuiet blocks until the stream satisfies the completion policy or ctx
// is cancelled.
func waitQuiet(ctx context.Context, p *pulse, window, maxWait time.Duration) {
	ticker := time.NewTicker(quietPoll)
	defer ticker.Stop()
	deadline := time.Now().Add(maxWait)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.quietFor(window) || time.Now().After(deadline) {
				return
			}
		}
	}
}

// auraVoices is the Aura catalog exposed to the assignment policy. Model IDs
// follow Deepgram's aura-<name>-en naming.
var auraVoices = []Voice{
	{Name: "Asteria", Model: "aura-asteria-en", Lang: "en-US"},
	{Name: "Luna", Model: "aura-luna-en", Lang: "en-US"},
	{Name: "Stella", Model: "aura-stella-en", Lang: "en-US"},
	{Name: "Athena", Model: "aura-athena-en", Lang: "en-GB"},
	{Name: "Hera", Model: "aura-hera-en", Lang: "en-US"},
	{Name: "Orion", Model: "aura-orion-en", Lang: "en-US"},
	{Name: "Arcas", Model: "aura-arcas-en", Lang: "en-US"},
	{Name: "Perseus", Model: "aura-perseus-en", Lang: "en-US"},
	{Name: "Angus", Model: "aura-angus-en", Lang: "en-IE"},
	{Name: "Orpheus", Model: "aura-orpheus-en", Lang: "en-US"},
	{Name: "Helios", Model: "aura-helios-en", Lang: "en-GB"},
	{Name: "Zeus", Model: "aura-zeus-en", Lang: "en-US"},
}

// DeepgramEngine streams synthesized speech over Deepgram's speak websocket
// as 48kHz s16le mono PCM.
type DeepgramEngine struct {
	apiKey     string
	sampleRate int
	encoding   string
}

func NewDeepgramEngine(apiKey string) *DeepgramEngine {
	return &DeepgramEngine{apiKey: apiKey, sampleRate: 48000, encoding: "linear16"}
}

func (d *DeepgramEngine) Voices() []Voice { return auraVoices }

func (d *DeepgramEngine) DefaultVoice() Voice { return auraVoices[0] }

// Stream synthesizes text and delivers PCM chunks until the completion
// policy declares the utterance finished or ctx is cancelled.
func (d *DeepgramEngine) Stream(ctx context.Context, voice Voice, text string) (<-chan []byte, <-chan error) {
	pcmCh := make(chan []byte, 4096)
	errCh := make(chan error, 1)

	model := voice.Model
	if model == "" {
		model = d.DefaultVoice().Model
	}

	go func() {
		defer close(pcmCh)
		defer close(errCh)

		if d.apiKey == "" {
			errCh <- fmt.Errorf("deepgram: API key missing")
			return
		}
		if strings.TrimSpace(text) == "" {
			return
		}

		var activity pulse
		cb := &speakCallback{onBinary: func(data []byte) error {
			if len(data) == 0 {
				return nil
			}
			activity.mark()
			b := make([]byte, len(data))
			copy(b, data)
			select {
			case pcmCh <- b:
			case <-ctx.Done():
			}
			return nil
		}}

		options := &clientinterfaces.WSSpeakOptions{
			Model:      model,
			Encoding:   d.encoding,
			SampleRate: d.sampleRate,
		}
		dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
		if err != nil {
			errCh <- fmt.Errorf("deepgram: websocket client: %w", err)
			return
		}

		var stopOnce sync.Once
		stopClient := func() { stopOnce.Do(func() { dg.Stop() }) }
		defer stopClient()

		if ok := dg.Connect(); !ok {
			errCh <- fmt.Errorf("deepgram: connect failed")
			return
		}

		// Tear the connection down as soon as the caller cancels, so the
		// Binary callback stops feeding pcmCh.
		watchDone := make(chan struct{})
		defer close(watchDone)
		go func() {
			select {
			case <-ctx.Done():
				stopClient()
			case <-watchDone:
			}
		}()

		if err := dg.SpeakWithText(text); err != nil {
			errCh <- fmt.Errorf("deepgram: send text: %w", err)
			return
		}
		if err := dg.Flush(); err != nil {
			errCh <- fmt.Errorf("deepgram: flush: %w", err)
			return
		}

		waitQuiet(ctx, &activity, idleWindow, maxSynthesis)
	}()

	return pcmCh, errCh
}

type speakCallback struct{ onBinary func([]byte) error }

func (s *speakCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (s *speakCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (s *speakCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (s *speakCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (s *speakCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (s *speakCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (s *speakCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (s *speakCallback) UnhandledEvent([]byte) error                    { return nil }
func (s *speakCallback) Binary(byMsg []byte) error {
	if s.onBinary != nil {
		return s.onBinary(byMsg)
	}
	return nil
}
