package speech

import (
	"context"
	"testing"
	"time"
)

func TestQuietForNeedsAudioFirst(t *testing.T) {
	var p pulse
	if p.quietFor(time.Millisecond) {
		t.Error("quiet before any audio arrived")
	}
}

func TestQuietForAfterWindow(t *testing.T) {
	var p pulse
	p.mark()
	if p.quietFor(time.Second) {
		t.Error("quiet immediately after audio arrived")
	}
	time.Sleep(30 * time.Millisecond)
	if !p.quietFor(10 * time.Millisecond) {
		t.Error("not quiet once the window elapsed")
	}
}

func TestWaitQuietReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var p pulse
	done := make(chan struct{})
	go func() {
		waitQuiet(ctx, &p, time.Hour, time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitQuiet ignored cancellation")
	}
}

func TestWaitQuietAfterIdleWindow(t *testing.T) {
	var p pulse
	p.mark()

	start := time.Now()
	waitQuiet(context.Background(), &p, 30*time.Millisecond, 5*time.Second)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waitQuiet took %v after audio went quiet", elapsed)
	}
}

func TestWaitQuietHonorsDeadline(t *testing.T) {
	var p pulse // audio never arrives, quietFor stays false

	start := time.Now()
	waitQuiet(context.Background(), &p, time.Hour, 120*time.Millisecond)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waitQuiet held the stream open %v past its bound", elapsed)
	}
}
