// Package audio captures microphone input through an external recorder
// process so answers can be transcribed.
package audio

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"syscall"
)

// Recorder runs one capture session at a time. The configured command
// (arecord, sox, ffmpeg) writes encoded audio to stdout, which Stop returns
// as a single blob.
type Recorder struct {
	command string

	mu   sync.Mutex
	cmd  *exec.Cmd
	buf  *bytes.Buffer
	done chan error
}

func NewRecorder(command string) *Recorder {
	return &Recorder{command: command}
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Start spawns the recorder process. Errors if a capture is already running
// or the command cannot be started.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return fmt.Errorf("recorder: capture already in progress")
	}
	fields := strings.Fields(r.command)
	if len(fields) == 0 {
		return fmt.Errorf("recorder: empty command")
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	buf := &bytes.Buffer{}
	cmd.Stdout = buf
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("recorder: start %s: %w", fields[0], err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	r.cmd = cmd
	r.buf = buf
	r.done = done
	return nil
}

// Stop ends the capture and returns everything the recorder wrote. The
// process is interrupted so it can finalize its output; a recorder killed by
// the stop signal is not an error.
func (r *Recorder) Stop() ([]byte, error) {
	r.mu.Lock()
	cmd, buf, done := r.cmd, r.buf, r.done
	r.cmd, r.buf, r.done = nil, nil, nil
	r.mu.Unlock()

	if cmd == nil {
		return nil, fmt.Errorf("recorder: no capture in progress")
	}

	if cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGINT)
	}
	err := <-done
	if err != nil && !isSignalExit(err) {
		return nil, fmt.Errorf("recorder: %w", err)
	}

	data := buf.Bytes()
	if len(data) == 0 {
		return nil, fmt.Errorf("recorder: no audio captured")
	}
	return data, nil
}

// Abort cancels an in-progress capture and discards whatever was recorded,
// releasing the microphone. A no-op when idle.
func (r *Recorder) Abort() {
	r.mu.Lock()
	cmd, done := r.cmd, r.done
	r.cmd, r.buf, r.done = nil, nil, nil
	r.mu.Unlock()

	if cmd == nil {
		return
	}
	if cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGINT)
	}
	<-done
}

func isSignalExit(err error) bool {
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}
