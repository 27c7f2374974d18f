package speech

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ExecPlayer pipes raw PCM into an external player process (aplay, sox,
// ffplay). The command line comes from config and is split on whitespace;
// the stream arrives on the child's stdin.
type ExecPlayer struct {
	command string
}

func NewExecPlayer(command string) *ExecPlayer {
	return &ExecPlayer{command: command}
}

// Play spawns the player process and copies PCM chunks into it until the
// channel closes or ctx is cancelled. Cancellation kills the child.
func (p *ExecPlayer) Play(ctx context.Context, pcm <-chan []byte) error {
	fields := strings.Fields(p.command)
	if len(fields) == 0 {
		return fmt.Errorf("player: empty command")
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("player: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("player: start %s: %w", fields[0], err)
	}

	writeErr := p.copyStream(ctx, stdin, pcm)
	stdin.Close()

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if writeErr != nil {
		return writeErr
	}
	if waitErr != nil {
		return fmt.Errorf("player: %s: %w", fields[0], waitErr)
	}
	return nil
}

func (p *ExecPlayer) copyStream(ctx context.Context, w io.Writer, pcm <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-pcm:
			if !ok {
				return nil
			}
			if _, err := w.Write(chunk); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("player: write: %w", err)
			}
		}
	}
}
