package gesture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// maxLineBytes bounds one JSON detection frame on the process's stdout.
const maxLineBytes = 1 << 20

// closeGrace is how long Close waits for the reader to see EOF after the
// kill before it closes the pipe itself.
const closeGrace = 2 * time.Second

// commandFeed runs a landmark extractor subprocess that prints one JSON
// detection frame per line on stdout. The process owns the camera, so
// killing it releases the camera.
//
// A single reader goroutine owns the pipe. It reaps the process only after
// it has stopped reading, and readErr, waitErr and killed are written
// before done closes.
type commandFeed struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc

	lines chan []byte
	done  chan struct{}

	readErr error
	waitErr error
	killed  bool

	closeOnce sync.Once
	closeErr  error
}

// CommandDialer starts argv as the landmark collaborator.
func CommandDialer(argv []string) Dialer {
	return func(ctx context.Context) (Feed, error) {
		if len(argv) == 0 {
			return nil, fmt.Errorf("gesture command is empty")
		}
		bin, err := exec.LookPath(argv[0])
		if err != nil {
			return nil, fmt.Errorf("%s not found", argv[0])
		}

		ctx, cancel := context.WithCancel(ctx)
		cmd := exec.CommandContext(ctx, bin, argv[1:]...)
		cmd.Stdin = nil

		stdout, err := cmd.StdoutPipe()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("gesture stdout pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			cancel()
			return nil, fmt.Errorf("starting gesture command: %w", err)
		}

		f := &commandFeed{
			cmd:    cmd,
			stdout: stdout,
			ctx:    ctx,
			cancel: cancel,
			lines:  make(chan []byte),
			done:   make(chan struct{}),
		}
		go f.read()
		return f, nil
	}
}

func (f *commandFeed) read() {
	defer close(f.done)
	defer close(f.lines)

	sc := bufio.NewScanner(f.stdout)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
scan:
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		select {
		case f.lines <- append([]byte(nil), line...):
		case <-f.ctx.Done():
			break scan
		}
	}
	f.readErr = sc.Err()
	f.waitErr = f.cmd.Wait()
	f.killed = f.ctx.Err() != nil
}

// Next blocks until the next non-empty line and decodes it. Once the
// process is gone it reports why: a read error, an unexpected exit, or
// io.EOF.
func (f *commandFeed) Next() (Frame, error) {
	line, ok := <-f.lines
	if !ok {
		if f.readErr != nil && !f.killed {
			return Frame{}, fmt.Errorf("reading gesture command: %w", f.readErr)
		}
		if err := f.exitErr(); err != nil {
			return Frame{}, err
		}
		return Frame{}, io.EOF
	}
	return ParseFrame(line)
}

// exitErr is the process's exit error unless we killed it.
func (f *commandFeed) exitErr() error {
	if f.waitErr == nil {
		return nil
	}
	var exit *exec.ExitError
	if f.killed && errors.As(f.waitErr, &exit) {
		return nil
	}
	return fmt.Errorf("gesture command exited: %w", f.waitErr)
}

// Close kills the process, lets the reader drain and reaps it.
func (f *commandFeed) Close() error {
	f.closeOnce.Do(func() {
		f.cancel()
		select {
		case <-f.done:
		case <-time.After(closeGrace):
			// a child that inherited stdout can keep the pipe open
			f.stdout.Close()
			<-f.done
		}
		f.closeErr = f.exitErr()
	})
	return f.closeErr
}
