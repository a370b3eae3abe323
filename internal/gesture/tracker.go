package gesture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Feed is an open connection to a landmark collaborator.
type Feed interface {
	// Next blocks until the next detection frame.
	Next() (Frame, error)
	Close() error
}

// Dialer opens a Feed. The context bounds the feed's whole lifetime.
type Dialer func(ctx context.Context) (Feed, error)

// Options selects and bounds the collaborator.
type Options struct {
	Command      []string
	URL          string
	SetupTimeout time.Duration
}

// Enabled reports whether a collaborator is configured.
func (o Options) Enabled() bool {
	return len(o.Command) > 0 || o.URL != ""
}

// Dialer returns the dialer for the configured collaborator. A URL wins
// over a command.
func (o Options) Dialer() Dialer {
	if o.URL != "" {
		return WebsocketDialer(o.URL)
	}
	return CommandDialer(o.Command)
}

var errSetupTimeout = errors.New("no detection frame before setup timeout")

// Tracker runs one collaborator session. Setup resolves once to Ready or
// Unavailable; a Ready session that later fails reports Unavailable once.
// Nothing is ever retried. Frames are kept in a one-slot mailbox holding
// only the latest detection.
type Tracker struct {
	dial    Dialer
	timeout time.Duration
	log     *zap.SugaredLogger

	status chan Status
	frames chan Frame
	done   chan struct{}

	startOnce sync.Once
	failOnce  sync.Once
	closeOnce sync.Once
	cancel    context.CancelFunc
	started   atomic.Bool
	timedOut  atomic.Bool

	mu   sync.Mutex
	feed Feed
}

// NewTracker returns an idle tracker. timeout bounds the wait for the first
// detection frame.
func NewTracker(dial Dialer, timeout time.Duration, log *zap.SugaredLogger) *Tracker {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Tracker{
		dial:    dial,
		timeout: timeout,
		log:     log,
		status:  make(chan Status, 2),
		frames:  make(chan Frame, 1),
		done:    make(chan struct{}),
	}
}

// Status delivers status changes: Ready and/or Unavailable, each at most once.
func (t *Tracker) Status() <-chan Status { return t.status }

// Frames delivers the latest detection frame.
func (t *Tracker) Frames() <-chan Frame { return t.frames }

// Done is closed when the session has ended for any reason.
func (t *Tracker) Done() <-chan struct{} { return t.done }

// Start launches the session in the background. Later calls do nothing.
func (t *Tracker) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		t.cancel = cancel
		t.started.Store(true)
		go t.run(ctx)
	})
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	feed, err := t.dial(ctx)
	if err != nil {
		t.fail(ctx, err)
		return
	}
	t.mu.Lock()
	t.feed = feed
	t.mu.Unlock()
	defer feed.Close()

	var timer *time.Timer
	if t.timeout > 0 {
		timer = time.AfterFunc(t.timeout, func() {
			t.timedOut.Store(true)
			feed.Close()
		})
	}

	ready := false
	for {
		frame, err := feed.Next()
		if errors.Is(err, ErrBadFrame) {
			t.log.Debugw("skipping malformed detection frame", "err", err)
			continue
		}
		if err != nil {
			if timer != nil {
				timer.Stop()
			}
			if !ready && t.timedOut.Load() {
				err = errSetupTimeout
			}
			t.fail(ctx, err)
			return
		}
		if !ready {
			if timer != nil && !timer.Stop() && t.timedOut.Load() {
				t.fail(ctx, errSetupTimeout)
				return
			}
			ready = true
			t.log.Infow("gesture tracking ready")
			t.status <- Ready
		}
		t.deliver(frame)
	}
}

// deliver replaces whatever frame is waiting with f.
func (t *Tracker) deliver(f Frame) {
	select {
	case t.frames <- f:
		return
	default:
	}
	select {
	case <-t.frames:
	default:
	}
	select {
	case t.frames <- f:
	default:
	}
}

func (t *Tracker) fail(ctx context.Context, err error) {
	if ctx.Err() != nil {
		// Torn down on purpose.
		return
	}
	t.failOnce.Do(func() {
		t.log.Warnw("gesture tracking unavailable", "err", err)
		t.status <- Unavailable
	})
}

// Close ends the session, stops the collaborator and waits for the reader
// to exit.
func (t *Tracker) Close() error {
	var err error
	t.closeOnce.Do(func() {
		if !t.started.Load() {
			return
		}
		t.cancel()
		t.mu.Lock()
		feed := t.feed
		t.mu.Unlock()
		if feed != nil {
			if cerr := feed.Close(); cerr != nil {
				err = fmt.Errorf("closing gesture feed: %w", cerr)
			}
		}
		<-t.done
	})
	return err
}
