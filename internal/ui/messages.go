package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/driftfield/internal/gesture"
)

// frameMsg drives one simulation tick. gen ties it to the loop that
// scheduled it; ticks from a superseded loop are dropped.
type frameMsg struct {
	gen uint64
	at  time.Time
}

type gestureStatusMsg struct {
	status gesture.Status
}

type gestureFrameMsg struct {
	frame gesture.Frame
}

func frameCmd(gen uint64, fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, at: t}
	})
}

func waitForStatus(t *gesture.Tracker) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case s := <-t.Status():
			return gestureStatusMsg{status: s}
		case <-t.Done():
			// A final status may have been sent just before Done closed.
			select {
			case s := <-t.Status():
				return gestureStatusMsg{status: s}
			default:
				return nil
			}
		}
	}
}

func waitForFrame(t *gesture.Tracker) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case f := <-t.Frames():
			return gestureFrameMsg{frame: f}
		case <-t.Done():
			return nil
		}
	}
}
