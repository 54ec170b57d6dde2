package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/mirror/internal/state"
)

// viewState represents the currently active view.
type viewState int

const (
	viewMirror viewState = iota
	viewTasks
	viewJournal
	viewVoice
	viewDashboard
)

var viewNames = []string{"Mirror", "Non-Negotiables", "Journal", "Voice Notes", "Dashboard"}

// --- Messages ---

// snapshotMsg carries fresh manager state after a load or a mutation.
type snapshotMsg struct {
	snap state.Snapshot
	now  time.Time
	err  error
	// then runs only when the mutation succeeded.
	then tea.Cmd
}

type switchViewMsg viewState

type notificationMsg state.Notification

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Commands ---

// mutate runs fn against the manager off the UI goroutine and reports the
// state it left behind.
func mutate(mgr *state.Manager, fn func() error) tea.Cmd {
	return mutateThen(mgr, fn, nil)
}

func mutateThen(mgr *state.Manager, fn func() error, then tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		err := fn()
		return snapshotMsg{snap: mgr.Snapshot(), now: mgr.Now(), err: err, then: then}
	}
}

func loadSnapshot(mgr *state.Manager) tea.Cmd {
	return mutate(mgr, func() error { return nil })
}

func switchTo(v viewState) tea.Cmd {
	return func() tea.Msg { return switchViewMsg(v) }
}

// waitForNotification blocks until the manager publishes something.
func waitForNotification(ch <-chan state.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

// --- Helpers ---

// announced reports whether err was already surfaced as a notification.
func announced(err error) bool {
	return errors.Is(err, state.ErrMaxTasks) || errors.Is(err, state.ErrTasksLocked)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, state.ErrEmptyTask):
		return "Write the non-negotiable first"
	case errors.Is(err, state.ErrTaskTooLong):
		return fmt.Sprintf("Keep it under %d characters", state.MaxTaskLength)
	}
	return "Error: " + err.Error()
}

// formatRemaining renders a lock countdown as "Hh Mm Ss".
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
