package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mirror/internal/state"
)

type mirrorModel struct {
	mgr    *state.Manager
	width  int
	height int

	lock   state.LockState
	streak int
	now    time.Time

	formActive bool
	form       *huh.Form

	// Form field pointer (survives value copies)
	formHours *string
}

func newMirrorModel(mgr *state.Manager) mirrorModel {
	hours := ""
	return mirrorModel{
		mgr:       mgr,
		formHours: &hours,
	}
}

func (m *mirrorModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *mirrorModel) setSnapshot(snap state.Snapshot, now time.Time) {
	m.lock = snap.Lock
	m.streak = snap.Streak
	m.now = now
}

func (m mirrorModel) update(msg tea.Msg) (mirrorModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.lock.IsLocked {
		if key.Matches(keyMsg, keys.Reset) {
			return m, m.mgrCmd(m.mgr.ResetLock)
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Unlock):
		return m, mutateThen(m.mgr, m.mgr.UnlockApp, switchTo(viewTasks))
	case key.Matches(keyMsg, keys.Lock):
		return m.showLockForm()
	}
	return m, nil
}

func (m mirrorModel) mgrCmd(fn func() error) tea.Cmd {
	return mutate(m.mgr, fn)
}

func (m mirrorModel) showLockForm() (mirrorModel, tea.Cmd) {
	*m.formHours = strconv.FormatFloat(m.mgr.DefaultLockDuration().Hours(), 'f', -1, 64)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Lock for how many hours?").
				Description("You won't be able to use the app until then.").
				Value(m.formHours).
				Validate(validateHours),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validateHours(s string) error {
	h, err := parseHours(s)
	if err != nil {
		return err
	}
	if h < state.MinLockHours || h > state.MaxLockHours {
		return fmt.Errorf("between %d and %d hours", state.MinLockHours, state.MaxLockHours)
	}
	return nil
}

func parseHours(s string) (float64, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || h <= 0 {
		return 0, fmt.Errorf("enter a positive number of hours")
	}
	return h, nil
}

func (m mirrorModel) updateForm(msg tea.Msg) (mirrorModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		hours, err := parseHours(*m.formHours)
		if err != nil {
			return m, nil
		}
		d := time.Duration(hours * float64(time.Hour))
		return m, m.mgrCmd(func() error { return m.mgr.LockApp(d) })
	}

	return m, cmd
}

func (m mirrorModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Not showing up")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	title := titleStyle.Render("The Mirror Room")

	if m.lock.IsLocked {
		remaining := m.lock.Remaining(m.now)
		until := ""
		if m.lock.LockUntil != nil {
			until = m.lock.LockUntil.Local().Format("Mon 15:04")
		}
		content := lipgloss.JoinVertical(lipgloss.Center,
			title,
			"",
			subtitleStyle.Render("You chose not to show up today."),
			"",
			countdownLockedStyle.Width(w-6).Render(formatRemaining(remaining)),
			mutedStyle.Render("Locked until "+until),
			"",
			notShowUpStyle.Render("r")+normalItemStyle.Render("  I want to change myself"),
		)
		return panelStyle.Width(w).Render(content)
	}

	streak := mutedStyle.Render(fmt.Sprintf("Streak: %d", m.streak))
	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		questionStyle.Width(w-6).Render("Who are you showing up as today?"),
		"",
		showUpStyle.Render("u")+normalItemStyle.Render("  My future self"),
		notShowUpStyle.Render("l")+normalItemStyle.Render("  My past self (lock the app)"),
		"",
		streak,
	)
	return panelStyle.Width(w).Render(content)
}
