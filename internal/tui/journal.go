package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/mirror/internal/state"
)

// urgentThreshold is when the soft countdown changes colour.
const urgentThreshold = 30 * time.Second

type journalModel struct {
	mgr    *state.Manager
	width  int
	height int

	entries []state.JournalEntry
	now     time.Time

	editor textarea.Model

	// Soft countdown. It starts with the first keystroke and never blocks
	// saving.
	countdown time.Duration
	started   time.Time
}

func newJournalModel(mgr *state.Manager, countdown time.Duration) journalModel {
	ta := textarea.New()
	ta.Placeholder = "What did your past self do today? Be honest."
	ta.ShowLineNumbers = false
	ta.SetHeight(8)
	return journalModel{
		mgr:       mgr,
		editor:    ta,
		countdown: countdown,
	}
}

func (j *journalModel) setSize(w, h int) {
	j.width = w
	j.height = h
	j.editor.SetWidth(max(20, w-10))
}

func (j *journalModel) setSnapshot(snap state.Snapshot, now time.Time) {
	j.entries = snap.JournalEntries
	j.now = now
}

func (j journalModel) editing() bool {
	return j.editor.Focused()
}

// remaining is the soft countdown at the model's current time.
func (j journalModel) remaining() time.Duration {
	if j.started.IsZero() {
		return j.countdown
	}
	return max(0, j.countdown-j.now.Sub(j.started))
}

func (j journalModel) update(msg tea.Msg) (journalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		j.now = time.Time(msg)
		return j, nil

	case tea.KeyMsg:
		if !j.editor.Focused() {
			if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.New) {
				cmd := j.editor.Focus()
				return j, cmd
			}
			return j, nil
		}

		switch {
		case key.Matches(msg, keys.Back):
			j.editor.Blur()
			return j, nil
		case key.Matches(msg, keys.Save):
			return j.save()
		}

		if j.started.IsZero() {
			j.started = j.now
		}
	}

	var cmd tea.Cmd
	j.editor, cmd = j.editor.Update(msg)
	return j, cmd
}

func (j journalModel) save() (journalModel, tea.Cmd) {
	content := strings.TrimSpace(j.editor.Value())
	if content == "" {
		return j, func() tea.Msg {
			return statusMsg{text: "Nothing to save yet", isError: true}
		}
	}
	j.editor.Reset()
	j.editor.Blur()
	j.started = time.Time{}
	return j, mutate(j.mgr, func() error {
		_, err := j.mgr.AddJournalEntry(content)
		return err
	})
}

func (j journalModel) view() string {
	w := j.width - 4

	title := titleStyle.Render("Shadow Journal")

	left := j.remaining()
	style := countdownStyle
	if left <= urgentThreshold {
		style = countdownUrgentStyle
	}
	clock := style.Render(formatClock(left))
	if j.started.IsZero() {
		clock = mutedStyle.Render(formatClock(left))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", clock)

	var hint string
	switch {
	case j.editor.Focused() && left == 0:
		hint = warningStyle.Render("  Time's up. Finish your thought and press ctrl+s.")
	case j.editor.Focused():
		hint = mutedStyle.Render("  ctrl+s: save  esc: stop writing")
	default:
		hint = mutedStyle.Render("  enter: write")
	}

	rows := []string{header, "", j.editor.View(), hint, "", j.renderRecent()}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (j journalModel) renderRecent() string {
	if len(j.entries) == 0 {
		return mutedStyle.Render("No entries yet. Face your shadows.")
	}

	var rows []string
	rows = append(rows, subtitleStyle.Render(fmt.Sprintf("Recent entries (%d total)", len(j.entries))))
	for i := len(j.entries) - 1; i >= 0 && i >= len(j.entries)-3; i-- {
		e := j.entries[i]
		first, _, _ := strings.Cut(e.Content, "\n")
		if r := []rune(first); len(r) > 60 {
			first = string(r[:60]) + "…"
		}
		when := mutedStyle.Render(humanize.RelTime(e.Date, j.now, "ago", "from now"))
		rows = append(rows, fmt.Sprintf("  %s  %s", highlightStyle.Render(first), when))
	}
	return strings.Join(rows, "\n")
}
