package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/mirror/internal/state"
)

type voiceModel struct {
	mgr    *state.Manager
	width  int
	height int

	notes []state.VoiceNote
	now   time.Time

	formActive bool
	form       *huh.Form
	formRef    *string
}

func newVoiceModel(mgr *state.Manager) voiceModel {
	ref := ""
	return voiceModel{
		mgr:     mgr,
		formRef: &ref,
	}
}

func (v *voiceModel) setSize(w, h int) {
	v.width = w
	v.height = h
}

func (v *voiceModel) setSnapshot(snap state.Snapshot, now time.Time) {
	v.notes = snap.VoiceNotes
	v.now = now
}

func (v voiceModel) update(msg tea.Msg) (voiceModel, tea.Cmd) {
	if v.formActive && v.form != nil {
		return v.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.New) || key.Matches(msg, keys.Enter) {
			return v.showForm()
		}
	}
	return v, nil
}

func (v voiceModel) showForm() (voiceModel, tea.Cmd) {
	*v.formRef = ""

	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Message to your future self").
				Description("Path or URL of the recording").
				Placeholder("~/recordings/today.ogg").
				Value(v.formRef).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a recording is required")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	v.formActive = true
	return v, v.form.Init()
}

func (v voiceModel) updateForm(msg tea.Msg) (voiceModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			v.formActive = false
			v.form = nil
			return v, nil
		}
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	if v.form.State == huh.StateCompleted {
		v.formActive = false
		v.form = nil
		ref := strings.TrimSpace(*v.formRef)
		return v, mutate(v.mgr, func() error {
			_, err := v.mgr.AddVoiceNote(ref)
			return err
		})
	}

	return v, cmd
}

func (v voiceModel) view() string {
	w := v.width - 4

	if v.formActive && v.form != nil {
		title := titleStyle.Render("New Voice Note")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", v.form.View()),
		)
	}

	title := titleStyle.Render("Voice Notes")

	if len(v.notes) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No voice notes yet. Press n to save one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	for i := len(v.notes) - 1; i >= 0; i-- {
		n := v.notes[i]
		when := humanize.RelTime(n.Date, v.now, "ago", "from now")
		rows = append(rows, fmt.Sprintf("  %s %s %s",
			accentStyle.Render("●"),
			mutedStyle.Render(fmt.Sprintf("%-16s", when)),
			normalItemStyle.Render(n.AudioURL),
		))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new voice note"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
