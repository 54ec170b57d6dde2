package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mirror/internal/state"
)

type tasksModel struct {
	mgr    *state.Manager
	width  int
	height int

	tasks  []state.Task
	locked bool
	cursor int

	input textinput.Model
}

func newTasksModel(mgr *state.Manager) tasksModel {
	ti := textinput.New()
	ti.Placeholder = "What will your future self do today?"
	ti.CharLimit = state.MaxTaskLength
	ti.Prompt = "+ "
	return tasksModel{
		mgr:   mgr,
		input: ti,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.input.Width = max(10, w-12)
}

func (t *tasksModel) setSnapshot(snap state.Snapshot) {
	t.tasks = snap.Tasks
	t.locked = snap.TasksLocked
	if t.cursor >= len(t.tasks) {
		t.cursor = max(0, len(t.tasks)-1)
	}
	if t.locked && t.input.Focused() {
		t.input.Blur()
	}
}

func (t tasksModel) inputActive() bool {
	return t.input.Focused()
}

// canAdd mirrors the manager's admission rules so the input is only offered
// when an add could succeed.
func (t tasksModel) canAdd() bool {
	return !t.locked && len(t.tasks) < state.MaxTasks
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if t.input.Focused() {
			var cmd tea.Cmd
			t.input, cmd = t.input.Update(msg)
			return t, cmd
		}
		return t, nil
	}

	if t.input.Focused() {
		return t.updateInput(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if t.cursor < len(t.tasks)-1 {
			t.cursor++
		}
	case key.Matches(keyMsg, keys.New), key.Matches(keyMsg, keys.Enter):
		if !t.canAdd() {
			// The manager rejects the add and announces why.
			return t, mutate(t.mgr, func() error {
				_, err := t.mgr.AddTask("")
				return err
			})
		}
		t.input.Reset()
		cmd := t.input.Focus()
		return t, cmd
	case key.Matches(keyMsg, keys.Toggle):
		if len(t.tasks) > 0 {
			id := t.tasks[t.cursor].ID
			return t, mutate(t.mgr, func() error { return t.mgr.CompleteTask(id) })
		}
	case key.Matches(keyMsg, keys.Delete):
		if len(t.tasks) > 0 {
			id := t.tasks[t.cursor].ID
			return t, mutate(t.mgr, func() error { return t.mgr.RemoveTask(id) })
		}
	case key.Matches(keyMsg, keys.LockIn):
		return t, t.lockIn()
	}
	return t, nil
}

func (t tasksModel) updateInput(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		t.input.Blur()
		return t, nil
	case key.Matches(msg, keys.Enter):
		text := strings.TrimSpace(t.input.Value())
		if text == "" {
			t.input.Blur()
			return t, t.lockIn()
		}
		t.input.Reset()
		if len(t.tasks)+1 >= state.MaxTasks {
			t.input.Blur()
		}
		return t, mutate(t.mgr, func() error {
			_, err := t.mgr.AddTask(text)
			return err
		})
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// lockIn commits today's list and moves on to the journal.
func (t tasksModel) lockIn() tea.Cmd {
	if len(t.tasks) == 0 {
		return func() tea.Msg {
			return statusMsg{text: "Add at least one non-negotiable first", isError: true}
		}
	}
	return mutateThen(t.mgr, t.mgr.LockTasks, switchTo(viewJournal))
}

func (t tasksModel) view() string {
	w := t.width - 4

	completed, total := 0, len(t.tasks)
	for _, task := range t.tasks {
		if task.Completed {
			completed++
		}
	}

	title := titleStyle.Render("Today's Non-Negotiables")
	counter := mutedStyle.Render(fmt.Sprintf("%d/%d", completed, total))
	if t.locked {
		counter += "  " + warningStyle.Render("locked in")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", counter)

	var rows []string
	rows = append(rows, header, "")

	if len(t.tasks) == 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("No non-negotiables yet. Press n to add up to %d.", state.MaxTasks)))
	}

	for i, task := range t.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor && !t.input.Focused() {
			cursor = "> "
			style = selectedItemStyle
		}
		check := mutedStyle.Render("[ ]")
		text := style.Render(task.Text)
		if task.Completed {
			check = successStyle.Render("[✓]")
			text = mutedStyle.Strikethrough(true).Render(task.Text)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", style.Render(cursor), check, text))
	}

	rows = append(rows, "")
	switch {
	case t.input.Focused():
		rows = append(rows, t.input.View())
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d/%d  enter: add  enter on empty: lock in  esc: done",
			len([]rune(t.input.Value())), state.MaxTaskLength)))
	case t.locked:
		rows = append(rows, mutedStyle.Render("  space: done/undo  3: journal"))
	case t.canAdd():
		rows = append(rows, mutedStyle.Render("  n: new  space: done/undo  d: remove  L: lock in"))
	default:
		rows = append(rows, mutedStyle.Render("  space: done/undo  d: remove  L: lock in"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
