package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mirror/internal/export"
	"github.com/sadopc/mirror/internal/state"
)

type Options struct {
	// JournalCountdown is the soft writing time shown in the journal.
	JournalCountdown time.Duration
	// ExportDir receives exports; the home directory when empty.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	mgr         *state.Manager
	notes       chan state.Notification
	unsubscribe func()

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string

	snap state.Snapshot

	mirror    mirrorModel
	tasks     tasksModel
	journal   journalModel
	voice     voiceModel
	dashboard dashboardModel

	help        help.Model
	status      string
	statusStyle lipgloss.Style
}

func NewApp(mgr *state.Manager, opts Options) App {
	h := help.New()
	h.ShowAll = false

	if opts.JournalCountdown <= 0 {
		opts.JournalCountdown = 3 * time.Minute
	}
	if opts.ExportDir == "" {
		opts.ExportDir, _ = os.UserHomeDir()
	}

	// Notifications are dropped rather than block the manager when the UI
	// falls behind.
	notes := make(chan state.Notification, 16)
	unsubscribe := mgr.Subscribe(func(n state.Notification) {
		select {
		case notes <- n:
		default:
		}
	})

	a := App{
		mgr:         mgr,
		notes:       notes,
		unsubscribe: unsubscribe,
		activeView:  viewMirror,
		exportDir:   opts.ExportDir,
		mirror:      newMirrorModel(mgr),
		tasks:       newTasksModel(mgr),
		journal:     newJournalModel(mgr, opts.JournalCountdown),
		voice:       newVoiceModel(mgr),
		dashboard:   newDashboardModel(),
		help:        h,
		statusStyle: mutedStyle,
	}
	a.applySnapshot(mgr.Snapshot(), mgr.Now())
	return a
}

// Close stops the app listening for notifications.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadSnapshot(a.mgr),
		waitForNotification(a.notes),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// applySnapshot hands fresh state to every view and enforces the lock:
// while it holds, only the mirror is reachable.
func (a *App) applySnapshot(snap state.Snapshot, now time.Time) {
	a.snap = snap
	a.mirror.setSnapshot(snap, now)
	a.tasks.setSnapshot(snap)
	a.journal.setSnapshot(snap, now)
	a.voice.setSnapshot(snap, now)
	a.dashboard.setSnapshot(snap, now)

	if snap.Lock.IsLocked && a.activeView != viewMirror {
		a.activeView = viewMirror
		a.exportPicking = false
	}
}

func (a *App) setStatus(text string, style lipgloss.Style) {
	a.status = text
	a.statusStyle = style
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.mirror.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.journal.setSize(a.width, contentHeight)
		a.voice.setSize(a.width, contentHeight)
		a.dashboard.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			if key.Matches(msg, keys.Quit) && msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			if a.snap.Lock.IsLocked {
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewMirror)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewJournal)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewVoice)
		case key.Matches(msg, keys.Tab5):
			return a.switchView(viewDashboard)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		a.applySnapshot(a.mgr.Snapshot(), a.mgr.Now())
		var cmd tea.Cmd
		a.journal, cmd = a.journal.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case snapshotMsg:
		a.applySnapshot(msg.snap, msg.now)
		if msg.err != nil {
			if !announced(msg.err) {
				a.setStatus(errorText(msg.err), errorStyle)
			}
			return a, nil
		}
		return a, msg.then

	case switchViewMsg:
		return a.switchView(viewState(msg))

	case notificationMsg:
		style := successStyle
		if msg.Severity == state.SeverityDestructive {
			style = errorStyle
		}
		a.setStatus(msg.Title+": "+msg.Description, style)
		return a, waitForNotification(a.notes)

	case statusMsg:
		style := mutedStyle
		if msg.isError {
			style = errorStyle
		}
		a.setStatus(msg.text, style)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, successStyle)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	if a.snap.Lock.IsLocked && v != viewMirror {
		remaining := a.snap.Lock.Remaining(a.mgr.Now())
		a.setStatus("Locked. Come back in "+formatRemaining(remaining), errorStyle)
		a.activeView = viewMirror
		return a, nil
	}
	a.activeView = v
	return a, loadSnapshot(a.mgr)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewMirror:
		a.mirror, cmd = a.mirror.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewJournal:
		a.journal, cmd = a.journal.update(msg)
	case viewVoice:
		a.voice, cmd = a.voice.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewMirror:
		return a.mirror.formActive
	case viewTasks:
		return a.tasks.inputActive()
	case viewJournal:
		return a.journal.editing()
	case viewVoice:
		return a.voice.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewMirror:
		content = a.mirror.view()
	case viewTasks:
		content = a.tasks.view()
	case viewJournal:
		content = a.journal.view()
	case viewVoice:
		content = a.voice.view()
	case viewDashboard:
		content = a.dashboard.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		switch {
		case viewState(i) == a.activeView:
			tabs = append(tabs, activeTabStyle.Render(name))
		case a.snap.Lock.IsLocked:
			tabs = append(tabs, inactiveTabStyle.Strikethrough(true).Render(name))
		default:
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("mirror")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = a.statusStyle.Render(" " + a.status)
	}

	lockInfo := ""
	if a.snap.Lock.IsLocked {
		lockInfo = errorStyle.Render(" 🔒 " + formatRemaining(a.snap.Lock.Remaining(a.mgr.Now())))
	} else if a.snap.Streak > 0 {
		lockInfo = successStyle.Render(fmt.Sprintf(" ● streak %d", a.snap.Streak))
	}

	left := footerStyle.Render(helpView)
	right := lockInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	dir := a.exportDir
	return func() tea.Msg {
		snap := a.mgr.Snapshot()
		dateStr := a.mgr.Now().Format("2006-01-02")
		path := filepath.Join(dir, "mirror-export-"+dateStr+format.Extension(false))

		err := export.ToFile(path, nil, func(w io.Writer) error {
			return export.Write(w, format, snap)
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
