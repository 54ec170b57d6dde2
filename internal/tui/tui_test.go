package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/mirror/internal/state"
	"github.com/sadopc/mirror/internal/store"
)

var testStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T) (*state.Manager, *testClock) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := &testClock{now: testStart}
	return state.New(s, state.WithClock(clock.Now)), clock
}

func newTestApp(t *testing.T) (App, *state.Manager, *testClock) {
	t.Helper()
	mgr, clock := newTestManager(t)
	app := NewApp(mgr, Options{JournalCountdown: time.Minute, ExportDir: t.TempDir()})
	t.Cleanup(app.Close)
	return app, mgr, clock
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	saveKey  = tea.KeyMsg{Type: tea.KeyCtrlS}
)

// send feeds msg to the app and returns the updated app and command.
func send(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app, cmd
}

// drive runs cmd and feeds its message back into the app, following
// chained commands until none is left.
func drive(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return a
		}
		a, cmd = send(t, a, msg)
	}
	return a
}

func mustSnapshot(t *testing.T, cmd tea.Cmd) snapshotMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	raw := cmd()
	msg, ok := raw.(snapshotMsg)
	if !ok {
		t.Fatalf("expected snapshotMsg, got %T", raw)
	}
	return msg
}

// ============================================================
// Helpers
// ============================================================

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0h 00m 00s"},
		{-time.Second, "0h 00m 00s"},
		{90 * time.Second, "0h 01m 30s"},
		{12 * time.Hour, "12h 00m 00s"},
		{11*time.Hour + 59*time.Minute + 59*time.Second, "11h 59m 59s"},
	}
	for _, tt := range tests {
		if got := formatRemaining(tt.d); got != tt.want {
			t.Errorf("formatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
		{3 * time.Minute, "03:00"},
		{29 * time.Second, "00:29"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.d); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestAnnounced(t *testing.T) {
	if !announced(state.ErrMaxTasks) || !announced(state.ErrTasksLocked) {
		t.Error("business rejections are announced by the manager")
	}
	if announced(state.ErrEmptyTask) || announced(errors.New("disk full")) {
		t.Error("other errors are not announced")
	}
}

func TestErrorText(t *testing.T) {
	if got := errorText(state.ErrTaskTooLong); !strings.Contains(got, "50") {
		t.Errorf("too-long text should mention the limit, got %q", got)
	}
	if got := errorText(errors.New("disk full")); got != "Error: disk full" {
		t.Errorf("got %q", got)
	}
}

func TestParseHours(t *testing.T) {
	if h, err := parseHours(" 1.5 "); err != nil || h != 1.5 {
		t.Errorf("parseHours(1.5) = %v, %v", h, err)
	}
	for _, s := range []string{"", "abc", "0", "-2"} {
		if _, err := parseHours(s); err == nil {
			t.Errorf("parseHours(%q) should fail", s)
		}
	}
	for _, s := range []string{"0.5", "72.5", "200"} {
		if err := validateHours(s); err == nil {
			t.Errorf("validateHours(%q) should fail", s)
		}
	}
	for _, s := range []string{"1", "12", "72"} {
		if err := validateHours(s); err != nil {
			t.Errorf("validateHours(%q): %v", s, err)
		}
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	if viewNames[viewMirror] != "Mirror" || viewNames[viewDashboard] != "Dashboard" {
		t.Errorf("unexpected view names: %v", viewNames)
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.activeView != viewMirror {
		t.Error("app should open on the mirror")
	}
	if app.Init() == nil {
		t.Error("Init should return commands")
	}
	if app.View() != "Loading..." {
		t.Error("expected loading view before the first resize")
	}
}

func TestAppRendersAfterResize(t *testing.T) {
	app, _, _ := newTestApp(t)
	app, _ = send(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := app.View()
	for _, want := range []string{"mirror", "The Mirror Room", "Who are you showing up as today?", "Dashboard"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppNotificationsReachFooter(t *testing.T) {
	app, mgr, _ := newTestApp(t)
	app, _ = send(t, app, tea.WindowSizeMsg{Width: 160, Height: 40})

	if err := mgr.UnlockApp(); err != nil {
		t.Fatal(err)
	}
	msg := waitForNotification(app.notes)()
	n, ok := msg.(notificationMsg)
	if !ok {
		t.Fatalf("expected notificationMsg, got %T", msg)
	}
	if n.Kind != state.KindUnlocked {
		t.Errorf("kind = %s", n.Kind)
	}

	app, cmd := send(t, app, msg)
	if cmd == nil {
		t.Error("app should keep waiting for notifications")
	}
	if !strings.Contains(app.status, "App Unlocked") {
		t.Errorf("status = %q", app.status)
	}
}

func TestAppCloseUnsubscribes(t *testing.T) {
	mgr, _ := newTestManager(t)
	app := NewApp(mgr, Options{})
	app.Close()

	if err := mgr.ResetStreak(); err != nil {
		t.Fatal(err)
	}
	if len(app.notes) != 0 {
		t.Error("closed app should not receive notifications")
	}
}

func TestAppSwitchViews(t *testing.T) {
	app, _, _ := newTestApp(t)

	app, _ = send(t, app, runes("5"))
	if app.activeView != viewDashboard {
		t.Errorf("expected dashboard, got %d", app.activeView)
	}
	app, _ = send(t, app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activeView != viewMirror {
		t.Errorf("tab should wrap to the mirror, got %d", app.activeView)
	}
}

func TestAppLockGatesViews(t *testing.T) {
	app, mgr, clock := newTestApp(t)

	if err := mgr.LockApp(time.Hour); err != nil {
		t.Fatal(err)
	}
	app.activeView = viewJournal
	app, _ = send(t, app, tickMsg(clock.Now()))
	if app.activeView != viewMirror {
		t.Fatal("a lock should force the mirror")
	}

	app, _ = send(t, app, runes("2"))
	if app.activeView != viewMirror {
		t.Error("switching away from the mirror should be refused while locked")
	}
	if !strings.Contains(app.status, "Locked") {
		t.Errorf("status = %q", app.status)
	}

	app, _ = send(t, app, runes("e"))
	if app.exportPicking {
		t.Error("export should be unavailable while locked")
	}

	clock.Advance(time.Hour)
	app, _ = send(t, app, tickMsg(clock.Now()))
	app, _ = send(t, app, runes("2"))
	if app.activeView != viewTasks {
		t.Error("expired lock should release the gate")
	}
}

func TestAppSnapshotErrorStatus(t *testing.T) {
	app, mgr, _ := newTestApp(t)

	app, cmd := send(t, app, snapshotMsg{snap: mgr.Snapshot(), err: state.ErrTaskTooLong, then: switchTo(viewJournal)})
	if cmd != nil {
		t.Error("follow-up should not run after an error")
	}
	if !strings.Contains(app.status, "under 50") {
		t.Errorf("status = %q", app.status)
	}

	app.status = ""
	app, _ = send(t, app, snapshotMsg{snap: mgr.Snapshot(), err: state.ErrMaxTasks})
	if app.status != "" {
		t.Error("announced errors should leave the status to the notification")
	}
}

func TestAppExport(t *testing.T) {
	app, mgr, _ := newTestApp(t)
	if _, err := mgr.AddJournalEntry("hello"); err != nil {
		t.Fatal(err)
	}

	app, _ = send(t, app, runes("e"))
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	app, _ = send(t, app, runes("j"))
	app, cmd := send(t, app, enterKey)

	msg := cmd()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if filepath.Ext(done.path) != ".json" {
		t.Errorf("path = %s", done.path)
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Error("export missing journal entry")
	}

	app, _ = send(t, app, msg)
	if !strings.Contains(app.status, "Exported to") {
		t.Errorf("status = %q", app.status)
	}
}

// ============================================================
// Mirror
// ============================================================

func TestMirrorShowUp(t *testing.T) {
	app, mgr, _ := newTestApp(t)

	app, cmd := send(t, app, runes("u"))
	app = drive(t, app, cmd)

	if mgr.Streak() != 1 {
		t.Errorf("streak = %d, want 1", mgr.Streak())
	}
	if app.activeView != viewTasks {
		t.Errorf("showing up should lead to the non-negotiables, got %d", app.activeView)
	}
}

func TestMirrorLockForm(t *testing.T) {
	app, _, _ := newTestApp(t)

	app, _ = send(t, app, runes("l"))
	if !app.mirror.formActive {
		t.Fatal("l should open the lock form")
	}
	if *app.mirror.formHours != "12" {
		t.Errorf("form should default to 12 hours, got %q", *app.mirror.formHours)
	}
	if !app.isFormActive() {
		t.Error("app should route keys to the form")
	}

	app, _ = send(t, app, escKey)
	if app.mirror.formActive {
		t.Error("esc should cancel the form")
	}
}

func TestMirrorResetLock(t *testing.T) {
	app, mgr, clock := newTestApp(t)
	if err := mgr.LockApp(2 * time.Hour); err != nil {
		t.Fatal(err)
	}
	app, _ = send(t, app, tickMsg(clock.Now()))
	app, _ = send(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})

	if !strings.Contains(app.View(), "2h 00m 00s") {
		t.Error("locked mirror should show the remaining time")
	}

	app, cmd := send(t, app, runes("u"))
	if cmd != nil {
		t.Error("showing up is not offered while locked")
	}

	app, cmd = send(t, app, runes("r"))
	msg := mustSnapshot(t, cmd)
	if msg.snap.Lock.IsLocked {
		t.Error("r should reset the lock")
	}
	if msg.snap.Streak != 0 {
		t.Error("reset should not count toward the streak")
	}
}

// ============================================================
// Non-negotiables
// ============================================================

func typeInto(t *testing.T, m tasksModel, s string) tasksModel {
	t.Helper()
	m, _ = m.update(runes(s))
	return m
}

func TestTasksAddAndLockIn(t *testing.T) {
	mgr, _ := newTestManager(t)
	m := newTasksModel(mgr)
	m.setSize(80, 30)

	m, _ = m.update(runes("n"))
	if !m.inputActive() {
		t.Fatal("n should focus the input")
	}
	m = typeInto(t, m, "Run 5k")

	m, cmd := m.update(enterKey)
	msg := mustSnapshot(t, cmd)
	if len(msg.snap.Tasks) != 1 || msg.snap.Tasks[0].Text != "Run 5k" {
		t.Fatalf("tasks = %+v", msg.snap.Tasks)
	}
	m.setSnapshot(msg.snap)
	if m.input.Value() != "" {
		t.Error("input should clear after adding")
	}

	// Enter on an empty input locks the list in.
	m, cmd = m.update(enterKey)
	msg = mustSnapshot(t, cmd)
	if !msg.snap.TasksLocked {
		t.Error("expected tasks locked in")
	}
	if m.inputActive() {
		t.Error("input should blur after locking in")
	}
	if next, ok := msg.then().(switchViewMsg); !ok || viewState(next) != viewJournal {
		t.Error("locking in should move on to the journal")
	}
}

func TestTasksLockInNeedsATask(t *testing.T) {
	mgr, _ := newTestManager(t)
	m := newTasksModel(mgr)

	_, cmd := m.update(runes("L"))
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Error("locking in an empty list should be refused")
	}
	if mgr.TasksLocked() {
		t.Error("manager should not be locked")
	}
}

func TestTasksInputCharLimit(t *testing.T) {
	mgr, _ := newTestManager(t)
	m := newTasksModel(mgr)
	m, _ = m.update(runes("n"))
	m = typeInto(t, m, strings.Repeat("x", 60))

	if got := len(m.input.Value()); got != state.MaxTaskLength {
		t.Errorf("input length = %d, want %d", got, state.MaxTaskLength)
	}
}

func TestTasksToggleAndRemove(t *testing.T) {
	mgr, _ := newTestManager(t)
	for _, text := range []string{"a", "b"} {
		if _, err := mgr.AddTask(text); err != nil {
			t.Fatal(err)
		}
	}
	m := newTasksModel(mgr)
	m.setSnapshot(mgr.Snapshot())

	m, _ = m.update(runes("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d", m.cursor)
	}

	_, cmd := m.update(spaceKey)
	msg := mustSnapshot(t, cmd)
	if !msg.snap.Tasks[1].Completed || msg.snap.Tasks[0].Completed {
		t.Errorf("space should toggle the selected task: %+v", msg.snap.Tasks)
	}
	m.setSnapshot(msg.snap)

	_, cmd = m.update(runes("d"))
	msg = mustSnapshot(t, cmd)
	if len(msg.snap.Tasks) != 1 || msg.snap.Tasks[0].Text != "a" {
		t.Errorf("d should remove the selected task: %+v", msg.snap.Tasks)
	}
	m.setSnapshot(msg.snap)
	if m.cursor != 0 {
		t.Error("cursor should clamp after removal")
	}
}

func TestTasksAddWhenLockedIsAnnounced(t *testing.T) {
	mgr, _ := newTestManager(t)
	if _, err := mgr.AddTask("a"); err != nil {
		t.Fatal(err)
	}
	if err := mgr.LockTasks(); err != nil {
		t.Fatal(err)
	}

	var got []state.Kind
	unsubscribe := mgr.Subscribe(func(n state.Notification) { got = append(got, n.Kind) })
	defer unsubscribe()

	m := newTasksModel(mgr)
	m.setSnapshot(mgr.Snapshot())
	m, cmd := m.update(runes("n"))
	if m.inputActive() {
		t.Error("input should stay closed when tasks are locked")
	}
	msg := mustSnapshot(t, cmd)
	if !errors.Is(msg.err, state.ErrTasksLocked) {
		t.Errorf("err = %v", msg.err)
	}
	if len(got) != 1 || got[0] != state.KindTasksLocked {
		t.Errorf("notifications = %v", got)
	}
}

func TestTasksView(t *testing.T) {
	mgr, _ := newTestManager(t)
	m := newTasksModel(mgr)
	m.setSize(100, 30)

	if !strings.Contains(m.view(), "No non-negotiables yet") {
		t.Error("expected empty message")
	}

	if _, err := mgr.AddTask("Read 20 pages"); err != nil {
		t.Fatal(err)
	}
	m.setSnapshot(mgr.Snapshot())
	view := m.view()
	if !strings.Contains(view, "Read 20 pages") || !strings.Contains(view, "0/1") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

// ============================================================
// Journal
// ============================================================

func TestJournalWriteAndSave(t *testing.T) {
	mgr, _ := newTestManager(t)
	j := newJournalModel(mgr, 3*time.Minute)
	j.setSize(100, 30)
	j.setSnapshot(mgr.Snapshot(), testStart)

	j, _ = j.update(enterKey)
	if !j.editing() {
		t.Fatal("enter should start writing")
	}
	j, _ = j.update(runes("I hid from the work."))

	j, cmd := j.update(saveKey)
	msg := mustSnapshot(t, cmd)
	if len(msg.snap.JournalEntries) != 1 || msg.snap.JournalEntries[0].Content != "I hid from the work." {
		t.Errorf("entries = %+v", msg.snap.JournalEntries)
	}
	if j.editing() || j.editor.Value() != "" {
		t.Error("editor should reset after saving")
	}
	if !j.started.IsZero() {
		t.Error("countdown should reset after saving")
	}
}

func TestJournalEmptySaveRefused(t *testing.T) {
	mgr, _ := newTestManager(t)
	j := newJournalModel(mgr, time.Minute)

	j, _ = j.update(enterKey)
	_, cmd := j.update(saveKey)
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Error("saving an empty entry should be refused")
	}
	if len(mgr.JournalEntries()) != 0 {
		t.Error("nothing should be saved")
	}
}

func TestJournalSoftCountdown(t *testing.T) {
	mgr, _ := newTestManager(t)
	j := newJournalModel(mgr, time.Minute)
	j.setSize(100, 30)
	j.setSnapshot(mgr.Snapshot(), testStart)

	if j.remaining() != time.Minute {
		t.Error("countdown should not run before writing starts")
	}

	j, _ = j.update(enterKey)
	j, _ = j.update(runes("x"))
	j, _ = j.update(tickMsg(testStart.Add(40 * time.Second)))
	if got := j.remaining(); got != 20*time.Second {
		t.Errorf("remaining = %v, want 20s", got)
	}

	j, _ = j.update(tickMsg(testStart.Add(5 * time.Minute)))
	if j.remaining() != 0 {
		t.Error("countdown should stop at zero")
	}
	if !strings.Contains(j.view(), "Time's up") {
		t.Error("expected soft time's up hint")
	}

	// Saving still works after the countdown.
	_, cmd := j.update(saveKey)
	if msg := mustSnapshot(t, cmd); len(msg.snap.JournalEntries) != 1 {
		t.Error("save should not be blocked by the countdown")
	}
}

// ============================================================
// Voice notes
// ============================================================

func TestVoiceForm(t *testing.T) {
	mgr, _ := newTestManager(t)
	v := newVoiceModel(mgr)
	v.setSize(100, 30)

	if !strings.Contains(v.view(), "No voice notes yet") {
		t.Error("expected empty message")
	}

	v, _ = v.update(runes("n"))
	if !v.formActive {
		t.Fatal("n should open the form")
	}
	v, _ = v.update(escKey)
	if v.formActive {
		t.Error("esc should cancel")
	}
}

func TestVoiceList(t *testing.T) {
	mgr, clock := newTestManager(t)
	if _, err := mgr.AddVoiceNote("/tmp/older.ogg"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := mgr.AddVoiceNote("/tmp/newer.ogg"); err != nil {
		t.Fatal(err)
	}

	v := newVoiceModel(mgr)
	v.setSize(120, 30)
	v.setSnapshot(mgr.Snapshot(), clock.Now())

	view := v.view()
	if strings.Index(view, "newer.ogg") > strings.Index(view, "older.ogg") {
		t.Error("newest note should be listed first")
	}
	if !strings.Contains(view, "2 hours ago") {
		t.Errorf("expected humanized date:\n%s", view)
	}
}

// ============================================================
// Dashboard
// ============================================================

func TestJournalActivity(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	entries := []state.JournalEntry{
		{Date: now},
		{Date: now.Add(-time.Hour)},
		{Date: now.AddDate(0, 0, -1)},
		{Date: now.AddDate(0, 0, -6)},
		{Date: now.AddDate(0, 0, -7)}, // outside the window
		{Date: now.AddDate(0, 0, 1)},  // in the future
	}

	counts := journalActivity(entries, now)
	want := []int{1, 0, 0, 0, 0, 1, 2}
	if len(counts) != len(want) {
		t.Fatalf("len = %d", len(counts))
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts = %v, want %v", counts, want)
			break
		}
	}
}

func TestDashboardView(t *testing.T) {
	mgr, _ := newTestManager(t)
	if _, err := mgr.AddTask("a"); err != nil {
		t.Fatal(err)
	}
	task, err := mgr.AddTask("b")
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.CompleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	if err := mgr.UnlockApp(); err != nil {
		t.Fatal(err)
	}

	d := newDashboardModel()
	d.setSize(120, 40)
	d.setSnapshot(mgr.Snapshot(), testStart)

	view := d.view()
	for _, want := range []string{"Streak", "1 of 2 complete", "Journal activity", "Voice Notes"} {
		if !strings.Contains(view, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

// ============================================================
// Key map
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Error("short help should not be empty")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should not be empty")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Errorf("group %d is empty", i)
		}
	}
}
