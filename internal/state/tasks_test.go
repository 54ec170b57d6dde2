package state

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/mirror/internal/store"
)

func addTasks(t *testing.T, m *Manager, texts ...string) []Task {
	t.Helper()
	var tasks []Task
	for _, text := range texts {
		task, err := m.AddTask(text)
		require.NoError(t, err)
		tasks = append(tasks, task)
	}
	return tasks
}

// ============================================================
// AddTask / RemoveTask
// ============================================================

func TestAddTask(t *testing.T) {
	f := newFixture(t)

	task, err := f.m.AddTask("  Workout  ")
	require.NoError(t, err)
	assert.Equal(t, Task{ID: "id-001", Text: "Workout", Completed: false}, task)
	assert.Equal(t, []Task{task}, f.m.Tasks())
	assert.JSONEq(t, `[{"id":"id-001","text":"Workout","completed":false}]`, f.storage.records[keyTasks])
	assert.Empty(t, f.rec.notes)
}

func TestAddTaskCap(t *testing.T) {
	f := newFixture(t)
	addTasks(t, f.m, "Workout", "Write", "Read")
	before := f.m.Tasks()
	stored := f.storage.records[keyTasks]

	_, err := f.m.AddTask("Meditate")
	require.ErrorIs(t, err, ErrMaxTasks)
	assert.Equal(t, before, f.m.Tasks())
	assert.Equal(t, stored, f.storage.records[keyTasks])
	assert.Equal(t, []Kind{KindMaxTasks}, f.rec.kinds())

	for range 5 {
		_, err := f.m.AddTask("again")
		assert.ErrorIs(t, err, ErrMaxTasks)
	}
	assert.Len(t, f.m.Tasks(), MaxTasks)
}

func TestAddTaskValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.m.AddTask("   ")
	assert.ErrorIs(t, err, ErrEmptyTask)

	_, err = f.m.AddTask(strings.Repeat("x", MaxTaskLength+1))
	assert.ErrorIs(t, err, ErrTaskTooLong)

	task, err := f.m.AddTask(strings.Repeat("é", MaxTaskLength))
	require.NoError(t, err, "limit counts runes, not bytes")
	assert.Equal(t, MaxTaskLength, len([]rune(task.Text)))

	assert.Len(t, f.m.Tasks(), 1)
	assert.Empty(t, f.rec.notes, "input validation is silent")
}

func TestRemoveTask(t *testing.T) {
	f := newFixture(t)
	tasks := addTasks(t, f.m, "Workout", "Write", "Read")

	require.NoError(t, f.m.RemoveTask(tasks[1].ID))
	assert.Equal(t, []Task{tasks[0], tasks[2]}, f.m.Tasks())

	// Freed slot can be reused.
	_, err := f.m.AddTask("Meditate")
	assert.NoError(t, err)
}

func TestRemoveTaskUnknownIsNoop(t *testing.T) {
	f := newFixture(t)
	addTasks(t, f.m, "Workout")
	sets := f.storage.sets

	require.NoError(t, f.m.RemoveTask("missing"))
	require.NoError(t, f.m.RemoveTask("missing"))
	assert.Len(t, f.m.Tasks(), 1)
	assert.Equal(t, sets, f.storage.sets)
}

func TestAddTaskStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.storage.failSet = errors.New("disk full")

	_, err := f.m.AddTask("Workout")
	require.ErrorIs(t, err, f.storage.failSet)
	assert.Empty(t, f.m.Tasks())
}

// ============================================================
// LockTasks
// ============================================================

func TestTasksLockedRejectsEdits(t *testing.T) {
	f := newFixture(t)
	tasks := addTasks(t, f.m, "Workout", "Write")
	require.NoError(t, f.m.LockTasks())
	before := f.m.Tasks()

	_, err := f.m.AddTask("X")
	assert.ErrorIs(t, err, ErrTasksLocked)
	assert.ErrorIs(t, f.m.RemoveTask(tasks[0].ID), ErrTasksLocked)
	assert.Equal(t, before, f.m.Tasks())
	assert.Equal(t, 2, f.rec.count(KindTasksLocked))

	require.NoError(t, f.m.CompleteTask(tasks[0].ID), "completion is allowed when locked")
	assert.True(t, f.m.Tasks()[0].Completed)
}

func TestTasksLockedTakesPrecedenceOverCap(t *testing.T) {
	f := newFixture(t)
	addTasks(t, f.m, "a", "b", "c")
	require.NoError(t, f.m.LockTasks())

	_, err := f.m.AddTask("d")
	assert.ErrorIs(t, err, ErrTasksLocked)
}

func TestLockTasksIdempotent(t *testing.T) {
	f := newFixture(t)
	addTasks(t, f.m, "Workout")

	require.NoError(t, f.m.LockTasks())
	once := f.m.Snapshot()
	sets := f.storage.sets

	require.NoError(t, f.m.LockTasks())
	assert.Equal(t, once, f.m.Snapshot())
	assert.Equal(t, sets, f.storage.sets)
	assert.Equal(t, 1, f.rec.count(KindTasksLockedIn))
	assert.Equal(t, "true", f.storage.records[keyTasksLocked])
}

func TestTasksLockedPersists(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.LockTasks())

	m := f.open()
	assert.True(t, m.TasksLocked())
	_, err := m.AddTask("X")
	assert.ErrorIs(t, err, ErrTasksLocked)
}

// ============================================================
// CompleteTask
// ============================================================

func TestCompleteTaskToggles(t *testing.T) {
	f := newFixture(t)
	tasks := addTasks(t, f.m, "Workout", "Write")

	require.NoError(t, f.m.CompleteTask(tasks[0].ID))
	assert.True(t, f.m.Tasks()[0].Completed)
	require.NoError(t, f.m.CompleteTask(tasks[0].ID))
	assert.False(t, f.m.Tasks()[0].Completed)

	done, total := f.m.Progress()
	assert.Equal(t, 0, done)
	assert.Equal(t, 2, total)
}

func TestCompleteTaskUnknown(t *testing.T) {
	f := newFixture(t)
	addTasks(t, f.m, "Workout")

	assert.ErrorIs(t, f.m.CompleteTask("missing"), ErrTaskNotFound)
	assert.False(t, f.m.Tasks()[0].Completed)
}

func TestAllCompleteFiresOnce(t *testing.T) {
	f := newFixture(t)
	tasks := addTasks(t, f.m, "Workout", "Write", "Read")

	require.NoError(t, f.m.CompleteTask(tasks[0].ID))
	require.NoError(t, f.m.CompleteTask(tasks[1].ID))
	assert.Zero(t, f.rec.count(KindAllComplete))

	require.NoError(t, f.m.CompleteTask(tasks[2].ID))
	assert.Equal(t, 1, f.rec.count(KindAllComplete))

	// Toggle one back and complete it again: same set, no repeat.
	require.NoError(t, f.m.CompleteTask(tasks[1].ID))
	require.NoError(t, f.m.CompleteTask(tasks[1].ID))
	assert.Equal(t, 1, f.rec.count(KindAllComplete))

	done, total := f.m.Progress()
	assert.Equal(t, 3, done)
	assert.Equal(t, 3, total)
}

func TestAllCompleteFiresForNewSet(t *testing.T) {
	f := newFixture(t)
	tasks := addTasks(t, f.m, "Workout")
	require.NoError(t, f.m.CompleteTask(tasks[0].ID))
	require.Equal(t, 1, f.rec.count(KindAllComplete))

	next := addTasks(t, f.m, "Write")
	require.NoError(t, f.m.CompleteTask(next[0].ID))
	assert.Equal(t, 2, f.rec.count(KindAllComplete))
}

func TestFingerprintIgnoresOrder(t *testing.T) {
	a := []Task{{ID: "1"}, {ID: "2"}}
	b := []Task{{ID: "2"}, {ID: "1"}}
	assert.Equal(t, fingerprint(a), fingerprint(b))
	assert.NotEqual(t, fingerprint(a), fingerprint(a[:1]))
	assert.NotEqual(t, fingerprint([]Task{{ID: "1\x002"}}), fingerprint(a))
	assert.NotEqual(t, fingerprint([]Task{{ID: "12"}}), fingerprint(a))
}

func TestAllCompletedEmpty(t *testing.T) {
	assert.False(t, allCompleted(nil))
	assert.True(t, allCompleted([]Task{{Completed: true}}))
	assert.False(t, allCompleted([]Task{{Completed: true}, {}}))
}

// ============================================================
// Journal / voice notes
// ============================================================

func TestAddJournalEntry(t *testing.T) {
	f := newFixture(t)

	e, err := f.m.AddJournalEntry("I scroll instead of starting.")
	require.NoError(t, err)
	assert.Equal(t, "id-001", e.ID)
	assert.Equal(t, f.clock.Now(), e.Date)

	f.clock.Advance(time.Minute)
	_, err = f.m.AddJournalEntry("I wait for motivation.")
	require.NoError(t, err)

	entries := f.m.JournalEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "I scroll instead of starting.", entries[0].Content)
	assert.True(t, entries[1].Date.After(entries[0].Date))
	assert.Equal(t, 2, f.rec.count(KindJournalSaved))
}

func TestAddVoiceNote(t *testing.T) {
	f := newFixture(t)

	n, err := f.m.AddVoiceNote("file:///home/me/future-me.ogg")
	require.NoError(t, err)
	assert.Equal(t, "file:///home/me/future-me.ogg", n.AudioURL)
	assert.Equal(t, []VoiceNote{n}, f.m.VoiceNotes())
	assert.Equal(t, []Kind{KindVoiceNoteSaved}, f.rec.kinds())
	assert.Contains(t, f.storage.records[keyVoiceNotes], `"audioUrl":"file:///home/me/future-me.ogg"`)
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(t)
	addTasks(t, f.m, "Workout")
	_, err := f.m.AddJournalEntry("x")
	require.NoError(t, err)

	snap := f.m.Snapshot()
	snap.Tasks[0].Text = "changed"
	snap.JournalEntries[0].Content = "changed"

	assert.Equal(t, "Workout", f.m.Tasks()[0].Text)
	assert.Equal(t, "x", f.m.JournalEntries()[0].Content)
}

// ============================================================
// Persistence round trip and scenario
// ============================================================

func TestRoundTripThroughStore(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := newClock()
	clock.t = clock.t.Add(123456789 * time.Nanosecond)
	m := New(s, WithClock(clock.Now))

	tasks := addTasks(t, m, "Workout", "Write")
	require.NoError(t, m.CompleteTask(tasks[1].ID))
	require.NoError(t, m.LockTasks())
	_, err = m.AddJournalEntry("Fear of starting")
	require.NoError(t, err)
	_, err = m.AddVoiceNote("file:///tmp/note.ogg")
	require.NoError(t, err)
	require.NoError(t, m.UnlockApp())
	require.NoError(t, m.LockApp(2*time.Hour))

	written := m.Snapshot()
	reloaded := New(s, WithClock(clock.Now)).Snapshot()

	assert.Equal(t, written, reloaded)
	assert.Equal(t, 1, reloaded.Streak)
	assert.True(t, reloaded.Lock.IsLocked)
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)

	tasks := addTasks(t, f.m, "Workout", "Write", "Read")

	_, err := f.m.AddTask("Meditate")
	require.ErrorIs(t, err, ErrMaxTasks)

	require.NoError(t, f.m.LockTasks())

	_, err = f.m.AddTask("X")
	require.ErrorIs(t, err, ErrTasksLocked)

	for _, task := range tasks {
		require.NoError(t, f.m.CompleteTask(task.ID))
	}

	assert.Equal(t, []Kind{
		KindMaxTasks,
		KindTasksLockedIn,
		KindTasksLocked,
		KindAllComplete,
	}, f.rec.kinds())
	assert.Len(t, f.m.Tasks(), 3)
}
