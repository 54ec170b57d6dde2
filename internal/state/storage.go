package state

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Storage is the durable per-device record store the manager writes
// through to. *store.Store satisfies it.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Record keys. They match the layout the web version kept in localStorage.
const (
	keyLockUntil   = "lockUntil"
	keyTasks       = "tasks"
	keyTasksLocked = "tasksLocked"
	keyJournal     = "journalEntries"
	keyVoiceNotes  = "voiceNotes"
	keyStreak      = "currentStreak"
)

// isoLayout is ISO-8601 with milliseconds, as produced by toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

func formatLockUntil(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func parseLockUntil(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (m *Manager) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := m.storage.Set(key, string(data)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (m *Manager) putStreak(n int) error {
	if err := m.storage.Set(keyStreak, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("persist %s: %w", keyStreak, err)
	}
	return nil
}

// read returns the raw record for key. Storage errors are logged and
// reported as a missing record so the caller falls back to its default.
func (m *Manager) read(key string) (string, bool) {
	value, ok, err := m.storage.Get(key)
	if err != nil {
		m.log.Warn("read record, using default", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

// readJSON decodes the record under key into v. It reports false when the
// record is absent or malformed; v is then left untouched.
func (m *Manager) readJSON(key string, v any) bool {
	raw, ok := m.read(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		m.log.Warn("malformed record, using default", "key", key, "error", err)
		return false
	}
	return true
}

func (m *Manager) load() {
	now := m.now()

	if raw, ok := m.read(keyLockUntil); ok {
		until, err := parseLockUntil(raw)
		switch {
		case err != nil:
			m.log.Warn("malformed lock record, clearing", "value", raw, "error", err)
			m.clearStoredLock()
		case Locked(&until, now):
			m.lockUntil = &until
		default:
			m.log.Debug("lock expired while away", "lock_until", until)
			m.clearStoredLock()
		}
	}

	var tasks []Task
	if m.readJSON(keyTasks, &tasks) && tasks != nil {
		m.tasks = tasks
	}

	var tasksLocked bool
	if m.readJSON(keyTasksLocked, &tasksLocked) {
		m.tasksLocked = tasksLocked
	}

	var journal []JournalEntry
	if m.readJSON(keyJournal, &journal) && journal != nil {
		m.journal = journal
	}

	var notes []VoiceNote
	if m.readJSON(keyVoiceNotes, &notes) && notes != nil {
		m.voiceNotes = notes
	}

	if raw, ok := m.read(keyStreak); ok {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			m.log.Warn("malformed streak record, using default", "value", raw, "error", err)
		case n < 0:
			m.log.Warn("negative streak record, using default", "value", n)
		default:
			m.streak = n
		}
	}

	m.log.Debug("state loaded",
		"locked", m.lockUntil != nil,
		"tasks", len(m.tasks),
		"tasks_locked", m.tasksLocked,
		"journal_entries", len(m.journal),
		"voice_notes", len(m.voiceNotes),
		"streak", m.streak,
	)
}

// clearStoredLock erases the lock record during lazy expiry. Failures are
// logged only; a stale record is expired again on the next load.
func (m *Manager) clearStoredLock() {
	if err := m.storage.Delete(keyLockUntil); err != nil {
		m.log.Warn("clear expired lock", "error", err)
	}
}
