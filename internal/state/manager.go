package state

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTasksLocked  = errors.New("tasks are locked")
	ErrMaxTasks     = errors.New("maximum number of tasks reached")
	ErrEmptyTask    = errors.New("task text is empty")
	ErrTaskTooLong  = errors.New("task text is too long")
	ErrTaskNotFound = errors.New("task not found")
)

// Manager owns every piece of persisted application state. All reads and
// mutations go through it; each mutation is written to Storage before the
// in-memory copy changes.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	now     func() time.Time
	newID   func() string
	log     *slog.Logger

	defaultLock time.Duration

	lockUntil   *time.Time
	tasks       []Task
	tasksLocked bool
	journal     []JournalEntry
	voiceNotes  []VoiceNote
	streak      int

	// celebrated is the fingerprint of the task set the last
	// all-complete notification was sent for.
	celebrated string

	listeners    []subscription
	nextListener int
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithIDs replaces the UUIDv7 generator used for new entities.
func WithIDs(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// WithDefaultLockDuration sets the duration LockApp uses when given none.
func WithDefaultLockDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.defaultLock = d
		}
	}
}

// New builds a manager over storage and loads every slice from it.
// Missing or malformed records fall back to their zero values.
func New(storage Storage, opts ...Option) *Manager {
	m := &Manager{
		storage:     storage,
		now:         time.Now,
		newID:       newUUID,
		log:         slog.New(slog.DiscardHandler),
		defaultLock: DefaultLockDuration,
		tasks:       []Task{},
		journal:     []JournalEntry{},
		voiceNotes:  []VoiceNote{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.load()
	return m
}

func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// timestamp is the manager's notion of now, in UTC at millisecond precision
// so it survives a round trip through storage unchanged.
func (m *Manager) timestamp() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}

// ============================================================
// Reads
// ============================================================

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLock()

	return Snapshot{
		Lock:           m.lockState(),
		Tasks:          slices.Clone(m.tasks),
		TasksLocked:    m.tasksLocked,
		JournalEntries: slices.Clone(m.journal),
		VoiceNotes:     slices.Clone(m.voiceNotes),
		Streak:         m.streak,
	}
}

func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tasks)
}

func (m *Manager) TasksLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasksLocked
}

func (m *Manager) JournalEntries() []JournalEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.journal)
}

func (m *Manager) VoiceNotes() []VoiceNote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.voiceNotes)
}

func (m *Manager) Streak() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streak
}

// Progress reports how many of the current tasks are completed.
func (m *Manager) Progress() (completed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return progress(m.tasks)
}

// Now exposes the injected clock so consumers render countdowns against the
// same time the manager expires locks with.
func (m *Manager) Now() time.Time {
	return m.now()
}

func (m *Manager) DefaultLockDuration() time.Duration {
	return m.defaultLock
}

// ============================================================
// Mutations
// ============================================================

// run executes fn under the manager lock and publishes whatever
// notifications it produced once the lock is released.
func (m *Manager) run(fn func() ([]Notification, error)) error {
	m.mu.Lock()
	notes, err := fn()
	m.mu.Unlock()

	m.publish(notes...)
	return err
}

func (m *Manager) notify(kind Kind) Notification {
	return newNotification(kind, m.now())
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
