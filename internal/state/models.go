package state

import "time"

const (
	// MaxTasks is the number of non-negotiables a user may commit to.
	MaxTasks = 3
	// MaxTaskLength is measured in runes.
	MaxTaskLength = 50

	DefaultLockDuration = 12 * time.Hour

	// Bounds for a lock chosen by hand, in hours.
	MinLockHours = 1
	MaxLockHours = 72
)

type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// JournalEntry is a shadow journal entry. Entries are never edited.
type JournalEntry struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// VoiceNote points at a recorded message to the user's future self.
// AudioURL is opaque to the manager.
type VoiceNote struct {
	ID       string    `json:"id"`
	AudioURL string    `json:"audioUrl"`
	Date     time.Time `json:"date"`
}

type LockState struct {
	IsLocked  bool
	LockUntil *time.Time
}

// Remaining returns how long the lock still has to run at now, or zero.
func (l LockState) Remaining(now time.Time) time.Duration {
	if !l.IsLocked || l.LockUntil == nil {
		return 0
	}
	if d := l.LockUntil.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Snapshot is a point-in-time copy of every state slice.
type Snapshot struct {
	Lock           LockState
	Tasks          []Task
	TasksLocked    bool
	JournalEntries []JournalEntry
	VoiceNotes     []VoiceNote
	Streak         int
}

// Progress counts completed tasks in a snapshot.
func (s Snapshot) Progress() (completed, total int) {
	return progress(s.Tasks)
}

func progress(tasks []Task) (completed, total int) {
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return completed, len(tasks)
}
