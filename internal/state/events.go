package state

import "time"

// Kind identifies what a notification is about.
type Kind string

const (
	KindLocked         Kind = "locked"
	KindUnlocked       Kind = "unlocked"
	KindLockReset      Kind = "lock_reset"
	KindTasksLocked    Kind = "tasks_locked"
	KindMaxTasks       Kind = "max_tasks"
	KindAllComplete    Kind = "all_complete"
	KindTasksLockedIn  Kind = "tasks_locked_in"
	KindJournalSaved   Kind = "journal_saved"
	KindVoiceNoteSaved Kind = "voice_note_saved"
	KindStreakReset    Kind = "streak_reset"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityDestructive
)

func (s Severity) String() string {
	if s == SeverityDestructive {
		return "destructive"
	}
	return "info"
}

// Notification is a short-lived, human readable signal for the
// presentation layer. It is advisory only and never persisted.
type Notification struct {
	Kind        Kind
	Title       string
	Description string
	Severity    Severity
	Time        time.Time
}

// Listener receives notifications after the operation that produced them
// has released the manager, so it may call back into the manager.
type Listener func(Notification)

type notificationText struct {
	title       string
	description string
	severity    Severity
}

var notifications = map[Kind]notificationText{
	KindLocked: {
		"App Locked",
		"You've chosen not to show up today. The app will be locked for %s.",
		SeverityDestructive,
	},
	KindUnlocked: {
		"App Unlocked",
		"You've chosen to be your future self today. Keep going.",
		SeverityInfo,
	},
	KindLockReset: {
		"Lock Reset",
		"You chose to change. Step back in front of the mirror.",
		SeverityInfo,
	},
	KindTasksLocked: {
		"Tasks Locked",
		"Your tasks are locked for today. No more changes allowed.",
		SeverityDestructive,
	},
	KindMaxTasks: {
		"Maximum Tasks Reached",
		"You can only set 3 non-negotiables per day.",
		SeverityDestructive,
	},
	KindAllComplete: {
		"All Tasks Complete",
		"You've completed all your non-negotiables today. Future you is proud.",
		SeverityInfo,
	},
	KindTasksLockedIn: {
		"Tasks Locked In",
		"Your non-negotiables are now locked in. No more changes for today.",
		SeverityInfo,
	},
	KindJournalSaved: {
		"Journal Entry Saved",
		"You've faced your shadows today. Keep moving forward.",
		SeverityInfo,
	},
	KindVoiceNoteSaved: {
		"Voice Note Saved",
		"Your message to your future self has been saved.",
		SeverityInfo,
	},
	KindStreakReset: {
		"Streak Reset",
		"Your streak has been reset. Time to rebuild.",
		SeverityDestructive,
	},
}

func newNotification(kind Kind, at time.Time) Notification {
	text := notifications[kind]
	return Notification{
		Kind:        kind,
		Title:       text.title,
		Description: text.description,
		Severity:    text.severity,
		Time:        at,
	}
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers l for every future notification. The returned func
// removes it again.
func (m *Manager) Subscribe(l Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextListener++
	id := m.nextListener
	m.listeners = append(m.listeners, subscription{id: id, fn: l})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.listeners {
			if s.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// publish must be called without m.mu held.
func (m *Manager) publish(notes ...Notification) {
	if len(notes) == 0 {
		return
	}
	m.mu.Lock()
	listeners := make([]subscription, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, n := range notes {
		m.log.Debug("notification", "kind", n.Kind, "severity", n.Severity.String())
		for _, s := range listeners {
			s.fn(n)
		}
	}
}
