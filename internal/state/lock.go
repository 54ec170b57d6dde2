package state

import (
	"fmt"
	"time"
)

// Locked reports whether a lock running until lockUntil is still in force
// at now. A nil lockUntil means no lock.
func Locked(lockUntil *time.Time, now time.Time) bool {
	return lockUntil != nil && lockUntil.After(now)
}

// Lock returns the current lock state. A lock whose time has passed is
// expired here and its record erased.
func (m *Manager) Lock() LockState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLock()
	return m.lockState()
}

func (m *Manager) lockState() LockState {
	if m.lockUntil == nil {
		return LockState{}
	}
	until := *m.lockUntil
	return LockState{IsLocked: true, LockUntil: &until}
}

func (m *Manager) expireLock() {
	if m.lockUntil == nil || Locked(m.lockUntil, m.now()) {
		return
	}
	m.log.Debug("lock expired", "lock_until", *m.lockUntil)
	m.clearStoredLock()
	m.lockUntil = nil
}

// LockApp locks the app for d, or for the default duration when d <= 0.
func (m *Manager) LockApp(d time.Duration) error {
	if d <= 0 {
		d = m.defaultLock
	}
	return m.run(func() ([]Notification, error) {
		until := m.timestamp().Add(d)
		if err := m.storage.Set(keyLockUntil, formatLockUntil(until)); err != nil {
			return nil, wrap("lock app", err)
		}
		m.lockUntil = &until
		m.log.Info("app locked", "until", until, "duration", d)

		n := m.notify(KindLocked)
		n.Description = fmt.Sprintf(n.Description, formatLockDuration(d))
		return []Notification{n}, nil
	})
}

// UnlockApp ends any lock and counts the unlock toward the streak.
func (m *Manager) UnlockApp() error {
	return m.run(func() ([]Notification, error) {
		next := m.streak + 1
		if err := m.putStreak(next); err != nil {
			return nil, wrap("unlock app", err)
		}
		if err := m.storage.Delete(keyLockUntil); err != nil {
			if rerr := m.putStreak(m.streak); rerr != nil {
				m.log.Error("restore streak", "error", rerr)
			}
			return nil, wrap("unlock app", err)
		}
		m.streak = next
		m.lockUntil = nil
		m.log.Info("app unlocked", "streak", m.streak)
		return []Notification{m.notify(KindUnlocked)}, nil
	})
}

// ResetLock ends any lock without touching the streak.
func (m *Manager) ResetLock() error {
	return m.run(func() ([]Notification, error) {
		if err := m.storage.Delete(keyLockUntil); err != nil {
			return nil, wrap("reset lock", err)
		}
		m.lockUntil = nil
		m.log.Info("lock reset")
		return []Notification{m.notify(KindLockReset)}, nil
	})
}

func formatLockDuration(d time.Duration) string {
	if d == time.Hour {
		return "1 hour"
	}
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}
	return d.String()
}
