package state

// IncrementStreak adds one to the streak without notifying anyone.
func (m *Manager) IncrementStreak() error {
	return m.run(func() ([]Notification, error) {
		return nil, wrap("increment streak", m.incrementStreak())
	})
}

func (m *Manager) incrementStreak() error {
	next := m.streak + 1
	if err := m.putStreak(next); err != nil {
		return err
	}
	m.streak = next
	return nil
}

func (m *Manager) ResetStreak() error {
	return m.run(func() ([]Notification, error) {
		if err := m.putStreak(0); err != nil {
			return nil, wrap("reset streak", err)
		}
		m.streak = 0
		m.log.Info("streak reset")
		return []Notification{m.notify(KindStreakReset)}, nil
	})
}
