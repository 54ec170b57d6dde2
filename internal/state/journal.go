package state

import "slices"

// AddJournalEntry appends a shadow journal entry dated now. The caller is
// expected to reject empty content.
func (m *Manager) AddJournalEntry(content string) (JournalEntry, error) {
	var entry JournalEntry
	err := m.run(func() ([]Notification, error) {
		e := JournalEntry{ID: m.newID(), Content: content, Date: m.timestamp()}
		updated := append(slices.Clone(m.journal), e)
		if err := m.putJSON(keyJournal, updated); err != nil {
			return nil, wrap("add journal entry", err)
		}
		m.journal = updated
		entry = e
		m.log.Debug("journal entry added", "id", e.ID, "count", len(updated))
		return []Notification{m.notify(KindJournalSaved)}, nil
	})
	return entry, err
}

// AddVoiceNote appends a reference to a recorded message dated now.
func (m *Manager) AddVoiceNote(audioURL string) (VoiceNote, error) {
	var note VoiceNote
	err := m.run(func() ([]Notification, error) {
		n := VoiceNote{ID: m.newID(), AudioURL: audioURL, Date: m.timestamp()}
		updated := append(slices.Clone(m.voiceNotes), n)
		if err := m.putJSON(keyVoiceNotes, updated); err != nil {
			return nil, wrap("add voice note", err)
		}
		m.voiceNotes = updated
		note = n
		m.log.Debug("voice note added", "id", n.ID, "count", len(updated))
		return []Notification{m.notify(KindVoiceNoteSaved)}, nil
	})
	return note, err
}
