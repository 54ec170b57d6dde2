package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/mirror/internal/state"
)

type jsonExport struct {
	ExportedAt     string        `json:"exported_at"`
	Streak         int           `json:"streak"`
	TasksLocked    bool          `json:"tasks_locked"`
	Tasks          []jsonTask    `json:"tasks"`
	JournalEntries []jsonJournal `json:"journal_entries"`
	VoiceNotes     []jsonVoice   `json:"voice_notes"`
}

type jsonTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type jsonJournal struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

type jsonVoice struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	AudioURL string `json:"audio_url"`
}

func ToJSON(w io.Writer, snap state.Snapshot) error {
	export := jsonExport{
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		Streak:         snap.Streak,
		TasksLocked:    snap.TasksLocked,
		Tasks:          []jsonTask{},
		JournalEntries: []jsonJournal{},
		VoiceNotes:     []jsonVoice{},
	}

	for _, t := range snap.Tasks {
		export.Tasks = append(export.Tasks, jsonTask(t))
	}
	for _, e := range snap.JournalEntries {
		export.JournalEntries = append(export.JournalEntries, jsonJournal{
			ID:      e.ID,
			Date:    e.Date.Local().Format(time.RFC3339),
			Content: e.Content,
		})
	}
	for _, n := range snap.VoiceNotes {
		export.VoiceNotes = append(export.VoiceNotes, jsonVoice{
			ID:       n.ID,
			Date:     n.Date.Local().Format(time.RFC3339),
			AudioURL: n.AudioURL,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
