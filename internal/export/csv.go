package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/sadopc/mirror/internal/state"
)

// ToCSV writes journal entries and voice notes as one table, oldest first
// within each kind.
func ToCSV(w io.Writer, snap state.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Type", "ID", "Date", "Content"}); err != nil {
		return err
	}

	for _, e := range snap.JournalEntries {
		row := []string{"journal", e.ID, e.Date.Local().Format(time.RFC3339), e.Content}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, n := range snap.VoiceNotes {
		row := []string{"voice_note", n.ID, n.Date.Local().Format(time.RFC3339), n.AudioURL}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
