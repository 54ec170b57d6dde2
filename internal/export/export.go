package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/mirror/internal/state"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

var Formats = []Format{FormatCSV, FormatJSON, FormatHTML}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or html)", s)
}

// Extension is the file suffix for f, including the age suffix when the
// output is sealed.
func (f Format) Extension(sealed bool) string {
	ext := "." + string(f)
	if sealed {
		ext += ".age"
	}
	return ext
}

// Write renders snap to w in format f.
func Write(w io.Writer, f Format, snap state.Snapshot) error {
	switch f {
	case FormatCSV:
		return ToCSV(w, snap)
	case FormatJSON:
		return ToJSON(w, snap)
	case FormatHTML:
		return JournalHTML(w, snap.JournalEntries)
	}
	return fmt.Errorf("unknown export format %q", f)
}
