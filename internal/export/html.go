package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/sadopc/mirror/internal/state"
)

// The goldmark instance is configured once and safe to share; Convert
// keeps its per-call state on the stack.
var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return markdown
}

// JournalHTML renders the shadow journal as a standalone HTML page. Entry
// content is treated as Markdown; raw HTML inside it is not passed through.
func JournalHTML(w io.Writer, entries []state.JournalEntry) error {
	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>Shadow Journal</title>\n</head>\n<body>\n<h1>Shadow Journal</h1>\n")

	if len(entries) == 0 {
		buf.WriteString("<p>No entries yet.</p>\n")
	}

	// Newest first, as a journal is usually read.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(&buf, "<article id=\"%s\">\n<h2><time datetime=\"%s\">%s</time></h2>\n",
			html.EscapeString(e.ID),
			e.Date.UTC().Format(time.RFC3339),
			html.EscapeString(e.Date.Local().Format("Monday, Jan 2 2006 15:04")),
		)
		if err := getMarkdown().Convert([]byte(e.Content), &buf); err != nil {
			return fmt.Errorf("render entry %s: %w", e.ID, err)
		}
		buf.WriteString("</article>\n")
	}

	buf.WriteString("</body>\n</html>\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}
