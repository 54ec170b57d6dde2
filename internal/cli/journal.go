package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newJournalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Write in or read the shadow journal",
	}

	add := &cobra.Command{
		Use:   "add [TEXT...]",
		Short: "Add a journal entry (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading entry: %w", err)
				}
				content = string(data)
			}
			content = strings.TrimSpace(content)
			if content == "" {
				return errors.New("journal entry is empty")
			}
			return opts.withUnlockedSession(cmd, func(s *session) error {
				_, err := s.mgr.AddJournalEntry(content)
				return err
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return opts.withUnlockedSession(cmd, func(s *session) error {
				entries := s.mgr.JournalEntries()
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "The journal is empty.")
					return nil
				}
				shown := 0
				for i := len(entries) - 1; i >= 0 && (limit <= 0 || shown < limit); i-- {
					e := entries[i]
					fmt.Fprintf(out, "%s  (%s)\n", e.Date.Local().Format("2006-01-02 15:04"), humanize.RelTime(e.Date, s.mgr.Now(), "ago", "from now"))
					for _, line := range strings.Split(e.Content, "\n") {
						fmt.Fprintf(out, "    %s\n", line)
					}
					fmt.Fprintln(out)
					shown++
				}
				return nil
			})
		},
	}
	list.Flags().Int("limit", 10, "number of entries to show (0 for all)")

	cmd.AddCommand(add, list)
	return cmd
}

func newVoiceCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Record or list messages to your future self",
	}

	add := &cobra.Command{
		Use:   "add REF",
		Short: "Save a voice note by audio file path or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUnlockedSession(cmd, func(s *session) error {
				_, err := s.mgr.AddVoiceNote(args[0])
				return err
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List voice notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUnlockedSession(cmd, func(s *session) error {
				notes := s.mgr.VoiceNotes()
				out := cmd.OutOrStdout()
				if len(notes) == 0 {
					fmt.Fprintln(out, "No voice notes yet.")
					return nil
				}
				for i := len(notes) - 1; i >= 0; i-- {
					n := notes[i]
					fmt.Fprintf(out, "%-16s  %s\n", humanize.RelTime(n.Date, s.mgr.Now(), "ago", "from now"), n.AudioURL)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
