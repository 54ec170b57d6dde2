package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/state"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show lock state, streak and today's progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *session) error {
				printStatus(cmd, s.mgr.Snapshot(), s.mgr.Now())
				return nil
			})
		},
	}
}

func printStatus(cmd *cobra.Command, snap state.Snapshot, now time.Time) {
	out := cmd.OutOrStdout()

	if snap.Lock.IsLocked {
		until := snap.Lock.LockUntil.Local()
		fmt.Fprintf(out, "Locked until %s (%s left)\n",
			until.Format("Mon 15:04"),
			formatRemaining(snap.Lock.Remaining(now)))
	} else {
		fmt.Fprintln(out, "Unlocked")
	}

	fmt.Fprintf(out, "Streak: %d\n", snap.Streak)

	done, total := snap.Progress()
	locked := ""
	if snap.TasksLocked {
		locked = " (locked in)"
	}
	fmt.Fprintf(out, "Non-negotiables: %d/%d%s\n", done, total, locked)
	printTasks(cmd, snap.Tasks)

	fmt.Fprintf(out, "Journal entries: %d\n", len(snap.JournalEntries))
	fmt.Fprintf(out, "Voice notes: %d\n", len(snap.VoiceNotes))
}

// formatRemaining renders d as "Hh Mm".
func formatRemaining(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}

func newLockCmd(opts *rootOptions) *cobra.Command {
	var hours float64

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Choose not to show up and lock the app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if hours != 0 && (hours < state.MinLockHours || hours > state.MaxLockHours) {
				return fmt.Errorf("--hours must be between %d and %d, got %v",
					state.MinLockHours, state.MaxLockHours, hours)
			}
			return opts.withSession(cmd, func(s *session) error {
				return s.mgr.LockApp(time.Duration(hours * float64(time.Hour)))
			})
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "lock duration in hours, 1 to 72 (default from config)")
	return cmd
}

func newUnlockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Show up as your future self",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *session) error {
				if err := s.mgr.UnlockApp(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Streak: %d\n", s.mgr.Streak())
				return nil
			})
		},
	}
}

func newResetLockCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-lock",
		Short: "End the lock early without counting toward the streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *session) error {
				return s.mgr.ResetLock()
			})
		},
	}
}

func newStreakCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show or reset the streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *session) error {
				fmt.Fprintln(cmd.OutOrStdout(), s.mgr.Streak())
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the streak to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(s *session) error {
				return s.mgr.ResetStreak()
			})
		},
	})
	return cmd
}
