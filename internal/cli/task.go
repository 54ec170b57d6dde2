package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/state"
)

func newTaskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage today's non-negotiables",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List today's non-negotiables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUnlockedSession(cmd, func(s *session) error {
				tasks := s.mgr.Tasks()
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No non-negotiables set.")
					return nil
				}
				printTasks(cmd, tasks)
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a non-negotiable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUnlockedSession(cmd, func(s *session) error {
				t, err := s.mgr.AddTask(strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", t.ID)
				return nil
			})
		},
	}

	done := &cobra.Command{
		Use:   "done ID|N",
		Short: "Toggle a non-negotiable's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUnlockedSession(cmd, func(s *session) error {
				id := resolveTaskID(s.mgr.Tasks(), args[0])
				return s.mgr.CompleteTask(id)
			})
		},
	}

	rm := &cobra.Command{
		Use:     "rm ID|N",
		Aliases: []string{"remove"},
		Short:   "Remove a non-negotiable",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUnlockedSession(cmd, func(s *session) error {
				id := resolveTaskID(s.mgr.Tasks(), args[0])
				return s.mgr.RemoveTask(id)
			})
		},
	}

	lock := &cobra.Command{
		Use:   "lock",
		Short: "Lock today's non-negotiables in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUnlockedSession(cmd, func(s *session) error {
				return s.mgr.LockTasks()
			})
		},
	}

	cmd.AddCommand(list, add, done, rm, lock)
	return cmd
}

// resolveTaskID accepts either a task ID or its 1-based position in the
// list. Anything else is passed through as an ID.
func resolveTaskID(tasks []state.Task, arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1].ID
	}
	return arg
}

func printTasks(cmd *cobra.Command, tasks []state.Task) {
	for i, t := range tasks {
		check := " "
		if t.Completed {
			check = "x"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. [%s] %s  (%s)\n", i+1, check, t.Text, t.ID)
	}
}
