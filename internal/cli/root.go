package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sadopc/mirror/internal/config"
	"github.com/sadopc/mirror/internal/logs"
	"github.com/sadopc/mirror/internal/state"
	"github.com/sadopc/mirror/internal/store"
	"github.com/sadopc/mirror/internal/tui"
)

type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string
}

func (o *rootOptions) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", config.DefaultPath(), "path to the config file")
	fs.StringVar(&o.dbPath, "db", "", "database path (overrides the config file)")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (overrides the config file)")
}

// session is everything a command needs, opened from config and flags.
type session struct {
	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
	store     *store.Store
	mgr       *state.Manager
}

func (o *rootOptions) open() (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Database = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger, logCloser, err := logs.New(logs.Options{
		File:     cfg.Log.File,
		Level:    cfg.Log.Level,
		Journald: cfg.Log.Journald,
	})
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.Database)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Debug("store opened", "path", cfg.Database)

	mgr := state.New(s,
		state.WithLogger(logger),
		state.WithDefaultLockDuration(cfg.LockDuration()),
	)

	return &session{cfg: cfg, log: logger, logCloser: logCloser, store: s, mgr: mgr}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn("close store", "error", err)
	}
	s.logCloser.Close()
}

// withSession opens a session for the duration of fn. Notifications raised
// while fn runs are printed to the command's output.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(*session) error) error {
	s, err := o.open()
	if err != nil {
		return err
	}
	defer s.Close()

	unsubscribe := s.mgr.Subscribe(notificationPrinter(cmd.OutOrStdout()))
	defer unsubscribe()

	return fn(s)
}

// ErrLocked is returned by commands that only run while the app is unlocked.
var ErrLocked = errors.New("mirror is locked")

// withUnlockedSession is withSession for commands the lock keeps out of
// reach: tasks, the journal, voice notes and export.
func (o *rootOptions) withUnlockedSession(cmd *cobra.Command, fn func(*session) error) error {
	return o.withSession(cmd, func(s *session) error {
		if lock := s.mgr.Lock(); lock.IsLocked {
			s.log.Info("command refused while locked", "command", cmd.CommandPath(), "until", *lock.LockUntil)
			return fmt.Errorf("%w until %s", ErrLocked, lock.LockUntil.Local().Format("Mon 15:04"))
		}
		return fn(s)
	})
}

func notificationPrinter(w io.Writer) state.Listener {
	return func(n state.Notification) {
		marker := "*"
		if n.Severity == state.SeverityDestructive {
			marker = "!"
		}
		fmt.Fprintf(w, "%s %s: %s\n", marker, n.Title, n.Description)
	}
}

// NewRootCmd builds the mirror command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mirror",
		Short: "Mirror - show up as your future self",
		Long: `Mirror is a self-accountability tool. Each day you decide in front of
the mirror whether to show up. Showing up unlocks your three
non-negotiables and the shadow journal; choosing not to locks the app.

Run without arguments to open the terminal UI.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
	opts.addFlags(root.PersistentFlags())

	root.AddCommand(
		newStatusCmd(opts),
		newLockCmd(opts),
		newUnlockCmd(opts),
		newResetLockCmd(opts),
		newTaskCmd(opts),
		newJournalCmd(opts),
		newVoiceCmd(opts),
		newStreakCmd(opts),
		newExportCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func runTUI(opts *rootOptions) error {
	s, err := opts.open()
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(s.mgr, tui.Options{
		JournalCountdown: s.cfg.JournalCountdown(),
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}

// Execute runs the root command and reports any error on stderr.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
