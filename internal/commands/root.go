package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/buildinfo"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/logging"
	"github.com/cleared-dev/tally/internal/store"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Without a subcommand it runs the interactive menu. Extra store options are
// applied whenever a command opens the data file.
func NewRootCommand(opts ...store.Option) *cobra.Command {
	a := &app{storeOpts: opts}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Personal expense tracker",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return newShell(a, cmd.InOrStdin(), cmd.OutOrStdout()).run()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", config.FileName, "config file")
	pf.StringVar(&a.dataFile, "data-file", "", "expense data file (overrides config)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error, off")

	rootCmd.AddCommand(
		newInitCommand(a),
		newAddCommand(a),
		newQuickAddCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newUpdateCommand(a),
		newDeleteCommand(a),
		newDuplicateCommand(a),
		newSearchCommand(a),
		newSummaryCommand(a),
		newRecurringCommand(a),
		newCategoriesCommand(a),
		newExportCommand(a),
		newBackupCommand(a),
		newClearCommand(a),
	)

	return rootCmd
}

// app carries the state shared by every command of one invocation.
type app struct {
	configPath string
	dataFile   string
	logLevel   string
	storeOpts  []store.Option

	cfg    *config.Config
	logger zerolog.Logger
	store  *store.Store
}

// setup resolves configuration (file, environment, then flags) and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	if a.dataFile != "" {
		cfg.DataFile = a.dataFile
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// open loads the data file on first use.
func (a *app) open() *store.Store {
	if a.store == nil {
		opts := append([]store.Option{store.WithLogger(a.logger)}, a.storeOpts...)
		a.store = store.Open(a.cfg.DataFile, opts...)
	}
	return a.store
}

// saved turns a failed save into a command error. The in-memory change has
// already happened, but a one-shot command has nothing else to show for it.
func (a *app) saved() error {
	if err := a.store.SaveErr(); err != nil {
		return fmt.Errorf("saving %s: %w", a.store.Path(), err)
	}
	return nil
}
