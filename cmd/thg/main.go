// Command thg prepares THG appraisal engagement letters. With no arguments it
// opens the interactive wizard; the subcommands script the same steps.
package main

import (
	"fmt"
	"io"
	"os"

	"thgletter/internal/api"
	"thgletter/internal/config"
	"thgletter/internal/logging"
	"thgletter/internal/session"
	"thgletter/internal/shell"
	"thgletter/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is what every command works with once the root pre-run has resolved
// configuration.
type app struct {
	// Global flags
	configPath string
	apiBase    string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	client   *api.Client
	kv       *session.FileKV
	sessions *session.Manager
	history  *store.History
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "thg",
		Short: "THG engagement letters",
		Long: `thg prepares appraisal engagement letters against the THG backend.

Run without arguments to start the interactive wizard:
  1. Client & Property Information
  2. Parcel Lookup
  3. Engagement Agreement
  4. Send to Customer`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The wizard owns the terminal; only subcommands log to stderr.
			return a.setup(cmd.Root() != cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), a)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&a.apiBase, "api-base", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newParcelCmd(a),
		newGenerateCmd(a),
		newSendCmd(a),
		newCountiesCmd(a),
		newHistoryCmd(a),
	)
	return rootCmd
}

func (a *app) setup(stderrLogs bool) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.apiBase != "" {
		cfg.API.BaseURL = config.NormalizeBaseURL(a.apiBase)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Paths.StateDir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := logging.Initialize(cfg.Paths.StateDir, cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	a.cfg = cfg

	a.logger = zap.NewNop()
	if stderrLogs {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if a.verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if a.logger, err = zc.Build(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	a.kv = session.NewFileKV(cfg.Paths.StateDir)
	a.sessions = session.NewManager(a.kv)
	a.client = api.NewClient(cfg.API.BaseURL,
		api.WithTimeouts(cfg.GetTimeout(), cfg.GetParcelTimeout(), cfg.GetReportTimeout()),
		api.WithTokenSource(a.sessions.Token),
	)

	logging.Boot("config=%s api=%s state=%s", a.configPath, cfg.API.BaseURL, cfg.Paths.StateDir)
	a.logger.Debug("configured",
		zap.String("api", cfg.API.BaseURL),
		zap.String("state_dir", cfg.Paths.StateDir),
	)
	return nil
}

func (a *app) teardown() {
	if a.history != nil {
		_ = a.history.Close()
		a.history = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	logging.CloseAll()
}

// openHistory opens the letter history on first use. A history that cannot
// be opened is logged and left out; letters still generate without it.
func (a *app) openHistory() *store.History {
	if a.history != nil {
		return a.history
	}
	h, err := store.OpenHistory(a.cfg.Paths.HistoryDB)
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		logging.Get(logging.CategoryHistory).Warn("open %s: %v", a.cfg.Paths.HistoryDB, err)
		return nil
	}
	a.history = h
	return h
}

// newShell builds a Shell over the configured backend. downloadDir overrides
// the configured directory when set.
func (a *app) newShell(downloadDir string) *shell.Shell {
	if downloadDir == "" {
		downloadDir = a.cfg.Paths.DownloadDir
	}
	opts := shell.Options{
		Backend:     a.client,
		Sessions:    a.sessions,
		DownloadDir: downloadDir,
	}
	// a nil *History must not become a non-nil Recorder
	if h := a.openHistory(); h != nil {
		opts.History = h
	}
	return shell.New(opts)
}

// execute runs thg with args against the given streams.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.teardown()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

func main() {
	if err := execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
