package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pandaskit/internal/config"
	"pandaskit/internal/console"
	"pandaskit/internal/logging"
	"pandaskit/internal/project"
	"pandaskit/internal/prompt"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Resolved by PersistentPreRunE
	root     string
	settings config.Settings
	runID    string

	// Logger
	logger *zap.Logger

	// Console streams, swapped out by tests
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pandaskit",
	Short: "pandaskit - developer helpers for the Pandas emulator source tree",
	Long: `pandaskit bundles the maintenance helpers of a Pandas checkout.

It scaffolds new features at the injection markers of the source tree,
overlays translated names onto the data files and keeps the console message
tables in sync. It also bumps the version defines and converts the sources
to UTF-8 with a byte-order mark.

Every command asks its questions on the console; flags only pick the
workspace and the verbosity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: discovered from the current directory)")

	createCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the changes as a unified diff instead of writing them")
	translateCmd.AddCommand(fmtargsCmd, extractCmd)

	rootCmd.AddCommand(
		createCmd,
		markersCmd,
		translateCmd,
		versionsCmd,
		src2utf8Cmd,
	)
}

// initRuntime builds the process logger, resolves the workspace and loads
// its configuration.
func initRuntime() error {
	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	start := workspace
	if start == "" {
		if start, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	root, err = config.FindWorkspaceRoot(start)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}

	cfg, err := config.LoadForWorkspace(root)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(root, cfg.Logging.Settings()); err != nil {
		return err
	}
	logging.BootDebug("config %s: level=%s", config.Path(root), cfg.Logging.Level)

	ws := project.Workspace{Root: root}
	settings = cfg.Resolve(ws.IsCommercial())

	runID = uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	logger.Debug("workspace resolved",
		zap.String("root", root),
		zap.String("edition", ws.Mode().String()),
		zap.String("language", settings.Language))
	logging.Boot("run %s: root=%s edition=%s", runID, root, ws.Mode())
	return nil
}

// session is what an interactive command works with.
type session struct {
	ws       project.Workspace
	out      *console.Printer
	prompter *prompt.Prompter
}

func newSession() *session {
	out := console.New(stdout)
	return &session{
		ws:       project.Workspace{Root: root},
		out:      out,
		prompter: prompt.New(stdin, out),
	}
}

// reportedError marks an error the console has already shown.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// exitCode maps a command result onto the process status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return -1
}

// finish reports a failure the console has not shown yet, records it in the
// boot log and returns the process status.
func finish(err error) int {
	if err == nil {
		return 0
	}
	var shown reportedError
	if !errors.As(err, &shown) {
		console.New(stderr).Error("%v", err)
	}
	// PersistentPostRun is skipped when a command fails.
	logging.BootError("run %s: %v", runID, err)
	logging.CloseAll()
	return exitCode(err)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(finish(err))
}
