package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/termwatch/internal/capture"
	"github.com/Iron-Ham/termwatch/internal/config"
	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/host/ptyrun"
	"github.com/Iron-Ham/termwatch/internal/monitor"
)

// ExitCodeError carries a child command's non-zero exit code to main.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Run a command under a pseudo-terminal and watch its output",
	Long: `Run a single command under a pseudo-terminal. Its output is mirrored to
this terminal and checked on every interval; a final check runs when the
command exits. termwatch exits with the command's exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runLabel      string
	runFinalCheck bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runLabel, "label", "l", "", "session label (default: the command name)")
	runCmd.Flags().BoolVar(&runFinalCheck, "final-check", true, "check the output once more after the command exits")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	live := config.NewLive(cfg, logger)
	live.Watch()

	runner := ptyrun.New(ptyrun.Config{
		Label:  runLabel,
		Stdout: cmd.OutOrStdout(),
		Stdin:  os.Stdin,
		Logger: logger,
	})

	// The child owns stdout, so notifications go to stderr.
	mon := monitor.New(monitor.Config{
		Host:       runner,
		Classifier: newClassifier(cfg, logger),
		Notifier:   buildNotifier(cfg, cmd.ErrOrStderr(), nil, nil, logger),
		Store:      capture.NewStore(cfg.Monitor.BufferLines),
		Logger:     logger,
		Settings:   live.MonitorSettings,
	})
	mon.Start(ctx)
	defer mon.Close()
	if cfg.Monitor.Enabled {
		mon.Enable()
	}

	code, err := runner.Run(ctx, mon, args[0], args[1:]...)
	if err != nil {
		return err
	}

	if runFinalCheck {
		finalCheck(ctx, mon, cfg, cmd.ErrOrStderr())
	}
	if code != 0 {
		return &ExitCodeError{Code: code}
	}
	return nil
}

// finalCheck evaluates the finished command's output once, bounded by the
// classifier timeout.
func finalCheck(ctx context.Context, mon *monitor.Monitor, cfg *config.Config, stderr io.Writer) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Classifier.Timeout()+monitor.MinCheckInterval)
	defer cancel()
	if err := mon.CheckNow(ctx); err != nil && !errors.Is(err, errors.ErrMonitorDisabled) {
		fmt.Fprintf(stderr, "termwatch: final check failed: %v\n", err)
	}
}
