package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/termwatch/internal/capture"
	"github.com/Iron-Ham/termwatch/internal/config"
	"github.com/Iron-Ham/termwatch/internal/event"
	"github.com/Iron-Ham/termwatch/internal/host/tmux"
	"github.com/Iron-Ham/termwatch/internal/logging"
	"github.com/Iron-Ham/termwatch/internal/monitor"
	"github.com/Iron-Ham/termwatch/internal/notify"
	"github.com/Iron-Ham/termwatch/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch tmux sessions and notify when one needs attention",
	Long: `Watch every session on a tmux server. New pane output is buffered per
session and, on each check interval, sent to the classifier.

The dashboard keys are:
  e  enable monitoring      d  disable monitoring
  c  check now              x  clear session state
  enter / esc  answer the pending notification
  q  quit

With --plain, notifications are printed as lines instead. Send SIGUSR1 to
check now and SIGUSR2 to clear session state.`,
	RunE: runWatch,
}

var watchPlain bool

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "run without the dashboard")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !watchPlain && !term.IsTerminal(int(os.Stdout.Fd())) {
		watchPlain = true
	}

	cfg, logger, err := bootstrap(!watchPlain)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	live := config.NewLive(cfg, logger)
	live.Watch()

	history := notify.NewHistory(0)
	var (
		queue   *notify.Queue
		program atomic.Pointer[tea.Program]
		primary notify.Notifier
	)
	if !watchPlain {
		queue = notify.NewQueue(func() {
			if p := program.Load(); p != nil {
				p.Send(tui.QueueChangedMsg{})
			}
		})
		primary = queue
	}

	host := tmux.New(tmux.Config{
		Socket:       cfg.Tmux.Socket,
		PollInterval: cfg.Tmux.PollInterval(),
		CaptureLines: cfg.Tmux.CaptureLines,
		Logger:       logger,
	})

	mon := monitor.New(monitor.Config{
		Host:       host,
		Classifier: newClassifier(cfg, logger),
		Notifier:   buildNotifier(cfg, cmd.OutOrStdout(), primary, history, logger),
		Store:      capture.NewStore(cfg.Monitor.BufferLines),
		Logger:     logger,
		Settings:   live.MonitorSettings,
	})
	mon.Start(ctx)
	defer mon.Close()

	live.OnChange(func(c *config.Config) { applyEnabled(mon, c, logger) })
	if cfg.Monitor.Enabled {
		mon.Enable()
	}

	go func() {
		if err := host.Run(ctx, mon); err != nil {
			logger.Error("tmux host stopped", "error", err.Error())
		}
	}()
	go handleSignals(ctx, mon, logger)

	if watchPlain {
		logPlainEvents(mon.Bus(), cmd, logger)
		fmt.Fprintf(cmd.OutOrStdout(), "termwatch: watching tmux sessions (monitoring %s)\n", onOff(mon.Enabled()))
		<-ctx.Done()
		return nil
	}

	p := tea.NewProgram(tui.New(mon, queue, history), tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// applyEnabled follows monitor.enabled across config reloads. A changed
// check interval takes effect by restarting the pump.
func applyEnabled(mon *monitor.Monitor, cfg *config.Config, logger *logging.Logger) {
	switch {
	case !cfg.Monitor.Enabled && mon.Enabled():
		mon.Disable()
	case cfg.Monitor.Enabled && !mon.Enabled():
		mon.Enable()
	case cfg.Monitor.Enabled && mon.Interval() != cfg.Monitor.CheckInterval():
		logger.Info("check interval changed; restarting pump", "interval_ms", cfg.Monitor.CheckIntervalMs)
		mon.Disable()
		mon.Enable()
	}
}

// handleSignals maps SIGUSR1 to check now and SIGUSR2 to clear state.
func handleSignals(ctx context.Context, mon *monitor.Monitor, logger *logging.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			var err error
			switch sig {
			case syscall.SIGUSR1:
				err = mon.CheckNow(ctx)
			case syscall.SIGUSR2:
				err = mon.ClearState(ctx)
			}
			if err != nil {
				logger.Warn("signal command failed", "signal", sig.String(), "error", err.Error())
			}
		}
	}
}

// logPlainEvents prints monitor state changes in headless mode.
func logPlainEvents(bus *event.Bus, cmd *cobra.Command, logger *logging.Logger) {
	out := cmd.OutOrStdout()
	bus.Subscribe(event.TypeMonitorEnabled, func(event.Event) { fmt.Fprintln(out, tui.StatusEnabled) })
	bus.Subscribe(event.TypeMonitorDisabled, func(event.Event) { fmt.Fprintln(out, tui.StatusDisabled) })
	bus.Subscribe(event.TypeStateCleared, func(event.Event) { fmt.Fprintln(out, tui.StatusCleared) })
	bus.Subscribe(event.TypeMonitorTick, func(e event.Event) {
		if te, ok := e.(event.TickEvent); ok && te.Manual {
			fmt.Fprintln(out, tui.StatusChecked)
		}
	})
	bus.Subscribe(event.TypeSessionOpened, func(e event.Event) {
		if se, ok := e.(event.SessionOpenedEvent); ok {
			logger.Debug("session opened", "session_id", se.SessionID, "session_label", se.Label)
		}
	})
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
