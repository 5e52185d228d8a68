package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/miniserve/internal/adapters/secondary/scheduler"
	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
	"github.com/fredcamaral/miniserve/internal/domain/services"
)

var (
	demoSimPort     int
	demoDuration    time.Duration
	demoRequests    []string
	demoShowPreview bool
)

// demoCmd runs a session without the UI and prints its log feed
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the simulated server headless and print its log",
	Long: `Start the simulated server, let the startup demo requests play out
and print every log line as it is appended. The server is stopped once
the duration has elapsed.`,
	Example: `  miniserve demo
  miniserve demo --duration 10s --request /about.html --request /missing`,
	RunE: runDemoCmd,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().IntVar(&demoSimPort, "sim-port", 0, "Simulated server port (overrides config)")
	demoCmd.Flags().DurationVar(&demoDuration, "duration", 4*time.Second, "How long the server runs before it is stopped")
	demoCmd.Flags().StringArrayVar(&demoRequests, "request", nil, "Extra path to request right after start (repeatable)")
	demoCmd.Flags().BoolVar(&demoShowPreview, "show-preview", false, "Print the final preview document")
}

func runDemoCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	loop := scheduler.NewEventLoop(logger)
	defer loop.Close()

	runner := &demoRunner{
		out:      cmd.OutOrStdout(),
		sched:    loop,
		clock:    ports.SystemClock,
		wait:     sleep,
		logger:   logger,
		settle:   loop.Close,
		requests: demoRequests,
		preview:  demoShowPreview,
	}
	return runner.run(ctx, cfg.Simulator, demoDuration)
}

// demoRunner drives one headless session from start to stop
type demoRunner struct {
	out      io.Writer
	sched    ports.Scheduler
	clock    ports.Clock
	wait     func(ctx context.Context, d time.Duration) error
	settle   func()
	logger   *slog.Logger
	requests []string
	preview  bool
}

func (r *demoRunner) run(ctx context.Context, cfg entities.SimulatorConfig, duration time.Duration) error {
	printer := &logPrinter{w: r.out}

	session, err := services.NewSession(
		services.WithSimulatorConfig(cfg),
		services.WithScheduler(r.sched),
		services.WithClock(r.clock),
		services.WithEventPublisher(printer),
		services.WithLogger(r.logger),
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	if err := session.Start(cfg.GetPort()); err != nil {
		return err
	}
	for _, path := range r.requests {
		session.Simulate(path)
	}

	waitErr := r.wait(ctx, duration)
	session.Stop()

	if r.settle != nil {
		r.settle()
	}

	if r.preview {
		printer.printf("\n%s\n", session.Preview())
	}

	if waitErr != nil && waitErr != context.Canceled {
		return waitErr
	}
	return nil
}

// logPrinter writes log events as they are published
type logPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *logPrinter) Publish(event ports.UpdateEvent) {
	switch event.Type {
	case ports.EventTypeLog:
		entry, ok := event.Data.(entities.LogEntry)
		if !ok {
			return
		}
		p.printf("%s\n", formatEntry(entry))
	case ports.EventTypeLogsCleared:
		p.printf("-- logs cleared --\n")
	}
}

func (p *logPrinter) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// formatEntry renders an entry as "[time] KIND message"; continuation
// lines of multi-line messages are indented under the first.
func formatEntry(e entities.LogEntry) string {
	prefix := fmt.Sprintf("[%s] %-8s ", e.Clock(), strings.ToUpper(e.Kind.String()))
	indent := strings.Repeat(" ", len(prefix))
	return prefix + strings.ReplaceAll(e.Message, "\n", "\n"+indent)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ ports.EventPublisher = (*logPrinter)(nil)
