package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/miniserve/internal/adapters/primary/http"
	"github.com/fredcamaral/miniserve/internal/adapters/secondary/browser"
	"github.com/fredcamaral/miniserve/internal/adapters/secondary/config"
	"github.com/fredcamaral/miniserve/internal/adapters/secondary/monitoring"
	"github.com/fredcamaral/miniserve/internal/adapters/secondary/preview"
	"github.com/fredcamaral/miniserve/internal/adapters/secondary/scheduler"
	"github.com/fredcamaral/miniserve/internal/domain/entities"
	"github.com/fredcamaral/miniserve/internal/domain/ports"
	"github.com/fredcamaral/miniserve/internal/domain/services"
)

var (
	servePort          int
	serveHost          string
	serveNoBrowser     bool
	serveSimPort       int
	serveResponseDelay int
	serveSanitize      bool
	serveStart         bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the control UI for the simulated server",
	Long: `Start the local control UI and open it in a browser.

The UI lets you start and stop the simulated server, manage its virtual
files, send requests and watch the log feed and rendered preview update.
The same actions are available over the JSON API under /api and the
JSON-RPC endpoint at /rpc.`,
	Example: `  miniserve serve
  miniserve serve --port 8000 --no-browser
  miniserve serve --sim-port 9090 --start`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Control UI port (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Control UI host (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Don't open the browser automatically")
	serveCmd.Flags().IntVar(&serveSimPort, "sim-port", 0, "Initial simulated server port (overrides config)")
	serveCmd.Flags().IntVar(&serveResponseDelay, "response-delay", 0, "Simulated response delay in milliseconds (overrides config)")
	serveCmd.Flags().BoolVar(&serveSanitize, "sanitize", false, "Sanitize preview HTML before display (overrides config)")
	serveCmd.Flags().BoolVar(&serveStart, "start", false, "Start the simulated server immediately")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}

	if err := validateServeConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.loop.Close()

	if serveStart {
		if err := app.session.Start(cfg.Simulator.GetPort()); err != nil {
			return fmt.Errorf("starting simulated server: %w", err)
		}
	}

	if err := app.server.Start(ctx, cfg.Server.Port, cfg.Server.Host); err != nil {
		return fmt.Errorf("starting control UI: %w", err)
	}

	url := fmt.Sprintf("http://%s:%d", displayHost(cfg.Server.Host), cfg.Server.Port)
	fmt.Fprintf(cmd.OutOrStdout(), "miniserve control UI running at %s\n", url)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	if err := app.browser.Launch(url, !cfg.Browser.AutoOpen); err != nil {
		logger.Warn("Failed to open browser", slog.String("url", url), slog.String("error", err.Error()))
	}

	<-ctx.Done()

	app.session.Stop()
	if err := app.server.Stop(context.Background()); err != nil {
		return fmt.Errorf("stopping control UI: %w", err)
	}
	return nil
}

// loadConfig resolves the configuration layers and the flags the user set
func loadConfig(ctx context.Context, cmd *cobra.Command) (*entities.Config, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	loader := config.NewFileLoader()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loader = config.NewFileLoaderAt(path)
	}

	svc := services.NewConfigService(loader, config.NewConfigMerger(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	cfg, err := svc.LoadConfig(ctx, workingDir, collectFlags(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// validateServeConfig checks the settings serve needs beyond Config.Validate
func validateServeConfig(cfg *entities.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", cfg.Server.Port)
	}
	if cfg.Server.Host == "" {
		return errors.New("host cannot be empty")
	}
	if cfg.Server.Port == cfg.Simulator.GetPort() {
		return fmt.Errorf("control UI port %d is also the simulated server port", cfg.Server.Port)
	}
	return nil
}

// collectFlags returns only the flags explicitly set on the command line
func collectFlags(cmd *cobra.Command) ports.FlagOverrides {
	flags := make(ports.FlagOverrides)
	fs := cmd.Flags()

	for _, name := range []string{"port", "sim-port", "response-delay"} {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			v, _ := fs.GetInt(name)
			flags[name] = v
		}
	}
	if fs.Lookup("host") != nil && fs.Changed("host") {
		flags["host"], _ = fs.GetString("host")
	}
	for _, name := range []string{"no-browser", "sanitize", "verbose"} {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			v, _ := fs.GetBool(name)
			flags[name] = v
		}
	}

	return flags
}

// newLogger builds the process logger from the logging config
func newLogger(cfg entities.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(cfg.GetLevel())}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func slogLevel(level entities.LogLevel) slog.Level {
	switch level {
	case entities.LogLevelDebug:
		return slog.LevelDebug
	case entities.LogLevelWarn:
		return slog.LevelWarn
	case entities.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type app struct {
	session *services.Session
	server  *httpadapter.Server
	loop    *scheduler.EventLoop
	monitor *monitoring.Monitor
	browser *browser.Launcher
}

// buildApp wires the session, its adapters and the control UI server
func buildApp(cfg *entities.Config, logger *slog.Logger) (*app, error) {
	loop := scheduler.NewEventLoop(logger)
	monitor := monitoring.NewMonitor()
	hub := httpadapter.NewConnectionManager(httpadapter.NewHTTPLoggerFromConfig("ws", &cfg.Logging))

	opts := []services.SessionOption{
		services.WithSimulatorConfig(cfg.Simulator),
		services.WithScheduler(loop),
		services.WithObserver(monitor),
		services.WithEventPublisher(hub),
		services.WithLogger(logger),
	}
	if cfg.Preview.Sanitize {
		opts = append(opts, services.WithPreviewFilter(preview.NewSanitizer().Sanitize))
	}

	session, err := services.NewSession(opts...)
	if err != nil {
		loop.Close()
		return nil, fmt.Errorf("creating session: %w", err)
	}

	server := httpadapter.NewServer(session, hub, &cfg.Server,
		httpadapter.WithMetrics(monitor),
		httpadapter.WithLogger(httpadapter.NewHTTPLoggerFromConfig("server", &cfg.Logging)),
		httpadapter.WithVersion(Version),
	)

	return &app{
		session: session,
		server:  server,
		loop:    loop,
		monitor: monitor,
		browser: browser.NewLauncher(cfg.Browser.Browser),
	}, nil
}

func displayHost(host string) string {
	if host == "" || host == "0.0.0.0" {
		return "localhost"
	}
	return host
}
