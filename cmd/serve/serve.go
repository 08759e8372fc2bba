package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/ratewatch/cmd/env"
	"github.com/sig-0/ratewatch/logsink"
	"github.com/sig-0/ratewatch/metrics"
	pollconfig "github.com/sig-0/ratewatch/poll/config"
	"github.com/sig-0/ratewatch/server"
	"github.com/sig-0/ratewatch/server/config"
	"github.com/sig-0/ratewatch/storage/memory"
	"github.com/sig-0/ratewatch/tracker"
)

const defaultLogPath = "logs.txt"

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath     string
	pollConfigPath string
	logPath        string

	debug bool
}

// NewServeCmd creates the serve command
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags]",
		LongHelp:   "Polls the configured endpoints and serves the tracker API",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.StringVar(
		&c.pollConfigPath,
		"poll-config",
		"",
		"the path to the polling TOML configuration, if any (defaults to the built-in endpoint list)",
	)

	fs.StringVar(
		&c.logPath,
		"log-file",
		defaultLogPath,
		"the path to the append-only log file",
	)

	fs.BoolVar(
		&c.debug,
		"debug",
		false,
		"enables debug logging",
	)
}

// exec executes the serve command
func (c *serveCfg) exec(ctx context.Context, _ []string) error {
	// Read the server configuration, if any
	if c.configPath != "" {
		serverCfg, err := config.Read(c.configPath)
		if err != nil {
			return fmt.Errorf("unable to read server config, %w", err)
		}

		c.config = serverCfg
	}

	// Read the polling configuration, if any
	pollCfg := pollconfig.DefaultConfig()

	if c.pollConfigPath != "" {
		cfg, err := pollconfig.Read(c.pollConfigPath)
		if err != nil {
			return fmt.Errorf("unable to read poll config, %w", err)
		}

		pollCfg = cfg
	}

	if err := pollconfig.ValidateConfig(pollCfg); err != nil {
		return fmt.Errorf("invalid poll config, %w", err)
	}

	// Open the log sink
	sink, err := logsink.Open(c.logPath, logsink.DefaultQueueSize)
	if err != nil {
		return err
	}

	defer func() {
		_ = sink.Close()
	}()

	level := slog.LevelInfo
	if c.debug {
		level = slog.LevelDebug
	}

	// Create a new logger
	logger := logsink.NewLogger(level, os.Stdout, sink)

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	// Set up the metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		calls = tracker.New()
		store = memory.NewStorage()

		scheduler = newScheduler(
			pollCfg,
			calls,
			store,
			metrics.New(registry),
			logger,
		)
	)

	// Create the server instance
	s, err := server.New(
		calls,
		store,
		server.WithLogger(logger),
		server.WithConfig(c.config),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	s.Routes(func(router chi.Router) {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	})

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the polling service
	group.Go(func() error {
		return scheduler.Start(gCtx)
	})

	return group.Wait()
}
