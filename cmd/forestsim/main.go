package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/forestsim/internal/core/events/bus"
	"github.com/zeusync/forestsim/internal/core/observability/log"
	"github.com/zeusync/forestsim/internal/core/sim"
	"github.com/zeusync/forestsim/internal/core/system"
	"github.com/zeusync/forestsim/internal/injector"
	"github.com/zeusync/forestsim/internal/render/terminal"
	"github.com/zeusync/forestsim/internal/server"
	"github.com/zeusync/forestsim/pkg/concurrent"
)

type options struct {
	configPath string
	logLevel   string
	logFile    string
	headless   bool
	ticks      int
	runs       int
	listen     string
	frameRate  int
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("forestsim", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to a YAML simulation config")
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&o.logFile, "log-file", "", "log destination (default stderr, or forestsim.log with the terminal view)")
	fs.BoolVar(&o.headless, "headless", false, "run without the terminal view; requires -ticks or -listen")
	fs.IntVar(&o.ticks, "ticks", 0, "headless: run this many ticks as fast as possible, print the final frame and exit")
	fs.IntVar(&o.runs, "runs", 1, "headless: number of independently seeded worlds to run in parallel")
	fs.StringVar(&o.listen, "listen", "", "serve spectators on this address, e.g. 127.0.0.1:8080")
	fs.IntVar(&o.frameRate, "fps", 60, "terminal frames per second")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.ticks < 0 || o.runs < 1 || o.frameRate <= 0 {
		return o, errors.New("ticks must be >= 0, runs and fps must be positive")
	}
	if o.headless && o.ticks == 0 && o.listen == "" {
		return o, errors.New("-headless needs -ticks or -listen, otherwise nothing observes the run")
	}
	return o, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Provide().Error("forestsim failed", log.Error(err))
		fmt.Fprintln(os.Stderr, "forestsim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg := sim.DefaultConfig()
	if o.configPath != "" {
		if cfg, err = sim.LoadConfigFile(o.configPath); err != nil {
			return err
		}
	}
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}

	logOptions := log.Options{}
	switch {
	case o.logFile != "":
		logOptions.OutputPaths = []string{o.logFile}
	case !o.headless:
		// stderr would tear the terminal view.
		logOptions.OutputPaths = []string{"forestsim.log"}
	}

	srvConfig := server.DefaultServerConfig()
	if o.listen != "" {
		srvConfig.ListenAddr = o.listen
	}

	if o.headless && o.ticks > 0 {
		return runBatch(cfg, o, level, logOptions, stdout)
	}

	app, err := injector.InitializeApp(cfg, srvConfig, level, logOptions)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()
	return runInteractive(ctx, app, cfg, o)
}

// runBatch fast-forwards o.runs worlds by o.ticks each and prints their
// final frames as JSON lines, one per run in seed order.
func runBatch(cfg sim.Config, o options, level log.Level, logOptions log.Options, stdout io.Writer) error {
	logger := log.NewWithOptions(level, logOptions)
	defer func() { _ = logger.Sync() }()

	configs := make([]sim.Config, o.runs)
	for i := range configs {
		configs[i] = cfg
		if o.runs > 1 {
			configs[i].Seed = fmt.Sprintf("%s#%d", cfg.Seed, i)
		}
	}

	type result struct {
		frame sim.Frame
		err   error
	}
	start := time.Now()
	results := concurrent.ParallelMap(configs, len(configs), func(c sim.Config) result {
		world, err := sim.NewWorld(c, nil, logger.With(log.String("seed", c.Seed)))
		if err != nil {
			return result{err: err}
		}
		for i := 0; i < o.ticks; i++ {
			if err := world.Tick(); err != nil {
				return result{err: err}
			}
		}
		return result{frame: sim.Frame{Tick: world.TickCount(), Agents: world.Views()}}
	})

	enc := json.NewEncoder(stdout)
	var all error
	for i, r := range results {
		if r.err != nil {
			all = errors.Join(all, fmt.Errorf("run %d: %w", i, r.err))
			continue
		}
		if err := enc.Encode(r.frame); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	logger.Info("Batch finished",
		log.Int("runs", o.runs),
		log.Int("ticks", o.ticks),
		log.Duration("elapsed", time.Since(start)))
	return all
}

func runInteractive(ctx context.Context, app *injector.App, cfg sim.Config, o options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopConfig := system.LoopConfig{TickRate: cfg.TickRate, FrameRate: o.frameRate, MaxCatchUp: 5}
	var loopOpts []system.LoopOption
	if !o.headless {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		renderer := terminal.New(screen, cfg.Arena, app.World, app.Logger)
		if err := renderer.Start(); err != nil {
			return err
		}
		defer renderer.Close()
		loopOpts = append(loopOpts, system.WithRenderer(renderer.Render))
	}

	loop, err := system.NewLoop(loopConfig, app.World, app.Logger, loopOpts...)
	if err != nil {
		return err
	}

	events := app.World.Events()
	busObserver := bus.NewLogObserver(app.Logger)
	events.AddObserver(busObserver)
	defer events.RemoveObserver(busObserver)

	app.Logger.Info("Simulation starting",
		log.Int("agents", len(cfg.Population)),
		log.Int("tick_rate", cfg.TickRate),
		log.Bool("headless", o.headless),
		log.String("listen", o.listen))

	err = concurrent.Run(ctx,
		func(ctx context.Context) error {
			defer cancel()
			return loop.Run(ctx)
		},
		func(ctx context.Context) error {
			if o.listen == "" {
				return nil
			}
			return serveSpectators(ctx, app.Server)
		},
	)

	m := loop.Metrics()
	app.Logger.Info("Simulation stopped",
		log.Uint64("ticks", m.Ticks),
		log.Uint64("dropped", m.Dropped),
		log.Uint64("tick_errors", m.TickErrors))
	busObserver.LogSummary(events)
	return err
}

func serveSpectators(ctx context.Context, srv *server.Server) error {
	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
