package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/sunflower/internal/audio"
	"github.com/iburimskiy/sunflower/internal/bridge"
	"github.com/iburimskiy/sunflower/internal/config"
	"github.com/iburimskiy/sunflower/internal/control"
	"github.com/iburimskiy/sunflower/internal/game"
	"github.com/iburimskiy/sunflower/internal/logging"
	"github.com/iburimskiy/sunflower/internal/pose"
	"github.com/iburimskiy/sunflower/internal/render"
)

const version = "0.3.0"

// trackingWindow is how recently a fingertip must have been seen for the HUD
// to report the hand as tracked.
const trackingWindow = 500 * time.Millisecond

func printVersion() {
	fmt.Printf("sunflower v%s\n", version)
	fmt.Println("Hand-driven phyllotaxis sunflower")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  sunflower [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Renders a golden-angle field of glowing petals. The index fingertip seen")
	fmt.Println("  by the webcam turns, opens and tilts the flower. Open the bridge URL in a")
	fmt.Println("  browser to start hand tracking.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        YAML config file; reloaded live when it changes (default: built-in defaults)")
	fmt.Println()
	fmt.Println("  -source string")
	fmt.Printf("        Pose source: %s|%s|%s (default %q)\n", config.SourceBridge, config.SourcePointer, config.SourceNone, config.SourceBridge)
	fmt.Println()
	fmt.Println("  -listen string")
	fmt.Printf("        Landmark bridge listen address (default %q)\n", config.BridgeAddr)
	fmt.Println()
	fmt.Println("  -petals int")
	fmt.Printf("        Number of petals (default %d)\n", config.PetalCount)
	fmt.Println()
	fmt.Println("  -damping float")
	fmt.Printf("        Fraction of the remaining gap closed per frame, in (0,1) (default %.2f)\n", config.Damping)
	fmt.Println()
	fmt.Println("  -audio")
	fmt.Println("        Play a drone that follows the flower")
	fmt.Println()
	fmt.Println("  -no-dialogs")
	fmt.Println("        Do not show a native warning when hand tracking is unavailable")
	fmt.Println()
	fmt.Println("  -headless")
	fmt.Println("        Run the render loop without a window")
	fmt.Println()
	fmt.Println("  -ticks int")
	fmt.Println("        Headless only: stop after this many frames (default 0, run until interrupted)")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("KEYS:")
	fmt.Println("  Space  toggle HUD")
	fmt.Println("  M      mute/unmute the drone")
	fmt.Println("  Esc/Q  quit")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Webcam tracking through the browser bridge")
	fmt.Println("  sunflower")
	fmt.Println()
	fmt.Println("  # Drive the flower with the mouse")
	fmt.Println("  sunflower -source pointer")
	fmt.Println()
	fmt.Println("  # Smoke test without a window")
	fmt.Println("  sunflower -headless -ticks 600 -source none -log-level debug")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath = flag.String("config", "", "YAML config file")
		source     = flag.String("source", config.SourceBridge, "Pose source: bridge|pointer|none")
		listen     = flag.String("listen", config.BridgeAddr, "Landmark bridge listen address")
		petals     = flag.Int("petals", config.PetalCount, "Number of petals")
		damping    = flag.Float64("damping", config.Damping, "Smoothing factor per frame, in (0,1)")
		withAudio  = flag.Bool("audio", false, "Play a drone that follows the flower")
		noDialogs  = flag.Bool("no-dialogs", false, "Do not show native warning dialogs")
		headless   = flag.Bool("headless", false, "Run without a window")
		ticks      = flag.Int("ticks", 0, "Headless only: number of frames to run (0 = until interrupted)")
		logLevel   = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		_          = flag.Bool("version", false, "Print version and exit")
		_          = flag.Bool("help", false, "Print help message")
	)
	flag.Usage = printUsage
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	// Flags only override the file when given explicitly.
	var o config.FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			o.Source = source
		case "listen":
			o.Listen = listen
		case "petals":
			o.Petals = petals
		case "damping":
			o.Damping = damping
		case "audio":
			o.Audio = withAudio
		case "no-dialogs":
			o.NoDialogs = noDialogs
		case "log-level":
			o.LogLevel = logLevel
		}
	})
	o.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(level, os.Stderr)

	logger.Info("sunflower starting",
		"version", version,
		"petals", cfg.Field.Petals,
		"source", cfg.Pose.Source,
		"damping", cfg.Motion.Damping,
		"headless", *headless,
		"audio", cfg.Audio.Enabled,
	)

	if err := run(cfg, *configPath, *headless, *ticks, logger); err != nil {
		logger.Error("sunflower failed", "error", err)
		os.Exit(1)
	}
}

// app holds what both the windowed and the headless mode share.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	register *control.Register
	tuning   *config.LiveTuning
	adapter  *pose.Adapter
	pointer  *pose.PointerSource
	player   *audio.Player
}

func run(cfg config.Config, configPath string, headless bool, ticks int, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		register: control.NewRegister(control.Neutral()),
		tuning:   config.NewLiveTuning(cfg.Tuning()),
	}

	if configPath != "" {
		g.Go(func() error {
			err := config.Watch(ctx, configPath, logger, func(c config.Config) {
				a.tuning.Store(c.Tuning())
			})
			if err != nil {
				logger.Warn("config hot reload disabled", "error", err)
			}
			return nil
		})
	}

	a.startPose(ctx, !headless)
	defer a.stopPose()

	if cfg.Audio.Enabled {
		p := audio.NewPlayer(audio.Config{
			SampleRate: cfg.Audio.SampleRate,
			BaseFreq:   cfg.Audio.BaseFreq,
			Volume:     cfg.Audio.Volume,
		}, logger)
		if err := p.Start(); err != nil {
			logger.Warn("audio unavailable, continuing silently", "error", err)
		} else {
			a.player = p
			defer p.Close()
		}
	}

	var runErr error
	if headless {
		runErr = a.runHeadless(ctx, g, ticks)
	} else {
		runErr = a.runWindow(ctx, g)
	}
	cancel()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// startPose brings up the configured pose source. Failure is not fatal: the
// flower keeps rendering towards the neutral targets.
func (a *app) startPose(ctx context.Context, interactive bool) {
	var src pose.Source
	switch a.cfg.Pose.Source {
	case config.SourceBridge:
		src = bridge.New(bridge.Config{
			Addr:    a.cfg.Bridge.Listen,
			Options: a.cfg.Pose.Options,
			Width:   a.cfg.Pose.CaptureWidth,
			Height:  a.cfg.Pose.CaptureHeight,
		}, a.logger)
	case config.SourcePointer:
		a.pointer = pose.NewPointerSource()
		src = a.pointer
	default:
		a.logger.Info("hand tracking disabled")
		return
	}

	a.adapter = pose.NewAdapter(src, a.register, a.logger)
	if err := a.adapter.Start(ctx); err != nil {
		a.adapter = nil
		a.logger.Warn("hand tracking unavailable, rendering with neutral pose", "error", err)
		if interactive && a.cfg.UI.Dialogs {
			go func() {
				msg := "Hand tracking could not be started. The sunflower will keep rendering without it.\n\n" + err.Error()
				if err := zenity.Warning(msg, zenity.Title("Sunflower")); err != nil && !errors.Is(err, zenity.ErrCanceled) {
					a.logger.Debug("warning dialog failed", "error", err)
				}
			}()
		}
	}
}

func (a *app) stopPose() {
	if a.adapter != nil {
		a.adapter.Stop()
	}
}

func (a *app) status() game.Status {
	st := game.Status{Source: a.cfg.Pose.Source, Level: -1}
	if a.adapter != nil {
		st.Tracking = a.adapter.Tracking(time.Now(), trackingWindow)
	}
	if a.player != nil {
		st.Level = a.player.Level()
	}
	return st
}

func (a *app) follow(d *game.Driver) {
	if a.player != nil {
		a.player.Follow(d.State().Bloom, d.Light())
	}
}

func (a *app) runHeadless(ctx context.Context, g *errgroup.Group, ticks int) error {
	surface, err := render.NewHeadlessSurface(a.cfg.Window.Width, a.cfg.Window.Height)
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	driver, err := game.NewDriver(game.SettingsFrom(a.cfg), a.register, a.tuning, surface, a.logger)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	loop := game.NewLoop(driver, surface, a.follow, a.logger)
	g.Go(func() error {
		<-ctx.Done()
		loop.Stop()
		return nil
	})

	if ticks > 0 {
		err = loop.RunTicks(ticks, game.DefaultInterval)
	} else {
		err = loop.Run(ctx, game.DefaultInterval)
	}

	st := driver.Stats()
	s := driver.State()
	a.logger.Info("headless run finished",
		"ticks", st.Ticks,
		"frames", st.Frames,
		"dropped", st.Dropped,
		"visible", surface.Visible(),
		"rotation", s.Rotation,
		"tilt", s.Tilt,
		"bloom", s.Bloom,
	)
	return err
}

func (a *app) runWindow(ctx context.Context, g *errgroup.Group) error {
	surface, err := render.NewEbitenSurface(a.cfg.Window.Width, a.cfg.Window.Height)
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	driver, err := game.NewDriver(game.SettingsFrom(a.cfg), a.register, a.tuning, surface, a.logger)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}

	opts := game.Options{
		Pointer: a.pointer,
		Status:  a.status,
		HUD:     a.cfg.UI.HUD,
	}
	if a.player != nil {
		opts.Sound = a.player
	}
	gm := game.NewGame(driver, surface, opts, a.logger)

	g.Go(func() error {
		<-ctx.Done()
		gm.Stop()
		return nil
	})

	ebiten.SetWindowSize(a.cfg.Window.Width, a.cfg.Window.Height)
	ebiten.SetWindowTitle(a.cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(gm); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run game: %w", err)
	}
	if err := gm.Err(); err != nil {
		return err
	}
	return nil
}
