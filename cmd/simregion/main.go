package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/simregion/game"
	"github.com/oomph-ac/simregion/settings"
	"github.com/oomph-ac/simregion/snapshot"
	"github.com/oomph-ac/simregion/worker"
	"github.com/oomph-ac/simregion/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the settings file (.toml or .yaml)")
	ticks := flag.Uint64("ticks", 0, "number of ticks to simulate, 0 runs until interrupted")
	restore := flag.Bool("restore", false, "load the world from the snapshot path instead of building the demo level")
	fast := flag.Bool("fast", false, "simulate ticks back to back instead of at the configured tick rate")
	flag.Parse()

	s, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(s.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(s, log, *ticks, *restore, *fast); err != nil {
		log.Error("simulation stopped", zap.Error(err))
		sentry.Flush(time.Second * 2)
		os.Exit(1)
	}
}

func loadSettings(path string) (settings.Settings, error) {
	if err := settings.SaveDefault(path); err == nil {
		fmt.Printf("wrote default settings to %s\n", path)
	}
	return settings.Load(path)
}

func newLogger(cfg settings.Logging) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func run(s settings.Settings, log *zap.Logger, ticks uint64, restore, fast bool) error {
	g := game.New(s, log)

	if s.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         s.Sentry.DSN,
			Environment: s.Sentry.Environment,
		}); err != nil {
			return fmt.Errorf("sentry init: %w", err)
		}
		defer sentry.Flush(time.Second * 2)
		g.SetSentryHub(sentry.CurrentHub())
	}

	if s.Debug.StatsView {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(s.Debug.StatsViewAddr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
		log.Info("stats view listening", zap.String("addr", s.Debug.StatsViewAddr))
	}

	if restore {
		st, err := snapshot.ReadFile(s.Snapshot.Path, world.New(game.WorldConfig(s)))
		if err != nil {
			return fmt.Errorf("restore %s: %w", s.Snapshot.Path, err)
		}
		g.Replace(st)
		log.Info("restored snapshot", zap.String("path", s.Snapshot.Path), zap.Int("entities", st.Count()))
	} else {
		hero := buildLevel(g)
		log.Info("built demo level", zap.Uint32("hero", hero), zap.Int("entities", g.Store().Count()))
	}

	pool := worker.NewPool(s.Snapshot.Workers, log.Named("snapshot"))
	defer pool.Close()
	opts := snapshot.Options{Level: s.Snapshot.Level}
	finish := func() error {
		// Queued snapshots must land before the final one replaces them.
		pool.Close()
		return writeFinal(g, log, s, opts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dt := 1 / float32(s.Simulation.TickRate)
	var tick <-chan time.Time
	if !fast {
		t := time.NewTicker(time.Second / time.Duration(s.Simulation.TickRate))
		defer t.Stop()
		tick = t.C
	}

	for n := uint64(0); ticks == 0 || n < ticks; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return finish()
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return finish()
		}

		stats, err := g.Update(script(g.Tick()), dt)
		if err != nil {
			return err
		}
		if stats.Tick%uint64(s.Simulation.TickRate) == 0 {
			log.Info("frame", stats.ZapFields()...)
		}
		if s.Snapshot.Interval != 0 && stats.Tick%s.Snapshot.Interval == 0 {
			g.World().RLock()
			snapshot.WriteFileAsync(pool, s.Snapshot.Path, g.Store(), opts, func(err error) {
				if err != nil {
					log.Error("snapshot failed", zap.Error(err))
				}
			})
			g.World().RUnlock()
		}
	}
	return finish()
}

func writeFinal(g *game.Game, log *zap.Logger, s settings.Settings, opts snapshot.Options) error {
	g.World().RLock()
	defer g.World().RUnlock()

	h := g.History()
	log.Info("simulation finished",
		zap.Uint64("ticks", g.Tick()),
		zap.Int("entities", g.Store().Count()),
		zap.Duration("mean_frame", h.MeanDuration()),
		zap.Duration("median_frame", h.MedianDuration()),
		zap.String("digest", fmt.Sprintf("%016x", snapshot.Digest(g.Store()))),
	)
	if err := snapshot.WriteFile(s.Snapshot.Path, g.Store(), opts); err != nil {
		return fmt.Errorf("final snapshot: %w", err)
	}
	log.Info("wrote snapshot", zap.String("path", s.Snapshot.Path))
	return nil
}

// buildLevel lays out two connected rooms on the ground floor with a stairwell up to a third room, and
// populates them. It returns the storage index of the hero.
func buildLevel(g *game.Game) uint32 {
	g.AddRoom(0, 0, 0, 17, 9, game.Doors{East: true})
	g.AddRoom(16, 0, 0, 17, 9, game.Doors{West: true})
	g.AddRoom(16, 0, 1, 17, 9, game.Doors{})
	g.AddStair(24, 3, 0)

	hero := g.AddHero(4, 4, 0)
	g.AddFamiliar(2, 6, 0)
	g.AddMonstar(12, 4, 0)
	g.AddMonstar(28, 6, 0)
	return hero
}

// script returns the input for the tick passed: the hero walks east through the doorway, throws its sword
// at the monstar in its way, and then paces back and forth.
func script(tick uint64) game.Input {
	var in game.Input
	switch phase := tick % 600; {
	case phase < 200:
		in.Move = mgl32.Vec2{1, 0}
	case phase < 300:
		in.Move = mgl32.Vec2{0, 0.5}
	case phase < 500:
		in.Move = mgl32.Vec2{-1, 0}
	default:
		in.Move = mgl32.Vec2{0, -0.5}
	}
	if tick%600 == 60 {
		in.Sword = mgl32.Vec2{1, 0}
	}
	return in
}
