package game

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/simregion/entity"
	"github.com/oomph-ac/simregion/oerror"
	"github.com/oomph-ac/simregion/settings"
	"github.com/oomph-ac/simregion/simulation"
	"github.com/oomph-ac/simregion/store"
	"github.com/oomph-ac/simregion/terrain"
	"github.com/oomph-ac/simregion/world"
	"go.uber.org/zap"
)

// historySize is the number of frames kept for reporting.
const historySize = 256

// Game drives the simulation: every Update builds a region around the camera, runs the behaviour of each
// updatable entity in it and commits it back to the store.
type Game struct {
	log *zap.Logger
	s   settings.Settings

	world *world.World
	store *store.Store
	rules *simulation.Rules
	arena *simulation.Arena

	camera  *Camera
	volumes volumes
	history *History
	hub     *sentry.Hub

	tick uint64
	err  error
}

// New creates a game with an empty world configured by s.
func New(s settings.Settings, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := WorldConfig(s)
	w := world.New(cfg)
	return &Game{
		log:     log,
		s:       s,
		world:   w,
		store:   store.New(w),
		rules:   simulation.NewRules(),
		arena:   simulation.NewArena(SimulationOptions(s, log)),
		camera:  &Camera{},
		volumes: newVolumes(cfg),
		history: NewHistory(historySize),
	}
}

// WorldConfig returns the world geometry configured by s.
func WorldConfig(s settings.Settings) world.Config {
	return world.Config{
		TileSideInMeters:  s.World.TileSideInMeters,
		TileDepthInMeters: s.World.TileDepthInMeters,
		TilesPerChunk:     s.World.TilesPerChunk,
	}
}

// SimulationOptions returns the solver options configured by s.
func SimulationOptions(s settings.Settings, log *zap.Logger) simulation.Options {
	return simulation.Options{
		MaxEntityRadius:   s.Simulation.MaxEntityRadius,
		MaxEntityVelocity: s.Simulation.MaxEntityVelocity,
		VerticalMargin:    s.Simulation.VerticalMargin,
		Capacity:          s.Simulation.Capacity,
		Gravity:           s.Simulation.Gravity,
		StepHeight:        s.Simulation.StepHeight,
		Restitution:       s.Simulation.Restitution,
		MaxIterations:     s.Simulation.MaxIterations,
		Terrain:           terrain.Stairs{},
		Log:               log.Named("solver"),
		DebugSolver:       s.Debug.Solver,
	}
}

// SetSentryHub makes the game report failed frames to the hub passed.
func (g *Game) SetSentryHub(hub *sentry.Hub) {
	g.hub = hub
}

// World returns the spatial index of the game.
func (g *Game) World() *world.World {
	return g.world
}

// Store returns the entity store of the game. It may only be used while holding the world lock.
func (g *Game) Store() *store.Store {
	return g.store
}

// Rules returns the pairwise collision rules of the game.
func (g *Game) Rules() *simulation.Rules {
	return g.rules
}

// Camera returns the camera of the game.
func (g *Game) Camera() *Camera {
	return g.camera
}

// History returns the stats of the most recent frames.
func (g *Game) History() *History {
	return g.history
}

// Tick returns the number of frames simulated so far.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Entity returns a copy of the stored entity with the index passed.
func (g *Game) Entity(index uint32) entity.Low {
	g.world.RLock()
	defer g.world.RUnlock()
	return *g.store.Low(index)
}

// Replace swaps the game's entities, and the world indexing them, for the store passed. Rules are
// dropped. The camera keeps following the same storage index if it still holds a hero, and otherwise
// follows the first hero in the store.
func (g *Game) Replace(st *store.Store) {
	g.world.Lock()
	defer g.world.Unlock()

	g.store = st
	g.world = st.World()
	g.rules = simulation.NewRules()

	follow := g.camera.follow
	if follow == 0 || int(follow) > st.Count() || st.Low(follow).Sim.Type != entity.TypeHero {
		follow = 0
		st.Each(func(index uint32, low *entity.Low) {
			if follow == 0 && low.Sim.Type == entity.TypeHero {
				follow = index
			}
		})
	}
	g.camera.follow = follow
	if follow != 0 {
		g.camera.P = st.Low(follow).P
	}
	g.err = nil
}

// Update simulates one frame of dt seconds with the input passed. An invariant violation during the
// frame leaves the world in an unknown state: the error is reported and every later call fails with it.
func (g *Game) Update(in Input, dt float32) (stats FrameStats, err error) {
	if g.err != nil {
		return FrameStats{}, g.err
	}
	start := time.Now()

	g.world.Lock()
	defer g.world.Unlock()
	defer g.arena.Reset()
	defer func() {
		if v := recover(); v != nil {
			g.err = oerror.FromPanic(v)
			err = g.err
			g.log.Error("frame failed", zap.Uint64("tick", g.tick), zap.Error(err))
			if g.hub != nil {
				g.hub.Recover(v)
				g.hub.Flush(time.Second * 2)
			}
		}
	}()

	region := simulation.BeginSim(g.arena, g.store, g.camera.P, cameraBounds(g.s.Camera, g.world.Config()), dt)
	stats.Entities = region.Len()

	entities := region.Entities()
	for i := range entities {
		e := &entities[i]
		if !e.Updatable {
			continue
		}
		stats.Updatable++
		if g.updateEntity(region, e, in, dt) {
			stats.Moved++
		}
	}
	simulation.EndSim(region, g.camera)

	g.tick++
	stats.Tick = g.tick
	stats.Rules = g.rules.Len()
	stats.World = g.world.Stats()
	stats.Camera = g.camera.P
	stats.Duration = time.Since(start)
	g.history.Add(stats)

	g.log.Debug("frame", stats.ZapFields()...)
	return stats, nil
}
