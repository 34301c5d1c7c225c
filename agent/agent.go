package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/director"
	"github.com/nstehr/animancer/model"
	"github.com/nstehr/animancer/sim"
	"github.com/nstehr/animancer/tuning"
)

// Options configures a headless match.
type Options struct {
	Tuning    tuning.Tuning
	Catalogue *director.Catalogue
	Seed      int64
	// Trace, when set, receives the zstd command trace of the CPU director.
	Trace io.Writer
}

// Match owns one battlefield, the scheduler driving it and the CPU director.
// It is single-goroutine: Step and Run must not be called concurrently.
type Match struct {
	ID   string
	Seed int64

	world    *sim.World
	sched    *sim.Scheduler
	cpu      *director.Director
	recorder *command.Recorder
	dt       float64

	prev      map[model.Team]sim.Snapshot
	prevLoops int
	events    []Event
}

// NewMatch spawns the standard scene and wires the CPU director into the
// AI input set.
func NewMatch(opts Options) (*Match, error) {
	// Validate clamps in place; keep the caller's cost table untouched.
	opts.Tuning.Producer.Costs = maps.Clone(opts.Tuning.Producer.Costs)
	opts.Tuning.Validate()
	if opts.Catalogue == nil {
		cat, err := director.DefaultCatalogue()
		if err != nil {
			return nil, fmt.Errorf("default catalogue: %w", err)
		}
		opts.Catalogue = cat
	}

	m := &Match{
		ID:    uuid.NewString(),
		Seed:  opts.Seed,
		world: sim.NewWorld(opts.Tuning),
		dt:    opts.Tuning.Step(),
		prev:  make(map[model.Team]sim.Snapshot),
	}
	m.sched = sim.NewScheduler(m.world)
	sim.SpawnScene(m.world)

	var out command.Emitter = m.world.Bus()
	if opts.Trace != nil {
		rec, err := command.NewRecorder(opts.Trace, out, command.Header{
			MatchID: m.ID,
			Seed:    opts.Seed,
			Teams:   []string{string(model.CPU)},
		})
		if err != nil {
			return nil, fmt.Errorf("start trace: %w", err)
		}
		m.recorder = rec
		out = rec
	}

	cfg := director.ConfigFromTuning(opts.Tuning, model.CPU, model.Vec2{X: 0, Y: -1})
	cpu, err := director.New(cfg, opts.Catalogue, m.world, out, rand.New(rand.NewSource(opts.Seed)))
	if err != nil {
		if m.recorder != nil {
			m.recorder.Close()
		}
		return nil, err
	}
	m.cpu = cpu
	m.sched.Add(sim.AIInput, "director_cpu", func(_ *sim.World, dt float64) {
		m.cpu.Tick(dt)
	})

	for _, team := range []model.Team{model.Human, model.CPU} {
		m.prev[team] = m.world.Snapshot(team)
	}

	slog.Info("match created", "match", m.ID, "seed", m.Seed, "dt", m.dt, "sets", len(opts.Catalogue.Sets))
	return m, nil
}

// World exposes the battlefield, mostly for reporting.
func (m *Match) World() *sim.World { return m.world }

// Director returns the CPU director.
func (m *Match) Director() *director.Director { return m.cpu }

// Events returns every match event detected so far.
func (m *Match) Events() []Event { return m.events }

// Commands returns how many commands were recorded, or 0 without a trace.
func (m *Match) Commands() int {
	if m.recorder == nil {
		return 0
	}
	return m.recorder.Count()
}

// Step advances the match by one fixed simulation step. Match events are
// checked once per simulated second.
func (m *Match) Step() {
	if m.recorder != nil {
		m.recorder.SetTick(m.world.Tick())
	}
	m.sched.Tick(m.dt)

	if m.world.Tick()%m.world.Tuning().TickRateHz == 0 {
		m.checkEvents()
	}
}

// Run steps the match ticks times. With realtime set, steps are paced by a
// ticker at the tuned tick rate; otherwise they run back to back. Run stops
// early when ctx is cancelled and returns ctx.Err().
func (m *Match) Run(ctx context.Context, ticks int, realtime bool) error {
	var pace <-chan time.Time
	if realtime {
		ticker := time.NewTicker(time.Duration(m.dt * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}

	for i := 0; i < ticks; i++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		m.Step()
	}
	return nil
}

// Close flushes the command trace, if any. It does not close the trace writer.
func (m *Match) Close() error {
	if m.recorder == nil {
		return nil
	}
	if err := m.recorder.Close(); err != nil {
		return fmt.Errorf("close trace: %w", err)
	}
	return nil
}

func (m *Match) checkEvents() {
	loops := m.cpu.State().Loops
	for _, team := range []model.Team{model.Human, model.CPU} {
		cur := m.world.Snapshot(team)
		prev := m.prev[team]
		for _, ev := range detectEvents(team, &prev, cur) {
			m.record(ev)
		}
		m.prev[team] = cur
	}

	if loops > m.prevLoops {
		m.record(Event{
			Kind:   EventCampaignLooped,
			Team:   model.CPU,
			Tick:   m.world.Tick(),
			Detail: fmt.Sprintf("Campaign looped back to phase %d (loop %d)", m.cpu.State().CurrentPhase, loops),
		})
	}
	m.prevLoops = loops
}

func (m *Match) record(ev Event) {
	m.events = append(m.events, ev)
	slog.Info("match event", "kind", ev.Kind, "team", ev.Team, "tick", ev.Tick, "detail", ev.Detail)
}
