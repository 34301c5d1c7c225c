package director

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/model"
	"github.com/nstehr/animancer/tuning"
)

// Config is the per-team pacing and placement of a Director.
type Config struct {
	Team model.Team
	// Facing orients the formations the director orders; its length is the
	// spacing multiplier for movement steps.
	Facing model.Vec2
	Arena  model.Arena

	StepInterval        float64
	ForceForward        float64
	MoveJitter          float64
	BuildOffset         float64
	BuildDirectionScale float64
}

// ConfigFromTuning builds a Config for team from the tuning file.
func ConfigFromTuning(t tuning.Tuning, team model.Team, facing model.Vec2) Config {
	return Config{
		Team:                team,
		Facing:              facing,
		Arena:               t.Arena,
		StepInterval:        t.Director.StepInterval,
		ForceForward:        t.Director.ForceForward,
		MoveJitter:          t.Director.MoveJitter,
		BuildOffset:         t.Director.BuildOffset,
		BuildDirectionScale: t.Director.BuildDirectionScale,
	}
}

// State is everything the director mutates between ticks.
type State struct {
	CurrentPhase int
	Cooldown     float64
	ForceForward float64
	Sets         []*InstructionSet
	// Loops counts wraps from the final phase back to the loop phase.
	Loops int
}

// Director plays one team's scripted plan. It reads the world through
// World, acts only by emitting commands, and is ticked by its owner on the
// simulation goroutine.
type Director struct {
	cfg        Config
	loopPhase  int
	finalPhase int
	state      *State

	world  World
	census Census
	out    command.Emitter
	rng    *rand.Rand
}

// New validates cat and creates a director at phase 0 with no cooldown
// pending. If world also implements Census, skip_when guards can query it.
func New(cfg Config, cat *Catalogue, world World, out command.Emitter, rng *rand.Rand) (*Director, error) {
	if cat == nil {
		return nil, errors.New("nil catalogue")
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalogue: %w", err)
	}
	d := &Director{
		cfg:        cfg,
		loopPhase:  cat.LoopPhase,
		finalPhase: cat.FinalPhase,
		world:      world,
		out:        out,
		rng:        rng,
		state: &State{
			ForceForward: cfg.ForceForward,
			Sets:         cat.instantiate(),
		},
	}
	if c, ok := world.(Census); ok {
		d.census = c
	}
	return d, nil
}

// State exposes the director state for inspection.
func (d *Director) State() *State { return d.state }

// Team returns the team the director plays.
func (d *Director) Team() model.Team { return d.cfg.Team }

// Tick advances the script by dt seconds.
func (d *Director) Tick(dt float64) {
	s := d.state
	s.Cooldown -= dt
	s.ForceForward -= dt
	if s.Cooldown > 0 {
		return
	}
	s.Cooldown = d.cfg.StepInterval

	ongoing := false
	advanced := false
	for _, set := range s.Sets {
		if set.Phase != s.CurrentPhase || set.Complete {
			continue
		}
		ongoing = true

		if set.CurrentStep >= len(set.Steps) {
			set.Complete = true
			continue
		}
		if set.CurrentStep == 0 && len(set.Dependants) == 0 && d.shouldSkip(set) {
			set.Complete = true
			advanced = true
			slog.Info("instruction set skipped", "team", d.cfg.Team, "set", set.Name, "phase", set.Phase)
			continue
		}

		if len(set.Dependants) == 0 {
			// Fresh dependants are first checked on the next active tick,
			// after subsystems have consumed the commands.
			set.Dependants = d.dispatch(set.Steps[set.CurrentStep])
		} else {
			set.Dependants = resolve(d.world, set.Dependants)
		}

		if len(set.Dependants) > 0 && s.ForceForward > 0 {
			continue
		}
		if len(set.Dependants) > 0 {
			slog.Warn("forcing instruction step",
				"team", d.cfg.Team,
				"set", set.Name,
				"step", set.CurrentStep,
				"outstanding", len(set.Dependants),
			)
			set.Dependants = nil
		}
		set.CurrentStep++
		advanced = true
		if set.CurrentStep >= len(set.Steps) {
			set.Complete = true
			slog.Info("instruction set complete", "team", d.cfg.Team, "set", set.Name, "phase", set.Phase)
		}
	}

	if !ongoing {
		d.nextPhase()
	}
	if advanced {
		s.ForceForward = d.cfg.ForceForward
	}
}

func (d *Director) nextPhase() {
	s := d.state
	s.CurrentPhase++
	if s.CurrentPhase < d.finalPhase {
		slog.Info("phase advanced", "team", d.cfg.Team, "phase", s.CurrentPhase)
		return
	}

	s.CurrentPhase = d.loopPhase
	s.Loops++
	for _, set := range s.Sets {
		if set.Phase >= d.loopPhase && set.Phase < d.finalPhase {
			set.reset()
		}
	}
	slog.Info("campaign looped", "team", d.cfg.Team, "phase", s.CurrentPhase, "loops", s.Loops)
}

// shouldSkip evaluates the set's guard. Evaluation errors never skip.
func (d *Director) shouldSkip(set *InstructionSet) bool {
	if set.skip == nil {
		return false
	}
	env := Env{Team: string(d.cfg.Team), Phase: d.state.CurrentPhase, census: d.census}
	result, err := vm.Run(set.skip, env)
	if err != nil {
		slog.Warn("skip_when error", "set", set.Name, "error", err)
		return false
	}
	skip, ok := result.(bool)
	return ok && skip
}

// dispatch emits the commands of one step and returns the dependants the
// step waits on.
func (d *Director) dispatch(in Instruction) []Dependency {
	team := d.cfg.Team
	slog.Debug("dispatching instruction", "team", team, "instruction", in.String())

	switch in.Kind {
	case KindSelection:
		d.emit(command.SelectRegion{Rect: in.Rect, Team: team})
		return nil

	case KindMovement:
		target := d.cfg.Arena.Clamp(in.Target.Add(d.jitter()))
		d.emit(command.IssueMoveOrder{
			Position:  target,
			Direction: d.cfg.Facing,
			Formation: model.Ringed,
			Team:      team,
		})
		return expect(d.world.SelectedUnits(team), MovingEquals, false)

	case KindBuild:
		d.emit(command.PlaceConstructionSite{
			Kind:     in.Structure,
			Position: in.Position,
			Team:     team,
			Effort:   in.Cost,
		})
		offset := model.Vec2{X: d.cfg.BuildOffset}.Rotate(d.rng.Float64() * 2 * math.Pi)
		d.emit(command.IssueMoveOrder{
			Position:  d.cfg.Arena.Clamp(in.Position.Add(offset)),
			Direction: d.cfg.Facing.Scale(d.cfg.BuildDirectionScale),
			Formation: model.Ringed,
			Team:      team,
		})
		return expect(d.world.SelectedUnits(team), IdleEquals, true)

	case KindProduce:
		for range in.Count {
			d.emit(command.RequestProductionIncrease{Kind: in.Production, Team: team})
		}
		if in.Count == 0 {
			return nil
		}
		return expect(d.world.SelectedStructures(team), IdleEquals, true)
	}
	return nil
}

func (d *Director) jitter() model.Vec2 {
	j := d.cfg.MoveJitter
	return model.Vec2{
		X: (d.rng.Float64()*2 - 1) * j,
		Y: (d.rng.Float64()*2 - 1) * j,
	}
}

func (d *Director) emit(cmd command.Command) {
	if err := d.out.Emit(cmd); err != nil {
		slog.Error("command emit failed", "team", d.cfg.Team, "command", cmd.CommandType(), "error", err)
	}
}
