package sim

import "log/slog"

// SystemSet is a stage of the tick. Sets run in declaration order and the
// bus is flushed after each one.
type SystemSet int

const (
	UIInput SystemSet = iota
	UserInput
	AIInput
	SelectionState
	SpawnEntities
	EntityUpdates
	ConvertEntities
	DespawnEntities
	numSystemSets
)

var systemSetNames = [...]string{
	"ui_input", "user_input", "ai_input", "selection_state",
	"spawn_entities", "entity_updates", "convert_entities", "despawn_entities",
}

func (s SystemSet) String() string {
	if s < 0 || s >= numSystemSets {
		return "unknown"
	}
	return systemSetNames[s]
}

// System advances one concern of the world by dt seconds.
type System func(w *World, dt float64)

type namedSystem struct {
	name string
	run  System
}

// Scheduler runs the systems of a world once per tick in a fixed order.
type Scheduler struct {
	world *World
	sets  [numSystemSets][]namedSystem
}

// NewScheduler returns a scheduler with every built-in subsystem
// registered. Input systems (directors, replayed player commands) are added
// by the owner with Add.
func NewScheduler(w *World) *Scheduler {
	s := &Scheduler{world: w}
	s.Add(EntityUpdates, "detect_attack_targets", detectAttackTargets)
	s.Add(EntityUpdates, "detect_convert_targets", detectConvertTargets)
	s.Add(EntityUpdates, "pursue_attacks", pursueAttacks)
	s.Add(EntityUpdates, "pursue_conversions", pursueConversions)
	s.Add(EntityUpdates, "construct_sites", constructSites)
	s.Add(EntityUpdates, "generate_energy", generateEnergy)
	s.Add(EntityUpdates, "produce_units", produceUnits)
	s.Add(EntityUpdates, "move_units", moveUnits)
	s.Add(ConvertEntities, "convert_unfaithful", convertUnfaithful)
	s.Add(DespawnEntities, "despawn_dead", despawnDead)
	return s
}

// Add appends a system to a set. Systems within a set run in the order added.
func (s *Scheduler) Add(set SystemSet, name string, sys System) {
	s.sets[set] = append(s.sets[set], namedSystem{name: name, run: sys})
	slog.Debug("system registered", "set", set, "system", name)
}

// Tick runs one simulation step of dt seconds.
func (s *Scheduler) Tick(dt float64) {
	w := s.world
	for set := range s.sets {
		for _, sys := range s.sets[set] {
			sys.run(w, dt)
		}
		w.bus.Flush()
	}
	w.tick++
}
