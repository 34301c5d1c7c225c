package sim

import (
	"github.com/nstehr/animancer/model"
	"github.com/nstehr/animancer/tuning"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var (
	unitQuery      = donburi.NewQuery(filter.Contains(Unit, Position, Team))
	structureQuery = donburi.NewQuery(filter.Contains(Structure, Position, Team))
	siteQuery      = donburi.NewQuery(filter.Contains(Site, Position, Team))
	// selectableQuery covers units, structures and construction sites.
	selectableQuery = donburi.NewQuery(filter.Contains(Selectable, Position, Team))
)

// World is the simulated battlefield: a donburi world, its command bus and
// the tuning every subsystem reads.
type World struct {
	ecs    donburi.World
	bus    *Bus
	tuning tuning.Tuning
	state  donburi.Entity
	tick   int
}

// NewWorld creates an empty battlefield with every team's starting energy
// and all command handlers subscribed.
func NewWorld(t tuning.Tuning) *World {
	ecs := donburi.NewWorld()
	w := &World{
		ecs:    ecs,
		bus:    newBus(ecs),
		tuning: t,
	}

	w.state = ecs.Create(matchState)
	matchState.SetValue(ecs.Entry(w.state), MatchStateData{
		Energy: map[model.Team]float64{
			model.Human: t.StartingEnergy,
			model.CPU:   t.StartingEnergy,
		},
		SelectedUnits:      make(map[model.Team][]donburi.Entity),
		SelectedStructures: make(map[model.Team][]donburi.Entity),
		Converted:          make(map[model.Team]int),
	})

	w.subscribe()
	return w
}

func (w *World) subscribe() {
	SelectRegionEvent.Subscribe(w.ecs, w.onSelectRegion)
	PlaceConstructionSiteEvent.Subscribe(w.ecs, w.onPlaceConstructionSite)
	IssueMoveOrderEvent.Subscribe(w.ecs, w.onIssueMoveOrder)
	ProductionIncreaseEvent.Subscribe(w.ecs, w.onProductionIncrease)
	MoveEntitiesEvent.Subscribe(w.ecs, w.onMoveEntities)
	AssignGeneratorWorkersEvent.Subscribe(w.ecs, w.onAssignGeneratorWorkers)
	AssignAttackPursuitEvent.Subscribe(w.ecs, w.onAssignAttackPursuit)
	AssignConvertPursuitEvent.Subscribe(w.ecs, w.onAssignConvertPursuit)
	StructurePlacedEvent.Subscribe(w.ecs, w.onStructurePlaced)
	UnitProducedEvent.Subscribe(w.ecs, w.onUnitProduced)
}

// Bus returns the command surface shared by the directors and player input.
func (w *World) Bus() *Bus { return w.bus }

// ECS exposes the underlying donburi world.
func (w *World) ECS() donburi.World { return w.ecs }

func (w *World) Tuning() tuning.Tuning { return w.tuning }

// Tick is the number of completed simulation steps.
func (w *World) Tick() int { return w.tick }

func (w *World) match() *MatchStateData {
	return matchState.Get(w.ecs.Entry(w.state))
}

// entry returns the entry for e, or nil once e has been removed.
func (w *World) entry(e donburi.Entity) *donburi.Entry {
	if !w.ecs.Valid(e) {
		return nil
	}
	return w.ecs.Entry(e)
}

// Idle reports the idle flag of e; ok is false when e no longer exists.
func (w *World) Idle(e donburi.Entity) (bool, bool) {
	entry := w.entry(e)
	if entry == nil || !entry.HasComponent(Idle) {
		return false, false
	}
	return *Idle.Get(entry), true
}

// Moving reports the moving flag of e; ok is false when e no longer exists.
func (w *World) Moving(e donburi.Entity) (bool, bool) {
	entry := w.entry(e)
	if entry == nil || !entry.HasComponent(Moving) {
		return false, false
	}
	return *Moving.Get(entry), true
}

// SelectedUnits returns the team's live selected units.
func (w *World) SelectedUnits(team model.Team) []donburi.Entity {
	return w.liveSelection(w.match().SelectedUnits[team], team)
}

// SelectedStructures returns the team's live selected structures and sites.
func (w *World) SelectedStructures(team model.Team) []donburi.Entity {
	return w.liveSelection(w.match().SelectedStructures[team], team)
}

// liveSelection drops entities that died or changed sides since selection.
func (w *World) liveSelection(sel []donburi.Entity, team model.Team) []donburi.Entity {
	out := make([]donburi.Entity, 0, len(sel))
	for _, e := range sel {
		entry := w.entry(e)
		if entry == nil || *Team.Get(entry) != team {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (w *World) Energy(team model.Team) float64 {
	return w.match().Energy[team]
}

func (w *World) addEnergy(team model.Team, v float64) {
	w.match().Energy[team] += v
}

// SetEnergy overrides a team's energy.
func (w *World) SetEnergy(team model.Team, v float64) {
	w.match().Energy[team] = v
}

func (w *World) UnitCount(team model.Team, kind model.UnitKind) int {
	n := 0
	unitQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if *Team.Get(entry) == team && Unit.Get(entry).Kind == kind {
			n++
		}
	})
	return n
}

func (w *World) StructureCount(team model.Team, kind model.StructureKind) int {
	n := 0
	structureQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if *Team.Get(entry) == team && Structure.Get(entry).Kind == kind {
			n++
		}
	})
	return n
}

func (w *World) SiteCount(team model.Team, kind model.StructureKind) int {
	n := 0
	siteQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if *Team.Get(entry) == team && Site.Get(entry).Kind == kind {
			n++
		}
	})
	return n
}

// SpawnUnit creates a unit of kind for team at pos with its tuned stats.
func (w *World) SpawnUnit(kind model.UnitKind, team model.Team, pos model.Vec2) donburi.Entity {
	stats := w.tuning.UnitStats(kind)
	comps := []donburi.IComponentType{
		Position, Team, Selectable, Health, Idle, Moving,
		Unit, Moveable, Faith,
	}
	switch kind {
	case model.Worker, model.Hero:
		comps = append(comps, Worker)
	case model.Priest:
		comps = append(comps, Priest, Detector)
	case model.Warrior:
		comps = append(comps, Warrior, Detector)
	}

	e := w.ecs.Create(comps...)
	entry := w.ecs.Entry(e)
	Position.SetValue(entry, pos)
	Team.SetValue(entry, team)
	Selectable.SetValue(entry, SelectableData{Size: w.tuning.Selection.UnitSize})
	Health.SetValue(entry, HealthData{Current: stats.Health})
	Idle.SetValue(entry, true)
	Moving.SetValue(entry, false)
	Unit.SetValue(entry, UnitData{Kind: kind})
	Moveable.SetValue(entry, MoveableData{Speed: stats.Speed, Target: pos})
	Faith.SetValue(entry, FaithData{Base: stats.Faith, Current: stats.Faith})

	switch kind {
	case model.Worker, model.Hero:
		Worker.SetValue(entry, WorkerData{Effort: stats.Effort})
	case model.Priest:
		Priest.SetValue(entry, PriestData{Persuasion: stats.Persuasion})
		Detector.SetValue(entry, DetectorData{Range: w.tuning.Detection.Range})
	case model.Warrior:
		Warrior.SetValue(entry, WarriorData{Strength: stats.Strength})
		Detector.SetValue(entry, DetectorData{Range: w.tuning.Detection.Range})
	}
	return e
}

// SpawnStructure creates a finished structure. Shrines generate energy;
// producers train every unit line the tuning prices.
func (w *World) SpawnStructure(kind model.StructureKind, team model.Team, pos model.Vec2) donburi.Entity {
	comps := []donburi.IComponentType{Position, Team, Selectable, Health, Idle, Structure}
	switch kind {
	case model.Shrine:
		comps = append(comps, Generator)
	case model.Producer:
		comps = append(comps, Producer)
	}

	e := w.ecs.Create(comps...)
	entry := w.ecs.Entry(e)
	Position.SetValue(entry, pos)
	Team.SetValue(entry, team)
	Selectable.SetValue(entry, SelectableData{Size: w.tuning.Selection.StructureSize})
	Health.SetValue(entry, HealthData{Current: w.tuning.Structures[kind].Health})
	Idle.SetValue(entry, true)
	Structure.SetValue(entry, StructureData{Kind: kind})

	switch kind {
	case model.Shrine:
		Generator.SetValue(entry, GeneratorData{BaseRate: w.tuning.Generator.BaseRate})
	case model.Producer:
		costs := make(map[model.ProductionKind]float64, len(w.tuning.Producer.Costs))
		for k, c := range w.tuning.Producer.Costs {
			costs[k] = c
		}
		Producer.SetValue(entry, ProducerData{
			Rate:        w.tuning.Producer.Rate,
			Costs:       costs,
			SpawnOffset: w.tuning.Producer.SpawnOffset,
		})
	}
	return e
}

// Snapshot is a per-team summary used for match reporting.
type Snapshot struct {
	Tick       int
	Energy     float64
	Units      map[model.UnitKind]int
	Structures map[model.StructureKind]int
	Sites      int
	// Converted is the running total of enemy units won over.
	Converted int
	// Engaged counts units pursuing an enemy.
	Engaged int
}

// CombatUnits counts warriors and priests.
func (s Snapshot) CombatUnits() int {
	return s.Units[model.Warrior] + s.Units[model.Priest]
}

func (w *World) Snapshot(team model.Team) Snapshot {
	s := Snapshot{
		Tick:       w.tick,
		Energy:     w.Energy(team),
		Converted:  w.match().Converted[team],
		Units:      make(map[model.UnitKind]int),
		Structures: make(map[model.StructureKind]int),
	}
	unitQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if *Team.Get(entry) != team {
			return
		}
		s.Units[Unit.Get(entry).Kind]++
		if entry.HasComponent(AttackPursuit) || entry.HasComponent(ConvertPursuit) {
			s.Engaged++
		}
	})
	structureQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if *Team.Get(entry) == team {
			s.Structures[Structure.Get(entry).Kind]++
		}
	})
	siteQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if *Team.Get(entry) == team {
			s.Sites++
		}
	})
	return s
}
