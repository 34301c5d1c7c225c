package sim

import (
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
)

// Shared by every entity on the battlefield.
var (
	Position   = donburi.NewComponentType[model.Vec2]()
	Team       = donburi.NewComponentType[model.Team]()
	Selectable = donburi.NewComponentType[SelectableData]()
	Health     = donburi.NewComponentType[HealthData]()
)

// Observable flags. Only subsystems write them; the director polls them.
var (
	Idle   = donburi.NewComponentType[bool]()
	Moving = donburi.NewComponentType[bool]()
)

// Units.
var (
	Unit           = donburi.NewComponentType[UnitData]()
	Moveable       = donburi.NewComponentType[MoveableData]()
	Worker         = donburi.NewComponentType[WorkerData]()
	Priest         = donburi.NewComponentType[PriestData]()
	Warrior        = donburi.NewComponentType[WarriorData]()
	Faith          = donburi.NewComponentType[FaithData]()
	Detector       = donburi.NewComponentType[DetectorData]()
	AttackPursuit  = donburi.NewComponentType[AttackPursuitData]()
	ConvertPursuit = donburi.NewComponentType[ConvertPursuitData]()
)

// Structures and sites.
var (
	Structure = donburi.NewComponentType[StructureData]()
	Site      = donburi.NewComponentType[SiteData]()
	Generator = donburi.NewComponentType[GeneratorData]()
	Producer  = donburi.NewComponentType[ProducerData]()
)

// matchState lives on a single entity and holds per-team resources.
var matchState = donburi.NewComponentType[MatchStateData]()

type SelectableData struct {
	Size model.Vec2
}

type HealthData struct {
	Current float64
}

type UnitData struct {
	Kind model.UnitKind
}

// MoveableData is the straight-line travel state. Target is the assigned
// formation slot.
type MoveableData struct {
	Speed  float64
	Target model.Vec2
}

type WorkerData struct {
	Effort float64
}

type PriestData struct {
	Persuasion float64
}

type WarriorData struct {
	Strength float64
}

// FaithData resets to Base when the unit switches sides.
type FaithData struct {
	Base    float64
	Current float64
}

type DetectorData struct {
	Range float64
}

type AttackPursuitData struct {
	Prey     donburi.Entity
	Cooldown float64
}

type ConvertPursuitData struct {
	Prey     donburi.Entity
	Cooldown float64
}

type StructureData struct {
	Kind model.StructureKind
}

// SiteData is a structure under construction. Assigned units are tasked
// but out of range; Working units are close enough to add effort.
type SiteData struct {
	Kind     model.StructureKind
	Effort   float64
	Assigned []donburi.Entity
	Working  []donburi.Entity
}

type GeneratorData struct {
	BaseRate  float64
	AddedRate float64
	Assigned  []donburi.Entity
	Working   []donburi.Entity
}

// ProducerData trains units one at a time from Queue. Value carries the
// production progress, including the remainder past the last unit's cost.
type ProducerData struct {
	Rate        float64
	Value       float64
	Costs       map[model.ProductionKind]float64
	Queue       []model.ProductionKind
	SpawnOffset model.Vec2
}

// Offers reports whether the producer has a line for kind.
func (p *ProducerData) Offers(kind model.ProductionKind) bool {
	_, ok := p.Costs[kind]
	return ok
}

type MatchStateData struct {
	Energy             map[model.Team]float64
	SelectedUnits      map[model.Team][]donburi.Entity
	SelectedStructures map[model.Team][]donburi.Entity
	// Converted counts units each team has won over.
	Converted map[model.Team]int
}
