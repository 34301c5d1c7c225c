package sim

import (
	"fmt"

	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Player-facing commands. Director and human input publish the same types.
var (
	SelectRegionEvent          = events.NewEventType[command.SelectRegion]()
	PlaceConstructionSiteEvent = events.NewEventType[command.PlaceConstructionSite]()
	IssueMoveOrderEvent        = events.NewEventType[command.IssueMoveOrder]()
	ProductionIncreaseEvent    = events.NewEventType[command.RequestProductionIncrease]()
)

// Internal events between subsystems.
var (
	MoveEntitiesEvent           = events.NewEventType[MoveEntities]()
	AssignGeneratorWorkersEvent = events.NewEventType[AssignGeneratorWorkers]()
	AssignAttackPursuitEvent    = events.NewEventType[AssignAttackPursuit]()
	AssignConvertPursuitEvent   = events.NewEventType[AssignConvertPursuit]()
	StructurePlacedEvent        = events.NewEventType[StructurePlaced]()
	UnitProducedEvent           = events.NewEventType[UnitProduced]()
)

// MoveEntities moves specific entities rather than a team's selection.
type MoveEntities struct {
	Entities  []donburi.Entity
	Position  model.Vec2
	Direction model.Vec2
	Formation model.Formation
}

type AssignGeneratorWorkers struct {
	Generator donburi.Entity
	Workers   []donburi.Entity
}

type AssignAttackPursuit struct {
	Predators []donburi.Entity
	Prey      donburi.Entity
}

type AssignConvertPursuit struct {
	Predators []donburi.Entity
	Prey      donburi.Entity
}

type StructurePlaced struct {
	Kind     model.StructureKind
	Position model.Vec2
	Team     model.Team
}

type UnitProduced struct {
	Kind     model.UnitKind
	Position model.Vec2
	Team     model.Team
}

// Bus publishes commands into the world's event queues. Queued events are
// delivered by Flush, which the scheduler calls after every system set, so
// a command is always handled in the tick it was emitted.
type Bus struct {
	ecs donburi.World
}

func newBus(w donburi.World) *Bus {
	return &Bus{ecs: w}
}

func (b *Bus) Emit(cmd command.Command) error {
	switch c := cmd.(type) {
	case command.SelectRegion:
		SelectRegionEvent.Publish(b.ecs, c)
	case command.PlaceConstructionSite:
		PlaceConstructionSiteEvent.Publish(b.ecs, c)
	case command.IssueMoveOrder:
		IssueMoveOrderEvent.Publish(b.ecs, c)
	case command.RequestProductionIncrease:
		ProductionIncreaseEvent.Publish(b.ecs, c)
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	return nil
}

// Flush delivers queued events in a fixed order: selection first so the
// orders behind it see the new selection, then orders, then the internal
// events they trigger. A handler may publish event types later in the
// order; those are delivered in the same flush.
func (b *Bus) Flush() {
	SelectRegionEvent.ProcessEvents(b.ecs)
	PlaceConstructionSiteEvent.ProcessEvents(b.ecs)
	IssueMoveOrderEvent.ProcessEvents(b.ecs)
	ProductionIncreaseEvent.ProcessEvents(b.ecs)
	MoveEntitiesEvent.ProcessEvents(b.ecs)
	AssignGeneratorWorkersEvent.ProcessEvents(b.ecs)
	AssignAttackPursuitEvent.ProcessEvents(b.ecs)
	AssignConvertPursuitEvent.ProcessEvents(b.ecs)
	StructurePlacedEvent.ProcessEvents(b.ecs)
	UnitProducedEvent.ProcessEvents(b.ecs)
}
