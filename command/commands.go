package command

import "github.com/nstehr/animancer/model"

// Command type constants. The trace file stores these as the envelope type,
// so renaming one breaks older traces.
const (
	TypeSelectRegion              = "select_region"
	TypeIssueMoveOrder            = "issue_move_order"
	TypePlaceConstructionSite     = "place_construction_site"
	TypeRequestProductionIncrease = "request_production_increase"
)

// Command is a fire-and-forget order. The same commands are issued by the
// director and by a human player's input layer.
type Command interface {
	CommandType() string
}

// Emitter delivers commands to every interested subsystem.
type Emitter interface {
	Emit(cmd Command) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(cmd Command) error

func (f EmitterFunc) Emit(cmd Command) error { return f(cmd) }

// SelectRegion replaces the team's selection with whatever lies in Rect.
type SelectRegion struct {
	Rect model.Rect `json:"rect"`
	Team model.Team `json:"team"`
}

func (SelectRegion) CommandType() string { return TypeSelectRegion }

// IssueMoveOrder sends the team's selected units to Position.
// Direction orients the formation; its length scales slot spacing.
type IssueMoveOrder struct {
	Position  model.Vec2      `json:"position"`
	Direction model.Vec2      `json:"direction"`
	Formation model.Formation `json:"formation"`
	Team      model.Team      `json:"team"`
}

func (IssueMoveOrder) CommandType() string { return TypeIssueMoveOrder }

// PlaceConstructionSite lays out a site that the team's selected units build.
type PlaceConstructionSite struct {
	Kind     model.StructureKind `json:"kind"`
	Position model.Vec2          `json:"position"`
	Team     model.Team          `json:"team"`
	Effort   float64             `json:"effort"`
}

func (PlaceConstructionSite) CommandType() string { return TypePlaceConstructionSite }

// RequestProductionIncrease queues one unit of Kind on the team's selected
// producers. Cost and capacity checks belong to the production subsystem.
type RequestProductionIncrease struct {
	Kind model.ProductionKind `json:"kind"`
	Team model.Team           `json:"team"`
}

func (RequestProductionIncrease) CommandType() string { return TypeRequestProductionIncrease }
