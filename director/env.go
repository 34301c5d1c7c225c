package director

import (
	"strings"

	"github.com/nstehr/animancer/model"
)

// Census answers the aggregate questions skip_when guards ask about a team.
type Census interface {
	Energy(team model.Team) float64
	UnitCount(team model.Team, kind model.UnitKind) int
	StructureCount(team model.Team, kind model.StructureKind) int
	SiteCount(team model.Team, kind model.StructureKind) int
}

// Env is the expr environment for skip_when guards. Kind arguments are
// matched case-insensitively.
type Env struct {
	Team   string
	Phase  int
	census Census
}

func (e Env) team() model.Team { return model.Team(e.Team) }

func (e Env) Energy() float64 {
	if e.census == nil {
		return 0
	}
	return e.census.Energy(e.team())
}

func (e Env) UnitCount(kind string) int {
	if e.census == nil {
		return 0
	}
	return e.census.UnitCount(e.team(), model.UnitKind(strings.ToLower(kind)))
}

func (e Env) EnemyUnitCount(kind string) int {
	if e.census == nil {
		return 0
	}
	return e.census.UnitCount(e.team().Opponent(), model.UnitKind(strings.ToLower(kind)))
}

func (e Env) StructureCount(kind string) int {
	if e.census == nil {
		return 0
	}
	return e.census.StructureCount(e.team(), model.StructureKind(strings.ToLower(kind)))
}

func (e Env) HasStructure(kind string) bool {
	return e.StructureCount(kind) > 0
}

// SiteCount counts construction sites still in progress.
func (e Env) SiteCount(kind string) int {
	if e.census == nil {
		return 0
	}
	return e.census.SiteCount(e.team(), model.StructureKind(strings.ToLower(kind)))
}

func (e Env) CanAfford(cost float64) bool {
	return e.Energy() > cost
}
