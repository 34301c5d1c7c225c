package sim

import (
	"log/slog"

	"github.com/yohamta/donburi"
)

func (w *World) onStructurePlaced(_ donburi.World, ev StructurePlaced) {
	e := w.SpawnStructure(ev.Kind, ev.Team, ev.Position)
	slog.Info("structure placed", "team", ev.Team, "kind", ev.Kind, "entity", e)
}

func (w *World) onUnitProduced(_ donburi.World, ev UnitProduced) {
	e := w.SpawnUnit(ev.Kind, ev.Team, ev.Position)
	slog.Debug("unit produced", "team", ev.Team, "kind", ev.Kind, "entity", e)
}
