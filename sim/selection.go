package sim

import (
	"log/slog"

	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
)

// onSelectRegion replaces the team's selection with the entities in the
// rectangle. Units win: structures are only selected when no unit matches.
func (w *World) onSelectRegion(_ donburi.World, cmd command.SelectRegion) {
	units, structures := w.resolveSelection(cmd.Rect, cmd.Team)
	m := w.match()
	if len(units) > 0 {
		structures = nil
	}
	m.SelectedUnits[cmd.Team] = units
	m.SelectedStructures[cmd.Team] = structures
	slog.Debug("selection", "team", cmd.Team, "units", len(units), "structures", len(structures))
}

// resolveSelection returns every unit and every structure or site of team
// that the rectangle picks.
func (w *World) resolveSelection(rect model.Rect, team model.Team) (units, structures []donburi.Entity) {
	rect = rect.Canon()
	center := rect.Center()
	selectableQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if *Team.Get(entry) != team {
			return
		}
		pos := *Position.Get(entry)
		box := model.RectFromCenterSize(pos, Selectable.Get(entry).Size)
		if !rect.Contains(pos) && !box.Contains(center) {
			return
		}
		if entry.HasComponent(Unit) {
			units = append(units, entry.Entity())
		} else {
			structures = append(structures, entry.Entity())
		}
	})
	return units, structures
}
