package sim

import (
	"log/slog"
	"slices"

	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
)

// onPlaceConstructionSite lays out a site worked by the team's selected
// units. The builders are busy from this moment until the site finishes.
// Without builders nothing is placed.
func (w *World) onPlaceConstructionSite(_ donburi.World, cmd command.PlaceConstructionSite) {
	builders := w.SelectedUnits(cmd.Team)
	if len(builders) == 0 {
		slog.Debug("construction site skipped", "team", cmd.Team, "kind", cmd.Kind, "reason", "no builders")
		return
	}

	e := w.ecs.Create(Position, Team, Selectable, Site)
	entry := w.ecs.Entry(e)
	Position.SetValue(entry, cmd.Position)
	Team.SetValue(entry, cmd.Team)
	Selectable.SetValue(entry, SelectableData{Size: w.tuning.Selection.StructureSize})
	Site.SetValue(entry, SiteData{
		Kind:     cmd.Kind,
		Effort:   cmd.Effort,
		Assigned: slices.Clone(builders),
	})
	w.setIdle(builders, false)
	slog.Info("construction site placed", "team", cmd.Team, "kind", cmd.Kind, "position", cmd.Position, "builders", len(builders))
}

// constructSites moves builders between assigned and working by distance,
// spends their effort, and replaces finished sites with a StructurePlaced
// event. Sites whose builders all died or defected are abandoned.
func constructSites(w *World, dt float64) {
	var done, abandoned []donburi.Entity
	reach := w.tuning.Construction.Range
	siteQuery.Each(w.ecs, func(entry *donburi.Entry) {
		site := Site.Get(entry)
		pos := *Position.Get(entry)
		site.Assigned, site.Working = w.rebalance(site.Assigned, site.Working, pos, *Team.Get(entry), reach)
		if len(site.Assigned) == 0 && len(site.Working) == 0 {
			abandoned = append(abandoned, entry.Entity())
			return
		}

		site.Effort -= w.tuning.Construction.Boost * float64(len(site.Working)) * dt
		w.setIdle(site.Assigned, false)
		w.setIdle(site.Working, false)
		if site.Effort < 0 {
			done = append(done, entry.Entity())
		}
	})

	for _, e := range abandoned {
		entry := w.ecs.Entry(e)
		slog.Info("construction abandoned", "team", *Team.Get(entry), "kind", Site.Get(entry).Kind)
		w.ecs.Remove(e)
	}

	for _, e := range done {
		entry := w.ecs.Entry(e)
		site := Site.Get(entry)
		team := *Team.Get(entry)
		StructurePlacedEvent.Publish(w.ecs, StructurePlaced{
			Kind:     site.Kind,
			Position: *Position.Get(entry),
			Team:     team,
		})
		w.setIdle(site.Assigned, true)
		w.setIdle(site.Working, true)
		w.ecs.Remove(e)
		slog.Info("construction complete", "team", team, "kind", site.Kind)
	}
}

// rebalance drops dead and converted units, demotes working units that
// walked out of reach and promotes assigned units that came within it.
func (w *World) rebalance(assigned, working []donburi.Entity, pos model.Vec2, team model.Team, reach float64) ([]donburi.Entity, []donburi.Entity) {
	var nextAssigned, nextWorking []donburi.Entity
	for _, e := range slices.Concat(working, assigned) {
		entry := w.entry(e)
		if entry == nil || *Team.Get(entry) != team {
			continue
		}
		if Position.Get(entry).Dist(pos) < reach {
			nextWorking = append(nextWorking, e)
		} else {
			nextAssigned = append(nextAssigned, e)
		}
	}
	return nextAssigned, nextWorking
}

func (w *World) setIdle(entities []donburi.Entity, idle bool) {
	for _, e := range entities {
		entry := w.entry(e)
		if entry == nil || !entry.HasComponent(Idle) {
			continue
		}
		Idle.SetValue(entry, idle)
	}
}
