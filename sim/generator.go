package sim

import (
	"slices"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var generatorQuery = donburi.NewQuery(filter.Contains(Generator, Position, Team))

// onAssignGeneratorWorkers moves workers onto a generator, taking them off
// any other generator first.
func (w *World) onAssignGeneratorWorkers(_ donburi.World, ev AssignGeneratorWorkers) {
	target := w.entry(ev.Generator)
	if target == nil || !target.HasComponent(Generator) {
		return
	}
	generatorQuery.Each(w.ecs, func(entry *donburi.Entry) {
		g := Generator.Get(entry)
		g.Assigned = slices.DeleteFunc(g.Assigned, func(e donburi.Entity) bool { return slices.Contains(ev.Workers, e) })
		g.Working = slices.DeleteFunc(g.Working, func(e donburi.Entity) bool { return slices.Contains(ev.Workers, e) })
	})
	g := Generator.Get(target)
	g.Assigned = append(g.Assigned, ev.Workers...)
}

// generateEnergy credits each generator's team with its base rate plus the
// effort of the workers standing within working range.
func generateEnergy(w *World, dt float64) {
	reach := w.tuning.Generator.WorkingRange
	generatorQuery.Each(w.ecs, func(entry *donburi.Entry) {
		g := Generator.Get(entry)
		team := *Team.Get(entry)
		g.Assigned, g.Working = w.rebalance(g.Assigned, g.Working, *Position.Get(entry), team, reach)

		g.AddedRate = 0
		for _, e := range g.Working {
			we := w.ecs.Entry(e)
			if we.HasComponent(Worker) {
				g.AddedRate += Worker.Get(we).Effort
			}
		}
		w.addEnergy(team, (g.BaseRate+g.AddedRate)*dt)
	})
}
