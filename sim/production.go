package sim

import (
	"log/slog"
	"math"

	"github.com/nstehr/animancer/command"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var producerQuery = donburi.NewQuery(filter.Contains(Producer, Position, Team, Idle))

// onProductionIncrease queues one unit on every selected producer offering
// the line, as long as the team can pay for it.
func (w *World) onProductionIncrease(_ donburi.World, cmd command.RequestProductionIncrease) {
	for _, e := range w.SelectedStructures(cmd.Team) {
		entry := w.ecs.Entry(e)
		if !entry.HasComponent(Producer) {
			continue
		}
		p := Producer.Get(entry)
		if !p.Offers(cmd.Kind) {
			continue
		}
		cost := p.Costs[cmd.Kind]
		if w.Energy(cmd.Team) <= cost {
			slog.Debug("production refused", "team", cmd.Team, "kind", cmd.Kind, "energy", w.Energy(cmd.Team), "cost", cost)
			continue
		}
		w.addEnergy(cmd.Team, -cost)
		p.Queue = append(p.Queue, cmd.Kind)
		Idle.SetValue(entry, false)
	}
}

// produceUnits advances the head of every queue. Progress past a unit's
// cost carries over to the next one.
func produceUnits(w *World, dt float64) {
	producerQuery.Each(w.ecs, func(entry *donburi.Entry) {
		p := Producer.Get(entry)
		if len(p.Queue) == 0 {
			return
		}
		p.Value += p.Rate * dt
		kind := p.Queue[0]
		cost := p.Costs[kind]
		if p.Value < cost {
			return
		}
		p.Value = math.Mod(p.Value, cost)
		p.Queue = p.Queue[1:]
		UnitProducedEvent.Publish(w.ecs, UnitProduced{
			Kind:     kind.UnitKind(),
			Position: Position.Get(entry).Add(p.SpawnOffset),
			Team:     *Team.Get(entry),
		})
		if len(p.Queue) == 0 {
			Idle.SetValue(entry, true)
		}
	})
}
