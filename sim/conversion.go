package sim

import (
	"log/slog"

	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var converterQuery = donburi.NewQuery(filter.Contains(ConvertPursuit, Priest, Position, Team))

func (w *World) onAssignConvertPursuit(_ donburi.World, ev AssignConvertPursuit) {
	if w.entry(ev.Prey) == nil {
		return
	}
	for _, e := range ev.Predators {
		entry := w.entry(e)
		if entry == nil {
			continue
		}
		if !entry.HasComponent(ConvertPursuit) {
			entry.AddComponent(ConvertPursuit)
		}
		ConvertPursuit.SetValue(entry, ConvertPursuitData{Prey: ev.Prey})
	}
}

// pursueConversions mirrors pursueAttacks but wears down faith.
func pursueConversions(w *World, dt float64) {
	var broken []donburi.Entity
	reach := w.tuning.Conversion.Range
	converterQuery.Each(w.ecs, func(entry *donburi.Entry) {
		pursuit := ConvertPursuit.Get(entry)
		prey := w.entry(pursuit.Prey)
		if prey == nil || !prey.HasComponent(Faith) || *Team.Get(prey) == *Team.Get(entry) {
			broken = append(broken, entry.Entity())
			return
		}

		pursuit.Cooldown -= dt
		if pursuit.Cooldown >= 0 {
			return
		}
		pos := *Position.Get(entry)
		preyPos := *Position.Get(prey)
		if pos.Dist(preyPos) > reach {
			MoveEntitiesEvent.Publish(w.ecs, MoveEntities{
				Entities:  []donburi.Entity{entry.Entity()},
				Position:  preyPos,
				Direction: pos.Sub(preyPos).Normalize(),
				Formation: model.Ringed,
			})
		} else {
			Faith.Get(prey).Current -= Priest.Get(entry).Persuasion
		}
		pursuit.Cooldown = w.tuning.Conversion.Rate
	})

	for _, e := range broken {
		w.ecs.Entry(e).RemoveComponent(ConvertPursuit)
	}
}

// convertUnfaithful flips units whose faith ran out to the other side.
// They arrive idle and standing, with full faith, no orders and no longer
// selected.
func convertUnfaithful(w *World, _ float64) {
	var converted []donburi.Entity
	faithQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if Faith.Get(entry).Current < 0 {
			converted = append(converted, entry.Entity())
		}
	})

	for _, e := range converted {
		entry := w.ecs.Entry(e)
		from := *Team.Get(entry)
		Team.SetValue(entry, from.Opponent())
		f := Faith.Get(entry)
		f.Current = f.Base
		for _, c := range []donburi.IComponentType{AttackPursuit, ConvertPursuit} {
			if entry.HasComponent(c) {
				entry.RemoveComponent(c)
			}
		}
		if entry.HasComponent(Idle) {
			Idle.SetValue(entry, true)
		}
		if entry.HasComponent(Moveable) {
			Moveable.Get(entry).Target = *Position.Get(entry)
			Moving.SetValue(entry, false)
		}
		w.match().Converted[from.Opponent()]++
		slog.Info("unit converted", "entity", e, "from", from, "to", from.Opponent())
	}
}
