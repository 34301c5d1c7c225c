package sim

import (
	"log/slog"

	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var (
	attackerQuery = donburi.NewQuery(filter.Contains(AttackPursuit, Warrior, Position, Team))
	mortalQuery   = donburi.NewQuery(filter.Contains(Health))
)

func (w *World) onAssignAttackPursuit(_ donburi.World, ev AssignAttackPursuit) {
	if w.entry(ev.Prey) == nil {
		return
	}
	for _, e := range ev.Predators {
		entry := w.entry(e)
		if entry == nil {
			continue
		}
		if !entry.HasComponent(AttackPursuit) {
			entry.AddComponent(AttackPursuit)
		}
		AttackPursuit.SetValue(entry, AttackPursuitData{Prey: ev.Prey})
	}
}

// pursueAttacks runs every attack pursuit on its cooldown: close in when out
// of range, strike when in range. Pursuits whose prey died or joined the
// hunter's side are dropped.
func pursueAttacks(w *World, dt float64) {
	var broken []donburi.Entity
	attackRange := w.tuning.Combat.Range
	attackerQuery.Each(w.ecs, func(entry *donburi.Entry) {
		pursuit := AttackPursuit.Get(entry)
		prey := w.entry(pursuit.Prey)
		if prey == nil || !prey.HasComponent(Health) || *Team.Get(prey) == *Team.Get(entry) {
			broken = append(broken, entry.Entity())
			return
		}

		pursuit.Cooldown -= dt
		if pursuit.Cooldown >= 0 {
			return
		}

		pos := *Position.Get(entry)
		preyPos := *Position.Get(prey)
		if pos.Dist(preyPos) > attackRange {
			MoveEntitiesEvent.Publish(w.ecs, MoveEntities{
				Entities:  []donburi.Entity{entry.Entity()},
				Position:  preyPos,
				Direction: pos.Sub(preyPos).Normalize(),
				Formation: model.Ringed,
			})
		} else {
			Health.Get(prey).Current -= Warrior.Get(entry).Strength
		}
		pursuit.Cooldown = w.tuning.Combat.Rate
	})

	for _, e := range broken {
		w.ecs.Entry(e).RemoveComponent(AttackPursuit)
	}
}

// despawnDead removes everything whose health fell below zero.
func despawnDead(w *World, _ float64) {
	var dead []donburi.Entity
	mortalQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if Health.Get(entry).Current < 0 {
			dead = append(dead, entry.Entity())
		}
	})
	for _, e := range dead {
		entry := w.ecs.Entry(e)
		slog.Debug("entity destroyed", "entity", e, "team", *Team.Get(entry))
		w.ecs.Remove(e)
	}
}
