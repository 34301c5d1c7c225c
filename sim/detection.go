package sim

import (
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var (
	idleWarriorQuery = donburi.NewQuery(filter.And(
		filter.Contains(Warrior, Detector, Position, Team),
		filter.Not(filter.Contains(AttackPursuit)),
	))
	idlePriestQuery = donburi.NewQuery(filter.And(
		filter.Contains(Priest, Detector, Position, Team),
		filter.Not(filter.Contains(ConvertPursuit)),
	))
	healthQuery = donburi.NewQuery(filter.Contains(Health, Position, Team))
	faithQuery  = donburi.NewQuery(filter.Contains(Faith, Position, Team))
)

type target struct {
	entity donburi.Entity
	pos    model.Vec2
	team   model.Team
}

func collectTargets(w *World, q *donburi.Query) []target {
	var out []target
	q.Each(w.ecs, func(entry *donburi.Entry) {
		out = append(out, target{entity: entry.Entity(), pos: *Position.Get(entry), team: *Team.Get(entry)})
	})
	return out
}

// detect pairs every detector that has no prey with the nearest enemy in
// range and groups the detectors by prey.
func detect(w *World, detectors *donburi.Query, targets []target) map[donburi.Entity][]donburi.Entity {
	byPrey := make(map[donburi.Entity][]donburi.Entity)
	detectors.Each(w.ecs, func(entry *donburi.Entry) {
		self := entry.Entity()
		pos := *Position.Get(entry)
		team := *Team.Get(entry)
		reach := Detector.Get(entry).Range

		var (
			best  donburi.Entity
			found bool
			dist  = reach
		)
		for _, t := range targets {
			if t.entity == self || t.team == team {
				continue
			}
			if d := pos.Dist(t.pos); d < dist {
				best, dist, found = t.entity, d, true
			}
		}
		if found {
			byPrey[best] = append(byPrey[best], self)
		}
	})
	return byPrey
}

// detectAttackTargets points idle warriors at enemies with health.
func detectAttackTargets(w *World, _ float64) {
	for prey, predators := range detect(w, idleWarriorQuery, collectTargets(w, healthQuery)) {
		AssignAttackPursuitEvent.Publish(w.ecs, AssignAttackPursuit{Predators: predators, Prey: prey})
	}
}

// detectConvertTargets points idle priests at enemy units with faith.
func detectConvertTargets(w *World, _ float64) {
	for prey, predators := range detect(w, idlePriestQuery, collectTargets(w, faithQuery)) {
		AssignConvertPursuitEvent.Publish(w.ecs, AssignConvertPursuit{Predators: predators, Prey: prey})
	}
}
