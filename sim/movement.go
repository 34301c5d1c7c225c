package sim

import (
	"log/slog"

	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

var moveableQuery = donburi.NewQuery(filter.Contains(Moveable, Position, Moving))

func (w *World) onIssueMoveOrder(_ donburi.World, cmd command.IssueMoveOrder) {
	units := w.SelectedUnits(cmd.Team)
	if len(units) == 0 {
		return
	}
	pos := w.tuning.Arena.Clamp(cmd.Position)
	w.assignSlots(units, pos, cmd.Direction, cmd.Formation)
	slog.Debug("move order", "team", cmd.Team, "units", len(units), "position", pos)

	// Ending an order on a friendly generator puts the workers to work there.
	if gen, ok := w.generatorAt(pos, cmd.Team); ok {
		workers := make([]donburi.Entity, 0, len(units))
		for _, e := range units {
			if w.ecs.Entry(e).HasComponent(Worker) {
				workers = append(workers, e)
			}
		}
		if len(workers) > 0 {
			AssignGeneratorWorkersEvent.Publish(w.ecs, AssignGeneratorWorkers{Generator: gen, Workers: workers})
		}
	}
}

func (w *World) onMoveEntities(_ donburi.World, ev MoveEntities) {
	live := make([]donburi.Entity, 0, len(ev.Entities))
	for _, e := range ev.Entities {
		if entry := w.entry(e); entry != nil && entry.HasComponent(Moveable) {
			live = append(live, e)
		}
	}
	w.assignSlots(live, w.tuning.Arena.Clamp(ev.Position), ev.Direction, ev.Formation)
}

// assignSlots gives each unit a formation slot and marks it moving.
func (w *World) assignSlots(units []donburi.Entity, pos, dir model.Vec2, f model.Formation) {
	slots := Slots(f, pos, dir, len(units), w.tuning.Movement.FormationSpacing)
	for i, e := range units {
		entry := w.ecs.Entry(e)
		Moveable.Get(entry).Target = w.tuning.Arena.Clamp(slots[i])
		Moving.SetValue(entry, true)
	}
}

// generatorAt returns the team's generator whose footprint contains pos.
func (w *World) generatorAt(pos model.Vec2, team model.Team) (donburi.Entity, bool) {
	var (
		found donburi.Entity
		ok    bool
	)
	generatorQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if ok || *Team.Get(entry) != team {
			return
		}
		box := model.RectFromCenterSize(*Position.Get(entry), Selectable.Get(entry).Size)
		if box.Contains(pos) {
			found, ok = entry.Entity(), true
		}
	})
	return found, ok
}

// moveUnits translates moving units straight toward their slot and clears
// Moving once they are within closeness of it.
func moveUnits(w *World, dt float64) {
	closeness := w.tuning.Movement.Closeness
	moveableQuery.Each(w.ecs, func(entry *donburi.Entry) {
		moving := Moving.Get(entry)
		if !*moving {
			return
		}
		pos := Position.Get(entry)
		mv := Moveable.Get(entry)
		dist := pos.Dist(mv.Target)
		if dist <= closeness {
			*moving = false
			return
		}
		step := mv.Speed * dt
		if step >= dist {
			*pos = mv.Target
			*moving = false
			return
		}
		*pos = pos.Add(mv.Target.Sub(*pos).Normalize().Scale(step))
		if pos.Dist(mv.Target) <= closeness {
			*moving = false
		}
	})
}
