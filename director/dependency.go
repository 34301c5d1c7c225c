package director

import (
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
)

// Expectation names the flag a Dependency watches.
type Expectation int

const (
	IdleEquals Expectation = iota
	MovingEquals
)

func (e Expectation) String() string {
	if e == MovingEquals {
		return "moving"
	}
	return "idle"
}

// World is the read side of the simulation the director polls. The flag
// lookups report ok=false once the entity is gone.
type World interface {
	Idle(e donburi.Entity) (idle bool, ok bool)
	Moving(e donburi.Entity) (moving bool, ok bool)
	SelectedUnits(team model.Team) []donburi.Entity
	SelectedStructures(team model.Team) []donburi.Entity
}

// Dependency is a weak reference to an entity plus the flag value the
// owning set waits for.
type Dependency struct {
	Entity donburi.Entity
	Expect Expectation
	Value  bool
}

// Satisfied reports whether the expectation holds. A missing entity is
// treated as satisfied so a dead unit never blocks the script.
func (d Dependency) Satisfied(w World) bool {
	var (
		v  bool
		ok bool
	)
	switch d.Expect {
	case MovingEquals:
		v, ok = w.Moving(d.Entity)
	default:
		v, ok = w.Idle(d.Entity)
	}
	if !ok {
		return true
	}
	return v == d.Value
}

func expect(entities []donburi.Entity, e Expectation, v bool) []Dependency {
	if len(entities) == 0 {
		return nil
	}
	deps := make([]Dependency, len(entities))
	for i, ent := range entities {
		deps[i] = Dependency{Entity: ent, Expect: e, Value: v}
	}
	return deps
}

// resolve drops satisfied dependants in place and returns what is still outstanding.
func resolve(w World, deps []Dependency) []Dependency {
	kept := deps[:0]
	for _, d := range deps {
		if !d.Satisfied(w) {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
