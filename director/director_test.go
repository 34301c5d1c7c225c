package director

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/model"
	"github.com/yohamta/donburi"
)

type fakeWorld struct {
	idle       map[donburi.Entity]bool
	moving     map[donburi.Entity]bool
	units      []donburi.Entity
	structures []donburi.Entity

	energy     float64
	unitCounts map[model.UnitKind]int
	buildings  map[model.StructureKind]int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		idle:       make(map[donburi.Entity]bool),
		moving:     make(map[donburi.Entity]bool),
		unitCounts: make(map[model.UnitKind]int),
		buildings:  make(map[model.StructureKind]int),
	}
}

func (w *fakeWorld) addUnit(e donburi.Entity, idle, moving bool) {
	w.idle[e] = idle
	w.moving[e] = moving
	w.units = append(w.units, e)
}

func (w *fakeWorld) remove(e donburi.Entity) {
	delete(w.idle, e)
	delete(w.moving, e)
}

func (w *fakeWorld) Idle(e donburi.Entity) (bool, bool)   { v, ok := w.idle[e]; return v, ok }
func (w *fakeWorld) Moving(e donburi.Entity) (bool, bool) { v, ok := w.moving[e]; return v, ok }

func (w *fakeWorld) SelectedUnits(model.Team) []donburi.Entity      { return w.units }
func (w *fakeWorld) SelectedStructures(model.Team) []donburi.Entity { return w.structures }

func (w *fakeWorld) Energy(model.Team) float64 { return w.energy }
func (w *fakeWorld) UnitCount(_ model.Team, k model.UnitKind) int {
	return w.unitCounts[k]
}
func (w *fakeWorld) StructureCount(_ model.Team, k model.StructureKind) int {
	return w.buildings[k]
}
func (w *fakeWorld) SiteCount(model.Team, model.StructureKind) int { return 0 }

type recorder struct {
	cmds []command.Command
	err  error
}

func (r *recorder) Emit(cmd command.Command) error {
	r.cmds = append(r.cmds, cmd)
	return r.err
}

func (r *recorder) count(typ string) int {
	n := 0
	for _, c := range r.cmds {
		if c.CommandType() == typ {
			n++
		}
	}
	return n
}

func testConfig() Config {
	return Config{
		Team:                model.CPU,
		Facing:              model.Vec2{X: 0, Y: -1},
		Arena:               model.Arena{Width: 1680, Height: 840},
		StepInterval:        5,
		ForceForward:        30,
		MoveJitter:          500,
		BuildOffset:         60,
		BuildDirectionScale: 2,
	}
}

func mustCatalogue(t *testing.T, c Catalogue) *Catalogue {
	t.Helper()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return &c
}

func newTestDirector(t *testing.T, c Catalogue, w *fakeWorld) (*Director, *recorder) {
	t.Helper()
	out := &recorder{}
	d, err := New(testConfig(), mustCatalogue(t, c), w, out, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, out
}

var anywhere = model.Rect{Min: model.Vec2{X: -50, Y: -50}, Max: model.Vec2{X: 50, Y: 50}}

func TestCooldownTickIsNoop(t *testing.T) {
	w := newFakeWorld()
	w.addUnit(1, true, true)
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "walk",
			Phase: 0,
			Steps: []Instruction{Select(anywhere), Move(model.Vec2{})},
		}},
	}, w)

	d.Tick(5) // selection dispatched, step advanced
	s := d.State()
	phase, step, emitted := s.CurrentPhase, s.Sets[0].CurrentStep, len(out.cmds)
	cooldown, force := s.Cooldown, s.ForceForward

	d.Tick(1)
	d.Tick(1)

	if s.CurrentPhase != phase || s.Sets[0].CurrentStep != step || len(out.cmds) != emitted {
		t.Errorf("state changed during cooldown: phase %d->%d step %d->%d cmds %d->%d",
			phase, s.CurrentPhase, step, s.Sets[0].CurrentStep, emitted, len(out.cmds))
	}
	if s.Cooldown != cooldown-2 || s.ForceForward != force-2 {
		t.Errorf("timers = %v/%v, want %v/%v", s.Cooldown, s.ForceForward, cooldown-2, force-2)
	}
}

func TestSelectionThenProduceWithNoMatches(t *testing.T) {
	w := newFakeWorld()
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  1,
		FinalPhase: 2,
		Sets: []InstructionSet{{
			Name:  "workers",
			Phase: 0,
			Steps: []Instruction{Select(anywhere), Produce(model.ProduceWorker, 2)},
		}},
	}, w)
	set := d.State().Sets[0]

	d.Tick(5)
	if out.count(command.TypeSelectRegion) != 1 {
		t.Fatalf("expected a selection command, got %v", out.cmds)
	}
	if set.CurrentStep != 1 || len(set.Dependants) != 0 {
		t.Fatalf("selection should advance immediately, step=%d deps=%d", set.CurrentStep, len(set.Dependants))
	}

	d.Tick(5)
	if got := out.count(command.TypeRequestProductionIncrease); got != 2 {
		t.Errorf("production requests = %d, want 2", got)
	}
	for _, c := range out.cmds {
		if req, ok := c.(command.RequestProductionIncrease); ok && (req.Kind != model.ProduceWorker || req.Team != model.CPU) {
			t.Errorf("unexpected request %+v", req)
		}
	}
	if !set.Complete {
		t.Fatalf("set should complete once produce has no selected structures")
	}

	d.Tick(5)
	if d.State().CurrentPhase != 1 {
		t.Errorf("phase = %d, want 1", d.State().CurrentPhase)
	}
}

func TestForcedProgressAfterCeiling(t *testing.T) {
	w := newFakeWorld()
	w.addUnit(7, false, false) // never becomes idle
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "stuck build",
			Phase: 0,
			Steps: []Instruction{Build(model.Vec2{X: 100, Y: 100}, model.Shrine, 50)},
		}},
	}, w)
	set := d.State().Sets[0]

	for i := 1; i <= 5; i++ {
		d.Tick(5)
		if set.CurrentStep != 0 {
			t.Fatalf("step advanced after %ds", i*5)
		}
	}
	if len(set.Dependants) != 1 {
		t.Fatalf("dependants = %d, want 1", len(set.Dependants))
	}

	d.Tick(5)
	if set.CurrentStep != 1 || !set.Complete {
		t.Errorf("step not forced after 30s: step=%d complete=%v", set.CurrentStep, set.Complete)
	}
	if len(set.Dependants) != 0 {
		t.Errorf("forced advance should drop dependants, %d left", len(set.Dependants))
	}
	if d.State().ForceForward != 30 {
		t.Errorf("ForceForward = %v, want reset to 30", d.State().ForceForward)
	}
	if out.count(command.TypePlaceConstructionSite) != 1 || out.count(command.TypeIssueMoveOrder) != 1 {
		t.Errorf("build should dispatch once, got %v", out.cmds)
	}
}

func TestMissingEntityFailsOpen(t *testing.T) {
	w := newFakeWorld()
	w.addUnit(1, true, true)
	w.addUnit(2, true, true)
	d, _ := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "walk",
			Phase: 0,
			Steps: []Instruction{Move(model.Vec2{X: 10})},
		}},
	}, w)
	set := d.State().Sets[0]

	d.Tick(5)
	if len(set.Dependants) != 2 {
		t.Fatalf("dependants = %d, want 2", len(set.Dependants))
	}
	d.Tick(5)
	if set.CurrentStep != 0 {
		t.Fatal("step advanced while units still moving")
	}

	w.remove(1)
	w.moving[2] = false
	d.Tick(5)
	if !set.Complete {
		t.Errorf("set should complete once units stop or vanish, deps=%v", set.Dependants)
	}
}

func TestDeadEntityAloneUnblocks(t *testing.T) {
	w := newFakeWorld()
	w.addUnit(1, false, false)
	w.addUnit(2, false, false) // stays busy
	d, _ := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "build",
			Phase: 0,
			Steps: []Instruction{Build(model.Vec2{}, model.Shrine, 10)},
		}},
	}, w)
	set := d.State().Sets[0]

	d.Tick(5)
	w.remove(1)
	d.Tick(5)
	if len(set.Dependants) != 1 || set.Dependants[0].Entity != 2 {
		t.Errorf("only the removed entity should resolve, got %v", set.Dependants)
	}
}

func TestSoleDeadDependantAdvancesNextTick(t *testing.T) {
	w := newFakeWorld()
	w.addUnit(1, false, false)
	d, _ := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "build twice",
			Phase: 0,
			Steps: []Instruction{
				Build(model.Vec2{}, model.Shrine, 10),
				Build(model.Vec2{X: 100}, model.Shrine, 10),
			},
		}},
	}, w)
	set := d.State().Sets[0]

	d.Tick(5)
	if set.CurrentStep != 0 || len(set.Dependants) != 1 {
		t.Fatalf("after dispatch: step %d deps %v, want step 0 with one dependant", set.CurrentStep, set.Dependants)
	}

	w.remove(1)
	d.Tick(5)
	if set.CurrentStep != 1 {
		t.Errorf("step = %d after the only builder vanished, want 1", set.CurrentStep)
	}
}

func TestNewRejectsInvalidCatalogue(t *testing.T) {
	tests := []struct {
		name string
		cat  *Catalogue
	}{
		{"nil", nil},
		{"set without steps", &Catalogue{FinalPhase: 1, Sets: []InstructionSet{{Name: "empty"}}}},
		{"no sets", &Catalogue{FinalPhase: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(testConfig(), tt.cat, newFakeWorld(), &recorder{}, rand.New(rand.NewSource(1)))
			if err == nil || d != nil {
				t.Errorf("New = %v, %v; want error", d, err)
			}
		})
	}
}

func TestTickCompletesExhaustedSet(t *testing.T) {
	w := newFakeWorld()
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 2,
		Sets: []InstructionSet{
			{Name: "opening", Phase: 0, Steps: []Instruction{Select(anywhere)}},
			{Name: "tail", Phase: 1, Steps: []Instruction{Select(anywhere)}},
		},
	}, w)
	set := d.State().Sets[0]
	set.Steps = nil

	d.Tick(5)
	if !set.Complete {
		t.Error("set with no steps left should complete instead of dispatching")
	}
	if len(out.cmds) != 0 {
		t.Errorf("dispatched %d commands for an exhausted set", len(out.cmds))
	}
}

func TestWrapResetsOnlyLoopedSets(t *testing.T) {
	w := newFakeWorld()
	d, _ := newTestDirector(t, Catalogue{
		LoopPhase:  1,
		FinalPhase: 3,
		Sets: []InstructionSet{
			{Name: "opening", Phase: 0, Steps: []Instruction{Select(anywhere)}},
			{Name: "loop a", Phase: 1, Steps: []Instruction{Select(anywhere)}},
			{Name: "loop b", Phase: 2, Steps: []Instruction{Select(anywhere), Select(anywhere)}},
		},
	}, w)
	s := d.State()

	for i := 0; i < 100 && s.Loops == 0; i++ {
		d.Tick(5)
	}
	if s.Loops != 1 {
		t.Fatalf("campaign never looped")
	}
	if s.CurrentPhase != 1 {
		t.Errorf("phase after wrap = %d, want 1", s.CurrentPhase)
	}
	opening := s.Sets[0]
	if !opening.Complete || opening.CurrentStep != 1 {
		t.Errorf("set outside loop range was reset: %+v", opening)
	}
	for _, set := range s.Sets[1:] {
		if set.Complete || set.CurrentStep != 0 || len(set.Dependants) != 0 {
			t.Errorf("set %q not reset: complete=%v step=%d", set.Name, set.Complete, set.CurrentStep)
		}
	}

	// A second lap ends in the same place.
	for i := 0; i < 100 && s.Loops == 1; i++ {
		d.Tick(5)
	}
	if s.Loops != 2 || s.CurrentPhase != 1 || !opening.Complete {
		t.Errorf("second wrap: loops=%d phase=%d opening complete=%v", s.Loops, s.CurrentPhase, opening.Complete)
	}
}

func TestPhaseMonotonic(t *testing.T) {
	cat, err := DefaultCatalogue()
	if err != nil {
		t.Fatal(err)
	}
	w := newFakeWorld()
	w.energy = 1000
	w.addUnit(1, true, false)
	w.structures = []donburi.Entity{9}
	w.idle[9] = true
	d, err := New(testConfig(), cat, w, &recorder{}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rng := rand.New(rand.NewSource(4))

	s := d.State()
	prev, loops := s.CurrentPhase, s.Loops
	for i := 0; i < 2000; i++ {
		d.Tick(rng.Float64() * 3)
		if s.CurrentPhase < prev {
			wrapped := s.Loops == loops+1 && prev == cat.FinalPhase-1 && s.CurrentPhase == cat.LoopPhase
			if !wrapped {
				t.Fatalf("phase went %d -> %d without a wrap", prev, s.CurrentPhase)
			}
		}
		prev, loops = s.CurrentPhase, s.Loops
	}
	if s.Loops == 0 {
		t.Error("default catalogue never looped")
	}
}

func TestMovementDispatch(t *testing.T) {
	w := newFakeWorld()
	w.addUnit(1, true, false)
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "edge",
			Phase: 0,
			Steps: []Instruction{Move(model.Vec2{X: 800, Y: 400})},
		}},
	}, w)

	d.Tick(5)
	if len(out.cmds) != 1 {
		t.Fatalf("commands = %v", out.cmds)
	}
	order := out.cmds[0].(command.IssueMoveOrder)
	if order.Formation != model.Ringed || order.Team != model.CPU {
		t.Errorf("order = %+v", order)
	}
	if !testConfig().Arena.Inside(order.Position) {
		t.Errorf("target %v outside arena", order.Position)
	}
	if order.Position.X < 300 || order.Position.Y < -100 {
		t.Errorf("target %v further than jitter from (800,400)", order.Position)
	}
	deps := d.State().Sets[0].Dependants
	if len(deps) != 1 || deps[0].Expect != MovingEquals || deps[0].Value {
		t.Errorf("dependants = %+v, want moving==false", deps)
	}
}

func TestBuildDispatch(t *testing.T) {
	w := newFakeWorld()
	w.addUnit(1, true, false)
	w.addUnit(2, true, false)
	site := model.Vec2{X: -200, Y: 100}
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "shrine",
			Phase: 0,
			Steps: []Instruction{Build(site, model.Shrine, 120)},
		}},
	}, w)

	d.Tick(5)
	if len(out.cmds) != 2 {
		t.Fatalf("commands = %v", out.cmds)
	}
	place := out.cmds[0].(command.PlaceConstructionSite)
	if place.Kind != model.Shrine || place.Position != site || place.Effort != 120 {
		t.Errorf("site = %+v", place)
	}
	move := out.cmds[1].(command.IssueMoveOrder)
	if dist := move.Position.Dist(site); dist < 59.999 || dist > 60.001 {
		t.Errorf("builders sent %v from the site, want 60", dist)
	}
	if got := move.Direction.Len(); got != 2 {
		t.Errorf("direction length = %v, want 2", got)
	}
	deps := d.State().Sets[0].Dependants
	if len(deps) != 2 || deps[0].Expect != IdleEquals || !deps[0].Value {
		t.Errorf("dependants = %+v, want idle==true per unit", deps)
	}
}

func TestProduceWaitsOnStructures(t *testing.T) {
	w := newFakeWorld()
	w.structures = []donburi.Entity{5}
	w.idle[5] = false
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 2,
		Sets: []InstructionSet{
			{Name: "army", Phase: 0, Steps: []Instruction{Produce(model.ProduceWarrior, 3)}},
			{Name: "none", Phase: 1, Steps: []Instruction{Produce(model.ProducePriest, 0)}},
		},
	}, w)
	s := d.State()

	d.Tick(5)
	if out.count(command.TypeRequestProductionIncrease) != 3 {
		t.Fatalf("requests = %d, want 3", len(out.cmds))
	}
	if len(s.Sets[0].Dependants) != 1 {
		t.Fatalf("dependants = %v", s.Sets[0].Dependants)
	}
	d.Tick(5)
	if s.Sets[0].Complete {
		t.Fatal("completed while producer busy")
	}
	w.idle[5] = true
	d.Tick(5)
	if !s.Sets[0].Complete {
		t.Fatal("not complete after producer went idle")
	}

	d.Tick(5) // phase 1
	d.Tick(5)
	if !s.Sets[1].Complete || len(out.cmds) != 3 {
		t.Errorf("zero-count produce should complete without commands: %+v", s.Sets[1])
	}
}

func TestSkipWhen(t *testing.T) {
	w := newFakeWorld()
	w.buildings[model.Shrine] = 3
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{
			{Name: "enough shrines", Phase: 0, SkipWhen: `StructureCount("Shrine") >= 3`, Steps: []Instruction{Select(anywhere)}},
			{Name: "poor", Phase: 0, SkipWhen: `!CanAfford(10.0)`, Steps: []Instruction{Select(anywhere)}},
		},
	}, w)
	w.energy = 50

	d.Tick(5)
	s := d.State()
	if !s.Sets[0].Complete || s.Sets[0].CurrentStep != 0 {
		t.Errorf("guarded set should be skipped: %+v", s.Sets[0])
	}
	if s.Sets[1].CurrentStep != 1 {
		t.Errorf("affordable set should run, step=%d", s.Sets[1].CurrentStep)
	}
	if len(out.cmds) != 1 {
		t.Errorf("commands = %d, want 1", len(out.cmds))
	}
}

func TestEmitErrorsDoNotStall(t *testing.T) {
	w := newFakeWorld()
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 1,
		Sets: []InstructionSet{{
			Name:  "select",
			Phase: 0,
			Steps: []Instruction{Select(anywhere), Produce(model.ProduceWorker, 1)},
		}},
	}, w)
	out.err = errors.New("trace closed")

	d.Tick(5)
	d.Tick(5)
	if !d.State().Sets[0].Complete {
		t.Error("emit failures should not block the script")
	}
}

func TestSetsInOnePhaseRunTogether(t *testing.T) {
	w := newFakeWorld()
	d, out := newTestDirector(t, Catalogue{
		LoopPhase:  0,
		FinalPhase: 2,
		Sets: []InstructionSet{
			{Name: "a", Phase: 0, Steps: []Instruction{Select(anywhere)}},
			{Name: "b", Phase: 0, Steps: []Instruction{Select(anywhere), Select(anywhere)}},
			{Name: "later", Phase: 1, Steps: []Instruction{Select(anywhere)}},
		},
	}, w)
	s := d.State()

	d.Tick(5)
	if len(out.cmds) != 2 {
		t.Fatalf("both phase-0 sets should dispatch, got %d commands", len(out.cmds))
	}
	d.Tick(5)
	if s.CurrentPhase != 0 || !s.Sets[1].Complete {
		t.Fatalf("phase=%d b=%+v", s.CurrentPhase, s.Sets[1])
	}
	d.Tick(5)
	if s.CurrentPhase != 1 || s.Sets[2].CurrentStep != 0 {
		t.Errorf("phase 1 should start only after phase 0 finished: phase=%d", s.CurrentPhase)
	}
}
