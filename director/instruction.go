package director

import (
	"fmt"

	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/animancer/model"
)

// Kind tags which variant an Instruction holds.
type Kind string

const (
	KindSelection Kind = "selection"
	KindMovement  Kind = "movement"
	KindBuild     Kind = "build"
	KindProduce   Kind = "produce"
)

// Instruction is one scripted step. Only the fields of its Kind are read:
//
//	selection: Rect
//	movement:  Target
//	build:     Position, Structure, Cost
//	produce:   Production, Count
type Instruction struct {
	Kind       Kind                 `yaml:"kind"`
	Rect       model.Rect           `yaml:"rect,omitempty"`
	Target     model.Vec2           `yaml:"target,omitempty"`
	Position   model.Vec2           `yaml:"position,omitempty"`
	Structure  model.StructureKind  `yaml:"structure,omitempty"`
	Cost       float64              `yaml:"cost,omitempty"`
	Production model.ProductionKind `yaml:"production,omitempty"`
	Count      int                  `yaml:"count,omitempty"`
}

func Select(rect model.Rect) Instruction {
	return Instruction{Kind: KindSelection, Rect: rect}
}

func Move(target model.Vec2) Instruction {
	return Instruction{Kind: KindMovement, Target: target}
}

func Build(position model.Vec2, kind model.StructureKind, cost float64) Instruction {
	return Instruction{Kind: KindBuild, Position: position, Structure: kind, Cost: cost}
}

func Produce(kind model.ProductionKind, count int) Instruction {
	return Instruction{Kind: KindProduce, Production: kind, Count: count}
}

func (in Instruction) String() string {
	switch in.Kind {
	case KindSelection:
		return fmt.Sprintf("selection(%v,%v)", in.Rect.Min, in.Rect.Max)
	case KindMovement:
		return fmt.Sprintf("movement(%v)", in.Target)
	case KindBuild:
		return fmt.Sprintf("build(%s@%v)", in.Structure, in.Position)
	case KindProduce:
		return fmt.Sprintf("produce(%s x%d)", in.Production, in.Count)
	}
	return string(in.Kind)
}

func (in Instruction) validate() error {
	switch in.Kind {
	case KindSelection, KindMovement:
	case KindBuild:
		switch in.Structure {
		case model.Shrine, model.Producer:
		default:
			return fmt.Errorf("unknown structure %q", in.Structure)
		}
		if in.Cost < 0 {
			return fmt.Errorf("negative cost %v", in.Cost)
		}
	case KindProduce:
		switch in.Production {
		case model.ProduceWorker, model.ProducePriest, model.ProduceWarrior:
		default:
			return fmt.Errorf("unknown production %q", in.Production)
		}
		if in.Count < 0 {
			return fmt.Errorf("negative count %d", in.Count)
		}
	default:
		return fmt.Errorf("unknown instruction kind %q", in.Kind)
	}
	return nil
}

// InstructionSet is a named script of steps belonging to one phase.
// SkipWhen is an optional expr condition checked before the first step;
// when it holds, the whole set is marked complete without dispatching.
type InstructionSet struct {
	Name     string        `yaml:"name"`
	Phase    int           `yaml:"phase"`
	SkipWhen string        `yaml:"skip_when,omitempty"`
	Steps    []Instruction `yaml:"steps"`

	CurrentStep int          `yaml:"-"`
	Complete    bool         `yaml:"-"`
	Dependants  []Dependency `yaml:"-"`

	skip *vm.Program
}

// reset puts the set back to its first step.
func (s *InstructionSet) reset() {
	s.CurrentStep = 0
	s.Complete = false
	s.Dependants = nil
}
