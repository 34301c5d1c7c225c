package model

import "math"

// Team identifies a side of the match. Conversion flips an entity between them.
type Team string

const (
	Human Team = "human"
	CPU   Team = "cpu"
)

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == Human {
		return CPU
	}
	return Human
}

// Vec2 is a world-space position or direction.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }
func (v Vec2) Perp() Vec2 { return Vec2{-v.Y, v.X} }

func (v Vec2) Rotate(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Normalize returns the unit vector of v, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rect is an axis-aligned rectangle. Min/Max need not be ordered on input;
// Canon fixes that for rectangles dragged in any direction.
type Rect struct {
	Min Vec2 `json:"min" yaml:"min"`
	Max Vec2 `json:"max" yaml:"max"`
}

// RectFromCenterSize builds the selectable box of an entity.
func RectFromCenterSize(center, size Vec2) Rect {
	half := size.Scale(0.5)
	return Rect{Min: center.Sub(half), Max: center.Add(half)}
}

func (r Rect) Canon() Rect {
	return Rect{
		Min: Vec2{math.Min(r.Min.X, r.Max.X), math.Min(r.Min.Y, r.Max.Y)},
		Max: Vec2{math.Max(r.Min.X, r.Max.X), math.Max(r.Min.Y, r.Max.Y)},
	}
}

func (r Rect) Center() Vec2 {
	return Vec2{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Contains is inclusive on every edge.
func (r Rect) Contains(p Vec2) bool {
	c := r.Canon()
	return p.X >= c.Min.X && p.X <= c.Max.X && p.Y >= c.Min.Y && p.Y <= c.Max.Y
}

// UnitKind is what a unit is able to do.
type UnitKind string

const (
	Hero    UnitKind = "hero"
	Worker  UnitKind = "worker"
	Priest  UnitKind = "priest"
	Warrior UnitKind = "warrior"
)

// StructureKind is what a construction site becomes once finished.
type StructureKind string

const (
	Shrine   StructureKind = "shrine"   // energy generator
	Producer StructureKind = "producer" // trains workers, priests and warriors
)

// ProductionKind is a line offered by a producer structure.
type ProductionKind string

const (
	ProduceWorker  ProductionKind = "worker"
	ProducePriest  ProductionKind = "priest"
	ProduceWarrior ProductionKind = "warrior"
)

// UnitKind returns the unit a production line spawns.
func (p ProductionKind) UnitKind() UnitKind {
	return UnitKind(p)
}

// Formation is the slot layout applied to a group of moving units.
type Formation string

const (
	Ringed Formation = "ringed" // hexagonal shells around the target
	Linear Formation = "linear" // a line across the approach direction
)
