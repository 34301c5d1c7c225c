package sim

import (
	"math"

	"github.com/nstehr/animancer/model"
)

// Slots lays out n formation positions around center. Spacing between
// slots is spacing scaled by the length of direction; a zero direction
// keeps the base spacing.
//
// Ringed fills hexagonal shells outward from the centre (1, 6, 12, ...
// slots), rotated to face direction. Linear puts every slot on one line
// through center, perpendicular to direction.
func Slots(f model.Formation, center, direction model.Vec2, n int, spacing float64) []model.Vec2 {
	if n <= 0 {
		return nil
	}
	if l := direction.Len(); l > 0 {
		spacing *= l
	}
	heading := 0.0
	if direction.Len() > 0 {
		heading = math.Atan2(direction.Y, direction.X)
	}

	switch f {
	case model.Linear:
		return linearSlots(center, direction, n, spacing)
	default:
		return ringedSlots(center, heading, n, spacing)
	}
}

func ringedSlots(center model.Vec2, heading float64, n int, spacing float64) []model.Vec2 {
	slots := make([]model.Vec2, 0, n)
	slots = append(slots, center)
	for shell := 1; len(slots) < n; shell++ {
		radius := float64(shell) * spacing
		for side := 0; side < 6 && len(slots) < n; side++ {
			a := hexCorner(radius, side, heading)
			b := hexCorner(radius, side+1, heading)
			for step := 0; step < shell && len(slots) < n; step++ {
				t := float64(step) / float64(shell)
				slots = append(slots, center.Add(a.Add(b.Sub(a).Scale(t))))
			}
		}
	}
	return slots
}

func hexCorner(radius float64, i int, heading float64) model.Vec2 {
	return model.Vec2{X: radius}.Rotate(heading + float64(i)*math.Pi/3)
}

func linearSlots(center, direction model.Vec2, n int, spacing float64) []model.Vec2 {
	across := direction.Normalize().Perp()
	if across.Len() == 0 {
		across = model.Vec2{X: 1}
	}
	slots := make([]model.Vec2, n)
	mid := float64(n-1) / 2
	for i := range slots {
		slots[i] = center.Add(across.Scale((float64(i) - mid) * spacing))
	}
	return slots
}
