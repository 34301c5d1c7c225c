package model

// Arena is the playable rectangle, centred on the origin like the standard
// 1680x840 battlefield. Orders targeting outside it are pulled back in.
type Arena struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Bounds returns the arena rectangle.
func (a Arena) Bounds() Rect {
	return RectFromCenterSize(Vec2{}, Vec2{a.Width, a.Height})
}

// Inside reports whether p lies within the arena.
// A zero-sized arena is treated as unbounded.
func (a Arena) Inside(p Vec2) bool {
	if a.Width <= 0 || a.Height <= 0 {
		return true
	}
	return a.Bounds().Contains(p)
}

// Clamp moves p onto the nearest point inside the arena.
// Returns p unchanged for a zero-sized arena.
func (a Arena) Clamp(p Vec2) Vec2 {
	if a.Width <= 0 || a.Height <= 0 {
		return p
	}
	b := a.Bounds()
	return Vec2{
		X: clampf(p.X, b.Min.X, b.Max.X),
		Y: clampf(p.Y, b.Min.Y, b.Max.Y),
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
