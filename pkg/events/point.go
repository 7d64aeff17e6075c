package events

import "math"

// Point is a screen position in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(float64(p.X-other.X), float64(p.Y-other.Y))
}

// Delta is a relative scroll movement in wheel steps.
type Delta struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Add returns the componentwise sum of two deltas.
func (d Delta) Add(other Delta) Delta {
	return Delta{DX: d.DX + other.DX, DY: d.DY + other.DY}
}
