package physics

import "math"

// Body is a point mass in a two-dimensional world. Y is the height above
// the floor.
type Body struct {
	X, Y   float64
	VX, VY float64
}

// Store holds every body. It does no locking: tasks touching it declare
// their access to the velocity and position resources and the scheduler
// keeps conflicting tasks apart.
type Store struct {
	bodies []Body
}

// NewStore creates n bodies spread along the X axis at increasing heights.
func NewStore(n int) *Store {
	bodies := make([]Body, n)
	for i := range bodies {
		bodies[i] = Body{X: float64(i), Y: 10 + float64(i)}
	}
	return &Store{bodies: bodies}
}

// Reset replaces the bodies with a copy of bodies.
func (s *Store) Reset(bodies []Body) {
	s.bodies = append(s.bodies[:0], bodies...)
}

// Bodies returns a copy of the bodies.
func (s *Store) Bodies() []Body {
	return append([]Body(nil), s.bodies...)
}

// Len returns the number of bodies.
func (s *Store) Len() int {
	return len(s.bodies)
}

// Summary reports aggregate state as slog key/value pairs.
func (s *Store) Summary() []any {
	if len(s.bodies) == 0 {
		return []any{"bodies", 0}
	}
	var height, speed float64
	for _, b := range s.bodies {
		height += b.Y
		speed += math.Hypot(b.VX, b.VY)
	}
	n := float64(len(s.bodies))
	return []any{"bodies", len(s.bodies), "mean_height", height / n, "mean_speed", speed / n}
}
