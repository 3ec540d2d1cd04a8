package drainage

import "math"

// upstream adds the area of every analyzed neighbour draining into i to the
// area of i and returns the area-weighted mean deviation of those neighbours.
// It must run after steepest has initialised i.
func (s *state) upstream(i int) float64 {
	weighted := 0.0
	for _, d := range neighbours {
		j, ok := s.step(i, d)
		if !ok || !s.analyzed[j] {
			continue
		}
		// From j the edge back to i runs along d.Opposite().
		if s.dir[j] != d.Opposite() {
			continue
		}
		s.area[i] += s.area[j]
		weighted += s.area[j] * s.dev[j]
	}
	return weighted / s.area[i]
}

// deviations returns the deviation of the cardinal and diagonal choices for a
// flow angle, signed by sigma.
func (s *state) deviations(angle float64, sigma int) (dev1, dev2 float64) {
	switch s.metric {
	case MetricTransversal:
		dev1 = s.dx * math.Sin(angle)
		dev2 = s.dx * math.Sqrt2 * math.Sin(math.Pi/4-angle)
	default:
		dev1 = angle
		dev2 = math.Pi/4 - angle
	}
	if sigma > 0 {
		dev2 = -dev2
	} else {
		dev1 = -dev1
	}
	return dev1, dev2
}
