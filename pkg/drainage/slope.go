package drainage

import "math"

// descent is the steepest triangulated descent found at a cell.
type descent struct {
	slope float64
	// angle is measured from the cardinal edge towards the diagonal, in [0, π/4].
	angle        float64
	tri          triangle
	eCard, eDiag float64
}

// steepest evaluates the eight facets around i and returns the one with the
// largest clamped slope. A zero slope means i is a flat or a pit. The first
// facet in table order wins ties.
//
// As a side effect i is marked analyzed and its area is set to 1.
func (s *state) steepest(i int) descent {
	var best descent
	e0, _ := s.elevation(i)

	for _, tri := range triangles {
		_, ec, okc := s.neighbourElevation(i, tri.cardinal)
		_, ed, okd := s.neighbourElevation(i, tri.diagonal)
		if !okc || !okd {
			continue
		}
		slope, angle := s.facet(e0, ec, ed)
		if slope > best.slope {
			best = descent{slope: slope, angle: angle, tri: tri, eCard: ec, eDiag: ed}
		}
	}

	s.analyzed[i] = true
	s.area[i] = 1
	return best
}

// facet returns the slope and flow angle over one triangle, clamped to the
// 45° sector between its cardinal and diagonal edges.
func (s *state) facet(e0, ec, ed float64) (slope, angle float64) {
	pend1 := (e0 - ec) / s.dy
	pend2 := (ec - ed) / s.dx

	var theta float64
	switch {
	case pend1 != 0:
		theta = math.Atan(pend2 / pend1)
	case pend2 >= 0:
		theta = math.Pi / 2
	default:
		theta = -math.Pi / 2
	}

	sp := math.Hypot(pend1, pend2)
	sd := (e0 - ed) / s.diag

	switch {
	case theta >= 0 && theta <= math.Pi/4 && pend1 >= 0:
		return sp, theta
	case pend1 > sd:
		return pend1, 0
	default:
		return sd, math.Pi / 4
	}
}
