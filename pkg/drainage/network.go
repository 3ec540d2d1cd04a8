package drainage

import "github.com/matzehuels/drainflow/pkg/grid"

// correctNetwork forces every eligible network cell to its old direction and
// re-points the bank cells around it to their extreme neighbour off the
// network (see bankExit). Each bank cell is touched at most once. It returns
// the number of direction changes.
func (s *state) correctNetwork(net grid.Reader[int]) int {
	n := s.rows * s.cols
	channel := make([]bool, n)
	for i := range channel {
		row, col := grid.RowCol(i, s.cols)
		channel[i] = !net.IsNoValue(row, col)
	}
	modified := make([]bool, n)

	changed := 0
	set := func(i int, d Direction) {
		if s.dir[i] != d {
			s.dir[i] = d
			changed++
		}
	}

	for i := 0; i < n; i++ {
		if !channel[i] || !s.eligible(i) {
			continue
		}
		forced := s.oldDirection(i)
		target := -1
		if j, ok := s.step(i, forced); ok {
			target = j
		}

		for _, d := range neighbours {
			j, _, ok := s.neighbourElevation(i, d)
			if !ok || j == target || channel[j] || modified[j] {
				continue
			}
			if s.dir[j] == None || s.dir[j] == Outlet {
				continue
			}
			modified[j] = true
			if exit, ok := s.bankExit(j, channel); ok {
				set(j, exit)
			}
		}

		if forced.Valid() {
			set(i, forced)
		}

		// The forced target must not drain straight back.
		if target >= 0 && !channel[target] && s.next(target) == i {
			modified[target] = true
			if d, ok := s.lowestExit(target, i); ok {
				set(target, d)
			}
		}
	}
	return changed
}

// bankExit picks the new direction of bank cell j among its resolved
// neighbours off the network that do not drain into j, in the fixed
// enumeration order. The primary scan takes the highest of them, the
// secondary scan the lowest; the first one strictly below j wins. ok is false
// when neither is, and j keeps its direction.
func (s *state) bankExit(j int, channel []bool) (Direction, bool) {
	e0, ok := s.elevation(j)
	if !ok {
		return None, false
	}
	high, low := None, None
	var eHigh, eLow float64
	for _, d := range neighbours {
		m, e, ok := s.neighbourElevation(j, d)
		if !ok || channel[m] || s.dir[m] == None || s.next(m) == j {
			continue
		}
		if high == None || e > eHigh {
			high, eHigh = d, e
		}
		if low == None || e < eLow {
			low, eLow = d, e
		}
	}
	switch {
	case high != None && eHigh < e0:
		return high, true
	case low != None && eLow < e0:
		return low, true
	}
	return None, false
}

// lowestExit returns the direction from j to its lowest strictly lower
// resolved neighbour, skipping avoid and any neighbour that drains into j.
func (s *state) lowestExit(j, avoid int) (Direction, bool) {
	lowest, ok := s.elevation(j)
	if !ok {
		return None, false
	}
	best := None
	for _, d := range neighbours {
		m, e, ok := s.neighbourElevation(j, d)
		if !ok || m == avoid || e >= lowest || s.dir[m] == None {
			continue
		}
		if s.next(m) == j {
			continue
		}
		best, lowest = d, e
	}
	return best, best != None
}

// reaccumulate rebuilds every area from the final directions with a
// topological pass. Cells on a cycle are reported and unresolved first.
func (s *state) reaccumulate() {
	n := s.rows * s.cols
	for _, cycle := range cycles(n, s.next) {
		for _, i := range cycle {
			s.fault(FaultCycle, i, "closed by network correction")
			s.unresolve(i)
		}
	}

	indegree := make([]int, n)
	for i, d := range s.dir {
		if d == None {
			continue
		}
		s.area[i] = 1
		if j := s.next(i); j >= 0 && s.dir[j] != None {
			indegree[j]++
		}
	}

	queue := make([]int, 0, n)
	for i, d := range s.dir {
		if d != None && indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	for head := 0; head < len(queue); head++ {
		i := queue[head]
		j := s.next(i)
		if j < 0 || s.dir[j] == None {
			continue
		}
		s.area[j] += s.area[i]
		if indegree[j]--; indegree[j] == 0 {
			queue = append(queue, j)
		}
	}
}
