package physics

import (
	"fmt"
	"sort"
)

// Pair is a candidate collision pair produced by a broadphase.
type Pair struct {
	A, B *Body
}

// Broadphase discards body pairs that cannot be touching before the
// narrowphase computes contacts.
type Broadphase interface {
	Name() string
	Pairs(bodies []*Body) []Pair
}

func NewBroadphase(name string) (Broadphase, error) {
	switch name {
	case "naive":
		return &NaiveBroadphase{}, nil
	case "sap", "":
		return NewSAPBroadphase(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBroadphase, name)
	}
}

// needsTest reports whether two bodies can produce a contact worth solving.
func needsTest(a, b *Body) bool {
	if a.IsStatic() && b.IsStatic() {
		return false
	}
	aInactive := a.IsStatic() || a.IsSleeping()
	bInactive := b.IsStatic() || b.IsSleeping()
	return !(aInactive && bInactive)
}

// NaiveBroadphase tests every pair. Fine for a handful of bodies.
type NaiveBroadphase struct{}

func (n *NaiveBroadphase) Name() string { return "naive" }

func (n *NaiveBroadphase) Pairs(bodies []*Body) []Pair {
	pairs := make([]Pair, 0)
	for i := 0; i < len(bodies); i++ {
		bi := bodies[i]
		boxI := bi.AABB()
		for j := i + 1; j < len(bodies); j++ {
			bj := bodies[j]
			if !needsTest(bi, bj) {
				continue
			}
			if boxI.Overlaps(bj.AABB()) {
				pairs = append(pairs, Pair{bi, bj})
			}
		}
	}
	return pairs
}

// SAPBroadphase is a sweep-and-prune along one axis. With AutoAxis set the
// axis with the largest positional variance is picked on every call.
type SAPBroadphase struct {
	Axis     int
	AutoAxis bool

	order []int
	boxes []AABB
}

func NewSAPBroadphase() *SAPBroadphase {
	return &SAPBroadphase{Axis: 0, AutoAxis: true}
}

func (s *SAPBroadphase) Name() string { return "sap" }

func (s *SAPBroadphase) Pairs(bodies []*Body) []Pair {
	n := len(bodies)
	if cap(s.boxes) < n {
		s.boxes = make([]AABB, n)
		s.order = make([]int, n)
	}
	s.boxes = s.boxes[:n]
	s.order = s.order[:n]
	for i, b := range bodies {
		s.boxes[i] = b.AABB()
		s.order[i] = i
	}

	if s.AutoAxis {
		s.Axis = varianceAxis(bodies)
	}
	axis := s.Axis
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.boxes[s.order[i]].Min[axis] < s.boxes[s.order[j]].Min[axis]
	})

	pairs := make([]Pair, 0)
	for i := 0; i < n; i++ {
		ii := s.order[i]
		for j := i + 1; j < n; j++ {
			jj := s.order[j]
			if s.boxes[jj].Min[axis] > s.boxes[ii].Max[axis] {
				break
			}
			bi, bj := bodies[ii], bodies[jj]
			if !needsTest(bi, bj) {
				continue
			}
			if s.boxes[ii].Overlaps(s.boxes[jj]) {
				if ii > jj {
					bi, bj = bj, bi
				}
				pairs = append(pairs, Pair{bi, bj})
			}
		}
	}
	return pairs
}

func varianceAxis(bodies []*Body) int {
	if len(bodies) < 2 {
		return 0
	}
	var sum, sumSq [3]float64
	for _, b := range bodies {
		for k := 0; k < 3; k++ {
			sum[k] += b.Position[k]
			sumSq[k] += b.Position[k] * b.Position[k]
		}
	}
	n := float64(len(bodies))
	best, bestVar := 0, -1.0
	for k := 0; k < 3; k++ {
		mean := sum[k] / n
		v := sumSq[k]/n - mean*mean
		if v > bestVar {
			best, bestVar = k, v
		}
	}
	return best
}
