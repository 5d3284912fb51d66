package matching

import (
	"container/heap"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// NoEdge marks a missing edge in a cost matrix.
var NoEdge = math.Inf(1)

// ErrInvalidInput is returned for malformed cost matrices and for graphs
// that admit no matching saturating every source.
var ErrInvalidInput = errors.New("invalid matching input")

type edge struct {
	sink int
	cost float64
}

// MinimumWeightFullMatching matches every source (row of costs) to a
// distinct sink (column) so that the summed cost is minimal. costs[i][j] is
// the weight of edge i→j, or NoEdge when the edge is absent.
//
// The result holds the sink assigned to each source, followed by the total
// weight. Ties between equally cheap matchings are broken deterministically
// in favour of lower sink indices reached first.
func MinimumWeightFullMatching(costs [][]float64) ([]int, float64, error) {
	n := len(costs)
	if n == 0 {
		return []int{}, 0, nil
	}
	m := len(costs[0])
	if n > m {
		return nil, 0, errors.Wrapf(ErrInvalidInput, "%d sources cannot be saturated by %d sinks", n, m)
	}

	adj := make([][]edge, n)
	for i, row := range costs {
		if len(row) != m {
			return nil, 0, errors.Wrapf(ErrInvalidInput, "row %d has %d columns, want %d", i, len(row), m)
		}
		for j, c := range row {
			switch {
			case math.IsNaN(c):
				return nil, 0, errors.Wrapf(ErrInvalidInput, "cost (%d,%d) is NaN", i, j)
			case c < 0:
				return nil, 0, errors.Wrapf(ErrInvalidInput, "cost (%d,%d) is negative", i, j)
			case math.IsInf(c, 1):
				continue
			}
			adj[i] = append(adj[i], edge{sink: j, cost: c})
		}
		if len(adj[i]) == 0 {
			return nil, 0, errors.Wrapf(ErrInvalidInput, "source %d has no edges", i)
		}
		sort.SliceStable(adj[i], func(a, b int) bool {
			if adj[i][a].cost != adj[i][b].cost {
				return adj[i][a].cost < adj[i][b].cost
			}
			return adj[i][a].sink < adj[i][b].sink
		})
	}

	s := &solver{
		adj:    adj,
		u:      make([]float64, n),
		v:      make([]float64, m),
		matchU: filled(n, Unmatched),
		matchV: filled(m, Unmatched),
		dist:   make([]float64, m),
		prev:   make([]int, m),
		done:   make([]bool, m),
	}
	for src := 0; src < n; src++ {
		if !s.augment(src) {
			return nil, 0, errors.Wrapf(ErrInvalidInput, "no matching saturates source %d", src)
		}
	}

	total := 0.0
	for i, j := range s.matchU {
		total += costs[i][j]
	}
	return s.matchU, total, nil
}

// solver keeps dual potentials u (sources) and v (sinks) such that every
// reduced cost c(i,j)-u[i]-v[j] is non-negative and matched edges are tight.
type solver struct {
	adj            [][]edge
	u, v           []float64
	matchU, matchV []int

	dist []float64
	prev []int // previous sink on the shortest path, Unmatched for the first hop
	done []bool
}

// augment grows the matching by one edge along a shortest augmenting path
// from src, then updates the potentials.
func (s *solver) augment(src int) bool {
	for j := range s.dist {
		s.dist[j] = math.Inf(1)
		s.prev[j] = Unmatched
		s.done[j] = false
	}

	var pq sinkQueue
	seq := 0
	relax := func(from int, base float64, prev int) {
		for _, e := range s.adj[from] {
			if s.done[e.sink] {
				continue
			}
			d := base + e.cost - s.u[from] - s.v[e.sink]
			if d < s.dist[e.sink] {
				s.dist[e.sink] = d
				s.prev[e.sink] = prev
				heap.Push(&pq, queued{sink: e.sink, dist: d, seq: seq})
				seq++
			}
		}
	}
	relax(src, 0, Unmatched)

	var finalized []int
	target := Unmatched
	for pq.Len() > 0 {
		q := heap.Pop(&pq).(queued)
		if s.done[q.sink] || q.dist > s.dist[q.sink] {
			continue
		}
		s.done[q.sink] = true
		finalized = append(finalized, q.sink)
		owner := s.matchV[q.sink]
		if owner == Unmatched {
			target = q.sink
			break
		}
		relax(owner, q.dist, q.sink)
	}
	if target == Unmatched {
		return false
	}

	d := s.dist[target]
	s.u[src] += d
	for _, j := range finalized {
		if j == target {
			continue
		}
		s.v[j] += s.dist[j] - d
		s.u[s.matchV[j]] += d - s.dist[j]
	}

	for j := target; j != Unmatched; {
		prev := s.prev[j]
		i := src
		if prev != Unmatched {
			i = s.matchV[prev]
		}
		s.matchU[i] = j
		s.matchV[j] = i
		j = prev
	}
	return true
}

type queued struct {
	sink int
	dist float64
	seq  int
}

// sinkQueue is a min-heap on (dist, seq).
type sinkQueue []queued

func (q sinkQueue) Len() int { return len(q) }

func (q sinkQueue) Less(a, b int) bool {
	if q[a].dist != q[b].dist {
		return q[a].dist < q[b].dist
	}
	return q[a].seq < q[b].seq
}

func (q sinkQueue) Swap(a, b int) { q[a], q[b] = q[b], q[a] }

func (q *sinkQueue) Push(x any) { *q = append(*q, x.(queued)) }

func (q *sinkQueue) Pop() any {
	old := *q
	x := old[len(old)-1]
	*q = old[:len(old)-1]
	return x
}
