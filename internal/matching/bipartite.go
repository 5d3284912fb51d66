// Package matching implements the bipartite matching primitives used by the
// placer: maximum-cardinality matching (Hopcroft–Karp) and minimum-weight
// source-saturating matching on a dense cost matrix.
package matching

import "math"

// Unmatched marks a vertex without a partner in a matching result.
const Unmatched = -1

const infDistance = math.MaxInt

// hopcroftKarp holds the working state of one maximum-matching run.
// Sources are 0..len(adj)-1 and sinks are 0..nSinks-1.
type hopcroftKarp struct {
	adj            [][]int
	distance       []int
	matchU, matchV []int
}

// MaximumBipartiteMatching returns a maximum-cardinality matching of the
// bipartite graph whose edges are adjacency[source] = sinks.
//
// When inverted is false the result is indexed by source and holds the
// matched sink. When inverted is true it is indexed by sink, with length one
// past the largest sink index, and holds the matched source. Vertices
// without a partner hold Unmatched. Negative sink indices are ignored.
func MaximumBipartiteMatching(adjacency [][]int, inverted bool) []int {
	nSinks := 0
	adj := make([][]int, len(adjacency))
	for u, sinks := range adjacency {
		seen := make(map[int]bool, len(sinks))
		for _, v := range sinks {
			if v < 0 || seen[v] {
				continue
			}
			seen[v] = true
			adj[u] = append(adj[u], v)
			if v+1 > nSinks {
				nSinks = v + 1
			}
		}
	}

	g := &hopcroftKarp{
		adj:      adj,
		distance: make([]int, len(adj)),
		matchU:   filled(len(adj), Unmatched),
		matchV:   filled(nSinks, Unmatched),
	}
	for g.bfs() {
		for u := range g.adj {
			if g.matchU[u] == Unmatched {
				g.dfs(u)
			}
		}
	}

	if inverted {
		return g.matchV
	}
	return g.matchU
}

// bfs layers the sources by alternating-path distance from the free ones.
// It reports whether some free sink is reachable.
func (g *hopcroftKarp) bfs() bool {
	queue := make([]int, 0, len(g.adj))
	for u := range g.adj {
		if g.matchU[u] == Unmatched {
			g.distance[u] = 0
			queue = append(queue, u)
		} else {
			g.distance[u] = infDistance
		}
	}

	limit := infDistance
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if g.distance[u] >= limit {
			continue
		}
		for _, v := range g.adj[u] {
			w := g.matchV[v]
			if w == Unmatched {
				if limit == infDistance {
					limit = g.distance[u] + 1
				}
			} else if g.distance[w] == infDistance {
				g.distance[w] = g.distance[u] + 1
				queue = append(queue, w)
			}
		}
	}
	return limit != infDistance
}

// dfs looks for an augmenting path from u along the BFS layering.
func (g *hopcroftKarp) dfs(u int) bool {
	for _, v := range g.adj[u] {
		w := g.matchV[v]
		if w == Unmatched || (g.distance[w] == g.distance[u]+1 && g.dfs(w)) {
			g.matchU[u] = v
			g.matchV[v] = u
			return true
		}
	}
	g.distance[u] = infDistance
	return false
}

func filled(n, value int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = value
	}
	return s
}
