// Package routing runs Dijkstra searches over a road network.
package routing

import (
	"container/heap"

	"github.com/Runan-Duan/Betweenness-Centrality/internal/roadnet"
)

type pqItem struct {
	node int64
	pred int64
	dist float64
	seq  int
}

type pq []pqItem

func (p pq) Len() int { return len(p) }
func (p pq) Less(i, j int) bool {
	if p[i].dist != p[j].dist {
		return p[i].dist < p[j].dist
	}
	return p[i].seq < p[j].seq
}
func (p pq) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *pq) Push(x any) {
	*p = append(*p, x.(pqItem))
}

func (p *pq) Pop() any {
	old := *p
	n := len(old)
	item := old[n-1]
	*p = old[:n-1]
	return item
}

// ShortestPath returns the node sequence of a least-cost route from orig to
// dest under weight w, or nil when dest is unreachable or either node is
// missing. Parallel edges cost their cheapest member. Ties go to the route
// discovered first, exploring successors in ascending id order.
func ShortestPath(g *roadnet.Graph, orig, dest int64, w roadnet.Weight) []int64 {
	if !g.HasNode(orig) || !g.HasNode(dest) {
		return nil
	}
	if orig == dest {
		return []int64{orig}
	}

	dist := map[int64]float64{orig: 0}
	prev := map[int64]int64{}
	done := map[int64]bool{}
	q := &pq{}
	seq := 0
	heap.Push(q, pqItem{node: orig, dist: 0, seq: seq})

	for q.Len() > 0 {
		cur := heap.Pop(q).(pqItem)
		u := cur.node
		if done[u] {
			continue
		}
		done[u] = true
		if u == dest {
			break
		}

		for _, v := range g.Successors(u) {
			if done[v] {
				continue
			}
			c, _ := g.MinCost(u, v, w)
			nd := cur.dist + c
			if old, found := dist[v]; !found || nd < old {
				dist[v] = nd
				prev[v] = u
				seq++
				heap.Push(q, pqItem{node: v, dist: nd, seq: seq})
			}
		}
	}

	if !done[dest] {
		return nil
	}

	path := []int64{}
	for cur := dest; cur != orig; cur = prev[cur] {
		path = append(path, cur)
	}
	path = append(path, orig)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Tree is the shortest-path DAG rooted at Source: every least-cost route
// from Source, with path counts for betweenness accumulation.
type Tree struct {
	Source int64
	// Order lists reached nodes in the order they were settled, which is
	// non-decreasing distance.
	Order []int64
	Dist  map[int64]float64
	// Sigma counts least-cost routes from Source, scaled by a constant that
	// cancels in any ratio of two entries.
	Sigma map[int64]float64
	// Pred lists the predecessors of a node on its least-cost routes.
	Pred map[int64][]int64
}

// SingleSource settles every node reachable from src under w. Distances are
// compared exactly, so two routes tie only when their float sums are equal.
func SingleSource(g *roadnet.Graph, src int64, w roadnet.Weight) *Tree {
	t := &Tree{
		Source: src,
		Dist:   map[int64]float64{},
		Sigma:  map[int64]float64{src: 1},
		Pred:   map[int64][]int64{},
	}
	if !g.HasNode(src) {
		return t
	}

	seen := map[int64]float64{src: 0}
	q := &pq{}
	seq := 0
	heap.Push(q, pqItem{node: src, pred: src, dist: 0, seq: seq})

	for q.Len() > 0 {
		cur := heap.Pop(q).(pqItem)
		v := cur.node
		if _, settled := t.Dist[v]; settled {
			continue
		}
		t.Sigma[v] += t.Sigma[cur.pred]
		t.Order = append(t.Order, v)
		t.Dist[v] = cur.dist

		for _, u := range g.Successors(v) {
			c, _ := g.MinCost(v, u, w)
			d := cur.dist + c
			_, settled := t.Dist[u]
			old, found := seen[u]
			switch {
			case !settled && (!found || d < old):
				seen[u] = d
				seq++
				heap.Push(q, pqItem{node: u, pred: v, dist: d, seq: seq})
				t.Sigma[u] = 0
				t.Pred[u] = []int64{v}
			case found && d == old:
				t.Sigma[u] += t.Sigma[v]
				t.Pred[u] = append(t.Pred[u], v)
			}
		}
	}
	return t
}
