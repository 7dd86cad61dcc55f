// Package path finds walking routes across the farm grid: 4-directional A*
// followed by a line-of-sight pass that collapses the cell chain into a few
// waypoints for the movement layer to interpolate between.
package path

import (
	"container/heap"

	"farmgrid.app/internal/sim/world"
)

// FindPath returns waypoints from start to goal, inclusive of both, or nil
// when the goal is out of bounds, blocked, or unreachable. The start cell is
// not checked: a player already standing somewhere can always walk off it.
func FindPath(g *world.Grid, start, goal world.Point) []world.Point {
	if !g.InBounds(start.X, start.Y) || !g.InBounds(goal.X, goal.Y) {
		return nil
	}
	if !g.Walkable(goal.X, goal.Y) {
		return nil
	}
	startIdx := g.Index(start.X, start.Y)
	goalIdx := g.Index(goal.X, goal.Y)
	if startIdx == goalIdx {
		return []world.Point{start}
	}

	size := len(g.Cells)
	gScore := make([]int, size)
	cameFrom := make([]int32, size)
	for i := range gScore {
		gScore[i] = int(^uint(0) >> 1)
		cameFrom[i] = -1
	}
	gScore[startIdx] = 0

	open := &nodeQueue{}
	heap.Init(open)
	open.push(startIdx, manhattan(start, goal))
	inOpen := make([]bool, size)
	inOpen[startIdx] = true

	for open.Len() > 0 {
		cur := open.pop()
		inOpen[cur] = false
		if cur == goalIdx {
			return simplify(g, reconstruct(g, cameFrom, cur))
		}

		cx, cy := g.Coord(cur)
		for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
			nx, ny := cx+d[0], cy+d[1]
			if !g.Walkable(nx, ny) {
				continue
			}
			ni := g.Index(nx, ny)
			tentative := gScore[cur] + 1
			if tentative >= gScore[ni] {
				continue
			}
			cameFrom[ni] = int32(cur)
			gScore[ni] = tentative
			if !inOpen[ni] {
				open.push(ni, tentative+manhattan(world.Point{X: nx, Y: ny}, goal))
				inOpen[ni] = true
			}
		}
	}
	return nil
}

func manhattan(a, b world.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func reconstruct(g *world.Grid, cameFrom []int32, cur int) []world.Point {
	var rev []world.Point
	for cur != -1 {
		x, y := g.Coord(cur)
		rev = append(rev, world.Point{X: x, Y: y})
		cur = int(cameFrom[cur])
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// simplify greedily extends straight-line visibility from each kept waypoint,
// dropping intermediate cells that a direct segment can replace. The route's
// topology never changes, only its waypoint count.
func simplify(g *world.Grid, pts []world.Point) []world.Point {
	if len(pts) <= 2 {
		return pts
	}
	out := []world.Point{pts[0]}
	cur := 0
	for cur < len(pts)-1 {
		best := cur + 1
		for i := cur + 2; i < len(pts); i++ {
			if !lineWalkable(g, pts[cur], pts[i]) {
				break
			}
			best = i
		}
		out = append(out, pts[best])
		cur = best
	}
	return out
}

// lineWalkable walks the Bresenham discretization of the segment a-b and
// reports whether every traversed cell is passable.
func lineWalkable(g *world.Grid, a, b world.Point) bool {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx - dy

	for {
		if !g.Walkable(x0, y0) {
			return false
		}
		if x0 == x1 && y0 == y1 {
			return true
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// nodeQueue is a min-heap on f-score with FIFO order among ties, so equal
// candidates expand in discovery order and results stay reproducible.
type nodeQueue struct {
	items []queueNode
	seq   int
}

type queueNode struct {
	idx int
	f   int
	seq int
}

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(i, j int) bool {
	if q.items[i].f != q.items[j].f {
		return q.items[i].f < q.items[j].f
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *nodeQueue) Push(x any) { q.items = append(q.items, x.(queueNode)) }

func (q *nodeQueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

func (q *nodeQueue) push(idx, f int) {
	heap.Push(q, queueNode{idx: idx, f: f, seq: q.seq})
	q.seq++
}

func (q *nodeQueue) pop() int {
	return heap.Pop(q).(queueNode).idx
}
