package graph

import (
	"container/heap"
	"errors"
	"fmt"
)

// Blocked is the weight of an impassable edge. It is larger than any cost a
// real path on a playable board can accumulate.
const Blocked = 999999999

// DefaultWeight is the cost of one elementary step.
const DefaultWeight = 1

var ErrNodeNotFound = errors.New("node not found")

// NodeID identifies a node within a graph and its copies.
type NodeID int

// Node is a point of a movement graph. Two nodes are the same node iff their
// IDs match; X and Y are absolute board coordinates and change on translation.
type Node struct {
	ID NodeID `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

// Edge connects two nodes. A directed edge may only be traversed from A to B,
// but both endpoints still count as neighbours of each other.
type Edge struct {
	A        NodeID `json:"a"`
	B        NodeID `json:"b"`
	Weight   int    `json:"weight"`
	Directed bool   `json:"directed,omitempty"`

	base int
}

// Other returns the endpoint of e that is not id.
func (e *Edge) Other(id NodeID) NodeID {
	if e.A == id {
		return e.B
	}
	return e.A
}

// IsBlocked reports whether the edge currently carries the Blocked weight.
func (e *Edge) IsBlocked() bool {
	return e.Weight >= Blocked
}

// traversableFrom reports whether the edge can be walked starting at id.
func (e *Edge) traversableFrom(id NodeID) bool {
	return !e.Directed || e.A == id
}

// Graph maps every node to the set of edges incident to it.
type Graph struct {
	nodes  map[NodeID]*Node
	edges  map[NodeID][]*Edge
	order  []NodeID
	nextID NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]*Node),
		edges: make(map[NodeID][]*Edge),
	}
}

// AddNode inserts a node at (x, y) and returns its fresh ID.
func (g *Graph) AddNode(x, y int) NodeID {
	g.nextID++
	id := g.nextID
	g.nodes[id] = &Node{ID: id, X: x, Y: y}
	g.edges[id] = nil
	g.order = append(g.order, id)
	return id
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, id := range g.order {
		for _, e := range g.edges[id] {
			if e.A == id {
				count++
			}
		}
	}
	return count
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.nodes[id])
	}
	return out
}

// Edges returns the edges incident to id.
func (g *Graph) Edges(id NodeID) []*Edge {
	return g.edges[id]
}

// FindNodeByPosition returns a node at (x, y). If several nodes share the
// coordinate, which one is returned is unspecified.
func (g *Graph) FindNodeByPosition(x, y int) (NodeID, bool) {
	for _, id := range g.order {
		n := g.nodes[id]
		if n.X == x && n.Y == y {
			return id, true
		}
	}
	return 0, false
}

// Neighbourhood returns id followed by every node sharing an edge with it.
func (g *Graph) Neighbourhood(id NodeID) []NodeID {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	out := []NodeID{id}
	for _, e := range g.edges[id] {
		out = append(out, e.Other(id))
	}
	return out
}

// AreNeighbours reports whether a and b share an edge. A node always
// neighbours itself.
func (g *Graph) AreNeighbours(a, b NodeID) bool {
	if a == b {
		_, ok := g.nodes[a]
		return ok
	}
	return g.ConnectingEdge(a, b) != nil
}

// ConnectingEdge returns the edge between a and b, or nil.
func (g *Graph) ConnectingEdge(a, b NodeID) *Edge {
	for _, e := range g.edges[a] {
		if e.Other(a) == b {
			return e
		}
	}
	return nil
}

// Connect adds an edge between a and b unless they are already neighbours.
func (g *Graph) Connect(a, b NodeID, weight int, directed bool) error {
	if _, ok := g.nodes[a]; !ok {
		return fmt.Errorf("connect %d: %w", a, ErrNodeNotFound)
	}
	if _, ok := g.nodes[b]; !ok {
		return fmt.Errorf("connect %d: %w", b, ErrNodeNotFound)
	}
	if g.AreNeighbours(a, b) {
		return nil
	}
	e := &Edge{A: a, B: b, Weight: weight, Directed: directed, base: weight}
	g.edges[a] = append(g.edges[a], e)
	g.edges[b] = append(g.edges[b], e)
	return nil
}

var (
	orthogonalOffsets = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonalOffsets   = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// ConnectAdjacentNodes wires every node to the nodes one step away along an axis.
func (g *Graph) ConnectAdjacentNodes() {
	g.connectOffsets(orthogonalOffsets)
}

// ConnectDiagonalNodes wires every node to the nodes one step away diagonally.
func (g *Graph) ConnectDiagonalNodes() {
	g.connectOffsets(diagonalOffsets)
}

func (g *Graph) connectOffsets(offsets [][2]int) {
	// Coordinates move on translation, so the index is rebuilt on every call.
	index := make(map[[2]int][]NodeID, len(g.order))
	for _, id := range g.order {
		n := g.nodes[id]
		key := [2]int{n.X, n.Y}
		index[key] = append(index[key], id)
	}
	for _, id := range g.order {
		n := g.nodes[id]
		for _, off := range offsets {
			for _, other := range index[[2]int{n.X + off[0], n.Y + off[1]}] {
				// both IDs exist, so Connect cannot fail
				_ = g.Connect(id, other, DefaultWeight, false)
			}
		}
	}
}

// ConnectAllTo wires center to every other node in the graph.
func (g *Graph) ConnectAllTo(center NodeID) error {
	if _, ok := g.nodes[center]; !ok {
		return fmt.Errorf("connect all to %d: %w", center, ErrNodeNotFound)
	}
	for _, id := range g.order {
		if id == center {
			continue
		}
		if err := g.Connect(center, id, DefaultWeight, false); err != nil {
			return err
		}
	}
	return nil
}

// BlockNode marks every edge incident to id as impassable.
func (g *Graph) BlockNode(id NodeID) {
	for _, e := range g.edges[id] {
		e.Weight = Blocked
	}
}

// UnblockNode restores every edge incident to id to its original weight.
func (g *Graph) UnblockNode(id NodeID) {
	for _, e := range g.edges[id] {
		e.Weight = e.base
	}
}

// BlockPosition blocks every node located at (x, y).
func (g *Graph) BlockPosition(x, y int) {
	for _, id := range g.order {
		if n := g.nodes[id]; n.X == x && n.Y == y {
			g.BlockNode(id)
		}
	}
}

// UnblockPosition unblocks every node located at (x, y).
func (g *Graph) UnblockPosition(x, y int) {
	for _, id := range g.order {
		if n := g.nodes[id]; n.X == x && n.Y == y {
			g.UnblockNode(id)
		}
	}
}

// Translate shifts every node by (dx, dy).
func (g *Graph) Translate(dx, dy int) {
	for _, n := range g.nodes {
		n.X += dx
		n.Y += dy
	}
}

// ReflectY mirrors every node across the X axis.
func (g *Graph) ReflectY() {
	for _, n := range g.nodes {
		n.Y = -n.Y
	}
}

// Copy returns an independent deep copy. Node IDs are preserved.
func (g *Graph) Copy() *Graph {
	c := &Graph{
		nodes:  make(map[NodeID]*Node, len(g.nodes)),
		edges:  make(map[NodeID][]*Edge, len(g.edges)),
		order:  append([]NodeID(nil), g.order...),
		nextID: g.nextID,
	}
	for id, n := range g.nodes {
		cp := *n
		c.nodes[id] = &cp
	}
	copied := make(map[*Edge]*Edge)
	for _, id := range g.order {
		list := make([]*Edge, 0, len(g.edges[id]))
		for _, e := range g.edges[id] {
			ce, ok := copied[e]
			if !ok {
				cp := *e
				ce = &cp
				copied[e] = ce
			}
			list = append(list, ce)
		}
		c.edges[id] = list
	}
	return c
}

// TraversalCost returns the cheapest cost of walking from start to end, or
// Blocked when no path avoids blocked edges.
func (g *Graph) TraversalCost(start, end NodeID) int {
	if _, ok := g.nodes[end]; !ok {
		return Blocked
	}
	if start == end {
		if _, ok := g.nodes[start]; ok {
			return 0
		}
		return Blocked
	}
	cost, ok := g.Costs(start)[end]
	if !ok {
		return Blocked
	}
	return cost
}

// Costs runs Dijkstra from start and returns the cost of every node reachable
// without crossing a blocked edge. Unreachable nodes are absent.
func (g *Graph) Costs(start NodeID) map[NodeID]int {
	dist := make(map[NodeID]int)
	if _, ok := g.nodes[start]; !ok {
		return dist
	}
	dist[start] = 0
	visited := make(map[NodeID]bool, len(g.nodes))
	pq := &costQueue{{id: start, cost: 0}}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(costItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		for _, e := range g.edges[cur.id] {
			if e.IsBlocked() || !e.traversableFrom(cur.id) {
				continue
			}
			next := e.Other(cur.id)
			if visited[next] {
				continue
			}
			nc := cur.cost + e.Weight
			if nc >= Blocked {
				continue
			}
			if old, seen := dist[next]; !seen || nc < old {
				dist[next] = nc
				heap.Push(pq, costItem{id: next, cost: nc})
			}
		}
	}
	return dist
}

type costItem struct {
	id   NodeID
	cost int
}

type costQueue []costItem

func (q costQueue) Len() int { return len(q) }
func (q costQueue) Less(i, j int) bool {
	if q[i].cost == q[j].cost {
		return q[i].id < q[j].id
	}
	return q[i].cost < q[j].cost
}
func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *costQueue) Push(x any)   { *q = append(*q, x.(costItem)) }
func (q *costQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
