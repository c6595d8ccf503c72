// Package graph implements the small weighted graphs that describe how a
// unit moves.
//
// Each node carries an absolute board coordinate. Edges carry a traversal
// cost; the Blocked weight marks an edge as impassable without removing it,
// so a graph keeps its shape while squares are occupied and freed.
//
// Usage:
//
//	g := graph.New()
//	origin := g.AddNode(0, 0)
//	for y := 1; y <= 3; y++ {
//		g.AddNode(0, y)
//	}
//	g.ConnectAdjacentNodes()
//
//	far, _ := g.FindNodeByPosition(0, 3)
//	g.BlockPosition(0, 2)
//	g.TraversalCost(origin, far) // graph.Blocked
//
// Reachability is answered with Dijkstra's algorithm over the current
// weights. Graphs are not safe for concurrent use.
package graph
