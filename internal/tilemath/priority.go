package tilemath

import "sort"

// PrioritizeTiles orders tiles center-out by squared distance to center,
// ascending, using a stable sort. Intended for modest tile counts (≲50).
func PrioritizeTiles(tiles []Coord, center Coord) []Coord {
	ordered := make([]Coord, len(tiles))
	copy(ordered, tiles)

	dist := make(map[Coord]int, len(ordered))
	for _, t := range ordered {
		dx := t.X - center.X
		dy := t.Y - center.Y
		dist[t] = dx*dx + dy*dy
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return dist[ordered[i]] < dist[ordered[j]]
	})
	return ordered
}

// PrioritizeTilesBFS orders tiles by a 4-connected breadth-first search
// from center over the set of visible tiles. A tile's distance is the BFS
// level at which it is first popped; the result is BFS visit order.
//
// Tiles in visible but unreachable from center via 4-connectivity within
// visible are omitted. GetVisibleTiles always returns a rectangle with
// center inside it, so in practice nothing is dropped; callers supplying a
// non-convex tile set should be aware that unreachable tiles are dropped.
func PrioritizeTilesBFS(visible []Coord, center Coord) []Coord {
	present := make(map[Coord]bool, len(visible))
	for _, t := range visible {
		present[t] = true
	}
	if !present[center] {
		return nil
	}

	visited := make(map[Coord]bool, len(visible))
	queue := []Coord{center}
	visited[center] = true

	order := make([]Coord, 0, len(visible))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)

		neighbors := [4]Coord{
			{Z: cur.Z, X: cur.X + 1, Y: cur.Y},
			{Z: cur.Z, X: cur.X - 1, Y: cur.Y},
			{Z: cur.Z, X: cur.X, Y: cur.Y + 1},
			{Z: cur.Z, X: cur.X, Y: cur.Y - 1},
		}
		for _, n := range neighbors {
			if present[n] && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return order
}
