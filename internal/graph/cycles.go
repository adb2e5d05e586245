package graph

import (
	"sort"

	t "archmap/internal/types"
)

// detectCycles enumerates cycles with an iterative depth-first traversal
// over interned node ids. Each cycle is reported as a path whose first
// entry is repeated at the end. Traversal continues after recording a
// cycle, so multiple independent cycles are found; overlapping rotations
// of the same cycle may both appear. Runs in O(V+E).
func detectCycles(paths []string, edges []*t.ModuleEdge) [][]string {
	ids := make(map[string]int, len(paths))
	for i, p := range paths {
		ids[p] = i
	}
	adj := make([][]int, len(paths))
	for _, e := range edges {
		src, okS := ids[e.Source]
		dst, okD := ids[e.Target]
		if !okS || !okD || src == dst {
			continue
		}
		adj[src] = append(adj[src], dst)
	}
	for i := range adj {
		sort.Ints(adj[i])
	}

	cycles := [][]string{}
	visited := make([]bool, len(paths))
	onStack := make([]bool, len(paths))

	type frame struct {
		node int
		next int
	}

	for start := range paths {
		if visited[start] {
			continue
		}
		stack := []frame{{node: start}}
		pathStack := []int{start}
		onStack[start] = true

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next < len(adj[f.node]) {
				nb := adj[f.node][f.next]
				f.next++
				if onStack[nb] {
					cycles = append(cycles, slicePath(pathStack, nb, paths))
					continue
				}
				if visited[nb] {
					continue
				}
				stack = append(stack, frame{node: nb})
				pathStack = append(pathStack, nb)
				onStack[nb] = true
				continue
			}
			visited[f.node] = true
			onStack[f.node] = false
			pathStack = pathStack[:len(pathStack)-1]
			stack = stack[:len(stack)-1]
		}
	}
	return cycles
}

// slicePath copies the portion of the traversal path from nb to the end
// and closes it by repeating nb.
func slicePath(pathStack []int, nb int, paths []string) []string {
	idx := 0
	for i, v := range pathStack {
		if v == nb {
			idx = i
			break
		}
	}
	cycle := make([]string, 0, len(pathStack)-idx+1)
	for _, v := range pathStack[idx:] {
		cycle = append(cycle, paths[v])
	}
	cycle = append(cycle, paths[nb])
	return cycle
}
