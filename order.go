package streamnet

// OrderStreams computes per-segment stream order: the number of leaf segments
// (segments with no predecessors) whose downstream walk passes through it.
// Result is aligned with graph.Segments(). At braided junctions the walk
// follows the lowest-id successor; revisits end the walk so looped geometry
// can't stall it.
func OrderStreams(graph *ChannelGraph) []int {
	orders := make([]int, len(graph.Segments()))
	for tip := range graph.Segments() {
		if len(graph.Predecessors(tip)) > 0 {
			continue
		}
		visited := map[int]bool{}
		current := tip
		for !visited[current] {
			visited[current] = true
			orders[current]++
			successors := graph.Successors(current)
			if len(successors) == 0 {
				break
			}
			current = successors[0]
		}
	}
	return orders
}
