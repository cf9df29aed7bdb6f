package schema

// ---------------------------------------------------------------------
// Load Ordering (Topological / Greedy)
// ---------------------------------------------------------------------

// Node is one table in the load-order graph. Dependencies name the tables
// that must be loaded first.
type Node struct {
	Name         string
	Dependencies []string
}

// LoadOrder returns table names in an order where referenced tables come
// before the tables referencing them. Only high and medium confidence
// inferred keys create edges; suffix guesses are too weak to reorder a load.
func LoadOrder(r *Report) (order []string, cycleBreaks []string) {
	nodes := make([]*Node, 0, len(r.TableDetails))
	byName := make(map[string]*Node, len(r.TableDetails))
	for _, t := range r.TableDetails {
		n := &Node{Name: t.Name, Dependencies: []string{}}
		nodes = append(nodes, n)
		byName[t.Name] = n
	}
	for _, fk := range r.InferredForeignKeys {
		if fk.Confidence == ConfidenceLow || fk.SourceTable == fk.TargetTable {
			continue
		}
		if n, ok := byName[fk.SourceTable]; ok {
			if _, known := byName[fk.TargetTable]; known && !contains(n.Dependencies, fk.TargetTable) {
				n.Dependencies = append(n.Dependencies, fk.TargetTable)
			}
		}
	}

	sorted, breaks := SortByDependencies(nodes)
	for _, n := range sorted {
		order = append(order, n.Name)
	}
	return order, breaks
}

// SortByDependencies sorts nodes by dependency order.
// Circular dependencies are broken with a scoring heuristic; the names of
// the nodes placed to break a cycle are returned alongside the order.
func SortByDependencies(nodes []*Node) ([]*Node, []string) {
	var sorted []*Node
	var breaks []string
	processed := make(map[string]bool)

	for len(sorted) < len(nodes) {
		added := false

		// Pass 1: nodes whose dependencies are fully satisfied
		for _, n := range nodes {
			if processed[n.Name] {
				continue
			}

			allDepsProcessed := true
			for _, dep := range n.Dependencies {
				if !processed[dep] {
					allDepsProcessed = false
					break
				}
			}

			if allDepsProcessed {
				sorted = append(sorted, n)
				processed[n.Name] = true
				added = true
			}
		}

		if added {
			continue
		}

		// Pass 2: cycle. Prefer fewer unprocessed dependencies, then nodes
		// that sit directly on a two-node cycle.
		var best *Node
		bestScore := -999999

		for _, n := range nodes {
			if processed[n.Name] {
				continue
			}

			score := 0
			for _, dep := range n.Dependencies {
				if !processed[dep] {
					score -= 100
				}
			}
			if onCycle(n, nodes, processed) {
				score += 500
			}

			// Tie-breaker: name (deterministic)
			if score > bestScore || (score == bestScore && (best == nil || n.Name < best.Name)) {
				bestScore = score
				best = n
			}
		}

		if best == nil {
			break
		}
		sorted = append(sorted, best)
		processed[best.Name] = true
		breaks = append(breaks, best.Name)
	}

	return sorted, breaks
}

func onCycle(n *Node, nodes []*Node, processed map[string]bool) bool {
	for _, depName := range n.Dependencies {
		if processed[depName] {
			continue
		}
		for _, cand := range nodes {
			if cand.Name == depName && contains(cand.Dependencies, n.Name) {
				return true
			}
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
