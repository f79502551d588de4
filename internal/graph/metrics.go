package graph

// MissingSuperclasses counts, per superclass name, the classes of module
// whose superclass no resolver stage could link. An empty module counts
// classes of every module.
func (g *Graph) MissingSuperclasses(module string) map[string]int {
	counts := make(map[string]int)
	if g == nil {
		return counts
	}
	for _, u := range g.Unresolved {
		if n, ok := g.Nodes[u.From]; module != "" && (!ok || n.Symbol.Module != module) {
			continue
		}
		counts[u.Target.Name]++
	}
	return counts
}
