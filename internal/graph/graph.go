package graph

import (
	"sort"

	"typegen/internal/typespec"
)

// Node represents a class in the inheritance graph.
type Node struct {
	Symbol *Symbol
	Class  *typespec.Class
}

// Graph manages classes and their superclass relations over a merged spec.
// Every class starts with its superclass as an unresolved relation; linking
// stages move relations into Edges.
type Graph struct {
	Nodes      map[string]*Node
	Edges      []Edge
	Unresolved []UnresolvedRelation
	Index      *Index

	superEdge map[string]int
}

// New creates the graph of every class in spec.
func New(spec typespec.TypeSpec) *Graph {
	g := &Graph{
		Nodes:     make(map[string]*Node),
		Index:     NewIndex(spec),
		superEdge: make(map[string]int),
	}

	for i := range spec.Classes {
		c := &spec.Classes[i]
		sym := FromClass(c)
		if _, dup := g.Nodes[sym.ID]; dup {
			continue
		}
		g.Nodes[sym.ID] = &Node{Symbol: sym, Class: c}
		if !c.Superclass.IsZero() {
			g.Unresolved = append(g.Unresolved, UnresolvedRelation{
				From:   sym.ID,
				Target: c.Superclass,
				Reason: ReasonNoCandidate,
			})
		}
	}

	sort.SliceStable(g.Unresolved, func(i, j int) bool {
		return g.Unresolved[i].From < g.Unresolved[j].From
	})
	return g
}

// LinkInherits records that from absorbs the internal class to.
func (g *Graph) LinkInherits(from, to, resolver string) {
	g.addEdge(Edge{From: from, To: to, Kind: RelationInherits, Resolver: resolver})
}

// LinkExposed records that the superclass walk from ends at target.
func (g *Graph) LinkExposed(from string, target typespec.TypeMapping, resolver string) {
	g.addEdge(Edge{From: from, Target: target, Kind: RelationExposed, Resolver: resolver})
}

func (g *Graph) addEdge(e Edge) {
	if _, ok := g.superEdge[e.From]; ok {
		return
	}
	g.superEdge[e.From] = len(g.Edges)
	g.Edges = append(g.Edges, e)
}

// Superclass returns the superclass edge of a node.
func (g *Graph) Superclass(id string) (Edge, bool) {
	i, ok := g.superEdge[id]
	if !ok {
		return Edge{}, false
	}
	return g.Edges[i], true
}

// Walk is the outcome of following superclass edges from a class.
type Walk struct {
	// Absorbed are the internal ancestors, closest first.
	Absorbed []*typespec.Class
	// Super is the exposed superclass, nil when the walk found none.
	Super *typespec.TypeMapping
	// Broken is the relation that stopped the walk without an exposed type.
	Broken *UnresolvedRelation
}

// Walk follows superclass edges until an exposed type is reached. Internal
// classes on the way are absorbed. A class seen twice ends the walk with a
// cycle relation.
func (g *Graph) Walk(id string) Walk {
	var w Walk
	visited := map[string]bool{id: true}

	cur := id
	for {
		e, ok := g.Superclass(cur)
		if !ok {
			for i := range g.Unresolved {
				if g.Unresolved[i].From == cur {
					w.Broken = &g.Unresolved[i]
					break
				}
			}
			return w
		}

		if e.Kind == RelationExposed {
			target := e.Target
			w.Super = &target
			return w
		}

		if visited[e.To] {
			w.Broken = &UnresolvedRelation{
				From:   cur,
				Target: typespec.Host(g.Nodes[e.To].Symbol.Name),
				Kind:   RelationInherits,
				Reason: ReasonCycle,
			}
			return w
		}
		visited[e.To] = true

		w.Absorbed = append(w.Absorbed, g.Nodes[e.To].Class)
		cur = e.To
	}
}
