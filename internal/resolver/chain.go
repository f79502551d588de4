package resolver

import (
	"strings"

	"typegen/internal/graph"
	"typegen/internal/typespec"
)

type ResolveStats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

// GraphResolver is one superclass linking stage.
type GraphResolver interface {
	Name() string
	Resolve(g *graph.Graph) (ResolveStats, error)
}

type StageResult struct {
	Resolver         string
	Stats            ResolveStats
	UnresolvedBefore int
	UnresolvedAfter  int
	EdgeCount        int
	Err              error
}

type ResolverChain struct {
	resolvers []GraphResolver
}

func NewResolverChain(resolvers ...GraphResolver) *ResolverChain {
	return &ResolverChain{resolvers: resolvers}
}

// NewDefaultChain links exact names first and falls back to `::` suffix matches.
func NewDefaultChain() *ResolverChain {
	return NewResolverChain(NewExactResolver(), NewSuffixResolver())
}

func (c *ResolverChain) Run(g *graph.Graph) []StageResult {
	if g == nil {
		return nil
	}

	var out []StageResult
	for _, r := range c.resolvers {
		before := len(g.Unresolved)
		stats, err := r.Resolve(g)
		after := len(g.Unresolved)
		out = append(out, StageResult{
			Resolver:         r.Name(),
			Stats:            stats,
			UnresolvedBefore: before,
			UnresolvedAfter:  after,
			EdgeCount:        len(g.Edges),
			Err:              err,
		})
		if err != nil {
			break
		}
	}
	return out
}

// superLookup finds the superclass of a relation: an exposed type ends the
// walk, an internal class is linked for absorption.
type superLookup struct {
	mapping func(string) (typespec.TypeMapping, bool)
	class   func(string) (*typespec.Class, bool)
	// foreign allows dotted script names to fall back to a Qt module.
	foreign bool
}

func linkStage(g *graph.Graph, name string, lookup superLookup) ResolveStats {
	stats := ResolveStats{}
	var still []graph.UnresolvedRelation

	for _, ur := range g.Unresolved {
		stats.Attempted++

		if ur.Reason == graph.ReasonCycle {
			stats.Skipped++
			still = append(still, ur)
			continue
		}

		switch ur.Target.Source {
		case typespec.SourceScript:
			if m, ok := g.Index.Exposed(ur.Target.Name); ok {
				g.LinkExposed(ur.From, m, name)
				stats.Resolved++
				continue
			}
			if i := strings.LastIndex(ur.Target.Name, "."); lookup.foreign && i > 0 {
				g.LinkExposed(ur.From, typespec.TypeMapping{
					Name:   ur.Target.Name[i+1:],
					CName:  ur.Target.Name,
					Module: foreignModule(ur.Target.Name[:i]),
				}, name)
				stats.Resolved++
				continue
			}
		case typespec.SourceHost:
			super := cleanName(ur.Target.Name)
			if m, ok := lookup.mapping(super); ok {
				g.LinkExposed(ur.From, m, name)
				stats.Resolved++
				continue
			}
			if c, ok := lookup.class(super); ok {
				g.LinkInherits(ur.From, graph.NodeID(c.Module, c.Name), name)
				stats.Resolved++
				continue
			}
		}

		stats.Skipped++
		still = append(still, ur)
	}

	g.Unresolved = still
	return stats
}

// ExactResolver links superclasses whose names match exactly.
type ExactResolver struct{}

func NewExactResolver() *ExactResolver {
	return &ExactResolver{}
}

func (r *ExactResolver) Name() string {
	return "exact"
}

func (r *ExactResolver) Resolve(g *graph.Graph) (ResolveStats, error) {
	if g == nil {
		return ResolveStats{}, nil
	}
	return linkStage(g, r.Name(), superLookup{
		mapping: g.Index.MappingExact,
		class:   g.Index.ClassExact,
	}), nil
}

// SuffixResolver links the remaining superclasses by `::` suffix containment
// and lets dotted script names fall back to Qt modules.
type SuffixResolver struct{}

func NewSuffixResolver() *SuffixResolver {
	return &SuffixResolver{}
}

func (r *SuffixResolver) Name() string {
	return "suffix"
}

func (r *SuffixResolver) Resolve(g *graph.Graph) (ResolveStats, error) {
	if g == nil {
		return ResolveStats{}, nil
	}
	return linkStage(g, r.Name(), superLookup{
		mapping: g.Index.MappingSuffix,
		class:   g.Index.ClassSuffix,
		foreign: true,
	}), nil
}
