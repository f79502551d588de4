package graph

import "typegen/internal/typespec"

// NodeID is the graph identity of a class: its module and internal name.
func NodeID(module, name string) string {
	return module + "/" + name
}

// FromClass converts a spec class into a graph-domain Symbol.
func FromClass(c *typespec.Class) *Symbol {
	if c == nil {
		return nil
	}
	return &Symbol{
		ID:         NodeID(c.Module, c.Name),
		Module:     c.Module,
		Name:       c.Name,
		Superclass: c.Superclass,
	}
}
