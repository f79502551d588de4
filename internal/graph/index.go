package graph

import (
	"sort"
	"strings"

	"typegen/internal/typespec"
)

// Index answers name lookups over a merged spec. Internal names match
// exactly first, then by `::` suffix containment in either direction; ties
// are broken by key order so lookups are deterministic.
type Index struct {
	mappings entries[typespec.TypeMapping]
	exposed  map[string][]typespec.TypeMapping
	classes  entries[*typespec.Class]
	gadgets  entries[*typespec.Gadget]
	enums    entries[*typespec.Enum]
}

type entries[T any] struct {
	byName map[string][]T
	keys   []string
}

func (e *entries[T]) add(name string, v T) {
	if e.byName == nil {
		e.byName = make(map[string][]T)
	}
	if _, ok := e.byName[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.byName[name] = append(e.byName[name], v)
}

func (e *entries[T]) seal() {
	sort.Strings(e.keys)
}

func (e *entries[T]) exact(name string) (T, bool) {
	var zero T
	if vs := e.byName[name]; len(vs) > 0 {
		return vs[0], true
	}
	return zero, false
}

func (e *entries[T]) lookup(name string) (T, bool) {
	if v, ok := e.exact(name); ok {
		return v, true
	}
	return e.suffix(name)
}

func (e *entries[T]) suffix(name string) (T, bool) {
	var zero T
	if name == "" {
		return zero, false
	}
	for _, key := range e.keys {
		if SuffixMatch(key, name) {
			return e.byName[key][0], true
		}
	}
	return zero, false
}

// SuffixMatch reports whether one qualified C++ name ends with the other.
func SuffixMatch(a, b string) bool {
	return a == b || strings.HasSuffix(a, "::"+b) || strings.HasSuffix(b, "::"+a)
}

// NewIndex indexes the typemap, classes, gadgets and enums of spec.
// Top-level enums are also reachable by their exposed name.
func NewIndex(spec typespec.TypeSpec) *Index {
	ix := &Index{exposed: make(map[string][]typespec.TypeMapping)}

	for _, m := range spec.TypeMap {
		ix.mappings.add(m.CName, m)
		ix.exposed[m.Name] = append(ix.exposed[m.Name], m)
	}
	for i := range spec.Classes {
		ix.classes.add(spec.Classes[i].Name, &spec.Classes[i])
	}
	for i := range spec.Gadgets {
		ix.gadgets.add(spec.Gadgets[i].CName, &spec.Gadgets[i])
	}
	for i := range spec.Enums {
		e := &spec.Enums[i]
		if e.CName != "" {
			ix.enums.add(e.CName, e)
		}
		ix.exposed[e.Name] = append(ix.exposed[e.Name], typespec.TypeMapping{
			Name:   e.Name,
			CName:  e.CName,
			Module: e.Module,
		})
	}

	ix.mappings.seal()
	ix.classes.seal()
	ix.gadgets.seal()
	ix.enums.seal()
	return ix
}

// Mapping finds the exposed type implemented by an internal name.
func (ix *Index) Mapping(cname string) (typespec.TypeMapping, bool) {
	return ix.mappings.lookup(cname)
}

func (ix *Index) MappingExact(cname string) (typespec.TypeMapping, bool) {
	return ix.mappings.exact(cname)
}

func (ix *Index) MappingSuffix(cname string) (typespec.TypeMapping, bool) {
	return ix.mappings.suffix(cname)
}

func (ix *Index) Class(name string) (*typespec.Class, bool) {
	return ix.classes.lookup(name)
}

func (ix *Index) ClassExact(name string) (*typespec.Class, bool) {
	return ix.classes.exact(name)
}

func (ix *Index) ClassSuffix(name string) (*typespec.Class, bool) {
	return ix.classes.suffix(name)
}

// ClassIn finds the class with the given internal name, preferring module.
func (ix *Index) ClassIn(module, name string) (*typespec.Class, bool) {
	for _, c := range ix.classes.byName[name] {
		if c.Module == module {
			return c, true
		}
	}
	return ix.classes.exact(name)
}

func (ix *Index) Gadget(cname string) (*typespec.Gadget, bool) {
	return ix.gadgets.lookup(cname)
}

func (ix *Index) Enum(cname string) (*typespec.Enum, bool) {
	return ix.enums.lookup(cname)
}

// Exposed finds a type by its exposed name. A dotted name is matched
// against the owning module as well.
func (ix *Index) Exposed(name string) (typespec.TypeMapping, bool) {
	if ms := ix.exposed[name]; len(ms) > 0 {
		return ms[0], true
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		module, short := name[:i], name[i+1:]
		for _, m := range ix.exposed[short] {
			if m.Module == module {
				return m, true
			}
		}
	}
	return typespec.TypeMapping{}, false
}
