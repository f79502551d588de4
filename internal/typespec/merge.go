package typespec

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Conflict reports two entries of merged specs that share an identity.
// The entry with the smallest encoded content is kept.
type Conflict struct {
	Collection string
	Key        string
	Module     string
}

func (c Conflict) String() string {
	return fmt.Sprintf("duplicate %s %q in module %q", c.Collection, c.Key, c.Module)
}

// Merge unions the four collections of the given specs. Entries are ordered
// by identity so the result does not depend on the order of the inputs.
// Duplicate identities are dropped and reported.
func Merge(specs ...TypeSpec) (TypeSpec, []Conflict) {
	var all TypeSpec
	for _, s := range specs {
		all.TypeMap = append(all.TypeMap, s.TypeMap...)
		all.Classes = append(all.Classes, s.Classes...)
		all.Gadgets = append(all.Gadgets, s.Gadgets...)
		all.Enums = append(all.Enums, s.Enums...)
	}

	var conflicts []Conflict
	var out TypeSpec

	out.TypeMap = dedupe(all.TypeMap, "typemap", func(m TypeMapping) (string, string) {
		return m.CName, m.Module
	}, &conflicts)
	out.Classes = dedupe(all.Classes, "class", func(c Class) (string, string) {
		return c.Name, c.Module
	}, &conflicts)
	out.Gadgets = dedupe(all.Gadgets, "gadget", func(g Gadget) (string, string) {
		return g.CName, g.Module
	}, &conflicts)
	out.Enums = dedupe(all.Enums, "enum", func(e Enum) (string, string) {
		if e.CName != "" {
			return e.CName, e.Module
		}
		return e.Name, e.Module
	}, &conflicts)

	// exposed names must be unique per documented module as well
	exposed := make(map[[2]string]string)
	for _, m := range out.TypeMap {
		if IsQtModule(m.Module) {
			continue
		}
		k := [2]string{m.Name, m.Module}
		if prev, ok := exposed[k]; ok && !isEnumAlias(prev, m.CName) {
			conflicts = append(conflicts, Conflict{Collection: "exposed name", Key: m.Name, Module: m.Module})
			continue
		}
		exposed[k] = m.CName
	}

	return out, conflicts
}

func dedupe[T any](items []T, collection string, key func(T) (string, string), conflicts *[]Conflict) []T {
	type entry struct {
		item            T
		key, mod, order string
	}
	entries := make([]entry, len(items))
	for i, item := range items {
		k, m := key(item)
		entries[i] = entry{item: item, key: k, mod: m, order: contentKey(item)}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.key != b.key {
			return a.key < b.key
		}
		if a.mod != b.mod {
			return a.mod < b.mod
		}
		return a.order < b.order
	})

	out := make([]T, 0, len(entries))
	seen := make(map[[2]string]bool, len(entries))
	for _, e := range entries {
		id := [2]string{e.key, e.mod}
		if seen[id] {
			*conflicts = append(*conflicts, Conflict{Collection: collection, Key: e.key, Module: e.mod})
			continue
		}
		seen[id] = true
		out = append(out, e.item)
	}
	return out
}

// contentKey orders entries sharing an identity. Every spec entry encodes.
func contentKey(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// isEnumAlias reports whether one cname is the `Class::Enum` alias of the other.
func isEnumAlias(a, b string) bool {
	return a+"::"+EnumCarrierName == b || b+"::"+EnumCarrierName == a
}
