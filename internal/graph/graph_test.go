package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typegen/internal/typespec"
)

func sampleSpec() typespec.TypeSpec {
	return typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{
			{Name: "QtObject", CName: "QObject", Module: "qml"},
			{Name: "Derived", CName: "qs::Derived", Module: "Quickshell"},
		},
		Classes: []typespec.Class{
			{Name: "Base", Module: "Quickshell", Superclass: typespec.Host("QObject")},
			{Name: "qs::Derived", Module: "Quickshell", Superclass: typespec.Host("Base")},
			{Name: "A", Module: "Quickshell", Superclass: typespec.Host("B")},
			{Name: "B", Module: "Quickshell", Superclass: typespec.Host("A")},
			{Name: "Orphan", Module: "Quickshell", Superclass: typespec.Host("Missing")},
		},
		Gadgets: []typespec.Gadget{{CName: "qs::Margins", Module: "Quickshell"}},
		Enums:   []typespec.Enum{{Name: "Edges", CName: "qs::Edges::Enum", Module: "Quickshell"}},
	}
}

func TestIndex_Lookups(t *testing.T) {
	ix := NewIndex(sampleSpec())

	t.Run("Exact before suffix", func(t *testing.T) {
		m, ok := ix.Mapping("qs::Derived")
		require.True(t, ok)
		assert.Equal(t, "Derived", m.Name)

		m, ok = ix.Mapping("Derived")
		require.True(t, ok, "unqualified names match qualified ones")
		assert.Equal(t, "qs::Derived", m.CName)

		_, ok = ix.MappingExact("Derived")
		assert.False(t, ok)
	})

	t.Run("Suffix in either direction", func(t *testing.T) {
		g, ok := ix.Gadget("Margins")
		require.True(t, ok)
		assert.Equal(t, "qs::Margins", g.CName)

		e, ok := ix.Enum("other::qs::Edges::Enum")
		require.True(t, ok)
		assert.Equal(t, "Edges", e.Name)

		_, ok = ix.Gadget("argins")
		assert.False(t, ok, "suffixes only match on `::` boundaries")
	})

	t.Run("Exposed names", func(t *testing.T) {
		m, ok := ix.Exposed("Edges")
		require.True(t, ok, "top-level enums are exposed")
		assert.Equal(t, "Quickshell", m.Module)

		m, ok = ix.Exposed("Quickshell.Derived")
		require.True(t, ok)
		assert.Equal(t, "Derived", m.Name)

		_, ok = ix.Exposed("Other.Derived")
		assert.False(t, ok)
	})
}

func TestGraph_Walk(t *testing.T) {
	g := New(sampleSpec())
	require.Len(t, g.Nodes, 5)
	require.Len(t, g.Unresolved, 5)

	base := NodeID("Quickshell", "Base")
	derived := NodeID("Quickshell", "qs::Derived")
	a := NodeID("Quickshell", "A")
	b := NodeID("Quickshell", "B")

	g.LinkExposed(base, typespec.TypeMapping{Name: "QtObject", CName: "QObject", Module: "qml"}, "test")
	g.LinkInherits(derived, base, "test")
	g.LinkInherits(a, b, "test")
	g.LinkInherits(b, a, "test")

	t.Run("Absorbs internal ancestors", func(t *testing.T) {
		w := g.Walk(derived)
		require.NotNil(t, w.Super)
		assert.Equal(t, "QtObject", w.Super.Name)
		require.Len(t, w.Absorbed, 1)
		assert.Equal(t, "Base", w.Absorbed[0].Name)
		assert.Nil(t, w.Broken)
	})

	t.Run("Cycle is detected", func(t *testing.T) {
		w := g.Walk(a)
		assert.Nil(t, w.Super)
		require.NotNil(t, w.Broken)
		assert.Equal(t, ReasonCycle, w.Broken.Reason)
	})

	t.Run("Unlinked superclass", func(t *testing.T) {
		w := g.Walk(NodeID("Quickshell", "Orphan"))
		assert.Nil(t, w.Super)
		require.NotNil(t, w.Broken)
		assert.Equal(t, typespec.Host("Missing"), w.Broken.Target)
	})

	t.Run("First edge wins", func(t *testing.T) {
		g.LinkInherits(derived, a, "late")
		e, ok := g.Superclass(derived)
		require.True(t, ok)
		assert.Equal(t, base, e.To)
	})

	missing := map[string]int{"QObject": 1, "Base": 1, "A": 1, "B": 1, "Missing": 1}
	assert.Equal(t, missing, g.MissingSuperclasses("Quickshell"))
	assert.Equal(t, missing, g.MissingSuperclasses(""))
	assert.Empty(t, g.MissingSuperclasses("Quickshell.Io"))
}
