package resolver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"typegen/internal/extractor"
	"typegen/internal/typespec"
)

func strPtr(s string) *string { return &s }

func prop(name string, typ typespec.TypeRef) typespec.Property {
	return typespec.Property{Type: typ, Name: name, Readable: true, Writable: true}
}

func inheritanceSpec() typespec.TypeSpec {
	return typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{
			{Name: "Window", CName: "WindowInterface", Module: "Quickshell"},
			{Name: "Inner", CName: "Inner", Module: "Quickshell"},
		},
		Classes: []typespec.Class{
			{
				Name:       "WindowInterface",
				Module:     "Quickshell",
				Superclass: typespec.Host("WindowBase"),
				Properties: []typespec.Property{
					prop("width", typespec.Host("qint32")),
					{Name: "visible", Type: typespec.Host("bool"), Details: strPtr("own"), Readable: true, Writable: true},
					prop("items", typespec.Host("QList<Inner*>")),
					prop("mystery", typespec.Host("QUnregistered")),
				},
				Functions: []typespec.Function{
					{Ret: typespec.Host("void"), Name: "show", Params: []typespec.Param{}},
				},
				Signals: []typespec.Signal{{Name: "closed", Params: []typespec.Param{}}},
			},
			{
				Name:       "WindowBase",
				Module:     "Quickshell",
				Superclass: typespec.Host("QObject"),
				Properties: []typespec.Property{
					{Name: "visible", Type: typespec.Host("bool"), Details: strPtr("base"), Readable: true},
					prop("anchor", typespec.Host("Anchor")),
				},
				Functions: []typespec.Function{
					{Ret: typespec.Host("void"), Name: "show", Params: []typespec.Param{}, Details: strPtr("base")},
					{
						Ret:  typespec.Host("bool"),
						Name: "move",
						Params: []typespec.Param{
							{Type: typespec.Host("qint32"), Name: "x"},
							{Type: typespec.Host("const QPoint&"), Name: "p"},
						},
					},
				},
			},
			{Name: "Inner", Module: "Quickshell", Superclass: typespec.Host("QObject")},
		},
	}
}

func withBuiltins(specs ...typespec.TypeSpec) typespec.TypeSpec {
	merged, _ := typespec.Merge(append([]typespec.TypeSpec{typespec.Builtins()}, specs...)...)
	return merged
}

func TestResolve_Inheritance(t *testing.T) {
	res := Resolve("Quickshell", withBuiltins(inheritanceSpec()))

	doc, ok := res.Types["Window"]
	require.True(t, ok)
	require.NotNil(t, doc.Class)
	c := doc.Class

	t.Run("Superclass skips internal classes", func(t *testing.T) {
		assert.Equal(t, Type{Source: SourceQt, Module: "qml", Name: "QtObject"}, c.Super)
	})

	t.Run("Inherited members absorbed once, closest wins", func(t *testing.T) {
		assert.Len(t, c.Properties, 5)
		require.Contains(t, c.Properties, "visible")
		assert.Equal(t, "own", *c.Properties["visible"].Details)
		assert.Empty(t, c.Properties["visible"].Flags)
		assert.Contains(t, c.Properties, "anchor")

		require.Len(t, c.Functions, 2)
		assert.Nil(t, c.Functions[1].Details, "own show() replaces the inherited one")
	})

	t.Run("Functions in lexical order with ids", func(t *testing.T) {
		assert.Equal(t, "move", c.Functions[0].Name)
		assert.Equal(t, "move(int_point)", c.Functions[0].ID)
		assert.Equal(t, "show", c.Functions[1].Name)
		assert.Equal(t, "show()", c.Functions[1].ID)
	})

	t.Run("Container element types", func(t *testing.T) {
		items := c.Properties["items"].Type.Type
		require.NotNil(t, items)
		assert.Equal(t, "list", items.Name)
		require.NotNil(t, items.Of)
		assert.Equal(t, Type{Source: SourceLocal, Module: "Quickshell", Name: "Inner"}, *items.Of)
	})

	t.Run("Unregistered types are unknown", func(t *testing.T) {
		mystery := c.Properties["mystery"].Type.Type
		require.NotNil(t, mystery)
		assert.True(t, mystery.IsUnknown())
		assert.True(t, c.Properties["anchor"].Type.Type.IsUnknown())
		assert.Equal(t, 2, res.Stats.Unknown)

		var members []string
		for _, d := range res.Diagnostics {
			if d.Reason == "unknown_type" {
				members = append(members, d.Member)
			}
		}
		assert.ElementsMatch(t, []string{"anchor", "mystery"}, members)
	})

	t.Run("Internal classes get no document", func(t *testing.T) {
		assert.NotContains(t, res.Types, "WindowBase")
		assert.Contains(t, res.Types, "Inner")
	})
}

func TestResolve_UnregisteredContainer(t *testing.T) {
	spec := typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{
			{Name: "Holder", CName: "Holder", Module: "Quickshell"},
			{Name: "Inner", CName: "Inner", Module: "Quickshell"},
		},
		Classes: []typespec.Class{
			{
				Name: "Holder", Module: "Quickshell",
				Properties: []typespec.Property{
					prop("model", typespec.Host("ObjectModel<Inner>*")),
					prop("list", typespec.Host("QList<Inner*>")),
					prop("scripted", typespec.Script("Repeater<Inner>")),
				},
			},
			{Name: "Inner", Module: "Quickshell"},
		},
	}

	res := Resolve("Quickshell", spec)
	holder := res.Types["Holder"].Class
	require.NotNil(t, holder)

	inner := Type{Source: SourceLocal, Module: "Quickshell", Name: "Inner"}
	for _, name := range []string{"model", "list", "scripted"} {
		typ := holder.Properties[name].Type.Type
		require.NotNil(t, typ, name)
		assert.True(t, typ.IsUnknown(), name)
		require.NotNil(t, typ.Of, name)
		assert.Equal(t, inner, *typ.Of, name)
	}
	assert.Equal(t, 3, res.Stats.Unknown)

	out, err := json.Marshal(holder.Properties["model"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":{"type":"unknown","of":{"type":"local","module":"Quickshell","name":"Inner"}},"details":null}`, string(out))
}

func TestResolve_Flags(t *testing.T) {
	spec := typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{
			{Name: "Edges", CName: "Edges", Module: "Quickshell"},
			{Name: "Edges", CName: "Edges::Enum", Module: "Quickshell"},
			{Name: "Screens", CName: "Screens", Module: "Quickshell"},
			{Name: "Handle", CName: "Handle", Module: "Quickshell"},
		},
		Classes: []typespec.Class{
			{
				Name: "Edges", Module: "Quickshell", Singleton: true,
				Superclass: typespec.Host("QObject"),
				Enums: []typespec.Enum{
					{Name: "Enum", CName: "Edges::Enum", Variants: []typespec.Variant{{Name: "Top"}, {Name: "Bottom", Details: strPtr("b")}}},
				},
			},
			{
				Name: "Screens", Module: "Quickshell", Singleton: true, Uncreatable: true,
				Superclass: typespec.Host("QObject"),
				Enums:      []typespec.Enum{{Name: "Kind", CName: "Screens::Kind", Variants: []typespec.Variant{{Name: "A"}}}},
			},
			{
				Name: "Handle", Module: "Quickshell", Uncreatable: true,
				Superclass: typespec.Host("QObject"),
				Properties: []typespec.Property{
					{Name: "edge", Type: typespec.Host("Edges::Enum"), Readable: true, Default: true},
					{Name: "sink", Type: typespec.Host("int"), Writable: true},
					{Name: "must", Type: typespec.Host("int"), Readable: true, Writable: true, Required: true},
				},
			},
		},
	}

	res := Resolve("Quickshell", withBuiltins(spec))

	edges := res.Types["Edges"].Class
	require.NotNil(t, edges)
	assert.Equal(t, []Flag{FlagEnum}, edges.Flags, "enum wins over singleton")
	assert.Len(t, edges.Variants, 2)
	assert.Equal(t, "b", *edges.Variants["Bottom"].Details)

	screens := res.Types["Screens"].Class
	require.NotNil(t, screens)
	assert.Equal(t, []Flag{FlagSingleton}, screens.Flags)
	assert.Empty(t, screens.Variants, "only a nested enum named Enum provides variants")

	handle := res.Types["Handle"].Class
	require.NotNil(t, handle)
	assert.Equal(t, []Flag{FlagUncreatable}, handle.Flags)
	assert.Equal(t, []Flag{FlagDefault, FlagReadonly}, handle.Properties["edge"].Flags)
	assert.Equal(t, Type{Source: SourceLocal, Module: "Quickshell", Name: "Edges"}, *handle.Properties["edge"].Type.Type)
	assert.Equal(t, []Flag{FlagWriteonly}, handle.Properties["sink"].Flags)
	assert.Equal(t, []Flag{FlagRequired}, handle.Properties["must"].Flags)
}

func TestResolve_Gadgets(t *testing.T) {
	spec := typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{{Name: "Frame", CName: "Frame", Module: "Quickshell"}},
		Classes: []typespec.Class{{
			Name: "Frame", Module: "Quickshell", Superclass: typespec.Host("QObject"),
			Properties: []typespec.Property{
				prop("margins", typespec.Host("qs::Margins")),
				prop("tree", typespec.Host("Node")),
			},
		}},
		Gadgets: []typespec.Gadget{
			{CName: "qs::Margins", Module: "Quickshell", Properties: []typespec.Property{
				prop("left", typespec.Host("qint32")),
				prop("right", typespec.Host("qint32")),
			}},
			{CName: "Node", Module: "Quickshell", Properties: []typespec.Property{
				prop("next", typespec.Host("Node*")),
			}},
		},
	}

	res := Resolve("Quickshell", withBuiltins(spec))
	frame := res.Types["Frame"].Class
	require.NotNil(t, frame)

	margins := frame.Properties["margins"].Type
	require.NotNil(t, margins.Gadget)
	assert.Equal(t, "int", margins.Gadget["left"].Type.Name)

	tree := frame.Properties["tree"].Type
	require.NotNil(t, tree.Gadget)
	require.NotNil(t, tree.Gadget["next"].Type)
	assert.True(t, tree.Gadget["next"].Type.IsUnknown(), "self-recursive gadgets stop at unknown")

	out, err := json.Marshal(frame.Properties["margins"])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": {"gadget": {
			"left": {"type": "qt", "module": "qml", "name": "int"},
			"right": {"type": "qt", "module": "qml", "name": "int"}
		}},
		"details": null
	}`, string(out))
}

func TestResolve_SuperclassCycle(t *testing.T) {
	spec := typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{{Name: "Loop", CName: "Loop", Module: "Quickshell"}},
		Classes: []typespec.Class{
			{Name: "Loop", Module: "Quickshell", Superclass: typespec.Host("A")},
			{Name: "A", Module: "Quickshell", Superclass: typespec.Host("B")},
			{Name: "B", Module: "Quickshell", Superclass: typespec.Host("A")},
		},
	}

	res := Resolve("Quickshell", spec)
	loop := res.Types["Loop"].Class
	require.NotNil(t, loop)
	assert.True(t, loop.Super.IsUnknown())
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "cycle", res.Diagnostics[0].Reason)
}

func TestResolve_MergeOrderIndependent(t *testing.T) {
	other := typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{{Name: "Anchor", CName: "Anchor", Module: "Quickshell.Wayland"}},
		Classes: []typespec.Class{{Name: "Anchor", Module: "Quickshell.Wayland", Superclass: typespec.Host("QObject")}},
	}

	ab, _ := typespec.Merge(typespec.Builtins(), inheritanceSpec(), other)
	ba, _ := typespec.Merge(other, inheritanceSpec(), typespec.Builtins())

	resAB := Resolve("Quickshell", ab)
	resBA := Resolve("Quickshell", ba)

	jsonAB, err := json.Marshal(resAB.Types)
	require.NoError(t, err)
	jsonBA, err := json.Marshal(resBA.Types)
	require.NoError(t, err)
	assert.JSONEq(t, string(jsonAB), string(jsonBA))

	anchor := resAB.Types["Window"].Class.Properties["anchor"].Type.Type
	assert.Equal(t, Type{Source: SourceLocal, Module: "Quickshell.Wayland", Name: "Anchor"}, *anchor)
}

func TestResolve_ScriptTypes(t *testing.T) {
	spec := typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{
			{Name: "Bar", CName: "Bar", Module: "Quickshell.Widgets"},
			{Name: "Box", CName: "Box", Module: "Quickshell.Widgets"},
		},
		Classes: []typespec.Class{
			{
				Name: "Bar", Module: "Quickshell.Widgets", Superclass: typespec.Script("QtQuick.Item"),
				Properties: []typespec.Property{
					prop("tint", typespec.Script("color")),
					prop("boxes", typespec.Script("list<Quickshell.Widgets.Box>")),
					prop("other", typespec.Script("NotAType")),
				},
			},
			{Name: "Box", Module: "Quickshell.Widgets", Superclass: typespec.Script("Item")},
		},
	}

	res := Resolve("Quickshell.Widgets", spec)
	bar := res.Types["Bar"].Class
	require.NotNil(t, bar)

	assert.Equal(t, Type{Source: SourceQt, Module: "qml.QtQuick", Name: "Item"}, bar.Super)
	assert.Equal(t, Type{Source: SourceQt, Module: "qml", Name: "color"}, *bar.Properties["tint"].Type.Type)

	boxes := bar.Properties["boxes"].Type.Type
	require.NotNil(t, boxes.Of)
	assert.Equal(t, Type{Source: SourceLocal, Module: "Quickshell.Widgets", Name: "Box"}, *boxes.Of)
	assert.True(t, bar.Properties["other"].Type.Type.IsUnknown())

	box := res.Types["Box"].Class
	require.NotNil(t, box)
	assert.True(t, box.Super.IsUnknown(), "an undotted unknown script superclass stays unknown")
	assert.Equal(t, map[string]int{"Item": 1}, res.Unresolved)
}

func TestResolve_EndToEnd(t *testing.T) {
	src := `
///! A process.
class Process: public QObject {
	Q_OBJECT;
	QML_ELEMENT;
	/// Whether the process runs.
	Q_PROPERTY(bool running READ isRunning WRITE setRunning NOTIFY runningChanged);

public:
	/// Sends a signal.
	Q_INVOKABLE bool sendSignal(qint32 signal, const QString& reason);

signals:
	void runningChanged();
	void exited(qint32 code);
};
`
	b := extractor.NewBuilder("Quickshell.Io")
	require.NoError(t, extractor.NewHeaderParser(nil).Parse(src, b))
	spec := b.Spec()
	require.Len(t, spec.TypeMap, 1)

	res := Resolve("Quickshell.Io", withBuiltins(spec))
	require.Len(t, res.Types, 1)

	doc := res.Types["Process"]
	c := doc.Class
	require.NotNil(t, c)

	require.Len(t, c.Properties, 1)
	assert.Empty(t, c.Properties["running"].Flags)

	require.Contains(t, c.Signals, "runningChanged")
	assert.Equal(t, "running", c.Signals["runningChanged"].Notify)
	assert.Nil(t, c.Signals["runningChanged"].Details)
	assert.Contains(t, c.Signals, "exited")

	require.Len(t, c.Functions, 1)
	assert.Equal(t, "sendSignal(int_string)", c.Functions[0].ID)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var shape map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &shape))
	assert.Equal(t, "class", shape["type"])
	assert.Equal(t, "Process", shape["name"])
	assert.Equal(t, "Quickshell.Io", shape["module"])
	assert.Equal(t, "A process.", shape["description"])
	assert.NotContains(t, shape, "flags")

	y, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(y), "type: class")
	assert.Contains(t, string(y), "super:")
}

func TestResolve_NotifySignalParams(t *testing.T) {
	src := `
class Popup: public QObject {
	Q_OBJECT;
	QML_ELEMENT;
	Q_PROPERTY(bool shown READ isShown NOTIFY shownChanged);
	Q_PROPERTY(qint32 depth READ depth NOTIFY depthChanged);

signals:
	/// Not documented here.
	void shownChanged(bool shown);
	void depthChanged();
};
`
	b := extractor.NewBuilder("Quickshell")
	require.NoError(t, extractor.NewHeaderParser(nil).Parse(src, b))
	spec := b.Spec()
	require.Len(t, spec.Classes, 1)
	assert.Empty(t, spec.Classes[0].Signals)

	res := Resolve("Quickshell", withBuiltins(spec))
	c := res.Types["Popup"].Class
	require.NotNil(t, c)
	require.Len(t, c.Signals, 2)

	shown := c.Signals["shownChanged"]
	assert.Equal(t, "shown", shown.Notify)
	assert.Nil(t, shown.Details)
	require.Len(t, shown.Params, 1)
	assert.Equal(t, Parameter{Name: "shown", Type: Type{Source: SourceQt, Module: "qml", Name: "bool"}}, shown.Params[0])

	depth := c.Signals["depthChanged"]
	assert.Equal(t, "depth", depth.Notify)
	assert.NotNil(t, depth.Params)
	assert.Empty(t, depth.Params)
}
