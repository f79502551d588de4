package extractor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typegen/internal/ir"
	"typegen/internal/typespec"
)

func classesByName(classes []ir.Class) map[string]ir.Class {
	out := make(map[string]ir.Class)
	for _, c := range classes {
		out[c.Name] = c
	}
	return out
}

func TestExtractor_ExtractFromFile_Header(t *testing.T) {
	ext, err := NewExtractor(BackendNative)
	require.NoError(t, err)

	b := NewBuilder("Quickshell.Io")
	require.NoError(t, ext.ExtractFromFile(filepath.Join("testdata", "process.hpp"), b))

	classes := classesByName(b.Classes())

	t.Run("Overall Count", func(t *testing.T) {
		assert.Len(t, classes, 3, "IoObject, Process and Limits carry reflection macros")
		assert.NotContains(t, classes, "NotReflected")
		assert.NotContains(t, classes, "Internal")
		assert.NotContains(t, classes, "Helper")
	})

	t.Run("Base Object", func(t *testing.T) {
		c, ok := classes["IoObject"]
		require.True(t, ok)
		assert.Equal(t, ir.KindObject, c.Kind)
		assert.False(t, c.Exposed())
		assert.Equal(t, typespec.Host("QObject"), c.Superclass)
		assert.Equal(t, 26, c.Evidence.StartLine)

		require.Len(t, c.Properties, 1)
		assert.Equal(t, "active", c.Properties[0].Name)
		assert.Equal(t, "activeChanged", c.Properties[0].Notify)

		require.Len(t, c.Invokables, 1)
		assert.Equal(t, "reset", c.Invokables[0].Name)
		assert.Equal(t, typespec.Host("void"), c.Invokables[0].Ret)

		require.Len(t, c.Signals, 1, "notify signals are not documented separately")
		assert.Equal(t, "failed", c.Signals[0].Name)
		assert.Equal(t, []ir.Param{
			{Name: "message", Type: typespec.Host("QString")},
			{Name: "code", Type: typespec.Host("int")},
		}, c.Signals[0].Params)
	})

	t.Run("Exposed Object", func(t *testing.T) {
		c, ok := classes["Process"]
		require.True(t, ok)
		assert.Equal(t, "Process", c.QMLName)
		assert.Equal(t, typespec.Host("IoObject"), c.Superclass)
		assert.False(t, c.Uncreatable, "QSDOC_CREATABLE overrides QML_UNCREATABLE")
		require.NotNil(t, c.Comment)
		assert.Equal(t, "Quickshell.Io", c.Comment.Module)

		require.Len(t, c.Properties, 4)
		command := c.Properties[0]
		assert.Equal(t, "command", command.Name)
		assert.Equal(t, typespec.Host("QList<QString>"), command.Type)
		assert.True(t, command.Default)
		assert.True(t, command.Readable)
		assert.True(t, command.Writable)

		pid := c.Properties[1]
		assert.Equal(t, "pid", pid.Name)
		assert.True(t, pid.Readable)
		assert.False(t, pid.Writable)

		wd := c.Properties[2]
		assert.Equal(t, "workingDirectory", wd.Name)
		assert.Equal(t, typespec.Host("QString"), wd.Type)
		require.NotNil(t, wd.Comment, "the override comment moves to the property")
		assert.Equal(t, "/// Working directory.", wd.Comment.Text)

		mode := c.Properties[3]
		assert.Equal(t, "exitMode", mode.Name)
		assert.Equal(t, typespec.Host("ExitMode::Enum"), mode.Type)
		assert.True(t, mode.Readable)
		assert.True(t, mode.Writable)

		require.Len(t, c.Invokables, 2)
		assert.Equal(t, "signal", c.Invokables[0].Name)
		assert.Equal(t, []ir.Param{
			{Name: "signal", Type: typespec.Host("qint32")},
			{Name: "force", Type: typespec.Host("bool")},
		}, c.Invokables[0].Params)
		assert.Equal(t, "write", c.Invokables[1].Name)
		assert.Equal(t, typespec.Host("bool"), c.Invokables[1].Ret)
		assert.Equal(t, []ir.Param{{Name: "data", Type: typespec.Host("QString")}}, c.Invokables[1].Params)

		require.Len(t, c.Signals, 1)
		assert.Equal(t, "exited", c.Signals[0].Name)
		assert.Equal(t, typespec.Host("QProcess::ExitStatus"), c.Signals[0].Params[1].Type)

		require.Len(t, c.Enums, 1, "only registered enums are kept")
		assert.Equal(t, "State", c.Enums[0].Name)
		assert.Equal(t, "Process::State", c.Enums[0].CName())
		assert.Len(t, c.Enums[0].Variants, 2)
	})

	t.Run("Gadget", func(t *testing.T) {
		c, ok := classes["Limits"]
		require.True(t, ok)
		assert.Equal(t, ir.KindGadget, c.Kind)
		assert.Len(t, c.Properties, 2)
		assert.True(t, c.Superclass.IsZero())
	})

	t.Run("Namespace Enum", func(t *testing.T) {
		enums := b.Enums()
		require.Len(t, enums, 1)
		e := enums[0]
		assert.Equal(t, "ExitMode", e.QMLName)
		assert.Equal(t, "ExitMode::Enum", e.CName())
		require.Len(t, e.Variants, 2)
		assert.Equal(t, "Terminate", e.Variants[0].Name)
		require.NotNil(t, e.Variants[1].Comment)
		assert.Equal(t, "/// Send SIGKILL.", e.Variants[1].Comment.Text)
	})
}

func TestExtractor_ExtractFromFile_QML(t *testing.T) {
	ext, err := NewExtractor(BackendNative)
	require.NoError(t, err)

	b := NewBuilder("Quickshell.Widgets")
	require.NoError(t, ext.ExtractFromFile(filepath.Join("testdata", "Widget.qml"), b))

	classes := b.Classes()
	require.Len(t, classes, 1)
	c := classes[0]

	assert.Equal(t, "Widget", c.Name)
	assert.Equal(t, "Widget", c.QMLName)
	assert.Equal(t, typespec.Script("Quickshell.Widgets.WrapperItem"), c.Superclass)
	assert.Empty(t, c.Invokables)
	assert.Empty(t, c.Signals)
	require.NotNil(t, c.Comment)

	props := make(map[string]ir.Property)
	var order []string
	for _, p := range c.Properties {
		props[p.Name] = p
		order = append(order, p.Name)
	}
	assert.Equal(t, []string{"frameColor", "content", "margin", "ratio", "source", "hidden"}, order)

	assert.Equal(t, typespec.Script("color"), props["frameColor"].Type)
	require.NotNil(t, props["frameColor"].Comment)
	assert.Equal(t, "/// Frame colour.", props["frameColor"].Comment.Text)

	assert.Equal(t, typespec.Script("list<Quickshell.Widgets.Box>"), props["content"].Type)
	assert.True(t, props["content"].Default)
	assert.True(t, props["margin"].Required)
	assert.False(t, props["ratio"].Writable)
	assert.True(t, props["ratio"].Readable)
	assert.Equal(t, typespec.Script("Quickshell.Widgets.Image"), props["source"].Type)
	assert.Nil(t, props["hidden"].Comment)
}

func TestNewExtractor_UnknownBackend(t *testing.T) {
	_, err := NewExtractor("clang")
	assert.Error(t, err)
}
