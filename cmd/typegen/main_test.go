package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typegen/internal/typespec"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func saveSpec(t *testing.T, dir, name string, spec typespec.TypeSpec) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, typespec.SaveFile(path, spec))
	return path
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	saveSpec(t, dir, "a.json", typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{{Name: "A", CName: "A", Module: "M"}},
	})
	saveSpec(t, dir, "b.json", typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{{Name: "B", CName: "B", Module: "M"}},
	})

	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 typespecs")

	conflicting := saveSpec(t, t.TempDir(), "dup.json", typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{{Name: "A", CName: "A", Module: "M"}},
	})
	out, err = execute(t, "validate", filepath.Join(dir, "a.json"), conflicting)
	require.Error(t, err)
	assert.Contains(t, out, `duplicate typemap "A" in module "M"`)
}

func TestGentypesGendocs(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "module.md"), []byte(
		"name = \"Quickshell.Io\"\ndescription = \"io\"\nheaders = [\"a.hpp\"]\n-----\nDetails.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.hpp"), []byte(
		"class Socket: public QObject {\n\tQ_OBJECT;\n\tQML_ELEMENT;\n\tQ_PROPERTY(QString path READ path CONSTANT);\n};\n"), 0o644))

	out := t.TempDir()
	specPath := filepath.Join(out, "Quickshell.Io.json")
	_, err := execute(t, "gentypes", filepath.Join(src, "module.md"), specPath)
	require.NoError(t, err)
	assert.FileExists(t, specPath)

	data := filepath.Join(out, "data")
	_, err = execute(t, "gendocs", "--format", "yaml", filepath.Join(src, "module.md"), data, filepath.Join(out, "content"), specPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(data, "Socket.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "type: class")
	assert.Contains(t, string(raw), "- readonly")
}

func TestArgsValidation(t *testing.T) {
	_, err := execute(t, "gentypes", "only-one")
	assert.Error(t, err)

	_, err = execute(t, "validate", "--parser", "clang", "x.json")
	assert.Error(t, err)
}
