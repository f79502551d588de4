package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"typegen/internal/extractor"
	"typegen/internal/module"
	"typegen/internal/typespec"
)

// Indexer turns a module descriptor into the intermediate spec of that module.
type Indexer struct {
	extractor *extractor.Extractor
}

// NewIndexer creates a new indexer.
func NewIndexer(ext *extractor.Extractor) *Indexer {
	return &Indexer{
		extractor: ext,
	}
}

// BuildSpec parses every header and then every QML file the descriptor
// lists. The spec is only returned when all files parsed.
func (i *Indexer) BuildSpec(ctx context.Context, info *module.Info) (typespec.TypeSpec, error) {
	b := extractor.NewBuilder(info.Name())

	for _, path := range append(info.HeaderPaths(), info.QMLPaths()...) {
		if err := ctx.Err(); err != nil {
			return typespec.TypeSpec{}, err
		}
		if err := i.extractor.ExtractFromFile(path, b); err != nil {
			return typespec.TypeSpec{}, fmt.Errorf("module %s: %w", info.Name(), err)
		}
	}

	return b.Spec(), nil
}

// BuildFile loads the descriptor at path and builds its spec.
func (i *Indexer) BuildFile(ctx context.Context, path string) (*module.Info, typespec.TypeSpec, error) {
	info, err := module.Load(path)
	if err != nil {
		return nil, typespec.TypeSpec{}, err
	}
	spec, err := i.BuildSpec(ctx, info)
	if err != nil {
		return nil, typespec.TypeSpec{}, err
	}
	return info, spec, nil
}

// SpecFiles lists the spec documents directly inside dirs, sorted per
// directory. Subdirectories and non-json files are ignored.
func SpecFiles(dirs ...string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list type directory %s: %w", dir, err)
		}

		var names []string
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)

		for _, n := range names {
			files = append(files, filepath.Join(dir, n))
		}
	}
	return files, nil
}

// LoadSpecs loads and validates every spec document in paths.
func LoadSpecs(paths []string) ([]typespec.TypeSpec, error) {
	specs := make([]typespec.TypeSpec, 0, len(paths))
	for _, p := range paths {
		spec, err := typespec.LoadFile(p)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
