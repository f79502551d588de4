package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"typegen/internal/crawler"
	"typegen/internal/extractor"
	"typegen/internal/generator"
	"typegen/internal/index"
	"typegen/internal/module"
	"typegen/internal/resolver"
	"typegen/internal/storage"
	"typegen/internal/typespec"
)

type Options struct {
	Backend    string
	Format     string
	Jobs       int
	NoBuiltins bool
	Excludes   []string

	// Store, when set, receives every generated spec and contributes its
	// stored specs to documentation runs.
	Store storage.SpecStore
	// Report, when set, collects stage metrics and diagnostics.
	Report *generator.RunReport

	Logger *slog.Logger
	Out    io.Writer
}

// Typegen drives extraction, merging, resolution and output.
type Typegen struct {
	opts    Options
	indexer *index.Indexer
	writer  *generator.Writer
	log     *slog.Logger
	status  *Status
}

func New(opts Options) (*Typegen, error) {
	ext, err := extractor.NewExtractor(opts.Backend)
	if err != nil {
		return nil, err
	}
	w, err := generator.NewWriter(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Typegen{
		opts:    opts,
		indexer: index.NewIndexer(ext),
		writer:  w,
		log:     logger,
		status:  NewStatus(opts.Out),
	}, nil
}

// GenTypes extracts the spec of the module described at modulePath and
// writes it to outPath. Nothing is written when any file fails to parse.
func (t *Typegen) GenTypes(ctx context.Context, modulePath, outPath string) (*module.Info, error) {
	info, spec, err := t.indexer.BuildFile(ctx, modulePath)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := typespec.SaveFile(outPath, spec); err != nil {
		return nil, err
	}

	if t.opts.Store != nil {
		if err := t.opts.Store.SaveSpec(ctx, info.Name(), spec); err != nil {
			return nil, err
		}
	}

	t.log.Debug("typespec written",
		"module", info.Name(),
		"path", outPath,
		"typemap", len(spec.TypeMap),
		"classes", len(spec.Classes),
		"gadgets", len(spec.Gadgets),
		"enums", len(spec.Enums))
	t.status.Done("gentypes %s (%s) -> %s", modulePath, info.Name(), outPath)
	return info, nil
}

// GenDocs resolves the module described at modulePath against the specs in
// specPaths and writes its documents to dataDir and page stubs to templateDir.
func (t *Typegen) GenDocs(ctx context.Context, modulePath, dataDir, templateDir string, specPaths []string) error {
	info, err := module.Load(modulePath)
	if err != nil {
		return err
	}

	merged, err := t.MergeSpecs(ctx, specPaths)
	if err != nil {
		return err
	}
	return t.genDocs(info, merged, dataDir, templateDir)
}

// MergeSpecs loads and merges the spec documents in paths, the stored specs
// and the builtin base types. A stored spec is skipped when a spec document
// already provides its module. Conflicts are logged and never fatal.
func (t *Typegen) MergeSpecs(ctx context.Context, paths []string) (typespec.TypeSpec, error) {
	h := t.opts.Report.BeginStage("merge")

	specs, err := index.LoadSpecs(paths)
	if err != nil {
		t.opts.Report.EndStage(h, nil, err)
		return typespec.TypeSpec{}, err
	}

	if t.opts.Store != nil {
		entries, err := t.opts.Store.LoadAll(ctx)
		if err != nil {
			t.opts.Report.EndStage(h, nil, err)
			return typespec.TypeSpec{}, fmt.Errorf("failed to load stored typespecs: %w", err)
		}
		provided := specModules(specs)
		for _, e := range entries {
			if provided[e.Module] {
				t.log.Debug("stored typespec shadowed by spec file", "module", e.Module)
				continue
			}
			specs = append(specs, e.Spec)
		}
	}

	if !t.opts.NoBuiltins {
		specs = append(specs, typespec.Builtins())
	}

	merged, conflicts := typespec.Merge(specs...)
	for _, c := range conflicts {
		t.log.Warn("merge conflict", "collection", c.Collection, "key", c.Key, "module", c.Module)
		t.opts.Report.AddSignal("merge_conflict", "merge", generator.SeverityWarning, c.Module, c.String())
	}

	t.opts.Report.EndStage(h, map[string]float64{
		"specs":     float64(len(specs)),
		"conflicts": float64(len(conflicts)),
	}, nil)
	return merged, nil
}

func (t *Typegen) genDocs(info *module.Info, merged typespec.TypeSpec, dataDir, templateDir string) error {
	h := t.opts.Report.BeginStage("resolve " + info.Name())
	res := resolver.Resolve(info.Name(), merged)

	for _, d := range res.Diagnostics {
		t.log.Warn(d.Message, "module", info.Name(), "type", d.Type, "member", d.Member, "reason", d.Reason)
		t.opts.Report.AddSignal(d.Reason, "resolve", generator.SeverityInfo, info.Name(), d.Message)
	}
	for _, st := range res.Stages {
		t.log.Debug("superclass stage", "module", info.Name(), "resolver", st.Resolver,
			"resolved", st.Stats.Resolved, "skipped", st.Stats.Skipped)
	}
	for super, n := range res.Unresolved {
		t.log.Debug("unlinked superclass", "module", info.Name(), "superclass", super, "classes", n)
	}

	t.opts.Report.AddModule(generator.ModuleMetric{
		Module:      info.Name(),
		Classes:     res.Stats.Classes,
		Enums:       res.Stats.Enums,
		Properties:  res.Stats.Properties,
		Functions:   res.Stats.Functions,
		Signals:     res.Stats.Signals,
		Unknown:     res.Stats.Unknown,
		Diagnostics: len(res.Diagnostics),
	})

	written, err := t.writer.WriteModule(info, res.Types, dataDir, templateDir)
	t.opts.Report.EndStage(h, map[string]float64{
		"types":   float64(len(res.Types)),
		"unknown": float64(res.Stats.Unknown),
		"files":   float64(len(written.Documents) + len(written.Stubs)),
	}, err)
	if err != nil {
		return fmt.Errorf("module %s: %w", info.Name(), err)
	}

	if res.Stats.Unknown > 0 {
		t.status.Warn("%s: %d unresolved type references", info.Name(), res.Stats.Unknown)
	}
	t.status.Done("gendocs %s (%s) -> %s", info.Path, info.Name(), dataDir)
	return nil
}

// FullTypegen discovers every module under baseDir, writes each module's
// spec to outDir, then documents every module against all specs in outDir
// and extraDirs.
func (t *Typegen) FullTypegen(ctx context.Context, baseDir, outDir, dataDir, templateDir string, extraDirs []string) error {
	cr, err := crawler.NewCrawler(t.opts.Excludes)
	if err != nil {
		return err
	}
	paths, err := cr.FindModules(baseDir)
	if err != nil {
		return err
	}

	infos := make([]*module.Info, len(paths))
	for i, p := range paths {
		info, err := module.Load(p)
		if err != nil {
			return err
		}
		infos[i] = info
	}
	t.log.Info("modules discovered", "base", baseDir, "count", len(infos))

	t.status.Stage("Generating types -> %s", outDir)
	h := t.opts.Report.BeginStage("extract")
	err = t.forEach(ctx, infos, func(ctx context.Context, info *module.Info) error {
		_, err := t.GenTypes(ctx, info.Path, filepath.Join(outDir, info.Name()+".json"))
		return err
	})
	t.opts.Report.EndStage(h, map[string]float64{"modules": float64(len(infos))}, err)
	if err != nil {
		return err
	}

	typeDirs := append(append([]string(nil), extraDirs...), outDir)
	specPaths, err := index.SpecFiles(typeDirs...)
	if err != nil {
		return err
	}

	t.status.Stage("Generating docs %v -> %s", typeDirs, dataDir)
	// spec files already cover stored specs written by this run
	merged, err := t.withoutStore().MergeSpecs(ctx, specPaths)
	if err != nil {
		return err
	}

	return t.forEach(ctx, infos, func(ctx context.Context, info *module.Info) error {
		return t.genDocs(info,
			merged,
			filepath.Join(dataDir, info.Name()),
			filepath.Join(templateDir, info.Name()))
	})
}

// forEach runs fn for every module on at most Jobs goroutines. The first
// error cancels the rest.
func (t *Typegen) forEach(ctx context.Context, infos []*module.Info, fn func(context.Context, *module.Info) error) error {
	if len(infos) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(t.opts.Jobs, len(infos)))

	for _, info := range infos {
		info := info
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			return fn(gctx, info)
		})
	}
	return g.Wait()
}

func (t *Typegen) withoutStore() *Typegen {
	c := *t
	c.opts.Store = nil
	return &c
}

// specModules lists the modules the given specs carry entries for.
func specModules(specs []typespec.TypeSpec) map[string]bool {
	out := make(map[string]bool)
	for _, s := range specs {
		for _, m := range s.TypeMap {
			out[m.Module] = true
		}
		for _, c := range s.Classes {
			out[c.Module] = true
		}
		for _, g := range s.Gadgets {
			out[g.Module] = true
		}
		for _, e := range s.Enums {
			out[e.Module] = true
		}
	}
	return out
}
