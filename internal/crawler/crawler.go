package crawler

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"typegen/internal/module"
)

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{".git", "build", "node_modules", ".cache"}

// Crawler scans a directory tree for module descriptors.
type Crawler struct {
	excludes []glob.Glob
}

// NewCrawler creates a crawler that skips directories whose name or
// root-relative path matches one of the exclude patterns.
func NewCrawler(excludes []string) (*Crawler, error) {
	c := &Crawler{}
	for _, p := range append(append([]string(nil), DefaultExcludes...), excludes...) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		c.excludes = append(c.excludes, g)
	}
	return c, nil
}

// ScanProject walks root and calls onModule with the path of every
// descriptor found. An error from onModule stops the walk.
func (c *Crawler) ScanProject(root string, onModule func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && c.excluded(root, path) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() != module.FileName {
			return nil
		}
		return onModule(path)
	})
}

// FindModules returns every descriptor under root in lexical path order.
func (c *Crawler) FindModules(root string) ([]string, error) {
	var paths []string
	err := c.ScanProject(root, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (c *Crawler) excluded(root, path string) bool {
	base := filepath.Base(path)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, g := range c.excludes {
		if g.Match(base) || g.Match(rel) {
			return true
		}
	}
	return false
}
