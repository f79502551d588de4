package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BackendNative     = "native"
	BackendTreeSitter = "treesitter"
)

// Extractor dispatches source files to the header or QML parser.
type Extractor struct {
	header *HeaderParser
	qml    *QMLParser
}

// NewExtractor creates an extractor using the given header block backend.
func NewExtractor(backend string) (*Extractor, error) {
	var locator BlockLocator
	switch backend {
	case "", BackendNative:
		locator = NativeLocator{}
	case BackendTreeSitter:
		locator = TreeSitterLocator{}
	default:
		return nil, fmt.Errorf("unsupported parser backend: %s", backend)
	}
	return &Extractor{header: NewHeaderParser(locator), qml: NewQMLParser()}, nil
}

// Extract parses text as the file at path into b.
func (e *Extractor) Extract(path, text string, b *Builder) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".qml") {
		err = e.qml.Parse(path, text, b)
	} else {
		err = e.header.ParseFile(path, text, b)
	}
	if err != nil {
		return fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return nil
}

// ExtractFromFile reads and parses a single source file into b.
func (e *Extractor) ExtractFromFile(path string, b *Builder) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.Extract(path, string(src), b)
}
