package module

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Delimiter separates the TOML header of a descriptor from its details body.
const Delimiter = "-----"

// FileName is the name descriptors are discovered by.
const FileName = "module.md"

var ErrNoDelimiter = errors.New("could not split module header")

var validate = validator.New()

// Header is the TOML part of a module descriptor.
type Header struct {
	Name        string   `toml:"name" validate:"required"`
	Description string   `toml:"description" validate:"required"`
	Headers     []string `toml:"headers"`
	QMLFiles    []string `toml:"qml_files"`
}

// Info is a loaded module descriptor. Dir is the directory that header and
// QML file paths are relative to.
type Info struct {
	Header  Header
	Details string
	Path    string
	Dir     string
}

// Parse reads descriptor text: a TOML header, a line of dashes and a free
// markdown body.
func Parse(text string) (*Info, error) {
	head, details, ok := strings.Cut(text, Delimiter)
	if !ok {
		return nil, ErrNoDelimiter
	}

	var h Header
	if _, err := toml.Decode(strings.TrimSpace(head), &h); err != nil {
		return nil, fmt.Errorf("parsing module info header: %w", err)
	}
	if err := validate.Struct(h); err != nil {
		return nil, fmt.Errorf("invalid module info header: %w", err)
	}

	return &Info{Header: h, Details: strings.TrimSpace(details)}, nil
}

// Load reads the descriptor at path.
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module file %s: %w", path, err)
	}

	info, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load module file %s: %w", path, err)
	}
	info.Path = path
	info.Dir = filepath.Dir(path)
	return info, nil
}

func (i *Info) Name() string {
	return i.Header.Name
}

// HeaderPaths returns the header files of the module joined onto its directory.
func (i *Info) HeaderPaths() []string {
	return i.join(i.Header.Headers)
}

// QMLPaths returns the QML files of the module joined onto its directory.
func (i *Info) QMLPaths() []string {
	return i.join(i.Header.QMLFiles)
}

func (i *Info) join(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.Join(i.Dir, f))
	}
	return out
}
