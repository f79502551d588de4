package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"typegen/internal/module"
	"typegen/internal/resolver"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// stubs use [[ ]] delimiters so the hugo shortcode braces stay literal.
var (
	typeStub = template.Must(template.New("type").Delims("[[", "]]").Parse(`+++
title = "[[.Name]]"
hidetitle = true
+++

{{< qmltype module="[[.Module]]" type="[[.Name]]" >}}
`))

	moduleStub = template.Must(template.New("module").Delims("[[", "]]").Parse(`+++
title = "[[.Name]]"
hidetitle = true
+++

{{< qmlmodule module="[[.Name]]" >}}
`))
)

// ModuleIndex is the index document of one module.
type ModuleIndex struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Details     string `json:"details" yaml:"details"`
}

// Writer emits resolved type documents and page stubs.
type Writer struct {
	format string
}

func NewWriter(format string) (*Writer, error) {
	switch f := strings.ToLower(format); f {
	case "", FormatJSON:
		return &Writer{format: FormatJSON}, nil
	case FormatYAML, "yml":
		return &Writer{format: FormatYAML}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use json or yaml)", format)
	}
}

func (w *Writer) Ext() string {
	return "." + w.format
}

// Written lists the files produced by WriteModule.
type Written struct {
	Documents []string
	Stubs     []string
}

// WriteModule writes one document and one page stub per type, then the
// module index and its stub. Types are written in name order.
func (w *Writer) WriteModule(info *module.Info, types map[string]resolver.Document, dataDir, templateDir string) (Written, error) {
	var out Written

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return out, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(templateDir, 0755); err != nil {
		return out, fmt.Errorf("failed to create template directory: %w", err)
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		doc := types[name]

		path := filepath.Join(dataDir, name+w.Ext())
		if err := w.writeData(path, doc); err != nil {
			return out, err
		}
		out.Documents = append(out.Documents, path)

		stub := filepath.Join(templateDir, name+".md")
		if err := writeTemplate(stub, typeStub, doc); err != nil {
			return out, err
		}
		out.Stubs = append(out.Stubs, stub)
	}

	index := ModuleIndex{
		Name:        info.Name(),
		Description: info.Header.Description,
		Details:     info.Details,
	}

	path := filepath.Join(dataDir, "index"+w.Ext())
	if err := w.writeData(path, index); err != nil {
		return out, err
	}
	out.Documents = append(out.Documents, path)

	stub := filepath.Join(templateDir, "_index.md")
	if err := writeTemplate(stub, moduleStub, index); err != nil {
		return out, err
	}
	out.Stubs = append(out.Stubs, stub)

	return out, nil
}

// Encode renders v in the writer's format.
func (w *Writer) Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	switch w.format {
	case FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
	default:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (w *Writer) writeData(path string, v interface{}) error {
	data, err := w.Encode(v)
	if err != nil {
		return fmt.Errorf("while writing %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("while writing %s: %w", path, err)
	}
	return nil
}

func writeTemplate(path string, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("while rendering %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("while writing %s: %w", path, err)
	}
	return nil
}
