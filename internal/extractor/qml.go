package extractor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"typegen/internal/ir"
	"typegen/internal/typespec"
)

var (
	qmlImportAliasRe = regexp.MustCompile(`^\s*import\s+([\w.]+)(?:\s+[\d.]+)?\s+as\s+(\w+)`)
	qmlRootRe        = regexp.MustCompile(`^\s*([A-Z][\w.]*)\s*\{`)
	qmlPropertyRe    = regexp.MustCompile(`^\s*((?:(?:default|required|readonly)\s+)*)property\s+([\w.<>]+)\s+(\w+)`)
	qmlTypeOverride  = regexp.MustCompile(`//\s*@type\s+([\w.<>]+)`)
	qmlSingletonRe   = regexp.MustCompile(`^\s*pragma\s+Singleton\b`)

	// a child object, bare or bound to a property: `Item {`, `contentItem: Item {`
	qmlChildRe = regexp.MustCompile(`^\s*(?:[^:{]*:\s*)?[A-Z][\w.]*\s*\{`)
)

// QMLParser extracts the property surface of a QML component file.
type QMLParser struct{}

func NewQMLParser() *QMLParser {
	return &QMLParser{}
}

// Parse appends the component defined by the file to b. Only the text up to
// the first nested component is read. Handlers, functions and object
// literals do not end it.
func (p *QMLParser) Parse(filename, text string, b *Builder) error {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	mkComment := func(lines []string) *ir.Comment {
		if len(lines) == 0 {
			return nil
		}
		return &ir.Comment{Text: strings.Join(lines, "\n"), Module: b.Module()}
	}

	aliases := map[string]string{}
	cls := ir.Class{
		Kind:     ir.KindObject,
		Name:     name,
		QMLName:  name,
		Evidence: ir.Evidence{Filepath: filename},
	}

	lines := strings.Split(text, "\n")
	var doc []string
	root := -1

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "///"):
			doc = append(doc, trimmed)
			continue
		case trimmed == "":
			continue
		case qmlSingletonRe.MatchString(line):
			cls.Singleton = true
		case qmlImportAliasRe.MatchString(line):
			m := qmlImportAliasRe.FindStringSubmatch(line)
			aliases[m[2]] = m[1]
		case qmlRootRe.MatchString(line):
			m := qmlRootRe.FindStringSubmatch(line)
			cls.Superclass = typespec.Script(expandAlias(m[1], aliases))
			cls.Comment = mkComment(doc)
			cls.Evidence.StartLine = i + 1
			root = i
		}
		doc = nil
		if root >= 0 {
			break
		}
	}

	if root < 0 {
		return &ParseError{Class: name, Err: fmt.Errorf("%w in %s", ErrNoComponent, filename)}
	}

	for _, line := range lines[root+1:] {
		trimmed := strings.TrimSpace(line)
		child := qmlChildRe.MatchString(stripLineComment(line))
		if child && !qmlPropertyRe.MatchString(line) {
			break
		}

		switch {
		case strings.HasPrefix(trimmed, "///"):
			doc = append(doc, trimmed)
			continue
		case trimmed == "":
			continue
		}

		if m := qmlPropertyRe.FindStringSubmatch(line); m != nil {
			modifiers := strings.Fields(m[1])
			typ := m[2]
			if o := qmlTypeOverride.FindStringSubmatch(line); o != nil {
				typ = o[1]
			}

			prop := ir.Property{
				Type:     typespec.Script(expandAlias(typ, aliases)),
				Name:     m[3],
				Comment:  mkComment(doc),
				Readable: true,
				Writable: true,
			}
			for _, mod := range modifiers {
				switch mod {
				case "default":
					prop.Default = true
				case "required":
					prop.Required = true
				case "readonly":
					prop.Writable = false
				}
			}
			cls.Properties = append(cls.Properties, prop)
		}
		if child {
			break
		}
		doc = nil
	}

	b.AddClass(cls)
	return nil
}

// expandAlias rewrites the first segment of a dotted type through the import
// alias table, including element types of `list<...>`.
func expandAlias(typ string, aliases map[string]string) string {
	if open := strings.Index(typ, "<"); open >= 0 && strings.HasSuffix(typ, ">") {
		return typ[:open+1] + expandAlias(typ[open+1:len(typ)-1], aliases) + ">"
	}
	head, rest, found := strings.Cut(typ, ".")
	if !found {
		return typ
	}
	if target, ok := aliases[head]; ok {
		return target + "." + rest
	}
	return typ
}

func stripLineComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}
