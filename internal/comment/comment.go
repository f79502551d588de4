package comment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLocalPrefix marks modules that are documented by this tool.
// References into any other module are treated as Qt (foreign) references.
const DefaultLocalPrefix = "Quickshell"

var (
	calloutRe = regexp.MustCompile(`(?m)^>[ \t]+\[!(\w+)\][ \t]+(\S)`)

	// calloutAliases maps accepted admonition labels to the label the docs engine knows.
	calloutAliases = map[string]string{
		"INFO": "NOTE",
		"HINT": "TIP",
		"WARN": "WARNING",
	}
)

// Processor normalises raw doc comment blocks attached to declarations of one module.
type Processor struct {
	Module      string
	LocalPrefix string
}

// NewProcessor creates a processor for the given owning module.
func NewProcessor(module string) *Processor {
	return &Processor{Module: module, LocalPrefix: DefaultLocalPrefix}
}

// Details returns the normalised documentation text of a raw comment block.
func Details(raw, module string) string {
	return NewProcessor(module).Details(raw)
}

// DescriptionDetails returns the summary and details of a raw comment block.
func DescriptionDetails(raw, module string) (*string, *string) {
	return NewProcessor(module).DescriptionDetails(raw)
}

// Details strips comment leaders, drops leading blank lines and applies the
// admonition and cross reference transforms.
func (p *Processor) Details(raw string) string {
	text := normalize(raw)
	if text == "" {
		return ""
	}
	text = p.callouts(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = p.linkLine(line)
	}
	return strings.Join(lines, "\n")
}

// DescriptionDetails splits a processed block on a leading `!` marker.
// Text up to the first line break becomes the summary and the rest the details.
// Without the marker the whole block is details and there is no summary.
func (p *Processor) DescriptionDetails(raw string) (*string, *string) {
	text := p.Details(raw)
	if text == "" {
		return nil, nil
	}

	if !strings.HasPrefix(text, "!") {
		return nil, &text
	}

	summary, details, found := strings.Cut(text[1:], "\n")
	summary = strings.TrimPrefix(summary, " ")
	if !found || strings.TrimSpace(details) == "" {
		return &summary, nil
	}
	return &summary, &details
}

func normalize(raw string) string {
	var out []string
	seenContent := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "///"):
			line = strings.TrimPrefix(line[3:], " ")
		case strings.HasPrefix(line, "//"):
			line = strings.TrimPrefix(line[2:], " ")
		}

		if line == "" && !seenContent {
			continue
		}
		seenContent = true
		out = append(out, line)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func (p *Processor) callouts(text string) string {
	for alias, label := range calloutAliases {
		text = strings.ReplaceAll(text, "> [!"+alias+"]", "> [!"+label+"]")
	}
	return calloutRe.ReplaceAllString(text, "> [!${1}]\n> ${2}")
}

// MemberKind classifies the member part of a cross reference.
type MemberKind string

const (
	MemberNone     MemberKind = ""
	MemberProperty MemberKind = "prop"
	MemberFunction MemberKind = "func"
	MemberSignal   MemberKind = "signal"
)

// Link is a parsed `@@` cross reference.
type Link struct {
	// Module and Type are empty for member-only references such as `@@reload()`.
	Module string
	Type   string
	Member string
	Kind   MemberKind
	Local  bool
}

// ParseLink parses the text following an `@@` token. An omitted module
// qualifier defaults to the processor's module.
func (p *Processor) ParseLink(ref string) Link {
	var link Link
	var member string

	first, _ := utf8.DecodeRuneInString(ref)
	switch {
	case ref == "":
	case unicode.IsLower(first):
		member = ref
	default:
		module, name := splitLast(ref)
		if r, _ := utf8.DecodeRuneInString(name); unicode.IsLower(r) {
			member = name
			module, name = splitLast(module)
		}
		if module == "" {
			module = p.Module
		}
		link.Module = module
		link.Type = name
		link.Local = strings.HasPrefix(module, p.localPrefix())
	}

	switch {
	case member == "":
	case strings.HasSuffix(member, "()"):
		link.Member, link.Kind = strings.TrimSuffix(member, "()"), MemberFunction
	case strings.HasSuffix(member, "(s)"):
		link.Member, link.Kind = strings.TrimSuffix(member, "(s)"), MemberSignal
	default:
		link.Member, link.Kind = member, MemberProperty
	}
	return link
}

// Placeholder renders the link in the form expanded later by the site templates.
func (l Link) Placeholder() string {
	var sb strings.Builder
	sb.WriteString("TYPE")
	if l.Type != "" {
		if l.Local {
			sb.WriteString("99MQS")
		} else {
			sb.WriteString("99MQT_qml")
		}
		for _, part := range strings.Split(l.Module, ".") {
			sb.WriteString("_")
			sb.WriteString(part)
		}
		sb.WriteString("99N")
		sb.WriteString(l.Type)
	}
	if l.Member != "" {
		sb.WriteString("99V")
		sb.WriteString(l.Member)
		sb.WriteString("99T")
		sb.WriteString(string(l.Kind))
	}
	sb.WriteString("99TYPE")
	return sb.String()
}

func (p *Processor) linkLine(line string) string {
	if !strings.Contains(line, "@@") {
		return line
	}

	var sb strings.Builder
	src := line
	for {
		i := strings.Index(src, "@@")
		if i < 0 {
			break
		}
		sb.WriteString(src[:i])
		src = src[i+2:]

		end, ref := scanRef(src)
		sb.WriteString(p.ParseLink(ref).Placeholder())
		src = src[end:]
	}
	sb.WriteString(src)
	return sb.String()
}

// scanRef finds the extent of a reference. A `$` terminator is consumed,
// other terminators and a trailing `.` stay in the text.
func scanRef(src string) (int, string) {
	for i, c := range src {
		switch c {
		case '$':
			return i + 1, src[:i]
		case ' ', ',', ';', ':':
			ref := src[:i]
			if strings.HasSuffix(ref, ".") {
				return i - 1, ref[:len(ref)-1]
			}
			return i, ref
		}
	}
	if strings.HasSuffix(src, ".") {
		return len(src) - 1, src[:len(src)-1]
	}
	return len(src), src
}

func splitLast(s string) (string, string) {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

func (p *Processor) localPrefix() string {
	if p.LocalPrefix == "" {
		return DefaultLocalPrefix
	}
	return p.LocalPrefix
}
