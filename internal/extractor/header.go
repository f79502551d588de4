package extractor

import (
	"errors"
	"fmt"
	"strings"

	"typegen/internal/ir"
	"typegen/internal/typespec"
)

// HeaderParser extracts classes and enums from reflection annotated C++ headers.
type HeaderParser struct {
	locator BlockLocator
}

// NewHeaderParser creates a header parser. A nil locator parses whole files.
func NewHeaderParser(locator BlockLocator) *HeaderParser {
	if locator == nil {
		locator = NativeLocator{}
	}
	return &HeaderParser{locator: locator}
}

// Parse appends every class and namespace scoped enum in text to b.
// Nothing is appended when parsing fails.
func (h *HeaderParser) Parse(text string, b *Builder) error {
	return h.ParseFile("", text, b)
}

// ParseFile is Parse with the source path recorded as evidence.
func (h *HeaderParser) ParseFile(path, text string, b *Builder) error {
	blocks, err := h.locator.Locate([]byte(text))
	if err != nil {
		return fmt.Errorf("failed to locate declarations: %w", err)
	}

	var classes []ir.Class
	var enums []ir.Enum
	for _, blk := range blocks {
		toks, err := lex(text[blk.Start:blk.End], blk.Line)
		if err != nil {
			return err
		}

		p := &headerParser{toks: toks, module: b.Module(), path: path}
		if _, err := p.parseScope("", false); err != nil {
			return err
		}
		classes = append(classes, p.classes...)
		enums = append(enums, p.enums...)
	}

	for _, c := range classes {
		b.AddClass(c)
	}
	for _, e := range enums {
		b.AddEnum(e)
	}
	return nil
}

type headerParser struct {
	toks    []token
	pos     int
	module  string
	path    string
	classes []ir.Class
	enums   []ir.Enum
}

type scopeInfo struct {
	exposed string
	enums   []ir.Enum
	flags   map[string]string
}

type macro struct {
	name    token
	args    []token
	hasArgs bool
}

func (m macro) String() string {
	if !m.hasArgs {
		return m.name.text
	}
	return m.name.text + "(" + renderTokens(m.args) + ")"
}

// ident returns the single identifier argument of the macro.
func (m macro) ident() (string, error) {
	if !m.hasArgs || len(m.args) == 0 {
		return "", fmt.Errorf("%w: expected a name argument", ErrMalformedMacro)
	}
	name := renderTokens(m.args)
	if strings.ContainsAny(name, " ,()") {
		return "", fmt.Errorf("%w: expected a single name, got %q", ErrMalformedMacro, name)
	}
	return name, nil
}

var eofToken = token{kind: tokPunct}

func (p *headerParser) atEnd() bool {
	return p.pos >= len(p.toks)
}

func (p *headerParser) peek() token {
	return p.peekN(0)
}

func (p *headerParser) peekN(n int) token {
	if p.pos+n >= len(p.toks) {
		return eofToken
	}
	return p.toks[p.pos+n]
}

func (p *headerParser) next() token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *headerParser) accept(text string) bool {
	if p.peek().is(text) {
		p.pos++
		return true
	}
	return false
}

func (p *headerParser) comment(doc string) *ir.Comment {
	if doc == "" {
		return nil
	}
	return &ir.Comment{Text: doc, Module: p.module}
}

func (p *headerParser) evidence(t token) ir.Evidence {
	return ir.Evidence{Filepath: p.path, StartLine: t.line}
}

func (p *headerParser) unterminated(what string, line int) error {
	return &ParseError{Line: line, Err: fmt.Errorf("%w: %s", ErrUnterminated, what)}
}

// parseScope walks a file or namespace body, collecting the enums and
// registration macros that sit directly inside it.
func (p *headerParser) parseScope(ns string, nested bool) (scopeInfo, error) {
	info := scopeInfo{flags: map[string]string{}}

	for !p.atEnd() {
		t := p.peek()
		switch {
		case t.is("}"):
			if nested {
				return info, nil
			}
			p.next()
		case t.is("{") || t.is("("):
			if err := p.skipBalanced(); err != nil {
				return info, err
			}
		case t.is("namespace"):
			if err := p.parseNamespace(); err != nil {
				return info, err
			}
		case t.is("class") || t.is("struct"):
			if err := p.parseClass(); err != nil {
				return info, err
			}
		case t.is("enum"):
			e, named, err := p.parseEnum(ns)
			if err != nil {
				return info, err
			}
			if named {
				info.enums = append(info.enums, e)
			}
		case t.is("template"):
			p.next()
			if p.peek().is("<") {
				p.skipAngles()
			}
		case t.isIdent() && isMacroName(t.text):
			m, err := p.parseMacro()
			if err != nil {
				return info, err
			}
			if err := scopeMacro(&info, ns, m); err != nil {
				return info, &ParseError{Macro: m.String(), Line: m.name.line, Err: err}
			}
		default:
			p.next()
		}
	}

	if nested {
		return info, p.unterminated("namespace "+ns, p.peek().line)
	}
	return info, nil
}

func scopeMacro(info *scopeInfo, ns string, m macro) error {
	switch m.name.text {
	case "QML_ELEMENT", "QSDOC_ELEMENT":
		info.exposed = ns
	case "QML_NAMED_ELEMENT", "QSDOC_NAMED_ELEMENT":
		name, err := m.ident()
		if err != nil {
			return err
		}
		info.exposed = name
	case "Q_DECLARE_FLAGS":
		args := splitArgs(m.args)
		if len(args) != 2 {
			return fmt.Errorf("%w: expected flags and enum names", ErrMalformedMacro)
		}
		info.flags[renderTokens(args[1])] = renderTokens(args[0])
	}
	return nil
}

func (p *headerParser) parseNamespace() error {
	kw := p.next()

	var name string
	for p.peek().isIdent() || p.peek().is("::") {
		if t := p.next(); t.isIdent() {
			name = t.text
		}
	}
	if !p.peek().is("{") {
		return p.skipDeclaration()
	}
	p.next()

	info, err := p.parseScope(name, true)
	if err != nil {
		return err
	}
	p.next()

	// A namespace exposes an enum only when it carries an element macro and
	// declares exactly one enum.
	if info.exposed == "" || len(info.enums) != 1 {
		return nil
	}

	e := info.enums[0]
	if flag, ok := info.flags[e.Name]; ok {
		e.Name = flag
	}
	e.Namespace = name
	e.QMLName = info.exposed
	if c := p.comment(kw.doc); c != nil {
		e.Comment = c
	}
	e.Evidence = p.evidence(kw)
	p.enums = append(p.enums, e)
	return nil
}

func (p *headerParser) parseClass() error {
	kw := p.next()

	var name string
	for {
		t := p.peek()
		if t.is("[") && p.peekN(1).is("[") {
			if err := p.skipBalanced(); err != nil {
				return err
			}
			continue
		}
		if t.isIdent() && t.text != "final" || t.is("::") {
			if t.isIdent() {
				name = t.text
			}
			p.next()
			continue
		}
		break
	}

	if p.peek().is("<") {
		p.skipAngles()
	}
	p.accept("final")

	var super string
	if p.accept(":") {
		super = p.parseBaseClause()
	}

	if !p.peek().is("{") {
		// forward declaration or elaborated type specifier
		return nil
	}
	if name == "" {
		return p.skipBalanced()
	}
	p.next()

	return p.parseClassBody(kw, name, super)
}

func (p *headerParser) parseBaseClause() string {
	var base strings.Builder
	first := true

	for !p.atEnd() {
		t := p.peek()
		switch {
		case t.is("{") || t.is(";"):
			return base.String()
		case t.is(","):
			first = false
			p.next()
		case t.is("<"):
			p.skipAngles()
		case t.is("public") || t.is("protected") || t.is("private") || t.is("virtual"):
			p.next()
		case first && (t.isIdent() || t.is("::")):
			base.WriteString(t.text)
			p.next()
		default:
			p.next()
		}
	}
	return base.String()
}

type classBuilder struct {
	cls            ir.Class
	element        bool
	namedElement   string
	uncreatable    bool
	forceCreatable bool
	defaultProp    string
	overridden     map[string]bool
	inSignals      bool
	carry          carryover
	baseOverride   string
	cnameOverride  string
	enums          []ir.Enum
	registered     map[string]bool
	flagAliases    map[string]string
}

func (p *headerParser) parseClassBody(kw token, name, super string) error {
	cb := &classBuilder{
		overridden:  map[string]bool{},
		registered:  map[string]bool{},
		flagAliases: map[string]string{},
	}
	cb.cls.Name = name
	cb.cls.Comment = p.comment(kw.doc)
	cb.cls.Evidence = p.evidence(kw)

	fail := func(m string, line int, err error) error {
		var pe *ParseError
		if errors.As(err, &pe) {
			return err
		}
		return &ParseError{Class: name, Macro: m, Line: line, Err: err}
	}

	for {
		if p.atEnd() {
			return fail("", kw.line, fmt.Errorf("%w: class body", ErrUnterminated))
		}

		t := p.peek()
		if section, ok := p.accessSpecifier(); ok {
			cb.inSignals = section == "signals" || section == "Q_SIGNALS"
			continue
		}

		var err error
		switch {
		case t.is("}"):
			p.next()
			return p.finishClass(cb, name, super, t)
		case t.is(";"):
			p.next()
		case t.isIdent() && isMacroName(t.text):
			var m macro
			m, err = p.parseMacro()
			if err == nil {
				err = p.classMacro(cb, m)
			}
			if err != nil {
				return fail(m.String(), t.line, err)
			}
		case t.is("enum"):
			var e ir.Enum
			var named bool
			e, named, err = p.parseEnum(name)
			if named {
				cb.enums = append(cb.enums, e)
			}
		case t.is("class") || t.is("struct"):
			err = p.parseClass()
		case t.is("template"):
			p.next()
			if p.peek().is("<") {
				p.skipAngles()
			}
		case cb.inSignals && t.is("void"):
			err = p.parseSignal(cb, t.doc)
		default:
			err = p.skipDeclaration()
		}
		if err != nil {
			return fail("", t.line, err)
		}
	}
}

// accessSpecifier consumes `public:`, `public slots:`, `signals:` and the like.
func (p *headerParser) accessSpecifier() (string, bool) {
	t := p.peek()
	switch t.text {
	case "public", "protected", "private", "signals", "Q_SIGNALS", "slots", "Q_SLOTS":
	default:
		return "", false
	}
	if !t.isIdent() {
		return "", false
	}

	n := 1
	if s := p.peekN(1); s.is("slots") || s.is("Q_SLOTS") {
		n = 2
	}
	if !p.peekN(n).is(":") {
		return "", false
	}
	p.pos += n + 1
	return t.text, true
}

func (p *headerParser) classMacro(cb *classBuilder, m macro) error {
	switch m.name.text {
	case "Q_OBJECT":
		cb.cls.Kind = ir.KindObject
	case "Q_GADGET", "Q_GADGET_EXPORT":
		cb.cls.Kind = ir.KindGadget
	case "QML_ELEMENT", "QSDOC_ELEMENT":
		cb.element = true
	case "QML_NAMED_ELEMENT", "QSDOC_NAMED_ELEMENT":
		name, err := m.ident()
		if err != nil {
			return err
		}
		cb.namedElement = name
	case "QML_SINGLETON":
		cb.cls.Singleton = true
	case "QML_UNCREATABLE":
		cb.uncreatable = true
	case "QSDOC_CREATABLE":
		cb.forceCreatable = true
	case "Q_PROPERTY", "QSDOC_PROPERTY_OVERRIDE":
		return p.classProperty(cb, m)
	case "Q_CLASSINFO":
		args := splitArgs(m.args)
		if len(args) != 2 {
			return fmt.Errorf("%w: expected key and value", ErrMalformedMacro)
		}
		if unquote(renderTokens(args[0])) == "DefaultProperty" {
			cb.defaultProp = unquote(renderTokens(args[1]))
		}
	case "Q_ENUM", "Q_FLAG", "Q_ENUMS", "Q_FLAGS":
		for _, arg := range splitArgs(m.args) {
			cb.registered[renderTokens(arg)] = true
		}
	case "Q_DECLARE_FLAGS":
		args := splitArgs(m.args)
		if len(args) != 2 {
			return fmt.Errorf("%w: expected flags and enum names", ErrMalformedMacro)
		}
		cb.flagAliases[renderTokens(args[1])] = renderTokens(args[0])
	case "QSDOC_BASECLASS":
		name, err := m.ident()
		if err != nil {
			return err
		}
		cb.baseOverride = name
	case "QSDOC_CNAME":
		name, err := m.ident()
		if err != nil {
			return err
		}
		cb.cnameOverride = name
	case "QSDOC_TYPE_OVERRIDE":
		if !m.hasArgs || len(m.args) == 0 {
			return fmt.Errorf("%w: expected a type", ErrMalformedMacro)
		}
		_, err := cb.carry.fire(evTypeOverride, renderTokens(m.args), m.name.doc)
		return err
	case "QSDOC_HIDE":
		_, err := cb.carry.fire(evHide, "", m.name.doc)
		return err
	case "Q_INVOKABLE":
		return p.parseInvokable(cb, m.name)
	case "Q_SIGNAL":
		return p.parseSignal(cb, m.name.doc)
	}
	return nil
}

func (p *headerParser) classProperty(cb *classBuilder, m macro) error {
	if !m.hasArgs {
		return fmt.Errorf("%w: expected property arguments", ErrMalformedMacro)
	}
	prop, err := parseProperty(m.args)
	if err != nil {
		return err
	}

	res, err := cb.carry.fire(evProperty, "", "")
	if err != nil {
		return err
	}
	if res.hide {
		return nil
	}
	if res.typeOverride != "" {
		prop.Type = typespec.Host(res.typeOverride)
	}

	doc := m.name.doc
	if doc == "" {
		doc = res.doc
	}
	prop.Comment = p.comment(doc)

	// Documentation overrides replace the real declaration of the same name.
	override := m.name.text == "QSDOC_PROPERTY_OVERRIDE"
	if cb.overridden[prop.Name] {
		return nil
	}
	if override {
		cb.overridden[prop.Name] = true
		props := cb.cls.Properties[:0]
		for _, existing := range cb.cls.Properties {
			if existing.Name != prop.Name {
				props = append(props, existing)
			}
		}
		cb.cls.Properties = props
	}
	cb.cls.Properties = append(cb.cls.Properties, prop)
	return nil
}

func (p *headerParser) finishClass(cb *classBuilder, name, super string, end token) error {
	if _, err := cb.carry.fire(evEnd, "", ""); err != nil {
		return &ParseError{Class: name, Macro: "QSDOC_TYPE_OVERRIDE", Line: end.line, Err: err}
	}
	if cb.cls.Kind == ir.KindUnclassified {
		return nil
	}

	cls := cb.cls
	if cb.cnameOverride != "" {
		cls.Name = cb.cnameOverride
	}
	if cb.baseOverride != "" {
		super = cb.baseOverride
	}
	if super != "" {
		cls.Superclass = typespec.Host(super)
	}

	switch {
	case cb.namedElement != "":
		cls.QMLName = cb.namedElement
	case cb.element:
		cls.QMLName = cls.Name
	}
	cls.Uncreatable = cb.uncreatable && !cb.forceCreatable

	if cb.defaultProp != "" {
		found := false
		for i := range cls.Properties {
			if cls.Properties[i].Name == cb.defaultProp {
				cls.Properties[i].Default = true
				found = true
			}
		}
		if !found {
			return &ParseError{Class: name, Macro: "Q_CLASSINFO", Line: end.line,
				Err: fmt.Errorf("%w: %s", ErrMissingDefault, cb.defaultProp)}
		}
	}

	// notify signals move onto their property
	declared := make(map[string]ir.Signal, len(cls.Signals))
	for _, sig := range cls.Signals {
		declared[sig.Name] = sig
	}
	notify := map[string]bool{}
	for i := range cls.Properties {
		prop := &cls.Properties[i]
		if prop.Notify == "" {
			continue
		}
		notify[prop.Notify] = true
		if sig, ok := declared[prop.Notify]; ok {
			prop.NotifyParams = sig.Params
		}
	}
	var signals []ir.Signal
	for _, sig := range cls.Signals {
		if !notify[sig.Name] {
			signals = append(signals, sig)
		}
	}
	cls.Signals = signals

	for _, e := range cb.enums {
		flag, hasFlag := cb.flagAliases[e.Name]
		if !cb.registered[e.Name] && !(hasFlag && cb.registered[flag]) {
			continue
		}
		if hasFlag {
			e.Name = flag
		}
		e.Namespace = cls.Name
		e.QMLName = e.Name
		cls.Enums = append(cls.Enums, e)
	}

	p.classes = append(p.classes, cls)
	return nil
}

func (p *headerParser) parseMacro() (macro, error) {
	m := macro{name: p.next()}
	if !p.peek().is("(") {
		return m, nil
	}

	p.next()
	start := p.pos
	depth := 1
	for depth > 0 {
		if p.atEnd() {
			return m, p.unterminated("arguments of "+m.name.text, m.name.line)
		}
		switch t := p.next(); {
		case t.is("("):
			depth++
		case t.is(")"):
			depth--
		}
	}
	m.args = p.toks[start : p.pos-1]
	m.hasArgs = true
	p.accept(";")
	return m, nil
}

var (
	accessorsWithName = map[string]bool{
		"MEMBER": true, "READ": true, "WRITE": true, "NOTIFY": true, "RESET": true, "BINDABLE": true,
	}
	accessorsBare = map[string]bool{
		"CONSTANT": true, "FINAL": true, "REQUIRED": true,
	}
	accessorsOptionalValue = map[string]bool{
		"DESIGNABLE": true, "SCRIPTABLE": true, "STORED": true, "USER": true, "REVISION": true,
	}
)

func isAccessor(t token) bool {
	return t.isIdent() && (accessorsWithName[t.text] || accessorsBare[t.text] || accessorsOptionalValue[t.text])
}

// parseProperty decomposes `Type name ACCESSOR value ...`.
func parseProperty(args []token) (ir.Property, error) {
	var prop ir.Property

	k := -1
	depth := 0
	for i, t := range args {
		switch {
		case t.is("<") || t.is("("):
			depth++
		case t.is(">") || t.is(")"):
			depth--
		case depth == 0 && isAccessor(t):
			k = i
		}
		if k >= 0 {
			break
		}
	}
	if k < 2 || !args[k-1].isIdent() {
		return prop, fmt.Errorf("%w: expected type and name before accessors", ErrMalformedMacro)
	}

	prop.Name = args[k-1].text
	prop.Type = typespec.Host(renderTokens(args[:k-1]))

	var read, write, member, constant bool
	for i := k; i < len(args); {
		kw := args[i]
		i++
		switch {
		case accessorsWithName[kw.text]:
			if i >= len(args) || !args[i].isIdent() {
				return prop, fmt.Errorf("%w: %s requires a name", ErrMalformedMacro, kw.text)
			}
			value := args[i].text
			i++
			switch kw.text {
			case "READ":
				read = true
			case "WRITE":
				write = true
			case "MEMBER":
				member = true
			case "NOTIFY":
				prop.Notify = value
			}
		case accessorsBare[kw.text]:
			switch kw.text {
			case "CONSTANT":
				constant = true
			case "REQUIRED":
				prop.Required = true
			}
		case accessorsOptionalValue[kw.text]:
			if i < len(args) && args[i].is("(") {
				for i < len(args) && !args[i].is(")") {
					i++
				}
				i++
			} else if i < len(args) && !isAccessor(args[i]) {
				i++
			}
		default:
			return prop, fmt.Errorf("%w: unexpected %q", ErrMalformedMacro, kw.text)
		}
	}

	prop.Readable = read || member
	prop.Writable = !constant && (write || member)
	return prop, nil
}

func (p *headerParser) parseInvokable(cb *classBuilder, macroTok token) error {
	for {
		t := p.peek()
		if t.is("[") && p.peekN(1).is("[") {
			if err := p.skipBalanced(); err != nil {
				return err
			}
			continue
		}
		if t.is("static") || t.is("virtual") || t.is("inline") || t.is("explicit") ||
			t.is("constexpr") || t.isIdent() && isMacroName(t.text) {
			p.next()
			continue
		}
		break
	}

	var decl []token
	for {
		if p.atEnd() {
			return p.unterminated("invokable declaration", macroTok.line)
		}
		t := p.peek()
		if t.is("(") {
			break
		}
		if t.is(";") || t.is("{") || t.is("}") {
			return fmt.Errorf("%w: expected a function declaration", ErrMalformedMacro)
		}
		if t.is("<") {
			start := p.pos
			p.skipAngles()
			decl = append(decl, p.toks[start:p.pos]...)
			continue
		}
		decl = append(decl, p.next())
	}

	// constructors and operators are not documented
	if len(decl) < 2 || !decl[len(decl)-1].isIdent() || decl[len(decl)-2].is("operator") {
		return p.skipDeclaration()
	}

	params, err := p.parseParams()
	if err != nil {
		return err
	}
	if err := p.skipDeclaration(); err != nil {
		return err
	}

	res, err := cb.carry.fire(evMember, "", "")
	if err != nil || res.hide {
		return err
	}

	cb.cls.Invokables = append(cb.cls.Invokables, ir.Invokable{
		Name:    decl[len(decl)-1].text,
		Ret:     cleanType(decl[:len(decl)-1]),
		Comment: p.comment(macroTok.doc),
		Params:  params,
	})
	return nil
}

func (p *headerParser) parseSignal(cb *classBuilder, doc string) error {
	if !p.peek().is("void") || !p.peekN(1).isIdent() || !p.peekN(2).is("(") {
		return p.skipDeclaration()
	}
	p.next()
	name := p.next()

	params, err := p.parseParams()
	if err != nil {
		return err
	}
	if err := p.skipDeclaration(); err != nil {
		return err
	}

	res, err := cb.carry.fire(evMember, "", "")
	if err != nil || res.hide {
		return err
	}

	cb.cls.Signals = append(cb.cls.Signals, ir.Signal{
		Name:    name.text,
		Comment: p.comment(doc),
		Params:  params,
	})
	return nil
}

// parseParams consumes a parenthesised parameter list.
func (p *headerParser) parseParams() ([]ir.Param, error) {
	open := p.next()
	start := p.pos
	depth := 1
	for depth > 0 {
		if p.atEnd() {
			return nil, p.unterminated("parameter list", open.line)
		}
		switch t := p.next(); {
		case t.is("("):
			depth++
		case t.is(")"):
			depth--
		}
	}

	var params []ir.Param
	for _, arg := range splitArgs(p.toks[start : p.pos-1]) {
		if param, ok := parseParam(arg); ok {
			params = append(params, param)
		}
	}
	return params, nil
}

var builtinTypeWords = map[string]bool{
	"int": true, "char": true, "short": true, "long": true, "bool": true,
	"float": true, "double": true, "unsigned": true, "signed": true, "void": true,
}

func parseParam(toks []token) (ir.Param, bool) {
	for i, t := range toks {
		if t.is("=") {
			toks = toks[:i]
			break
		}
	}
	if len(toks) == 0 || len(toks) == 1 && toks[0].is("void") {
		return ir.Param{}, false
	}

	var name string
	if last := toks[len(toks)-1]; len(toks) > 1 && last.isIdent() && !builtinTypeWords[last.text] && !last.is("const") {
		name = last.text
		toks = toks[:len(toks)-1]
	}
	return ir.Param{Name: name, Type: cleanType(toks)}, true
}

// cleanType drops qualifiers that do not change the documented type:
// leading const and volatile, trailing references and trailing const.
func cleanType(toks []token) typespec.TypeRef {
	for len(toks) > 0 && (toks[0].is("const") || toks[0].is("volatile")) {
		toks = toks[1:]
	}
	for len(toks) > 0 && (toks[len(toks)-1].is("&") || toks[len(toks)-1].is("const")) {
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 0 {
		return typespec.Unresolved()
	}
	return typespec.Host(renderTokens(toks))
}

func (p *headerParser) parseEnum(owner string) (ir.Enum, bool, error) {
	kw := p.next()
	if p.peek().is("class") || p.peek().is("struct") {
		p.next()
	}

	var name string
	if p.peek().isIdent() {
		name = p.next().text
	}
	if p.accept(":") {
		for !p.atEnd() && !p.peek().is("{") && !p.peek().is(";") {
			p.next()
		}
	}
	if !p.peek().is("{") {
		return ir.Enum{}, false, p.skipDeclaration()
	}
	p.next()

	e := ir.Enum{
		Namespace: owner,
		Name:      name,
		QMLName:   name,
		Comment:   p.comment(kw.doc),
		Evidence:  p.evidence(kw),
	}

	for {
		if p.atEnd() {
			return e, false, p.unterminated("enum "+name, kw.line)
		}
		t := p.peek()
		if t.is("}") {
			p.next()
			break
		}
		p.next()
		if !t.isIdent() {
			continue
		}

		e.Variants = append(e.Variants, ir.Variant{Name: t.text, Comment: p.comment(t.doc)})

		depth := 0
		for !p.atEnd() {
			u := p.peek()
			if depth == 0 && (u.is(",") || u.is("}")) {
				break
			}
			switch {
			case u.is("(") || u.is("[") || u.is("{"):
				depth++
			case u.is(")") || u.is("]") || u.is("}"):
				depth--
			}
			p.next()
		}
	}

	return e, name != "", p.skipDeclaration()
}

// skipDeclaration consumes up to and including the next `;`, or a braced
// body, without leaving the enclosing block.
func (p *headerParser) skipDeclaration() error {
	for !p.atEnd() {
		t := p.peek()
		switch {
		case t.is(";"):
			p.next()
			return nil
		case t.is("}"):
			return nil
		case t.is("{"):
			if err := p.skipBalanced(); err != nil {
				return err
			}
			p.accept(";")
			return nil
		case t.is("(") || t.is("["):
			if err := p.skipBalanced(); err != nil {
				return err
			}
		default:
			p.next()
		}
	}
	return nil
}

func (p *headerParser) skipBalanced() error {
	open := p.next()
	depth := 1
	for depth > 0 {
		if p.atEnd() {
			return p.unterminated("block opened by "+open.text, open.line)
		}
		switch t := p.next(); {
		case t.is("(") || t.is("[") || t.is("{"):
			depth++
		case t.is(")") || t.is("]") || t.is("}"):
			depth--
		}
	}
	return nil
}

func (p *headerParser) skipAngles() {
	depth := 0
	for !p.atEnd() {
		t := p.peek()
		switch {
		case t.is(";") || t.is("{"):
			return
		case t.is("<"):
			depth++
		case t.is(">"):
			depth--
		case t.is("("):
			if p.skipBalanced() != nil {
				return
			}
			continue
		}
		p.next()
		if depth == 0 {
			return
		}
	}
}

// splitArgs splits a token run on commas outside of any brackets.
func splitArgs(toks []token) [][]token {
	if len(toks) == 0 {
		return nil
	}

	var out [][]token
	depth := 0
	start := 0
	for i, t := range toks {
		switch {
		case t.is("(") || t.is("[") || t.is("{") || t.is("<"):
			depth++
		case t.is(")") || t.is("]") || t.is("}") || t.is(">"):
			if depth > 0 {
				depth--
			}
		case t.is(",") && depth == 0:
			out = append(out, toks[start:i])
			start = i + 1
		}
	}
	return append(out, toks[start:])
}

func isMacroName(s string) bool {
	for _, prefix := range []string{"QSDOC_", "QML_", "Q_"} {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		rest := s[len(prefix):]
		if rest == "" {
			return false
		}
		for _, c := range rest {
			if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
				return false
			}
		}
		return true
	}
	return false
}
