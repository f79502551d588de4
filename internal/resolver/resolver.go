package resolver

import (
	"fmt"
	"sort"
	"strings"

	"typegen/internal/graph"
	"typegen/internal/typespec"
)

// qmlBasicTypes are value types every QML engine provides.
var qmlBasicTypes = map[string]bool{
	"bool": true, "int": true, "real": true, "double": true, "string": true,
	"url": true, "color": true, "var": true, "variant": true, "list": true,
	"date": true, "point": true, "size": true, "rect": true, "font": true,
	"matrix4x4": true, "quaternion": true, "vector2d": true, "vector3d": true,
	"vector4d": true, "enumeration": true, "void": true,
}

// Diagnostic describes a reference that resolved to the unknown type.
type Diagnostic struct {
	Type    string `json:"type"`
	Member  string `json:"member,omitempty"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type Stats struct {
	Classes    int
	Enums      int
	Properties int
	Functions  int
	Signals    int
	Unknown    int
}

type Result struct {
	// Types maps exposed names to their documents.
	Types       map[string]Document
	Diagnostics []Diagnostic
	Stats       Stats
	Stages      []StageResult
	// Unresolved counts the module's classes per superclass name that no
	// stage could link.
	Unresolved map[string]int
}

// Resolve produces the final documents of every type module owns in the
// merged spec. Unresolvable references become unknown types and diagnostics;
// they never fail the call.
func Resolve(module string, spec typespec.TypeSpec) Result {
	g := graph.New(spec)
	r := &resolver{
		module: module,
		graph:  g,
		ix:     g.Index,
		result: Result{Types: make(map[string]Document)},
	}
	r.result.Stages = NewDefaultChain().Run(g)
	r.result.Unresolved = g.MissingSuperclasses(module)

	for _, m := range spec.TypeMap {
		if m.Module != module {
			continue
		}
		class, ok := r.ix.ClassIn(module, m.CName)
		if !ok || class.Name != m.CName {
			continue
		}
		r.add(m.Name, Document{Name: m.Name, Module: module, Class: r.class(m.Name, class)})
		r.result.Stats.Classes++
	}

	for i := range spec.Enums {
		e := &spec.Enums[i]
		if e.Module != module {
			continue
		}
		r.add(e.Name, Document{Name: e.Name, Module: module, Enum: &EnumInfo{
			Description: e.Description,
			Details:     e.Details,
			Variants:    variants(e),
		}})
		r.result.Stats.Enums++
	}

	return r.result
}

type resolver struct {
	module string
	graph  *graph.Graph
	ix     *graph.Index
	result Result
}

func (r *resolver) add(name string, doc Document) {
	if _, dup := r.result.Types[name]; dup {
		r.diag(name, "", "duplicate", fmt.Sprintf("type %s is defined more than once, keeping the first", name))
		return
	}
	r.result.Types[name] = doc
}

func (r *resolver) diag(typ, member, reason, msg string) {
	r.result.Diagnostics = append(r.result.Diagnostics, Diagnostic{
		Type:    typ,
		Member:  member,
		Reason:  reason,
		Message: msg,
	})
}

func (r *resolver) class(name string, class *typespec.Class) *ClassInfo {
	walk := r.graph.Walk(graph.NodeID(class.Module, class.Name))

	info := &ClassInfo{
		Super:       Unknown(),
		Description: class.Description,
		Details:     class.Details,
		Properties:  make(map[string]Property),
		Functions:   []Function{},
		Signals:     make(map[string]Signal),
		Variants:    make(map[string]Variant),
	}

	switch {
	case walk.Super != nil:
		info.Super = resolveType(walk.Super.Module, walk.Super.Name)
	case walk.Broken != nil && walk.Broken.Reason == graph.ReasonCycle:
		r.diag(name, "", string(graph.ReasonCycle),
			fmt.Sprintf("superclass chain of %s loops back to %s", class.Name, walk.Broken.Target.Name))
	case walk.Broken != nil:
		r.diag(name, "", string(walk.Broken.Reason),
			fmt.Sprintf("superclass %s of %s could not be found", walk.Broken.Target.Name, walk.Broken.From))
	}

	chain := append([]*typespec.Class{class}, walk.Absorbed...)

	props := make(map[string]typespec.Property)
	var propNames []string
	funcs := make(map[string]bool)
	var functions []typespec.Function
	signals := make(map[string]typespec.Signal)

	// closest declaration wins
	for _, c := range chain {
		for _, p := range c.Properties {
			if _, seen := props[p.Name]; !seen {
				props[p.Name] = p
				propNames = append(propNames, p.Name)
			}
		}
		for _, f := range c.Functions {
			if key := functionKey(f); !funcs[key] {
				funcs[key] = true
				functions = append(functions, f)
			}
		}
		for _, s := range c.Signals {
			if _, seen := signals[s.Name]; !seen {
				signals[s.Name] = s
			}
		}
	}
	sort.Strings(propNames)

	for _, pn := range propNames {
		info.Properties[pn] = r.property(name, props[pn])
	}
	for _, f := range functions {
		info.Functions = append(info.Functions, r.function(name, f))
	}
	sort.SliceStable(info.Functions, func(i, j int) bool {
		a, b := info.Functions[i], info.Functions[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	signalNames := make([]string, 0, len(signals))
	for sn := range signals {
		signalNames = append(signalNames, sn)
	}
	sort.Strings(signalNames)
	for _, sn := range signalNames {
		s := signals[sn]
		info.Signals[sn] = Signal{
			Name:    s.Name,
			Details: s.Details,
			Params:  r.params(name, s.Name, s.Params),
		}
	}

	// change signals are documented on their property
	for _, pn := range propNames {
		notify := props[pn].Notify
		if _, ok := info.Signals[notify]; notify == "" || ok {
			continue
		}
		info.Signals[notify] = Signal{
			Name:   notify,
			Params: r.params(name, notify, props[pn].NotifyParams),
			Notify: pn,
		}
	}

	r.result.Stats.Properties += len(info.Properties)
	r.result.Stats.Functions += len(info.Functions)
	r.result.Stats.Signals += len(info.Signals)

	if carrier := class.CarrierEnum(); carrier != nil {
		info.Variants = variants(carrier)
		info.Flags = []Flag{FlagEnum}
	} else if class.Singleton {
		info.Flags = []Flag{FlagSingleton}
	} else if class.Uncreatable {
		info.Flags = []Flag{FlagUncreatable}
	}

	return info
}

func (r *resolver) property(typeName string, p typespec.Property) Property {
	var flags []Flag
	if p.Default {
		flags = append(flags, FlagDefault)
	}
	if p.Required {
		flags = append(flags, FlagRequired)
	}
	if !p.Readable {
		flags = append(flags, FlagWriteonly)
	} else if !p.Writable {
		flags = append(flags, FlagReadonly)
	}

	pt := r.propertyType(p.Type, map[string]bool{})
	if pt.Type != nil && pt.Type.IsUnknown() {
		r.unknown(typeName, p.Name, p.Type)
	}

	return Property{Type: pt, Details: p.Details, Flags: flags}
}

// propertyType inlines gadgets; a gadget reached again while it is being
// expanded resolves to the unknown type.
func (r *resolver) propertyType(ref typespec.TypeRef, expanding map[string]bool) PropertyType {
	if ref.Source == typespec.SourceHost {
		if g, ok := r.ix.Gadget(cleanName(ref.Name)); ok {
			key := g.Module + "/" + g.CName
			if expanding[key] {
				t := Unknown()
				return PropertyType{Type: &t}
			}
			expanding[key] = true
			defer delete(expanding, key)

			fields := make(map[string]PropertyType, len(g.Properties))
			for _, p := range g.Properties {
				fields[p.Name] = r.propertyType(p.Type, expanding)
			}
			return PropertyType{Gadget: fields}
		}
	}

	t := r.resolveRef(ref)
	return PropertyType{Type: &t}
}

func (r *resolver) function(typeName string, f typespec.Function) Function {
	ret := r.resolveRef(f.Ret)
	if ret.IsUnknown() {
		r.unknown(typeName, f.Name, f.Ret)
	}

	params := r.params(typeName, f.Name, f.Params)
	parts := make([]string, 0, len(params))
	for i, p := range params {
		if p.Type.IsUnknown() {
			parts = append(parts, cleanName(f.Params[i].Type.Name))
		} else {
			parts = append(parts, p.Type.Name)
		}
	}

	return Function{
		Ret:     ret,
		Name:    f.Name,
		ID:      f.Name + "(" + strings.Join(parts, "_") + ")",
		Details: f.Details,
		Params:  params,
	}
}

func (r *resolver) params(typeName, member string, in []typespec.Param) []Parameter {
	out := make([]Parameter, 0, len(in))
	for _, p := range in {
		t := r.resolveRef(p.Type)
		if t.IsUnknown() {
			r.unknown(typeName, member, p.Type)
		}
		out = append(out, Parameter{Name: p.Name, Type: t})
	}
	return out
}

func (r *resolver) unknown(typeName, member string, ref typespec.TypeRef) {
	r.result.Stats.Unknown++
	r.diag(typeName, member, "unknown_type", fmt.Sprintf("type %s could not be resolved", ref))
}

func (r *resolver) resolveRef(ref typespec.TypeRef) Type {
	switch ref.Source {
	case typespec.SourceHost:
		return r.resolveHost(ref.Name)
	case typespec.SourceScript:
		return r.resolveScript(ref.Name)
	default:
		return Unknown()
	}
}

func (r *resolver) resolveHost(name string) Type {
	name = cleanName(name)
	if outer, inner, ok := splitGeneric(name); ok {
		t := r.resolveHostName(outer)
		of := r.resolveHost(inner)
		t.Of = &of
		return t
	}
	return r.resolveHostName(name)
}

func (r *resolver) resolveHostName(name string) Type {
	if m, ok := r.ix.Mapping(name); ok {
		return resolveType(m.Module, m.Name)
	}
	if e, ok := r.ix.Enum(name); ok {
		return resolveType(e.Module, e.Name)
	}
	return Unknown()
}

func (r *resolver) resolveScript(name string) Type {
	name = strings.TrimSpace(name)
	if outer, inner, ok := splitGeneric(name); ok {
		t := r.resolveScript(outer)
		of := r.resolveScript(inner)
		t.Of = &of
		return t
	}

	if m, ok := r.ix.Exposed(name); ok {
		return resolveType(m.Module, m.Name)
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		return Type{Source: SourceQt, Module: foreignModule(name[:i]), Name: name[i+1:]}
	}
	if qmlBasicTypes[name] {
		return Type{Source: SourceQt, Module: typespec.QtModule, Name: name}
	}
	return Unknown()
}

// resolveType tags a type by its owning module: Qt modules are foreign,
// everything else is documented locally.
func resolveType(module, name string) Type {
	switch {
	case module == "":
		return Type{Source: SourceQt, Module: typespec.QtModule, Name: name}
	case typespec.IsQtModule(module):
		return Type{Source: SourceQt, Module: module, Name: name}
	default:
		return Type{Source: SourceLocal, Module: module, Name: name}
	}
}

func foreignModule(module string) string {
	if typespec.IsQtModule(module) {
		return module
	}
	return typespec.QtModule + "." + module
}

// cleanName drops const qualifiers and trailing pointer and reference markers.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "const ")
	for {
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimRight(name, "*&"), " const"))
		if trimmed == name {
			return name
		}
		name = trimmed
	}
}

// splitGeneric splits `Outer<Inner>` into its two names.
func splitGeneric(name string) (string, string, bool) {
	open := strings.Index(name, "<")
	if open <= 0 || !strings.HasSuffix(name, ">") {
		return "", "", false
	}
	return strings.TrimSpace(name[:open]), strings.TrimSpace(name[open+1 : len(name)-1]), true
}

func functionKey(f typespec.Function) string {
	parts := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		parts = append(parts, p.Type.Name)
	}
	return f.Name + "(" + strings.Join(parts, ",") + ")"
}

func variants(e *typespec.Enum) map[string]Variant {
	out := make(map[string]Variant, len(e.Variants))
	for _, v := range e.Variants {
		out[v.Name] = Variant{Details: v.Details}
	}
	return out
}
