package extractor

import (
	"sync"

	"typegen/internal/comment"
	"typegen/internal/ir"
	"typegen/internal/typespec"
)

// Builder accumulates the declarations parsed from one module's files.
// Spec returns a snapshot that no later Add call can change.
type Builder struct {
	module string

	mu      sync.Mutex
	classes []ir.Class
	enums   []ir.Enum
}

// NewBuilder creates an empty builder owned by module.
func NewBuilder(module string) *Builder {
	return &Builder{module: module}
}

func (b *Builder) Module() string {
	return b.module
}

func (b *Builder) AddClass(c ir.Class) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.classes = append(b.classes, c)
}

func (b *Builder) AddEnum(e ir.Enum) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enums = append(b.enums, e)
}

// Classes returns a copy of the raw classes added so far.
func (b *Builder) Classes() []ir.Class {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ir.Class(nil), b.classes...)
}

// Enums returns a copy of the raw top-level enums added so far.
func (b *Builder) Enums() []ir.Enum {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ir.Enum(nil), b.enums...)
}

// Spec converts the accumulated declarations into the intermediate type spec.
// Exposed classes get a typemap entry; classes carrying an enum named Enum
// also map `Class::Enum` to the exposed name. Unexposed gadgets only appear
// in the gadget collection.
func (b *Builder) Spec() typespec.TypeSpec {
	classes := b.Classes()
	enums := b.Enums()

	spec := typespec.TypeSpec{
		TypeMap: []typespec.TypeMapping{},
		Classes: []typespec.Class{},
		Gadgets: []typespec.Gadget{},
		Enums:   []typespec.Enum{},
	}

	for i := range classes {
		c := &classes[i]

		if c.Exposed() {
			spec.TypeMap = append(spec.TypeMap, typespec.TypeMapping{
				Name:   c.QMLName,
				CName:  c.Name,
				Module: b.module,
			})
			for _, e := range c.Enums {
				if e.Name == typespec.EnumCarrierName {
					spec.TypeMap = append(spec.TypeMap, typespec.TypeMapping{
						Name:   c.QMLName,
						CName:  e.CName(),
						Module: b.module,
					})
				}
			}
		}

		if c.Kind == ir.KindGadget {
			spec.Gadgets = append(spec.Gadgets, b.gadget(c))
			if !c.Exposed() {
				continue
			}
		}
		spec.Classes = append(spec.Classes, b.class(c))
	}

	for i := range enums {
		spec.Enums = append(spec.Enums, b.enum(&enums[i]))
	}
	return spec
}

func (b *Builder) class(c *ir.Class) typespec.Class {
	desc, details := descriptionDetails(c.Comment)

	super := c.Superclass
	if super.IsZero() {
		super = typespec.Unresolved()
	}

	out := typespec.Class{
		Name:        c.Name,
		Module:      b.module,
		Description: desc,
		Details:     details,
		Superclass:  super,
		Singleton:   c.Singleton,
		Uncreatable: c.Uncreatable,
		Properties:  []typespec.Property{},
		Functions:   []typespec.Function{},
		Signals:     []typespec.Signal{},
		Enums:       []typespec.Enum{},
	}

	for _, p := range c.Properties {
		out.Properties = append(out.Properties, property(p))
	}
	for _, f := range c.Invokables {
		out.Functions = append(out.Functions, typespec.Function{
			Ret:     f.Ret,
			Name:    f.Name,
			Details: commentDetails(f.Comment),
			Params:  params(f.Params),
		})
	}
	for _, s := range c.Signals {
		out.Signals = append(out.Signals, typespec.Signal{
			Name:    s.Name,
			Details: commentDetails(s.Comment),
			Params:  params(s.Params),
		})
	}
	for i := range c.Enums {
		out.Enums = append(out.Enums, b.enum(&c.Enums[i]))
	}
	return out
}

func (b *Builder) gadget(c *ir.Class) typespec.Gadget {
	g := typespec.Gadget{
		CName:      c.Name,
		Module:     b.module,
		Properties: []typespec.Property{},
	}
	for _, p := range c.Properties {
		g.Properties = append(g.Properties, property(p))
	}
	return g
}

func (b *Builder) enum(e *ir.Enum) typespec.Enum {
	desc, details := descriptionDetails(e.Comment)

	out := typespec.Enum{
		Name:        e.QMLName,
		CName:       e.CName(),
		Module:      b.module,
		Description: desc,
		Details:     details,
		Variants:    []typespec.Variant{},
	}
	for _, v := range e.Variants {
		out.Variants = append(out.Variants, typespec.Variant{
			Name:    v.Name,
			Details: commentDetails(v.Comment),
		})
	}
	return out
}

func property(p ir.Property) typespec.Property {
	return typespec.Property{
		Type:         p.Type,
		Name:         p.Name,
		Details:      commentDetails(p.Comment),
		Readable:     p.Readable,
		Writable:     p.Writable,
		Default:      p.Default,
		Required:     p.Required,
		Notify:       p.Notify,
		NotifyParams: notifyParams(p.NotifyParams),
	}
}

func notifyParams(in []ir.Param) []typespec.Param {
	if len(in) == 0 {
		return nil
	}
	return params(in)
}

func params(in []ir.Param) []typespec.Param {
	out := []typespec.Param{}
	for _, p := range in {
		out = append(out, typespec.Param{Type: p.Type, Name: p.Name})
	}
	return out
}

func descriptionDetails(c *ir.Comment) (*string, *string) {
	if c == nil {
		return nil, nil
	}
	return comment.DescriptionDetails(c.Text, c.Module)
}

func commentDetails(c *ir.Comment) *string {
	if c == nil {
		return nil
	}
	text := comment.Details(c.Text, c.Module)
	if text == "" {
		return nil
	}
	return &text
}
