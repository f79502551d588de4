package ir

import "typegen/internal/typespec"

// Evidence describes where a declaration originated in source code.
type Evidence struct {
	Filepath  string `json:"filepath"`
	StartLine int    `json:"start_line"`
}

// Comment is a raw, unprocessed doc comment block and the module that owns it.
type Comment struct {
	Text   string
	Module string
}

// ClassKind distinguishes reference types from plain value types.
type ClassKind int

const (
	KindUnclassified ClassKind = iota
	KindObject
	KindGadget
)

func (k ClassKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindGadget:
		return "gadget"
	default:
		return "unclassified"
	}
}

// Class is parser-level class data before merging and resolution.
type Class struct {
	Kind        ClassKind
	Name        string
	QMLName     string
	Superclass  typespec.TypeRef
	Singleton   bool
	Uncreatable bool
	Comment     *Comment
	Properties  []Property
	Invokables  []Invokable
	Signals     []Signal
	Enums       []Enum
	Evidence    Evidence
}

// Exposed reports whether the class is visible to QML under a public name.
func (c *Class) Exposed() bool {
	return c.QMLName != ""
}

type Property struct {
	Type     typespec.TypeRef
	Name     string
	Comment  *Comment
	Readable bool
	Writable bool
	Default  bool
	Required bool
	Notify   string
	// NotifyParams are the parameters of the notify signal declaration.
	NotifyParams []Param
}

type Invokable struct {
	Name    string
	Ret     typespec.TypeRef
	Comment *Comment
	Params  []Param
}

type Signal struct {
	Name    string
	Comment *Comment
	Params  []Param
}

type Param struct {
	Name string
	Type typespec.TypeRef
}

// Enum is an enumeration owned by a namespace or class.
type Enum struct {
	Namespace string
	Name      string
	QMLName   string
	Comment   *Comment
	Variants  []Variant
	Evidence  Evidence
}

// CName is the qualified C++ name of the enum.
func (e *Enum) CName() string {
	if e.Namespace == "" {
		return e.Name
	}
	return e.Namespace + "::" + e.Name
}

type Variant struct {
	Name    string
	Comment *Comment
}
