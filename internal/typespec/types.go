package typespec

// Source tags where a type reference was spelled.
type Source string

const (
	// SourceHost is a C++ spelling such as `QList<Foo*>`.
	SourceHost Source = "host"
	// SourceScript is a QML spelling such as `QtQuick.Item`.
	SourceScript Source = "script"
	// SourceUnresolved marks a reference that could not be read at all.
	SourceUnresolved Source = "unresolved"
)

// TypeRef is a tagged, not yet resolved, type reference.
type TypeRef struct {
	Source Source `json:"source"`
	Name   string `json:"name"`
}

func Host(name string) TypeRef   { return TypeRef{Source: SourceHost, Name: name} }
func Script(name string) TypeRef { return TypeRef{Source: SourceScript, Name: name} }
func Unresolved() TypeRef        { return TypeRef{Source: SourceUnresolved} }

// IsZero reports whether the reference names nothing.
func (t TypeRef) IsZero() bool {
	return t.Name == "" || t.Source == SourceUnresolved || t.Source == ""
}

func (t TypeRef) String() string {
	if t.IsZero() {
		return "<unresolved>"
	}
	return string(t.Source) + ":" + t.Name
}

// TypeSpec is the intermediate, mergeable description of one or more modules.
// Cross-module references are by name only.
type TypeSpec struct {
	TypeMap []TypeMapping `json:"typemap"`
	Classes []Class       `json:"classes"`
	Gadgets []Gadget      `json:"gadgets"`
	Enums   []Enum        `json:"enums"`
}

// TypeMapping maps an exposed name to the internal name that implements it.
// An empty module means a type provided by Qt itself.
type TypeMapping struct {
	Name   string `json:"name"`
	CName  string `json:"cname"`
	Module string `json:"module,omitempty"`
}

type Class struct {
	Name        string     `json:"name"`
	Module      string     `json:"module"`
	Description *string    `json:"description"`
	Details     *string    `json:"details"`
	Superclass  TypeRef    `json:"superclass"`
	Singleton   bool       `json:"singleton"`
	Uncreatable bool       `json:"uncreatable"`
	Properties  []Property `json:"properties"`
	Functions   []Function `json:"functions"`
	Signals     []Signal   `json:"signals"`
	Enums       []Enum     `json:"enums"`
}

// Gadget is a plain value type. It has properties only.
type Gadget struct {
	CName      string     `json:"cname"`
	Module     string     `json:"module,omitempty"`
	Properties []Property `json:"properties"`
}

type Property struct {
	Type     TypeRef `json:"type"`
	Name     string  `json:"name"`
	Details  *string `json:"details"`
	Readable bool    `json:"readable"`
	Writable bool    `json:"writable"`
	Default  bool    `json:"default"`
	Required bool    `json:"required,omitempty"`
	Notify   string  `json:"notify,omitempty"`
	// NotifyParams are the parameters of the notify signal, which is not
	// listed with the class signals.
	NotifyParams []Param `json:"notify_params,omitempty"`
}

type Function struct {
	Ret     TypeRef `json:"ret"`
	Name    string  `json:"name"`
	Details *string `json:"details"`
	Params  []Param `json:"params"`
}

type Signal struct {
	Name    string  `json:"name"`
	Details *string `json:"details"`
	Params  []Param `json:"params"`
}

type Param struct {
	Type TypeRef `json:"type"`
	Name string  `json:"name"`
}

type Enum struct {
	Name        string    `json:"name"`
	CName       string    `json:"cname,omitempty"`
	Module      string    `json:"module,omitempty"`
	Description *string   `json:"description"`
	Details     *string   `json:"details"`
	Variants    []Variant `json:"variants"`
}

type Variant struct {
	Name    string  `json:"name"`
	Details *string `json:"details"`
}

// EnumCarrierName is the nested enum name that turns its class into an enum type.
const EnumCarrierName = "Enum"

// CarrierEnum returns the nested enum that makes the class an enumeration.
func (c *Class) CarrierEnum() *Enum {
	for i := range c.Enums {
		if c.Enums[i].Name == EnumCarrierName {
			return &c.Enums[i]
		}
	}
	return nil
}
