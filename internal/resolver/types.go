package resolver

import (
	"encoding/json"
	"fmt"
)

type TypeSource string

const (
	SourceLocal   TypeSource = "local"
	SourceQt      TypeSource = "qt"
	SourceUnknown TypeSource = "unknown"
)

// Type is a fully resolved type reference. Of is the element type of a
// container and is kept even when the container itself is unknown.
type Type struct {
	Source TypeSource `json:"type" yaml:"type"`
	Module string     `json:"module,omitempty" yaml:"module,omitempty"`
	Name   string     `json:"name,omitempty" yaml:"name,omitempty"`
	Of     *Type      `json:"of,omitempty" yaml:"of,omitempty"`
}

func Unknown() Type {
	return Type{Source: SourceUnknown}
}

func (t Type) IsUnknown() bool {
	return t.Source == SourceUnknown
}

type Flag string

const (
	FlagDefault     Flag = "default"
	FlagRequired    Flag = "required"
	FlagReadonly    Flag = "readonly"
	FlagWriteonly   Flag = "writeonly"
	FlagSingleton   Flag = "singleton"
	FlagUncreatable Flag = "uncreatable"
	FlagEnum        Flag = "enum"
)

// PropertyType is either a type reference or an inline gadget: a map from
// gadget property names to their types.
type PropertyType struct {
	Type   *Type
	Gadget map[string]PropertyType
}

func (p PropertyType) value() interface{} {
	if p.Gadget != nil {
		return map[string]interface{}{"gadget": p.Gadget}
	}
	if p.Type == nil {
		return Unknown()
	}
	return p.Type
}

func (p PropertyType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value())
}

func (p PropertyType) MarshalYAML() (interface{}, error) {
	return p.value(), nil
}

type Property struct {
	Type    PropertyType `json:"type" yaml:"type"`
	Details *string      `json:"details" yaml:"details"`
	Flags   []Flag       `json:"flags,omitempty" yaml:"flags,omitempty"`
}

type Function struct {
	Ret     Type        `json:"ret" yaml:"ret"`
	Name    string      `json:"name" yaml:"name"`
	ID      string      `json:"id" yaml:"id"`
	Details *string     `json:"details" yaml:"details"`
	Params  []Parameter `json:"params" yaml:"params"`
}

type Signal struct {
	Name    string      `json:"name" yaml:"name"`
	Details *string     `json:"details" yaml:"details"`
	Params  []Parameter `json:"params" yaml:"params"`
	// Notify names the property a change signal belongs to.
	Notify string `json:"notify,omitempty" yaml:"notify,omitempty"`
}

type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
}

type Variant struct {
	Details *string `json:"details" yaml:"details"`
}

type ClassInfo struct {
	Super       Type                `json:"super" yaml:"super"`
	Description *string             `json:"description" yaml:"description"`
	Details     *string             `json:"details" yaml:"details"`
	Flags       []Flag              `json:"flags,omitempty" yaml:"flags,omitempty"`
	Properties  map[string]Property `json:"properties" yaml:"properties"`
	Functions   []Function          `json:"functions" yaml:"functions"`
	Signals     map[string]Signal   `json:"signals" yaml:"signals"`
	Variants    map[string]Variant  `json:"variants" yaml:"variants"`
}

type EnumInfo struct {
	Description *string            `json:"description" yaml:"description"`
	Details     *string            `json:"details" yaml:"details"`
	Variants    map[string]Variant `json:"variants" yaml:"variants"`
}

// Document is the final record of one exposed type. Exactly one of Class
// and Enum is set.
type Document struct {
	Name   string
	Module string
	Class  *ClassInfo
	Enum   *EnumInfo
}

type classDocument struct {
	Name      string `json:"name" yaml:"name"`
	Module    string `json:"module" yaml:"module"`
	Type      string `json:"type" yaml:"type"`
	ClassInfo `yaml:",inline"`
}

type enumDocument struct {
	Name     string `json:"name" yaml:"name"`
	Module   string `json:"module" yaml:"module"`
	Type     string `json:"type" yaml:"type"`
	EnumInfo `yaml:",inline"`
}

func (d Document) value() (interface{}, error) {
	switch {
	case d.Class != nil:
		return classDocument{Name: d.Name, Module: d.Module, Type: "class", ClassInfo: *d.Class}, nil
	case d.Enum != nil:
		return enumDocument{Name: d.Name, Module: d.Module, Type: "enum", EnumInfo: *d.Enum}, nil
	default:
		return nil, fmt.Errorf("document %s has neither class nor enum data", d.Name)
	}
}

func (d Document) MarshalJSON() ([]byte, error) {
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (d Document) MarshalYAML() (interface{}, error) {
	return d.value()
}
