package graph

import "typegen/internal/typespec"

type RelationKind string

const (
	// RelationInherits links a class to an internal superclass whose members it absorbs.
	RelationInherits RelationKind = "inherits"
	// RelationExposed links a class to the exposed type that ends its superclass walk.
	RelationExposed RelationKind = "exposed"
)

type UnresolvedReason string

const (
	ReasonNoCandidate UnresolvedReason = "no_candidate"
	ReasonCycle       UnresolvedReason = "cycle"
)

// Symbol is the graph-domain node payload.
type Symbol struct {
	ID         string           `json:"id"`
	Module     string           `json:"module"`
	Name       string           `json:"name"`
	Superclass typespec.TypeRef `json:"superclass"`
}

type Edge struct {
	From string
	// To is the superclass node for RelationInherits.
	To string
	// Target is the exposed type for RelationExposed.
	Target   typespec.TypeMapping
	Kind     RelationKind
	Resolver string
}

type UnresolvedRelation struct {
	From   string
	Target typespec.TypeRef
	Kind   RelationKind
	Reason UnresolvedReason
}
