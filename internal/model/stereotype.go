package model

import "strings"

// Stereotype is a recognized semantic marker derived from an annotation.
type Stereotype string

const (
	ReadOnly         Stereotype = "readonly"
	Unique           Stereotype = "unique"
	NonUnique        Stereotype = "nonunique"
	Ordered          Stereotype = "ordered"
	Unordered        Stereotype = "unordered"
	Aggregated       Stereotype = "aggregation"
	Composed         Stereotype = "composition"
	Navigable        Stereotype = "navigable"
	NonNavigable     Stereotype = "nonnavigable"
	Derived          Stereotype = "derived"
	AssociationClass Stereotype = "associationclass"
)

var stereotypes = map[string]Stereotype{
	"readonly":         ReadOnly,
	"unique":           Unique,
	"nonunique":        NonUnique,
	"ordered":          Ordered,
	"unordered":        Unordered,
	"aggregation":      Aggregated,
	"composition":      Composed,
	"navigable":        Navigable,
	"nonnavigable":     NonNavigable,
	"derived":          Derived,
	"associationclass": AssociationClass,
}

// ParseStereotype maps an annotation name to a stereotype. Matching is
// case-insensitive on the simple name, so "@com.acme.Composition(x)" and
// "composition" both resolve. Unrecognized names return false.
func ParseStereotype(name string) (Stereotype, bool) {
	name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "@"))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	s, ok := stereotypes[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// IsFieldTag reports whether s may be attached to a field.
func (s Stereotype) IsFieldTag() bool {
	_, ok := stereotypes[string(s)]
	return ok && s != AssociationClass
}
