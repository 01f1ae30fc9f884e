// Package model defines core data structures for umlgen.
package model

// Kind is the declaration kind of a type.
type Kind string

const (
	Class     Kind = "class"
	Interface Kind = "interface"
	Enum      Kind = "enum"
)

// Visibility is the access level of a member.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
	Package   Visibility = "package"
)

// Param is a single constructor or method parameter. For a varargs
// parameter Type holds the element type and Varargs is set.
type Param struct {
	Name    string
	Type    string
	Varargs bool
}

// Field is a declared attribute of a type. One Field is produced per
// declarator, so `int a, b;` yields two fields.
type Field struct {
	Name       string
	Type       string
	Collection bool   // the declared type is a recognized collection shape
	Element    string // element type when Collection is set; may be empty for raw collections
	Visibility Visibility
	Static     bool
	Final      bool
	Tags       []Stereotype
}

// HasTag reports whether the field carries the stereotype s.
func (f *Field) HasTag(s Stereotype) bool {
	for _, t := range f.Tags {
		if t == s {
			return true
		}
	}
	return false
}

// Constructor is a declared constructor.
type Constructor struct {
	Name       string
	Visibility Visibility
	Params     []Param
}

// Method is a declared method.
type Method struct {
	Name       string
	Visibility Visibility
	Static     bool
	Final      bool
	Abstract   bool
	Params     []Param
	Return     string
}

// TypeDeclaration is a class, interface or enum read from source.
// It is built once per run and never mutated afterwards.
type TypeDeclaration struct {
	Kind         Kind
	Name         string
	Package      string
	File         string
	Abstract     bool
	Extends      []string
	Implements   []string
	Fields       []Field
	Constructors []Constructor
	Methods      []Method
	Tags         []Stereotype
	Constants    []string
}

// IsAssociationClass reports whether the type reifies a binary association.
func (td *TypeDeclaration) IsAssociationClass() bool {
	for _, t := range td.Tags {
		if t == AssociationClass {
			return true
		}
	}
	return false
}

// EdgeKind is the relationship kind of a diagram edge.
type EdgeKind string

const (
	Inheritance    EdgeKind = "inheritance"
	Implementation EdgeKind = "implementation"
	Association    EdgeKind = "association"
	Aggregation    EdgeKind = "aggregation"
	Composition    EdgeKind = "composition"
	Dependency     EdgeKind = "dependency"
)

// Multiplicities used on association ends.
const (
	One  = "1"
	Many = "0..*"
)

// Edge is a relationship between two types, referenced by simple name.
type Edge struct {
	Source     string
	Target     string
	Kind       EdgeKind
	SourceMult string
	TargetMult string
	Label      string

	// Undirected marks the association drawn between the two endpoints
	// of an association class; it has no navigability arrow.
	Undirected bool
}

// EdgeKey identifies an edge for deduplication.
type EdgeKey struct {
	Source string
	Target string
	Kind   EdgeKind
	Label  string
}

// Key returns the deduplication key of the edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Kind: e.Kind, Label: e.Label}
}

// PackageGroup holds the declarations of one package in input order.
// Name is empty for the default package.
type PackageGroup struct {
	Name  string
	Types []TypeDeclaration
}

// Diagram is the complete inferred diagram, ready for encoding.
type Diagram struct {
	Packages []PackageGroup
	Edges    []Edge
}

// TypeCount returns the number of types across all packages.
func (d *Diagram) TypeCount() int {
	n := 0
	for i := range d.Packages {
		n += len(d.Packages[i].Types)
	}
	return n
}
