package graph

import (
	"unicode"
	"unicode/utf8"

	"github.com/phobologic/umlgen/internal/model"
)

// edgeSet accumulates edges in discovery order, keeping the first edge
// seen for each key.
type edgeSet struct {
	seen  map[model.EdgeKey]struct{}
	edges []model.Edge
}

func newEdgeSet() *edgeSet {
	return &edgeSet{seen: make(map[model.EdgeKey]struct{})}
}

func (s *edgeSet) add(e model.Edge) {
	k := e.Key()
	if _, dup := s.seen[k]; dup {
		return
	}
	s.seen[k] = struct{}{}
	s.edges = append(s.edges, e)
}

// Infer derives the relationship edges of the grouped declarations.
// Packages and types are visited in group order, so the result is
// deterministic for a given input.
func Infer(groups []model.PackageGroup, defined DefinedSet) []model.Edge {
	set := newEdgeSet()
	for gi := range groups {
		for ti := range groups[gi].Types {
			td := &groups[gi].Types[ti]
			if td.Kind == model.Enum {
				continue
			}
			inferType(set, td, defined)
		}
	}
	return set.edges
}

// Build groups decls and infers their relationships in one step.
func Build(decls []model.TypeDeclaration, exclude map[string]struct{}) (*model.Diagram, error) {
	groups, defined, err := Group(decls, exclude)
	if err != nil {
		return nil, err
	}
	return &model.Diagram{Packages: groups, Edges: Infer(groups, defined)}, nil
}

func inferType(set *edgeSet, td *model.TypeDeclaration, defined DefinedSet) {
	assoc := td.IsAssociationClass()

	if !assoc {
		for i := range td.Fields {
			if e, ok := fieldEdge(td.Name, &td.Fields[i], defined); ok {
				set.add(e)
			}
		}
	}

	for i := range td.Methods {
		for _, p := range td.Methods[i].Params {
			if p.Type == td.Name || IsBuiltin(p.Type) || !defined.Has(p.Type) {
				continue
			}
			set.add(model.Edge{Source: td.Name, Target: p.Type, Kind: model.Dependency, Label: "uses"})
		}
	}

	if assoc {
		associationClassEdges(set, td, defined)
		return
	}

	for _, parent := range td.Extends {
		set.add(model.Edge{Source: parent, Target: td.Name, Kind: model.Inheritance})
	}
	for _, iface := range td.Implements {
		set.add(model.Edge{Source: iface, Target: td.Name, Kind: model.Implementation})
	}
}

// fieldEdge returns the association implied by a field, if any.
func fieldEdge(owner string, f *model.Field, defined DefinedSet) (model.Edge, bool) {
	var target, mult string
	switch {
	case f.Collection:
		target, mult = f.Element, model.Many
	case !IsBuiltin(f.Type) && upperInitial(f.Type):
		target, mult = f.Type, model.One
	}
	if target == "" || IsBuiltin(target) || !defined.Has(target) {
		return model.Edge{}, false
	}

	kind := model.Association
	switch {
	case f.HasTag(model.Composed):
		kind = model.Composition
	case f.HasTag(model.Aggregated):
		kind = model.Aggregation
	}

	return model.Edge{
		Source:     owner,
		Target:     target,
		Kind:       kind,
		SourceMult: model.One,
		TargetMult: mult,
		Label:      f.Name,
	}, true
}

// associationClassEdges links the two endpoint types of an association
// class. Any endpoint count other than two yields no edges.
func associationClassEdges(set *edgeSet, td *model.TypeDeclaration, defined DefinedSet) {
	var endpoints []string
	seen := make(map[string]struct{})
	for i := range td.Fields {
		f := &td.Fields[i]
		if f.Collection || IsBuiltin(f.Type) || !defined.Has(f.Type) {
			continue
		}
		if _, dup := seen[f.Type]; dup {
			continue
		}
		seen[f.Type] = struct{}{}
		endpoints = append(endpoints, f.Type)
	}
	if len(endpoints) != 2 {
		return
	}

	a, b := endpoints[0], endpoints[1]
	set.add(model.Edge{
		Source:     a,
		Target:     b,
		Kind:       model.Association,
		SourceMult: model.One,
		TargetMult: model.One,
		Label:      "association",
		Undirected: true,
	})
	set.add(model.Edge{Source: td.Name, Target: a, Kind: model.Dependency, Label: "association"})
	set.add(model.Edge{Source: td.Name, Target: b, Kind: model.Dependency, Label: "association"})
}

func upperInitial(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
