// Package graph groups type declarations by package and infers the
// relationships drawn between them.
package graph

import (
	"sort"

	"github.com/phobologic/umlgen/internal/model"
)

// DefinedSet holds the simple names of every type taking part in a run.
// Only references to names in the set become edges.
type DefinedSet map[string]struct{}

// Has reports whether name is a defined type.
func (s DefinedSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Group buckets decls by package, dropping any type whose name is in
// exclude. Packages are sorted by name, so the default package comes
// first; within a package the input order is kept. The first malformed
// declaration aborts grouping.
func Group(decls []model.TypeDeclaration, exclude map[string]struct{}) ([]model.PackageGroup, DefinedSet, error) {
	defined := make(DefinedSet)
	index := make(map[string]int)
	var groups []model.PackageGroup

	for i := range decls {
		td := &decls[i]
		if err := validate(td); err != nil {
			return nil, nil, err
		}
		if _, skip := exclude[td.Name]; skip {
			continue
		}
		defined[td.Name] = struct{}{}

		gi, ok := index[td.Package]
		if !ok {
			gi = len(groups)
			index[td.Package] = gi
			groups = append(groups, model.PackageGroup{Name: td.Package})
		}
		groups[gi].Types = append(groups[gi].Types, *td)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})

	return groups, defined, nil
}

func validate(td *model.TypeDeclaration) error {
	malformed := func(member, reason string) error {
		return &model.MalformedError{File: td.File, Type: td.Name, Member: member, Reason: reason}
	}

	if td.Name == "" {
		return malformed("", "type has no name")
	}
	switch td.Kind {
	case model.Class, model.Interface, model.Enum:
	default:
		return malformed("", "unknown kind "+string(td.Kind))
	}
	for i := range td.Fields {
		f := &td.Fields[i]
		if f.Name == "" {
			return malformed("", "field has no name")
		}
		if f.Type == "" {
			return malformed(f.Name, "field has no type")
		}
	}
	for i := range td.Constructors {
		if err := validateParams(td.Constructors[i].Params, td.Constructors[i].Name, malformed); err != nil {
			return err
		}
	}
	for i := range td.Methods {
		m := &td.Methods[i]
		if m.Name == "" {
			return malformed("", "method has no name")
		}
		if err := validateParams(m.Params, m.Name, malformed); err != nil {
			return err
		}
	}
	return nil
}

func validateParams(params []model.Param, member string, malformed func(string, string) error) error {
	for _, p := range params {
		if p.Type == "" {
			return malformed(member, "parameter "+p.Name+" has no type")
		}
	}
	return nil
}
