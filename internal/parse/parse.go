// Package parse reads Java type declarations from source files using tree-sitter.
package parse

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/umlgen/internal/lang"
	"github.com/phobologic/umlgen/internal/model"
)

// collectionTypes is the closed set of generic containers whose first type
// argument is treated as the element of a to-many association.
var collectionTypes = map[string]struct{}{
	"List":       {},
	"Set":        {},
	"Collection": {},
	"ArrayList":  {},
	"LinkedList": {},
	"HashSet":    {},
}

var (
	commaRe = regexp.MustCompile(`\s*,\s*`)
	openRe  = regexp.MustCompile(`\s*<\s*`)
	closeRe = regexp.MustCompile(`\s*>`)
)

// Declarations parses a Java source file and returns its top-level type
// declarations in source order. The parser must be created for Java.
// filePath is recorded on each declaration and used in error messages.
func Declarations(parser *sitter.Parser, source []byte, filePath string) ([]model.TypeDeclaration, error) {
	if len(source) == 0 {
		return nil, nil
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &model.MalformedError{File: filePath, Reason: syntaxErrorReason(root)}
	}

	r := &reader{source: source, file: filePath}

	var decls []model.TypeDeclaration
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "package_declaration" {
			r.pkg = r.packageName(child)
			continue
		}
		kind, ok := lang.Java.DeclaredKind(child.Type())
		if !ok {
			continue
		}
		td, err := r.typeDeclaration(child, kind)
		if err != nil {
			return nil, err
		}
		decls = append(decls, td)
	}

	return decls, nil
}

type reader struct {
	source []byte
	file   string
	pkg    string
}

func (r *reader) text(n *sitter.Node) string {
	return lang.NodeText(n, r.source)
}

func (r *reader) packageName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "scoped_identifier" || child.Type() == "identifier" {
			return lang.CollapseWhitespace(r.text(child))
		}
	}
	return ""
}

func (r *reader) typeDeclaration(n *sitter.Node, kind model.Kind) (model.TypeDeclaration, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return model.TypeDeclaration{}, &model.MalformedError{File: r.file, Reason: "type declaration without a name"}
	}

	td := model.TypeDeclaration{
		Kind:    kind,
		Name:    r.text(nameNode),
		Package: r.pkg,
		File:    r.file,
	}

	mods := r.modifiers(n)
	td.Abstract = mods.has("abstract")
	for _, s := range mods.tags {
		if !containsTag(td.Tags, s) {
			td.Tags = append(td.Tags, s)
		}
	}

	switch kind {
	case model.Class:
		if sc := n.ChildByFieldName("superclass"); sc != nil {
			td.Extends = r.typeNames(sc)
		}
		if si := n.ChildByFieldName("interfaces"); si != nil {
			td.Implements = r.typeNames(si)
		}
	case model.Interface:
		if ext := childOfType(n, "extends_interfaces"); ext != nil {
			td.Extends = r.typeNames(ext)
		}
	case model.Enum:
		if si := n.ChildByFieldName("interfaces"); si != nil {
			td.Implements = r.typeNames(si)
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return td, nil
	}

	if td.Kind == model.Enum {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			child := body.NamedChild(i)
			if child.Type() != "enum_constant" {
				continue
			}
			if cn := child.ChildByFieldName("name"); cn != nil {
				td.Constants = append(td.Constants, r.text(cn))
			}
		}
		return td, nil
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "field_declaration", "constant_declaration":
			fields, err := r.fields(child, td.Name)
			if err != nil {
				return td, err
			}
			td.Fields = append(td.Fields, fields...)
		case "constructor_declaration":
			c, err := r.constructor(child, td.Name)
			if err != nil {
				return td, err
			}
			td.Constructors = append(td.Constructors, c)
		case "method_declaration":
			m, err := r.method(child, td.Name)
			if err != nil {
				return td, err
			}
			td.Methods = append(td.Methods, m)
		}
	}

	return td, nil
}

func (r *reader) fields(n *sitter.Node, owner string) ([]model.Field, error) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return nil, &model.MalformedError{File: r.file, Type: owner, Reason: "field without a type"}
	}
	mods := r.modifiers(n)

	var tags []model.Stereotype
	for _, s := range mods.tags {
		if s.IsFieldTag() && !containsTag(tags, s) {
			tags = append(tags, s)
		}
	}

	var fields []model.Field
	for i := 0; i < int(n.NamedChildCount()); i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			return nil, &model.MalformedError{File: r.file, Type: owner, Reason: "field declarator without a name"}
		}

		typ := r.typeString(typeNode)
		if dims := decl.ChildByFieldName("dimensions"); dims != nil {
			typ += strings.Repeat("[]", strings.Count(r.text(dims), "["))
		}

		f := model.Field{
			Name:       r.text(nameNode),
			Type:       typ,
			Visibility: mods.visibility(),
			Static:     mods.has("static"),
			Final:      mods.has("final"),
			Tags:       tags,
		}
		f.Collection, f.Element = r.collectionShape(typeNode, typ)
		fields = append(fields, f)
	}

	if len(fields) == 0 {
		return nil, &model.MalformedError{File: r.file, Type: owner, Reason: "field declaration without variables"}
	}
	return fields, nil
}

func (r *reader) constructor(n *sitter.Node, owner string) (model.Constructor, error) {
	c := model.Constructor{Name: owner, Visibility: r.modifiers(n).visibility()}
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		c.Name = r.text(nameNode)
	}
	params, err := r.params(n, owner, c.Name)
	if err != nil {
		return c, err
	}
	c.Params = params
	return c, nil
}

func (r *reader) method(n *sitter.Node, owner string) (model.Method, error) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return model.Method{}, &model.MalformedError{File: r.file, Type: owner, Reason: "method without a name"}
	}
	mods := r.modifiers(n)
	m := model.Method{
		Name:       r.text(nameNode),
		Visibility: mods.visibility(),
		Static:     mods.has("static"),
		Final:      mods.has("final"),
		Abstract:   mods.has("abstract"),
	}
	if t := n.ChildByFieldName("type"); t != nil {
		m.Return = r.typeString(t)
		if dims := n.ChildByFieldName("dimensions"); dims != nil {
			m.Return += strings.Repeat("[]", strings.Count(r.text(dims), "["))
		}
	}
	params, err := r.params(n, owner, m.Name)
	if err != nil {
		return m, err
	}
	m.Params = params
	return m, nil
}

func (r *reader) params(n *sitter.Node, owner, member string) ([]model.Param, error) {
	list := n.ChildByFieldName("parameters")
	if list == nil {
		return nil, nil
	}

	var params []model.Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		switch p.Type() {
		case "formal_parameter":
			typeNode := p.ChildByFieldName("type")
			nameNode := p.ChildByFieldName("name")
			if typeNode == nil || nameNode == nil {
				return nil, &model.MalformedError{File: r.file, Type: owner, Member: member, Reason: "incomplete parameter"}
			}
			typ := r.typeString(typeNode)
			if dims := p.ChildByFieldName("dimensions"); dims != nil {
				typ += strings.Repeat("[]", strings.Count(r.text(dims), "["))
			}
			params = append(params, model.Param{Name: r.text(nameNode), Type: typ})
		case "spread_parameter":
			var typ, name string
			for j := 0; j < int(p.NamedChildCount()); j++ {
				c := p.NamedChild(j)
				switch c.Type() {
				case "modifiers":
				case "variable_declarator":
					if nn := c.ChildByFieldName("name"); nn != nil {
						name = r.text(nn)
					}
				default:
					if typ == "" {
						typ = r.typeString(c)
					}
				}
			}
			if typ == "" || name == "" {
				return nil, &model.MalformedError{File: r.file, Type: owner, Member: member, Reason: "incomplete varargs parameter"}
			}
			params = append(params, model.Param{Name: name, Type: typ, Varargs: true})
		}
	}
	return params, nil
}

// typeString renders a type node, appending one "[]" per array dimension.
func (r *reader) typeString(n *sitter.Node) string {
	if n.Type() == "array_type" {
		elem := n.ChildByFieldName("element")
		dims := n.ChildByFieldName("dimensions")
		if elem != nil && dims != nil {
			return r.typeString(elem) + strings.Repeat("[]", strings.Count(r.text(dims), "["))
		}
	}
	return normalizeType(r.text(n))
}

// collectionShape reports whether a field type is a recognized collection
// and returns its element type. Arrays count as collections of their
// component type.
func (r *reader) collectionShape(typeNode *sitter.Node, typ string) (bool, string) {
	if strings.HasSuffix(typ, "[]") {
		return true, strings.TrimSuffix(typ, "[]")
	}

	switch typeNode.Type() {
	case "type_identifier", "scoped_type_identifier":
		if _, ok := collectionTypes[simpleName(r.text(typeNode))]; ok {
			return true, ""
		}
	case "generic_type":
		base := typeNode.NamedChild(0)
		if base == nil {
			return false, ""
		}
		if _, ok := collectionTypes[simpleName(r.text(base))]; !ok {
			return false, ""
		}
		args := childOfType(typeNode, "type_arguments")
		if args == nil || args.NamedChildCount() == 0 {
			return true, ""
		}
		arg := args.NamedChild(0)
		if arg.Type() == "wildcard" {
			// ? extends T: the bound is the element
			for j := 0; j < int(arg.NamedChildCount()); j++ {
				if c := arg.NamedChild(j); c.Type() != "annotation" && c.Type() != "marker_annotation" {
					return true, r.typeString(c)
				}
			}
			return true, ""
		}
		return true, r.typeString(arg)
	}
	return false, ""
}

// typeNames returns the simple names of the types listed under a
// superclass, super_interfaces or extends_interfaces node.
func (r *reader) typeNames(n *sitter.Node) []string {
	var names []string
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		switch node.Type() {
		case "type_identifier", "scoped_type_identifier":
			names = append(names, simpleName(r.text(node)))
			return
		case "generic_type":
			if base := node.NamedChild(0); base != nil {
				names = append(names, simpleName(r.text(base)))
			}
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	walk(n)
	return names
}

type modifierSet struct {
	keywords map[string]struct{}
	tags     []model.Stereotype
}

func (m modifierSet) has(kw string) bool {
	_, ok := m.keywords[kw]
	return ok
}

func (m modifierSet) visibility() model.Visibility {
	switch {
	case m.has("public"):
		return model.Public
	case m.has("protected"):
		return model.Protected
	case m.has("private"):
		return model.Private
	}
	return model.Package
}

// modifiers collects keyword modifiers and recognized stereotype
// annotations of a declaration. Unrecognized annotations are dropped.
func (r *reader) modifiers(n *sitter.Node) modifierSet {
	set := modifierSet{keywords: make(map[string]struct{})}
	mods := childOfType(n, "modifiers")
	if mods == nil {
		return set
	}
	for i := 0; i < int(mods.ChildCount()); i++ {
		child := mods.Child(i)
		switch child.Type() {
		case "marker_annotation", "annotation":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			if s, ok := model.ParseStereotype(r.text(nameNode)); ok {
				set.tags = append(set.tags, s)
			}
		default:
			if !child.IsNamed() {
				set.keywords[child.Type()] = struct{}{}
			}
		}
	}
	return set
}

func syntaxErrorReason(root *sitter.Node) string {
	var found *sitter.Node
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if found != nil {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if c := n.Child(i); c.HasError() || c.IsMissing() {
				walk(c)
			}
		}
	}
	walk(root)
	if found == nil {
		return "syntax error"
	}
	return fmt.Sprintf("syntax error at line %d", found.StartPoint().Row+1)
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

func containsTag(tags []model.Stereotype, s model.Stereotype) bool {
	for _, t := range tags {
		if t == s {
			return true
		}
	}
	return false
}

func simpleName(name string) string {
	name = lang.CollapseWhitespace(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.TrimSpace(name[i+1:])
	}
	return name
}

// normalizeType collapses whitespace in a type so that equivalent
// spellings render identically, e.g. "Map< K ,V >" becomes "Map<K, V>".
func normalizeType(s string) string {
	s = lang.CollapseWhitespace(s)
	s = commaRe.ReplaceAllString(s, ", ")
	s = openRe.ReplaceAllString(s, "<")
	s = closeRe.ReplaceAllString(s, ">")
	return s
}
