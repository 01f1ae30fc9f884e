// Package lang registers the tree-sitter grammars umlgen can read and
// holds small helpers shared by the parsers.
package lang

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/umlgen/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language describes one source language: the file extensions it owns,
// its grammar, and the syntax node types that declare a type.
type Language struct {
	Name       string
	Extensions []string
	TypeKinds  map[string]model.Kind
	grammar    *sitter.Language
}

// Grammar returns the tree-sitter grammar.
func (l *Language) Grammar() *sitter.Language {
	return l.grammar
}

// NewParser creates a parser for this language.
// Parsers are not safe for concurrent use.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.grammar)
	return p
}

// DeclaredKind returns the kind of type declared by a node of the given
// syntax type, and false for any other node.
func (l *Language) DeclaredKind(nodeType string) (model.Kind, bool) {
	k, ok := l.TypeKinds[nodeType]
	return k, ok
}

// Languages maps language names to their configuration.
var Languages = map[string]*Language{}

var byExtension = map[string]string{}

// Register adds l to the registry. It is called from init functions, so a
// duplicate extension is a programming error and panics.
func Register(l *Language) {
	for _, ext := range l.Extensions {
		if owner, ok := byExtension[ext]; ok {
			panic("lang: extension " + ext + " registered by both " + owner + " and " + l.Name)
		}
		byExtension[ext] = l.Name
	}
	Languages[l.Name] = l
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return byExtension[ext]
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
