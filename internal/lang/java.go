package lang

import (
	"github.com/smacker/go-tree-sitter/java"

	"github.com/phobologic/umlgen/internal/model"
)

// Java is the only language umlgen reads today.
var Java = &Language{
	Name:       "java",
	Extensions: []string{".java"},
	TypeKinds: map[string]model.Kind{
		"class_declaration":     model.Class,
		"interface_declaration": model.Interface,
		"enum_declaration":      model.Enum,
	},
	grammar: java.GetLanguage(),
}

func init() {
	Register(Java)
}
