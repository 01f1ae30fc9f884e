package graph

import "strings"

var builtins = map[string]struct{}{
	"int":       {},
	"short":     {},
	"long":      {},
	"double":    {},
	"float":     {},
	"boolean":   {},
	"char":      {},
	"byte":      {},
	"void":      {},
	"String":    {},
	"Integer":   {},
	"Long":      {},
	"Double":    {},
	"Float":     {},
	"Boolean":   {},
	"Character": {},
	"Byte":      {},
	"Short":     {},
	"Object":    {},
	"Number":    {},
	"Void":      {},
}

// IsBuiltin reports whether typ names a Java primitive or a java.lang
// value type. Generic arguments, array suffixes and varargs are ignored,
// so "Integer[]" and "String..." are builtin while "Stringly" is not.
func IsBuiltin(typ string) bool {
	_, ok := builtins[baseName(typ)]
	return ok
}

// baseName strips generic arguments, array and varargs suffixes and any
// package qualifier from a type string.
func baseName(typ string) string {
	if i := strings.IndexByte(typ, '<'); i >= 0 {
		typ = typ[:i]
	}
	typ = strings.TrimSuffix(typ, "...")
	for strings.HasSuffix(typ, "[]") {
		typ = strings.TrimSuffix(typ, "[]")
	}
	typ = strings.TrimSpace(typ)
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		typ = typ[i+1:]
	}
	return typ
}
