// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/umlgen/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a diagram into TOON format: one table of types and one
// of edges, in diagram order.
func Encode(d *model.Diagram) string {
	var parts []string

	var typeRows [][]string
	for gi := range d.Packages {
		g := &d.Packages[gi]
		for ti := range g.Types {
			td := &g.Types[ti]
			typeRows = append(typeRows, []string{
				g.Name,
				td.Name,
				kindName(td),
				stereotype(td),
			})
		}
	}
	parts = append(parts, formatTabular("types", []string{"package", "name", "kind", "stereotype"}, typeRows))

	var edgeRows [][]string
	for i := range d.Edges {
		e := &d.Edges[i]
		edgeRows = append(edgeRows, []string{
			e.Source,
			e.Target,
			string(e.Kind),
			e.SourceMult,
			e.TargetMult,
			e.Label,
		})
	}
	parts = append(parts, formatTabular("edges", []string{"source", "target", "kind", "source_mult", "target_mult", "label"}, edgeRows))

	return strings.Join(parts, "\n")
}

func kindName(td *model.TypeDeclaration) string {
	if td.Kind == model.Class && td.Abstract {
		return "abstract class"
	}
	return string(td.Kind)
}

func stereotype(td *model.TypeDeclaration) string {
	if td.IsAssociationClass() {
		return "association"
	}
	return ""
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
