// Package plantuml renders a diagram as PlantUML class diagram text.
package plantuml

import (
	"strings"

	"github.com/phobologic/umlgen/internal/model"
)

// Encode renders d as PlantUML text. Packages, types, members and edges
// are written in the order they appear in d, so equal diagrams always
// encode to identical text.
func Encode(d *model.Diagram, style Style) string {
	var b strings.Builder

	b.WriteString("@startuml\n\n")
	if len(style.Directives) > 0 {
		for _, line := range style.Directives {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	for gi := range d.Packages {
		g := &d.Packages[gi]
		if g.Name != "" {
			b.WriteString("package ")
			b.WriteString(g.Name)
			b.WriteString(" {\n\n")
		}
		for ti := range g.Types {
			writeType(&b, &g.Types[ti])
			b.WriteByte('\n')
		}
		if g.Name != "" {
			b.WriteString("}\n\n")
		}
	}

	for i := range d.Edges {
		b.WriteString(EdgeLine(&d.Edges[i]))
		b.WriteByte('\n')
	}
	b.WriteString("@enduml\n")

	return b.String()
}

func writeType(b *strings.Builder, td *model.TypeDeclaration) {
	b.WriteString(header(td))
	b.WriteString(" {\n")

	if td.Kind == model.Enum {
		for _, c := range td.Constants {
			writeMember(b, c)
		}
		b.WriteString("}\n")
		return
	}

	for i := range td.Fields {
		writeMember(b, FieldLine(&td.Fields[i]))
	}
	for i := range td.Constructors {
		writeMember(b, ConstructorLine(&td.Constructors[i]))
	}
	for i := range td.Methods {
		writeMember(b, MethodLine(&td.Methods[i]))
	}
	b.WriteString("}\n")
}

func writeMember(b *strings.Builder, line string) {
	b.WriteString("  ")
	b.WriteString(line)
	b.WriteByte('\n')
}

func header(td *model.TypeDeclaration) string {
	var kw string
	switch {
	case td.Kind == model.Interface:
		kw = "interface"
	case td.Kind == model.Enum:
		kw = "enum"
	case td.Abstract:
		kw = "abstract class"
	default:
		kw = "class"
	}
	h := kw + " " + td.Name
	if td.IsAssociationClass() {
		h += " <<association>>"
	}
	return h
}

// EdgeLine renders one relationship line.
func EdgeLine(e *model.Edge) string {
	switch e.Kind {
	case model.Inheritance:
		return e.Source + " <|-- " + e.Target
	case model.Implementation:
		return e.Source + " <|.. " + e.Target
	case model.Dependency:
		return withLabel(e.Source+" ..> "+e.Target, e.Label)
	}

	arrow := "-->"
	switch {
	case e.Kind == model.Composition:
		arrow = "*-->"
	case e.Kind == model.Aggregation:
		arrow = "o-->"
	case e.Undirected:
		arrow = "--"
	}

	var b strings.Builder
	b.WriteString(e.Source)
	writeMult(&b, e.SourceMult)
	b.WriteByte(' ')
	b.WriteString(arrow)
	writeMult(&b, e.TargetMult)
	b.WriteByte(' ')
	b.WriteString(e.Target)
	return withLabel(b.String(), e.Label)
}

func writeMult(b *strings.Builder, mult string) {
	if mult == "" {
		return
	}
	b.WriteString(` "`)
	b.WriteString(mult)
	b.WriteByte('"')
}

func withLabel(line, label string) string {
	if label == "" {
		return line
	}
	return line + " : " + label
}
