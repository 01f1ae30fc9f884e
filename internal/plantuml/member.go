package plantuml

import (
	"strings"

	"github.com/phobologic/umlgen/internal/model"
)

func visibilitySymbol(v model.Visibility) string {
	switch v {
	case model.Public:
		return "+"
	case model.Protected:
		return "#"
	case model.Private:
		return "-"
	}
	return "~"
}

// FieldLine renders a field as a class member line, e.g.
// "- {static} lessons : List<Lesson> {composition, ordered}".
// A derived field shows "/" in place of its visibility.
func FieldLine(f *model.Field) string {
	var b strings.Builder
	if f.HasTag(model.Derived) {
		b.WriteString("/")
	} else {
		b.WriteString(visibilitySymbol(f.Visibility))
	}
	if f.Static {
		b.WriteString(" {static}")
	}
	if f.Final {
		b.WriteString(" {final}")
	}
	b.WriteString(" ")
	b.WriteString(f.Name)
	b.WriteString(" : ")
	b.WriteString(f.Type)
	if len(f.Tags) > 0 {
		tags := make([]string, len(f.Tags))
		for i, t := range f.Tags {
			tags[i] = strings.ToLower(string(t))
		}
		b.WriteString(" {")
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString("}")
	}
	return b.String()
}

// ConstructorLine renders a constructor, e.g. "+ Course(title : String)".
func ConstructorLine(c *model.Constructor) string {
	return visibilitySymbol(c.Visibility) + " " + c.Name + "(" + paramList(c.Params) + ")"
}

// MethodLine renders a method, e.g. "+ {static} of(code : String) : Course".
func MethodLine(m *model.Method) string {
	var b strings.Builder
	b.WriteString(visibilitySymbol(m.Visibility))
	if m.Static {
		b.WriteString(" {static}")
	}
	if m.Final {
		b.WriteString(" {final}")
	}
	if m.Abstract {
		b.WriteString(" {abstract}")
	}
	b.WriteString(" ")
	b.WriteString(m.Name)
	b.WriteString("(")
	b.WriteString(paramList(m.Params))
	b.WriteString(") : ")
	b.WriteString(m.Return)
	return b.String()
}

func paramList(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + " : " + p.Type
		if p.Varargs {
			parts[i] += "..."
		}
	}
	return strings.Join(parts, ", ")
}
