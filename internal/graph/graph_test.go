package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/phobologic/umlgen/internal/model"
)

func class(name string, fields ...model.Field) model.TypeDeclaration {
	return model.TypeDeclaration{Kind: model.Class, Name: name, Fields: fields}
}

func field(name, typ string, tags ...model.Stereotype) model.Field {
	return model.Field{Name: name, Type: typ, Visibility: model.Private, Tags: tags}
}

func listField(name, elem string, tags ...model.Stereotype) model.Field {
	return model.Field{Name: name, Type: "List<" + elem + ">", Collection: true, Element: elem, Visibility: model.Private, Tags: tags}
}

func infer(t *testing.T, decls ...model.TypeDeclaration) []model.Edge {
	t.Helper()
	d, err := Build(decls, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d.Edges
}

func TestGroupSortsPackages(t *testing.T) {
	t.Parallel()

	decls := []model.TypeDeclaration{
		{Kind: model.Class, Name: "Z", Package: "org.b"},
		{Kind: model.Class, Name: "A", Package: "org.a"},
		{Kind: model.Class, Name: "Loose"},
		{Kind: model.Class, Name: "Y", Package: "org.b"},
		{Kind: model.Class, Name: "X", Package: "org.b"},
	}

	groups, defined, err := Group(decls, nil)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}

	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	if !reflect.DeepEqual(names, []string{"", "org.a", "org.b"}) {
		t.Errorf("package order = %q", names)
	}

	var inB []string
	for _, td := range groups[2].Types {
		inB = append(inB, td.Name)
	}
	if !reflect.DeepEqual(inB, []string{"Z", "Y", "X"}) {
		t.Errorf("org.b types = %v, want input order", inB)
	}

	if len(defined) != 5 {
		t.Errorf("defined = %v", defined)
	}
}

func TestGroupExclude(t *testing.T) {
	t.Parallel()

	decls := []model.TypeDeclaration{
		class("Course", field("helper", "Generator")),
		class("Generator"),
	}
	d, err := Build(decls, map[string]struct{}{"Generator": {}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.TypeCount() != 1 {
		t.Errorf("expected excluded type to be dropped, got %d types", d.TypeCount())
	}
	if len(d.Edges) != 0 {
		t.Errorf("excluded type must not be an edge target: %+v", d.Edges)
	}
}

func TestGroupMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		decl model.TypeDeclaration
	}{
		{"no name", model.TypeDeclaration{Kind: model.Class}},
		{"no kind", model.TypeDeclaration{Name: "A"}},
		{"field without type", class("A", model.Field{Name: "x"})},
		{"field without name", class("A", model.Field{Type: "int"})},
		{"param without type", model.TypeDeclaration{
			Kind: model.Class, Name: "A",
			Methods: []model.Method{{Name: "m", Params: []model.Param{{Name: "p"}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Group([]model.TypeDeclaration{class("Ok"), tt.decl}, nil)
			if !errors.Is(err, model.ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestCourseScenario(t *testing.T) {
	t.Parallel()

	edges := infer(t,
		class("Course",
			field("programme", "Programme", model.Composed),
			listField("lessons", "Lesson", model.Composed),
		),
		class("Programme"),
		class("Lesson"),
	)

	want := []model.Edge{
		{Source: "Course", Target: "Programme", Kind: model.Composition, SourceMult: "1", TargetMult: "1", Label: "programme"},
		{Source: "Course", Target: "Lesson", Kind: model.Composition, SourceMult: "1", TargetMult: "0..*", Label: "lessons"},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", edges, want)
	}
}

func TestAssociationKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tags []model.Stereotype
		want model.EdgeKind
	}{
		{"plain", nil, model.Association},
		{"aggregation", []model.Stereotype{model.Aggregated}, model.Aggregation},
		{"composition", []model.Stereotype{model.Composed}, model.Composition},
		{"composition wins", []model.Stereotype{model.Aggregated, model.Composed}, model.Composition},
		{"unrelated tag", []model.Stereotype{model.Ordered}, model.Association},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			edges := infer(t, class("A", field("b", "B", tt.tags...)), class("B"))
			if len(edges) != 1 || edges[0].Kind != tt.want {
				t.Errorf("edges = %+v, want one %s", edges, tt.want)
			}
		})
	}
}

func TestBuiltinFieldsProduceNoEdges(t *testing.T) {
	t.Parallel()

	edges := infer(t,
		class("A",
			field("n", "int"),
			field("s", "String"),
			field("i", "Integer"),
			field("ids", "long[]"),
			listField("names", "String"),
			field("lower", "custom"),
			field("foreign", "Date"),
			field("raw", "List"),
		),
		// a defined type that shadows a builtin name is still never a target
		class("String"),
	)
	if len(edges) != 0 {
		t.Errorf("expected no edges, got %+v", edges)
	}
}

func TestArrayFieldIsToMany(t *testing.T) {
	t.Parallel()

	edges := infer(t,
		class("Shelf", model.Field{Name: "books", Type: "Book[]", Collection: true, Element: "Book"}),
		class("Book"),
	)
	if len(edges) != 1 || edges[0].TargetMult != model.Many || edges[0].Target != "Book" {
		t.Errorf("edges = %+v", edges)
	}
}

func TestFieldEdgesDeduplicated(t *testing.T) {
	t.Parallel()

	edges := infer(t,
		class("A", field("b", "B"), field("b", "B"), listField("b", "B")),
		class("B"),
	)
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d: %+v", len(edges), edges)
	}
	if edges[0].TargetMult != model.One {
		t.Errorf("first occurrence should win: %+v", edges[0])
	}
}

func TestInheritanceAndImplementation(t *testing.T) {
	t.Parallel()

	student := class("Student")
	student.Extends = []string{"Person"}
	student.Implements = []string{"Identifiable", "Serializable"}

	edges := infer(t, student)
	want := []model.Edge{
		{Source: "Person", Target: "Student", Kind: model.Inheritance},
		{Source: "Identifiable", Target: "Student", Kind: model.Implementation},
		{Source: "Serializable", Target: "Student", Kind: model.Implementation},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", edges, want)
	}
}

func TestEnumsHaveNoEdges(t *testing.T) {
	t.Parallel()

	role := model.TypeDeclaration{
		Kind:       model.Enum,
		Name:       "Role",
		Implements: []string{"Labelled"},
		Fields:     []model.Field{field("owner", "Person")},
		Constants:  []string{"ADMIN"},
	}
	edges := infer(t, role, class("Person"), model.TypeDeclaration{Kind: model.Interface, Name: "Labelled"})
	if len(edges) != 0 {
		t.Errorf("expected no edges, got %+v", edges)
	}
}

func TestUsageDependency(t *testing.T) {
	t.Parallel()

	registrar := class("Registrar")
	registrar.Methods = []model.Method{
		{Name: "enroll", Return: "void", Params: []model.Param{{Name: "s", Type: "Student"}}},
		{Name: "enroll", Return: "void", Params: []model.Param{{Name: "s", Type: "Student"}, {Name: "n", Type: "int"}}},
		{Name: "drop", Return: "void", Params: []model.Param{{Name: "s", Type: "Student"}, {Name: "r", Type: "Registrar"}}},
		{Name: "log", Return: "void", Params: []model.Param{{Name: "msg", Type: "String"}, {Name: "d", Type: "Date"}}},
	}

	edges := infer(t, registrar, class("Student"))
	want := []model.Edge{{Source: "Registrar", Target: "Student", Kind: model.Dependency, Label: "uses"}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", edges, want)
	}
}

func TestUsageDependencyVarargs(t *testing.T) {
	t.Parallel()

	registrar := class("Registrar")
	registrar.Methods = []model.Method{
		{Name: "enrollAll", Return: "void", Params: []model.Param{{Name: "s", Type: "Student", Varargs: true}}},
		{Name: "enroll", Return: "void", Params: []model.Param{{Name: "s", Type: "Student"}}},
		{Name: "tag", Return: "void", Params: []model.Param{{Name: "labels", Type: "String", Varargs: true}}},
	}

	edges := infer(t, registrar, class("Student"))
	want := []model.Edge{{Source: "Registrar", Target: "Student", Kind: model.Dependency, Label: "uses"}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", edges, want)
	}
}

func enrollment(fields ...model.Field) model.TypeDeclaration {
	td := class("Enrollment", fields...)
	td.Tags = []model.Stereotype{model.AssociationClass}
	td.Extends = []string{"Record"}
	td.Implements = []string{"Auditable"}
	return td
}

func TestAssociationClassScenario(t *testing.T) {
	t.Parallel()

	edges := infer(t,
		enrollment(field("student", "Student"), field("course", "Course"), field("grade", "int")),
		class("Student"),
		class("Course"),
	)

	want := []model.Edge{
		{Source: "Student", Target: "Course", Kind: model.Association, SourceMult: "1", TargetMult: "1", Label: "association", Undirected: true},
		{Source: "Enrollment", Target: "Student", Kind: model.Dependency, Label: "association"},
		{Source: "Enrollment", Target: "Course", Kind: model.Dependency, Label: "association"},
	}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", edges, want)
	}
}

func TestAssociationClassDegenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields []model.Field
	}{
		{"one endpoint", []model.Field{field("student", "Student")}},
		{"one endpoint twice", []model.Field{field("a", "Student"), field("b", "Student")}},
		{"three endpoints", []model.Field{field("student", "Student"), field("course", "Course"), field("room", "Room")}},
		{"collection ignored", []model.Field{field("student", "Student"), listField("courses", "Course")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			edges := infer(t, enrollment(tt.fields...), class("Student"), class("Course"), class("Room"))
			if len(edges) != 0 {
				t.Errorf("expected no edges, got %+v", edges)
			}
		})
	}
}

func TestAssociationClassKeepsUsageDependencies(t *testing.T) {
	t.Parallel()

	td := enrollment(field("student", "Student"))
	td.Methods = []model.Method{{Name: "grade", Return: "void", Params: []model.Param{{Name: "by", Type: "Professor"}}}}

	edges := infer(t, td, class("Student"), class("Professor"))
	want := []model.Edge{{Source: "Enrollment", Target: "Professor", Kind: model.Dependency, Label: "uses"}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("edges:\n got %+v\nwant %+v", edges, want)
	}
}

func TestInferDeterministic(t *testing.T) {
	t.Parallel()

	decls := []model.TypeDeclaration{
		class("Course", listField("lessons", "Lesson"), field("dept", "Department", model.Aggregated)),
		{Kind: model.Class, Name: "Lesson", Package: "com.acme"},
		{Kind: model.Class, Name: "Department", Package: "com.acme.org"},
		enrollment(field("student", "Student"), field("course", "Course")),
		class("Student"),
	}

	first, err := Build(decls, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Build(decls, nil)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestIsBuiltin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  string
		want bool
	}{
		{"int", true},
		{"void", true},
		{"String", true},
		{"java.lang.String", true},
		{"Integer[]", true},
		{"int[][]", true},
		{"String...", true},
		{"Object", true},
		{"Stringly", false},
		{"Course", false},
		{"List<String>", false},
		{"Date", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsBuiltin(tt.typ); got != tt.want {
			t.Errorf("IsBuiltin(%q) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}
