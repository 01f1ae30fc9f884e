package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/umlgen/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main/java/Course.java", "src/main/java/Course.java"},
		{"dotted name", "com.acme.school", "com.acme.school"},
		{"generic type", "List<Lesson>", "List<Lesson>"},
		{"multiplicity", "0..*", "0..*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	d := &model.Diagram{
		Packages: []model.PackageGroup{
			{Name: "", Types: []model.TypeDeclaration{
				{Kind: model.Enum, Name: "Role"},
			}},
			{Name: "com.acme", Types: []model.TypeDeclaration{
				{Kind: model.Class, Name: "Person", Abstract: true},
				{Kind: model.Class, Name: "Enrollment", Tags: []model.Stereotype{model.AssociationClass}},
			}},
		},
		Edges: []model.Edge{
			{Source: "Course", Target: "Lesson", Kind: model.Composition, SourceMult: "1", TargetMult: "0..*", Label: "lessons"},
			{Source: "Person", Target: "Student", Kind: model.Inheritance},
		},
	}

	got := Encode(d)

	want := []string{
		"types[3]{package,name,kind,stereotype}:",
		`  "",Role,enum,""`,
		`  com.acme,Person,abstract class,""`,
		"  com.acme,Enrollment,class,association",
		"edges[2]{source,target,kind,source_mult,target_mult,label}:",
		"  Course,Lesson,composition,1,0..*,lessons",
		`  Person,Student,inheritance,"","",""`,
	}
	lines := strings.Split(got, "\n")
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(&model.Diagram{})
	if !strings.Contains(got, "types[0]{package,name,kind,stereotype}:") {
		t.Errorf("expected empty types section, got:\n%s", got)
	}
	if !strings.Contains(got, "edges[0]{source,target,kind,source_mult,target_mult,label}:") {
		t.Errorf("expected empty edges section, got:\n%s", got)
	}
}
