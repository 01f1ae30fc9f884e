package plantuml

import (
	"fmt"
	"sort"
)

// Style holds the directive lines written after @startuml. The encoder
// passes them through untouched.
type Style struct {
	Directives []string
}

// With returns a copy of s with extra directives appended.
func (s Style) With(extra ...string) Style {
	out := make([]string, 0, len(s.Directives)+len(extra))
	out = append(out, s.Directives...)
	out = append(out, extra...)
	return Style{Directives: out}
}

var plain = []string{
	"skinparam classAttributeIconSize 0",
}

var dark = []string{
	"skinparam backgroundColor #2E2E2E",
	"skinparam shadowing false",
	"skinparam classFontColor white",
	"skinparam classBackgroundColor #3E3E3E",
	"skinparam classBorderColor #AAAAAA",
	"skinparam defaultTextColor white",
	"skinparam arrowColor #CCCCCC",
	"skinparam arrowFontColor white",
	"skinparam packageFontColor white",
	"skinparam packageTitleFontColor white",
	"skinparam stereotypeFontColor white",
	"skinparam packageBorderColor white",
}

var vector = []string{
	"skinparam dpi 300",
	"scale max 2000 width",
}

var themes = map[string][][]string{
	"plain":  {plain},
	"dark":   {plain, dark},
	"vector": {plain, vector, dark},
}

// Theme returns the preset style with the given name.
func Theme(name string) (Style, error) {
	parts, ok := themes[name]
	if !ok {
		return Style{}, fmt.Errorf("unknown theme %q (want one of %v)", name, ThemeNames())
	}
	var s Style
	for _, p := range parts {
		s = s.With(p...)
	}
	return s, nil
}

// ThemeNames lists the preset names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
