// Package ranking narrows a diagram to its most relevant types.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/phobologic/umlgen/internal/model"
)

// Rank computes PageRank over the types of d. An edge counts as a
// reference from the type that depends on the other: the owner of a
// field, the caller of a method, the child of a supertype. Edges to
// types outside the diagram are ignored. The iteration visits nodes in
// name order, so equal diagrams always produce identical ranks.
func Rank(d *model.Diagram) map[string]float64 {
	index := make(map[string]int, d.TypeCount())
	var names []string
	for gi := range d.Packages {
		for ti := range d.Packages[gi].Types {
			name := d.Packages[gi].Types[ti].Name
			if _, ok := index[name]; !ok {
				index[name] = 0
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	for i, name := range names {
		index[name] = i
	}

	outEdges := make([][]int, len(names))
	var edgeCount int
	for i := range d.Edges {
		from, to := referrer(&d.Edges[i])
		fi, ok := index[from]
		if !ok {
			continue
		}
		ti, ok := index[to]
		if !ok {
			continue
		}
		outEdges[fi] = append(outEdges[fi], ti)
		edgeCount++
	}
	for _, targets := range outEdges {
		sort.Ints(targets)
	}

	var rank []float64
	if edgeCount == 0 {
		rank = make([]float64, len(names))
		for i := range rank {
			rank[i] = 1.0 / float64(len(names))
		}
	} else {
		rank = pageRank(outEdges, 0.85, 100, 1e-6)
	}

	ranks := make(map[string]float64, len(names))
	for i, name := range names {
		ranks[name] = rank[i]
	}
	return ranks
}

// rankKey rounds a rank so that mathematically equal ranks compare equal
// and fall through to the name order.
func rankKey(r float64) float64 {
	return math.Round(r*1e9) / 1e9
}

func referrer(e *model.Edge) (from, to string) {
	switch e.Kind {
	case model.Inheritance, model.Implementation:
		return e.Target, e.Source
	}
	return e.Source, e.Target
}

// SelectTypes returns a diagram with only the n highest-ranked types and
// the edges whose endpoints both survive. Ties are broken by name. If n
// is <= 0 or covers every type, d is returned unchanged.
func SelectTypes(d *model.Diagram, n int) *model.Diagram {
	if n <= 0 || n >= d.TypeCount() {
		return d
	}

	ranks := Rank(d)
	names := make([]string, 0, len(ranks))
	for name := range ranks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rankKey(ranks[names[i]]), rankKey(ranks[names[j]])
		if ri != rj {
			return ri > rj
		}
		return names[i] < names[j]
	})

	keep := make(map[string]struct{}, n)
	for _, name := range names[:n] {
		keep[name] = struct{}{}
	}
	return subset(d, keep, func(e *model.Edge) bool {
		return has(keep, e.Source) && has(keep, e.Target)
	})
}

// FilterByType returns a diagram with the types whose name contains
// substr (case-insensitive), their direct neighbours, and the edges
// touching a matched type.
func FilterByType(d *model.Diagram, substr string) *model.Diagram {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	for gi := range d.Packages {
		for ti := range d.Packages[gi].Types {
			name := d.Packages[gi].Types[ti].Name
			if strings.Contains(strings.ToLower(name), lower) {
				matched[name] = struct{}{}
			}
		}
	}

	keep := make(map[string]struct{}, len(matched))
	for name := range matched {
		keep[name] = struct{}{}
	}
	for i := range d.Edges {
		e := &d.Edges[i]
		if has(matched, e.Source) {
			keep[e.Target] = struct{}{}
		}
		if has(matched, e.Target) {
			keep[e.Source] = struct{}{}
		}
	}

	return subset(d, keep, func(e *model.Edge) bool {
		return has(matched, e.Source) || has(matched, e.Target)
	})
}

// FilterByPackage returns a diagram with only the packages whose name
// contains substr (case-insensitive) and the edges among their types.
func FilterByPackage(d *model.Diagram, substr string) *model.Diagram {
	lower := strings.ToLower(substr)

	keep := make(map[string]struct{})
	for gi := range d.Packages {
		if !strings.Contains(strings.ToLower(d.Packages[gi].Name), lower) {
			continue
		}
		for ti := range d.Packages[gi].Types {
			keep[d.Packages[gi].Types[ti].Name] = struct{}{}
		}
	}

	return subset(d, keep, func(e *model.Edge) bool {
		return has(keep, e.Source) && has(keep, e.Target)
	})
}

// subset copies the types named in keep and the edges accepted by
// keepEdge into a new diagram, dropping packages left empty.
func subset(d *model.Diagram, keep map[string]struct{}, keepEdge func(*model.Edge) bool) *model.Diagram {
	out := &model.Diagram{}
	for gi := range d.Packages {
		g := &d.Packages[gi]
		var types []model.TypeDeclaration
		for ti := range g.Types {
			if has(keep, g.Types[ti].Name) {
				types = append(types, g.Types[ti])
			}
		}
		if len(types) > 0 {
			out.Packages = append(out.Packages, model.PackageGroup{Name: g.Name, Types: types})
		}
	}
	for i := range d.Edges {
		if keepEdge(&d.Edges[i]) {
			out.Edges = append(out.Edges, d.Edges[i])
		}
	}
	return out
}

func has(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

// pageRank runs power iteration over nodes 0..len(outEdges)-1, where
// outEdges[i] lists the targets referenced by node i.
func pageRank(outEdges [][]int, alpha float64, maxIter int, tol float64) []float64 {
	n := len(outEdges)
	if n == 0 {
		return nil
	}

	rank := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range rank {
		rank[i] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make([]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for i := range rank {
			if len(outEdges[i]) == 0 {
				danglingSum += rank[i]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for i := range newRank {
			newRank[i] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			if len(targets) == 0 {
				continue
			}
			contrib := alpha * rank[src] / float64(len(targets))
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for i := range rank {
			diff += math.Abs(newRank[i] - rank[i])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}
