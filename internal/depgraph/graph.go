package depgraph

import "sort"

// Graph is the mutable dependency graph consumed by Resolve. Nodes are type
// names; edges are split into strong and weak. Forward and reverse views are
// kept consistent by construction: every mutation goes through Remove or
// ClearWeakTarget, never through direct set access.
type Graph struct {
	strong  map[string]map[string]struct{} // name -> names it strongly depends on
	weak    map[string]map[string]struct{}
	rstrong map[string]map[string]struct{} // name -> names that strongly depend on it
	rweak   map[string]map[string]struct{}
}

// BuildGraph constructs the graph for the given universe of types. Edges
// pointing outside the universe are dropped: the orchestrator either
// guarantees transitive closure or has deliberately restricted the export
// to the requested names.
func BuildGraph(deps map[string]DepSet) *Graph {
	g := &Graph{
		strong:  make(map[string]map[string]struct{}, len(deps)),
		weak:    make(map[string]map[string]struct{}, len(deps)),
		rstrong: make(map[string]map[string]struct{}, len(deps)),
		rweak:   make(map[string]map[string]struct{}, len(deps)),
	}
	for name := range deps {
		g.strong[name] = make(map[string]struct{})
		g.weak[name] = make(map[string]struct{})
		g.rstrong[name] = make(map[string]struct{})
		g.rweak[name] = make(map[string]struct{})
	}
	for name, ds := range deps {
		for dep := range ds.Strong {
			if _, known := g.strong[dep]; !known {
				continue
			}
			g.strong[name][dep] = struct{}{}
			g.rstrong[dep][name] = struct{}{}
		}
		for dep := range ds.Weak {
			if _, known := g.weak[dep]; !known {
				continue
			}
			g.weak[name][dep] = struct{}{}
			g.rweak[dep][name] = struct{}{}
		}
	}
	return g
}

// Len returns the number of unresolved nodes.
func (g *Graph) Len() int {
	return len(g.strong)
}

// Has reports whether name is still unresolved.
func (g *Graph) Has(name string) bool {
	_, ok := g.strong[name]
	return ok
}

// Names returns the unresolved node names, sorted.
func (g *Graph) Names() []string {
	out := make([]string, 0, len(g.strong))
	for name := range g.strong {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Remove resolves a node: it disappears both as a node and as a dependency
// target of every other node.
func (g *Graph) Remove(name string) {
	for dep := range g.strong[name] {
		delete(g.rstrong[dep], name)
	}
	for dep := range g.weak[name] {
		delete(g.rweak[dep], name)
	}
	for dependent := range g.rstrong[name] {
		delete(g.strong[dependent], name)
	}
	for dependent := range g.rweak[name] {
		delete(g.weak[dependent], name)
	}
	delete(g.strong, name)
	delete(g.weak, name)
	delete(g.rstrong, name)
	delete(g.rweak, name)
}

// ClearWeakTarget removes name from every weak dependency set while leaving
// the node and all strong edges in place. This is the forward-declaration
// effect: weak dependents are satisfied, strong obligations remain.
func (g *Graph) ClearWeakTarget(name string) {
	for dependent := range g.rweak[name] {
		delete(g.weak[dependent], name)
	}
	g.rweak[name] = make(map[string]struct{})
}

// Remaining snapshots the unresolved nodes with their residual dependency
// sets, for cycle error reporting.
func (g *Graph) Remaining() map[string]DepSet {
	out := make(map[string]DepSet, len(g.strong))
	for name := range g.strong {
		ds := NewDepSet()
		for dep := range g.strong[name] {
			ds.Strong[dep] = struct{}{}
		}
		for dep := range g.weak[name] {
			ds.Weak[dep] = struct{}{}
		}
		out[name] = ds
	}
	return out
}
