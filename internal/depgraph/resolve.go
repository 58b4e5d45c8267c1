package depgraph

import (
	"math"

	"github.com/jordan9001/ctypes-export/internal/types"
)

// DefinitionKind tells the emitter what to produce for one order entry.
type DefinitionKind uint8

const (
	// DefFull is a complete, self-contained definition.
	DefFull DefinitionKind = iota
	// DefForwardStruct is an empty struct/union shell other types can
	// point at before the real body exists.
	DefForwardStruct
	// DefForwardOther is a width-matched stand-in for a non-struct kind.
	DefForwardOther
	// DefPart fills in the real contents of a previously forward-declared
	// name.
	DefPart
)

func (k DefinitionKind) String() string {
	switch k {
	case DefFull:
		return "full"
	case DefForwardStruct:
		return "forward-struct"
	case DefForwardOther:
		return "forward-other"
	case DefPart:
		return "part"
	}
	return "unknown"
}

// Forward reports whether the entry kind is a forward declaration.
func (k DefinitionKind) Forward() bool {
	return k == DefForwardStruct || k == DefForwardOther
}

// OrderEntry is one step of the emission plan.
type OrderEntry struct {
	Name string
	Kind DefinitionKind
}

// Resolve consumes the graph and produces the total emission order. Each
// round either resolves a dependency-free name (FULL, or PART if it was
// forward-declared earlier), short-circuits a pure weak self-cycle, or
// forward-declares one name to break a weak cycle. Forward declaration
// clears the name as a weak target only, so every forced round strictly
// reduces the number of remaining weak edges and the loop terminates. When
// no forward candidate is left and nodes remain, the residue is a genuine
// strong cycle and the export cannot proceed.
//
// The graph is destroyed in the process. nodes supplies the underlying
// kinds for choosing between struct and non-struct forward forms.
func Resolve(g *Graph, nodes map[string]*types.Type) ([]OrderEntry, error) {
	order := make([]OrderEntry, 0, g.Len())
	forwarded := make(map[string]bool)

	for g.Len() > 0 {
		if name, ok := nextReady(g); ok {
			kind := DefFull
			if forwarded[name] {
				kind = DefPart
			}
			order = append(order, OrderEntry{Name: name, Kind: kind})
			g.Remove(name)
			continue
		}

		if name, ok := nextWeakSelfOnly(g); ok {
			order = append(order,
				OrderEntry{Name: name, Kind: forwardKind(name, nodes)},
				OrderEntry{Name: name, Kind: DefPart},
			)
			g.Remove(name)
			continue
		}

		name, ok := pickForward(g, nodes, forwarded)
		if !ok {
			return nil, &StrongCycleError{Remaining: g.Remaining()}
		}
		order = append(order, OrderEntry{Name: name, Kind: forwardKind(name, nodes)})
		forwarded[name] = true
		g.ClearWeakTarget(name)
	}

	return order, nil
}

// nextReady returns the smallest name with no remaining dependencies.
func nextReady(g *Graph) (string, bool) {
	best := ""
	for name := range g.strong {
		if len(g.strong[name]) != 0 || len(g.weak[name]) != 0 {
			continue
		}
		if best == "" || name < best {
			best = name
		}
	}
	return best, best != ""
}

// nextWeakSelfOnly returns the smallest name whose sole remaining
// dependency is a weak edge to itself.
func nextWeakSelfOnly(g *Graph) (string, bool) {
	best := ""
	for name := range g.strong {
		if len(g.strong[name]) != 0 || len(g.weak[name]) != 1 {
			continue
		}
		if _, self := g.weak[name][name]; !self {
			continue
		}
		if best == "" || name < best {
			best = name
		}
	}
	return best, best != ""
}

// forwardKind picks the forward form from the underlying kind, following
// named references until a concrete kind or a reference cycle.
func forwardKind(name string, nodes map[string]*types.Type) DefinitionKind {
	seen := make(map[string]struct{})
	node := nodes[name]
	for node != nil && node.Kind == types.KindNamedRef {
		if _, dup := seen[node.Ref]; dup {
			return DefForwardOther
		}
		seen[node.Ref] = struct{}{}
		node = nodes[node.Ref]
	}
	if node != nil && node.Kind.Composite() {
		return DefForwardStruct
	}
	return DefForwardOther
}

// forwardScore orders forced-forward candidates. Lower compares better on
// every field; rweak is stored negated so that more weak dependents win.
// The exact tie-break order biases toward unblocking the most follow-on
// work, it is not load-bearing for correctness.
type forwardScore struct {
	kindRank  int // 0 for struct/union, 1 otherwise
	readiness int // smallest weak count some dependent would be left with
	rweak     int // negated count of weak dependents
	strong    int // own strong dependencies
	rstrong   int // strong dependents
	weak      int // own weak dependencies
}

func (a forwardScore) less(b forwardScore) bool {
	if a.kindRank != b.kindRank {
		return a.kindRank < b.kindRank
	}
	if a.readiness != b.readiness {
		return a.readiness < b.readiness
	}
	if a.rweak != b.rweak {
		return a.rweak < b.rweak
	}
	if a.strong != b.strong {
		return a.strong < b.strong
	}
	if a.rstrong != b.rstrong {
		return a.rstrong < b.rstrong
	}
	return a.weak < b.weak
}

// pickForward selects the next name to forward-declare among the
// not-yet-forwarded nodes. Ties after the full score fall back to the
// lexicographically smallest name so the order stays deterministic.
func pickForward(g *Graph, nodes map[string]*types.Type, forwarded map[string]bool) (string, bool) {
	bestName := ""
	var bestScore forwardScore

	for _, name := range g.Names() {
		if forwarded[name] {
			continue
		}
		score := forwardScore{
			kindRank:  1,
			readiness: math.MaxInt,
			rweak:     -len(g.rweak[name]),
			strong:    len(g.strong[name]),
			rstrong:   len(g.rstrong[name]),
			weak:      len(g.weak[name]),
		}
		if forwardKind(name, nodes) == DefForwardStruct {
			score.kindRank = 0
		}
		for dependent := range g.rweak[name] {
			if left := len(g.weak[dependent]) - 1; left < score.readiness {
				score.readiness = left
			}
		}
		if bestName == "" || score.less(bestScore) {
			bestName = name
			bestScore = score
		}
	}

	return bestName, bestName != ""
}
