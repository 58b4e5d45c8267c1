package depgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jordan9001/ctypes-export/internal/types"
)

func buildFor(t *testing.T, nodes map[string]*types.Type) *Graph {
	t.Helper()
	deps := make(map[string]DepSet, len(nodes))
	for name, node := range nodes {
		ds, err := Classify(node)
		if err != nil {
			t.Fatalf("classify %s: %v", name, err)
		}
		deps[name] = ds
	}
	return BuildGraph(deps)
}

func wantEntries(t *testing.T, got []OrderEntry, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", entryStrings(got), want)
	}
	for i, entry := range got {
		if s := entry.Name + ":" + entry.Kind.String(); s != want[i] {
			t.Fatalf("order[%d] = %q, want %q (full order %v)", i, s, want[i], entryStrings(got))
		}
	}
}

func entryStrings(order []OrderEntry) []string {
	out := make([]string, len(order))
	for i, entry := range order {
		out[i] = entry.Name + ":" + entry.Kind.String()
	}
	return out
}

func TestResolvePointerAliasNeedsNoForwards(t *testing.T) {
	x := types.MakeStruct("x_t", 4, []types.Member{
		{Name: "value", Offset: 0, Type: types.MakeInt(4, true)},
	})
	nodes := map[string]*types.Type{
		"x_t":   x,
		"x_ptr": types.MakePointer(types.MakeNamedRef("x_t", 4), 8),
	}

	order, err := Resolve(buildFor(t, nodes), nodes)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	wantEntries(t, order, "x_t:full", "x_ptr:full")
}

func TestResolveMutualPointersSingleForward(t *testing.T) {
	nodes := map[string]*types.Type{
		"a_t": types.MakeStruct("a_t", 8, []types.Member{
			{Name: "other", Offset: 0, Type: types.MakePointer(types.MakeNamedRef("b_t", 8), 8)},
		}),
		"b_t": types.MakeStruct("b_t", 8, []types.Member{
			{Name: "other", Offset: 0, Type: types.MakePointer(types.MakeNamedRef("a_t", 8), 8)},
		}),
	}

	order, err := Resolve(buildFor(t, nodes), nodes)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// ровно одна forward/part пара, второй тип закрывается сразу
	wantEntries(t, order, "a_t:forward-struct", "b_t:full", "a_t:part")
}

func TestResolveSelfPointerShortcut(t *testing.T) {
	nodes := map[string]*types.Type{
		"list_t": types.MakeStruct("list_t", 8, []types.Member{
			{Name: "next", Offset: 0, Type: types.MakePointer(types.MakeNamedRef("list_t", 8), 8)},
		}),
	}

	order, err := Resolve(buildFor(t, nodes), nodes)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	wantEntries(t, order, "list_t:forward-struct", "list_t:part")
}

func TestResolveStrongCycleFatal(t *testing.T) {
	nodes := map[string]*types.Type{
		"a_t": types.MakeStruct("a_t", 8, []types.Member{
			{Name: "b", Offset: 0, Type: types.MakeNamedRef("b_t", 8)},
		}),
		"b_t": types.MakeStruct("b_t", 8, []types.Member{
			{Name: "a", Offset: 0, Type: types.MakeNamedRef("a_t", 8)},
		}),
	}

	_, err := Resolve(buildFor(t, nodes), nodes)
	if err == nil {
		t.Fatalf("expected strong cycle error")
	}
	var cycle *StrongCycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("error = %v, want StrongCycleError", err)
	}
	names := cycle.Names()
	if len(names) != 2 || names[0] != "a_t" || names[1] != "b_t" {
		t.Fatalf("cycle names = %v, want [a_t b_t]", names)
	}
	if !cycle.Remaining["a_t"].Has("b_t") {
		t.Fatalf("residual deps for a_t lost: %v", cycle.Remaining["a_t"].Names())
	}
}

func TestResolvePureSelfEmbeddingFatal(t *testing.T) {
	nodes := map[string]*types.Type{
		"s_t": types.MakeStruct("s_t", 8, []types.Member{
			{Name: "inner", Offset: 0, Type: types.MakeNamedRef("s_t", 8)},
		}),
	}

	_, err := Resolve(buildFor(t, nodes), nodes)
	var cycle *StrongCycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("error = %v, want StrongCycleError", err)
	}
	if names := cycle.Names(); len(names) != 1 || names[0] != "s_t" {
		t.Fatalf("cycle names = %v, want [s_t]", names)
	}
}

func TestResolveAcyclicNeedsNoForwards(t *testing.T) {
	leaf := types.MakeStruct("leaf_t", 4, []types.Member{
		{Name: "v", Offset: 0, Type: types.MakeInt(4, true)},
	})
	nodes := map[string]*types.Type{
		"leaf_t": leaf,
		"mid_a":  types.MakeStruct("mid_a", 4, []types.Member{{Name: "l", Offset: 0, Type: types.MakeNamedRef("leaf_t", 4)}}),
		"mid_b": types.MakeStruct("mid_b", 8, []types.Member{
			{Name: "p", Offset: 0, Type: types.MakePointer(types.MakeNamedRef("leaf_t", 4), 8)},
		}),
		"top_t": types.MakeStruct("top_t", 16, []types.Member{
			{Name: "a", Offset: 0, Type: types.MakeNamedRef("mid_a", 4)},
			{Name: "b", Offset: 8, Type: types.MakePointer(types.MakeNamedRef("mid_b", 8), 8)},
		}),
	}

	order, err := Resolve(buildFor(t, nodes), nodes)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("order = %v, want 4 full entries", entryStrings(order))
	}
	pos := make(map[string]int, len(order))
	for i, entry := range order {
		if entry.Kind != DefFull {
			t.Fatalf("acyclic graph produced %v", entryStrings(order))
		}
		pos[entry.Name] = i
	}
	if pos["leaf_t"] > pos["mid_a"] || pos["mid_a"] > pos["top_t"] {
		t.Fatalf("strong dependencies out of order: %v", entryStrings(order))
	}
}

func TestResolveMixedStrongWeakCycle(t *testing.T) {
	nodes := map[string]*types.Type{
		"a_t": types.MakeStruct("a_t", 8, []types.Member{
			{Name: "p", Offset: 0, Type: types.MakeNamedRef("t_ptr", 8)},
		}),
		"t_ptr": types.MakePointer(types.MakeNamedRef("a_t", 8), 8),
	}

	order, err := Resolve(buildFor(t, nodes), nodes)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	wantEntries(t, order, "a_t:forward-struct", "t_ptr:full", "a_t:part")
}

func TestResolveWeakRingTerminates(t *testing.T) {
	const ringLen = 12
	nodes := make(map[string]*types.Type, ringLen)
	for i := 0; i < ringLen; i++ {
		next := fmt.Sprintf("ring%02d", (i+1)%ringLen)
		name := fmt.Sprintf("ring%02d", i)
		nodes[name] = types.MakeStruct(name, 8, []types.Member{
			{Name: "next", Offset: 0, Type: types.MakePointer(types.MakeNamedRef(next, 8), 8)},
		})
	}

	order, err := Resolve(buildFor(t, nodes), nodes)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// одна forward/part пара + по одному full на остальные узлы кольца
	if len(order) != ringLen+1 {
		t.Fatalf("order has %d entries, want %d: %v", len(order), ringLen+1, entryStrings(order))
	}
	forwards, parts := 0, 0
	for _, entry := range order {
		if entry.Kind.Forward() {
			forwards++
		}
		if entry.Kind == DefPart {
			parts++
		}
	}
	if forwards != 1 || parts != 1 {
		t.Fatalf("forwards = %d, parts = %d, want exactly one each: %v", forwards, parts, entryStrings(order))
	}
}

func TestResolveDeterministicOrder(t *testing.T) {
	build := func() map[string]*types.Type {
		return map[string]*types.Type{
			"a_t": types.MakeStruct("a_t", 8, []types.Member{
				{Name: "b", Offset: 0, Type: types.MakePointer(types.MakeNamedRef("b_t", 8), 8)},
			}),
			"b_t": types.MakeStruct("b_t", 8, []types.Member{
				{Name: "c", Offset: 0, Type: types.MakePointer(types.MakeNamedRef("c_t", 8), 8)},
			}),
			"c_t": types.MakeStruct("c_t", 8, []types.Member{
				{Name: "a", Offset: 0, Type: types.MakePointer(types.MakeNamedRef("a_t", 8), 8)},
			}),
		}
	}

	nodesA := build()
	first, err := Resolve(buildFor(t, nodesA), nodesA)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	for round := 0; round < 5; round++ {
		nodesB := build()
		again, err := Resolve(buildFor(t, nodesB), nodesB)
		if err != nil {
			t.Fatalf("resolve round %d: %v", round, err)
		}
		if len(again) != len(first) {
			t.Fatalf("round %d order %v differs from %v", round, entryStrings(again), entryStrings(first))
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("round %d order %v differs from %v", round, entryStrings(again), entryStrings(first))
			}
		}
	}
}

func TestGraphEdgesOutsideUniverseDropped(t *testing.T) {
	deps := map[string]DepSet{
		"a_t": {Strong: map[string]struct{}{"missing_t": {}}, Weak: map[string]struct{}{}},
	}
	g := BuildGraph(deps)
	if g.Len() != 1 || !g.Has("a_t") {
		t.Fatalf("graph nodes = %v", g.Names())
	}
	remaining := g.Remaining()
	if remaining["a_t"].Has("missing_t") {
		t.Fatalf("edge to unknown name survived: %v", remaining["a_t"].Names())
	}
}

func TestGraphClearWeakTargetKeepsStrong(t *testing.T) {
	deps := map[string]DepSet{
		"a_t": {Strong: map[string]struct{}{}, Weak: map[string]struct{}{"b_t": {}}},
		"c_t": {Strong: map[string]struct{}{"b_t": {}}, Weak: map[string]struct{}{}},
		"b_t": NewDepSet(),
	}
	g := BuildGraph(deps)

	g.ClearWeakTarget("b_t")
	remaining := g.Remaining()
	if remaining["a_t"].Has("b_t") {
		t.Fatalf("weak edge a_t->b_t survived clear")
	}
	if !remaining["c_t"].Has("b_t") {
		t.Fatalf("strong edge c_t->b_t lost by weak clear")
	}
	if !g.Has("b_t") {
		t.Fatalf("b_t removed by ClearWeakTarget")
	}

	g.Remove("b_t")
	remaining = g.Remaining()
	if remaining["c_t"].Has("b_t") {
		t.Fatalf("strong edge c_t->b_t survived Remove")
	}
	if g.Has("b_t") || g.Len() != 2 {
		t.Fatalf("Remove left graph in state %v", g.Names())
	}
}
