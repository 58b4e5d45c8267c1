package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jordan9001/ctypes-export/internal/depgraph"
	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/testkit"
	"github.com/jordan9001/ctypes-export/internal/typedb"
	"github.com/jordan9001/ctypes-export/internal/types"
)

func linkedListSource() *typedb.Source {
	color := types.MakeEnum("color_t", 4, []types.EnumValue{
		{Name: "RED", Value: 0},
		{Name: "GREEN", Value: 1},
		{Name: "BLUE", Value: 2},
	})
	point := types.MakeStruct("point_t", 12, []types.Member{
		{Name: "x", Offset: 0, Type: types.MakeInt(4, true)},
		{Name: "y", Offset: 4, Type: types.MakeInt(4, true)},
		{Name: "color", Offset: 8, Type: types.MakeNamedRef("color_t", 4)},
	})
	node := types.MakeStruct("node_t", 24, []types.Member{
		{Name: "pt", Offset: 0, Type: types.MakeNamedRef("point_t", 12)},
		{Name: "next", Offset: 16, Type: types.MakePointer(types.MakeNamedRef("node_t", 24), 8)},
	})
	return typedb.NewSource(8, []typedb.Provider{
		{Name: "", Types: map[string]*types.Type{
			"color_t": color,
			"point_t": point,
			"node_t":  node,
		}},
	})
}

func TestRunLinkedListGolden(t *testing.T) {
	res, err := Run(context.Background(), linkedListSource(), &Request{
		Names:       []string{"node_t"},
		IncludeDeps: true,
		SizeAsserts: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	goldenPath := filepath.Join("testdata", "linked_list.py")
	want, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if res.Text != string(want) {
		t.Fatalf("artifact mismatch:\n--- got ---\n%s\n--- want ---\n%s", res.Text, want)
	}

	if res.Bag.HasWarnings() {
		t.Fatalf("unexpected diagnostics: %d", res.Bag.Len())
	}
	if !res.Timings.Has(StageResolve) || !res.Timings.Has(StageEmit) {
		t.Fatalf("stage timings missing")
	}
}

func TestRunOrderSatisfiesInvariants(t *testing.T) {
	src := linkedListSource()
	res, err := Run(context.Background(), src, &Request{
		Names:       []string{"*_t"},
		IncludeDeps: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	deps := make(map[string]depgraph.DepSet)
	for _, name := range res.Selected {
		node, _ := src.Lookup(name)
		ds, err := depgraph.Classify(node)
		if err != nil {
			t.Fatalf("classify %s: %v", name, err)
		}
		deps[name] = ds
	}
	if err := testkit.CheckOrderInvariants(res.Order, deps); err != nil {
		t.Fatalf("order invariants: %v", err)
	}
}

func TestExpandSelectionGlobs(t *testing.T) {
	src := linkedListSource()

	got, err := ExpandSelection(src, []string{"node*", "point_t"}, false, nil)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(got) != 2 || got[0] != "node_t" || got[1] != "point_t" {
		t.Fatalf("selection = %v", got)
	}

	if _, err := ExpandSelection(src, []string{"missing_t"}, false, nil); err == nil {
		t.Fatalf("literal miss must be fatal")
	}
	var notFound *typedb.NotFoundError
	_, err = ExpandSelection(src, []string{"zz*"}, false, nil)
	if !errors.As(err, &notFound) || notFound.Name != "zz*" {
		t.Fatalf("empty glob: err = %v", err)
	}
}

func TestRunMissingDependencyFatal(t *testing.T) {
	orphan := types.MakeStruct("orphan_t", 8, []types.Member{
		{Name: "gone", Offset: 0, Type: types.MakeNamedRef("gone_t", 8)},
	})
	src := typedb.NewSource(8, []typedb.Provider{
		{Name: "", Types: map[string]*types.Type{"orphan_t": orphan}},
	})

	_, err := Run(context.Background(), src, &Request{
		Names:       []string{"orphan_t"},
		IncludeDeps: true,
	})
	var notFound *typedb.NotFoundError
	if !errors.As(err, &notFound) || notFound.Name != "gone_t" {
		t.Fatalf("err = %v, want NotFoundError for gone_t", err)
	}
}

func TestRunRestrictedSelectionSkipsOutsideDeps(t *testing.T) {
	src := linkedListSource()
	res, err := Run(context.Background(), src, &Request{
		Names:       []string{"point_t"},
		IncludeDeps: false,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Order) != 1 || res.Order[0].Name != "point_t" || res.Order[0].Kind != depgraph.DefFull {
		t.Fatalf("order = %v", res.Order)
	}
	// color_t stays undefined: the caller promised completeness elsewhere
	if strings.Contains(res.Text, "class color_t") {
		t.Fatalf("restricted export pulled in a dependency:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, `("color", color_t_raw),`) {
		t.Fatalf("reference to outside dependency lost:\n%s", res.Text)
	}
}

func TestRunStrongCycleFatal(t *testing.T) {
	a := types.MakeStruct("a_t", 8, []types.Member{
		{Name: "b", Offset: 0, Type: types.MakeNamedRef("b_t", 8)},
	})
	b := types.MakeStruct("b_t", 8, []types.Member{
		{Name: "a", Offset: 0, Type: types.MakeNamedRef("a_t", 8)},
	})
	src := typedb.NewSource(8, []typedb.Provider{
		{Name: "", Types: map[string]*types.Type{"a_t": a, "b_t": b}},
	})

	_, err := Run(context.Background(), src, &Request{
		Names:       []string{"a_t"},
		IncludeDeps: true,
	})
	var cycle *depgraph.StrongCycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want StrongCycleError", err)
	}
}

func TestRunCancelledBeforeWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, linkedListSource(), &Request{
		Names:       []string{"node_t"},
		IncludeDeps: true,
	})
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunWarnsAmbiguousDebugTypeOnce(t *testing.T) {
	holder := types.MakeStruct("holder_t", 16, []types.Member{
		{Name: "a", Offset: 0, Type: types.MakeNamedRef("dup_t", 4)},
		{Name: "b", Offset: 4, Type: types.MakeNamedRef("dup_t", 4)},
		{Name: "c", Offset: 8, Type: types.MakeNamedRef("dup_t", 4)},
		{Name: "d", Offset: 12, Type: types.MakeNamedRef("dup_t", 4)},
	})
	src := typedb.NewSource(8, []typedb.Provider{
		{Name: "dwarf", Types: map[string]*types.Type{
			"holder_t": holder,
			"dup_t":    types.MakeInt(4, true),
		}},
		{Name: "pdb", Types: map[string]*types.Type{
			"dup_t": types.MakeInt(4, false),
		}},
	})

	res, err := Run(context.Background(), src, &Request{
		Names:          []string{"holder_t"},
		IncludeDeps:    true,
		DebugOnly:      true,
		MaxDiagnostics: 4,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// каждое из четырёх полей ищет dup_t заново, предупреждение — одно
	ambiguous := 0
	for _, d := range res.Bag.Items() {
		if d.Code == diag.DBAmbiguousProvider {
			ambiguous++
		}
	}
	if ambiguous != 1 {
		t.Fatalf("ambiguity warnings = %d, want exactly 1: %s",
			ambiguous, diag.FormatGolden(res.Bag.Items(), false))
	}
	if res.Bag.Len() >= int(res.Bag.Cap()) {
		t.Fatalf("bag exhausted by duplicates: len=%d cap=%d", res.Bag.Len(), res.Bag.Cap())
	}
}

type recordingSink struct {
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.events = append(s.events, evt)
}

func TestRunProgressEvents(t *testing.T) {
	sink := &recordingSink{}
	_, err := Run(context.Background(), linkedListSource(), &Request{
		Names:       []string{"node_t"},
		IncludeDeps: true,
		Progress:    sink,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	classified := make(map[string]bool)
	emitted := 0
	for _, evt := range sink.events {
		if evt.Stage == StageClassify && evt.Status == StatusDone {
			classified[evt.TypeName] = true
		}
		if evt.Stage == StageEmit && evt.Status == StatusDone {
			emitted++
		}
	}
	for _, name := range []string{"node_t", "point_t", "color_t"} {
		if !classified[name] {
			t.Fatalf("no classify event for %s: %v", name, sink.events)
		}
	}
	// color_t, point_t full + node_t forward/part
	if emitted != 4 {
		t.Fatalf("emit events = %d, want 4", emitted)
	}
}
