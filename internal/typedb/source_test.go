package typedb

import (
	"strings"
	"testing"

	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/types"
)

func twoParserSource() *Source {
	return NewSource(8, []Provider{
		{Name: "", Types: map[string]*types.Type{
			"reg_t": types.MakeInt(4, false),
		}},
		{Name: "pdb", Types: map[string]*types.Type{
			"shared_t": types.MakeInt(8, false),
			"pdb_only": types.MakeBool(),
		}},
		{Name: "dwarf", Types: map[string]*types.Type{
			"shared_t": types.MakeInt(4, false),
		}},
	})
}

func TestLookupPrefersBinaryRegistry(t *testing.T) {
	src := twoParserSource()
	got, ok := src.Lookup("reg_t")
	if !ok || got.Kind != types.KindInt {
		t.Fatalf("reg_t = %+v", got)
	}
	if _, ok := src.Lookup("nope_t"); ok {
		t.Fatalf("unknown name resolved")
	}
}

func TestLookupDebugWarnsOnAmbiguity(t *testing.T) {
	src := twoParserSource()
	bag := diag.NewBag(8)

	got, ok := src.LookupDebug("shared_t", diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("shared_t not found")
	}
	// dwarf sorts before pdb, so its 4-byte definition wins
	if got.Width != 4 {
		t.Fatalf("winner width = %d, want dwarf's 4", got.Width)
	}
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %v", diag.FormatGolden(bag.Items(), false))
	}
	d := bag.Items()[0]
	if d.Code != diag.DBAmbiguousProvider || !strings.Contains(d.Message, "dwarf, pdb") {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestLookupDebugSkipsBinaryRegistry(t *testing.T) {
	src := twoParserSource()
	if _, ok := src.LookupDebug("reg_t", nil); ok {
		t.Fatalf("registry type visible through debug scope")
	}
	if _, ok := src.LookupDebug("pdb_only", nil); !ok {
		t.Fatalf("single-parser debug type not found")
	}
}

func TestNamesScopes(t *testing.T) {
	src := twoParserSource()

	all := src.Names(ScopeAll)
	if len(all) != 3 || all[0] != "pdb_only" || all[1] != "reg_t" || all[2] != "shared_t" {
		t.Fatalf("all names = %v", all)
	}

	dbg := src.Names(ScopeDebugOnly)
	if len(dbg) != 2 || dbg[0] != "pdb_only" || dbg[1] != "shared_t" {
		t.Fatalf("debug names = %v", dbg)
	}
}
