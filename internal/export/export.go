// Package export orchestrates one type export: it expands the requested
// name selection, classifies dependencies, runs the resolver and feeds the
// resulting plan through the emitter, reporting progress and honoring
// cooperative cancellation between discrete units of work.
package export

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jordan9001/ctypes-export/internal/ctypes"
	"github.com/jordan9001/ctypes-export/internal/depgraph"
	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/typedb"
	"github.com/jordan9001/ctypes-export/internal/types"
)

const defaultMaxDiagnostics = 100

// Request describes one export.
type Request struct {
	// Names holds literal type names and/or glob patterns.
	Names []string
	// IncludeDeps pulls every transitively reachable dependency into the
	// export set. When false, dependencies outside the selection are left
	// unresolved and the caller must ensure completeness.
	IncludeDeps bool
	// DebugOnly restricts lookups and glob expansion to debug parsers.
	DebugOnly bool
	// SizeAsserts emits a sizeof assertion after each struct/union body.
	SizeAsserts bool
	// Prefix is prepended to every generated top-level type name.
	Prefix string
	// MaxDiagnostics caps the diagnostic bag (default 100).
	MaxDiagnostics int
	// Progress receives per-type events; may be nil.
	Progress ProgressSink
}

// Result is the outcome of a successful export.
type Result struct {
	// Text is the complete Python artifact.
	Text string
	// Selected is the expanded, sorted requested set (before dependency
	// closure).
	Selected []string
	// Order is the emission plan the text was produced from.
	Order []depgraph.OrderEntry
	// Bag collects recoverable diagnostics.
	Bag *diag.Bag
	// Timings records per-stage durations.
	Timings Timings
}

// Run performs the export. Fatal errors abort the whole export and no
// partial artifact is returned.
func Run(ctx context.Context, src *typedb.Source, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing export request")
	}
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	res := &Result{Bag: diag.NewBag(maxDiag)}
	// Один и тот же тип ищется по разу на каждое упоминание в полях;
	// без дедупликации одно неоднозначное имя забивает весь Bag.
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})
	lookup := lookupFunc(src, req.DebugOnly, rep)

	// select
	started := time.Now()
	selected, err := ExpandSelection(src, req.Names, req.DebugOnly, rep)
	if err != nil {
		return nil, err
	}
	res.Selected = selected
	res.Timings.Set(StageSelect, time.Since(started))
	emitQueued(req.Progress, selected)

	// classify
	started = time.Now()
	nodes, deps, err := classifyAll(ctx, lookup, selected, req)
	if err != nil {
		return nil, err
	}
	res.Timings.Set(StageClassify, time.Since(started))

	// resolve
	started = time.Now()
	stageEvent(req.Progress, StageResolve, StatusWorking, nil)
	order, err := depgraph.Resolve(depgraph.BuildGraph(deps), nodes)
	if err != nil {
		stageEvent(req.Progress, StageResolve, StatusError, err)
		return nil, err
	}
	res.Order = order
	res.Timings.Set(StageResolve, time.Since(started))
	stageEvent(req.Progress, StageResolve, StatusDone, nil)

	// emit
	started = time.Now()
	text, err := emitAll(ctx, lookup, nodes, order, req, rep)
	if err != nil {
		return nil, err
	}
	res.Text = text
	res.Timings.Set(StageEmit, time.Since(started))

	return res, nil
}

// ExpandSelection resolves the requested names into a sorted set of
// registered type names. Entries containing glob metacharacters are matched
// against the enumerable name set; a literal or a pattern that resolves to
// nothing is fatal.
func ExpandSelection(src *typedb.Source, names []string, debugOnly bool, rep diag.Reporter) ([]string, error) {
	scope := typedb.ScopeAll
	if debugOnly {
		scope = typedb.ScopeDebugOnly
	}
	lookup := lookupFunc(src, debugOnly, rep)

	seen := make(map[string]struct{})
	var known []string // enumerated lazily, globs only
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if !strings.ContainsAny(name, "*?[") {
			if _, ok := lookup(name); !ok {
				return nil, &typedb.NotFoundError{Name: name}
			}
			seen[name] = struct{}{}
			continue
		}
		if known == nil {
			known = src.Names(scope)
		}
		matched := false
		for _, candidate := range known {
			ok, err := path.Match(name, candidate)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", name, err)
			}
			if ok {
				seen[candidate] = struct{}{}
				matched = true
			}
		}
		if !matched {
			return nil, &typedb.NotFoundError{Name: name}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// classifyAll walks the selection (and, when requested, its transitive
// closure), producing the node table and per-name dependency sets. One
// cancellation checkpoint per type.
func classifyAll(ctx context.Context, lookup ctypes.Lookup, selected []string, req *Request) (map[string]*types.Type, map[string]depgraph.DepSet, error) {
	nodes := make(map[string]*types.Type, len(selected))
	deps := make(map[string]depgraph.DepSet, len(selected))

	worklist := append([]string(nil), selected...)
	for i := 0; i < len(worklist); i++ {
		name := worklist[i]
		if _, done := nodes[name]; done {
			continue
		}
		if err := checkpoint(ctx); err != nil {
			return nil, nil, err
		}
		typeEvent(req.Progress, name, StageClassify, StatusWorking, nil)

		node, ok := lookup(name)
		if !ok {
			err := &typedb.NotFoundError{Name: name}
			typeEvent(req.Progress, name, StageClassify, StatusError, err)
			return nil, nil, err
		}
		ds, err := depgraph.Classify(node)
		if err != nil {
			typeEvent(req.Progress, name, StageClassify, StatusError, err)
			return nil, nil, err
		}
		nodes[name] = node
		deps[name] = ds
		if req.IncludeDeps {
			worklist = append(worklist, ds.Names()...)
		}
		typeEvent(req.Progress, name, StageClassify, StatusDone, nil)
	}

	if !req.IncludeDeps {
		allowed := make(map[string]struct{}, len(nodes))
		for name := range nodes {
			allowed[name] = struct{}{}
		}
		for name, ds := range deps {
			deps[name] = ds.Restrict(allowed)
		}
	}
	return nodes, deps, nil
}

// emitAll renders the plan into the final artifact text. One cancellation
// checkpoint per entry.
func emitAll(ctx context.Context, lookup ctypes.Lookup, nodes map[string]*types.Type, order []depgraph.OrderEntry, req *Request, rep diag.Reporter) (string, error) {
	emitter := ctypes.NewEmitter(lookup, req.Prefix, req.SizeAsserts, rep)

	blocks := make([]string, 0, len(order))
	for _, entry := range order {
		if err := checkpoint(ctx); err != nil {
			return "", err
		}
		typeEvent(req.Progress, entry.Name, StageEmit, StatusWorking, nil)
		block, err := emitter.EmitEntry(entry.Name, nodes[entry.Name], entry.Kind)
		if err != nil {
			typeEvent(req.Progress, entry.Name, StageEmit, StatusError, err)
			return "", err
		}
		blocks = append(blocks, block)
		typeEvent(req.Progress, entry.Name, StageEmit, StatusDone, nil)
	}

	var b strings.Builder
	b.WriteString("# Generated by ctypes-export\n")
	fmt.Fprintf(&b, "# requested types: %s\n", strings.Join(req.Names, ", "))
	b.WriteString("\nimport ctypes\n")
	if emitter.NeedsEnum() {
		b.WriteString("import enum\n")
	}
	for _, block := range blocks {
		b.WriteByte('\n')
		b.WriteString(block)
	}
	return b.String(), nil
}

func lookupFunc(src *typedb.Source, debugOnly bool, rep diag.Reporter) ctypes.Lookup {
	if debugOnly {
		return func(name string) (*types.Type, bool) {
			return src.LookupDebug(name, rep)
		}
	}
	return src.Lookup
}

// checkpoint is the cooperative cancellation point between units of work.
func checkpoint(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("export cancelled: %w", ctx.Err())
	default:
		return nil
	}
}

func emitQueued(sink ProgressSink, names []string) {
	if sink == nil {
		return
	}
	for _, name := range names {
		sink.OnEvent(Event{TypeName: name, Stage: StageSelect, Status: StatusQueued})
	}
}

func typeEvent(sink ProgressSink, name string, stage Stage, status Status, err error) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{TypeName: name, Stage: stage, Status: status, Err: err})
}

func stageEvent(sink ProgressSink, stage Stage, status Status, err error) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err})
}
