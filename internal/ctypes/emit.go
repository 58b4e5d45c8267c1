package ctypes

import (
	"fmt"
	"slices"
	"strings"

	"fortio.org/safecast"

	"github.com/jordan9001/ctypes-export/internal/depgraph"
	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/layout"
	"github.com/jordan9001/ctypes-export/internal/types"
)

// Lookup resolves a registered name to its descriptor node. The emitter
// never falls back to a wider search: an absent name yields an opaque
// stand-in plus a warning, completeness is the orchestrator's job.
type Lookup func(name string) (*types.Type, bool)

// Emitter renders resolver order entries into Python ctypes declarations.
// One emitter serves one export; it accumulates nothing across entries
// except whether an enum definition was produced (the caller needs that to
// decide on the enum import).
type Emitter struct {
	lookup      Lookup
	prefix      string
	sizeAsserts bool
	rep         diag.Reporter
	needsEnum   bool
	shells      map[string]struct{} // names forwarded as class shells
}

func NewEmitter(lookup Lookup, prefix string, sizeAsserts bool, rep diag.Reporter) *Emitter {
	return &Emitter{
		lookup:      lookup,
		prefix:      prefix,
		sizeAsserts: sizeAsserts,
		rep:         rep,
		shells:      make(map[string]struct{}),
	}
}

// NeedsEnum reports whether any emitted entry defined an IntEnum class.
func (e *Emitter) NeedsEnum() bool {
	return e.needsEnum
}

// EmitEntry renders one order entry. The returned text contains any
// anonymous nested definitions first, then the entry's own declaration,
// separated by blank lines and ending without a trailing blank line.
func (e *Emitter) EmitEntry(name string, node *types.Type, kind depgraph.DefinitionKind) (string, error) {
	ident := Identifier(name, e.prefix)
	switch kind {
	case depgraph.DefForwardStruct:
		base := "ctypes.Structure"
		if u := e.underlying(node); u != nil && u.Kind == types.KindUnion {
			base = "ctypes.Union"
		}
		e.shells[name] = struct{}{}
		return fmt.Sprintf("class %s(%s):\n    _pack_ = 1\n", ident, base), nil
	case depgraph.DefForwardOther:
		return e.emitForwardOther(name, ident, node)
	case depgraph.DefFull:
		return e.emitFull(name, ident, node)
	case depgraph.DefPart:
		return e.emitPart(name, ident, node)
	default:
		return "", fmt.Errorf("type %q: unknown definition kind %s", name, kind)
	}
}

func (e *Emitter) emitFull(name, ident string, node *types.Type) (string, error) {
	if node == nil {
		return "", &types.UnsupportedKindError{TypeName: name, Kind: types.KindInvalid}
	}
	switch node.Kind {
	case types.KindStruct, types.KindUnion:
		return e.emitComposite(name, ident, node, false)
	case types.KindEnum:
		return e.emitEnum(ident, node), nil
	default:
		return e.emitAlias(name, ident, node)
	}
}

// emitPart completes a forward declaration. Only a name forwarded as a
// class shell gets its field list assigned after the fact; a name forwarded
// as a stand-in expression is overwritten with the real definition, даже
// если за цепочкой ссылок стоит структура.
func (e *Emitter) emitPart(name, ident string, node *types.Type) (string, error) {
	if _, shell := e.shells[name]; shell {
		if u := e.underlying(node); u != nil && u.Kind.Composite() {
			return e.emitComposite(name, ident, u, true)
		}
	}
	return e.emitFull(name, ident, node)
}

func (e *Emitter) emitComposite(name, ident string, node *types.Type, part bool) (string, error) {
	var (
		queue     []pending
		anonIndex int
	)
	rc := &renderCtx{parent: ident, queue: &queue, anonIndex: &anonIndex}

	var slots []layout.Slot
	if node.Kind == types.KindUnion {
		slots = layout.FlattenUnion(name, node, e.rep)
	} else {
		slots = layout.FlattenStruct(name, node, e.rep)
	}

	fields := make([]string, 0, len(slots))
	for i, slot := range slots {
		fname, fexpr, err := e.fieldFor(node, rc, slot, i)
		if err != nil {
			return "", err
		}
		fields = append(fields, fmt.Sprintf("        (%q, %s),", fname, fexpr))
	}

	var b strings.Builder
	base := "ctypes.Structure"
	if node.Kind == types.KindUnion {
		base = "ctypes.Union"
	}
	if part {
		fmt.Fprintf(&b, "%s._fields_ = [\n", ident)
		for _, f := range fields {
			b.WriteString(strings.TrimPrefix(f, "    "))
			b.WriteByte('\n')
		}
		b.WriteString("]\n")
	} else {
		fmt.Fprintf(&b, "class %s(%s):\n    _pack_ = 1\n", ident, base)
		if len(fields) == 0 {
			b.WriteString("    _fields_ = []\n")
		} else {
			b.WriteString("    _fields_ = [\n")
			for _, f := range fields {
				b.WriteString(f)
				b.WriteByte('\n')
			}
			b.WriteString("    ]\n")
		}
	}
	if e.sizeAsserts {
		fmt.Fprintf(&b, "assert ctypes.sizeof(%s) == %d\n", ident, node.Width)
	}

	nested, err := e.drainQueue(&queue)
	if err != nil {
		return "", err
	}
	if len(nested) == 0 {
		return b.String(), nil
	}
	return strings.Join(append(nested, b.String()), "\n"), nil
}

// fieldFor renders one flattened slot into a (name, expression) pair.
func (e *Emitter) fieldFor(parent *types.Type, rc *renderCtx, slot layout.Slot, index int) (string, string, error) {
	if slot.Pad() {
		if parent.Kind == types.KindUnion {
			return UnionPadName, padExpr(slot), nil
		}
		return PadName(slot.Offset), padExpr(slot), nil
	}

	byOffset := parent.Kind == types.KindStruct
	var fname string
	switch {
	case slot.Name != "":
		fname = FieldName(slot.Name)
	case byOffset:
		fname = AnonFieldName(true, slot.Offset)
	default:
		idx, err := safecast.Conv[uint64](index)
		if err != nil {
			return "", "", fmt.Errorf("member index overflow: %w", err)
		}
		fname = AnonFieldName(false, idx)
	}

	fexpr, err := e.expr(slot.Type, rc, slot.Offset, byOffset)
	if err != nil {
		return "", "", err
	}
	return fname, fexpr, nil
}

func padExpr(slot layout.Slot) string {
	unit := fmt.Sprintf("ctypes.c_uint%d", uint16(slot.Unit)*8)
	if slot.Count == 1 {
		return unit
	}
	return fmt.Sprintf("%s * %d", unit, slot.Count)
}

// emitEnum renders the IntEnum class plus its width-matched raw alias.
// Values are masked to the declared bit width so negative producers and
// oversized constants collapse onto the storage the enum actually has.
func (e *Emitter) emitEnum(ident string, node *types.Type) string {
	e.needsEnum = true
	var b strings.Builder
	fmt.Fprintf(&b, "class %s(enum.IntEnum):\n", ident)
	if len(node.Variants) == 0 {
		b.WriteString("    pass\n")
	}
	for _, v := range node.Variants {
		fmt.Fprintf(&b, "    %s = %d\n", FieldName(v.Name), maskEnumValue(v.Value, node.Width))
	}
	fmt.Fprintf(&b, "%s_raw = %s\n", ident, intExpr(node.Width, node.Signed))
	return b.String()
}

func maskEnumValue(value, width uint64) uint64 {
	if width == 0 || width >= 8 {
		return value
	}
	bits, err := safecast.Conv[uint](width * 8)
	if err != nil {
		return value
	}
	return value & (1<<bits - 1)
}

// emitAlias renders `ident = expression` for scalar, array, pointer,
// function and named-reference kinds.
func (e *Emitter) emitAlias(name, ident string, node *types.Type) (string, error) {
	var (
		queue     []pending
		anonIndex int
	)
	rc := &renderCtx{parent: ident, queue: &queue, anonIndex: &anonIndex}

	// собственное имя узла не должно превратиться в `A = A`
	body := *node
	body.Name = ""
	expr, err := e.expr(&body, rc, 0, false)
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("%s = %s\n", ident, expr)
	nested, err := e.drainQueue(&queue)
	if err != nil {
		return "", err
	}
	if len(nested) == 0 {
		return text, nil
	}
	return strings.Join(append(nested, text), "\n"), nil
}

// emitForwardOther declares a width-matched stand-in for a non-struct kind
// whose real definition still depends on undeclared names. The true
// definition is recorded as a comment; anonymous names discovered while
// rendering it are deterministic, so the later PART step reproduces them.
func (e *Emitter) emitForwardOther(name, ident string, node *types.Type) (string, error) {
	var (
		scratch      []pending
		scratchIndex int
	)
	rc := &renderCtx{parent: ident, queue: &scratch, anonIndex: &scratchIndex}
	body := *node
	body.Name = ""
	trueExpr, err := e.expr(&body, rc, 0, false)
	if err != nil {
		return "", err
	}
	standIn := e.standIn(name, node, make(map[string]struct{}))
	return fmt.Sprintf("# %s = %s  (completed below)\n%s = %s\n", ident, trueExpr, ident, standIn), nil
}

// drainQueue emits every pending anonymous definition. Processing may grow
// the queue; the collected texts are reversed so that the deepest nesting
// is defined first and every reference points backwards.
func (e *Emitter) drainQueue(queue *[]pending) ([]string, error) {
	var texts []string
	for qi := 0; qi < len(*queue); qi++ {
		p := (*queue)[qi]
		var (
			text string
			err  error
		)
		switch p.node.Kind {
		case types.KindEnum:
			text = e.emitEnum(p.ident, p.node)
		case types.KindStruct, types.KindUnion:
			text, err = e.emitComposite(p.ident, p.ident, p.node, false)
		default:
			err = &types.UnsupportedKindError{TypeName: p.ident, Kind: p.node.Kind}
		}
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	slices.Reverse(texts)
	return texts, nil
}

// underlying follows named references to the first concrete node. Returns
// nil when the chain leaves the known universe or loops.
func (e *Emitter) underlying(node *types.Type) *types.Type {
	seen := make(map[string]struct{})
	for node != nil && node.Kind == types.KindNamedRef {
		if _, cyclic := seen[node.Ref]; cyclic {
			return nil
		}
		seen[node.Ref] = struct{}{}
		next, ok := e.lookup(node.Ref)
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// standIn builds a layout-equivalent placeholder expression, following
// name references to the first concrete kind. Undeclared structures decay
// to an opaque byte array of the recorded width, enums to a plain integer.
func (e *Emitter) standIn(name string, node *types.Type, seen map[string]struct{}) string {
	if node == nil {
		return "ctypes.c_void_p"
	}
	switch node.Kind {
	case types.KindNamedRef:
		if _, cyclic := seen[node.Ref]; cyclic {
			return e.opaque(name, node.Width)
		}
		seen[node.Ref] = struct{}{}
		target, ok := e.lookup(node.Ref)
		if !ok {
			return e.opaque(name, node.Width)
		}
		return e.standIn(node.Ref, target, seen)
	case types.KindStruct, types.KindUnion:
		return e.opaque(name, node.Width)
	case types.KindEnum:
		return "ctypes.c_int"
	case types.KindPointer:
		return "ctypes.c_void_p"
	case types.KindFunc:
		return "ctypes.CFUNCTYPE(None)"
	case types.KindArray:
		return fmt.Sprintf("%s * %d", e.standIn(name, node.Elem, seen), node.Count)
	case types.KindInt:
		return intExpr(node.Width, node.Signed)
	case types.KindFloat:
		return floatExpr(node.Width)
	case types.KindBool:
		return "ctypes.c_bool"
	case types.KindChar:
		return "ctypes.c_char"
	case types.KindWideChar:
		return "ctypes.c_wchar"
	default:
		return e.opaque(name, node.Width)
	}
}

func (e *Emitter) opaque(name string, width uint64) string {
	diag.ReportWarning(e.rep, diag.EmitOpaqueStandIn, name,
		fmt.Sprintf("substituting opaque %d-byte stand-in", width)).Emit()
	if width == 0 {
		return "ctypes.c_void_p"
	}
	return fmt.Sprintf("ctypes.c_uint8 * %d", width)
}
