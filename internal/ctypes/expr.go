package ctypes

import (
	"fmt"
	"strings"

	"github.com/jordan9001/ctypes-export/internal/types"
)

// renderCtx carries the anonymous-member state of one enclosing definition:
// the parent identifier the synthetic names derive from, the shared work
// queue of pending nested definitions, and the positional counter used when
// a byte offset cannot discriminate.
type renderCtx struct {
	parent    string
	queue     *[]pending
	anonIndex *int
}

// pending is one anonymous nested type waiting for its own top-level
// definition. Ident is final (already derived from the parent), so emission
// order cannot change the name.
type pending struct {
	ident string
	node  *types.Type
}

// expr renders the ctypes expression for a node used in member position.
// haveOffset marks a direct struct member, whose synthetic anonymous name
// is keyed by its unique byte offset; everything reached through a union,
// pointer, array or function gets a positional index instead.
func (e *Emitter) expr(node *types.Type, rc *renderCtx, offsetKey uint64, haveOffset bool) (string, error) {
	if node == nil {
		return "", &types.UnsupportedKindError{TypeName: rc.parent, Kind: types.KindInvalid}
	}
	if node.Named() {
		return e.refExpr(node.Name), nil
	}
	switch node.Kind {
	case types.KindVoid:
		return "None", nil
	case types.KindBool:
		return "ctypes.c_bool", nil
	case types.KindChar:
		return "ctypes.c_char", nil
	case types.KindWideChar:
		return "ctypes.c_wchar", nil
	case types.KindInt:
		return intExpr(node.Width, node.Signed), nil
	case types.KindFloat:
		return floatExpr(node.Width), nil
	case types.KindNamedRef:
		return e.refExpr(node.Ref), nil
	case types.KindEnum, types.KindStruct, types.KindUnion:
		ident := e.enqueueAnon(node, rc, offsetKey, haveOffset)
		if node.Kind == types.KindEnum {
			return ident + "_raw", nil
		}
		return ident, nil
	case types.KindArray:
		elem, err := e.expr(node.Elem, rc, 0, false)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s * %d", elem, node.Count), nil
	case types.KindPointer:
		return e.pointerExpr(node, rc)
	case types.KindFunc:
		return e.funcExpr(node, rc)
	default:
		return "", &types.UnsupportedKindError{TypeName: rc.parent, Kind: node.Kind}
	}
}

func (e *Emitter) pointerExpr(node *types.Type, rc *renderCtx) (string, error) {
	target := node.Target
	if target == nil || target.Kind == types.KindVoid {
		return "ctypes.c_void_p", nil
	}
	// указатель на функцию — это сам CFUNCTYPE
	if !target.Named() && target.Kind == types.KindFunc {
		return e.funcExpr(target, rc)
	}
	inner, err := e.expr(target, rc, 0, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ctypes.POINTER(%s)", inner), nil
}

func (e *Emitter) funcExpr(node *types.Type, rc *renderCtx) (string, error) {
	args := make([]string, 0, len(node.Params)+1)
	if node.Result == nil || node.Result.Kind == types.KindVoid {
		args = append(args, "None")
	} else {
		restype, err := e.expr(node.Result, rc, 0, false)
		if err != nil {
			return "", err
		}
		args = append(args, restype)
	}
	for _, param := range node.Params {
		if param == nil || param.Kind == types.KindVoid {
			continue
		}
		argtype, err := e.expr(param, rc, 0, false)
		if err != nil {
			return "", err
		}
		args = append(args, argtype)
	}
	return fmt.Sprintf("ctypes.CFUNCTYPE(%s)", strings.Join(args, ", ")), nil
}

// refExpr renders a reference to a registered name. Enum definitions are
// IntEnum classes, not ctypes types, so fields reference their width-matched
// raw alias instead.
func (e *Emitter) refExpr(name string) string {
	ident := Identifier(name, e.prefix)
	if t, ok := e.lookup(name); ok && t.Kind == types.KindEnum {
		return ident + "_raw"
	}
	return ident
}

// enqueueAnon names an anonymous nested composite and schedules its
// top-level definition.
func (e *Emitter) enqueueAnon(node *types.Type, rc *renderCtx, offsetKey uint64, haveOffset bool) string {
	var ident string
	if haveOffset {
		ident = AnonTypeName(rc.parent, true, offsetKey)
	} else {
		ident = AnonTypeName(rc.parent, false, uint64(*rc.anonIndex)) // #nosec G115 -- counter starts at zero
		*rc.anonIndex++
	}
	*rc.queue = append(*rc.queue, pending{ident: ident, node: node})
	return ident
}

func intExpr(width uint64, signed bool) string {
	switch width {
	case 1, 2, 4, 8:
		if signed {
			return fmt.Sprintf("ctypes.c_int%d", width*8)
		}
		return fmt.Sprintf("ctypes.c_uint%d", width*8)
	case 0:
		return "ctypes.c_int"
	default:
		// нестандартная ширина — байтовый массив той же длины
		return fmt.Sprintf("ctypes.c_uint8 * %d", width)
	}
}

func floatExpr(width uint64) string {
	switch width {
	case 4:
		return "ctypes.c_float"
	case 8:
		return "ctypes.c_double"
	default:
		return fmt.Sprintf("ctypes.c_uint8 * %d", width)
	}
}
