package depgraph

import (
	"github.com/jordan9001/ctypes-export/internal/types"
)

// Classify walks one type node and collects the registered names it depends
// on, split into strong and weak sets. A child that carries a registered
// name is a cut point: the name is recorded and the child is not descended
// into. Anonymous composite children merge their dependencies in place, and
// everything reached across a pointer or function boundary is weak,
// including by-value members of an anonymous struct behind a pointer.
//
// The top node's own name never enters the result, but a top-level named
// reference contributes its referenced name as a strong dependency.
func Classify(node *types.Type) (DepSet, error) {
	deps := NewDepSet()
	if node == nil {
		return deps, nil
	}
	if err := walkDeps(node, node.Name, false, deps); err != nil {
		return DepSet{}, err
	}
	return deps, nil
}

func walkDeps(node *types.Type, owner string, weak bool, deps DepSet) error {
	switch node.Kind {
	case types.KindVoid, types.KindBool, types.KindChar, types.KindWideChar,
		types.KindInt, types.KindFloat:
		return nil
	case types.KindEnum:
		// варианты enum — не типы, зависимостей не дают
		return nil
	case types.KindNamedRef:
		deps.add(node.Ref, weak)
		return nil
	case types.KindStruct, types.KindUnion:
		for i := range node.Members {
			if err := childDeps(node.Members[i].Type, owner, weak, deps); err != nil {
				return err
			}
		}
		return nil
	case types.KindArray:
		return childDeps(node.Elem, owner, weak, deps)
	case types.KindPointer:
		return childDeps(node.Target, owner, true, deps)
	case types.KindFunc:
		if err := childDeps(node.Result, owner, true, deps); err != nil {
			return err
		}
		for _, param := range node.Params {
			if err := childDeps(param, owner, true, deps); err != nil {
				return err
			}
		}
		return nil
	default:
		return &types.UnsupportedKindError{TypeName: owner, Kind: node.Kind}
	}
}

func childDeps(node *types.Type, owner string, weak bool, deps DepSet) error {
	if node == nil {
		return nil
	}
	if node.Named() {
		deps.add(node.Name, weak)
		return nil
	}
	return walkDeps(node, owner, weak, deps)
}
