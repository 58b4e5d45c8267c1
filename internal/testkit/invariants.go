package testkit

import (
	"fmt"

	"github.com/jordan9001/ctypes-export/internal/depgraph"
	"github.com/jordan9001/ctypes-export/internal/layout"
)

// CheckOrderInvariants runs the resolver-plan invariants against the
// dependency sets the plan was produced from:
// 1) before a FULL or PART entry, every strong dependency inside the
//    universe already has its FULL or PART entry
// 2) a FORWARD entry never follows the name's resolution, and each name is
//    forward-declared at most once
// 3) every FORWARD is matched by exactly one later PART; a PART never
//    appears without a FORWARD; a FULL never follows a FORWARD
// 4) every name of the universe is resolved exactly once
func CheckOrderInvariants(order []depgraph.OrderEntry, deps map[string]depgraph.DepSet) error {
	resolved := make(map[string]bool, len(deps))
	forwarded := make(map[string]bool, len(deps))

	for i, entry := range order {
		if _, known := deps[entry.Name]; !known {
			return fmt.Errorf("entry %d: name %q is not part of the export universe", i, entry.Name)
		}
		switch entry.Kind {
		case depgraph.DefFull:
			if forwarded[entry.Name] {
				return fmt.Errorf("entry %d: FULL for %q after a forward declaration (want PART)", i, entry.Name)
			}
			if resolved[entry.Name] {
				return fmt.Errorf("entry %d: %q resolved twice", i, entry.Name)
			}
			if err := strongDepsResolved(entry.Name, deps, resolved); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			resolved[entry.Name] = true
		case depgraph.DefForwardStruct, depgraph.DefForwardOther:
			if resolved[entry.Name] {
				return fmt.Errorf("entry %d: gratuitous forward declaration of already resolved %q", i, entry.Name)
			}
			if forwarded[entry.Name] {
				return fmt.Errorf("entry %d: %q forward-declared twice", i, entry.Name)
			}
			forwarded[entry.Name] = true
		case depgraph.DefPart:
			if !forwarded[entry.Name] {
				return fmt.Errorf("entry %d: PART for %q without a prior forward declaration", i, entry.Name)
			}
			if resolved[entry.Name] {
				return fmt.Errorf("entry %d: %q resolved twice", i, entry.Name)
			}
			if err := strongDepsResolved(entry.Name, deps, resolved); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			resolved[entry.Name] = true
		default:
			return fmt.Errorf("entry %d: unknown definition kind %v", i, entry.Kind)
		}
	}

	for name := range deps {
		if !resolved[name] {
			return fmt.Errorf("%q never resolved", name)
		}
	}
	for name := range forwarded {
		if !resolved[name] {
			return fmt.Errorf("forward declaration of %q never completed by PART", name)
		}
	}
	return nil
}

func strongDepsResolved(name string, deps map[string]depgraph.DepSet, resolved map[string]bool) error {
	for dep := range deps[name].Strong {
		if _, known := deps[dep]; !known {
			continue // outside the universe, restricted export
		}
		if !resolved[dep] {
			return fmt.Errorf("%q emitted before its strong dependency %q", name, dep)
		}
	}
	return nil
}

// CheckCoverage validates that flattened struct slots cover [0, width)
// exactly, with no overlap and no gap.
func CheckCoverage(slots []layout.Slot, width uint64) error {
	cursor := uint64(0)
	for i, slot := range slots {
		if slot.Offset != cursor {
			return fmt.Errorf("slot %d starts at 0x%x, cursor at 0x%x", i, slot.Offset, cursor)
		}
		if slot.Width == 0 {
			return fmt.Errorf("slot %d at 0x%x has zero width", i, slot.Offset)
		}
		cursor += slot.Width
	}
	if cursor != width {
		return fmt.Errorf("slots cover [0, 0x%x), declared width 0x%x", cursor, width)
	}
	return nil
}
