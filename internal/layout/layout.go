package layout

import (
	"fmt"

	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/types"
)

// Slot is one flattened entry of a struct or union body: either a real
// member or synthetic padding. Offsets and widths are bytes. Padding slots
// have a nil Type; Unit and Count describe how the pad renders (Count units
// of Unit bytes each).
type Slot struct {
	Name   string // recorded member name, "" for anonymous members and pads
	Offset uint64
	Width  uint64
	Type   *types.Type // nil for padding
	Unit   uint8       // padding only: 1, 4 or 8
	Count  uint64      // padding only: number of units
}

// Pad reports whether the slot is synthetic padding.
func (s Slot) Pad() bool {
	return s.Type == nil
}

// FlattenStruct converts the members of a struct node into a dense slot
// sequence covering [0, width) exactly. Gaps between members and before the
// declared tail become padding slots. A member whose offset lies before the
// running cursor cannot be expressed as an ordered field; it is skipped and
// reported. Members running past the declared width are kept but reported,
// and no tail padding is produced in that case.
func FlattenStruct(name string, node *types.Type, rep diag.Reporter) []Slot {
	slots := make([]Slot, 0, len(node.Members)*2)
	cursor := uint64(0)

	for i := range node.Members {
		m := &node.Members[i]
		w := memberWidth(m.Type)
		if m.Offset < cursor {
			diag.ReportWarning(rep, diag.LayNonMonotonicOffset, name,
				fmt.Sprintf("%s at 0x%x overlaps bytes before 0x%x, skipped",
					memberLabel(m, i), m.Offset, cursor)).Emit()
			continue
		}
		if m.Offset > cursor {
			slots = appendPadding(slots, cursor, m.Offset)
			cursor = m.Offset
		}
		slots = append(slots, Slot{Name: m.Name, Offset: m.Offset, Width: w, Type: m.Type})
		cursor += w
	}

	switch {
	case cursor > node.Width:
		diag.ReportWarning(rep, diag.LayWidthOverflow, name,
			fmt.Sprintf("members end at 0x%x past declared width 0x%x", cursor, node.Width)).Emit()
	case cursor < node.Width:
		slots = appendPadding(slots, cursor, node.Width)
	}
	return slots
}

// FlattenUnion returns the member slots of a union (all at offset zero)
// plus, when the declared width exceeds the widest member, one trailing pad
// slot. Union members overlap, so the pad spans the full declared width
// rather than the difference. A member wider than the declared width is
// kept and reported.
func FlattenUnion(name string, node *types.Type, rep diag.Reporter) []Slot {
	slots := make([]Slot, 0, len(node.Members)+1)
	widest := uint64(0)

	for i := range node.Members {
		m := &node.Members[i]
		w := memberWidth(m.Type)
		if w > node.Width {
			diag.ReportWarning(rep, diag.LayUnionMemberWide, name,
				fmt.Sprintf("%s is 0x%x bytes wide, union declares 0x%x",
					memberLabel(m, i), w, node.Width)).Emit()
		}
		if w > widest {
			widest = w
		}
		slots = append(slots, Slot{Name: m.Name, Offset: 0, Width: w, Type: m.Type})
	}

	if widest < node.Width {
		slots = append(slots, Slot{Offset: 0, Width: node.Width, Unit: 1, Count: node.Width})
	}
	return slots
}

// appendPadding fills [from, to) with padding slots. An unaligned prefix is
// one byte-run slot up to the next 4-byte boundary, aligned stretches use
// the largest scalar unit that fits, so the entry count stays minimal
// without placing scalars at unaligned offsets.
func appendPadding(slots []Slot, from, to uint64) []Slot {
	cursor := from
	for cursor < to {
		gap := to - cursor
		switch {
		case cursor%8 == 0 && gap >= 8:
			count := gap / 8
			slots = append(slots, Slot{Offset: cursor, Width: count * 8, Unit: 8, Count: count})
			cursor += count * 8
		case cursor%4 == 0 && gap >= 4:
			slots = append(slots, Slot{Offset: cursor, Width: 4, Unit: 4, Count: 1})
			cursor += 4
		default:
			// добираем байтами до ближайшей 4-байтовой границы
			run := gap
			if next := (cursor/4+1)*4 - cursor; next < run {
				run = next
			}
			slots = append(slots, Slot{Offset: cursor, Width: run, Unit: 1, Count: run})
			cursor += run
		}
	}
	return slots
}

func memberWidth(t *types.Type) uint64 {
	if t == nil {
		return 0
	}
	return t.Width
}

func memberLabel(m *types.Member, index int) string {
	if m.Name != "" {
		return fmt.Sprintf("member %q", m.Name)
	}
	return fmt.Sprintf("member #%d", index)
}
