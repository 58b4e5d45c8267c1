package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Type database
	DBInfo              Code = 1000
	DBTypeNotFound      Code = 1001
	DBAmbiguousProvider Code = 1002
	DBSnapshotSchema    Code = 1003
	DBDuplicateType     Code = 1004

	// Classification
	ClsInfo            Code = 2000
	ClsUnsupportedKind Code = 2001

	// Resolution (ordering)
	ResInfo        Code = 3000
	ResStrongCycle Code = 3001

	// Layout
	LayInfo               Code = 4000
	LayNonMonotonicOffset Code = 4001
	LayUnionMemberWide    Code = 4002
	LayWidthOverflow      Code = 4003

	// Emission
	EmitInfo          Code = 5000
	EmitOpaqueStandIn Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	DBInfo:                "Type database information",
	DBTypeNotFound:        "Type not found",
	DBAmbiguousProvider:   "Type provided by multiple debug parsers",
	DBSnapshotSchema:      "Unsupported snapshot schema",
	DBDuplicateType:       "Duplicate type in provider",
	ClsInfo:               "Classification information",
	ClsUnsupportedKind:    "Unsupported type kind",
	ResInfo:               "Resolution information",
	ResStrongCycle:        "Strong dependency cycle",
	LayInfo:               "Layout information",
	LayNonMonotonicOffset: "Member offset before current cursor",
	LayUnionMemberWide:    "Union member wider than union",
	LayWidthOverflow:      "Members overflow declared width",
	EmitInfo:              "Emission information",
	EmitOpaqueStandIn:     "Opaque stand-in substituted",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DB%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CLS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("EMT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
