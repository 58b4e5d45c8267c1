package types

import (
	"fmt"
	"slices"
)

// Kind enumerates all supported kinds of native types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar
	KindWideChar
	KindInt
	KindFloat
	KindEnum
	KindStruct
	KindUnion
	KindArray
	KindPointer
	KindFunc
	KindNamedRef
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindWideChar:
		return "wchar"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindFunc:
		return "function"
	case KindNamedRef:
		return "named-ref"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Composite reports whether the kind owns a member layout of its own.
func (k Kind) Composite() bool {
	return k == KindStruct || k == KindUnion
}

// Type is a descriptor node for a single native type. Nodes form a tree:
// a child with a registered name is a cut point (consumers record a
// dependency on the name instead of descending), so trees stay acyclic
// even for self-referential types.
type Type struct {
	Kind     Kind
	Name     string      // registered name, "" for anonymous nodes
	Width    uint64      // storage size in bytes
	Signed   bool        // integers and chars
	Elem     *Type       // array element
	Count    uint32      // array element count
	Target   *Type       // pointer target
	Result   *Type       // function result, nil means void
	Params   []*Type     // function parameters
	Members  []Member    // struct/union members, ordered by offset
	Variants []EnumValue // enum variants
	Ref      string      // referenced registered name (KindNamedRef)
}

// Member describes a single member inside a struct or union. The occupied
// byte range is [Offset, Offset+Type.Width) relative to the parent.
type Member struct {
	Name   string // "" for anonymous members
	Offset uint64
	Type   *Type
}

// EnumValue is one named constant of an enum. Value is stored raw;
// consumers mask it to the enum's declared width.
type EnumValue struct {
	Name  string
	Value uint64
}

// Named reports whether the node carries a registered name.
func (t *Type) Named() bool {
	return t != nil && t.Name != ""
}

// Descriptor helpers ---------------------------------------------------------

// MakeVoid describes the unit of absent storage (only valid behind a
// pointer or as a function result).
func MakeVoid() *Type {
	return &Type{Kind: KindVoid}
}

// MakeBool describes a one-byte boolean.
func MakeBool() *Type {
	return &Type{Kind: KindBool, Width: 1}
}

// MakeChar describes a plain one-byte character.
func MakeChar() *Type {
	return &Type{Kind: KindChar, Width: 1, Signed: true}
}

// MakeWideChar describes a wide character of the given byte width.
func MakeWideChar(width uint64) *Type {
	return &Type{Kind: KindWideChar, Width: width}
}

// MakeInt describes an integer of the given byte width and signedness.
func MakeInt(width uint64, signed bool) *Type {
	return &Type{Kind: KindInt, Width: width, Signed: signed}
}

// MakeFloat describes a floating-point number of the given byte width.
func MakeFloat(width uint64) *Type {
	return &Type{Kind: KindFloat, Width: width}
}

// MakeEnum describes an enumeration backed by an integer of the given
// byte width.
func MakeEnum(name string, width uint64, variants []EnumValue) *Type {
	return &Type{Kind: KindEnum, Name: name, Width: width, Variants: slices.Clone(variants)}
}

// MakeStruct describes a structure with the declared total width. Members
// must be ordered by non-decreasing offset.
func MakeStruct(name string, width uint64, members []Member) *Type {
	return &Type{Kind: KindStruct, Name: name, Width: width, Members: slices.Clone(members)}
}

// MakeUnion describes a union with the declared total width.
func MakeUnion(name string, width uint64, members []Member) *Type {
	return &Type{Kind: KindUnion, Name: name, Width: width, Members: slices.Clone(members)}
}

// MakeArray describes a fixed-length array; the width derives from the
// element width.
func MakeArray(elem *Type, count uint32) *Type {
	t := &Type{Kind: KindArray, Elem: elem, Count: count}
	if elem != nil {
		t.Width = elem.Width * uint64(count)
	}
	return t
}

// MakePointer describes a pointer of the target platform's pointer width.
func MakePointer(target *Type, width uint64) *Type {
	return &Type{Kind: KindPointer, Target: target, Width: width}
}

// MakeFunc describes a function signature. A nil result means void.
// Function nodes have no storage width of their own; only pointers to
// them occupy bytes.
func MakeFunc(result *Type, params []*Type) *Type {
	return &Type{Kind: KindFunc, Result: result, Params: slices.Clone(params)}
}

// MakeNamedRef describes a reference to a registered name, carrying the
// referenced type's width as recorded by the producer.
func MakeNamedRef(name string, width uint64) *Type {
	return &Type{Kind: KindNamedRef, Ref: name, Width: width}
}
